package db

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/classicdental/dental-scheduler/internal/config"
	"github.com/classicdental/dental-scheduler/internal/models"
)

// NewDB opens the configured database, migrates it and seeds reference data.
// SQL warnings and errors go to zl.
func NewDB(cfg *config.Config, zl *zap.Logger) (*gorm.DB, error) {
	db, err := openWith(cfg.DBDriver, cfg.DBUrl, zl)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := SeedTreatments(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Open connects without SQL logging.
func Open(driver, dsn string) (*gorm.DB, error) {
	return openWith(driver, dsn, zap.NewNop())
}

// gormLogger reports slow queries and errors through zap. A miss on
// First is an expected outcome and is not logged.
func gormLogger(zl *zap.Logger) logger.Interface {
	return logger.New(zap.NewStdLog(zl.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func openWith(driver, dsn string, zl *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         gormLogger(zl),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if driver == "sqlite" {
		// A single long-lived connection keeps an in-memory database shared.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Patient{},
		&models.Dentist{},
		&models.Treatment{},
		&models.Appointment{},
		&models.Schedule{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedTreatments installs the default catalogue when the table is empty.
func SeedTreatments(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Treatment{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count treatments: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := models.DefaultTreatments()
	if err := db.Create(&defaults).Error; err != nil {
		return errors.Join(errors.New("seed treatments"), err)
	}
	return nil
}
