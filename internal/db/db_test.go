package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/config"
	"github.com/classicdental/dental-scheduler/internal/models"
)

func TestNewDB_SeedsOnce(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBUrl: "file::memory:"}

	db, err := NewDB(cfg, zap.NewNop())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Treatment{}).Count(&count).Error)
	assert.Equal(t, int64(len(models.DefaultTreatments())), count)

	require.NoError(t, SeedTreatments(db))
	require.NoError(t, db.Model(&models.Treatment{}).Count(&count).Error)
	assert.Equal(t, int64(9), count)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}

func TestAppointmentSlotIsUnique(t *testing.T) {
	db, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	p := models.Patient{Name: "Ana", Contact: "555"}
	d := models.Dentist{Name: "Dr. Cruz", Specialization: "Orthodontics"}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&d).Error)

	first := models.Appointment{PatientID: p.ID, DentistID: d.ID, Date: "2026-10-20", Time: "09:00", Service: "Veneers"}
	require.NoError(t, db.Create(&first).Error)

	dup := models.Appointment{PatientID: p.ID, DentistID: d.ID, Date: "2026-10-20", Time: "09:00", Service: "Bonding"}
	err = db.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSQLLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := openWith("sqlite", "file::memory:", zap.New(core))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	logs.TakeAll()

	err = db.First(&models.User{}, 999).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	assert.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm", logs.All()[0].LoggerName)
}
