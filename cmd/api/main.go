package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classicdental/dental-scheduler/internal/audit"
	"github.com/classicdental/dental-scheduler/internal/config"
	dbpkg "github.com/classicdental/dental-scheduler/internal/db"
	"github.com/classicdental/dental-scheduler/internal/infra/billing"
	"github.com/classicdental/dental-scheduler/internal/infra/mailer"
	"github.com/classicdental/dental-scheduler/internal/infra/storage"
	"github.com/classicdental/dental-scheduler/internal/infra/throttle"
	"github.com/classicdental/dental-scheduler/internal/logger"
	"github.com/classicdental/dental-scheduler/internal/middleware"
	"github.com/classicdental/dental-scheduler/internal/routes"
)

const banner = "Classic Dental Scheduling System API"

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	db, err := dbpkg.NewDB(cfg, zl)
	if err != nil {
		return err
	}

	dispatcher := audit.NewDispatcher(audit.New(db), zl)
	defer dispatcher.Close()

	var cooldown throttle.Cooldown = throttle.Unlimited{}
	if cfg.RedisURL != "" {
		rdb, err := throttle.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		cooldown = throttle.NewRedisCooldown(rdb, "reset-cooldown", cfg.ResetCooldown)
	}

	checkout, err := billing.New(cfg.MercadoPagoAccessToken, cfg.CheckoutBackURL, nil)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst)
	go limiter.Run(ctx.Done())

	zl.Info("integrations",
		zap.Bool("redis", cfg.RedisURL != ""),
		zap.Bool("smtp", cfg.SMTP.Enabled()),
		zap.Bool("s3", cfg.S3.Enabled()),
		zap.Bool("mercadopago", cfg.MercadoPagoAccessToken != ""))

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	})

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, routes.Deps{
		Log:      zl,
		Audit:    dispatcher,
		Mailer:   mailer.New(cfg.SMTP, zl),
		Cooldown: cooldown,
		Avatars:  storage.New(cfg.S3),
		Checkout: checkout,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
