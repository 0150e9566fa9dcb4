package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/config"
	"github.com/classicdental/dental-scheduler/internal/handlers"
	"github.com/classicdental/dental-scheduler/internal/infra/billing"
	"github.com/classicdental/dental-scheduler/internal/infra/mailer"
	infraRepo "github.com/classicdental/dental-scheduler/internal/infra/repository"
	"github.com/classicdental/dental-scheduler/internal/infra/storage"
	"github.com/classicdental/dental-scheduler/internal/infra/throttle"
	"github.com/classicdental/dental-scheduler/internal/middleware"
	"github.com/classicdental/dental-scheduler/internal/models"
	"github.com/classicdental/dental-scheduler/internal/timezone"
	ucAppointment "github.com/classicdental/dental-scheduler/internal/usecase/appointment"
)

// Deps are the process-wide services built in main.
type Deps struct {
	Log      *zap.Logger
	Audit    handlers.Auditor
	Mailer   mailer.Sender
	Cooldown throttle.Cooldown
	Avatars  storage.AvatarStore
	Checkout billing.Checkout
	Limiter  *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	clinicNow := func() time.Time { return timezone.NowIn(cfg.ClinicTimezone) }

	// ======================================================
	// 🧠 USE CASES - APPOINTMENTS
	// ======================================================
	appointmentUC := handlers.AppointmentUseCases{
		Create:   ucAppointment.NewCreateAppointment(appointmentRepo, deps.Audit),
		Update:   ucAppointment.NewUpdateAppointment(appointmentRepo, deps.Audit, clinicNow),
		Cancel:   ucAppointment.NewCancelAppointment(appointmentRepo, deps.Audit, clinicNow),
		Complete: ucAppointment.NewCompleteAppointment(appointmentRepo, deps.Audit, clinicNow),
		List:     ucAppointment.NewListAppointments(appointmentRepo),
		Get:      ucAppointment.NewGetAppointment(appointmentRepo),
		Delete:   ucAppointment.NewDeleteAppointment(appointmentRepo, deps.Audit),
	}

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, deps.Mailer, deps.Cooldown, deps.Audit, deps.Log)
	profileHandler := handlers.NewProfileHandler(db, deps.Avatars, deps.Audit)
	userHandler := handlers.NewUserHandler(db, deps.Audit)

	patientHandler := handlers.NewPatientHandler(db, deps.Audit)
	dentistHandler := handlers.NewDentistHandler(db, deps.Audit)
	treatmentHandler := handlers.NewTreatmentHandler(db, deps.Audit)
	scheduleHandler := handlers.NewScheduleHandler(db, deps.Audit)

	appointmentHandler := handlers.NewAppointmentHandler(appointmentUC, db, deps.Checkout)

	auditLogsHandler := handlers.NewAuditLogsHandler(db, cfg.ClinicTimezone)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🔐 AUTH (rate limited)
		// ------------------------------
		public := api.Group("/")
		public.Use(middleware.RateLimit(deps.Limiter))
		{
			public.POST("/register", authHandler.Register)
			public.POST("/login", authHandler.Login)
			public.POST("/forgot-password", authHandler.ForgotPassword)
			public.POST("/verify-reset-code", authHandler.VerifyResetCode)
			public.POST("/reset-password", authHandler.ResetPassword)
		}

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret, middleware.GormAccounts(db)))
		{
			secured.GET("/profile", profileHandler.Get)
			secured.PUT("/profile", profileHandler.Update)
			secured.POST("/profile/avatar", profileHandler.UploadAvatar)

			crud(secured, "/patients", patientHandler)
			crud(secured, "/dentists", dentistHandler)
			crud(secured, "/treatments", treatmentHandler)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			crud(secured, "/appointments", appointmentHandler)
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
			secured.POST("/appointments/:id/checkout", appointmentHandler.Checkout)

			// ------------------------------
			// SCHEDULES
			// ------------------------------
			secured.GET("/schedules", scheduleHandler.List)
			secured.GET("/schedules/:id", scheduleHandler.Get)

			scheduleWrite := secured.Group("/schedules")
			scheduleWrite.Use(middleware.RequireRole(models.RoleAdmin, models.RoleStaff))
			{
				scheduleWrite.POST("", scheduleHandler.Create)
				scheduleWrite.PUT("/:id", scheduleHandler.Update)
				scheduleWrite.DELETE("/:id", scheduleHandler.Delete)
			}

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/users", userHandler.List)
				admin.POST("/users/:id/reset-password", userHandler.ResetPassword)
				admin.PUT("/users/:id/role", userHandler.UpdateRole)
				admin.DELETE("/users/:id", userHandler.Delete)

				admin.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}

type crudHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func crud(g *gin.RouterGroup, path string, h crudHandler) {
	g.GET(path, h.List)
	g.GET(path+"/:id", h.Get)
	g.POST(path, h.Create)
	g.PUT(path+"/:id", h.Update)
	g.DELETE(path+"/:id", h.Delete)
}
