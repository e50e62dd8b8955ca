package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gearbook/car-service-api/internal/audit"
	"github.com/gearbook/car-service-api/internal/cache"
	"github.com/gearbook/car-service-api/internal/config"
	"github.com/gearbook/car-service-api/internal/handlers"
	infraRepo "github.com/gearbook/car-service-api/internal/infra/repository"
	"github.com/gearbook/car-service-api/internal/middleware"
	"github.com/gearbook/car-service-api/internal/models"
	"github.com/gearbook/car-service-api/internal/payment"
	"github.com/gearbook/car-service-api/internal/storage"
	ucBooking "github.com/gearbook/car-service-api/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	var catalogCache cache.Cache = cache.NewNoop()
	if cfg.RedisEnabled() {
		catalogCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	var uploader storage.Uploader
	if cfg.S3Enabled() {
		uploader = storage.NewS3(cfg)
	}

	var capturer payment.Capturer = payment.NewSimulated()
	if cfg.MPAccessToken != "" {
		mp, err := payment.NewMercadoPago(cfg.MPAccessToken)
		if err != nil {
			log.Fatalf("failed to init mercado pago: %v", err)
		}
		capturer = mp
	}

	// ======================================================
	// USE CASES — BOOKINGS
	// ======================================================
	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		capturer,
		auditDispatcher,
	)

	cancelBookingUC := ucBooking.NewCancelBooking(
		bookingRepo,
		auditDispatcher,
	)

	updateStatusUC := ucBooking.NewUpdateBookingStatus(
		bookingRepo,
		auditDispatcher,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, auditDispatcher)
	serviceHandler := handlers.NewServiceHandler(db, catalogCache, uploader, auditDispatcher)

	bookingHandler := handlers.NewBookingHandler(
		db,
		createBookingUC,
		cancelBookingUC,
		updateStatusUC,
	)

	dashboardHandler := handlers.NewDashboardHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// PUBLIC ROUTES
	// ======================================================
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	r.GET("/services", serviceHandler.List)
	r.GET("/services/:id", serviceHandler.Get)

	// ======================================================
	// PROTECTED ROUTES
	// ======================================================
	secured := r.Group("/")
	secured.Use(middleware.AuthMiddleware(cfg))
	{
		secured.GET("/auth/me", authHandler.Me)

		// ------------------------------
		// CATALOG (provider/admin writes)
		// ------------------------------
		catalog := secured.Group("/services")
		catalog.Use(middleware.RequireRoles(models.RoleProvider, models.RoleAdmin))
		{
			catalog.POST("", serviceHandler.Create)
			catalog.PUT("/:id", serviceHandler.Update)
			catalog.DELETE("/:id", serviceHandler.Delete)
			catalog.PATCH("/:id/toggle-status", serviceHandler.ToggleStatus)
			catalog.POST("/:id/image", serviceHandler.UploadImage)
		}

		// ------------------------------
		// BOOKINGS
		// ------------------------------
		secured.GET("/bookings", bookingHandler.List)
		secured.GET("/bookings/:id", bookingHandler.Get)
		secured.GET("/bookings/customer/:customerId", bookingHandler.ListByCustomer)

		secured.POST("/bookings",
			middleware.RequireRoles(models.RoleCustomer),
			bookingHandler.Create,
		)
		secured.PUT("/bookings/:id/status",
			middleware.RequireRoles(models.RoleProvider, models.RoleAdmin),
			bookingHandler.UpdateStatus,
		)
		secured.DELETE("/bookings/:id",
			middleware.RequireRoles(models.RoleCustomer, models.RoleAdmin),
			bookingHandler.Cancel,
		)

		// ------------------------------
		// DASHBOARD / AUDIT
		// ------------------------------
		secured.GET("/dashboard/stats", dashboardHandler.Stats)

		secured.GET("/audit-logs",
			middleware.RequireRoles(models.RoleAdmin),
			auditLogsHandler.List,
		)
	}
}
