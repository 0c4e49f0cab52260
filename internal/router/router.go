// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rentloop/rentloop-backend/internal/config"
	"github.com/rentloop/rentloop-backend/internal/handlers"
	"github.com/rentloop/rentloop-backend/internal/middleware"
	"github.com/rentloop/rentloop-backend/internal/models"
	"github.com/rentloop/rentloop-backend/internal/services"
	"github.com/rentloop/rentloop-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	leaseService := services.NewLeaseService(db, notificationService)
	propertyService := services.NewPropertyService(db)
	tenantService := services.NewTenantService(db)
	paymentService := services.NewPaymentService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	leaseHandler := handlers.NewLeaseHandler(leaseService, storageService)
	propertyHandler := handlers.NewPropertyHandler(propertyService, storageService)
	tenantHandler := handlers.NewTenantHandler(tenantService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.APIRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.CredentialRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User management (company admins create staff and tenant accounts)
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.POST("", middleware.RoleRequired(models.UserRoleCompanyAdmin), authHandler.CreateUser)
		}

		// Property and unit routes
		properties := v1.Group("/properties")
		properties.Use(middleware.AuthRequired())
		{
			properties.GET("", propertyHandler.GetProperties)
			properties.POST("", propertyHandler.CreateProperty)
			properties.GET("/:id", propertyHandler.GetProperty)
			properties.GET("/:id/units", propertyHandler.ListUnits)
			properties.POST("/upload-photos", middleware.DocumentRateLimit(), propertyHandler.UploadPhotos)
		}

		units := v1.Group("/units")
		units.Use(middleware.AuthRequired())
		{
			units.POST("", propertyHandler.CreateUnit)
			units.GET("/:id", propertyHandler.GetUnit)
			units.PUT("/:id", propertyHandler.UpdateUnit)
		}

		// Tenant routes
		tenants := v1.Group("/tenants")
		tenants.Use(middleware.AuthRequired())
		{
			tenants.GET("", tenantHandler.GetTenants)
			tenants.GET("/:id", tenantHandler.GetTenant)
			tenants.GET("/:id/leases", tenantHandler.GetTenantLeases)
		}

		// Lease lifecycle routes
		leases := v1.Group("/leases")
		leases.Use(middleware.AuthRequired())
		{
			leases.GET("", leaseHandler.GetLeases)
			leases.POST("", leaseHandler.CreateLease)
			leases.POST("/upload-document", middleware.DocumentRateLimit(), leaseHandler.UploadDocument)
			leases.GET("/:id", leaseHandler.GetLease)
			leases.PUT("/:id", leaseHandler.UpdateLease)
			leases.DELETE("/:id", leaseHandler.DeleteLease)
			leases.PUT("/:id/activate", leaseHandler.ActivateLease)
			leases.PUT("/:id/terminate", leaseHandler.TerminateLease)
			leases.POST("/:id/renew", leaseHandler.RenewLease)
			leases.POST("/:id/transfer", leaseHandler.TransferLease)
			leases.GET("/:id/chain", leaseHandler.GetRenewalChain)
			leases.GET("/:id/payments", paymentHandler.GetLeasePayments)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/record", paymentHandler.RecordPayment)
			payments.POST("/intent", paymentHandler.CreateRentIntent)
		}

		// Platform operator routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.SuperAdminRequired())
		{
			admin.POST("/leases/expire", leaseHandler.RunExpirySweep)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
