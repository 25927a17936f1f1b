package main

import (
	"github.com/gin-gonic/gin"
	"github.com/xife12/membercore/internal/handlers"
	"github.com/xife12/membercore/internal/middleware"
	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/pkg/logger"
)

// registerRoutes sets up the HTTP surface.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	db := models.GetDB()
	authHandler := handlers.NewAuthHandler(db, svc.cfg)
	memberHandler := handlers.NewMemberHandler(db)
	membershipHandler := handlers.NewMembershipHandler(db)
	contractTypeHandler := handlers.NewContractTypeHandler(db)
	systemLogHandler := handlers.NewSystemLogHandler(db)

	api := r.Group("/api")
	{
		// Login is rate limited to slow down credential guessing.
		loginLimiter := middleware.NewRateLimiter(2, 5)
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			protected.GET("/auth/me", authHandler.GetCurrentUser)
			protected.POST("/auth/logout", authHandler.Logout)

			// Members
			protected.GET("/members", memberHandler.List)
			protected.GET("/members/:id", memberHandler.GetByID)
			protected.GET("/members/:id/detail", memberHandler.GetDetail)
			protected.POST("/members", memberHandler.Create)
			protected.PUT("/members/:id", memberHandler.Update)
			protected.DELETE("/members/:id", memberHandler.Delete)

			// Membership lifecycle
			protected.POST("/members/:id/memberships", membershipHandler.Add)
			protected.POST("/members/:id/memberships/:mid/extend", membershipHandler.Extend)
			protected.POST("/members/:id/memberships/:mid/cancel", membershipHandler.Cancel)
			protected.POST("/members/:id/memberships/:mid/suspend", membershipHandler.Suspend)
			protected.POST("/members/:id/memberships/:mid/reactivate", membershipHandler.Reactivate)

			// Contract types (reads)
			protected.GET("/contract-types", contractTypeHandler.List)
			protected.GET("/contract-types/:id", contractTypeHandler.GetByID)
		}

		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Contract types (writes)
			admin.POST("/contract-types", contractTypeHandler.Create)
			admin.PUT("/contract-types/:id", contractTypeHandler.Update)
			admin.DELETE("/contract-types/:id", contractTypeHandler.Delete)

			// Audit trail
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.GET("/system-logs/retention", systemLogHandler.GetRetention)
			admin.PUT("/system-logs/retention", systemLogHandler.SetRetention)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)
		}
	}
}
