package router

import (
	"net/http"
	"time"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/edudash/edudash-backend/internal/handler"
	"github.com/edudash/edudash-backend/internal/middleware"
	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/response"
	"github.com/edudash/edudash-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Thread       *handler.ThreadHandler
	Registration *handler.RegistrationHandler
	Campaign     *handler.CampaignHandler
	Quota        *handler.QuotaHandler
	Notification *handler.NotificationHandler
	Media        *handler.MediaHandler
	Dashboard    *handler.DashboardHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter shared by the public write endpoints (30 per minute per IP).
	publicLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/tiers", handlers.Quota.ListTiers)
		publicAPI.GET("/preschools/:preschool_id/campaigns", handlers.Campaign.ListPublicCampaigns)

		publicAPI.POST("/registrations", publicLimiter.Middleware(), handlers.Registration.CreateRegistration)
		publicAPI.POST("/registrations/:registration_id/pop", publicLimiter.Middleware(), handlers.Registration.UploadProofOfPayment)
		publicAPI.POST("/registrations/:registration_id/payment", publicLimiter.Middleware(), handlers.Registration.CreatePayment)
	}

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", publicLimiter.Middleware(), handlers.Auth.Login)

		// Authenticated profile routes
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
	}

	// ─── 2. Authenticated API (JWT + Single Device For Parents) ───────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireAuth(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		// Messaging inbox
		api.GET("/contacts", handlers.Thread.ListContacts)
		api.GET("/threads", handlers.Thread.ListThreads)
		api.POST("/threads", handlers.Thread.OpenThread)
		api.GET("/threads/unread-count", handlers.Thread.UnreadCount)
		api.GET("/threads/:thread_id", handlers.Thread.GetThread)
		api.GET("/threads/:thread_id/messages", handlers.Thread.ListMessages)
		api.POST("/threads/:thread_id/messages", handlers.Thread.SendMessage)
		api.POST("/threads/:thread_id/read", handlers.Thread.MarkRead)

		// Media
		api.POST("/media/voice", handlers.Media.UploadVoice)

		// Notifications
		api.GET("/notifications", handlers.Notification.ListNotifications)
		api.GET("/notifications/unread-count", handlers.Notification.UnreadCount)
		api.POST("/notifications/read-all", handlers.Notification.MarkAllRead)
		api.POST("/notifications/:notification_id/read", handlers.Notification.MarkRead)

		// AI quota
		api.GET("/quota", handlers.Quota.QuotaStatus)
		api.POST("/quota/consume", handlers.Quota.ConsumeQuota)
		api.POST("/quota/tier", handlers.Quota.UpgradeTier)

		// Campaign redemption (any signed-in role)
		api.POST("/campaigns/:campaign_id/redeem", handlers.Campaign.RedeemCampaign)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireAuth(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/threads/:thread_id/stream", handlers.WS.ThreadStream)
	}

	// ─── 4. Staff Group (JWT + Role) ───────────────────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireAuth(authService))
	{
		// Registration review (principals only)
		staffAPI.GET("/registrations",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Registration.ListRegistrations,
		)
		staffAPI.GET("/registrations/export",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Registration.ExportRegistrations,
		)
		staffAPI.POST("/registrations/import",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Registration.ImportRegistrations,
		)
		staffAPI.POST("/registrations/pull",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Registration.PullRegistrations,
		)
		staffAPI.GET("/registrations/:registration_id",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Registration.GetRegistration,
		)
		staffAPI.POST("/registrations/:registration_id/approve",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Registration.ApproveRegistration,
		)
		staffAPI.POST("/registrations/:registration_id/reject",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Registration.RejectRegistration,
		)

		// Campaign management (principals only)
		staffAPI.GET("/campaigns",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Campaign.ListCampaigns,
		)
		staffAPI.POST("/campaigns",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Campaign.CreateCampaign,
		)
		staffAPI.PATCH("/campaigns/:campaign_id",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Campaign.UpdateCampaign,
		)
		staffAPI.DELETE("/campaigns/:campaign_id",
			middleware.RequireRole(model.RolePrincipal),
			handlers.Campaign.DeleteCampaign,
		)

		// Dashboard (any staff role)
		staffAPI.GET("/dashboard",
			middleware.RequireStaff(),
			handlers.Dashboard.Stats,
		)

		// Session reset support tool (superadmin only)
		staffAPI.POST("/sessions/:user_id/reset",
			middleware.RequireRole(model.RoleSuperAdmin),
			handlers.Auth.ResetSession,
		)
	}

	return router
}
