package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/infra/config"
	"github.com/arklim/casting-platform-api/internal/transport/http/handlers"
	"github.com/arklim/casting-platform-api/internal/transport/http/middleware"
	"github.com/arklim/casting-platform-api/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Castings     *usecase.CastingService
	Applications *usecase.ApplicationService
	Messages     *usecase.MessageService
	Profiles     *usecase.ProfileService
	Admin        *usecase.AdminService
	Uploads      *usecase.UploadService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if len(deps.Config.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	modelOnly := middleware.RequireRole(domain.RoleModel)

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		refreshCookie := handlers.NewRefreshCookie(deps.Config)

		authGroup := api.Group("/auth")
		authLimit := buildRateLimitMiddlewares(deps, "auth_ip", deps.Config.RateLimit.AuthMaxAttempts)
		if len(authLimit) > 0 {
			authGroup.Use(authLimit...)
		}

		authHandler := handlers.NewAuthHandler(deps.Services.Auth, refreshCookie)
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authMiddleware, authHandler.Me)

		castingHandler := handlers.NewCastingHandler(deps.Services.Castings)
		castingGroup := api.Group("/castings")
		castingGroup.GET("", castingHandler.List)
		castingGroup.GET("/:id", castingHandler.Get)
		castingGroup.POST("", authMiddleware, adminOnly, castingHandler.Create)
		castingGroup.PATCH("/:id/status", authMiddleware, adminOnly, castingHandler.UpdateStatus)
		castingGroup.DELETE("/:id", authMiddleware, adminOnly, castingHandler.Delete)

		applicationHandler := handlers.NewApplicationHandler(deps.Services.Applications)
		applicationGroup := api.Group("/applications")
		applicationGroup.Use(authMiddleware)
		applicationGroup.POST("", modelOnly, applicationHandler.Apply)
		applicationGroup.GET("", applicationHandler.List)
		applicationGroup.GET("/admin/recent", adminOnly, applicationHandler.Recent)
		applicationGroup.PATCH("/:id/status", adminOnly, applicationHandler.Review)

		messageHandler := handlers.NewMessageHandler(deps.Services.Messages)
		messageGroup := api.Group("/messages")
		messageGroup.Use(authMiddleware)
		messageGroup.POST("", messageHandler.Send)
		messageGroup.GET("/thread/:userID", messageHandler.Thread)
		messageGroup.GET("/unread/count", messageHandler.UnreadCount)
		messageGroup.PATCH("/read/:withUser", messageHandler.MarkRead)

		profileHandler := handlers.NewProfileHandler(deps.Services.Profiles)
		profileGroup := api.Group("/profile")
		profileGroup.Use(authMiddleware)
		profileGroup.GET("/me", profileHandler.Me)
		profileGroup.PATCH("/me", profileHandler.Update)
		profileGroup.PATCH("/avatar", profileHandler.SetAvatar)

		adminHandler := handlers.NewAdminHandler(deps.Services.Admin)
		adminGroup := api.Group("/admin")
		adminGroup.GET("/primary", adminHandler.Primary)
		adminGroup.GET("/me", authMiddleware, adminOnly, adminHandler.Me)
		adminGroup.GET("/metrics", authMiddleware, adminOnly, adminHandler.Metrics)
		adminGroup.GET("/models", authMiddleware, adminOnly, adminHandler.ListModels)
		adminGroup.GET("/models/:id", authMiddleware, adminOnly, adminHandler.GetModel)
		adminGroup.PATCH("/models/:id/status", authMiddleware, adminOnly, adminHandler.SetModelStatus)
		adminGroup.DELETE("/models/:id", authMiddleware, adminOnly, adminHandler.DeleteModel)

		uploadHandler := handlers.NewUploadHandler(deps.Services.Uploads)
		uploadGroup := api.Group("/upload")
		uploadGroup.Use(authMiddleware)
		uploadLimit := buildRateLimitMiddlewares(deps, "upload_ip", deps.Config.RateLimit.UploadMaxAttempts)
		if len(uploadLimit) > 0 {
			uploadGroup.Use(uploadLimit...)
		}
		uploadGroup.POST("/photo", uploadHandler.PresignPhoto)
	}

	return r
}

func buildRateLimitMiddlewares(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
