package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/casting-platform-api/internal/infra/config"
	"github.com/arklim/casting-platform-api/internal/infra/database"
	"github.com/arklim/casting-platform-api/internal/infra/logger"
	redisinfra "github.com/arklim/casting-platform-api/internal/infra/redis"
	"github.com/arklim/casting-platform-api/internal/infra/security"
	"github.com/arklim/casting-platform-api/internal/infra/storage"
	"github.com/arklim/casting-platform-api/internal/infra/telemetry"
	postgresrepo "github.com/arklim/casting-platform-api/internal/repository/postgres"
	redisrepo "github.com/arklim/casting-platform-api/internal/repository/redis"
	"github.com/arklim/casting-platform-api/internal/transport/http/middleware"
	"github.com/arklim/casting-platform-api/internal/transport/http/routes"
	"github.com/arklim/casting-platform-api/internal/usecase"
)

// Application owns the wired service graph and the HTTP server lifecycle.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

// New wires configuration, infrastructure, repositories and services into a
// runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.TracingEnabled {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
	}

	if cfg.Postgres.Migrate {
		if err := database.Migrate(ctx, cfg.Postgres, log); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	issuer, err := security.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}
	issuer = issuer.WithIssuer(cfg.JWT.Issuer)

	objectStorage, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	users := postgresrepo.NewUserRepository(pool)
	castings := postgresrepo.NewCastingRepository(pool)
	applications := postgresrepo.NewApplicationRepository(pool)
	messages := postgresrepo.NewMessageRepository(pool)

	adminDirectory := redisrepo.NewAdminDirectory(redisClient.Client(), func(ctx context.Context) (string, error) {
		admin, err := users.FirstAdmin(ctx)
		if err != nil {
			return "", err
		}
		return admin.ID, nil
	}, cfg.Redis.AdminCachePrefix, cfg.Redis.AdminCacheTTL)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "casting:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	authService := usecase.NewAuthService(cfg, users, issuer, log)
	if err := authService.SeedAdmin(ctx); err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Castings:     usecase.NewCastingService(castings),
			Applications: usecase.NewApplicationService(applications, castings),
			Messages:     usecase.NewMessageService(messages, adminDirectory),
			Profiles:     usecase.NewProfileService(users),
			Admin:        usecase.NewAdminService(users, castings, applications),
			Uploads:      usecase.NewUploadService(objectStorage),
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.tracer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting casting platform API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
