package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/brightpath/school-portal/internal/api/handler"
	"github.com/brightpath/school-portal/internal/api/middleware"
	"github.com/brightpath/school-portal/internal/core/domain"
	"github.com/brightpath/school-portal/internal/core/ports"
	"github.com/brightpath/school-portal/internal/core/service"
	"github.com/brightpath/school-portal/internal/infrastructure/config"
	mongodb "github.com/brightpath/school-portal/internal/infrastructure/db/mongo"
	"github.com/brightpath/school-portal/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil when the in-memory rate-limit backend is configured; audit
// and counterStore are constructed by the caller, which owns their lifecycle.
func NewRouter(db *mongo.Database, rdb *redis.Client, audit ports.AuditSink, counterStore ports.CounterStore, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Dependencies ---
	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
		RotateRefresh: cfg.Auth.RotateRefresh,
	})
	if err != nil {
		return nil, err
	}

	limiter := service.NewRateLimiter(counterStore, log)
	gate := service.NewAdmissionGate(limiter, tokens, log)

	authRepo := mongodb.NewAuthRepository(db)
	seqRepo := mongodb.NewSequenceRepository(db)
	sequences := service.NewSequenceService(seqRepo, audit, log)
	authService := service.NewAuthService(authRepo, tokens, sequences, audit, log)

	authHandler := handler.NewAuthHandler(authService)
	seqHandler := handler.NewSequenceHandler(sequences)

	// --- Public auth routes (strict window, keyed by client IP) ---
	e.POST("/auth/login", authHandler.Login,
		middleware.RateLimit(limiter, service.PresetAuth, nil))
	e.POST("/auth/refresh", authHandler.Refresh,
		middleware.RateLimit(limiter, service.PresetAuth, nil))

	// --- Admin routes ---
	e.POST("/auth/register", authHandler.Register,
		middleware.Admission(gate, middleware.AdmissionOptions{
			Preset: service.PresetAPI,
			Roles:  []string{domain.RoleAdmin},
		}))
	e.POST("/admin/registration-numbers", seqHandler.Allocate,
		middleware.Admission(gate, middleware.AdmissionOptions{
			Preset: service.PresetSensitive,
			Roles:  []string{domain.RoleAdmin},
			Key:    middleware.BySubject,
		}))

	// --- Health probes & metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
