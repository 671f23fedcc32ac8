package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/foundly/admin-backend/internal/api/handler"
	"github.com/foundly/admin-backend/internal/api/middleware"
	"github.com/foundly/admin-backend/internal/core/domain"
	"github.com/foundly/admin-backend/internal/core/service"
	"github.com/foundly/admin-backend/internal/infrastructure/config"
	mongodb "github.com/foundly/admin-backend/internal/infrastructure/db/mongo"
	"github.com/foundly/admin-backend/internal/infrastructure/db/postgres"
	redisdb "github.com/foundly/admin-backend/internal/infrastructure/db/redis"
)

// NewRouter wires repositories, services, and handlers onto a configured
// Echo instance. Static routes win over the :collection parameter routes
// registered on the same group.
func NewRouter(cfg *config.Config, log zerolog.Logger, pg *gorm.DB, mdb *mongo.Database, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("foundly_admin"))

	authRepo := postgres.NewAuthRepository(pg)
	tokens := service.NewTokenService(
		cfg.Auth.JWTSecret,
		cfg.Auth.JWTRefreshSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	authService := service.NewAuthService(authRepo, tokens, log)

	store := mongodb.NewDocumentStore(mdb, log)
	directory := mongodb.NewUserDirectory(mdb, log)
	idem := redisdb.NewIdempotencyChecker(rdb)
	metricsService := service.NewMetricsService(store, directory, idem, log)

	authHandler := handler.NewAuthHandler(authService, cfg.Production(), cfg.Auth.RefreshTokenTTL)
	metricsHandler := handler.NewMetricsHandler(metricsService)
	collectionHandler := handler.NewCollectionHandler(store)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(pg, mdb, rdb)

	requireAuth := middleware.Auth(cfg.Auth.JWTSecret)

	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/register", authHandler.Register, requireAuth)
	auth.GET("/users", authHandler.Users, requireAuth)
	auth.DELETE("/users/:id", authHandler.DeleteUser, requireAuth, middleware.RBAC(domain.RoleSuperAdmin))

	m := e.Group("/metrics", requireAuth)
	m.GET("/posts/stats", metricsHandler.PostsStats)
	m.GET("/user-metrics", metricsHandler.UserMetrics)
	m.GET("/user-metrics/available-months", metricsHandler.AvailableMonths)
	m.GET("/latest-searches", metricsHandler.LatestSearches)
	m.GET("/conversations", metricsHandler.Conversations)
	m.GET("/access-codes", metricsHandler.AccessCodes)
	m.POST("/access-codes/create", metricsHandler.CreateAccessCodes)
	m.POST("/recalculate-average-rewards", metricsHandler.RecalculateAverageRewards)
	m.GET("/:collection", collectionHandler.GetCollection)
	m.GET("/:collection/:id", collectionHandler.GetDocument)
	m.GET("/:collection/query/:field", collectionHandler.QueryDocuments)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/prometheus", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}

// BootstrapSuperAdmin creates the configured seed super admin when absent,
// so a fresh deployment is reachable without manual SQL.
func BootstrapSuperAdmin(ctx context.Context, cfg *config.Config, pg *gorm.DB, log zerolog.Logger) error {
	repo := postgres.NewAuthRepository(pg)
	tokens := service.NewTokenService(
		cfg.Auth.JWTSecret,
		cfg.Auth.JWTRefreshSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	svc := service.NewAuthService(repo, tokens, log)
	return svc.EnsureSuperAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword)
}
