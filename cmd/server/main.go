package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/foundly/admin-backend/docs"
	"github.com/foundly/admin-backend/internal/api"
	"github.com/foundly/admin-backend/internal/infrastructure/config"
	mongodb "github.com/foundly/admin-backend/internal/infrastructure/db/mongo"
	"github.com/foundly/admin-backend/internal/infrastructure/db/postgres"
	redisdb "github.com/foundly/admin-backend/internal/infrastructure/db/redis"
	"github.com/foundly/admin-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Foundly Admin API
// @version         1.0
// @description     Internal admin dashboard backend for the Foundly lost-and-found platform.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})

	ctx := context.Background()

	pg, err := postgres.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	authRepo := postgres.NewAuthRepository(pg)
	if err := authRepo.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("postgres migration failed")
	}

	mongoClient, mdb, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	if cfg.Auth.BootstrapAdminEmail != "" {
		if err := api.BootstrapSuperAdmin(ctx, cfg, pg, log); err != nil {
			log.Warn().Err(err).Msg("super admin bootstrap failed")
		}
	}

	e := api.NewRouter(cfg, log, pg, mdb, rdb)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
}
