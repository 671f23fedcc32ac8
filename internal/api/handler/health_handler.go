package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"
)

const probeTimeout = 3 * time.Second

// HealthHandler answers liveness probes.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Liveness godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHandler pings every backing store.
type ReadinessHandler struct {
	pg    *gorm.DB
	mongo *mongo.Database
	redis *redis.Client
}

func NewReadinessHandler(pg *gorm.DB, mdb *mongo.Database, rdb *redis.Client) *ReadinessHandler {
	return &ReadinessHandler{pg: pg, mongo: mdb, redis: rdb}
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Pings Postgres, Mongo, and Redis; reports per-dependency status.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health/ready [get]
func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	status := map[string]string{
		"postgres": "ok",
		"mongo":    "ok",
		"redis":    "ok",
	}
	healthy := true

	if sqlDB, err := h.pg.DB(); err != nil {
		status["postgres"] = err.Error()
		healthy = false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		status["postgres"] = err.Error()
		healthy = false
	}

	if err := h.mongo.Client().Ping(ctx, readpref.Primary()); err != nil {
		status["mongo"] = err.Error()
		healthy = false
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		status["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	return c.JSON(http.StatusOK, status)
}
