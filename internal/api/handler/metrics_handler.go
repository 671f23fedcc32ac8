package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/foundly/admin-backend/internal/api/metrics"
	"github.com/foundly/admin-backend/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// MetricsHandler serves the /metrics dashboard surface. Every endpoint
// accepts an optional ?environment=qa|production query parameter selecting
// the dataset.
type MetricsHandler struct {
	service ports.MetricsService
}

func NewMetricsHandler(service ports.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

type createCodesRequest struct {
	Count int `json:"count" validate:"required,min=1,max=100"`
}

// PostsStats godoc
// @Summary      Dashboard posts summary
// @Tags         metrics
// @Produce      json
// @Param        environment  query     string  false  "Dataset: production or qa"
// @Success      200          {object}  ports.PostsStats
// @Security     BearerAuth
// @Router       /metrics/posts/stats [get]
func (h *MetricsHandler) PostsStats(c echo.Context) error {
	stats, err := h.service.PostsStats(c.Request().Context(), ctxEnvironment(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// UserMetrics godoc
// @Summary      End-user totals and signup growth
// @Description  With year and month the growth series covers that calendar month; otherwise it covers the trailing 30 days.
// @Tags         metrics
// @Produce      json
// @Param        environment  query     string  false  "Dataset: production or qa"
// @Param        year         query     int     false  "Calendar year"
// @Param        month        query     int     false  "Calendar month (1-12)"
// @Success      200          {object}  ports.UserMetrics
// @Security     BearerAuth
// @Router       /metrics/user-metrics [get]
func (h *MetricsHandler) UserMetrics(c echo.Context) error {
	year, err := intQueryParam(c, "year")
	if err != nil {
		return err
	}
	month, err := intQueryParam(c, "month")
	if err != nil {
		return err
	}
	if month < 0 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "month must be between 1 and 12")
	}

	m, err := h.service.UserMetrics(c.Request().Context(), ctxEnvironment(c), year, month)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// AvailableMonths godoc
// @Summary      Months with at least one signup, newest first
// @Tags         metrics
// @Produce      json
// @Param        environment  query    string  false  "Dataset: production or qa"
// @Success      200          {array}  string
// @Security     BearerAuth
// @Router       /metrics/user-metrics/available-months [get]
func (h *MetricsHandler) AvailableMonths(c echo.Context) error {
	months, err := h.service.AvailableMonths(c.Request().Context(), ctxEnvironment(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, months)
}

// LatestSearches godoc
// @Summary      Ten most recent search queries
// @Tags         metrics
// @Produce      json
// @Param        environment  query     string  false  "Dataset: production or qa"
// @Success      200          {object}  ports.LatestSearches
// @Security     BearerAuth
// @Router       /metrics/latest-searches [get]
func (h *MetricsHandler) LatestSearches(c echo.Context) error {
	searches, err := h.service.LatestSearches(c.Request().Context(), ctxEnvironment(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searches)
}

// Conversations godoc
// @Summary      Recent message threads grouped by participant pair and post
// @Tags         metrics
// @Produce      json
// @Param        environment  query    string  false  "Dataset: production or qa"
// @Success      200          {array}  ports.Conversation
// @Security     BearerAuth
// @Router       /metrics/conversations [get]
func (h *MetricsHandler) Conversations(c echo.Context) error {
	conversations, err := h.service.Conversations(c.Request().Context(), ctxEnvironment(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversations)
}

// AccessCodes godoc
// @Summary      Paginated invite codes, newest first
// @Tags         metrics
// @Produce      json
// @Param        environment  query     string  false  "Dataset: production or qa"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Page size (default 10)"
// @Success      200          {object}  ports.AccessCodePage
// @Security     BearerAuth
// @Router       /metrics/access-codes [get]
func (h *MetricsHandler) AccessCodes(c echo.Context) error {
	page, err := intQueryParam(c, "page")
	if err != nil {
		return err
	}
	limit, err := intQueryParam(c, "limit")
	if err != nil {
		return err
	}
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	codes, err := h.service.AccessCodes(c.Request().Context(), ctxEnvironment(c), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, codes)
}

// CreateAccessCodes godoc
// @Summary      Create a batch of invite codes
// @Description  Accepts 1 to 100 codes per request. An Idempotency-Key header makes the batch safe to retry.
// @Tags         metrics
// @Accept       json
// @Produce      json
// @Param        environment      query     string             false  "Dataset: production or qa"
// @Param        Idempotency-Key  header    string             false  "Client-chosen retry key"
// @Param        request          body      createCodesRequest true   "Batch size"
// @Success      201              {object}  ports.CreatedCodes
// @Failure      400              {object}  map[string]string
// @Security     BearerAuth
// @Router       /metrics/access-codes/create [post]
func (h *MetricsHandler) CreateAccessCodes(c echo.Context) error {
	email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createCodesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.CreateAccessCodes(
		c.Request().Context(),
		ctxEnvironment(c),
		req.Count,
		email,
		c.Request().Header.Get("Idempotency-Key"),
	)
	if err != nil {
		return err
	}
	metrics.AccessCodesCreatedTotal.Add(float64(len(created.Codes)))

	return c.JSON(http.StatusCreated, created)
}

// RecalculateAverageRewards godoc
// @Summary      Rebuild the per-category average-rewards aggregate
// @Tags         metrics
// @Produce      json
// @Param        environment  query     string  false  "Dataset: production or qa"
// @Success      200          {object}  ports.RecalculationResult
// @Security     BearerAuth
// @Router       /metrics/recalculate-average-rewards [post]
func (h *MetricsHandler) RecalculateAverageRewards(c echo.Context) error {
	result, err := h.service.RecalculateAverageRewards(c.Request().Context(), ctxEnvironment(c))
	if err != nil {
		return err
	}
	metrics.RewardRecalculationsTotal.Inc()

	return c.JSON(http.StatusOK, result)
}

// intQueryParam parses an optional integer query parameter, returning 0 when
// absent and 400 when malformed.
func intQueryParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}
