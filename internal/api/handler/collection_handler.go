package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/foundly/admin-backend/internal/api/metrics"
	"github.com/foundly/admin-backend/internal/core/ports"
)

// CollectionHandler is the generic read surface over named collections,
// used by the dashboard's raw data browser. It talks to the document store
// directly; there is no domain logic between the route and the store.
type CollectionHandler struct {
	store ports.DocumentStore
}

func NewCollectionHandler(store ports.DocumentStore) *CollectionHandler {
	return &CollectionHandler{store: store}
}

// GetCollection godoc
// @Summary      List every document in a collection
// @Tags         collections
// @Produce      json
// @Param        collection   path      string  true   "Collection name"
// @Param        environment  query     string  false  "Dataset: production or qa"
// @Success      200          {array}   map[string]interface{}
// @Security     BearerAuth
// @Router       /metrics/{collection} [get]
func (h *CollectionHandler) GetCollection(c echo.Context) error {
	name := c.Param("collection")
	metrics.CollectionReadsTotal.WithLabelValues(metrics.CollectionLabel(name)).Inc()

	docs, err := h.store.GetAll(c.Request().Context(), ctxEnvironment(c).Collection(name))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

// GetDocument godoc
// @Summary      Fetch a single document by id
// @Tags         collections
// @Produce      json
// @Param        collection   path      string  true   "Collection name"
// @Param        id           path      string  true   "Document id"
// @Param        environment  query     string  false  "Dataset: production or qa"
// @Success      200          {object}  map[string]interface{}
// @Failure      404          {object}  map[string]string
// @Security     BearerAuth
// @Router       /metrics/{collection}/{id} [get]
func (h *CollectionHandler) GetDocument(c echo.Context) error {
	name := c.Param("collection")
	metrics.CollectionReadsTotal.WithLabelValues(metrics.CollectionLabel(name)).Inc()

	doc, err := h.store.Get(c.Request().Context(), ctxEnvironment(c).Collection(name), c.Param("id"))
	if err != nil {
		return err
	}
	if doc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	return c.JSON(http.StatusOK, doc)
}

// QueryDocuments godoc
// @Summary      Query a collection on a single field
// @Description  Operator defaults to == when omitted. Supported: ==, !=, <, <=, >, >=, in, array-contains.
// @Tags         collections
// @Produce      json
// @Param        collection   path      string  true   "Collection name"
// @Param        field        path      string  true   "Field to filter on"
// @Param        operator     query     string  false  "Comparison operator"
// @Param        value        query     string  true   "Value to compare against"
// @Param        environment  query     string  false  "Dataset: production or qa"
// @Success      200          {array}   map[string]interface{}
// @Failure      400          {object}  map[string]string
// @Security     BearerAuth
// @Router       /metrics/{collection}/query/{field} [get]
func (h *CollectionHandler) QueryDocuments(c echo.Context) error {
	name := c.Param("collection")
	metrics.CollectionReadsTotal.WithLabelValues(metrics.CollectionLabel(name)).Inc()

	operator := c.QueryParam("operator")
	if operator == "" {
		operator = "=="
	}

	docs, err := h.store.Query(
		c.Request().Context(),
		ctxEnvironment(c).Collection(name),
		c.Param("field"),
		operator,
		c.QueryParam("value"),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}
