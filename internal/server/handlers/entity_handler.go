package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/query"
	"github.com/mamadbah2/pigfarm/internal/repository/sheets"
	"github.com/mamadbah2/pigfarm/internal/service/records"
)

// Resource is the record service behind one entity route group.
type Resource[T any] interface {
	Module() string
	Schema() *query.Schema[T]
	List(ctx context.Context, p query.Params) (query.Page[T], error)
	Find(ctx context.Context, q string, sort []query.SortKey) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, actor string, rec T) (T, error)
	Update(ctx context.Context, actor, id string, rec T) (T, error)
	Delete(ctx context.Context, actor, id string) (int64, error)
}

// EntityHandler serves the CRUD, list and export routes of one entity.
type EntityHandler[T any] struct {
	svc      Resource[T]
	exporter sheets.Exporter
	logger   *zap.Logger
	create   gin.HandlerFunc
}

// NewEntityHandler builds the handler. exporter may be nil, in which case
// export requests answer 501.
func NewEntityHandler[T any](svc Resource[T], exporter sheets.Exporter, logger *zap.Logger) *EntityHandler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityHandler[T]{svc: svc, exporter: exporter, logger: logger}
}

// NewFarrowingHandler adds ?generatePiglets=true to the farrowing create route.
func NewFarrowingHandler(svc *records.FarrowingResource, exporter sheets.Exporter, logger *zap.Logger) *EntityHandler[models.Farrowing] {
	h := NewEntityHandler[models.Farrowing](svc, exporter, logger)
	h.create = func(c *gin.Context) {
		var f models.Farrowing
		if !bindRecord(c, h.logger, &f) {
			return
		}
		generate, _ := strconv.ParseBool(c.DefaultQuery("generatePiglets", "false"))
		created, piglets, err := svc.CreateLitter(c.Request.Context(), actor(c), f, generate)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"farrowing": created, "pigletsCreated": piglets})
	}
	return h
}

// Register mounts the routes under group.
func (h *EntityHandler[T]) Register(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.POST("/export", h.Export)
}

// List GET /<entity>
func (h *EntityHandler[T]) List(c *gin.Context) {
	p, err := listParams(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	page, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get GET /<entity>/:id
func (h *EntityHandler[T]) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Create POST /<entity>
func (h *EntityHandler[T]) Create(c *gin.Context) {
	if h.create != nil {
		h.create(c)
		return
	}
	var rec T
	if !bindRecord(c, h.logger, &rec) {
		return
	}
	created, err := h.svc.Create(c.Request.Context(), actor(c), rec)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update PUT /<entity>/:id
func (h *EntityHandler[T]) Update(c *gin.Context) {
	var rec T
	if !bindRecord(c, h.logger, &rec) {
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), actor(c), c.Param("id"), rec)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete DELETE /<entity>/:id
func (h *EntityHandler[T]) Delete(c *gin.Context) {
	n, err := h.svc.Delete(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

// Export POST /<entity>/export writes the filtered, sorted list to the sheet
// tab named after the entity.
func (h *EntityHandler[T]) Export(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": gin.H{"kind": "unavailable", "message": "spreadsheet export is not configured"}})
		return
	}

	items, err := h.svc.Find(c.Request.Context(), c.Query("q"), query.ParseSort(c.Query("sort"), c.Query("order")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	header, rows := h.svc.Schema().Rows(items)
	n, err := h.exporter.ExportRows(c.Request.Context(), h.svc.Module(), header, rows)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sheet": h.svc.Module(), "exportedRows": n})
}
