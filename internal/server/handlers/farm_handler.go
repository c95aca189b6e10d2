package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/service/cleanup"
	"github.com/mamadbah2/pigfarm/internal/service/records"
	"github.com/mamadbah2/pigfarm/internal/service/reporting"
)

// FarmHandler serves the read-side aggregates, the activity log and the
// retention controls.
type FarmHandler struct {
	records   *records.Service
	reporting *reporting.Service
	cleanup   *cleanup.Service
	logger    *zap.Logger
}

// NewFarmHandler constructs the HTTP handler adapter.
func NewFarmHandler(rec *records.Service, rep *reporting.Service, cln *cleanup.Service, logger *zap.Logger) *FarmHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FarmHandler{records: rec, reporting: rep, cleanup: cln, logger: logger}
}

// Dashboard GET /dashboard
func (h *FarmHandler) Dashboard(c *gin.Context) {
	d, err := h.reporting.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// SowStats GET /sows/:id/stats
func (h *FarmHandler) SowStats(c *gin.Context) {
	stats, err := h.reporting.SowStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// PenOccupancy GET /pens/occupancy
func (h *FarmHandler) PenOccupancy(c *gin.Context) {
	rows, err := h.reporting.PenOccupancy(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

// EligibleBreedings GET /breedings/eligible
func (h *FarmHandler) EligibleBreedings(c *gin.Context) {
	items, err := h.records.EligibleBreedings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ActivityLogs GET /activity-logs
func (h *FarmHandler) ActivityLogs(c *gin.Context) {
	p, err := listParams(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	page, err := h.records.ActivityLogs(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ActivityStats GET /activity-logs/stats
func (h *FarmHandler) ActivityStats(c *gin.Context) {
	stats, err := h.reporting.ActivityStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type purgeRequest struct {
	RetentionDays *int `json:"retentionDays"`
}

// Purge POST /activity-logs/purge
func (h *FarmHandler) Purge(c *gin.Context) {
	var req purgeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badJSON(c, err)
		return
	}
	res, err := h.cleanup.Purge(c.Request.Context(), actor(c), req.RetentionDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Retention GET /settings/retention
func (h *FarmHandler) Retention(c *gin.Context) {
	days, err := h.cleanup.RetentionDays(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"retentionDays": days})
}

type retentionRequest struct {
	RetentionDays int `json:"retentionDays"`
}

// SetRetention PUT /settings/retention
func (h *FarmHandler) SetRetention(c *gin.Context) {
	var req retentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := h.cleanup.SetRetentionDays(c.Request.Context(), actor(c), req.RetentionDays); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"retentionDays": req.RetentionDays})
}
