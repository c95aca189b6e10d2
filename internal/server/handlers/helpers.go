package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/lifecycle"
	"github.com/mamadbah2/pigfarm/internal/query"
)

// ActorHeader carries the id of the acting user. Authentication happens
// upstream; requests without it are attributed to "system".
const ActorHeader = "X-User-ID"

func actor(c *gin.Context) string {
	if id := c.GetHeader(ActorHeader); id != "" {
		return id
	}
	return "system"
}

// statusFor maps a domain error kind onto its HTTP status.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusUnprocessableEntity
	case apperror.KindConflict, apperror.KindState:
		return http.StatusConflict
	case apperror.KindReference, apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes domain errors as-is and hides everything else behind a
// generic 500 after logging it.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if appErr, ok := apperror.As(err); ok {
		c.JSON(statusFor(appErr.Kind), gin.H{"error": appErr})
		return
	}
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"kind": "internal", "message": "internal server error"}})
}

// bindRecord decodes the body into rec and runs the form-level field checks.
// It answers the request itself and returns false when the payload is rejected.
func bindRecord(c *gin.Context, logger *zap.Logger, rec any) bool {
	if err := c.ShouldBindJSON(rec); err != nil {
		badJSON(c, err)
		return false
	}
	if err := lifecycle.CheckFields(rec); err != nil {
		respondError(c, logger, err)
		return false
	}
	return true
}

func badJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "bad_request", "message": "invalid JSON: " + err.Error()}})
}

// listParams reads ?q=&sort=&order=&page=&pageSize=.
func listParams(c *gin.Context) (query.Params, error) {
	p := query.Params{
		Query:    c.Query("q"),
		Sort:     query.ParseSort(c.Query("sort"), c.Query("order")),
		Page:     1,
		PageSize: query.DefaultPageSize,
	}

	fields := make(map[string]string)
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fields["page"] = "must be a positive integer"
		}
		p.Page = n
	}
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > query.MaxPageSize {
			fields["pageSize"] = "must be between 1 and " + strconv.Itoa(query.MaxPageSize)
		}
		p.PageSize = n
	}
	if len(fields) > 0 {
		return query.Params{}, apperror.Validation(fields)
	}
	return p, nil
}
