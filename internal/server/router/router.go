package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/repository/sheets"
	"github.com/mamadbah2/pigfarm/internal/server/handlers"
	"github.com/mamadbah2/pigfarm/internal/service/records"
	"github.com/mamadbah2/pigfarm/internal/telemetry"
)

// Deps are the services exposed over HTTP.
type Deps struct {
	Records  *records.Service
	Farm     *handlers.FarmHandler
	Exporter sheets.Exporter
	Metrics  *telemetry.Metrics
}

// New wires the Gin engine with required routes and middlewares.
func New(deps Deps, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(deps.Metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/api/v1")
	svc := deps.Records
	hl := logger.Named("handlers")
	farm := deps.Farm

	// Fixed paths are registered before the /:id routes of the same group.
	api.GET("/breedings/eligible", farm.EligibleBreedings)
	api.GET("/pens/occupancy", farm.PenOccupancy)
	api.GET("/sows/:id/stats", farm.SowStats)

	handlers.NewEntityHandler[models.Sow](svc.Sows, deps.Exporter, hl).Register(api.Group("/sows"))
	handlers.NewEntityHandler[models.Boar](svc.Boars, deps.Exporter, hl).Register(api.Group("/boars"))
	handlers.NewEntityHandler[models.Breeding](svc.Breedings, deps.Exporter, hl).Register(api.Group("/breedings"))
	handlers.NewFarrowingHandler(svc.Farrowings, deps.Exporter, hl).Register(api.Group("/farrowings"))
	handlers.NewEntityHandler[models.Piglet](svc.Piglets, deps.Exporter, hl).Register(api.Group("/piglets"))
	handlers.NewEntityHandler[models.Pen](svc.Pens, deps.Exporter, hl).Register(api.Group("/pens"))
	handlers.NewEntityHandler[models.HealthRecord](svc.HealthRecords, deps.Exporter, hl).Register(api.Group("/health-records"))
	handlers.NewEntityHandler[models.FeedRecord](svc.FeedRecords, deps.Exporter, hl).Register(api.Group("/feed-records"))
	handlers.NewEntityHandler[models.User](svc.Users, deps.Exporter, hl).Register(api.Group("/users"))

	api.GET("/dashboard", farm.Dashboard)
	api.GET("/activity-logs", farm.ActivityLogs)
	api.GET("/activity-logs/stats", farm.ActivityStats)
	api.POST("/activity-logs/purge", farm.Purge)
	api.GET("/settings/retention", farm.Retention)
	api.PUT("/settings/retention", farm.SetRetention)

	logger.Info("router initialized")

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func metricsMiddleware(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
