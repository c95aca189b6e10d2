package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/config"
	"github.com/mamadbah2/pigfarm/internal/repository/mongodb"
	"github.com/mamadbah2/pigfarm/internal/repository/sheets"
	"github.com/mamadbah2/pigfarm/internal/scheduler"
	"github.com/mamadbah2/pigfarm/internal/server/handlers"
	"github.com/mamadbah2/pigfarm/internal/server/router"
	"github.com/mamadbah2/pigfarm/internal/service/activity"
	cleanupsvc "github.com/mamadbah2/pigfarm/internal/service/cleanup"
	"github.com/mamadbah2/pigfarm/internal/service/records"
	reportingsvc "github.com/mamadbah2/pigfarm/internal/service/reporting"
	"github.com/mamadbah2/pigfarm/internal/telemetry"
	whatsappclient "github.com/mamadbah2/pigfarm/pkg/clients/whatsapp"
	"github.com/mamadbah2/pigfarm/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	mongoRepo, err := mongodb.NewMongoDBRepository(startCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(baseLogger, "repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var exporter sheets.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startCtx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, list export disabled")
	}

	var notifier *whatsappclient.Notifier
	if cfg.WhatsApp.Enabled() {
		notifier = whatsappclient.NewNotifier(whatsappclient.NewClient(cfg.WhatsApp), cfg.WhatsApp.ManagerID)
		baseLogger.Info("whatsapp notifications enabled")
	} else {
		baseLogger.Warn("whatsapp not configured, notifications disabled")
	}

	metrics := telemetry.New()
	recorder := activity.NewWriter(mongoRepo, logger.Named(baseLogger, "svc.activity"))

	recordSvc := records.NewService(records.Deps{
		Store:     mongoRepo,
		Recorder:  recorder,
		Telemetry: metrics,
		Logger:    baseLogger,
	})
	farmLocation, err := cfg.Retention.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}
	reportingSvc := reportingsvc.NewService(mongoRepo, farmLocation, logger.Named(baseLogger, "svc.reporting"))

	var (
		cleanupNotifier cleanupsvc.Notifier
		digestNotifier  scheduler.Notifier
	)
	if notifier != nil {
		cleanupNotifier = notifier
		digestNotifier = notifier
	}
	cleanupSvc := cleanupsvc.NewService(mongoRepo, recorder, cleanupNotifier, metrics, logger.Named(baseLogger, "svc.cleanup"))

	days, err := cleanupSvc.EnsureDefault(startCtx, cfg.Retention.Days)
	if err != nil {
		baseLogger.Fatal("failed to seed retention setting", zap.Error(err))
	}
	baseLogger.Info("retention window loaded", zap.Int("days", days))

	farmHandler := handlers.NewFarmHandler(recordSvc, reportingSvc, cleanupSvc, logger.Named(baseLogger, "handlers.farm"))
	engine := router.New(router.Deps{
		Records:  recordSvc,
		Farm:     farmHandler,
		Exporter: exporter,
		Metrics:  metrics,
	}, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(*cfg, cleanupSvc, reportingSvc, digestNotifier, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
