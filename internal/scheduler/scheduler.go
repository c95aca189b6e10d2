package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/config"
	"github.com/mamadbah2/pigfarm/internal/service/cleanup"
)

// Purger runs the retention purge with the stored window.
type Purger interface {
	Purge(ctx context.Context, actor string, days *int) (cleanup.Result, error)
}

// Digester renders the weekly farm summary.
type Digester interface {
	WeeklyDigest(ctx context.Context) (string, error)
}

// Notifier delivers the weekly summary.
type Notifier interface {
	Notify(ctx context.Context, body string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	purger   Purger
	digester Digester
	notifier Notifier
	cfg      config.Config
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone. The
// digest job is only registered when notifier is set.
func NewScheduler(cfg config.Config, purger Purger, digester Digester, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Retention.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Retention.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		purger:   purger,
		digester: digester,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("retention_schedule", s.cfg.Retention.CronSchedule),
		zap.String("timezone", s.cfg.Retention.Timezone))

	if _, err := s.cron.AddFunc(s.cfg.Retention.CronSchedule, s.runPurge); err != nil {
		return fmt.Errorf("schedule retention purge: %w", err)
	}

	if s.notifier != nil && s.digester != nil {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendWeeklyDigest); err != nil {
			return fmt.Errorf("schedule weekly digest: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := s.purger.Purge(ctx, "scheduler", nil)
	if err != nil {
		s.logger.Error("scheduled purge failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled purge finished", zap.Int64("deleted", res.DeletedCount))
}

func (s *Scheduler) sendWeeklyDigest() {
	s.logger.Info("generating weekly digest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	digest, err := s.digester.WeeklyDigest(ctx)
	if err != nil {
		s.logger.Error("failed to generate weekly digest", zap.Error(err))
		return
	}

	if err := s.notifier.Notify(ctx, digest); err != nil {
		s.logger.Error("failed to send weekly digest", zap.Error(err))
	} else {
		s.logger.Info("weekly digest sent successfully")
	}
}
