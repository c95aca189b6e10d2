// Package cleanup owns the durable retention setting and runs the activity
// log purge, whether triggered by the scheduler or by an operator.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/repository"
	"github.com/mamadbah2/pigfarm/internal/retention"
	"github.com/mamadbah2/pigfarm/internal/service/activity"
	"github.com/mamadbah2/pigfarm/internal/telemetry"
)

const module = "activity-logs"

// Notifier receives a short text once a purge removed something.
type Notifier interface {
	Notify(ctx context.Context, body string) error
}

// Result describes one purge run.
type Result struct {
	RetentionDays int       `json:"retentionDays"`
	Cutoff        time.Time `json:"cutoff"`
	DeletedCount  int64     `json:"deletedCount"`
}

// Service reads and writes the retention window straight from the store; no
// copy is cached in memory.
type Service struct {
	store     repository.Store
	recorder  activity.Recorder
	notifier  Notifier
	telemetry *telemetry.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewService builds a cleanup service. recorder, notifier and tm may be nil.
func NewService(store repository.Store, recorder activity.Recorder, notifier Notifier, tm *telemetry.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &Service{
		store:     store,
		recorder:  recorder,
		notifier:  notifier,
		telemetry: tm,
		logger:    logger,
		now:       time.Now,
	}
}

// EnsureDefault stores days as the retention window unless one is already set.
func (s *Service) EnsureDefault(ctx context.Context, days int) (int, error) {
	if err := retention.ValidateDays(days); err != nil {
		return 0, err
	}

	var current int
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		setting, err := tx.Settings().Get(ctx, models.SettingRetentionDays)
		if err == nil {
			current, err = parseDays(setting)
			return err
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		current = days
		return tx.Settings().Insert(ctx, newSetting(days, s.now().UTC()))
	})
	if err != nil {
		return 0, fmt.Errorf("seed retention setting: %w", err)
	}
	return current, nil
}

// RetentionDays returns the stored retention window.
func (s *Service) RetentionDays(ctx context.Context) (int, error) {
	var days int
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		setting, err := tx.Settings().Get(ctx, models.SettingRetentionDays)
		if err != nil {
			return err
		}
		days, err = parseDays(setting)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read retention setting: %w", err)
	}
	return days, nil
}

// SetRetentionDays validates and persists a new retention window.
func (s *Service) SetRetentionDays(ctx context.Context, actor string, days int) error {
	if err := retention.ValidateDays(days); err != nil {
		s.telemetry.Rejected(module, err)
		return err
	}

	now := s.now().UTC()
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		stored, err := tx.Settings().Get(ctx, models.SettingRetentionDays)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return tx.Settings().Insert(ctx, newSetting(days, now))
		case err != nil:
			return err
		}
		next := newSetting(days, now)
		next.Carry(stored.Base, now)
		return tx.Settings().Replace(ctx, next)
	})
	if err != nil {
		return fmt.Errorf("write retention setting: %w", err)
	}

	s.recorder.Record(ctx, models.ActivityLog{
		UserID:   actor,
		Action:   models.ActionUpdate,
		Module:   "settings",
		EntityID: models.SettingRetentionDays,
		Details:  fmt.Sprintf("retention set to %d days", days),
	})
	s.logger.Info("retention window updated", zap.Int("days", days), zap.String("actor", actor))
	return nil
}

// Purge deletes activity logs older than the retention window. A nil days
// uses the stored setting.
func (s *Service) Purge(ctx context.Context, actor string, days *int) (Result, error) {
	window := 0
	if days != nil {
		window = *days
	} else {
		stored, err := s.RetentionDays(ctx)
		if err != nil {
			return Result{}, err
		}
		window = stored
	}

	now := s.now().UTC()
	deleted, err := retention.Purge(ctx, s.store, window, now)
	if err != nil {
		s.telemetry.Rejected(module, err)
		return Result{}, err
	}

	res := Result{RetentionDays: window, Cutoff: retention.Cutoff(now, window), DeletedCount: deleted}
	s.telemetry.Purged(deleted)
	s.logger.Info("activity logs purged",
		zap.Int("retention_days", window),
		zap.Time("cutoff", res.Cutoff),
		zap.Int64("deleted", deleted))

	if deleted == 0 {
		return res, nil
	}

	s.recorder.Record(ctx, models.ActivityLog{
		UserID:  actor,
		Action:  models.ActionPurge,
		Module:  module,
		Details: fmt.Sprintf("removed %d logs older than %d days", deleted, window),
	})

	if s.notifier != nil {
		msg := fmt.Sprintf("Activity log cleanup: %d entries older than %s removed.", deleted, res.Cutoff.Format("2006-01-02"))
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.logger.Warn("purge notification failed", zap.Error(err))
		}
	}
	return res, nil
}

func newSetting(days int, now time.Time) models.Setting {
	s := models.Setting{Value: strconv.Itoa(days)}
	s.Init(models.SettingRetentionDays, now)
	return s
}

func parseDays(s models.Setting) (int, error) {
	days, err := strconv.Atoi(s.Value)
	if err != nil {
		return 0, fmt.Errorf("setting %s holds %q: %w", s.ID, s.Value, err)
	}
	return days, nil
}
