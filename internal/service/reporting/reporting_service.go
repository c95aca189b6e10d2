package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/lifecycle"
	"github.com/mamadbah2/pigfarm/internal/metrics"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

const dateLayout = "2006-01-02"

// Dashboard is the payload of the farm overview screen.
type Dashboard struct {
	GeneratedAt time.Time              `json:"generatedAt"`
	Herd        metrics.HerdSummary    `json:"herd"`
	Activity    metrics.ActivityStats  `json:"activity"`
	Occupancy   []metrics.PenOccupancy `json:"occupancy"`
}

// Service computes read-side aggregates from the store.
type Service struct {
	store  repository.Store
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance. Day boundaries ("today",
// digest dates) follow loc; nil means UTC.
func NewService(store repository.Store, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, loc: loc, logger: logger, now: time.Now}
}

func (s *Service) clock() time.Time { return s.now().In(s.loc) }

// Dashboard loads every collection it needs concurrently and aggregates them.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		snap metrics.Snapshot
		logs []models.ActivityLog
	)

	g, ctx := errgroup.WithContext(ctx)
	load := func(name string, fn func(ctx context.Context, tx repository.Tx) error) {
		g.Go(func() error {
			if err := s.store.View(ctx, fn); err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
			return nil
		})
	}

	load("sows", func(ctx context.Context, tx repository.Tx) (err error) {
		snap.Sows, err = tx.Sows().List(ctx)
		return err
	})
	load("boars", func(ctx context.Context, tx repository.Tx) (err error) {
		snap.Boars, err = tx.Boars().List(ctx)
		return err
	})
	load("farrowings", func(ctx context.Context, tx repository.Tx) (err error) {
		snap.Farrowings, err = tx.Farrowings().List(ctx)
		return err
	})
	load("piglets", func(ctx context.Context, tx repository.Tx) (err error) {
		snap.Piglets, err = tx.Piglets().List(ctx)
		return err
	})
	load("pens", func(ctx context.Context, tx repository.Tx) (err error) {
		snap.Pens, err = tx.Pens().List(ctx)
		return err
	})
	load("eligible breedings", func(ctx context.Context, tx repository.Tx) (err error) {
		snap.Eligible, err = lifecycle.EligibleBreedings(ctx, tx)
		return err
	})
	load("activity logs", func(ctx context.Context, tx repository.Tx) (err error) {
		logs, err = tx.ActivityLogs().List(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	now := s.clock()
	return Dashboard{
		GeneratedAt: now.UTC(),
		Herd:        metrics.Herd(snap, now),
		Activity:    metrics.Activity(logs, now),
		Occupancy:   metrics.Occupancy(snap.Pens),
	}, nil
}

// SowStats returns the lifetime productivity of one sow.
func (s *Service) SowStats(ctx context.Context, sowID string) (metrics.SowStats, error) {
	var (
		farrowings []models.Farrowing
		piglets    []models.Piglet
	)
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Sows().Get(ctx, sowID); err != nil {
			return err
		}
		var err error
		if farrowings, err = tx.Farrowings().List(ctx); err != nil {
			return err
		}
		piglets, err = tx.Piglets().List(ctx)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return metrics.SowStats{}, apperror.NotFound("sow %s not found", sowID)
	}
	if err != nil {
		return metrics.SowStats{}, fmt.Errorf("load sow %s history: %w", sowID, err)
	}
	return metrics.SowLifetimeStats(sowID, farrowings, piglets), nil
}

// PenOccupancy returns the occupancy row of every pen.
func (s *Service) PenOccupancy(ctx context.Context) ([]metrics.PenOccupancy, error) {
	var pens []models.Pen
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) (err error) {
		pens, err = tx.Pens().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load pens: %w", err)
	}
	return metrics.Occupancy(pens), nil
}

// ActivityStats groups the activity log by period, action, module and user.
func (s *Service) ActivityStats(ctx context.Context) (metrics.ActivityStats, error) {
	var logs []models.ActivityLog
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) (err error) {
		logs, err = tx.ActivityLogs().List(ctx)
		return err
	})
	if err != nil {
		return metrics.ActivityStats{}, fmt.Errorf("load activity logs: %w", err)
	}
	return metrics.Activity(logs, s.clock()), nil
}

// WeeklyDigest renders the dashboard as a short text message for the farm manager.
func (s *Service) WeeklyDigest(ctx context.Context) (string, error) {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return "", err
	}

	h := d.Herd
	var b strings.Builder
	fmt.Fprintf(&b, "Farm summary %s\n", d.GeneratedAt.Format(dateLayout))
	fmt.Fprintf(&b, "Sows: %d (pregnant %d, lactating %d)\n",
		h.Sows, h.SowsByStatus[string(models.SowPregnant)], h.SowsByStatus[string(models.SowLactating)])
	fmt.Fprintf(&b, "Boars: %d\n", h.Boars)
	fmt.Fprintf(&b, "Piglets alive: %d of %d\n", h.PigletsAlive, h.Piglets)
	fmt.Fprintf(&b, "Open breedings: %d, due within 7 days: %d\n", h.EligibleBreedings, h.DueWithin7Days)
	fmt.Fprintf(&b, "Pen occupancy: %.1f%% (%s)\n", h.OccupancyPct, h.OccupancyLevel)

	for _, p := range d.Occupancy {
		if p.Level == metrics.OccupancyCritical {
			fmt.Fprintf(&b, "Pen %s is at %.1f%%\n", p.PenNumber, p.Percent)
		}
	}
	fmt.Fprintf(&b, "Activity last 7 days: %d", d.Activity.Last7)

	s.logger.Debug("weekly digest rendered", zap.Int("bytes", b.Len()))
	return b.String(), nil
}
