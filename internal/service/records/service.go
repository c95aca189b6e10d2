package records

import (
	"context"
	"fmt"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/lifecycle"
	"github.com/mamadbah2/pigfarm/internal/query"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

// Service groups the resource of every entity.
type Service struct {
	Sows          *SowResource
	Boars         *BoarResource
	Breedings     *BreedingResource
	Farrowings    *FarrowingResource
	Piglets       *PigletResource
	Pens          *PenResource
	HealthRecords *HealthRecordResource
	FeedRecords   *FeedRecordResource
	Users         *UserResource

	store      repository.Store
	logsSchema *query.Schema[models.ActivityLog]
}

// NewService wires every resource onto one store.
func NewService(deps Deps) *Service {
	deps = deps.withDefaults()
	deps.Logger = deps.Logger.Named("svc.records")

	return &Service{
		Sows:          newSows(deps),
		Boars:         newBoars(deps),
		Breedings:     newBreedings(deps),
		Farrowings:    newFarrowings(deps),
		Piglets:       newPiglets(deps),
		Pens:          newPens(deps),
		HealthRecords: newHealthRecords(deps),
		FeedRecords:   newFeedRecords(deps),
		Users:         newUsers(deps),
		store:         deps.Store,
		logsSchema:    ActivityLogSchema(),
	}
}

// EligibleBreedings lists the breedings that may still receive a farrowing.
func (s *Service) EligibleBreedings(ctx context.Context) ([]models.Breeding, error) {
	var eligible []models.Breeding
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		eligible, err = lifecycle.EligibleBreedings(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return eligible, nil
}

// ActivityLogs lists the audit trail through the list engine. The default
// order is newest first.
func (s *Service) ActivityLogs(ctx context.Context, p query.Params) (query.Page[models.ActivityLog], error) {
	var logs []models.ActivityLog
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		logs, err = tx.ActivityLogs().List(ctx)
		return err
	})
	if err != nil {
		return query.Page[models.ActivityLog]{}, fmt.Errorf("list activity logs: %w", err)
	}
	if len(p.Sort) == 0 {
		p.Sort = []query.SortKey{{Field: "createdAt", Direction: query.Desc}}
	}
	return s.logsSchema.Apply(logs, p)
}
