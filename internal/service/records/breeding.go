package records

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/lifecycle"
	"github.com/mamadbah2/pigfarm/internal/metrics"
	"github.com/mamadbah2/pigfarm/internal/query"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

// BreedingResource manages breedings.
type BreedingResource = Resource[models.Breeding, *models.Breeding]

// FarrowingResource manages farrowings and can generate the litter's piglets.
type FarrowingResource struct {
	*Resource[models.Farrowing, *models.Farrowing]
}

func newBreedings(deps Deps) *BreedingResource {
	return newResource[models.Breeding, *models.Breeding](deps, definition[models.Breeding]{
		module:     "breedings",
		label:      "breeding",
		collection: func(tx repository.Tx) repository.Collection[models.Breeding] { return tx.Breedings() },
		schema:     breedingSchema(),
		defaults: func(b *models.Breeding) {
			if b.Method == "" {
				b.Method = models.MethodNatural
			}
			if b.ExpectedFarrowDate == nil && !b.BreedingDate.IsZero() {
				due := metrics.ExpectedFarrowDate(*b)
				b.ExpectedFarrowDate = &due
			}
		},
		beforeCreate: func(ctx context.Context, tx repository.Tx, b *models.Breeding) error {
			return lifecycle.ValidateBreedingCreate(ctx, tx, *b)
		},
		beforeUpdate: func(ctx context.Context, tx repository.Tx, stored models.Breeding, next *models.Breeding) error {
			if err := lifecycle.ValidateBreedingCreate(ctx, tx, *next); err != nil {
				return err
			}
			_, farrowed, err := repository.FindFarrowingByBreeding(ctx, tx, stored.ID)
			if err != nil {
				return fmt.Errorf("lookup farrowing of breeding %s: %w", stored.ID, err)
			}
			if !farrowed {
				return nil
			}
			if next.Failed() {
				return apperror.State("breeding %s has a farrowing and cannot be marked unsuccessful", stored.ID)
			}
			if next.SowID != stored.SowID {
				return apperror.State("breeding %s has a farrowing; its sow cannot change", stored.ID)
			}
			return nil
		},
		beforeDelete: func(ctx context.Context, tx repository.Tx, stored models.Breeding) error {
			_, farrowed, err := repository.FindFarrowingByBreeding(ctx, tx, stored.ID)
			if err != nil {
				return fmt.Errorf("lookup farrowing of breeding %s: %w", stored.ID, err)
			}
			if farrowed {
				return apperror.Conflict("breeding %s has a farrowing; delete the farrowing first", stored.ID)
			}
			return nil
		},
	})
}

func newFarrowings(deps Deps) *FarrowingResource {
	return &FarrowingResource{newResource[models.Farrowing, *models.Farrowing](deps, definition[models.Farrowing]{
		module:     "farrowings",
		label:      "farrowing",
		collection: func(tx repository.Tx) repository.Collection[models.Farrowing] { return tx.Farrowings() },
		schema:     farrowingSchema(deps.Now),
		beforeCreate: func(ctx context.Context, tx repository.Tx, f *models.Farrowing) error {
			_, err := lifecycle.ValidateFarrowingCreate(ctx, tx, *f)
			return err
		},
		afterCreate: markFarrowed,
		beforeUpdate: func(_ context.Context, _ repository.Tx, stored models.Farrowing, next *models.Farrowing) error {
			if next.BreedingID != stored.BreedingID {
				return apperror.Field("breedingId", "cannot be changed")
			}
			if next.SowID != stored.SowID {
				return apperror.Field("sowId", "must match the sow of the breeding")
			}
			return nil
		},
		remove: func(ctx context.Context, tx repository.Tx, stored models.Farrowing) (int64, error) {
			return lifecycle.CascadeFarrowingDelete(ctx, tx, stored.ID)
		},
	})}
}

// markFarrowed settles the breeding as successful when it was still open and
// moves the sow to LACTATING when her current status allows it.
func markFarrowed(ctx context.Context, tx repository.Tx, f models.Farrowing) error {
	breeding, err := tx.Breedings().Get(ctx, f.BreedingID)
	if err != nil {
		return fmt.Errorf("load breeding %s: %w", f.BreedingID, err)
	}
	if breeding.Success == nil {
		success := true
		breeding.Success = &success
		breeding.UpdatedAt = f.CreatedAt
		if err := tx.Breedings().Replace(ctx, breeding); err != nil {
			return fmt.Errorf("settle breeding %s: %w", breeding.ID, err)
		}
	}

	sow, err := tx.Sows().Get(ctx, f.SowID)
	if err != nil {
		return fmt.Errorf("load sow %s: %w", f.SowID, err)
	}
	if sow.Status != models.SowLactating && lifecycle.CanSowTransition(sow.Status, models.SowLactating) {
		sow.Status = models.SowLactating
		sow.UpdatedAt = f.CreatedAt
		if err := tx.Sows().Replace(ctx, sow); err != nil {
			return fmt.Errorf("update sow %s: %w", sow.ID, err)
		}
	}
	return nil
}

// CreateLitter records a farrowing and, when generate is set, one NURSING
// piglet per live birth tagged <sowTag>-<yyyymmdd>-NN, all in one transaction.
func (r *FarrowingResource) CreateLitter(ctx context.Context, actor string, f models.Farrowing, generate bool) (models.Farrowing, int, error) {
	if !generate {
		created, err := r.Create(ctx, actor, f)
		return created, 0, err
	}

	var generated int
	created, err := r.create(ctx, actor, f, func(ctx context.Context, tx repository.Tx, f models.Farrowing) error {
		n, err := r.generatePiglets(ctx, tx, f)
		generated = n
		return err
	})
	if err != nil {
		return created, 0, err
	}

	if generated > 0 {
		r.deps.Telemetry.Wrote("piglets", models.ActionCreate)
		r.deps.Recorder.Record(ctx, models.ActivityLog{
			UserID:   actor,
			Action:   models.ActionCreate,
			Module:   "piglets",
			EntityID: created.ID,
			Details:  fmt.Sprintf("generated %d piglets for farrowing %s", generated, created.ID),
		})
		r.deps.Logger.Info("litter generated",
			zap.String("farrowing_id", created.ID),
			zap.Int("piglets", generated))
	}
	return created, generated, nil
}

func (r *FarrowingResource) generatePiglets(ctx context.Context, tx repository.Tx, f models.Farrowing) (int, error) {
	sow, err := tx.Sows().Get(ctx, f.SowID)
	if err != nil {
		return 0, fmt.Errorf("load sow %s: %w", f.SowID, err)
	}

	var weight *float64
	if f.AverageBirthWeight != nil {
		w := *f.AverageBirthWeight
		weight = &w
	}

	for i := 1; i <= f.Alive(); i++ {
		p := models.Piglet{
			TagNumber:   PigletTag(sow.TagNumber, f.FarrowingDate, i),
			FarrowingID: f.ID,
			BirthWeight: weight,
			Status:      models.PigletNursing,
		}
		p.Init(r.deps.NewID(), f.CreatedAt)
		if err := tx.Piglets().Insert(ctx, p); err != nil {
			return 0, fmt.Errorf("insert piglet %s: %w", p.TagNumber, err)
		}
	}
	return f.Alive(), nil
}

// PigletTag builds the tag of the n-th generated piglet of a litter.
func PigletTag(sowTag string, farrowed time.Time, n int) string {
	return fmt.Sprintf("%s-%s-%02d", sowTag, farrowed.Format("20060102"), n)
}

func breedingSchema() *query.Schema[models.Breeding] {
	return query.NewSchema(
		text("sowId", func(b models.Breeding) any { return b.SowID }),
		text("boarId", func(b models.Breeding) any { return b.BoarID }),
		date("breedingDate", func(b models.Breeding) any { return b.BreedingDate }),
		text("method", func(b models.Breeding) any { return b.Method }),
		date("expectedFarrowDate", func(b models.Breeding) any { return metrics.ExpectedFarrowDate(b) }),
		number("success", func(b models.Breeding) any { return b.Success }),
		text("notes", func(b models.Breeding) any { return b.Notes }),
		date("createdAt", func(b models.Breeding) any { return b.CreatedAt }),
	)
}

func farrowingSchema(now func() time.Time) *query.Schema[models.Farrowing] {
	return query.NewSchema(
		text("sowId", func(f models.Farrowing) any { return f.SowID }),
		text("breedingId", func(f models.Farrowing) any { return f.BreedingID }),
		date("farrowingDate", func(f models.Farrowing) any { return f.FarrowingDate }),
		number("ageDays", func(f models.Farrowing) any { return metrics.AgeInDays(f.FarrowingDate, now()) }),
		number("totalBorn", func(f models.Farrowing) any { return f.TotalBorn }),
		number("bornAlive", func(f models.Farrowing) any { return f.BornAlive }),
		number("stillborn", func(f models.Farrowing) any { return f.Stillborn }),
		number("mummified", func(f models.Farrowing) any { return f.Mummified }),
		number("averageBirthWeight", func(f models.Farrowing) any { return f.AverageBirthWeight }),
		text("notes", func(f models.Farrowing) any { return f.Notes }),
		date("createdAt", func(f models.Farrowing) any { return f.CreatedAt }),
	)
}
