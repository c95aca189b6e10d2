package records

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/lifecycle"
	"github.com/mamadbah2/pigfarm/internal/metrics"
	"github.com/mamadbah2/pigfarm/internal/query"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

// SowResource manages sows.
type SowResource = Resource[models.Sow, *models.Sow]

// BoarResource manages boars.
type BoarResource = Resource[models.Boar, *models.Boar]

func newSows(deps Deps) *SowResource {
	return newResource[models.Sow, *models.Sow](deps, definition[models.Sow]{
		module:     "sows",
		label:      "sow",
		collection: func(tx repository.Tx) repository.Collection[models.Sow] { return tx.Sows() },
		schema:     sowSchema(deps.Now),
		defaults: func(s *models.Sow) {
			if s.Status == "" {
				s.Status = models.SowActive
			}
		},
		beforeUpdate: func(_ context.Context, _ repository.Tx, stored models.Sow, next *models.Sow) error {
			return lifecycle.CheckSowTransition(stored.Status, next.Status)
		},
		beforeDelete: func(ctx context.Context, tx repository.Tx, stored models.Sow) error {
			if err := rejectIfBred(ctx, tx, "sow", stored.ID, func(b models.Breeding) string { return b.SowID }); err != nil {
				return err
			}
			return lifecycle.RejectIfTreated(ctx, tx, "sow", stored.ID, func(h models.HealthRecord) *string { return h.SowID })
		},
	})
}

func newBoars(deps Deps) *BoarResource {
	return newResource[models.Boar, *models.Boar](deps, definition[models.Boar]{
		module:     "boars",
		label:      "boar",
		collection: func(tx repository.Tx) repository.Collection[models.Boar] { return tx.Boars() },
		schema:     boarSchema(deps.Now),
		defaults: func(b *models.Boar) {
			if b.Status == "" {
				b.Status = models.BoarActive
			}
		},
		beforeUpdate: func(_ context.Context, _ repository.Tx, stored models.Boar, next *models.Boar) error {
			return lifecycle.CheckBoarTransition(stored.Status, next.Status)
		},
		beforeDelete: func(ctx context.Context, tx repository.Tx, stored models.Boar) error {
			if err := rejectIfBred(ctx, tx, "boar", stored.ID, func(b models.Breeding) string { return b.BoarID }); err != nil {
				return err
			}
			return lifecycle.RejectIfTreated(ctx, tx, "boar", stored.ID, func(h models.HealthRecord) *string { return h.BoarID })
		},
	})
}

func rejectIfBred(ctx context.Context, tx repository.Tx, label, id string, parent func(models.Breeding) string) error {
	breedings, err := tx.Breedings().List(ctx)
	if err != nil {
		return fmt.Errorf("list breedings: %w", err)
	}
	n := 0
	for _, b := range breedings {
		if parent(b) == id {
			n++
		}
	}
	if n > 0 {
		return apperror.Conflict("%s %s is referenced by %d breeding(s)", label, id, n)
	}
	return nil
}

func sowSchema(now func() time.Time) *query.Schema[models.Sow] {
	return query.NewSchema(
		text("tagNumber", func(s models.Sow) any { return s.TagNumber }),
		text("breed", func(s models.Sow) any { return s.Breed }),
		date("birthDate", func(s models.Sow) any { return s.BirthDate }),
		number("ageMonths", func(s models.Sow) any { return metrics.AgeInMonths(s.BirthDate, now()) }),
		text("status", func(s models.Sow) any { return s.Status }),
		text("notes", func(s models.Sow) any { return s.Notes }),
		date("createdAt", func(s models.Sow) any { return s.CreatedAt }),
	)
}

func boarSchema(now func() time.Time) *query.Schema[models.Boar] {
	return query.NewSchema(
		text("tagNumber", func(b models.Boar) any { return b.TagNumber }),
		text("breed", func(b models.Boar) any { return b.Breed }),
		date("birthDate", func(b models.Boar) any { return b.BirthDate }),
		number("ageMonths", func(b models.Boar) any { return metrics.AgeInMonths(b.BirthDate, now()) }),
		text("status", func(b models.Boar) any { return b.Status }),
		text("notes", func(b models.Boar) any { return b.Notes }),
		date("createdAt", func(b models.Boar) any { return b.CreatedAt }),
	)
}
