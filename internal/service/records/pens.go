package records

import (
	"context"
	"fmt"

	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/lifecycle"
	"github.com/mamadbah2/pigfarm/internal/metrics"
	"github.com/mamadbah2/pigfarm/internal/query"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

// PigletResource manages piglets.
type PigletResource = Resource[models.Piglet, *models.Piglet]

// PenResource manages pens.
type PenResource = Resource[models.Pen, *models.Pen]

func newPiglets(deps Deps) *PigletResource {
	return newResource[models.Piglet, *models.Piglet](deps, definition[models.Piglet]{
		module:     "piglets",
		label:      "piglet",
		collection: func(tx repository.Tx) repository.Collection[models.Piglet] { return tx.Piglets() },
		schema:     pigletSchema(),
		defaults: func(p *models.Piglet) {
			if p.Status == "" {
				p.Status = models.PigletNursing
			}
		},
		beforeCreate: func(ctx context.Context, tx repository.Tx, p *models.Piglet) error {
			return lifecycle.ValidatePigletCreate(ctx, tx, *p)
		},
		beforeUpdate: func(ctx context.Context, tx repository.Tx, stored models.Piglet, next *models.Piglet) error {
			if err := lifecycle.CheckPigletTransition(stored.Status, next.Status); err != nil {
				return err
			}
			return lifecycle.ValidatePigletRefs(ctx, tx, *next)
		},
		beforeDelete: func(ctx context.Context, tx repository.Tx, stored models.Piglet) error {
			return lifecycle.RejectIfTreated(ctx, tx, "piglet", stored.ID, func(h models.HealthRecord) *string { return h.PigletID })
		},
	})
}

func newPens(deps Deps) *PenResource {
	return newResource[models.Pen, *models.Pen](deps, definition[models.Pen]{
		module:       "pens",
		label:        "pen",
		collection:   func(tx repository.Tx) repository.Collection[models.Pen] { return tx.Pens() },
		schema:       penSchema(),
		beforeDelete: rejectIfHoused,
	})
}

func rejectIfHoused(ctx context.Context, tx repository.Tx, pen models.Pen) error {
	piglets, err := tx.Piglets().List(ctx)
	if err != nil {
		return fmt.Errorf("list piglets: %w", err)
	}
	for _, p := range piglets {
		if p.CurrentPenID != nil && *p.CurrentPenID == pen.ID {
			return apperror.Conflict("pen %s still houses piglet %s", pen.PenNumber, p.TagNumber)
		}
	}

	feed, err := tx.FeedRecords().List(ctx)
	if err != nil {
		return fmt.Errorf("list feed records: %w", err)
	}
	for _, f := range feed {
		if f.PenID == pen.ID {
			return apperror.Conflict("pen %s is referenced by feed records", pen.PenNumber)
		}
	}
	return nil
}

func pigletSchema() *query.Schema[models.Piglet] {
	return query.NewSchema(
		text("tagNumber", func(p models.Piglet) any { return p.TagNumber }),
		text("farrowingId", func(p models.Piglet) any { return p.FarrowingID }),
		number("birthWeight", func(p models.Piglet) any { return p.BirthWeight }),
		text("currentPenId", func(p models.Piglet) any { return p.CurrentPenID }),
		text("status", func(p models.Piglet) any { return p.Status }),
		text("gender", func(p models.Piglet) any { return p.Gender }),
		date("deathDate", func(p models.Piglet) any { return p.DeathDate }),
		text("deathCause", func(p models.Piglet) any { return p.DeathCause }),
		date("createdAt", func(p models.Piglet) any { return p.CreatedAt }),
	)
}

func penSchema() *query.Schema[models.Pen] {
	return query.NewSchema(
		text("penNumber", func(p models.Pen) any { return p.PenNumber }),
		text("penType", func(p models.Pen) any { return p.PenType }),
		number("capacity", func(p models.Pen) any { return p.Capacity }),
		number("currentCount", func(p models.Pen) any { return p.CurrentCount }),
		number("occupancyPct", func(p models.Pen) any {
			return metrics.Round1(metrics.OccupancyPct(p.CurrentCount, p.Capacity))
		}),
		text("notes", func(p models.Pen) any { return p.Notes }),
		date("createdAt", func(p models.Pen) any { return p.CreatedAt }),
	)
}
