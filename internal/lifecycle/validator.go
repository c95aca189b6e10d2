// Package lifecycle guards every write that touches the breeding graph: form
// level field checks, referential checks against the store, and the status
// machines of sows, boars and piglets.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

// ValidateBreedingCreate requires both parents to exist. A sow may have several
// open breedings since a failed one is simply retried.
func ValidateBreedingCreate(ctx context.Context, tx repository.Tx, b models.Breeding) error {
	if err := requireRef(ctx, tx.Sows(), b.SowID, "sow"); err != nil {
		return err
	}
	return requireRef(ctx, tx.Boars(), b.BoarID, "boar")
}

// ValidateFarrowingCreate checks that the referenced breeding exists, has not
// failed and has no farrowing yet. It returns the breeding for follow-up writes.
func ValidateFarrowingCreate(ctx context.Context, tx repository.Tx, f models.Farrowing) (models.Breeding, error) {
	breeding, err := tx.Breedings().Get(ctx, f.BreedingID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Breeding{}, apperror.Reference("breeding %s does not exist", f.BreedingID)
	}
	if err != nil {
		return models.Breeding{}, fmt.Errorf("load breeding %s: %w", f.BreedingID, err)
	}

	if _, linked, err := repository.FindFarrowingByBreeding(ctx, tx, breeding.ID); err != nil {
		return models.Breeding{}, fmt.Errorf("lookup farrowing of breeding %s: %w", breeding.ID, err)
	} else if linked {
		return models.Breeding{}, apperror.Conflict("breeding %s already has a farrowing", breeding.ID)
	}

	if breeding.Failed() {
		return models.Breeding{}, apperror.State("breeding %s is marked unsuccessful and cannot farrow", breeding.ID)
	}

	if f.SowID != breeding.SowID {
		return models.Breeding{}, apperror.Field("sowId", "must match the sow of the breeding")
	}

	return breeding, nil
}

// EligibleBreedings returns breedings with no farrowing whose success flag is
// not false. It reads the store every time; success can change between reads.
func EligibleBreedings(ctx context.Context, tx repository.Tx) ([]models.Breeding, error) {
	breedings, err := tx.Breedings().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list breedings: %w", err)
	}
	farrowings, err := tx.Farrowings().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list farrowings: %w", err)
	}

	farrowed := make(map[string]struct{}, len(farrowings))
	for _, f := range farrowings {
		farrowed[f.BreedingID] = struct{}{}
	}

	eligible := make([]models.Breeding, 0, len(breedings))
	for _, b := range breedings {
		if _, done := farrowed[b.ID]; done || b.Failed() {
			continue
		}
		eligible = append(eligible, b)
	}
	return eligible, nil
}

// CascadeFarrowingDelete removes a farrowing, every piglet of its litter and
// the health records of those piglets. Callers run it inside one transaction so
// the cascade is all-or-nothing. The count covers piglets only.
func CascadeFarrowingDelete(ctx context.Context, tx repository.Tx, farrowingID string) (int64, error) {
	if _, err := tx.Farrowings().Get(ctx, farrowingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperror.NotFound("farrowing %s not found", farrowingID)
		}
		return 0, fmt.Errorf("load farrowing %s: %w", farrowingID, err)
	}

	if err := deleteLitterHealthRecords(ctx, tx, farrowingID); err != nil {
		return 0, err
	}

	piglets, err := tx.DeletePigletsByFarrowing(ctx, farrowingID)
	if err != nil {
		return 0, err
	}

	if err := tx.Farrowings().Delete(ctx, farrowingID); err != nil {
		return 0, fmt.Errorf("delete farrowing %s: %w", farrowingID, err)
	}

	return piglets, nil
}

func deleteLitterHealthRecords(ctx context.Context, tx repository.Tx, farrowingID string) error {
	piglets, err := tx.Piglets().List(ctx)
	if err != nil {
		return fmt.Errorf("list piglets: %w", err)
	}
	litter := make(map[string]struct{})
	for _, p := range piglets {
		if p.FarrowingID == farrowingID {
			litter[p.ID] = struct{}{}
		}
	}
	if len(litter) == 0 {
		return nil
	}

	records, err := tx.HealthRecords().List(ctx)
	if err != nil {
		return fmt.Errorf("list health records: %w", err)
	}
	for _, h := range records {
		if h.PigletID == nil {
			continue
		}
		if _, ok := litter[*h.PigletID]; !ok {
			continue
		}
		if err := tx.HealthRecords().Delete(ctx, h.ID); err != nil {
			return fmt.Errorf("delete health record %s: %w", h.ID, err)
		}
	}
	return nil
}

// RejectIfTreated refuses to delete an animal that health records still point at.
func RejectIfTreated(ctx context.Context, tx repository.Tx, label, id string, animal func(models.HealthRecord) *string) error {
	records, err := tx.HealthRecords().List(ctx)
	if err != nil {
		return fmt.Errorf("list health records: %w", err)
	}
	n := 0
	for _, h := range records {
		if ref := animal(h); ref != nil && *ref == id {
			n++
		}
	}
	if n > 0 {
		return apperror.Conflict("%s %s is referenced by %d health record(s)", label, id, n)
	}
	return nil
}

// ValidatePigletCreate requires a tag number and an existing farrowing.
func ValidatePigletCreate(ctx context.Context, tx repository.Tx, p models.Piglet) error {
	if blank(p.TagNumber) {
		return apperror.Field("tagNumber", "is required")
	}
	return ValidatePigletRefs(ctx, tx, p)
}

// ValidatePigletRefs checks the litter and the optional pen of a piglet.
func ValidatePigletRefs(ctx context.Context, tx repository.Tx, p models.Piglet) error {
	if err := requireRef(ctx, tx.Farrowings(), p.FarrowingID, "farrowing"); err != nil {
		return err
	}
	if p.CurrentPenID != nil && *p.CurrentPenID != "" {
		return requireRef(ctx, tx.Pens(), *p.CurrentPenID, "pen")
	}
	return nil
}

// ValidateHealthRecord enforces the exactly-one-animal rule and that the
// referenced animal exists.
func ValidateHealthRecord(ctx context.Context, tx repository.Tx, h models.HealthRecord) error {
	if animalRefCount(h) != 1 {
		return apperror.Field("animal", "exactly one of sowId, boarId, pigletId must be set")
	}
	switch {
	case h.SowID != nil && *h.SowID != "":
		return requireRef(ctx, tx.Sows(), *h.SowID, "sow")
	case h.BoarID != nil && *h.BoarID != "":
		return requireRef(ctx, tx.Boars(), *h.BoarID, "boar")
	default:
		return requireRef(ctx, tx.Piglets(), *h.PigletID, "piglet")
	}
}

// ValidateFeedRecord requires the pen to exist and a non-negative quantity.
func ValidateFeedRecord(ctx context.Context, tx repository.Tx, f models.FeedRecord) error {
	if f.Quantity < 0 {
		return apperror.Field("quantity", "must be at least 0")
	}
	return requireRef(ctx, tx.Pens(), f.PenID, "pen")
}

func requireRef[T models.Record](ctx context.Context, c repository.Collection[T], id, label string) error {
	if blank(id) {
		return apperror.Field(label+"Id", "is required")
	}
	ok, err := repository.Exists(ctx, c, id)
	if err != nil {
		return fmt.Errorf("lookup %s %s: %w", label, id, err)
	}
	if !ok {
		return apperror.Reference("%s %s does not exist", label, id)
	}
	return nil
}
