// Package repository defines the storage contract shared by the Mongo and
// in-memory stores.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
)

// ErrNotFound is returned when an id does not resolve to a stored record.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateKey is returned when a write violates a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// Collection is the typed access to one entity table. List returns records in
// insertion order.
type Collection[T models.Record] interface {
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, record T) error
	Replace(ctx context.Context, record T) error
	Delete(ctx context.Context, id string) error
}

// Tx exposes every collection plus the bulk deletes that must run inside one
// unit of work.
type Tx interface {
	Sows() Collection[models.Sow]
	Boars() Collection[models.Boar]
	Breedings() Collection[models.Breeding]
	Farrowings() Collection[models.Farrowing]
	Piglets() Collection[models.Piglet]
	Pens() Collection[models.Pen]
	HealthRecords() Collection[models.HealthRecord]
	FeedRecords() Collection[models.FeedRecord]
	Users() Collection[models.User]
	ActivityLogs() Collection[models.ActivityLog]
	Settings() Collection[models.Setting]

	// DeletePigletsByFarrowing removes every piglet of a litter.
	DeletePigletsByFarrowing(ctx context.Context, farrowingID string) (int64, error)
	// DeleteActivityLogsBefore removes every log created strictly before cutoff.
	DeleteActivityLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store runs units of work. RunInTransaction commits only when fn returns nil;
// View gives read access without a transaction.
type Store interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// FindFarrowingByBreeding returns the farrowing linked to a breeding, if any.
func FindFarrowingByBreeding(ctx context.Context, tx Tx, breedingID string) (models.Farrowing, bool, error) {
	farrowings, err := tx.Farrowings().List(ctx)
	if err != nil {
		return models.Farrowing{}, false, err
	}
	for _, f := range farrowings {
		if f.BreedingID == breedingID {
			return f, true, nil
		}
	}
	return models.Farrowing{}, false, nil
}

// Exists reports whether id resolves in the collection.
func Exists[T models.Record](ctx context.Context, c Collection[T], id string) (bool, error) {
	_, err := c.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
