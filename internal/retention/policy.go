// Package retention holds the age-based purge rule for activity logs.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

// MaxDays bounds the configurable retention window (ten years).
const MaxDays = 3650

// Cutoff is the instant before which logs are purged.
func Cutoff(now time.Time, retentionDays int) time.Time {
	return now.AddDate(0, 0, -retentionDays)
}

// ValidateDays rejects windows outside [1, MaxDays].
func ValidateDays(days int) error {
	if days < 1 || days > MaxDays {
		return apperror.Field("retentionDays", fmt.Sprintf("must be between 1 and %d", MaxDays))
	}
	return nil
}

// PurgeOlderThan drops every log created strictly before the cutoff and
// returns the survivors with the number removed. Running it again with the
// same cutoff removes nothing.
func PurgeOlderThan(logs []models.ActivityLog, retentionDays int, now time.Time) ([]models.ActivityLog, int) {
	cutoff := Cutoff(now, retentionDays)
	kept := make([]models.ActivityLog, 0, len(logs))
	for _, l := range logs {
		if l.CreatedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, l)
	}
	return kept, len(logs) - len(kept)
}

// Purge deletes expired logs from the store in one transaction and reports the
// count the transaction actually removed.
func Purge(ctx context.Context, store repository.Store, retentionDays int, now time.Time) (int64, error) {
	if err := ValidateDays(retentionDays); err != nil {
		return 0, err
	}

	cutoff := Cutoff(now, retentionDays)
	var deleted int64
	err := store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		n, err := tx.DeleteActivityLogsBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("purge activity logs: %w", err)
	}
	return deleted, nil
}
