// Package activity writes the audit trail of successful mutating operations.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

// Recorder receives fire-and-forget notifications of committed writes.
type Recorder interface {
	Record(ctx context.Context, entry models.ActivityLog)
}

// Nop discards every entry.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, models.ActivityLog) {}

// Writer persists entries in the activity_logs collection. Failures are
// logged and never reach the caller; the audited write is already committed.
type Writer struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewWriter builds a store-backed Recorder.
func NewWriter(store repository.Store, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: store, logger: logger, now: time.Now}
}

// Record stamps and stores the entry.
func (w *Writer) Record(ctx context.Context, entry models.ActivityLog) {
	if entry.UserID == "" {
		entry.UserID = "system"
	}
	entry.Init(uuid.NewString(), w.now().UTC())

	err := w.store.RunInTransaction(context.WithoutCancel(ctx), func(ctx context.Context, tx repository.Tx) error {
		return tx.ActivityLogs().Insert(ctx, entry)
	})
	if err != nil {
		w.logger.Warn("failed to write activity log",
			zap.String("action", entry.Action),
			zap.String("module", entry.Module),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err))
	}
}
