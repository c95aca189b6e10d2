package records

import (
	"context"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/lifecycle"
	"github.com/mamadbah2/pigfarm/internal/query"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

// HealthRecordResource manages health records.
type HealthRecordResource = Resource[models.HealthRecord, *models.HealthRecord]

// FeedRecordResource manages feed records.
type FeedRecordResource = Resource[models.FeedRecord, *models.FeedRecord]

// UserResource manages farm operators.
type UserResource = Resource[models.User, *models.User]

func newHealthRecords(deps Deps) *HealthRecordResource {
	check := func(ctx context.Context, tx repository.Tx, h *models.HealthRecord) error {
		return lifecycle.ValidateHealthRecord(ctx, tx, *h)
	}
	return newResource[models.HealthRecord, *models.HealthRecord](deps, definition[models.HealthRecord]{
		module:       "health-records",
		label:        "health record",
		collection:   func(tx repository.Tx) repository.Collection[models.HealthRecord] { return tx.HealthRecords() },
		schema:       healthSchema(),
		beforeCreate: check,
		beforeUpdate: func(ctx context.Context, tx repository.Tx, _ models.HealthRecord, next *models.HealthRecord) error {
			return check(ctx, tx, next)
		},
	})
}

func newFeedRecords(deps Deps) *FeedRecordResource {
	check := func(ctx context.Context, tx repository.Tx, f *models.FeedRecord) error {
		return lifecycle.ValidateFeedRecord(ctx, tx, *f)
	}
	return newResource[models.FeedRecord, *models.FeedRecord](deps, definition[models.FeedRecord]{
		module:       "feed-records",
		label:        "feed record",
		collection:   func(tx repository.Tx) repository.Collection[models.FeedRecord] { return tx.FeedRecords() },
		schema:       feedSchema(),
		beforeCreate: check,
		beforeUpdate: func(ctx context.Context, tx repository.Tx, _ models.FeedRecord, next *models.FeedRecord) error {
			return check(ctx, tx, next)
		},
	})
}

func newUsers(deps Deps) *UserResource {
	return newResource[models.User, *models.User](deps, definition[models.User]{
		module:     "users",
		label:      "user",
		collection: func(tx repository.Tx) repository.Collection[models.User] { return tx.Users() },
		schema:     userSchema(),
		defaults: func(u *models.User) {
			if u.Role == "" {
				u.Role = models.RoleStaff
			}
		},
	})
}

func healthSchema() *query.Schema[models.HealthRecord] {
	return query.NewSchema(
		text("recordType", func(h models.HealthRecord) any { return h.RecordType }),
		date("recordDate", func(h models.HealthRecord) any { return h.RecordDate }),
		text("sowId", func(h models.HealthRecord) any { return h.SowID }),
		text("boarId", func(h models.HealthRecord) any { return h.BoarID }),
		text("pigletId", func(h models.HealthRecord) any { return h.PigletID }),
		text("description", func(h models.HealthRecord) any { return h.Description }),
		text("medication", func(h models.HealthRecord) any { return h.Medication }),
		number("cost", func(h models.HealthRecord) any { return h.Cost }),
		date("createdAt", func(h models.HealthRecord) any { return h.CreatedAt }),
	)
}

func feedSchema() *query.Schema[models.FeedRecord] {
	return query.NewSchema(
		date("recordDate", func(f models.FeedRecord) any { return f.RecordDate }),
		text("penId", func(f models.FeedRecord) any { return f.PenID }),
		text("feedType", func(f models.FeedRecord) any { return f.FeedType }),
		number("quantity", func(f models.FeedRecord) any { return f.Quantity }),
		number("cost", func(f models.FeedRecord) any { return f.Cost }),
		text("notes", func(f models.FeedRecord) any { return f.Notes }),
		date("createdAt", func(f models.FeedRecord) any { return f.CreatedAt }),
	)
}

func userSchema() *query.Schema[models.User] {
	return query.NewSchema(
		text("username", func(u models.User) any { return u.Username }),
		text("fullName", func(u models.User) any { return u.FullName }),
		text("role", func(u models.User) any { return u.Role }),
		number("active", func(u models.User) any { return u.Active }),
		date("createdAt", func(u models.User) any { return u.CreatedAt }),
	)
}

// ActivityLogSchema is the list schema of the activity log screen.
func ActivityLogSchema() *query.Schema[models.ActivityLog] {
	return query.NewSchema(
		date("createdAt", func(l models.ActivityLog) any { return l.CreatedAt }),
		text("userId", func(l models.ActivityLog) any { return l.UserID }),
		text("action", func(l models.ActivityLog) any { return l.Action }),
		text("module", func(l models.ActivityLog) any { return l.Module }),
		text("entityId", func(l models.ActivityLog) any { return l.EntityID }),
		text("details", func(l models.ActivityLog) any { return l.Details }),
	)
}
