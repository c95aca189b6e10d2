// Package records implements CRUD for every farm entity on top of one generic
// resource: field checks, lifecycle checks inside the store transaction, the
// list engine, and the activity trail.
package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/lifecycle"
	"github.com/mamadbah2/pigfarm/internal/query"
	"github.com/mamadbah2/pigfarm/internal/repository"
	"github.com/mamadbah2/pigfarm/internal/service/activity"
	"github.com/mamadbah2/pigfarm/internal/telemetry"
)

// entity is the pointer side of a record type.
type entity[T any] interface {
	*T
	Init(id string, now time.Time)
	Carry(stored models.Base, now time.Time)
	Meta() models.Base
}

// definition wires the entity-specific behaviour into a Resource.
type definition[T models.Record] struct {
	module     string
	label      string
	collection func(repository.Tx) repository.Collection[T]
	schema     *query.Schema[T]

	// defaults fills unset optional fields before validation.
	defaults func(*T)
	// beforeCreate runs structural checks inside the transaction.
	beforeCreate func(ctx context.Context, tx repository.Tx, rec *T) error
	// afterCreate applies side effects of a create in the same transaction.
	afterCreate func(ctx context.Context, tx repository.Tx, rec T) error
	// beforeUpdate sees the stored and the edited version.
	beforeUpdate func(ctx context.Context, tx repository.Tx, stored T, next *T) error
	// beforeDelete may veto a delete.
	beforeDelete func(ctx context.Context, tx repository.Tx, stored T) error
	// remove replaces the plain delete; it returns the extra rows it removed.
	remove func(ctx context.Context, tx repository.Tx, stored T) (int64, error)
}

// Deps are the collaborators shared by every resource.
type Deps struct {
	Store     repository.Store
	Recorder  activity.Recorder
	Telemetry *telemetry.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
	NewID     func() string
}

func (d Deps) withDefaults() Deps {
	if d.Recorder == nil {
		d.Recorder = activity.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

// Resource serves list/get/create/update/delete for one entity type.
type Resource[T models.Record, PT entity[T]] struct {
	deps Deps
	def  definition[T]
}

func newResource[T models.Record, PT entity[T]](deps Deps, d definition[T]) *Resource[T, PT] {
	return &Resource[T, PT]{deps: deps, def: d}
}

// Module names the entity in activity logs, metrics and exports.
func (r *Resource[T, PT]) Module() string { return r.def.module }

// Schema exposes the list fields of the entity.
func (r *Resource[T, PT]) Schema() *query.Schema[T] { return r.def.schema }

// List applies filter, sort and pagination to the whole collection.
func (r *Resource[T, PT]) List(ctx context.Context, p query.Params) (query.Page[T], error) {
	records, err := r.all(ctx)
	if err != nil {
		return query.Page[T]{}, err
	}
	return r.def.schema.Apply(records, p)
}

// Find returns every record matching q in sort order, without pagination.
func (r *Resource[T, PT]) Find(ctx context.Context, q string, sort []query.SortKey) ([]T, error) {
	records, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return r.def.schema.Run(records, q, sort)
}

func (r *Resource[T, PT]) all(ctx context.Context) ([]T, error) {
	var records []T
	err := r.deps.Store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		records, err = r.def.collection(tx).List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.def.module, err)
	}
	return records, nil
}

// Get loads one record.
func (r *Resource[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var rec T
	err := r.deps.Store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		rec, err = r.def.collection(tx).Get(ctx, id)
		return err
	})
	if err != nil {
		return rec, r.translate(err, id)
	}
	return rec, nil
}

// Create validates and stores a new record.
func (r *Resource[T, PT]) Create(ctx context.Context, actor string, rec T) (T, error) {
	return r.create(ctx, actor, rec, nil)
}

func (r *Resource[T, PT]) create(ctx context.Context, actor string, rec T, extra func(context.Context, repository.Tx, T) error) (T, error) {
	var zero T

	if r.def.defaults != nil {
		r.def.defaults(&rec)
	}
	if err := lifecycle.CheckFields(&rec); err != nil {
		return zero, r.reject(err)
	}
	PT(&rec).Init(r.deps.NewID(), r.deps.Now().UTC())

	err := r.deps.Store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		if r.def.beforeCreate != nil {
			if err := r.def.beforeCreate(ctx, tx, &rec); err != nil {
				return err
			}
		}
		if err := r.def.collection(tx).Insert(ctx, rec); err != nil {
			return err
		}
		if r.def.afterCreate != nil {
			if err := r.def.afterCreate(ctx, tx, rec); err != nil {
				return err
			}
		}
		if extra != nil {
			return extra(ctx, tx, rec)
		}
		return nil
	})
	if err != nil {
		return zero, r.reject(r.translate(err, rec.Key()))
	}

	r.committed(ctx, actor, models.ActionCreate, rec.Key())
	return rec, nil
}

// Update replaces a record with an edited payload, keeping id and createdAt.
func (r *Resource[T, PT]) Update(ctx context.Context, actor, id string, next T) (T, error) {
	var zero T

	if r.def.defaults != nil {
		r.def.defaults(&next)
	}
	if err := lifecycle.CheckFields(&next); err != nil {
		return zero, r.reject(err)
	}

	err := r.deps.Store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		coll := r.def.collection(tx)
		stored, err := coll.Get(ctx, id)
		if err != nil {
			return err
		}
		PT(&next).Carry(PT(&stored).Meta(), r.deps.Now().UTC())
		if r.def.beforeUpdate != nil {
			if err := r.def.beforeUpdate(ctx, tx, stored, &next); err != nil {
				return err
			}
		}
		return coll.Replace(ctx, next)
	})
	if err != nil {
		return zero, r.reject(r.translate(err, id))
	}

	r.committed(ctx, actor, models.ActionUpdate, id)
	return next, nil
}

// Delete removes a record and reports how many rows went with it.
func (r *Resource[T, PT]) Delete(ctx context.Context, actor, id string) (int64, error) {
	var deleted int64

	err := r.deps.Store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		coll := r.def.collection(tx)
		stored, err := coll.Get(ctx, id)
		if err != nil {
			return err
		}
		if r.def.beforeDelete != nil {
			if err := r.def.beforeDelete(ctx, tx, stored); err != nil {
				return err
			}
		}
		if r.def.remove != nil {
			extra, err := r.def.remove(ctx, tx, stored)
			if err != nil {
				return err
			}
			deleted = extra + 1
			return nil
		}
		if err := coll.Delete(ctx, id); err != nil {
			return err
		}
		deleted = 1
		return nil
	})
	if err != nil {
		return 0, r.reject(r.translate(err, id))
	}

	r.committed(ctx, actor, models.ActionDelete, id)
	return deleted, nil
}

func (r *Resource[T, PT]) committed(ctx context.Context, actor, action, id string) {
	r.deps.Telemetry.Wrote(r.def.module, action)
	r.deps.Recorder.Record(ctx, models.ActivityLog{
		UserID:   actor,
		Action:   action,
		Module:   r.def.module,
		EntityID: id,
	})
	r.deps.Logger.Debug("record committed",
		zap.String("module", r.def.module),
		zap.String("action", action),
		zap.String("id", id))
}

func (r *Resource[T, PT]) reject(err error) error {
	r.deps.Telemetry.Rejected(r.def.module, err)
	return err
}

// translate maps store sentinels onto domain errors.
func (r *Resource[T, PT]) translate(err error, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("%s %s not found", r.def.label, id)
	case errors.Is(err, repository.ErrDuplicateKey):
		return apperror.Conflict("%s conflicts with an existing record: %v", r.def.label, err)
	default:
		if _, ok := apperror.As(err); ok {
			return err
		}
		return fmt.Errorf("%s %s: %w", r.def.module, id, err)
	}
}
