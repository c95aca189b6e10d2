// Package memory provides an in-process implementation of repository.Store
// used by tests and local runs without MongoDB. Transactions work on a clone of
// the state and replace it only when the unit of work succeeds.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

var _ repository.Store = (*Store)(nil)

var errReadOnly = errors.New("memory store: write attempted in read-only view")

type uniqueIndex[T models.Record] struct {
	name string
	key  func(T) string
}

type table[T models.Record] struct {
	rows   map[string]T
	order  []string
	unique []uniqueIndex[T]
}

func newTable[T models.Record](unique ...uniqueIndex[T]) *table[T] {
	return &table[T]{rows: make(map[string]T), unique: unique}
}

func (t *table[T]) clone() *table[T] {
	rows := make(map[string]T, len(t.rows))
	for k, v := range t.rows {
		rows[k] = v
	}
	order := make([]string, len(t.order))
	copy(order, t.order)
	return &table[T]{rows: rows, order: order, unique: t.unique}
}

func (t *table[T]) violates(record T) error {
	for _, idx := range t.unique {
		value := idx.key(record)
		if value == "" {
			continue
		}
		for id, existing := range t.rows {
			if id == record.Key() {
				continue
			}
			if idx.key(existing) == value {
				return fmt.Errorf("%w: %s=%q", repository.ErrDuplicateKey, idx.name, value)
			}
		}
	}
	return nil
}

type state struct {
	sows       *table[models.Sow]
	boars      *table[models.Boar]
	breedings  *table[models.Breeding]
	farrowings *table[models.Farrowing]
	piglets    *table[models.Piglet]
	pens       *table[models.Pen]
	health     *table[models.HealthRecord]
	feed       *table[models.FeedRecord]
	users      *table[models.User]
	logs       *table[models.ActivityLog]
	settings   *table[models.Setting]
}

func newState() state {
	return state{
		sows:      newTable(uniqueIndex[models.Sow]{"tag_number", func(s models.Sow) string { return s.TagNumber }}),
		boars:     newTable(uniqueIndex[models.Boar]{"tag_number", func(b models.Boar) string { return b.TagNumber }}),
		breedings: newTable[models.Breeding](),
		farrowings: newTable(uniqueIndex[models.Farrowing]{"breeding_id", func(f models.Farrowing) string {
			return f.BreedingID
		}}),
		piglets:  newTable[models.Piglet](),
		pens:     newTable(uniqueIndex[models.Pen]{"pen_number", func(p models.Pen) string { return p.PenNumber }}),
		health:   newTable[models.HealthRecord](),
		feed:     newTable[models.FeedRecord](),
		users:    newTable(uniqueIndex[models.User]{"username", func(u models.User) string { return u.Username }}),
		logs:     newTable[models.ActivityLog](),
		settings: newTable[models.Setting](),
	}
}

func (s state) clone() state {
	return state{
		sows:       s.sows.clone(),
		boars:      s.boars.clone(),
		breedings:  s.breedings.clone(),
		farrowings: s.farrowings.clone(),
		piglets:    s.piglets.clone(),
		pens:       s.pens.clone(),
		health:     s.health.clone(),
		feed:       s.feed.clone(),
		users:      s.users.clone(),
		logs:       s.logs.clone(),
		settings:   s.settings.clone(),
	}
}

// Store is a mutex-guarded in-memory store. Transactions are serialized.
type Store struct {
	mu    sync.RWMutex
	state state
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// RunInTransaction executes fn against a cloned state and commits it when fn
// returns nil. Any error discards every write made by fn.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{state: s.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

// View executes fn against the committed state. Writes are rejected.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(ctx, &txn{state: s.state, readOnly: true})
}

type txn struct {
	state    state
	readOnly bool
}

func (tx *txn) Sows() repository.Collection[models.Sow] {
	return &collection[models.Sow]{t: tx.state.sows, readOnly: tx.readOnly}
}

func (tx *txn) Boars() repository.Collection[models.Boar] {
	return &collection[models.Boar]{t: tx.state.boars, readOnly: tx.readOnly}
}

func (tx *txn) Breedings() repository.Collection[models.Breeding] {
	return &collection[models.Breeding]{t: tx.state.breedings, readOnly: tx.readOnly}
}

func (tx *txn) Farrowings() repository.Collection[models.Farrowing] {
	return &collection[models.Farrowing]{t: tx.state.farrowings, readOnly: tx.readOnly}
}

func (tx *txn) Piglets() repository.Collection[models.Piglet] {
	return &collection[models.Piglet]{t: tx.state.piglets, readOnly: tx.readOnly}
}

func (tx *txn) Pens() repository.Collection[models.Pen] {
	return &collection[models.Pen]{t: tx.state.pens, readOnly: tx.readOnly}
}

func (tx *txn) HealthRecords() repository.Collection[models.HealthRecord] {
	return &collection[models.HealthRecord]{t: tx.state.health, readOnly: tx.readOnly}
}

func (tx *txn) FeedRecords() repository.Collection[models.FeedRecord] {
	return &collection[models.FeedRecord]{t: tx.state.feed, readOnly: tx.readOnly}
}

func (tx *txn) Users() repository.Collection[models.User] {
	return &collection[models.User]{t: tx.state.users, readOnly: tx.readOnly}
}

func (tx *txn) ActivityLogs() repository.Collection[models.ActivityLog] {
	return &collection[models.ActivityLog]{t: tx.state.logs, readOnly: tx.readOnly}
}

func (tx *txn) Settings() repository.Collection[models.Setting] {
	return &collection[models.Setting]{t: tx.state.settings, readOnly: tx.readOnly}
}

func (tx *txn) DeletePigletsByFarrowing(_ context.Context, farrowingID string) (int64, error) {
	if tx.readOnly {
		return 0, errReadOnly
	}
	return deleteWhere(tx.state.piglets, func(p models.Piglet) bool { return p.FarrowingID == farrowingID }), nil
}

func (tx *txn) DeleteActivityLogsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if tx.readOnly {
		return 0, errReadOnly
	}
	return deleteWhere(tx.state.logs, func(l models.ActivityLog) bool { return l.CreatedAt.Before(cutoff) }), nil
}

func deleteWhere[T models.Record](t *table[T], match func(T) bool) int64 {
	var removed int64
	kept := t.order[:0]
	for _, id := range t.order {
		if match(t.rows[id]) {
			delete(t.rows, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
	return removed
}

type collection[T models.Record] struct {
	t        *table[T]
	readOnly bool
}

func (c *collection[T]) Get(_ context.Context, id string) (T, error) {
	record, ok := c.t.rows[id]
	if !ok {
		var zero T
		return zero, repository.ErrNotFound
	}
	return record, nil
}

func (c *collection[T]) List(_ context.Context) ([]T, error) {
	out := make([]T, 0, len(c.t.order))
	for _, id := range c.t.order {
		out = append(out, c.t.rows[id])
	}
	return out, nil
}

func (c *collection[T]) Insert(_ context.Context, record T) error {
	if c.readOnly {
		return errReadOnly
	}
	id := record.Key()
	if id == "" {
		return errors.New("memory store: record id must be set before insert")
	}
	if _, exists := c.t.rows[id]; exists {
		return fmt.Errorf("%w: _id=%q", repository.ErrDuplicateKey, id)
	}
	if err := c.t.violates(record); err != nil {
		return err
	}
	c.t.rows[id] = record
	c.t.order = append(c.t.order, id)
	return nil
}

func (c *collection[T]) Replace(_ context.Context, record T) error {
	if c.readOnly {
		return errReadOnly
	}
	if _, exists := c.t.rows[record.Key()]; !exists {
		return repository.ErrNotFound
	}
	if err := c.t.violates(record); err != nil {
		return err
	}
	c.t.rows[record.Key()] = record
	return nil
}

func (c *collection[T]) Delete(_ context.Context, id string) error {
	if c.readOnly {
		return errReadOnly
	}
	if _, exists := c.t.rows[id]; !exists {
		return repository.ErrNotFound
	}
	delete(c.t.rows, id)
	for i, existing := range c.t.order {
		if existing == id {
			c.t.order = append(c.t.order[:i], c.t.order[i+1:]...)
			break
		}
	}
	return nil
}
