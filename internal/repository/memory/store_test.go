package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

var at = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func sow(id, tag string) models.Sow {
	s := models.Sow{TagNumber: tag, Breed: "Landrace", BirthDate: at, Status: models.SowActive}
	s.Init(id, at)
	return s
}

func TestInsertEnforcesUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Sows().Insert(ctx, sow("s1", "T-1"))
	}))

	err := store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Sows().Insert(ctx, sow("s2", "T-1"))
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	err = store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Sows().Insert(ctx, sow("s1", "T-9"))
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	err = store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		other := sow("s3", "T-3")
		if err := tx.Sows().Insert(ctx, other); err != nil {
			return err
		}
		other.TagNumber = "T-1"
		return tx.Sows().Replace(ctx, other)
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestOneFarrowingPerBreeding(t *testing.T) {
	ctx := context.Background()
	store := New()

	farrowing := func(id string) models.Farrowing {
		f := models.Farrowing{SowID: "s1", BreedingID: "b1", FarrowingDate: at}
		f.Init(id, at)
		return f
	}

	require.NoError(t, store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Farrowings().Insert(ctx, farrowing("f1"))
	}))
	err := store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Farrowings().Insert(ctx, farrowing("f2"))
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestFailedTransactionLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	store := New()
	boom := errors.New("boom")

	require.NoError(t, store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Sows().Insert(ctx, sow("s1", "T-1"))
	}))

	err := store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Sows().Insert(ctx, sow("s2", "T-2")); err != nil {
			return err
		}
		if err := tx.Sows().Delete(ctx, "s1"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		sows, err := tx.Sows().List(ctx)
		require.NoError(t, err)
		require.Len(t, sows, 1)
		assert.Equal(t, "s1", sows[0].ID)
		return nil
	}))
}

func TestViewRejectsWrites(t *testing.T) {
	ctx := context.Background()
	store := New()

	err := store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Sows().Insert(ctx, sow("s1", "T-1"))
	})
	assert.ErrorIs(t, err, errReadOnly)

	err = store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		_, err := tx.DeleteActivityLogsBefore(ctx, at)
		return err
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestListKeepsInsertionOrderAfterDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		for _, s := range []models.Sow{sow("a", "1"), sow("b", "2"), sow("c", "3")} {
			if err := tx.Sows().Insert(ctx, s); err != nil {
				return err
			}
		}
		return tx.Sows().Delete(ctx, "b")
	}))

	require.NoError(t, store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		sows, err := tx.Sows().List(ctx)
		require.NoError(t, err)
		require.Len(t, sows, 2)
		assert.Equal(t, "a", sows[0].ID)
		assert.Equal(t, "c", sows[1].ID)

		_, err = tx.Sows().Get(ctx, "b")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		return nil
	}))
}

func TestBulkDeletes(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		for i, litter := range []string{"f1", "f2", "f1"} {
			p := models.Piglet{TagNumber: litter + string(rune('a'+i)), FarrowingID: litter}
			p.Init(string(rune('a'+i)), at)
			if err := tx.Piglets().Insert(ctx, p); err != nil {
				return err
			}
		}
		for i, age := range []time.Duration{48 * time.Hour, time.Hour, 0} {
			l := models.ActivityLog{Action: models.ActionCreate}
			l.Init(string(rune('x'+i)), at.Add(-age))
			if err := tx.ActivityLogs().Insert(ctx, l); err != nil {
				return err
			}
		}
		return nil
	}))

	var piglets, logs int64
	require.NoError(t, store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) (err error) {
		if piglets, err = tx.DeletePigletsByFarrowing(ctx, "f1"); err != nil {
			return err
		}
		logs, err = tx.DeleteActivityLogsBefore(ctx, at.Add(-time.Hour))
		return err
	}))
	assert.EqualValues(t, 2, piglets)
	assert.EqualValues(t, 1, logs)
}

func TestConcurrentTransactionsAreSerialized(t *testing.T) {
	ctx := context.Background()
	store := New()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
				f := models.Farrowing{SowID: "s1", BreedingID: "b1", FarrowingDate: at}
				f.Init(string(rune('a'+i)), at)
				return tx.Farrowings().Insert(ctx, f)
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	}
	assert.Equal(t, 1, succeeded)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := New().RunInTransaction(ctx, func(context.Context, repository.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
