package data

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
	apperrors "github.com/gitwithsonu015/campus-sos/internal/errors"
)

func testAlert(id string) *model.Alert {
	return &model.Alert{
		ID:        id,
		OwnerID:   "u1",
		Status:    model.AlertStatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryAlertStore_CreateAndGet(t *testing.T) {
	store := NewMemoryAlertStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testAlert("a1")))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a1", got.ID)

	missing, err := store.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryAlertStore_CreateDuplicate(t *testing.T) {
	store := NewMemoryAlertStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testAlert("a1")))
	err := store.Create(ctx, testAlert("a1"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestMemoryAlertStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryAlertStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testAlert("a1")))

	first, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	first.Status = model.AlertStatusCancelled

	second, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusActive, second.Status, "mutating a returned alert must not affect the store")
}

func TestMemoryAlertStore_CompareAndUpdate(t *testing.T) {
	store := NewMemoryAlertStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testAlert("a1")))

	t.Run("applies when status matches", func(t *testing.T) {
		updated, ok, err := store.CompareAndUpdate(ctx, core.CompareAndUpdateParams{
			ID:       "a1",
			Expected: model.AlertStatusActive,
			Mutate: func(a *model.Alert) {
				a.Status = model.AlertStatusCancelled
			},
		})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.AlertStatusCancelled, updated.Status)
	})

	t.Run("rejects when status changed", func(t *testing.T) {
		current, ok, err := store.CompareAndUpdate(ctx, core.CompareAndUpdateParams{
			ID:       "a1",
			Expected: model.AlertStatusActive,
			Mutate: func(a *model.Alert) {
				a.Status = model.AlertStatusAcknowledged
			},
		})
		require.NoError(t, err)
		assert.False(t, ok)
		require.NotNil(t, current)
		assert.Equal(t, model.AlertStatusCancelled, current.Status)
	})

	t.Run("missing alert", func(t *testing.T) {
		current, ok, err := store.CompareAndUpdate(ctx, core.CompareAndUpdateParams{
			ID:       "ghost",
			Expected: model.AlertStatusActive,
			Mutate:   func(a *model.Alert) {},
		})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, current)
	})
}

func TestMemoryAlertStore_CompareAndUpdate_Contention(t *testing.T) {
	store := NewMemoryAlertStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testAlert("a1")))

	const writers = 32

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range writers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			status := model.AlertStatusCancelled
			if n%2 == 0 {
				status = model.AlertStatusAcknowledged
			}

			_, ok, err := store.CompareAndUpdate(ctx, core.CompareAndUpdateParams{
				ID:       "a1",
				Expected: model.AlertStatusActive,
				Mutate: func(a *model.Alert) {
					a.Status = status
				},
			})
			require.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one concurrent writer must win")

	final, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, final.Status.Terminal())
}
