package data

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
	apperrors "github.com/gitwithsonu015/campus-sos/internal/errors"
	"github.com/gitwithsonu015/campus-sos/internal/testutil"
)

func TestRedisAlertStore_CreateAndGet(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewRedisAlertStore(client, RedisAlertStoreOptions{})
	ctx := context.Background()

	alert := testAlert("redis-a1")
	alert.Message = model.DefaultAlertMessage
	require.NoError(t, store.Create(ctx, alert))

	got, err := store.Get(ctx, "redis-a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alert.ID, got.ID)
	assert.Equal(t, alert.OwnerID, got.OwnerID)
	assert.Equal(t, model.AlertStatusActive, got.Status)

	missing, err := store.Get(ctx, "redis-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRedisAlertStore_CreateDuplicate(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewRedisAlertStore(client, RedisAlertStoreOptions{})
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testAlert("redis-dup")))
	err := store.Create(ctx, testAlert("redis-dup"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRedisAlertStore_CompareAndUpdate(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewRedisAlertStore(client, RedisAlertStoreOptions{})
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testAlert("redis-cas")))

	updated, ok, err := store.CompareAndUpdate(ctx, core.CompareAndUpdateParams{
		ID:       "redis-cas",
		Expected: model.AlertStatusActive,
		Mutate: func(a *model.Alert) {
			a.Status = model.AlertStatusCancelled
		},
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.AlertStatusCancelled, updated.Status)

	// Second transition must fail the compare, reporting the current record.
	current, ok, err := store.CompareAndUpdate(ctx, core.CompareAndUpdateParams{
		ID:       "redis-cas",
		Expected: model.AlertStatusActive,
		Mutate: func(a *model.Alert) {
			a.Status = model.AlertStatusAcknowledged
		},
	})
	require.NoError(t, err)
	assert.False(t, ok)
	require.NotNil(t, current)
	assert.Equal(t, model.AlertStatusCancelled, current.Status)

	// Missing alerts report (nil, false) without an error.
	ghost, ok, err := store.CompareAndUpdate(ctx, core.CompareAndUpdateParams{
		ID:       "redis-ghost",
		Expected: model.AlertStatusActive,
		Mutate:   func(a *model.Alert) {},
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ghost)
}

func TestRedisAlertStore_ConcurrentTransitions(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewRedisAlertStore(client, RedisAlertStoreOptions{})
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testAlert("redis-race")))

	const writers = 8

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
				ID:       "redis-race",
				Expected: model.AlertStatusActive,
				Mutate: func(a *model.Alert) {
					a.Status = status
				},
			})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one concurrent writer must win")

	final, err := store.Get(ctx, "redis-race")
	require.NoError(t, err)
	assert.True(t, final.Status.Terminal())
}
