package memstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingKey(key string, ttl time.Duration) *entity.IdempotencyKey {
	return &entity.IdempotencyKey{Key: key, UserID: uid, Endpoint: "POST /api/v1/bills", ExpiresAt: time.Now().Add(ttl)}
}

func TestIdempotencyReserveIsExclusive(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New(generous).Idempotency()

	var won atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Reserve(ctx, pendingKey("k1", time.Minute))
			assert.NoError(t, err)
			if ok {
				won.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, won.Load())

	got, err := repo.GetByKey(ctx, "k1", uid)
	require.NoError(t, err)
	assert.True(t, got.IsPending())
}

func TestIdempotencyCompleteAndRelease(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New(generous).Idempotency()

	ok, err := repo.Reserve(ctx, pendingKey("k1", time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	done := pendingKey("k1", time.Hour)
	done.ResponseCode = 201
	done.ResponseBody = `{"success":true}`
	require.NoError(t, repo.Complete(ctx, done))

	// A completed key is never released.
	require.NoError(t, repo.Release(ctx, "k1", uid))
	got, err := repo.GetByKey(ctx, "k1", uid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)
	assert.False(t, got.IsPending())

	ok, err = repo.Reserve(ctx, pendingKey("k2", time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Release(ctx, "k2", uid))
	got, err = repo.GetByKey(ctx, "k2", uid)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, repo.Complete(ctx, pendingKey("missing", time.Hour)))
}

func TestIdempotencyReserveReplacesExpired(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New(generous).Idempotency()

	ok, err := repo.Reserve(ctx, pendingKey("k1", -time.Second))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Reserve(ctx, pendingKey("k1", time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
}
