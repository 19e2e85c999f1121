package cron

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*miniredis.Miniredis, redisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client)
}

func TestRedisLockIsExclusive(t *testing.T) {
	ctx := context.Background()
	_, store := newRedisStore(t)

	first, err := NewRedisLock(store, "leadnest:cron", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "leadnest:cron", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockReleaseKeepsForeignOwner(t *testing.T) {
	ctx := context.Background()
	mr, store := newRedisStore(t)

	stale, err := NewRedisLock(store, "leadnest:cron", time.Minute)
	require.NoError(t, err)
	ok, err := stale.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	current, err := NewRedisLock(store, "leadnest:cron", time.Minute)
	require.NoError(t, err)
	ok, err = current.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, stale.Release(ctx))
	assert.True(t, mr.Exists("leadnest:cron"), "stale owner must not delete the new lock")
}

func TestRedisLockReleaseWithoutAcquireIsNoop(t *testing.T) {
	_, store := newRedisStore(t)
	lock, err := NewRedisLock(store, "leadnest:cron", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)
	assert.NoError(t, lock.Release(context.Background()))
}

func TestNewRedisLockRequiresKey(t *testing.T) {
	_, store := newRedisStore(t)
	_, err := NewRedisLock(store, "", time.Minute)
	assert.Error(t, err)
}
