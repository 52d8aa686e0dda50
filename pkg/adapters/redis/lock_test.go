package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tablebot/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newMiniredis(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:resource1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:resource1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := newMiniredis(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = locker2.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()
	assert.True(t, mr.Exists("test:lock:shared"))
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, client := newMiniredis(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	staleUnlock, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlock, err := locker.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)

	require.NoError(t, staleUnlock(ctx))
	assert.True(t, mr.Exists("test:lock:k"), "expired holder must not release the new lock")
	require.NoError(t, unlock(ctx))
}
