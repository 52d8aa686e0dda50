package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tablebot/pkg/adapters/redis"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newMiniredis(t)
	ports.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute), redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewSession("s1")))
	assert.Equal(t, time.Minute, mr.TTL("test:s1"))

	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_NewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := redis.New("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, redis.DefaultPrefix, store.Prefix())

	_, err = redis.New("://nope")
	assert.Error(t, err)
}
