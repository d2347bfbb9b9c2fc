package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/inventory"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/redis"
)

func setupStore(t *testing.T) (*miniredis.Miniredis, *redis.KVStore) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewKVStore(client, "catalogo:")
}

func TestKVStore_GetSet(t *testing.T) {
	mr, kv := setupStore(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "inv:1:b:p")
	assert.ErrorIs(t, err, inventory.ErrCacheMiss)

	require.NoError(t, kv.Set(ctx, "inv:1:b:p", `{"stock":3}`, time.Minute))
	assert.True(t, mr.Exists("catalogo:inv:1:b:p"), "la clave lleva el prefijo")

	v, err := kv.Get(ctx, "inv:1:b:p")
	require.NoError(t, err)
	assert.Equal(t, `{"stock":3}`, v)
}

func TestKVStore_TTLAndDelete(t *testing.T) {
	mr, kv := setupStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "a", "1", time.Second))
	require.NoError(t, kv.Set(ctx, "b", "2", 0))
	mr.FastForward(2 * time.Second)

	_, err := kv.Get(ctx, "a")
	assert.ErrorIs(t, err, inventory.ErrCacheMiss)

	require.NoError(t, kv.Delete(ctx, "b", "missing"))
	_, err = kv.Get(ctx, "b")
	assert.ErrorIs(t, err, inventory.ErrCacheMiss)
	assert.NoError(t, kv.Delete(ctx))
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := redis.NewClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
