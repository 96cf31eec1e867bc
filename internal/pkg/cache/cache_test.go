package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PlanCard/internal/pkg/env"
)

const isolatedCacheTestRedisDB = 13

func newIsolatedRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	c := redis.NewClient(&redis.Options{
		Addr:     Addr(),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       isolatedCacheTestRedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	err := c.Ping(ctx).Err()
	cancel()
	if err != nil {
		_ = c.Close()
		t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", err)
	}

	require.NoError(t, c.FlushDB(context.Background()).Err())
	t.Cleanup(func() {
		_ = c.FlushDB(context.Background()).Err()
		_ = c.Close()
	})
	return c
}

type cachedValue struct {
	Label string     `json:"label"`
	Until *time.Time `json:"until"`
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(newIsolatedRedisClient(t), "test:")
	ctx := context.Background()

	until := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetJSON(ctx, "a", cachedValue{Label: "Premium", Until: &until}, time.Minute))

	var got cachedValue
	found, err := store.GetJSON(ctx, "a", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Premium", got.Label)
	require.NotNil(t, got.Until)
	assert.True(t, got.Until.Equal(until))

	require.NoError(t, store.Delete(ctx, "a"))
	found, err = store.GetJSON(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreUsesPrefix(t *testing.T) {
	c := newIsolatedRedisClient(t)
	store := NewStore(c, "plancard:")
	ctx := context.Background()

	require.NoError(t, store.SetJSON(ctx, "k", "v", time.Minute))

	exists, err := c.Exists(ctx, "plancard:k").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestStoreGetJSONRejectsGarbage(t *testing.T) {
	c := newIsolatedRedisClient(t)
	store := NewStore(c, "")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "bad", "{not json", time.Minute).Err())

	var got cachedValue
	found, err := store.GetJSON(ctx, "bad", &got)
	assert.Error(t, err)
	assert.False(t, found)
}
