package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/household-services/redis"
	"github.com/meinhoongagan/household-services/testutil"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	_, client := testutil.NewRedis(t)
	cache := redis.NewCache[[]item](client, time.Minute)

	_, ok := cache.Get(ctx, redis.KeyAllServices)
	assert.False(t, ok)

	cache.Set(ctx, redis.KeyAllServices, []item{{ID: 1, Name: "Cleaning"}})

	got, ok := cache.Get(ctx, redis.KeyAllServices)
	require.True(t, ok)
	assert.Equal(t, []item{{ID: 1, Name: "Cleaning"}}, got)

	cache.Delete(ctx, redis.KeyAllServices)
	_, ok = cache.Get(ctx, redis.KeyAllServices)
	assert.False(t, ok)
}

func TestCache_Expires(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	cache := redis.NewCache[item](client, 300*time.Second)

	cache.Set(ctx, redis.KeyAllUsers, item{ID: 2})
	assert.Equal(t, 300*time.Second, mr.TTL(redis.KeyAllUsers))

	mr.FastForward(301 * time.Second)
	_, ok := cache.Get(ctx, redis.KeyAllUsers)
	assert.False(t, ok)
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	cache := redis.NewCache[item](client, time.Minute)

	require.NoError(t, mr.Set(redis.KeyAllUsers, "{not json"))
	_, ok := cache.Get(ctx, redis.KeyAllUsers)
	assert.False(t, ok)
}

func TestCache_NilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	cache := redis.NewCache[item](nil, time.Minute)

	cache.Set(ctx, "k", item{ID: 1})
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	cache.Delete(ctx, "k")
}

func TestCache_UnreachableServerIsMiss(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	cache := redis.NewCache[item](client, time.Minute)

	mr.Close()
	cache.Set(ctx, "k", item{ID: 1})
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
}
