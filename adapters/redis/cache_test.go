package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorewatch/core"
)

// newTestCache spins up a miniredis server and returns a cache backed
// by it plus the underlying miniredis handle.
func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewWithClient(client, ttl), mr
}

func TestCachePutGet(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	_, ok := cache.Get(ctx, 101)
	assert.False(t, ok)

	cache.Put(ctx, &core.User{ID: 101, Username: "cookiezi", CountryCode: "KR"})

	u, ok := cache.Get(ctx, 101)
	require.True(t, ok)
	assert.Equal(t, "cookiezi", u.Username)
	assert.Equal(t, "KR", u.CountryCode)
}

func TestCachePutIsIdempotentUpsert(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	cache.Put(ctx, &core.User{ID: 7, Username: "old"})
	cache.Put(ctx, &core.User{ID: 7, Username: "new"})

	u, ok := cache.Get(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, "new", u.Username)
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Put(ctx, &core.User{ID: 9, Username: "gone-soon"})
	_, ok := cache.Get(ctx, 9)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	_, ok = cache.Get(ctx, 9)
	assert.False(t, ok)
}

func TestCacheIgnoresInvalidEntries(t *testing.T) {
	cache, mr := newTestCache(t, time.Hour)
	ctx := context.Background()

	cache.Put(ctx, nil)
	cache.Put(ctx, &core.User{ID: 0, Username: "nobody"})
	assert.Empty(t, mr.Keys())
}
