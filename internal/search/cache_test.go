package search

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxPerUser int) (*QueryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewQueryCache(rdb, time.Hour, maxPerUser), mr
}

func TestQueryCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t, 10)
	ctx := context.Background()

	result := &Result{
		Answer:     "The payroll deadline is the 25th.",
		References: []Reference{{Title: "payroll.pdf", URL: "http://minio/payroll.pdf"}},
	}
	require.NoError(t, cache.Set(ctx, 1, "payroll deadline", result))

	got, found := cache.Get(ctx, 1, "payroll deadline")
	require.True(t, found)
	assert.Equal(t, result.Answer, got.Answer)
	assert.Equal(t, result.References, got.References)
}

func TestQueryCache_MissForOtherUserAndQuery(t *testing.T) {
	cache, _ := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 1, "payroll deadline", &Result{Answer: "a"}))

	_, found := cache.Get(ctx, 2, "payroll deadline")
	assert.False(t, found, "another user must not see the cached answer")

	_, found = cache.Get(ctx, 1, "leave policy")
	assert.False(t, found, "a different query must miss")
}

func TestQueryCache_EvictsOldestBeyondCap(t *testing.T) {
	cache, _ := newTestCache(t, 2)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 1, "first", &Result{Answer: "1"}))
	require.NoError(t, cache.Set(ctx, 1, "second", &Result{Answer: "2"}))
	require.NoError(t, cache.Set(ctx, 1, "third", &Result{Answer: "3"}))

	_, found := cache.Get(ctx, 1, "first")
	assert.False(t, found, "oldest entry should be evicted")

	got, found := cache.Get(ctx, 1, "second")
	require.True(t, found)
	assert.Equal(t, "2", got.Answer)

	got, found = cache.Get(ctx, 1, "third")
	require.True(t, found)
	assert.Equal(t, "3", got.Answer)
}

func TestQueryCache_ExpiresWithTTL(t *testing.T) {
	cache, mr := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 1, "payroll deadline", &Result{Answer: "a"}))

	mr.FastForward(2 * time.Hour)

	_, found := cache.Get(ctx, 1, "payroll deadline")
	assert.False(t, found, "entry should expire with the TTL")
}
