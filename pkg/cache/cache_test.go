package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	in := []point{{Date: "2024-01-02", Close: 10.5}}
	require.NoError(t, mc.Set(ctx, "prices:TLT", in, time.Minute))

	var out []point
	require.NoError(t, mc.Get(ctx, "prices:TLT", &out))
	assert.Equal(t, in, out)

	require.NoError(t, mc.Set(ctx, "raw", "hello", time.Minute))
	var s string
	require.NoError(t, mc.Get(ctx, "raw", &s))
	assert.Equal(t, "hello", s)

	ok, err := mc.Exists(ctx, "missing", "raw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	var out []point
	assert.True(t, errors.Is(mc.Get(ctx, "nope", &out), ErrCacheMiss))

	require.NoError(t, mc.Set(ctx, "short", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	var s string
	assert.True(t, errors.Is(mc.Get(ctx, "short", &s), ErrCacheMiss))

	require.NoError(t, mc.Set(ctx, "gone", "v", time.Minute))
	require.NoError(t, mc.Delete(ctx, "gone"))
	assert.True(t, errors.Is(mc.Get(ctx, "gone", &s), ErrCacheMiss))
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))
	var s string
	require.NoError(t, mc.Get(ctx, "a", &s))
	require.NoError(t, mc.Set(ctx, "c", "3", time.Minute))

	assert.Equal(t, 2, mc.Len())
	assert.NoError(t, mc.Get(ctx, "a", &s))
	assert.True(t, errors.Is(mc.Get(ctx, "b", &s), ErrCacheMiss))
	assert.NoError(t, mc.Get(ctx, "c", &s))
}

func TestMemoryCacheRemoveExpired(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(time.Hour), WithMemoryDefaultTTL(time.Hour))
	defer mc.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set(ctx, "short", "v", time.Minute))
	require.NoError(t, mc.Set(ctx, "default", "v", 0))
	now = now.Add(2 * time.Minute)
	mc.removeExpired()

	assert.Equal(t, 1, mc.Len())
	ok, err := mc.Exists(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLayeredCachePromotesL2Hits(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2, WithLayeredMemoryTTL(time.Minute))
	defer lc.Close()

	require.NoError(t, l2.Set(ctx, "k", []point{{Date: "d", Close: 1}}, time.Hour))

	var out []point
	require.NoError(t, lc.Get(ctx, "k", &out))
	assert.Equal(t, 1.0, out[0].Close)

	require.NoError(t, l2.Delete(ctx, "k"))
	out = nil
	require.NoError(t, lc.Get(ctx, "k", &out), "served from L1")
	assert.Len(t, out, 1)

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.True(t, errors.Is(lc.Get(ctx, "k", &out), ErrCacheMiss))
}

func TestLayeredCacheWritesThrough(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2)
	defer lc.Close()

	require.NoError(t, lc.Set(ctx, "k", point{Date: "d", Close: 2}, time.Hour))

	var fromL2 point
	require.NoError(t, l2.Get(ctx, "k", &fromL2))
	assert.Equal(t, 2.0, fromL2.Close)

	ok, err := lc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "prices:csv:TLT", Key("prices", "csv", "TLT"))
	assert.Equal(t, "prices:TLT", Key("prices", "", "TLT"))
}
