package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	in := payload{Symbol: "AAPL", Closes: []float64{1, 2.5}}
	require.NoError(t, mc.Set(ctx, "k", in, time.Minute))

	var out payload
	require.NoError(t, mc.Get(ctx, "k", &out))
	assert.Equal(t, in, out)

	require.NoError(t, mc.Set(ctx, "s", "plain", time.Minute))
	var s string
	require.NoError(t, mc.Get(ctx, "s", &s))
	assert.Equal(t, "plain", s)

	ok, err := mc.Exists(ctx, "missing", "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mc.Delete(ctx, "k"))
	assert.ErrorIs(t, mc.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set(ctx, "k", 1, time.Minute))
	var v int
	require.NoError(t, mc.Get(ctx, "k", &v))

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { now = now.Add(time.Second); return now }

	require.NoError(t, mc.Set(ctx, "a", 1, time.Hour))
	require.NoError(t, mc.Set(ctx, "b", 2, time.Hour))
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	require.NoError(t, mc.Set(ctx, "c", 3, time.Hour))

	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, mc.Len())
}

func TestLayeredCachePromotesRemoteHits(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache()
	lc := NewLayeredCache(remote, WithLayeredMemoryTTL(time.Minute))
	defer lc.Close()

	require.NoError(t, remote.Set(ctx, "k", payload{Symbol: "MSFT"}, time.Hour))

	var out payload
	require.NoError(t, lc.Get(ctx, "k", &out))
	assert.Equal(t, "MSFT", out.Symbol)

	require.NoError(t, remote.Delete(ctx, "k"))
	out = payload{}
	require.NoError(t, lc.Get(ctx, "k", &out), "served from L1")
	assert.Equal(t, "MSFT", out.Symbol)

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "bars:AAPL:2y:1d", GenerateKeyWithParams("bars", "AAPL", "2y", "1d"))
	assert.Equal(t, "bars", GenerateKeyWithParams("bars"))
}
