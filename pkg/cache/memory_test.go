package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type view struct {
	Rows  []string  `json:"rows"`
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, mc.Set(ctx, "universe", view{Rows: []string{"AAA"}, Count: 1, At: at}, time.Minute))

	got, err := GetTyped[view](ctx, mc, "universe")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA"}, got.Rows)
	assert.True(t, got.At.Equal(at))

	var s string
	require.NoError(t, mc.Set(ctx, "tab", "signals", time.Minute))
	require.NoError(t, mc.Get(ctx, "tab", &s))
	assert.Equal(t, "signals", s)
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	var v view
	assert.ErrorIs(t, mc.Get(ctx, "missing", &v), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "short", view{Count: 1}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	assert.ErrorIs(t, mc.Get(ctx, "short", &v), ErrCacheMiss)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	for _, k := range []string{"view:analysis:AAA", "view:analysis:BBB", "view:signals"} {
		require.NoError(t, mc.Set(ctx, k, 1, time.Minute))
	}
	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("view:analysis:")))

	ok, err := mc.Exists(ctx, "view:analysis:AAA", "view:analysis:BBB")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "view:signals")
	assert.True(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	time.Sleep(time.Millisecond)
	var n int
	require.NoError(t, mc.Get(ctx, "a", &n))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &n), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &n))
	assert.Equal(t, 1, n)
}

func TestMemoryCacheIncrementAndLock(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	n, err := mc.Increment(ctx, "hits")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, _ = mc.Increment(ctx, "hits")
	assert.EqualValues(t, 2, n)

	ok, _ := mc.TryLock(ctx, "refresh", time.Minute)
	assert.True(t, ok)
	ok, _ = mc.TryLock(ctx, "refresh", time.Minute)
	assert.False(t, ok)
	require.NoError(t, mc.Unlock(ctx, "refresh"))
	ok, _ = mc.TryLock(ctx, "refresh", time.Minute)
	assert.True(t, ok)
}

func TestMGetTypedOverMemory(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.MSet(ctx, map[string]interface{}{
		"a": view{Count: 1},
		"b": view{Count: 2},
	}, time.Minute))

	got, err := MGetTyped[view](ctx, mc, "a", "b", "c")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, got["b"].Count)
}
