package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pcache "PredBoard/pkg/cache"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type payload struct {
	Rows []string `json:"rows"`
}

func newViewCache(t *testing.T) (*ViewCache, *clock) {
	t.Helper()
	store := pcache.NewMemoryCache()
	t.Cleanup(func() { _ = store.Close() })
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return New(store, 5*time.Minute, time.Hour, WithClock(clk.now)), clk
}

func TestFresh_WithinWindow(t *testing.T) {
	vc, clk := newViewCache(t)
	ctx := context.Background()
	key := Key("universe")

	_, ok := Fresh[payload](ctx, vc, "universe", key)
	assert.False(t, ok)

	Put(ctx, vc, key, payload{Rows: []string{"AAA"}})
	clk.advance(4*time.Minute + 59*time.Second)

	got, ok := Fresh[payload](ctx, vc, "universe", key)
	require.True(t, ok)
	assert.Equal(t, []string{"AAA"}, got.Rows)
}

func TestFresh_StaleButRetained(t *testing.T) {
	vc, clk := newViewCache(t)
	ctx := context.Background()
	key := Key("signals")

	stored := Put(ctx, vc, key, payload{Rows: []string{"BBB"}})
	clk.advance(5 * time.Minute)

	_, ok := Fresh[payload](ctx, vc, "signals", key)
	assert.False(t, ok)

	e, ok := Lookup[payload](ctx, vc, key)
	require.True(t, ok)
	assert.True(t, stored.FetchedAt.Equal(e.FetchedAt))
	assert.False(t, vc.IsFresh(e.FetchedAt))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "view:universe", Key("universe"))
	assert.Equal(t, "view:analysis:AAPL", Key("analysis", "aapl"))
	assert.Equal(t, "view:universe-country:.SN", Key("universe-country", ".sn"))
}

func TestInvalidate(t *testing.T) {
	vc, _ := newViewCache(t)
	ctx := context.Background()

	Put(ctx, vc, Key("analysis", "AAA"), payload{})
	Put(ctx, vc, Key("analysis", "BBB"), payload{})
	Put(ctx, vc, Key("signals"), payload{})

	vc.Invalidate(ctx, "analysis")

	_, ok := Lookup[payload](ctx, vc, Key("analysis", "AAA"))
	assert.False(t, ok)
	_, ok = Lookup[payload](ctx, vc, Key("analysis", "BBB"))
	assert.False(t, ok)
	_, ok = Lookup[payload](ctx, vc, Key("signals"))
	assert.True(t, ok)
}

func TestNew_RetentionAtLeastFresh(t *testing.T) {
	vc := New(pcache.NewMemoryCache(), 5*time.Minute, time.Minute)
	assert.Equal(t, 5*time.Minute, vc.retention)
}
