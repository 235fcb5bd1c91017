package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pcache "PredBoard/pkg/cache"
	applogger "PredBoard/pkg/logger"
)

type loadCall struct {
	tab    Tab
	ticker string
	force  bool
}

type fakeLoader struct {
	mu    sync.Mutex
	calls []loadCall
}

func (f *fakeLoader) LoadTab(_ context.Context, tab Tab, ticker string, force bool) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, loadCall{tab, ticker, force})
	return string(tab) + ":" + ticker
}

func (f *fakeLoader) count(tab Tab) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.tab == tab {
			n++
		}
	}
	return n
}

func newStore(t *testing.T) *TabStore {
	t.Helper()
	mc := pcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return NewTabStore(mc, 0, applogger.Nop())
}

func TestParseTab(t *testing.T) {
	for _, tab := range Tabs {
		got, err := ParseTab(string(tab))
		require.NoError(t, err)
		assert.Equal(t, tab, got)
	}
	got, err := ParseTab(" Signals ")
	require.NoError(t, err)
	assert.Equal(t, TabSignals, got)

	_, err = ParseTab("portfolio")
	assert.True(t, errors.Is(err, ErrUnknownTab))
}

func TestInit_DefaultTab(t *testing.T) {
	ld := &fakeLoader{}
	o := NewOrchestrator("s1", ld, newStore(t), TabUniverse, applogger.Nop())

	o.Init(context.Background(), "")
	assert.Equal(t, TabUniverse, o.Active())
	assert.Equal(t, 1, ld.count(TabUniverse))
}

func TestInit_RestoresPersistedTab(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set(context.Background(), "s1", TabScreener))
	ld := &fakeLoader{}

	o := NewOrchestrator("s1", ld, store, TabUniverse, applogger.Nop())
	o.Init(context.Background(), "")
	assert.Equal(t, TabScreener, o.Active())
	assert.Equal(t, 0, ld.count(TabUniverse))
}

func TestInit_DeepLink(t *testing.T) {
	ld := &fakeLoader{}
	o := NewOrchestrator("s1", ld, newStore(t), TabUniverse, applogger.Nop())

	o.Init(context.Background(), "aapl")
	assert.Equal(t, TabAnalysis, o.Active())
	assert.Equal(t, "AAPL", o.Ticker())
	require.Len(t, ld.calls, 2)
	assert.Equal(t, loadCall{TabUniverse, "", false}, ld.calls[0])
	assert.Equal(t, loadCall{TabAnalysis, "AAPL", false}, ld.calls[1])
}

func TestInit_DeepLinkOnRestoredAnalysis(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set(context.Background(), "s1", TabAnalysis))
	ld := &fakeLoader{}

	o := NewOrchestrator("s1", ld, store, TabUniverse, applogger.Nop())
	o.Init(context.Background(), "msft")
	assert.Equal(t, TabAnalysis, o.Active())
	assert.Equal(t, "MSFT", o.Ticker())
	require.Len(t, ld.calls, 1)
	assert.Equal(t, loadCall{TabAnalysis, "MSFT", false}, ld.calls[0])
}

func TestSwitch_LoadsOnce(t *testing.T) {
	ld := &fakeLoader{}
	store := newStore(t)
	o := NewOrchestrator("s1", ld, store, TabUniverse, applogger.Nop())
	ctx := context.Background()
	o.Init(ctx, "")

	changed, err := o.Switch(ctx, "signals")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, ld.count(TabSignals))

	saved, ok := store.Get(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, TabSignals, saved)

	_, _ = o.Switch(ctx, "universe")
	_, _ = o.Switch(ctx, "signals")
	assert.Equal(t, 1, ld.count(TabSignals))
	assert.Equal(t, 1, ld.count(TabUniverse))
}

func TestSwitch_ActiveIsNoop(t *testing.T) {
	ld := &fakeLoader{}
	o := NewOrchestrator("s1", ld, newStore(t), TabUniverse, applogger.Nop())
	o.Init(context.Background(), "")
	o.Invalidate(TabUniverse)

	changed, err := o.Switch(context.Background(), "universe")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, ld.count(TabUniverse))
}

func TestSwitch_UnknownTabLeavesState(t *testing.T) {
	ld := &fakeLoader{}
	var logs bytes.Buffer
	o := NewOrchestrator("s1", ld, newStore(t), TabSignals, applogger.NewWriter(&logs, "warn"))
	o.Init(context.Background(), "")

	changed, err := o.Switch(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownTab)
	assert.False(t, changed)
	assert.Equal(t, TabSignals, o.Active())
	assert.Len(t, ld.calls, 1)

	var line struct {
		Level   string `json:"level"`
		Message string `json:"message"`
		Tab     string `json:"tab"`
		Session string `json:"session"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &line))
	assert.Equal(t, "warn", line.Level)
	assert.Equal(t, "ignoring switch to unknown tab", line.Message)
	assert.Equal(t, "nope", line.Tab)
	assert.Equal(t, "s1", line.Session)
}

func TestNavigate_ReloadsOnTickerChange(t *testing.T) {
	ld := &fakeLoader{}
	o := NewOrchestrator("s1", ld, newStore(t), TabSignals, applogger.Nop())
	ctx := context.Background()
	o.Init(ctx, "")

	o.Navigate(ctx, "AAA")
	o.Navigate(ctx, "AAA")
	assert.Equal(t, 1, ld.count(TabAnalysis))

	o.Navigate(ctx, "BBB")
	assert.Equal(t, 2, ld.count(TabAnalysis))
	tab, v := o.View(ctx)
	assert.Equal(t, TabAnalysis, tab)
	assert.Equal(t, "analysis:BBB", v)
}

func TestReloadAndInvalidate(t *testing.T) {
	ld := &fakeLoader{}
	o := NewOrchestrator("s1", ld, newStore(t), TabUniverse, applogger.Nop())
	ctx := context.Background()
	o.Init(ctx, "")

	o.Reload(ctx)
	require.Len(t, ld.calls, 2)
	assert.True(t, ld.calls[1].force)

	o.Invalidate(TabUniverse)
	assert.False(t, o.Loaded(TabUniverse))
	o.View(ctx)
	assert.True(t, o.Loaded(TabUniverse))
	assert.False(t, ld.calls[2].force)
	assert.Equal(t, 3, o.Loads(TabUniverse))
}

func TestSessions_GetAndSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSessions(&fakeLoader{}, newStore(t), TabUniverse, time.Hour, applogger.Nop())
	s.now = func() time.Time { return now }

	o, id, created := s.Get("")
	assert.True(t, created)
	assert.NotEmpty(t, id)

	again, id2, created := s.Get(id)
	assert.False(t, created)
	assert.Equal(t, id, id2)
	assert.Same(t, o, again)

	_, other, _ := s.Get("not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", other)
	assert.Equal(t, 2, s.Len())

	now = now.Add(30 * time.Minute)
	o.View(context.Background())

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	_, _, created = s.Get(id)
	assert.False(t, created)
}

func TestSessions_InvalidateViews(t *testing.T) {
	ld := &fakeLoader{}
	s := NewSessions(ld, newStore(t), TabUniverse, time.Hour, applogger.Nop())
	o, _, _ := s.Get("")
	o.Init(context.Background(), "")

	s.InvalidateViews("universe", "not-a-tab")
	assert.False(t, o.Loaded(TabUniverse))
	o.View(context.Background())
	assert.Equal(t, 2, ld.count(TabUniverse))
}
