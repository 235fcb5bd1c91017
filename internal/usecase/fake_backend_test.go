package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"PredBoard/internal/domain/models"
	vcache "PredBoard/internal/service/cache"
	pcache "PredBoard/pkg/cache"
	applogger "PredBoard/pkg/logger"
)

// fakeBackend serves canned data and counts calls per method. Tickers listed
// in failLatest fail their Latest call.
type fakeBackend struct {
	mu         sync.Mutex
	calls      map[string]int
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
	delay      time.Duration
	tickers    []models.Ticker
	tickersOK  bool
	snapshots  map[string]models.Snapshot
	failLatest map[string]bool
	series     map[string][]models.PredictionPoint
	seriesOK   bool
	signals    []models.Signal
	signalsOK  bool
	assets     []models.Asset
	assetsOK   bool
	report     models.ScreenerReport
	reportOK   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:      map[string]int{},
		tickersOK:  true,
		snapshots:  map[string]models.Snapshot{},
		failLatest: map[string]bool{},
		series:     map[string][]models.PredictionPoint{},
		seriesOK:   true,
		signalsOK:  true,
		assetsOK:   true,
		reportOK:   true,
	}
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) Tickers(context.Context) ([]models.Ticker, bool) {
	f.hit("tickers")
	if !f.tickersOK {
		return nil, false
	}
	return f.tickers, true
}

func (f *fakeBackend) Latest(_ context.Context, ticker string) (models.Snapshot, bool) {
	f.hit("latest")
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLatest[ticker] {
		return models.Snapshot{Ticker: ticker}, false
	}
	return f.snapshots[ticker], true
}

func (f *fakeBackend) PredictionSummary(_ context.Context, ticker string) ([]models.PredictionPoint, bool) {
	f.hit("summary")
	if !f.seriesOK {
		return nil, false
	}
	return f.series[ticker], true
}

func (f *fakeBackend) Signals(context.Context, float64) ([]models.Signal, bool) {
	f.hit("signals")
	if !f.signalsOK {
		return nil, false
	}
	out := make([]models.Signal, len(f.signals))
	copy(out, f.signals)
	return out, true
}

func (f *fakeBackend) Assets(context.Context) ([]models.Asset, bool) {
	f.hit("assets")
	return f.assets, f.assetsOK
}

func (f *fakeBackend) Screener(context.Context) (models.ScreenerReport, bool) {
	f.hit("screener")
	return f.report, f.reportOK
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache() (*vcache.ViewCache, *testClock) {
	clk := &testClock{t: time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)}
	return vcache.New(pcache.NewMemoryCache(), 5*time.Minute, time.Hour, vcache.WithClock(clk.now)), clk
}

func fp(f float64) *float64 { return &f }

var nop = applogger.Nop()
