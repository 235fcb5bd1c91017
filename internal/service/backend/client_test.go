package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "PredBoard/pkg/logger"
)

type recordingMetrics struct {
	mu      sync.Mutex
	results []string
}

func (m *recordingMetrics) RecordBackendRequest(endpoint, result string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, endpoint+" "+result)
}
func (m *recordingMetrics) RecordCache(string, bool)        {}
func (m *recordingMetrics) RecordRefresh(string, int, bool) {}
func (m *recordingMetrics) RecordError(string)              {}
func (m *recordingMetrics) RecordLatency(string, float64)   {}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *recordingMetrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	m := &recordingMetrics{}
	c := New(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, BreakerFailures: 3, BreakerTimeout: time.Minute}, m, applogger.Nop())
	return c, m
}

func TestLatest_FailSoftPerTicker(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		switch r.URL.Path {
		case "/dashboard/latest/AAA":
			_, _ = w.Write([]byte(`{"latest":{"result":{"prediction":{"price_now":10.5,"recommendation":"BUY"}}}}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	})

	snap, ok := c.Latest(context.Background(), "AAA")
	require.True(t, ok)
	require.NotNil(t, snap.PriceNow)
	assert.Equal(t, 10.5, *snap.PriceNow)
	assert.Equal(t, "BUY", snap.Recommendation)

	snap, ok = c.Latest(context.Background(), "BBB")
	assert.False(t, ok)
	assert.Equal(t, "BBB", snap.Ticker)
	assert.True(t, snap.Empty())

	assert.Equal(t, []string{EndpointLatest + " ok", EndpointLatest + " error"}, m.results)
}

func TestLatest_EscapesTicker(t *testing.T) {
	var got string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{}`))
	})
	_, ok := c.Latest(context.Background(), "^GSPC")
	require.True(t, ok)
	assert.Equal(t, "/dashboard/latest/%5EGSPC", got)
}

func TestSignals_SendsMinConfidence(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signals", r.URL.Path)
		assert.Equal(t, "60", r.URL.Query().Get("min_confidence"))
		_, _ = w.Write([]byte(`{"signals":[{"ticker":"AAA","confidence":"0.8"},{"symbol":"BBB"}]}`))
	})
	sigs, ok := c.Signals(context.Background(), 60)
	require.True(t, ok)
	require.Len(t, sigs, 2)
	assert.Equal(t, "BBB", sigs[1].Ticker)
	require.NotNil(t, sigs[0].Confidence)
	assert.Equal(t, 0.8, *sigs[0].Confidence)
}

func TestSummaryTickersAssetsScreener(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dashboard/tickers":
			_, _ = w.Write([]byte(`["AAA","BBB","AAA"]`))
		case "/dashboard/predictions/summary":
			assert.Equal(t, "AAA", r.URL.Query().Get("ticker"))
			_, _ = w.Write([]byte(`{"data":[{"date":"2024-01-02","pred":2},{"date":"2024-01-01","pred":1}]}`))
		case "/assets":
			_, _ = w.Write([]byte(`[{"symbol":"CHILE.SN","long_name":"Banco de Chile"}]`))
		case "/dashboard/screener":
			_, _ = w.Write([]byte(`{"n_universe":40,"candidates":[{"ticker":"AAA","score":"7.5"}]}`))
		}
	})
	ctx := context.Background()

	tickers, ok := c.Tickers(ctx)
	require.True(t, ok)
	assert.Len(t, tickers, 2)

	series, ok := c.PredictionSummary(ctx, "AAA")
	require.True(t, ok)
	require.Len(t, series, 2)
	assert.Equal(t, "2024-01-01", series[0].DateBase)

	assets, ok := c.Assets(ctx)
	require.True(t, ok)
	assert.Equal(t, "Banco de Chile", assets[0].Name)

	rep, ok := c.Screener(ctx)
	require.True(t, ok)
	require.NotNil(t, rep.NUniverse)
	assert.Equal(t, 40, *rep.NUniverse)
	assert.Equal(t, 1, rep.Candidates[0].Rank)
}

func TestFetch_NullBodyIsFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	_, ok := c.Assets(context.Background())
	assert.False(t, ok)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	for i := 0; i < 5; i++ {
		_, ok := c.Tickers(context.Background())
		assert.False(t, ok)
	}
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, "open", c.State())
	assert.Equal(t, EndpointTickers+" rejected", m.results[len(m.results)-1])
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	for i := 0; i < 5; i++ {
		_, ok := c.Latest(context.Background(), "ZZZ")
		assert.False(t, ok)
	}
	assert.Equal(t, int32(5), hits.Load())
	assert.Equal(t, "closed", c.State())
}

func TestFetch_CancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := c.Tickers(ctx)
	assert.False(t, ok)
}
