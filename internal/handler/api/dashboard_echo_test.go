package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PredBoard/internal/dashboard"
	"PredBoard/internal/domain/models"
	domrepo "PredBoard/internal/domain/repository"
	"PredBoard/internal/handler"
	"PredBoard/internal/service/backend"
	vcache "PredBoard/internal/service/cache"
	"PredBoard/internal/service/ratelimit"
	"PredBoard/internal/usecase"
	pcache "PredBoard/pkg/cache"
	xhttp "PredBoard/pkg/http"
	xlogger "PredBoard/pkg/logger"
)

type stack struct {
	e     *echo.Echo
	calls atomic.Int32
}

func newStack(t *testing.T, burst float64) *stack {
	t.Helper()
	s := &stack{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		switch r.URL.Path {
		case "/dashboard/tickers":
			_, _ = w.Write([]byte(`{"tickers":["AAA","BBB"]}`))
		case "/dashboard/latest/AAA":
			_, _ = w.Write([]byte(`{"result":{"prediction":{"price_now":100,"ret_ens_pct":-3.456}}}`))
		case "/dashboard/predictions/summary":
			_, _ = w.Write([]byte(`[{"date_base":"2024-01-01","price_pred":101}]`))
		case "/signals":
			_, _ = w.Write([]byte(`[{"ticker":"AAA","confidence":0.9},{"ticker":"CHILE.SN","confidence":0.4}]`))
		case "/assets":
			_, _ = w.Write([]byte(`[]`))
		case "/dashboard/screener":
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(upstream.Close)

	l := xlogger.Nop()
	m := domrepo.NopMetrics{}
	store := pcache.NewMemoryCache()
	t.Cleanup(func() { _ = store.Close() })
	vc := vcache.New(store, 5*time.Minute, time.Hour)
	be := backend.New(backend.Config{BaseURL: upstream.URL, Timeout: time.Second}, m, l)

	sig := usecase.NewSignalsUseCase(be, vc, m, 0, l)
	ctrl := dashboard.NewController(
		usecase.NewUniverseUseCase(be, vc, m, 4, l),
		usecase.NewCountryUseCase(be, vc, sig, m, ".SN", l),
		usecase.NewAnalysisUseCase(be, vc, sig, m, l),
		sig,
		usecase.NewScreenerUseCase(be, vc, m, l),
	)
	sessions := dashboard.NewSessions(ctrl, dashboard.NewTabStore(store, 0, l), dashboard.TabUniverse, time.Hour, l)
	guard := ratelimit.NewForceGuard(ratelimit.New(), burst, 0)

	h := NewDashboardEchoHandler(l, ctrl, sessions, guard, time.Hour)
	s.e = xhttp.NewServer(h, xhttp.WithLogger(l), xhttp.WithMetricsPath("")).Echo()
	return s
}

func (s *stack) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestUniverse_PartialFailure(t *testing.T) {
	s := newStack(t, 3)
	rec := s.do(http.MethodGet, "/api/universe")
	require.Equal(t, http.StatusOK, rec.Code)

	var v models.UniverseView
	decodeData(t, rec, &v)
	require.Len(t, v.Rows, 2)
	assert.True(t, v.Rows[0].HasData)
	assert.False(t, v.Rows[1].HasData)
	assert.True(t, v.Degraded)
}

func TestUniverse_CachedThenForced(t *testing.T) {
	s := newStack(t, 1)
	s.do(http.MethodGet, "/api/universe")
	n := s.calls.Load()

	s.do(http.MethodGet, "/api/universe")
	assert.Equal(t, n, s.calls.Load())

	rec := s.do(http.MethodGet, "/api/universe?force=1")
	assert.Greater(t, s.calls.Load(), n)
	assert.Empty(t, rec.Header().Get(HeaderRefreshLimited))

	n = s.calls.Load()
	rec = s.do(http.MethodGet, "/api/universe?force=1")
	assert.Equal(t, n, s.calls.Load())
	assert.Equal(t, "1", rec.Header().Get(HeaderRefreshLimited))
}

func TestForcedRefreshLimitIgnoresCallerIdentity(t *testing.T) {
	s := newStack(t, 1)
	s.do(http.MethodGet, "/api/universe?force=1")
	n := s.calls.Load()

	limited := 0
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/universe?force=1", nil)
		req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: fmt.Sprintf("client-%d", i)})
		req.Header.Set(echo.HeaderXForwardedFor, fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		if rec.Header().Get(HeaderRefreshLimited) == "1" {
			limited++
		}
	}
	assert.Equal(t, 5, limited)
	assert.Equal(t, n, s.calls.Load())
}

func TestSignalsAndCountry(t *testing.T) {
	s := newStack(t, 3)

	var sv models.SignalsView
	decodeData(t, s.do(http.MethodGet, "/api/signals"), &sv)
	require.Len(t, sv.Rows, 2)
	assert.Equal(t, "AAA", sv.Rows[0].Ticker)
	assert.Equal(t, "/?ticker=AAA", sv.Rows[0].Link)

	var cv models.CountryView
	decodeData(t, s.do(http.MethodGet, "/api/universe/country"), &cv)
	require.Len(t, cv.Rows, 1)
	assert.Equal(t, "CHILE.SN", cv.Rows[0].Ticker)

	rec := s.do(http.MethodGet, "/api/universe/country?suffix=SN")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysis(t *testing.T) {
	s := newStack(t, 3)
	var av models.AnalysisView
	decodeData(t, s.do(http.MethodGet, "/api/analysis/AAA"), &av)
	assert.Equal(t, "AAA", av.Ticker)
	require.NotNil(t, av.KPI.PriceNow)
	assert.Equal(t, 100.0, *av.KPI.PriceNow)
	assert.Equal(t, 1, av.Chart.Len())

	rec := s.do(http.MethodGet, "/api/analysis/"+strings.Repeat("X", 30))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreener_EmptyMessage(t *testing.T) {
	s := newStack(t, 3)
	var v models.ScreenerView
	decodeData(t, s.do(http.MethodGet, "/api/screener"), &v)
	assert.Equal(t, usecase.MsgNoCandidates, v.Message)
}

func TestSwitchTab(t *testing.T) {
	s := newStack(t, 3)

	rec := s.do(http.MethodPost, "/api/tabs/signals")
	require.Equal(t, http.StatusOK, rec.Code)
	var tr tabResponse
	decodeData(t, rec, &tr)
	assert.Equal(t, dashboard.TabSignals, tr.Tab)
	assert.True(t, tr.Changed)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/api/tabs/bogus", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/tabs/signals", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	decodeData(t, rec, &tr)
	assert.False(t, tr.Changed)
}

func TestNavigate(t *testing.T) {
	s := newStack(t, 3)
	rec := s.do(http.MethodPost, "/api/navigate/aaa")
	require.Equal(t, http.StatusOK, rec.Code)
	var tr tabResponse
	decodeData(t, rec, &tr)
	assert.Equal(t, dashboard.TabAnalysis, tr.Tab)
	assert.Equal(t, "AAA", tr.Ticker)
}
