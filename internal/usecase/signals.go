package usecase

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"PredBoard/internal/domain/models"
	domrepo "PredBoard/internal/domain/repository"
	vcache "PredBoard/internal/service/cache"
	viewmetrics "PredBoard/internal/service/metrics"
	applogger "PredBoard/pkg/logger"
	xutil "PredBoard/pkg/util"
)

// SignalsUseCase loads the signal list and keeps a by-ticker index of the
// last list loaded with the default confidence floor.
type SignalsUseCase struct {
	backend       domrepo.PredictionBackend
	cache         *vcache.ViewCache
	metrics       domrepo.Metrics
	minConfidence float64
	l             *applogger.Logger

	mu      sync.RWMutex
	index   map[string]models.Signal
	tickers []string
}

func NewSignalsUseCase(b domrepo.PredictionBackend, c *vcache.ViewCache, m domrepo.Metrics, minConfidence float64, l *applogger.Logger) *SignalsUseCase {
	return &SignalsUseCase{
		backend:       b,
		cache:         c,
		metrics:       m,
		minConfidence: minConfidence,
		l:             l,
		index:         map[string]models.Signal{},
	}
}

// Load returns signals above the configured confidence floor.
func (uc *SignalsUseCase) Load(ctx context.Context, force bool) *models.SignalsView {
	return uc.LoadMin(ctx, uc.minConfidence, force)
}

// LoadMin returns signals with confidence >= minConfidence, sorted by
// confidence descending.
func (uc *SignalsUseCase) LoadMin(ctx context.Context, minConfidence float64, force bool) *models.SignalsView {
	defer viewmetrics.ObserveSince(models.ViewSignals, time.Now())
	key := vcache.Key(models.ViewSignals, strconv.FormatFloat(minConfidence, 'f', -1, 64))

	view, ok := uc.load(ctx, key, minConfidence, force)
	if ok && minConfidence == uc.minConfidence {
		uc.reindex(view)
	}
	return view
}

func (uc *SignalsUseCase) load(ctx context.Context, key string, minConfidence float64, force bool) (*models.SignalsView, bool) {
	if !force {
		if v, ok := vcache.Fresh[models.SignalsView](ctx, uc.cache, models.ViewSignals, key); ok {
			return &v, true
		}
	}

	sigs, ok := uc.backend.Signals(ctx, minConfidence)
	if !ok {
		uc.metrics.RecordRefresh(models.ViewSignals, 0, true)
		if e, found := vcache.Lookup[models.SignalsView](ctx, uc.cache, key); found {
			uc.l.Warn("signals degraded, serving last good list",
				applogger.Duration("age_ms", uc.cache.Now().Sub(e.FetchedAt)))
			v := e.Value
			v.Degraded, v.Stale = true, true
			return &v, true
		}
		uc.l.Warn("signals degraded, list unavailable")
		return &models.SignalsView{Rows: []models.SignalRow{}, Degraded: true, RefreshedAt: uc.cache.Now()}, false
	}

	SortByConfidence(sigs)
	rows := make([]models.SignalRow, len(sigs))
	for i, s := range sigs {
		rows[i] = models.SignalRow{Signal: s, Link: AnalysisLink(s.Ticker)}
	}
	view := models.SignalsView{Rows: rows, Count: len(rows), RefreshedAt: uc.cache.Now()}

	vcache.Put(ctx, uc.cache, key, view)
	uc.metrics.RecordRefresh(models.ViewSignals, view.Count, false)
	return &view, true
}

func (uc *SignalsUseCase) reindex(v *models.SignalsView) {
	index := make(map[string]models.Signal, len(v.Rows))
	tickers := make([]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		t := xutil.NormalizeTicker(r.Ticker)
		if _, dup := index[t]; !dup {
			tickers = append(tickers, r.Ticker)
		}
		index[t] = r.Signal
	}
	sort.Strings(tickers)

	uc.mu.Lock()
	uc.index, uc.tickers = index, tickers
	uc.mu.Unlock()
}

// Lookup returns the indexed signal for ticker.
func (uc *SignalsUseCase) Lookup(ticker string) (models.Signal, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	s, ok := uc.index[xutil.NormalizeTicker(ticker)]
	return s, ok
}

// Tickers returns the indexed tickers in alphabetical order.
func (uc *SignalsUseCase) Tickers() []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return append([]string(nil), uc.tickers...)
}

// SortByConfidence orders signals by confidence, highest first. Signals
// without confidence go last; ties break by ticker.
func SortByConfidence(sigs []models.Signal) {
	sort.SliceStable(sigs, func(i, j int) bool {
		a, b := sigs[i].Confidence, sigs[j].Confidence
		switch {
		case a == nil && b == nil:
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		}
		return sigs[i].Ticker < sigs[j].Ticker
	})
}

// AnalysisLink is the page URL that opens the analysis tab on ticker.
func AnalysisLink(ticker string) string {
	return "/?ticker=" + url.QueryEscape(ticker)
}
