package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"PredBoard/internal/domain/models"
	domrepo "PredBoard/internal/domain/repository"
	vcache "PredBoard/internal/service/cache"
	viewmetrics "PredBoard/internal/service/metrics"
	applogger "PredBoard/pkg/logger"
	xutil "PredBoard/pkg/util"
)

// AnalysisUseCase builds the per-ticker analysis: KPIs and the predicted vs
// actual chart.
type AnalysisUseCase struct {
	backend domrepo.PredictionBackend
	cache   *vcache.ViewCache
	signals *SignalsUseCase
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewAnalysisUseCase(b domrepo.PredictionBackend, c *vcache.ViewCache, s *SignalsUseCase, m domrepo.Metrics, l *applogger.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{backend: b, cache: c, signals: s, metrics: m, l: l}
}

// analysisData is what gets cached per ticker. The chart is rebuilt on every
// load.
type analysisData struct {
	KPI         models.KPI               `json:"kpi"`
	Series      []models.PredictionPoint `json:"series"`
	Degraded    bool                     `json:"degraded"`
	RefreshedAt time.Time                `json:"refreshed_at"`
}

// Load returns the analysis view for ticker. An empty ticker selects the
// first ticker of the signals index.
func (uc *AnalysisUseCase) Load(ctx context.Context, ticker string, force bool) *models.AnalysisView {
	defer viewmetrics.ObserveSince(models.ViewAnalysis, time.Now())

	uc.signals.Load(ctx, false)
	tickers := uc.signals.Tickers()

	ticker = xutil.NormalizeTicker(ticker)
	if ticker == "" && len(tickers) > 0 {
		ticker = tickers[0]
	}
	view := &models.AnalysisView{Ticker: ticker, Tickers: tickers}
	if ticker == "" {
		view.Series = []models.PredictionPoint{}
		view.Chart = BuildChart(nil)
		view.RefreshedAt = uc.cache.Now()
		return view
	}

	data := uc.data(ctx, ticker, force)
	view.KPI = data.KPI
	view.Series = data.Series
	view.Degraded = data.Degraded
	view.RefreshedAt = data.RefreshedAt
	view.Chart = BuildChart(data.Series)
	return view
}

func (uc *AnalysisUseCase) data(ctx context.Context, ticker string, force bool) analysisData {
	key := vcache.Key(models.ViewAnalysis, ticker)
	if !force {
		if d, ok := vcache.Fresh[analysisData](ctx, uc.cache, models.ViewAnalysis, key); ok {
			return d
		}
	}

	var (
		wg               sync.WaitGroup
		series           []models.PredictionPoint
		snap             models.Snapshot
		seriesOK, snapOK bool
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		series, seriesOK = uc.backend.PredictionSummary(ctx, ticker)
	}()
	go func() {
		defer wg.Done()
		snap, snapOK = uc.backend.Latest(ctx, ticker)
	}()
	wg.Wait()

	if series == nil {
		series = []models.PredictionPoint{}
	}
	var sig *models.Signal
	if s, ok := uc.signals.Lookup(ticker); ok {
		sig = &s
	}

	d := analysisData{
		KPI:         MergeKPI(snap, sig, series),
		Series:      series,
		Degraded:    !seriesOK || !snapOK,
		RefreshedAt: uc.cache.Now(),
	}
	if d.Degraded {
		uc.l.Warn("analysis degraded",
			applogger.String("ticker", ticker),
			applogger.Bool("series_ok", seriesOK),
			applogger.Bool("snapshot_ok", snapOK))
	}
	// Nothing worth keeping when both calls failed.
	if seriesOK || snapOK {
		vcache.Put(ctx, uc.cache, key, d)
	}
	uc.metrics.RecordRefresh(models.ViewAnalysis, len(series), d.Degraded)
	return d
}

// MergeKPI fills each KPI field from the first source that has it: the
// snapshot, then the signal record, then the last series point.
func MergeKPI(snap models.Snapshot, sig *models.Signal, series []models.PredictionPoint) models.KPI {
	k := models.KPI{
		Recommendation: snap.Recommendation,
		Quality:        snap.Quality,
		Confidence:     snap.Confidence,
		PriceNow:       snap.PriceNow,
		PricePred:      snap.PricePred,
		ReturnPct:      snap.ReturnPct,
		MAE:            snap.MAE,
		RMSE:           snap.RMSE,
		MAPE:           snap.MAPE,
		DateBase:       snap.DateBase,
	}
	if sig != nil {
		k.Recommendation = firstString(k.Recommendation, sig.Recommendation)
		k.Quality = firstString(k.Quality, sig.Quality)
		k.Confidence = firstFloat(k.Confidence, sig.Confidence)
		k.PriceNow = firstFloat(k.PriceNow, sig.PriceNow)
		k.PricePred = firstFloat(k.PricePred, sig.PricePred)
		k.ReturnPct = firstFloat(k.ReturnPct, sig.ReturnPct)
		k.DateBase = firstString(k.DateBase, sig.DateBase)
	}
	if n := len(series); n > 0 {
		last := series[n-1]
		k.PriceNow = firstFloat(k.PriceNow, last.PriceNow)
		k.PricePred = firstFloat(k.PricePred, last.PricePred)
		k.DateBase = firstString(k.DateBase, last.DateBase)
	}
	if k.ReturnPct == nil && k.PriceNow != nil && k.PricePred != nil && *k.PriceNow != 0 {
		r := (*k.PricePred / *k.PriceNow - 1) * 100
		k.ReturnPct = &r
	}
	return k
}

// BuildChart builds a new chart from series. Every call gets a new ID so the
// page replaces the previous chart instead of drawing over it.
func BuildChart(series []models.PredictionPoint) models.Chart {
	c := models.Chart{
		ID:        "chart-" + uuid.NewString(),
		Labels:    make([]string, 0, len(series)),
		Predicted: make([]*float64, 0, len(series)),
		Actual:    make([]*float64, 0, len(series)),
	}
	for _, p := range series {
		c.Labels = append(c.Labels, p.DateBase)
		c.Predicted = append(c.Predicted, p.PricePred)
		c.Actual = append(c.Actual, p.PriceNow)
	}
	return c
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
