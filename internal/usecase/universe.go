package usecase

import (
	"context"
	"sync"
	"time"

	"PredBoard/internal/domain/models"
	domrepo "PredBoard/internal/domain/repository"
	vcache "PredBoard/internal/service/cache"
	viewmetrics "PredBoard/internal/service/metrics"
	applogger "PredBoard/pkg/logger"
)

// UniverseUseCase builds the universe table: the ticker list plus one latest
// snapshot per ticker.
type UniverseUseCase struct {
	backend domrepo.PredictionBackend
	cache   *vcache.ViewCache
	metrics domrepo.Metrics
	workers int
	l       *applogger.Logger
}

func NewUniverseUseCase(b domrepo.PredictionBackend, c *vcache.ViewCache, m domrepo.Metrics, workers int, l *applogger.Logger) *UniverseUseCase {
	if workers < 1 {
		workers = 1
	}
	return &UniverseUseCase{backend: b, cache: c, metrics: m, workers: workers, l: l}
}

// Load returns the universe view. Without force, a view younger than the
// freshness window is returned from cache with no backend calls.
func (uc *UniverseUseCase) Load(ctx context.Context, force bool) *models.UniverseView {
	defer viewmetrics.ObserveSince(models.ViewUniverse, time.Now())
	key := vcache.Key(models.ViewUniverse)

	if !force {
		if v, ok := vcache.Fresh[models.UniverseView](ctx, uc.cache, models.ViewUniverse, key); ok {
			return &v
		}
	}

	tickers, ok := uc.backend.Tickers(ctx)
	if !ok {
		uc.metrics.RecordRefresh(models.ViewUniverse, 0, true)
		if e, found := vcache.Lookup[models.UniverseView](ctx, uc.cache, key); found {
			uc.l.Warn("universe degraded, serving last good view",
				applogger.Duration("age_ms", uc.cache.Now().Sub(e.FetchedAt)))
			v := e.Value
			v.Degraded, v.Stale = true, true
			return &v
		}
		uc.l.Warn("universe degraded, ticker list unavailable")
		return &models.UniverseView{Rows: []models.UniverseRow{}, Degraded: true, RefreshedAt: uc.cache.Now()}
	}

	rows, failed := uc.fanOut(ctx, tickers)
	view := models.UniverseView{
		Rows:        rows,
		Count:       len(rows),
		Failed:      failed,
		Degraded:    failed > 0,
		RefreshedAt: uc.cache.Now(),
	}
	if view.Degraded {
		uc.l.Warn("universe degraded",
			applogger.Int("failed", failed),
			applogger.Int("tickers", len(rows)))
	}

	vcache.Put(ctx, uc.cache, key, view)
	uc.metrics.RecordRefresh(models.ViewUniverse, view.Count, view.Degraded)
	return &view
}

// fanOut fetches every snapshot with at most uc.workers in flight and returns
// once all of them settled. Rows keep ticker-list order.
func (uc *UniverseUseCase) fanOut(ctx context.Context, tickers []models.Ticker) ([]models.UniverseRow, int) {
	rows := make([]models.UniverseRow, len(tickers))
	failed := make([]bool, len(tickers))

	sem := make(chan struct{}, uc.workers)
	var wg sync.WaitGroup
	for i, t := range tickers {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			snap, ok := uc.backend.Latest(ctx, symbol)
			snap.Ticker = symbol
			rows[i] = models.UniverseRow{Ticker: symbol, HasData: ok && !snap.Empty(), Snapshot: snap}
			failed[i] = !ok
		}(i, t.Symbol)
	}
	wg.Wait()

	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	return rows, n
}
