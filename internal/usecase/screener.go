package usecase

import (
	"context"
	"time"

	"PredBoard/internal/domain/models"
	domrepo "PredBoard/internal/domain/repository"
	vcache "PredBoard/internal/service/cache"
	viewmetrics "PredBoard/internal/service/metrics"
	applogger "PredBoard/pkg/logger"
)

const (
	MsgNoCandidates  = "No candidates (strict filters)"
	MsgScreenerError = "Error loading screener"
)

type ScreenerUseCase struct {
	backend domrepo.PredictionBackend
	cache   *vcache.ViewCache
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewScreenerUseCase(b domrepo.PredictionBackend, c *vcache.ViewCache, m domrepo.Metrics, l *applogger.Logger) *ScreenerUseCase {
	return &ScreenerUseCase{backend: b, cache: c, metrics: m, l: l}
}

func (uc *ScreenerUseCase) Load(ctx context.Context, force bool) *models.ScreenerView {
	defer viewmetrics.ObserveSince(models.ViewScreener, time.Now())
	key := vcache.Key(models.ViewScreener)

	if !force {
		if v, ok := vcache.Fresh[models.ScreenerView](ctx, uc.cache, models.ViewScreener, key); ok {
			return &v
		}
	}

	rep, ok := uc.backend.Screener(ctx)
	if !ok {
		uc.l.Warn("screener degraded")
		uc.metrics.RecordRefresh(models.ViewScreener, 0, true)
		return &models.ScreenerView{
			Report:      models.ScreenerReport{Candidates: []models.ScreenerCandidate{}},
			Message:     MsgScreenerError,
			Degraded:    true,
			RefreshedAt: uc.cache.Now(),
		}
	}

	view := models.ScreenerView{Report: rep, RefreshedAt: uc.cache.Now()}
	if len(rep.Candidates) == 0 {
		view.Message = MsgNoCandidates
	}
	vcache.Put(ctx, uc.cache, key, view)
	uc.metrics.RecordRefresh(models.ViewScreener, len(rep.Candidates), false)
	return &view
}
