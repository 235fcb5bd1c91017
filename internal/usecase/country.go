package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"PredBoard/internal/domain/models"
	domrepo "PredBoard/internal/domain/repository"
	vcache "PredBoard/internal/service/cache"
	viewmetrics "PredBoard/internal/service/metrics"
	applogger "PredBoard/pkg/logger"
	xutil "PredBoard/pkg/util"
)

// CountryUseCase is the universe filtered to one exchange suffix, with names
// from the asset catalogue.
type CountryUseCase struct {
	backend domrepo.PredictionBackend
	cache   *vcache.ViewCache
	signals *SignalsUseCase
	metrics domrepo.Metrics
	suffix  string
	l       *applogger.Logger
}

func NewCountryUseCase(b domrepo.PredictionBackend, c *vcache.ViewCache, s *SignalsUseCase, m domrepo.Metrics, suffix string, l *applogger.Logger) *CountryUseCase {
	return &CountryUseCase{backend: b, cache: c, signals: s, metrics: m, suffix: xutil.NormalizeTicker(suffix), l: l}
}

// Suffix is the configured default suffix.
func (uc *CountryUseCase) Suffix() string { return uc.suffix }

// Load returns signals whose ticker ends in suffix. An empty suffix uses the
// configured one.
func (uc *CountryUseCase) Load(ctx context.Context, suffix string, force bool) *models.CountryView {
	defer viewmetrics.ObserveSince(models.ViewUniverseCountry, time.Now())

	suffix = xutil.NormalizeTicker(suffix)
	if suffix == "" {
		suffix = uc.suffix
	}
	key := vcache.Key(models.ViewUniverseCountry, suffix)

	if !force {
		if v, ok := vcache.Fresh[models.CountryView](ctx, uc.cache, models.ViewUniverseCountry, key); ok {
			return &v
		}
	}

	sigs := uc.signals.Load(ctx, force)
	names := uc.names(ctx)

	rows := make([]models.CountryRow, 0)
	for _, r := range sigs.Rows {
		if !strings.HasSuffix(xutil.NormalizeTicker(r.Ticker), suffix) {
			continue
		}
		rows = append(rows, models.CountryRow{Signal: r.Signal, Name: names[xutil.NormalizeTicker(r.Ticker)]})
	}

	view := models.CountryView{
		Suffix:      suffix,
		Rows:        rows,
		Degraded:    sigs.Degraded,
		RefreshedAt: uc.cache.Now(),
	}
	if len(rows) == 0 {
		view.Message = fmt.Sprintf("No data for %s", suffix)
	}
	if !sigs.Degraded {
		vcache.Put(ctx, uc.cache, key, view)
	}
	uc.metrics.RecordRefresh(models.ViewUniverseCountry, len(rows), view.Degraded)
	return &view
}

// names maps ticker to display name. A failed catalogue fetch leaves names
// blank.
func (uc *CountryUseCase) names(ctx context.Context) map[string]string {
	assets, ok := uc.backend.Assets(ctx)
	if !ok {
		uc.l.Warn("asset catalogue unavailable, names omitted")
		return map[string]string{}
	}
	out := make(map[string]string, len(assets))
	for _, a := range assets {
		if a.Name != "" {
			out[xutil.NormalizeTicker(a.Ticker)] = a.Name
		}
	}
	return out
}
