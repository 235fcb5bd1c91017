package usecase

import (
	"context"
	"time"

	"PredBoard/internal/domain/models"
	domrepo "PredBoard/internal/domain/repository"
	vcache "PredBoard/internal/service/cache"
	applogger "PredBoard/pkg/logger"
)

// ViewInvalidator drops per-session loaded state for the named views.
type ViewInvalidator interface {
	InvalidateViews(views ...string)
}

// Refresher force-reloads the universe and signals on a fixed interval and
// announces each rebuild.
type Refresher struct {
	universe  *UniverseUseCase
	signals   *SignalsUseCase
	cache     *vcache.ViewCache
	publisher domrepo.EventPublisher
	sessions  ViewInvalidator
	interval  time.Duration
	now       func() time.Time
	l         *applogger.Logger
}

func NewRefresher(u *UniverseUseCase, s *SignalsUseCase, c *vcache.ViewCache, p domrepo.EventPublisher, inv ViewInvalidator, interval time.Duration, l *applogger.Logger) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Refresher{universe: u, signals: s, cache: c, publisher: p, sessions: inv, interval: interval, now: c.Now, l: l}
}

// Run ticks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	r.l.Info("refresher started", applogger.Duration("interval_ms", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.l.Info("refresher stopped")
			return
		case <-t.C:
			r.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce rebuilds both views, invalidates session state and publishes
// one event per view. Publish failures are logged.
func (r *Refresher) RefreshOnce(ctx context.Context) []models.RefreshEvent {
	u := r.universe.Load(ctx, true)
	s := r.signals.Load(ctx, true)
	// Derived from signals.
	r.cache.Invalidate(ctx, models.ViewUniverseCountry)

	if r.sessions != nil {
		r.sessions.InvalidateViews(models.ViewUniverse, models.ViewSignals, models.ViewAnalysis, models.ViewUniverseCountry)
	}

	at := r.now().UTC()
	events := []models.RefreshEvent{
		{View: models.ViewUniverse, Count: u.Count, Degraded: u.Degraded, At: at},
		{View: models.ViewSignals, Count: s.Count, Degraded: s.Degraded, At: at},
	}
	for _, ev := range events {
		if r.publisher == nil {
			break
		}
		if err := r.publisher.PublishRefresh(ctx, ev); err != nil {
			r.l.Warn("publish refresh event failed", applogger.String("view", ev.View), applogger.Error(err))
		}
	}
	r.l.Debug("views refreshed",
		applogger.Int("universe", u.Count),
		applogger.Int("signals", s.Count),
		applogger.Bool("degraded", u.Degraded || s.Degraded))
	return events
}
