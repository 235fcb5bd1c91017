package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"PredBoard/internal/dashboard"
	"PredBoard/internal/domain/repository"
	"PredBoard/internal/handler/ws"
	"PredBoard/internal/service/ratelimit"
	"PredBoard/internal/usecase"
	"PredBoard/pkg/config"
	xhttp "PredBoard/pkg/http"
	applogger "PredBoard/pkg/logger"
)

const sweepEvery = time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	l         *applogger.Logger
	http      *xhttp.Server
	hub       *ws.Hub
	refresher *usecase.Refresher
	sessions  *dashboard.Sessions
	guard     *ratelimit.ForceGuard
	publisher repository.EventPublisher

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	hub *ws.Hub,
	refresher *usecase.Refresher,
	sessions *dashboard.Sessions,
	guard *ratelimit.ForceGuard,
	publisher repository.EventPublisher,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		http:      srv,
		hub:       hub,
		refresher: refresher,
		sessions:  sessions,
		guard:     guard,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.l.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Start launches the background loops and the HTTP server without blocking.
func (a *App) Start(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	a.cancel = cancel

	a.goRun(func() { a.hub.Run(ctx) })
	a.goRun(func() { a.sessions.RunSweeper(ctx, sweepEvery) })
	a.goRun(func() { a.sweepLimiter(ctx) })

	if a.cfg.Refresh.Disabled {
		a.l.Info("background refresh disabled")
	} else {
		a.goRun(func() { a.refresher.Run(ctx) })
	}

	if err := a.http.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		cancel()
		return err
	}
	a.l.Info("dashboard started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("backend", a.cfg.Backend.BaseURL),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)
	return nil
}

// Shutdown stops HTTP first, then the loops, then closes publishers.
func (a *App) Shutdown(ctx context.Context) error {
	a.l.Info("shutting down...")

	var errs []error
	if err := a.http.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	if a.cancel != nil {
		a.cancel()
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.l.Warn("background loops did not stop in time")
		errs = append(errs, ctx.Err())
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) goRun(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

func (a *App) sweepLimiter(ctx context.Context) {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.guard.Sweep(a.cfg.Dashboard.SessionIdle); n > 0 {
				a.l.Debug("refresh buckets swept", applogger.Int("removed", n))
			}
		}
	}
}
