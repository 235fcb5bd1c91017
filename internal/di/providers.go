package di

import (
	"fmt"

	"PredBoard/internal/dashboard"
	"PredBoard/internal/domain/repository"
	"PredBoard/internal/handler/api"
	"PredBoard/internal/handler/web"
	"PredBoard/internal/handler/ws"
	internalrepo "PredBoard/internal/repository"
	"PredBoard/internal/service/backend"
	vcache "PredBoard/internal/service/cache"
	"PredBoard/internal/service/ratelimit"
	"PredBoard/internal/usecase"
	pcache "PredBoard/pkg/cache"
	"PredBoard/pkg/config"
	xhttp "PredBoard/pkg/http"
	pkgkafka "PredBoard/pkg/kafka"
	applogger "PredBoard/pkg/logger"
	"PredBoard/pkg/metrics"
	"PredBoard/pkg/server"
)

// ProvideLogger builds the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("service", "predboard")), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache returns a memory cache, or memory in front of Redis when Redis
// is enabled.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (pcache.Service, func(), error) {
	rc := cfg.Cache.Redis
	if !rc.Enabled {
		mc := pcache.NewMemoryCache(pcache.WithMemoryMaxSize(cfg.Cache.MemoryMax))
		return mc, func() { _ = mc.Close() }, nil
	}

	redisCache, err := pcache.NewRedisCache(
		pcache.WithRedisHost(rc.Host),
		pcache.WithRedisPort(rc.Port),
		pcache.WithRedisPassword(rc.Password),
		pcache.WithRedisDB(rc.DB),
		pcache.WithRedisPrefix(rc.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	layered := pcache.NewLayeredCache(redisCache,
		pcache.WithLayeredMemorySize(cfg.Cache.MemoryMax),
	)
	l.Info("view cache backed by redis", applogger.String("host", rc.Host), applogger.Int("port", rc.Port))
	return layered, func() {
		if err := layered.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}, nil
}

// ProvideBackend creates the prediction backend client.
func ProvideBackend(cfg *config.Config, m repository.Metrics, l *applogger.Logger) repository.PredictionBackend {
	b := cfg.Backend
	return backend.New(backend.Config{
		BaseURL:         b.BaseURL,
		Timeout:         b.Timeout,
		RPS:             b.RPS,
		Burst:           b.Burst,
		BreakerFailures: b.Breaker.ConsecutiveFailures,
		BreakerTimeout:  b.Breaker.OpenTimeout,
		BreakerInterval: b.Breaker.Interval,
	}, m, l)
}

func ProvideViewCache(cfg *config.Config, store pcache.Service, m repository.Metrics, l *applogger.Logger) *vcache.ViewCache {
	return vcache.New(store, cfg.Cache.FreshTTL, cfg.Cache.Retention,
		vcache.WithMetrics(m),
		vcache.WithLogger(l),
	)
}

func ProvideUniverseUseCase(cfg *config.Config, b repository.PredictionBackend, c *vcache.ViewCache, m repository.Metrics, l *applogger.Logger) *usecase.UniverseUseCase {
	return usecase.NewUniverseUseCase(b, c, m, cfg.Backend.Concurrency, l)
}

func ProvideSignalsUseCase(cfg *config.Config, b repository.PredictionBackend, c *vcache.ViewCache, m repository.Metrics, l *applogger.Logger) *usecase.SignalsUseCase {
	return usecase.NewSignalsUseCase(b, c, m, cfg.Dashboard.MinConfidence, l)
}

func ProvideCountryUseCase(cfg *config.Config, b repository.PredictionBackend, c *vcache.ViewCache, s *usecase.SignalsUseCase, m repository.Metrics, l *applogger.Logger) *usecase.CountryUseCase {
	return usecase.NewCountryUseCase(b, c, s, m, cfg.Dashboard.CountrySuffix, l)
}

func ProvideTabStore(cfg *config.Config, store pcache.Service, l *applogger.Logger) *dashboard.TabStore {
	return dashboard.NewTabStore(store, cfg.Dashboard.SessionTTL, l)
}

// ProvideSessions registers per-session orchestrators over the controller.
func ProvideSessions(cfg *config.Config, ctrl *dashboard.Controller, store *dashboard.TabStore, l *applogger.Logger) (*dashboard.Sessions, error) {
	def, err := dashboard.ParseTab(cfg.Dashboard.DefaultTab)
	if err != nil {
		return nil, fmt.Errorf("default tab: %w", err)
	}
	return dashboard.NewSessions(ctrl, store, def, cfg.Dashboard.SessionIdle, l), nil
}

func ProvideForceGuard(cfg *config.Config) *ratelimit.ForceGuard {
	return ratelimit.NewForceGuard(ratelimit.New(), cfg.Dashboard.ForceBurst, cfg.Dashboard.ForceRefillRate)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithBatching(k.Producer.BatchSize, k.Producer.Linger),
		pkgkafka.WithWriteTimeout(k.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(k.Producer.MaxAttempts),
		pkgkafka.WithAsync(k.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher fans refresh events out to websocket clients and, when
// configured, Kafka.
func ProvidePublisher(cfg *config.Config, hub *ws.Hub, producer *pkgkafka.Producer) repository.EventPublisher {
	var kafkaPub repository.EventPublisher
	if producer != nil {
		kafkaPub = internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
	}
	return internalrepo.NewMultiPublisher(hub, kafkaPub)
}

func ProvideRefresher(
	cfg *config.Config,
	u *usecase.UniverseUseCase,
	s *usecase.SignalsUseCase,
	c *vcache.ViewCache,
	pub repository.EventPublisher,
	sessions *dashboard.Sessions,
	l *applogger.Logger,
) *usecase.Refresher {
	return usecase.NewRefresher(u, s, c, pub, sessions, cfg.Refresh.Interval, l)
}

func ProvideDashboardHandler(cfg *config.Config, l *applogger.Logger, ctrl *dashboard.Controller, sessions *dashboard.Sessions, guard *ratelimit.ForceGuard) *api.DashboardEchoHandler {
	return api.NewDashboardEchoHandler(l, ctrl, sessions, guard, cfg.Dashboard.SessionTTL)
}

func ProvidePageHandler(cfg *config.Config, sessions *dashboard.Sessions, guard *ratelimit.ForceGuard, l *applogger.Logger) *web.PageHandler {
	return web.NewPageHandler(sessions, guard, cfg.Dashboard.SessionTTL, l)
}

// ProvideHTTPServer registers the page, the JSON API and the websocket route.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	renderer *web.Renderer,
	page *web.PageHandler,
	dash *api.DashboardEchoHandler,
	hub *ws.Hub,
) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(xhttp.Handlers{page, dash, hub},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithTrustProxy(cfg.Server.TrustProxy),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithRenderer(renderer),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	hub *ws.Hub,
	refresher *usecase.Refresher,
	sessions *dashboard.Sessions,
	guard *ratelimit.ForceGuard,
	pub repository.EventPublisher,
) *server.App {
	return server.New(cfg, l, srv, hub, refresher, sessions, guard, pub)
}
