// Package backend is the client for the remote prediction service.
//
// Every call fails soft: network errors, non-2xx statuses, undecodable bodies,
// an open circuit and rate-limit cancellation all log a warning and return
// the zero value with ok=false. Callers never see an error.
package backend

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"PredBoard/internal/domain/models"
	"PredBoard/internal/domain/repository"
	"PredBoard/internal/normalize"
	xhttp "PredBoard/pkg/http"
	applogger "PredBoard/pkg/logger"
)

// Endpoint labels, used in logs and metrics.
const (
	EndpointTickers  = "/dashboard/tickers"
	EndpointLatest   = "/dashboard/latest/{ticker}"
	EndpointSummary  = "/dashboard/predictions/summary"
	EndpointSignals  = "/signals"
	EndpointAssets   = "/assets"
	EndpointScreener = "/dashboard/screener"
)

var defaultHeaders = map[string]string{
	"Accept":        "application/json",
	"Cache-Control": "no-cache",
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int

	BreakerFailures uint32
	BreakerTimeout  time.Duration
	BreakerInterval time.Duration
}

// Client implements repository.PredictionBackend over HTTP.
type Client struct {
	baseURL string
	http    *xhttp.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics repository.Metrics
	logger  *applogger.Logger
}

var _ repository.PredictionBackend = (*Client)(nil)

// New builds a Client. A zero RPS disables rate limiting; zero breaker
// failures fall back to 5.
func New(cfg Config, m repository.Metrics, l *applogger.Logger, opts ...xhttp.ClientOption) *Client {
	if m == nil {
		m = repository.NopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	if cfg.Timeout > 0 {
		opts = append([]xhttp.ClientOption{xhttp.WithTimeout(cfg.Timeout)}, opts...)
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    xhttp.NewClient(opts...),
		limiter: rate.NewLimiter(limit, burst),
		metrics: m,
		logger:  l,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "prediction-backend",
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A 4xx means the backend answered; only outages should trip.
		IsSuccessful: func(err error) bool {
			var se *xhttp.StatusError
			if errors.As(err, &se) {
				return se.Code < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("circuit breaker state change",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()))
		},
	})
	return c
}

// fetch GETs path and decodes the body into untyped JSON. A JSON null body
// counts as a failure.
func (c *Client) fetch(ctx context.Context, endpoint, path string, query url.Values) (any, bool) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		c.fail(endpoint, path, "cancelled", start, err)
		return nil, false
	}

	out, err := c.breaker.Execute(func() (any, error) {
		var raw any
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         c.baseURL + path,
			Headers:     defaultHeaders,
			QueryParams: query,
		}, &raw)
		return raw, err
	})
	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		c.fail(endpoint, path, result, start, err)
		return nil, false
	}
	if out == nil {
		c.fail(endpoint, path, "empty", start, errors.New("null body"))
		return nil, false
	}

	c.metrics.RecordBackendRequest(endpoint, "ok", time.Since(start).Seconds())
	return out, true
}

func (c *Client) fail(endpoint, path, result string, start time.Time, err error) {
	c.metrics.RecordBackendRequest(endpoint, result, time.Since(start).Seconds())
	c.metrics.RecordError("backend_" + result)
	c.logger.Warn("backend request failed",
		applogger.String("endpoint", endpoint),
		applogger.String("path", path),
		applogger.String("result", result),
		applogger.Error(err))
}

func (c *Client) Tickers(ctx context.Context) ([]models.Ticker, bool) {
	raw, ok := c.fetch(ctx, EndpointTickers, "/dashboard/tickers", nil)
	if !ok {
		return nil, false
	}
	return normalize.ExtractTickers(raw), true
}

// Latest returns ok=true whenever the backend answered, even if the payload
// had none of the known fields; see Snapshot.Empty.
func (c *Client) Latest(ctx context.Context, ticker string) (models.Snapshot, bool) {
	raw, ok := c.fetch(ctx, EndpointLatest, "/dashboard/latest/"+url.PathEscape(ticker), nil)
	if !ok {
		return models.Snapshot{Ticker: ticker}, false
	}
	return normalize.ExtractSnapshot(ticker, raw), true
}

func (c *Client) PredictionSummary(ctx context.Context, ticker string) ([]models.PredictionPoint, bool) {
	raw, ok := c.fetch(ctx, EndpointSummary, "/dashboard/predictions/summary", url.Values{"ticker": {ticker}})
	if !ok {
		return nil, false
	}
	return normalize.ExtractSeries(raw), true
}

func (c *Client) Signals(ctx context.Context, minConfidence float64) ([]models.Signal, bool) {
	q := url.Values{"min_confidence": {strconv.FormatFloat(minConfidence, 'f', -1, 64)}}
	raw, ok := c.fetch(ctx, EndpointSignals, "/signals", q)
	if !ok {
		return nil, false
	}
	return normalize.ExtractSignals(raw), true
}

func (c *Client) Assets(ctx context.Context) ([]models.Asset, bool) {
	raw, ok := c.fetch(ctx, EndpointAssets, "/assets", nil)
	if !ok {
		return nil, false
	}
	return normalize.ExtractAssets(raw), true
}

func (c *Client) Screener(ctx context.Context) (models.ScreenerReport, bool) {
	raw, ok := c.fetch(ctx, EndpointScreener, "/dashboard/screener", nil)
	if !ok {
		return models.ScreenerReport{}, false
	}
	return normalize.ExtractScreener(raw), true
}

// State reports the circuit breaker state, for health output.
func (c *Client) State() string {
	return c.breaker.State().String()
}
