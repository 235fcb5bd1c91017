package repository

import (
	"context"

	"PredBoard/internal/domain/models"
)

// PredictionBackend is the remote prediction service. Every method fails soft:
// on any failure it returns the zero value and false, never an error.
type PredictionBackend interface {
	Tickers(ctx context.Context) ([]models.Ticker, bool)
	Latest(ctx context.Context, ticker string) (models.Snapshot, bool)
	PredictionSummary(ctx context.Context, ticker string) ([]models.PredictionPoint, bool)
	Signals(ctx context.Context, minConfidence float64) ([]models.Signal, bool)
	Assets(ctx context.Context) ([]models.Asset, bool)
	Screener(ctx context.Context) (models.ScreenerReport, bool)
}

// EventPublisher fans refresh notifications out to interested parties.
type EventPublisher interface {
	PublishRefresh(ctx context.Context, ev models.RefreshEvent) error
	Close() error
}

type Metrics interface {
	RecordBackendRequest(endpoint, result string, seconds float64)
	RecordCache(view string, hit bool)
	RecordRefresh(view string, rows int, degraded bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordBackendRequest(string, string, float64) {}
func (NopMetrics) RecordCache(string, bool)                     {}
func (NopMetrics) RecordRefresh(string, int, bool)              {}
func (NopMetrics) RecordError(string)                           {}
func (NopMetrics) RecordLatency(string, float64)                {}
