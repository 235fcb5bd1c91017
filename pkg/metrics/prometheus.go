package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predboard_backend_requests_total",
			Help: "Requests to the prediction backend by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)
	backendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "predboard_backend_request_seconds",
			Help:    "Prediction backend request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predboard_view_cache_lookups_total",
			Help: "View cache lookups by view and outcome",
		},
		[]string{"view", "outcome"},
	)
	refreshRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "predboard_view_rows",
			Help: "Rows in the last built view",
		},
		[]string{"view"},
	)
	degraded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "predboard_view_degraded",
			Help: "1 when the last build of a view had backend failures",
		},
		[]string{"view"},
	)
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predboard_errors_total",
			Help: "Total number of errors encountered",
		},
		[]string{"type"},
	)
	latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "predboard_operation_duration_seconds",
			Help:    "Duration of operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	regOnce sync.Once
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct{}

// New registers the collectors on first use and returns a recorder.
func New() *Recorder {
	regOnce.Do(func() {
		prometheus.MustRegister(backendRequests, backendLatency, cacheLookups, refreshRows, degraded, errorsTotal, latency)
	})
	return &Recorder{}
}

// RecordBackendRequest records one backend call. endpoint is the route template.
func (r *Recorder) RecordBackendRequest(endpoint, result string, seconds float64) {
	backendRequests.WithLabelValues(endpoint, result).Inc()
	backendLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordCache records a view cache hit or miss.
func (r *Recorder) RecordCache(view string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheLookups.WithLabelValues(view, outcome).Inc()
}

// RecordRefresh records the outcome of a view build.
func (r *Recorder) RecordRefresh(view string, rows int, isDegraded bool) {
	refreshRows.WithLabelValues(view).Set(float64(rows))
	v := 0.0
	if isDegraded {
		v = 1
	}
	degraded.WithLabelValues(view).Set(v)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	latency.WithLabelValues(op).Observe(seconds)
}
