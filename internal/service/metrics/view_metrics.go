package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ViewLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "predboard",
			Subsystem: "view",
			Name:      "latency_seconds",
			Help:      "Latency of building a dashboard view",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	ViewErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predboard",
			Subsystem: "view",
			Name:      "errors_total",
			Help:      "Rejected or failed view requests",
		},
		[]string{"view"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ViewLatency, ViewErrors)
	})
}

// ObserveSince records the elapsed time for view.
func ObserveSince(view string, start time.Time) {
	ViewLatency.WithLabelValues(view).Observe(time.Since(start).Seconds())
}
