package transport

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	calls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog_bootstrapper",
			Subsystem: "transport",
			Name:      "calls_total",
			Help:      "Total GraphQL calls by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog_bootstrapper",
			Subsystem: "transport",
			Name:      "call_duration_seconds",
			Help:      "GraphQL call duration in seconds, retries included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	retries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog_bootstrapper",
			Subsystem: "transport",
			Name:      "retries_total",
			Help:      "Retried GraphQL call attempts.",
		},
		[]string{"endpoint"},
	)
	inFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalog_bootstrapper",
			Subsystem: "transport",
			Name:      "in_flight",
			Help:      "GraphQL calls currently holding a worker slot.",
		},
		[]string{"endpoint"},
	)
)

// RegisterMetrics registers the transport collectors with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(calls, callDuration, retries, inFlight)
	})
}

func observeCall(endpoint string, duration time.Duration, err error, resp *Response) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "transport_error"
	case resp != nil && len(resp.Errors) > 0:
		outcome = "remote_error"
	}
	calls.WithLabelValues(endpoint, outcome).Inc()
	callDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
