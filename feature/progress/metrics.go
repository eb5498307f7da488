package progress

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	runsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "catalog_bootstrapper",
		Subsystem: "runs",
		Name:      "active",
		Help:      "Bootstrap runs currently executing.",
	})
	runsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog_bootstrapper",
			Subsystem: "runs",
			Name:      "finished_total",
			Help:      "Finished bootstrap runs by status.",
		},
		[]string{"status"},
	)
)

// RegisterMetrics registers the run collectors with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(runsActive, runsFinished)
	})
}
