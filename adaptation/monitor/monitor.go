package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RunStartedCount   prometheus.Counter
	RunCompletedCount prometheus.Counter
	RunFailedCount    prometheus.Counter
	RunQueuedCount    prometheus.Counter
)

// InitPrometheus initializes Prometheus metrics with a given server name.
func InitPrometheus(serverName string) {
	if serverName == "" {
		panic("server name must be provided")
	}

	RunStartedCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "adaptation_run_started_total",
			Help:        "Total number of adaptation runs started",
			ConstLabels: prometheus.Labels{"server": serverName},
		})

	RunCompletedCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "adaptation_run_completed_total",
			Help:        "Total number of adaptation runs completed",
			ConstLabels: prometheus.Labels{"server": serverName},
		})

	RunFailedCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "adaptation_run_failed_total",
			Help:        "Total number of adaptation runs that failed",
			ConstLabels: prometheus.Labels{"server": serverName},
		})

	RunQueuedCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "adaptation_run_queued_total",
			Help:        "Total number of adaptation runs accepted into the queue",
			ConstLabels: prometheus.Labels{"server": serverName},
		})

	prometheus.MustRegister(
		RunStartedCount,
		RunCompletedCount,
		RunFailedCount,
		RunQueuedCount,
	)
}
