package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's worker metrics
type Metrics struct {
	ReconcileRuns     prometheus.Counter
	PaymentsCreated   prometheus.Counter
	ReconcileFailures prometheus.Counter
	ReconcileLatency  prometheus.Histogram

	RemindersDispatched prometheus.Counter
	ReminderFailures    prometheus.Counter
	WorklistSize        prometheus.Gauge
}

// NewMetrics creates and registers all worker metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		ReconcileRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconcile_runs_total",
			Help:      "Total number of billing reconciliation passes",
		}),
		PaymentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "payments_created_total",
			Help:      "Total number of payments created by reconciliation",
		}),
		ReconcileFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconcile_failures_total",
			Help:      "Total number of failed reconciliation passes",
		}),
		ReconcileLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent on a reconciliation pass",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		RemindersDispatched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reminders_dispatched_total",
			Help:      "Total number of due reminders published and marked sent",
		}),
		ReminderFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reminder_failures_total",
			Help:      "Total number of reminder dispatch failures",
		}),
		WorklistSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reminder_worklist_size",
			Help:      "Work items computed on the most recent reminder pass",
		}),
	}
}
