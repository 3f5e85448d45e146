package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the notifier's Prometheus collectors. Each instance owns its registry
// so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	DispatchOutcomes   *prometheus.CounterVec
	PushSendDuration   *prometheus.HistogramVec
	AuditWriteFailures *prometheus.CounterVec
	DuplicateTriggers  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DispatchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifier",
			Name:      "dispatch_outcomes_total",
			Help:      "Order update events by terminal dispatch outcome.",
		}, []string{"outcome"}),
		PushSendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "notifier",
			Name:      "push_send_duration_seconds",
			Help:      "Duration of push delivery client calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"result"}),
		AuditWriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifier",
			Name:      "audit_write_failures_total",
			Help:      "Delivery records that could not be written to the audit store.",
		}, []string{"type"}),
		DuplicateTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifier",
			Name:      "duplicate_triggers_total",
			Help:      "Redelivered triggers skipped by the inbox.",
		}, []string{"source"}),
	}
	m.registry.MustRegister(
		m.DispatchOutcomes,
		m.PushSendDuration,
		m.AuditWriteFailures,
		m.DuplicateTriggers,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
