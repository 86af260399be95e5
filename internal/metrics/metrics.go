// Package metrics holds the Prometheus collectors of a node.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mneme"

// Metrics is a per-node set of collectors on its own registry, so several
// nodes can live in one process (tests) without clashing.
type Metrics struct {
	registry *prometheus.Registry

	operationsApplied *prometheus.CounterVec
	viewResets        *prometheus.CounterVec
	pairingRequests   *prometheus.CounterVec
	swarmConnections  prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operationsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operations_applied_total",
				Help:      "Total number of operations applied to a materialized view.",
			},
			[]string{"namespace", "type"},
		),
		viewResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "view_resets_total",
				Help:      "Total number of full view replays caused by log reordering.",
			},
			[]string{"namespace"},
		),
		pairingRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pairing",
				Name:      "requests_total",
				Help:      "Total number of writable requests received, by outcome.",
			},
			[]string{"outcome"},
		),
		swarmConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "swarm",
				Name:      "connections",
				Help:      "Current number of live peer connections.",
			},
		),
	}

	m.registry.MustRegister(
		m.operationsApplied,
		m.viewResets,
		m.pairingRequests,
		m.swarmConnections,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

// OperationApplied counts one operation applied to the view of ns
func (m *Metrics) OperationApplied(ns, opType string) {
	if m == nil {
		return
	}
	m.operationsApplied.WithLabelValues(ns, opType).Inc()
}

// ViewReset counts a full replay of the view of ns
func (m *Metrics) ViewReset(ns string) {
	if m == nil {
		return
	}
	m.viewResets.WithLabelValues(ns).Inc()
}

// PairingRequest counts a writable request by its outcome
func (m *Metrics) PairingRequest(outcome string) {
	if m == nil {
		return
	}
	m.pairingRequests.WithLabelValues(outcome).Inc()
}

// SetConnections sets the live connection gauge
func (m *Metrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.swarmConnections.Set(float64(n))
}
