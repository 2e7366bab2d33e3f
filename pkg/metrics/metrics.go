// Package metrics provides Prometheus metrics for memory engine operations.
package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector provides Prometheus metrics collection for engine operations.
type MetricsCollector struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	gateDecisions     *prometheus.CounterVec
	conflictsTotal    *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	notesStored       *prometheus.GaugeVec
	registry          *prometheus.Registry
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	operationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memorank_operations_total",
			Help: "Total number of memory engine operations by type and status",
		},
		[]string{"operation", "status"},
	)

	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memorank_operation_duration_seconds",
			Help:    "Duration of memory engine operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5},
		},
		[]string{"operation"},
	)

	gateDecisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memorank_gate_decisions_total",
			Help: "Write gate decisions by reason code and outcome",
		},
		[]string{"reason", "accepted"},
	)

	conflictsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memorank_conflicts_total",
			Help: "Conflict lifecycle events by action (detected, keep, drop)",
		},
		[]string{"action"},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memorank_errors_total",
			Help: "Total number of errors by operation and error type",
		},
		[]string{"operation", "error_type"},
	)

	notesStored := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "memorank_notes_stored",
			Help: "Current count of stored notes by tier",
		},
		[]string{"tier"},
	)

	registry.MustRegister(operationsTotal)
	registry.MustRegister(operationDuration)
	registry.MustRegister(gateDecisions)
	registry.MustRegister(conflictsTotal)
	registry.MustRegister(errorsTotal)
	registry.MustRegister(notesStored)

	return &MetricsCollector{
		operationsTotal:   operationsTotal,
		operationDuration: operationDuration,
		gateDecisions:     gateDecisions,
		conflictsTotal:    conflictsTotal,
		errorsTotal:       errorsTotal,
		notesStored:       notesStored,
		registry:          registry,
	}
}

// RecordOperation records the completion of an operation.
func (m *MetricsCollector) RecordOperation(ctx context.Context, operation string, status string, durationMs int64) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(float64(durationMs) / 1000.0)
}

// RecordGateDecision records a write gate decision.
func (m *MetricsCollector) RecordGateDecision(ctx context.Context, reason string, accepted bool) {
	m.gateDecisions.WithLabelValues(reason, strconv.FormatBool(accepted)).Inc()
}

// RecordConflict records a conflict lifecycle event.
func (m *MetricsCollector) RecordConflict(ctx context.Context, action string) {
	m.conflictsTotal.WithLabelValues(action).Inc()
}

// RecordError records an error occurrence.
func (m *MetricsCollector) RecordError(ctx context.Context, operation string, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// SetNotesStored sets the current stored-note count for a tier.
func (m *MetricsCollector) SetNotesStored(ctx context.Context, tier string, count int64) {
	m.notesStored.WithLabelValues(tier).Set(float64(count))
}

// Registry returns the Prometheus registry for HTTP exposure.
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}
