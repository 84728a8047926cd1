// Package middleware provides cross-cutting concerns for the ranking pipeline.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-langrank/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It provides real-time monitoring of source fetches, pipeline stage
// durations, and per-run state for the ranking pipeline.
type PrometheusMetrics struct {
	fetchRequests    *prometheus.CounterVec
	fetchLatency     *prometheus.HistogramVec
	fetchPayloadSize *prometheus.HistogramVec
	stageLatency     *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		// Transport metrics emitted by the fetch middleware.
		fetchRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langrank_fetch_requests_total",
				Help: "Total number of fetch attempts against the metric sources.",
			},
			[]string{"host", "status"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langrank_fetch_duration_seconds",
				Help:    "Wall-clock duration of source fetches.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host", "status"},
		),
		fetchPayloadSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langrank_fetch_payload_bytes",
				Help:    "Size of downloaded source payloads.",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
			[]string{"host", "status"},
		),

		// Pipeline metrics for comprehensive observability.
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langrank_stage_duration_seconds",
				Help:    "Execution time of pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "source"},
		),
		operationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langrank_operations_total",
				Help: "Total number of operations performed by the pipeline.",
			},
			[]string{"operation", "status", "source"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "langrank_system_state",
				Help: "Current pipeline state values, such as per-source language counts.",
			},
			[]string{"metric", "source"},
		),
	}
}

// labelOr returns the named label value, or fallback when it is absent or
// empty.
func labelOr(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}

// RecordLatency implements the MetricsCollector interface by recording
// stage execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	source := labelOr(labels, "source", "unknown")
	pm.stageLatency.WithLabelValues(operation, source).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "fetch_requests_total":
		pm.fetchRequests.WithLabelValues(
			labelOr(labels, "host", "unknown"),
			labelOr(labels, "status", "success"),
		).Add(value)
	default:
		pm.operationCounter.WithLabelValues(
			metric,
			labelOr(labels, "status", "success"),
			labelOr(labels, "source", "unknown"),
		).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	source := labelOr(labels, "source", "unknown")
	pm.systemGauges.WithLabelValues(metric, source).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in the histogram matching the metric name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "fetch_latency_seconds":
		pm.fetchLatency.WithLabelValues(
			labelOr(labels, "host", "unknown"),
			labelOr(labels, "status", "success"),
		).Observe(value)
	case "fetch_payload_bytes":
		pm.fetchPayloadSize.WithLabelValues(
			labelOr(labels, "host", "unknown"),
			labelOr(labels, "status", "success"),
		).Observe(value)
	default:
		pm.stageLatency.WithLabelValues(
			metric,
			labelOr(labels, "source", "unknown"),
		).Observe(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
