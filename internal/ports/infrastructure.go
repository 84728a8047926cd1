package ports

import (
	"context"
	"time"
)

// Fetcher retrieves a remote document. Implementations handle transport
// details like timeouts, retries, and rate limiting; callers see only the
// final payload or the final error.
type Fetcher interface {
	// Fetch downloads the document at url and returns its body.
	// A non-2xx response is an error, not a payload.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like fetch attempts, parse
	// failures, retries, etc.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like candidate counts or the
	// number of languages each source reported.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like payload sizes and
	// fetch durations.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
