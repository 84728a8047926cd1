package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/ahrav/go-langrank/internal/ports"
)

// metricsFetcher implements request metrics collection.
// This provides observability into fetch patterns, latency, payload sizes,
// and error rates for operational monitoring.
type metricsFetcher struct {
	next      ports.Fetcher
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that collects fetch metrics.
// This enables monitoring of source availability and download performance.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next ports.Fetcher) ports.Fetcher {
		return &metricsFetcher{
			next:      next,
			collector: collector,
		}
	}
}

// Fetch executes the request while collecting detailed metrics.
// This tracks fetch latency, outcome, and payload size per host.
func (m *metricsFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	body, err := m.next.Fetch(ctx, url)

	labels := map[string]string{
		"host":   hostOf(url),
		"status": "success",
	}

	if err != nil {
		switch {
		case errors.Is(err, ports.ErrRateLimited):
			labels["status"] = "rate_limited"
		case errors.Is(err, ports.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
			labels["status"] = "timeout"
		default:
			labels["status"] = "error"
		}
	}

	if m.collector != nil {
		m.collector.RecordHistogram("fetch_latency_seconds", time.Since(start).Seconds(), labels)
		m.collector.RecordCounter("fetch_requests_total", 1, labels)

		if err == nil {
			m.collector.RecordHistogram("fetch_payload_bytes", float64(len(body)), labels)
		}
	}

	return body, err
}
