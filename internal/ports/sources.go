// Package ports defines the interfaces between the ranking pipeline and the
// outside world. The application layer depends only on these contracts;
// concrete network clients, parsers, and metric backends live under
// infrastructure and are injected at startup.
package ports

import (
	"context"

	"github.com/ahrav/go-langrank/internal/domain"
)

// PopularitySource produces one popularity metric's raw samples, typically by
// fetching and parsing a public index page. Implementations must be safe for
// a single Fetch call per pipeline run; they are not required to be reusable
// across runs.
type PopularitySource interface {
	// Name returns the short identifier used in logs, metrics, and the run
	// summary, such as "tiobe" or "pypl".
	Name() string

	// Fetch retrieves the source's current table and returns its rows with
	// labels still in the source's own spelling. Row order is the source's
	// display order and carries no meaning downstream.
	Fetch(ctx context.Context) ([]domain.RawSample, error)
}

// BenchmarkSource produces runtime timing rows for the speed metric.
type BenchmarkSource interface {
	// Name returns the short identifier used in logs and metrics.
	Name() string

	// Fetch retrieves and parses the timing dataset. The raw payload is
	// returned alongside the parsed rows so callers can archive the exact
	// bytes the scores were derived from.
	Fetch(ctx context.Context) ([]domain.BenchmarkTiming, []byte, error)
}

// ThroughputSource produces the web-framework throughput survey used for the
// second performance signal.
type ThroughputSource interface {
	// Name returns the short identifier used in logs and metrics.
	Name() string

	// Fetch locates the latest completed run and returns its per-framework
	// raw results together with the framework-to-language mapping.
	Fetch(ctx context.Context) (domain.ThroughputSurvey, error)
}
