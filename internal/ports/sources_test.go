package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-langrank/internal/domain"
)

// mockPopularitySource implements PopularitySource.
type mockPopularitySource struct {
	name    string
	samples []domain.RawSample
}

func (m *mockPopularitySource) Name() string { return m.name }

func (m *mockPopularitySource) Fetch(ctx context.Context) ([]domain.RawSample, error) {
	return m.samples, nil
}

// mockBenchmarkSource implements BenchmarkSource.
type mockBenchmarkSource struct {
	timings []domain.BenchmarkTiming
	raw     []byte
}

func (m *mockBenchmarkSource) Name() string { return "benchmarks" }

func (m *mockBenchmarkSource) Fetch(ctx context.Context) ([]domain.BenchmarkTiming, []byte, error) {
	return m.timings, m.raw, nil
}

// mockThroughputSource implements ThroughputSource.
type mockThroughputSource struct {
	survey domain.ThroughputSurvey
}

func (m *mockThroughputSource) Name() string { return "techempower" }

func (m *mockThroughputSource) Fetch(ctx context.Context) (domain.ThroughputSurvey, error) {
	return m.survey, nil
}

// mockFetcher implements Fetcher.
type mockFetcher struct{ body []byte }

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return m.body, nil
}

// mockMetricsCollector implements MetricsCollector.
type mockMetricsCollector struct {
	latencies  []time.Duration
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (m *mockMetricsCollector) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	m.latencies = append(m.latencies, duration)
}

func (m *mockMetricsCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	m.counters[metric] += value
}

func (m *mockMetricsCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	m.gauges[metric] = value
}

func (m *mockMetricsCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	m.histograms[metric] = append(m.histograms[metric], value)
}

// TestInterfaces_Implementation verifies the port contracts can be satisfied
// by plain structs and behave as data carriers.
func TestInterfaces_Implementation(t *testing.T) {
	var _ PopularitySource = (*mockPopularitySource)(nil)
	var _ BenchmarkSource = (*mockBenchmarkSource)(nil)
	var _ ThroughputSource = (*mockThroughputSource)(nil)
	var _ Fetcher = (*mockFetcher)(nil)
	var _ MetricsCollector = (*mockMetricsCollector)(nil)

	ctx := context.Background()

	popularity := &mockPopularitySource{
		name:    "tiobe",
		samples: []domain.RawSample{{Label: "Python", Share: 15.0}},
	}
	samples, err := popularity.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tiobe", popularity.Name())
	require.Len(t, samples, 1)
	assert.Equal(t, "Python", samples[0].Label)

	bench := &mockBenchmarkSource{
		timings: []domain.BenchmarkTiming{{Lang: "go", Task: "nbody", Elapsed: 1.5}},
		raw:     []byte("lang,name,status,elapsed(s)\n"),
	}
	timings, raw, err := bench.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, timings, 1)
	assert.NotEmpty(t, raw)

	throughput := &mockThroughputSource{
		survey: domain.ThroughputSurvey{
			FrameworkLanguages: map[string]string{"gin": "Go"},
		},
	}
	survey, err := throughput.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Go", survey.FrameworkLanguages["gin"])
}

// TestMetricsCollector_Usage verifies the collector contract covers the four
// metric families the pipeline emits.
func TestMetricsCollector_Usage(t *testing.T) {
	collector := newMockMetricsCollector()

	collector.RecordLatency("fetch", 120*time.Millisecond, map[string]string{"source": "tiobe"})
	collector.RecordCounter("fetch_attempts_total", 1, map[string]string{"source": "tiobe"})
	collector.RecordCounter("fetch_attempts_total", 1, map[string]string{"source": "pypl"})
	collector.RecordGauge("source_languages", 50, map[string]string{"source": "tiobe"})
	collector.RecordHistogram("payload_bytes", 2048, map[string]string{"source": "tiobe"})

	assert.Len(t, collector.latencies, 1)
	assert.InDelta(t, 2.0, collector.counters["fetch_attempts_total"], 1e-12)
	assert.InDelta(t, 50.0, collector.gauges["source_languages"], 1e-12)
	assert.Len(t, collector.histograms["payload_bytes"], 1)
}
