package sources

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ahrav/go-langrank/internal/domain"
	"github.com/ahrav/go-langrank/internal/ports"
)

var _ ports.BenchmarkSource = (*BenchmarksSource)(nil)

// benchmarksSourceName identifies this source in errors and metrics.
const benchmarksSourceName = "benchmarks"

// DefaultBenchmarksURL is the Benchmarks Game timing dataset, a CSV with
// one row per (runtime, task, attempt).
const DefaultBenchmarksURL = "https://salsa.debian.org/benchmarksgame-team/benchmarksgame/-/raw/master/public/data/alldata.csv"

// Columns the dataset must carry. Their absence means the upstream schema
// changed and the whole download is unusable.
const (
	benchColLang    = "lang"
	benchColName    = "name"
	benchColStatus  = "status"
	benchColElapsed = "elapsed-time(s)"
)

// BenchmarksConfig defines the configuration parameters for the benchmark
// dataset download.
type BenchmarksConfig struct {
	// URL is the CSV dataset location.
	URL string `yaml:"url" json:"url" validate:"required,url"`
}

// DefaultBenchmarksConfig returns a configuration pointing at the public
// dataset.
func DefaultBenchmarksConfig() BenchmarksConfig {
	return BenchmarksConfig{URL: DefaultBenchmarksURL}
}

// BenchmarksSource downloads the Benchmarks Game timing CSV. Rows whose
// key fields do not parse are dropped here; semantic filtering (failed
// runs, non-finite timings, runtime aliasing) belongs to the scorer.
type BenchmarksSource struct {
	config  BenchmarksConfig
	fetcher ports.Fetcher
}

// NewBenchmarksSource validates the configuration and returns a benchmark
// source that downloads through fetcher.
func NewBenchmarksSource(config BenchmarksConfig, fetcher ports.Fetcher) (*BenchmarksSource, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid benchmarks config: %w", err)
	}
	if fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}
	return &BenchmarksSource{config: config, fetcher: fetcher}, nil
}

// Name implements ports.BenchmarkSource.
func (s *BenchmarksSource) Name() string { return benchmarksSourceName }

// Fetch downloads and decodes the timing dataset. The raw payload is
// returned alongside the parsed rows so callers can archive the exact
// bytes the run scored.
func (s *BenchmarksSource) Fetch(ctx context.Context) ([]domain.BenchmarkTiming, []byte, error) {
	body, err := s.fetcher.Fetch(ctx, s.config.URL)
	if err != nil {
		return nil, nil, ports.NewSourceError(benchmarksSourceName, "fetch", err)
	}

	timings, err := parseBenchmarkCSV(body)
	if err != nil {
		return nil, nil, ports.NewSourceError(benchmarksSourceName, "parse", err)
	}
	return timings, body, nil
}

func parseBenchmarkCSV(data []byte) ([]domain.BenchmarkTiming, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("missing CSV headers in benchmark data")
	}

	idxLang, err := columnPosition(header, benchColLang)
	if err != nil {
		return nil, err
	}
	idxName, err := columnPosition(header, benchColName)
	if err != nil {
		return nil, err
	}
	idxStatus, err := columnPosition(header, benchColStatus)
	if err != nil {
		return nil, err
	}
	idxElapsed, err := columnPosition(header, benchColElapsed)
	if err != nil {
		return nil, err
	}

	var timings []domain.BenchmarkTiming
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read benchmark record: %w", err)
		}

		status, err := strconv.ParseInt(strings.TrimSpace(fieldAt(record, idxStatus)), 10, 64)
		if err != nil {
			continue
		}
		lang := strings.TrimSpace(fieldAt(record, idxLang))
		task := strings.TrimSpace(fieldAt(record, idxName))
		elapsedText := strings.TrimSpace(fieldAt(record, idxElapsed))
		if lang == "" || task == "" || elapsedText == "" {
			continue
		}
		elapsed, err := strconv.ParseFloat(elapsedText, 64)
		if err != nil {
			continue
		}

		timings = append(timings, domain.BenchmarkTiming{
			Lang:    lang,
			Task:    task,
			Status:  status,
			Elapsed: elapsed,
		})
	}
	return timings, nil
}

func columnPosition(header []string, name string) (int, error) {
	for i, column := range header {
		if column == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing '%s' column in benchmark data", name)
}

// fieldAt tolerates the dataset's ragged rows.
func fieldAt(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}
