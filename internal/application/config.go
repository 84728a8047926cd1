// Package application wires the metric sources and the pure ranking core
// into a runnable pipeline: run configuration, concurrent fetch fan-out,
// and the ordered core stages that turn raw samples into a consensus
// ranking.
package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is the shared validator instance for configuration structs.
var validate = validator.New()

// Config is the root run configuration and the primary tuning surface for
// the ranker. Every field carries a default from DefaultConfig, so a run
// needs no configuration file at all; a YAML overlay adjusts only the
// fields it names.
type Config struct {
	// Sources overrides the endpoints the five metric sources fetch from.
	Sources SourceConfig `yaml:"sources"`
	// HTTP bounds the transport layer shared by every source.
	HTTP HTTPConfig `yaml:"http"`
	// Ranking tunes candidate selection for the consensus ranking.
	Ranking RankingConfig `yaml:"ranking" validate:"required"`
	// Output sets the default paths the save flags write to.
	Output OutputConfig `yaml:"output" validate:"required"`
}

// SourceConfig overrides the URLs the sources are constructed with.
// Empty fields keep each source's built-in default, so a typical overlay
// names only the endpoint it redirects, usually at a test server or an
// archived snapshot.
type SourceConfig struct {
	// TiobeURL is the TIOBE index page.
	TiobeURL string `yaml:"tiobe_url" validate:"omitempty,url"`
	// PyplURL is the PYPL index page.
	PyplURL string `yaml:"pypl_url" validate:"omitempty,url"`
	// LanguishPageURL is the Languish application page that references the
	// data bundle.
	LanguishPageURL string `yaml:"languish_page_url" validate:"omitempty,url"`
	// LanguishBaseURL prefixes relative bundle script paths found on the
	// Languish page.
	LanguishBaseURL string `yaml:"languish_base_url" validate:"omitempty,url"`
	// BenchmarksURL is the Benchmarks Game timing dataset CSV.
	BenchmarksURL string `yaml:"benchmarks_url" validate:"omitempty,url"`
	// TechempowerStatusURL is the TechEmpower run status board.
	TechempowerStatusURL string `yaml:"techempower_status_url" validate:"omitempty,url"`
}

// HTTPConfig controls the fetch client every source shares.
type HTTPConfig struct {
	// TimeoutSeconds bounds a single HTTP request, including body download.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"required,min=1,max=300"`
	// UserAgent overrides the User-Agent header sent with every request.
	// Empty keeps the client default.
	UserAgent string `yaml:"user_agent" validate:"omitempty,max=255"`
	// Retry configures the error recovery behavior for transient fetch
	// failures.
	Retry RetryConfig `yaml:"retry"`
	// RateLimit paces outbound requests so a run stays polite to the
	// public index pages it scrapes.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RetryConfig specifies the recovery strategy for transient fetch failures.
type RetryConfig struct {
	// MaxAttempts defines the number of retries after the initial attempt,
	// where 0 disables retries entirely.
	MaxAttempts int `yaml:"max_attempts" validate:"min=0,max=10"`
	// InitialWait specifies the base delay in milliseconds before the
	// first retry attempt, serving as the foundation for the exponential
	// backoff calculation.
	InitialWait int `yaml:"initial_wait_ms" validate:"omitempty,min=0,max=60000"`
	// MaxWait caps the delay in milliseconds between retry attempts to
	// prevent excessively long waits late in the backoff schedule.
	MaxWait int `yaml:"max_wait_ms" validate:"omitempty,min=0,max=300000"`
}

// RateLimitConfig specifies the token-bucket pacing applied across all
// outbound fetches.
type RateLimitConfig struct {
	// PerSecond is the sustained request rate. Zero disables pacing.
	PerSecond float64 `yaml:"per_second" validate:"min=0,max=1000"`
	// Burst is the bucket size. The five sources fetch concurrently, so a
	// burst smaller than five serializes the initial fan-out.
	Burst int `yaml:"burst" validate:"omitempty,min=1,max=100"`
}

// RankingConfig tunes which languages enter the consensus ranking.
type RankingConfig struct {
	// MinSignals is the number of distinct signal sets a language must
	// appear in to qualify as a candidate.
	MinSignals int `yaml:"min_signals" validate:"required,min=1,max=5"`
	// MaxLanguages caps the candidate set; when more languages qualify the
	// best-corroborated ones are kept.
	MaxLanguages int `yaml:"max_languages" validate:"required,min=2,max=200"`
}

// OutputConfig sets where the save flags write their artifacts when given
// without an explicit path.
type OutputConfig struct {
	// RankingsCSV receives the aggregated per-source popularity tables.
	RankingsCSV string `yaml:"rankings_csv" validate:"required"`
	// BenchmarksCSV receives the raw downloaded benchmark dataset.
	BenchmarksCSV string `yaml:"benchmarks_csv" validate:"required"`
	// SchulzeCSV receives the final consensus ranking.
	SchulzeCSV string `yaml:"schulze_csv" validate:"required"`
	// HTMLReport receives the standalone HTML report.
	HTMLReport string `yaml:"html_report" validate:"required"`
}

// DefaultConfig returns the configuration a run uses when no overlay file
// is given: the upstream source endpoints, a 20 second request timeout,
// three retries with exponential backoff, gentle request pacing, and the
// conventional data/ output layout.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			TimeoutSeconds: 20,
			Retry: RetryConfig{
				MaxAttempts: 3,
				InitialWait: 1000,
				MaxWait:     30000,
			},
			RateLimit: RateLimitConfig{
				PerSecond: 2,
				Burst:     5,
			},
		},
		Ranking: RankingConfig{
			MinSignals:   3,
			MaxLanguages: 25,
		},
		Output: OutputConfig{
			RankingsCSV:   filepath.Join("data", "input", "rankings.csv"),
			BenchmarksCSV: filepath.Join("data", "input", "benchmarksgame.csv"),
			SchulzeCSV:    filepath.Join("data", "output", "schulze_rankings.csv"),
			HTMLReport:    filepath.Join("data", "output", "report.html"),
		},
	}
}

// Validate checks the configuration against its struct constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig returns the run configuration, overlaying the YAML file at
// path onto the defaults when path is non-empty. Decoding is strict:
// unknown fields are an error, so configuration typos surface instead of
// being silently ignored. An empty file is a valid overlay that changes
// nothing.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
