// Command langrank fetches the programming-language popularity indexes and
// performance datasets, computes one consensus ranking with the Schulze
// method, and renders the result as a terminal summary with optional CSV and
// HTML exports.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-langrank/infrastructure/fetch"
	"github.com/ahrav/go-langrank/infrastructure/middleware"
	"github.com/ahrav/go-langrank/infrastructure/sources"
	"github.com/ahrav/go-langrank/internal/application"
	"github.com/ahrav/go-langrank/internal/ports"
	"github.com/ahrav/go-langrank/internal/report"
	"github.com/ahrav/go-langrank/internal/ui"
)

// version is stamped at build time via
// -ldflags "-X main.version=v1.2.3"; "dev" identifies local builds.
var version = "dev"

// runOptions holds the flag values that do not resolve through the
// configuration file.
type runOptions struct {
	configPath string
	archiveCSV bool
	fullOutput bool
	noProgress bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds the langrank root command. The save flags take an
// optional file argument: given bare they resolve to the configured default
// path, given as --save-x=FILE they write to FILE, and omitted they skip
// the artifact entirely.
func newRootCommand() *cobra.Command {
	opts := &runOptions{}
	defaults := application.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "langrank",
		Short: "Consensus ranking of programming-language popularity and performance",
		Long: `langrank aggregates the TIOBE, PYPL, and Languish popularity indexes with
the Benchmarks Game timing data and the TechEmpower framework benchmarks,
then combines them into a single ranking using the Schulze voting method.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "",
		"YAML configuration overlay file")
	flags.BoolVar(&opts.archiveCSV, "archive-csv", false,
		"gzip-compress saved CSV artifacts (appends .gz)")
	flags.BoolVar(&opts.fullOutput, "full-output", false,
		"print every ranking row and column instead of the compact table")
	flags.BoolVar(&opts.noProgress, "no-progress", false,
		"disable the live progress display")

	optionalPath := func(name, noOptDefault, usage string) {
		flags.String(name, "", usage)
		flags.Lookup(name).NoOptDefVal = noOptDefault
	}
	optionalPath("save-rankings", defaults.Output.RankingsCSV,
		"save the combined per-source rankings CSV (optionally to FILE)")
	optionalPath("save-benchmarks", defaults.Output.BenchmarksCSV,
		"save the raw downloaded benchmark CSV (optionally to FILE)")
	optionalPath("save-schulze", defaults.Output.SchulzeCSV,
		"save the consensus ranking CSV (optionally to FILE)")
	optionalPath("save-html", defaults.Output.HTMLReport,
		"save the standalone HTML report (optionally to FILE)")

	return cmd
}

// run executes one full ranking run: load configuration, assemble the
// transport and the five sources, execute the pipeline, then write the
// requested artifacts and the terminal summary.
func run(cmd *cobra.Command, opts *runOptions) error {
	config, err := application.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	metrics := middleware.NewPrometheusMetrics()

	fetcher, err := newFetcher(config.HTTP, metrics)
	if err != nil {
		return fmt.Errorf("assemble fetch client: %w", err)
	}

	srcs, err := buildSources(config.Sources, fetcher)
	if err != nil {
		return fmt.Errorf("assemble sources: %w", err)
	}

	events := make(chan ports.Event, 64)
	pipeline, err := application.NewPipeline(config, srcs, metrics, ports.ChannelSink{Ch: events})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wait := startProgress(opts, srcs, events)
	result, runErr := pipeline.Run(ctx)
	close(events)
	wait()
	if runErr != nil {
		return runErr
	}

	paths, err := writeArtifacts(cmd.Flags(), opts, &config, result, srcs)
	if err != nil {
		return err
	}

	report.WriteSummary(cmd.OutOrStdout(), &report.Summary{
		TiobeCount:       len(result.Tiobe),
		PyplCount:        result.PyplListed,
		LanguishCount:    len(result.Languish),
		BenchmarkCount:   len(result.Perf.Benchmark),
		TechempowerCount: len(result.Perf.Throughput),
		StartedAt:        result.StartedAt,
		Paths:            paths,
		Records:          result.Records,
		FullOutput:       opts.fullOutput,
	})
	return nil
}

// newFetcher assembles the shared HTTP transport: retries innermost, then
// rate limiting so retried attempts are paced too, then metrics and tracing
// observing every attempt that reaches the network.
func newFetcher(config application.HTTPConfig, metrics ports.MetricsCollector) (ports.Fetcher, error) {
	retryConfig := fetch.DefaultRetryConfig()
	retryConfig.MaxAttempts = config.Retry.MaxAttempts
	if config.Retry.InitialWait > 0 {
		retryConfig.BaseDelay = time.Duration(config.Retry.InitialWait) * time.Millisecond
	}
	if config.Retry.MaxWait > 0 {
		retryConfig.MaxDelay = time.Duration(config.Retry.MaxWait) * time.Millisecond
	}

	mw := []fetch.Middleware{fetch.RetryMiddleware(retryConfig)}
	if config.RateLimit.PerSecond > 0 {
		burst := config.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		mw = append(mw, fetch.RateLimitMiddleware(rate.Limit(config.RateLimit.PerSecond), burst))
	}
	mw = append(mw,
		fetch.MetricsMiddleware(metrics),
		fetch.TracingMiddleware("langrank"),
	)

	return fetch.NewClient(fetch.ClientConfig{
		Timeout:    time.Duration(config.TimeoutSeconds) * time.Second,
		UserAgent:  config.UserAgent,
		Middleware: mw,
	})
}

// buildSources constructs the five metric sources, applying any endpoint
// overrides from the configuration.
func buildSources(config application.SourceConfig, fetcher ports.Fetcher) (application.Sources, error) {
	tiobeConfig := sources.DefaultTiobeConfig()
	if config.TiobeURL != "" {
		tiobeConfig.URL = config.TiobeURL
	}
	tiobe, err := sources.NewTiobeSource(tiobeConfig, fetcher)
	if err != nil {
		return application.Sources{}, err
	}

	pyplConfig := sources.DefaultPyplConfig()
	if config.PyplURL != "" {
		pyplConfig.URL = config.PyplURL
	}
	pypl, err := sources.NewPyplSource(pyplConfig, fetcher)
	if err != nil {
		return application.Sources{}, err
	}

	languishConfig := sources.DefaultLanguishConfig()
	if config.LanguishPageURL != "" {
		languishConfig.PageURL = config.LanguishPageURL
	}
	if config.LanguishBaseURL != "" {
		languishConfig.BaseURL = config.LanguishBaseURL
	}
	languish, err := sources.NewLanguishSource(languishConfig, fetcher)
	if err != nil {
		return application.Sources{}, err
	}

	benchmarksConfig := sources.DefaultBenchmarksConfig()
	if config.BenchmarksURL != "" {
		benchmarksConfig.URL = config.BenchmarksURL
	}
	benchmarks, err := sources.NewBenchmarksSource(benchmarksConfig, fetcher)
	if err != nil {
		return application.Sources{}, err
	}

	techempowerConfig := sources.DefaultTechempowerConfig()
	if config.TechempowerStatusURL != "" {
		techempowerConfig.StatusURL = config.TechempowerStatusURL
	}
	techempower, err := sources.NewTechempowerSource(techempowerConfig, fetcher)
	if err != nil {
		return application.Sources{}, err
	}

	return application.Sources{
		Tiobe:       tiobe,
		Pypl:        pypl,
		Languish:    languish,
		Benchmarks:  benchmarks,
		Techempower: techempower,
	}, nil
}

// startProgress launches the progress consumer for the run and returns a
// function that blocks until it has drained the event channel. Interactive
// terminals get the Bubble Tea display; everything else gets plain lines on
// stderr.
func startProgress(opts *runOptions, srcs application.Sources, events chan ports.Event) func() {
	done := make(chan struct{})
	if opts.noProgress || !term.IsTerminal(int(os.Stderr.Fd())) {
		go func() {
			defer close(done)
			ui.WritePlainEvents(os.Stderr, events)
		}()
		return func() { <-done }
	}

	names := []string{
		srcs.Tiobe.Name(),
		srcs.Pypl.Name(),
		srcs.Languish.Name(),
		srcs.Benchmarks.Name(),
		srcs.Techempower.Name(),
	}
	program := tea.NewProgram(
		ui.NewProgressModel("Updating language rankings", names, events),
		tea.WithOutput(os.Stderr),
	)
	go func() {
		defer close(done)
		// The model quits on its own when the event channel closes; a
		// display error must not fail the run.
		_, _ = program.Run()
	}()
	return func() { <-done }
}

// writeArtifacts resolves each save flag and writes the requested exports.
// The HTML report is written last so its downloads section can link the CSV
// paths actually produced.
func writeArtifacts(
	flags *pflag.FlagSet,
	opts *runOptions,
	config *application.Config,
	result *application.Result,
	srcs application.Sources,
) (report.SummaryPaths, error) {
	var paths report.SummaryPaths

	if path := savePath(flags, "save-benchmarks", config.Output.BenchmarksCSV); path != "" {
		written, err := report.WriteBenchmarksCSV(path, result.BenchmarksRaw, opts.archiveCSV)
		if err != nil {
			return paths, err
		}
		paths.Benchmarks = written
	}

	if path := savePath(flags, "save-rankings", config.Output.RankingsCSV); path != "" {
		combined := []report.SourceRankings{
			{Source: srcs.Tiobe.Name(), Entries: result.Tiobe},
			{Source: srcs.Pypl.Name(), Entries: result.Pypl},
			{Source: srcs.Languish.Name(), Entries: result.Languish},
		}
		written, err := report.WriteRankingsCSV(path, combined, opts.archiveCSV)
		if err != nil {
			return paths, err
		}
		paths.Rankings = written
	}

	if path := savePath(flags, "save-schulze", config.Output.SchulzeCSV); path != "" {
		written, err := report.WriteSchulzeCSV(path, result.Records, opts.archiveCSV)
		if err != nil {
			return paths, err
		}
		paths.Schulze = written
	}

	if path := savePath(flags, "save-html", config.Output.HTMLReport); path != "" {
		written, err := report.WriteHTML(path, &report.HTMLContext{
			Version:          version,
			TiobeCount:       len(result.Tiobe),
			PyplCount:        result.PyplListed,
			LanguishCount:    len(result.Languish),
			BenchmarkCount:   len(result.Perf.Benchmark),
			TechempowerCount: len(result.Perf.Throughput),
			StartedAt:        result.StartedAt,
			Records:          result.Records,
			FullOutput:       opts.fullOutput,
			ArchiveCSV:       opts.archiveCSV,
			Paths:            paths,
		})
		if err != nil {
			return paths, err
		}
		paths.HTML = written
	}

	return paths, nil
}

// savePath resolves one optional-value save flag: "" when the flag was not
// given, the explicit file when one was, and the configured default when
// the flag appeared bare. A bare flag resolves through the configuration so
// a --config overlay can redirect the default output layout.
func savePath(flags *pflag.FlagSet, name, configured string) string {
	flag := flags.Lookup(name)
	if flag == nil || !flag.Changed {
		return ""
	}
	if value := flag.Value.String(); value != flag.NoOptDefVal {
		return value
	}
	return configured
}
