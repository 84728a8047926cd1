package application

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-langrank/internal/domain"
	"github.com/ahrav/go-langrank/internal/ports"
)

// ErrMissingSource is returned by NewPipeline when any of the five sources
// is nil.
var ErrMissingSource = errors.New("all five sources are required")

// Sources bundles the five collaborators a run fetches from. All five are
// required; a run that cannot reach one of its signals produces no output
// rather than a ranking with a silently missing column.
type Sources struct {
	Tiobe       ports.PopularitySource
	Pypl        ports.PopularitySource
	Languish    ports.PopularitySource
	Benchmarks  ports.BenchmarkSource
	Techempower ports.ThroughputSource
}

// Result carries everything one completed run produced: the aggregated
// per-source popularity tables, the performance profile, the consensus
// ranking, and the raw benchmark payload for archival.
type Result struct {
	// StartedAt marks when the run began, for the report header.
	StartedAt time.Time

	// Tiobe, Pypl, and Languish are the aggregated popularity tables,
	// sorted by canonical name. Pypl is already reconciled against Tiobe,
	// so a combined C/C++ row has been split where the reference allows.
	Tiobe    []domain.RankingEntry
	Pypl     []domain.RankingEntry
	Languish []domain.RankingEntry

	// PyplListed counts the PYPL table as the source listed it, before any
	// combined entry was split. The run summary reports this count.
	PyplListed int

	// BenchmarkRows counts the usable timing rows the benchmark download
	// yielded, for the run summary.
	BenchmarkRows int
	// BenchmarksRaw is the benchmark dataset exactly as downloaded.
	BenchmarksRaw []byte

	// Perf holds the per-language performance signals.
	Perf domain.PerformanceProfile

	// Candidates is the ranked language set, alphabetical.
	Candidates []string
	// Records is the consensus ranking, best first.
	Records []domain.SchulzeRecord
}

// Pipeline executes one ranking run: fan out the five source fetches, join,
// then walk the pure core stages in order. A Pipeline is stateless between
// runs and safe for concurrent use.
type Pipeline struct {
	config   Config
	sources  Sources
	metrics  ports.MetricsCollector
	progress ports.ProgressSink
	tracer   trace.Tracer
}

// NewPipeline creates a pipeline from a validated configuration and the
// five sources. The metrics collector and progress sink are optional; nil
// disables the corresponding reporting.
func NewPipeline(
	config Config,
	sources Sources,
	metrics ports.MetricsCollector,
	progress ports.ProgressSink,
) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if sources.Tiobe == nil || sources.Pypl == nil || sources.Languish == nil ||
		sources.Benchmarks == nil || sources.Techempower == nil {
		return nil, ErrMissingSource
	}

	return &Pipeline{
		config:   config,
		sources:  sources,
		metrics:  metrics,
		progress: progress,
		tracer:   otel.Tracer("pipeline"),
	}, nil
}

// Run executes the full flow and returns the run's result. The five fetches
// run concurrently and fail fast: the first error cancels the rest and the
// run produces no partial output. The stages after the join are sequential
// pure calls over the joined data.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	for _, source := range p.sourceNames() {
		p.emit(ports.Event{Source: source, Stage: ports.StageFetch, Status: ports.StatusQueued})
	}

	var (
		tiobeSamples    []domain.RawSample
		pyplSamples     []domain.RawSample
		languishSamples []domain.RawSample
		timings         []domain.BenchmarkTiming
		rawBenchmarks   []byte
		survey          domain.ThroughputSurvey
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.track(gctx, p.sources.Tiobe.Name(), func(ctx context.Context) (int, error) {
			samples, err := p.sources.Tiobe.Fetch(ctx)
			tiobeSamples = samples
			return len(samples), err
		})
	})
	g.Go(func() error {
		return p.track(gctx, p.sources.Pypl.Name(), func(ctx context.Context) (int, error) {
			samples, err := p.sources.Pypl.Fetch(ctx)
			pyplSamples = samples
			return len(samples), err
		})
	})
	g.Go(func() error {
		return p.track(gctx, p.sources.Languish.Name(), func(ctx context.Context) (int, error) {
			samples, err := p.sources.Languish.Fetch(ctx)
			languishSamples = samples
			return len(samples), err
		})
	})
	g.Go(func() error {
		return p.track(gctx, p.sources.Benchmarks.Name(), func(ctx context.Context) (int, error) {
			rows, raw, err := p.sources.Benchmarks.Fetch(ctx)
			timings, rawBenchmarks = rows, raw
			return len(rows), err
		})
	})
	g.Go(func() error {
		return p.track(gctx, p.sources.Techempower.Name(), func(ctx context.Context) (int, error) {
			s, err := p.sources.Techempower.Fetch(ctx)
			survey = s
			return len(s.FrameworkLanguages), err
		})
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := &Result{
		StartedAt:     started,
		BenchmarkRows: len(timings),
		BenchmarksRaw: rawBenchmarks,
	}

	err := p.stage(ctx, ports.StageAggregate, func(context.Context) error {
		result.Tiobe = domain.AggregateSamples(tiobeSamples)
		result.Languish = domain.AggregateSamples(languishSamples)
		pypl := domain.AggregateSamples(pyplSamples)
		result.PyplListed = len(pypl)
		result.Pypl = domain.SplitCombinedEntry(pypl, result.Tiobe)
		return nil
	})
	if err == nil {
		err = p.stage(ctx, ports.StageScore, func(context.Context) error {
			throughput, scoreErr := domain.ScoreThroughput(survey)
			if scoreErr != nil {
				return scoreErr
			}
			result.Perf = domain.PerformanceProfile{
				Benchmark:  domain.ScoreBenchmarks(timings),
				Throughput: throughput,
			}
			return nil
		})
	}
	if err == nil {
		err = p.stage(ctx, ports.StageRank, func(context.Context) error {
			popularity := [][]domain.RankingEntry{result.Tiobe, result.Pypl, result.Languish}
			candidates, selectErr := domain.SelectCandidates(
				popularity, result.Perf,
				p.config.Ranking.MinSignals, p.config.Ranking.MaxLanguages,
			)
			if selectErr != nil {
				return selectErr
			}

			ballots := domain.BuildBallots(candidates, popularity, result.Perf)
			scores := domain.CombinedScores(candidates, popularity, result.Perf)
			ranked := domain.SchulzeOrder(candidates, ballots, scores)

			result.Candidates = candidates
			result.Records = domain.BuildRecords(ranked, result.Tiobe, result.Pypl, result.Languish, result.Perf)
			return nil
		})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	p.recordRunGauges(result)
	if p.metrics != nil {
		p.metrics.RecordLatency("pipeline_run", time.Since(started), nil)
	}
	span.SetAttributes(attribute.Int("candidates", len(result.Candidates)))
	span.SetStatus(codes.Ok, "run completed")
	return result, nil
}

// sourceNames lists the five sources in their fixed display order.
func (p *Pipeline) sourceNames() []string {
	return []string{
		p.sources.Tiobe.Name(),
		p.sources.Pypl.Name(),
		p.sources.Languish.Name(),
		p.sources.Benchmarks.Name(),
		p.sources.Techempower.Name(),
	}
}

// track wraps one source's fetch task with progress events, a span, and
// stage metrics. The task's int result is the row count it produced, which
// flows into the done event for the progress display.
func (p *Pipeline) track(ctx context.Context, source string, task func(context.Context) (int, error)) error {
	p.emit(ports.Event{Source: source, Stage: ports.StageFetch, Status: ports.StatusWorking})
	ctx, span := p.tracer.Start(ctx, "pipeline.fetch",
		trace.WithAttributes(attribute.String("source", source)))
	defer span.End()

	fetchStart := time.Now()
	rows, err := task(ctx)
	elapsed := time.Since(fetchStart)
	p.recordStage("fetch", source, elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.emit(ports.Event{
			Source: source, Stage: ports.StageFetch, Status: ports.StatusError,
			Err: err, Elapsed: elapsed,
		})
		return err
	}

	span.SetAttributes(attribute.Int("rows", rows))
	p.emit(ports.Event{
		Source: source, Stage: ports.StageFetch, Status: ports.StatusDone,
		Rows: rows, Elapsed: elapsed,
	})
	return nil
}

// stage wraps one run-wide core stage with progress events, a span, and
// stage metrics.
func (p *Pipeline) stage(ctx context.Context, stage ports.Stage, fn func(context.Context) error) error {
	p.emit(ports.Event{Stage: stage, Status: ports.StatusWorking})
	ctx, span := p.tracer.Start(ctx, "pipeline."+string(stage))
	defer span.End()

	stageStart := time.Now()
	err := fn(ctx)
	elapsed := time.Since(stageStart)
	p.recordStage(string(stage), "", elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.emit(ports.Event{Stage: stage, Status: ports.StatusError, Err: err, Elapsed: elapsed})
		return err
	}

	p.emit(ports.Event{Stage: stage, Status: ports.StatusDone, Elapsed: elapsed})
	return nil
}

// emit forwards a progress event when a sink is configured.
func (p *Pipeline) emit(evt ports.Event) {
	if p.progress == nil {
		return
	}
	p.progress.OnEvent(evt)
}

// recordStage records one stage execution in the metrics backend.
func (p *Pipeline) recordStage(operation, source string, elapsed time.Duration, err error) {
	if p.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	labels := map[string]string{"source": source, "status": status}
	p.metrics.RecordLatency(operation, elapsed, labels)
	p.metrics.RecordCounter(operation, 1, labels)
}

// recordRunGauges publishes the per-source result sizes after a successful
// run.
func (p *Pipeline) recordRunGauges(result *Result) {
	if p.metrics == nil {
		return
	}
	gauge := func(metric, source string, value int) {
		p.metrics.RecordGauge(metric, float64(value), map[string]string{"source": source})
	}
	gauge("source_entries", p.sources.Tiobe.Name(), len(result.Tiobe))
	gauge("source_entries", p.sources.Pypl.Name(), len(result.Pypl))
	gauge("source_entries", p.sources.Languish.Name(), len(result.Languish))
	gauge("source_entries", p.sources.Benchmarks.Name(), result.BenchmarkRows)
	gauge("source_entries", p.sources.Techempower.Name(), len(result.Perf.Throughput))
	gauge("candidates", "", len(result.Candidates))
}

