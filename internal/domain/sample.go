// Package domain contains the pure, dependency-light core of the ranking
// pipeline: canonical language naming, per-source aggregation, performance
// scoring, candidate selection, ballot construction, and the Schulze engine.
package domain

// RawSample is one observed row from a single popularity source before any
// normalization. Rank and Trend are nil when the source did not report them.
type RawSample struct {
	// Label is the language name exactly as the source printed it.
	Label string `json:"label"`

	// Rank is the 1-based position the source assigned, when present.
	Rank *int `json:"rank,omitempty"`

	// Share is the source's popularity figure on its native scale,
	// usually a percentage. Never negative.
	Share float64 `json:"share"`

	// Trend is the source's period-over-period delta, when present.
	Trend *float64 `json:"trend,omitempty"`
}

// RankingEntry is the aggregated view of one canonical language within one
// source: all raw samples that canonicalize to the same name folded together.
type RankingEntry struct {
	// Lang is the canonical language name.
	Lang string `json:"lang"`

	// Rank is the minimum rank among contributing samples, nil when no
	// contributor carried one.
	Rank *int `json:"rank,omitempty"`

	// Share is the sum of contributing shares.
	Share float64 `json:"share"`

	// Trend is the sum of contributing trends, nil when no contributor
	// carried one.
	Trend *float64 `json:"trend,omitempty"`
}

// BenchmarkTiming is one measurement row from the benchmark suite's timing
// table. Status values below zero mark failed runs and are never scored.
type BenchmarkTiming struct {
	Lang    string  `json:"lang"`
	Task    string  `json:"task"`
	Status  int64   `json:"status"`
	Elapsed float64 `json:"elapsed"`
}

// ThroughputRun is one measured run of a framework on one throughput test.
// Times are wall-clock milliseconds as reported by the survey.
type ThroughputRun struct {
	TotalRequests int64 `json:"totalRequests"`
	StartTimeMS   int64 `json:"startTime"`
	EndTimeMS     int64 `json:"endTime"`
}

// ThroughputSurvey is the decoded form of the web-framework throughput
// results: per-test, per-framework run lists plus the framework-to-language
// metadata needed to attribute composite scores.
type ThroughputSurvey struct {
	// Runs maps test name to framework name to that framework's runs.
	Runs map[string]map[string][]ThroughputRun

	// FrameworkLanguages maps framework name to its canonical language.
	FrameworkLanguages map[string]string
}

// SchulzeRecord is one row of the final consensus ranking: every per-source
// figure the candidate resolved to, both raw performance signals, the blended
// performance score, and the pairwise win count. Records are emitted ordered
// by Position starting at 1.
type SchulzeRecord struct {
	Position int    `json:"position"`
	Lang     string `json:"lang"`

	TiobeRank  *int     `json:"tiobe_rank,omitempty"`
	TiobeShare float64  `json:"tiobe_share"`
	TiobeTrend *float64 `json:"tiobe_trend,omitempty"`

	PyplRank  *int     `json:"pypl_rank,omitempty"`
	PyplShare float64  `json:"pypl_share"`
	PyplTrend *float64 `json:"pypl_trend,omitempty"`

	LanguishRank  *int     `json:"languish_rank,omitempty"`
	LanguishShare float64  `json:"languish_share"`
	LanguishTrend *float64 `json:"languish_trend,omitempty"`

	// BenchmarkScore is the geometric-mean speed ratio in (0, 1], nil when
	// the language has no usable benchmark timings.
	BenchmarkScore *float64 `json:"benchmark_score,omitempty"`

	// TechempowerScore is the weighted composite on its native 0..6 scale,
	// nil when no framework for the language completed every test.
	TechempowerScore *float64 `json:"techempower_score,omitempty"`

	// PerfScore is the blended 0..1 performance figure used for ballots and
	// tie-breaking. Meaningless when both raw signals are nil.
	PerfScore float64 `json:"perf_score"`

	Wins int `json:"schulze_wins"`
}

// HasPerfSignal reports whether at least one raw performance signal exists
// for this record. Renderers print the blended score only when it does.
func (r *SchulzeRecord) HasPerfSignal() bool {
	return r.BenchmarkScore != nil || r.TechempowerScore != nil
}
