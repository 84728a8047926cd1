package domain

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTooFewCandidates is returned when fewer than two languages carry enough
// corroborating signals to make a pairwise ranking meaningful.
var ErrTooFewCandidates = errors.New("not enough overlapping languages to rank")

// candidatePriority carries the figures the capped selection orders by.
type candidatePriority struct {
	lang    string
	signals int
	shares  float64
	perf    float64
}

// SelectCandidates determines the languages a run will rank.
//
// Every canonical name seen in any popularity source or performance signal is
// counted once per signal set it appears in. Names appearing in fewer than
// minSignals sets are excluded, so a language popular on a single index with
// no corroboration elsewhere cannot enter the ranking. When more than
// maxLanguages names qualify, the kept subset is chosen by priority: signal
// count descending, then summed popularity shares descending, then blended
// performance score descending, then name ascending. The returned set is
// always sorted alphabetically; selection order and ranking order are
// independent.
//
// Returns ErrTooFewCandidates when fewer than two names qualify.
func SelectCandidates(
	popularity [][]RankingEntry,
	perf PerformanceProfile,
	minSignals, maxLanguages int,
) ([]string, error) {
	signals := make(map[string]int)
	shares := make(map[string]float64)

	for _, entries := range popularity {
		for _, entry := range entries {
			signals[entry.Lang]++
			shares[entry.Lang] += entry.Share
		}
	}
	for lang := range perf.Benchmark {
		signals[lang]++
	}
	for lang := range perf.Throughput {
		signals[lang]++
	}

	qualified := make([]candidatePriority, 0, len(signals))
	for lang, count := range signals {
		if count < minSignals {
			continue
		}
		score, _ := perf.Score(lang)
		qualified = append(qualified, candidatePriority{
			lang:    lang,
			signals: count,
			shares:  shares[lang],
			perf:    score,
		})
	}

	if len(qualified) < 2 {
		return nil, fmt.Errorf("%w: %d languages appear in at least %d signal sets",
			ErrTooFewCandidates, len(qualified), minSignals)
	}

	if len(qualified) > maxLanguages {
		sort.Slice(qualified, func(i, j int) bool {
			a, b := qualified[i], qualified[j]
			if a.signals != b.signals {
				return a.signals > b.signals
			}
			if a.shares != b.shares {
				return a.shares > b.shares
			}
			if a.perf != b.perf {
				return a.perf > b.perf
			}
			return a.lang < b.lang
		})
		qualified = qualified[:maxLanguages]
	}

	langs := make([]string, len(qualified))
	for i, candidate := range qualified {
		langs[i] = candidate.lang
	}
	sort.Strings(langs)
	return langs, nil
}
