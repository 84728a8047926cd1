package domain

import (
	"math"
)

// langTask keys the fastest-run table by canonical language and task name.
type langTask struct {
	lang string
	task string
}

// ScoreBenchmarks reduces raw benchmark timings to one relative performance
// score per canonical language.
//
// Rows with a negative status or a non-finite or non-positive elapsed time
// are discarded. For every (language, task) pair only the fastest successful
// run counts. Each kept time is converted to a speed ratio against the
// fastest time any language achieved on that task, so a ratio of 1.0 means
// the language set the task's best time. A language's score is the geometric
// mean of its ratios across every task it has data for, which keeps a single
// outlier task from dominating the way an arithmetic mean would.
//
// Languages without a single usable row are absent from the result rather
// than scored zero. A score recorded under the merged "C/C++" identity is
// copied onto "C" and "C++" when those keys are otherwise missing, matching
// how the popularity sources report them separately.
func ScoreBenchmarks(timings []BenchmarkTiming) map[string]float64 {
	fastest := make(map[langTask]float64)
	for _, row := range timings {
		if row.Status < 0 {
			continue
		}
		if math.IsNaN(row.Elapsed) || math.IsInf(row.Elapsed, 0) || row.Elapsed <= 0 {
			continue
		}
		lang, ok := CanonicalName(row.Lang)
		if !ok {
			continue
		}
		key := langTask{lang: lang, task: row.Task}
		if current, seen := fastest[key]; !seen || row.Elapsed < current {
			fastest[key] = row.Elapsed
		}
	}

	taskBest := make(map[string]float64)
	for key, elapsed := range fastest {
		if current, seen := taskBest[key.task]; !seen || elapsed < current {
			taskBest[key.task] = elapsed
		}
	}

	// Geometric mean via the mean of logarithms, accumulated per language.
	logSums := make(map[string]float64)
	ratioCounts := make(map[string]int)
	for key, elapsed := range fastest {
		best := taskBest[key.task]
		if best <= 0 {
			continue
		}
		ratio := best / elapsed
		logSums[key.lang] += math.Log(ratio)
		ratioCounts[key.lang]++
	}

	scores := make(map[string]float64, len(logSums))
	for lang, sum := range logSums {
		count := ratioCounts[lang]
		if count == 0 {
			continue
		}
		scores[lang] = math.Exp(sum / float64(count))
	}

	if combined, ok := scores[combinedCppName]; ok {
		if _, present := scores["C"]; !present {
			scores["C"] = combined
		}
		if _, present := scores["C++"]; !present {
			scores["C++"] = combined
		}
	}

	return scores
}
