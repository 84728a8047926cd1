package domain

import (
	"errors"
	"fmt"
)

// throughputTestCount is the number of test categories a framework must
// complete to receive a composite score.
const throughputTestCount = 6

// ThroughputMaxScore is the highest composite a framework can reach: the
// weight sum, attained by leading every test category.
const ThroughputMaxScore = 6.0

// Throughput test categories and their contribution weights. The weights sum
// to ThroughputMaxScore.
var throughputTests = [throughputTestCount]struct {
	name   string
	weight float64
}{
	{"json", 1.0},
	{"plaintext", 0.75},
	{"db", 0.75},
	{"query", 0.75},
	{"fortune", 1.5},
	{"update", 1.25},
}

// ErrNoThroughputScores is returned when a survey yields no per-language
// composite at all, usually a sign the payload shape changed upstream.
var ErrNoThroughputScores = errors.New("no throughput language scores computed")

// RequestsPerSecond converts the run's counters to a throughput rate.
// It reports false when the request count or the elapsed window is not
// positive, so malformed runs drop out instead of poisoning a maximum.
func (r ThroughputRun) RequestsPerSecond() (float64, bool) {
	durationMS := r.EndTimeMS - r.StartTimeMS
	if r.TotalRequests <= 0 || durationMS <= 0 {
		return 0, false
	}
	return float64(r.TotalRequests) / (float64(durationMS) / 1000.0), true
}

// frameworkRates records one framework's best observed rate per test.
type frameworkRates struct {
	rps     [throughputTestCount]float64
	present [throughputTestCount]bool
}

// ScoreThroughput reduces a framework throughput survey to one composite
// score per canonical language.
//
// Every run is converted to requests per second; per framework per test the
// best run counts. Frameworks missing any test category are excluded
// entirely. Each remaining framework's per-test rate is normalized against
// the best rate any framework achieved on that test and scaled by the test's
// weight; the composite is the sum over all tests. Per canonical language the
// best composite across its frameworks wins.
//
// A test category with no usable data at all is an error: a partial survey
// would silently skew every composite. An empty result is also an error.
func ScoreThroughput(survey ThroughputSurvey) (map[string]float64, error) {
	rates := make(map[string]*frameworkRates)
	var maxByTest [throughputTestCount]float64

	for idx, test := range throughputTests {
		for framework, runs := range survey.Runs[test.name] {
			best := 0.0
			for _, run := range runs {
				if rps, ok := run.RequestsPerSecond(); ok && rps > best {
					best = rps
				}
			}
			if best <= 0 {
				continue
			}
			fr := rates[framework]
			if fr == nil {
				fr = &frameworkRates{}
				rates[framework] = fr
			}
			fr.rps[idx] = best
			fr.present[idx] = true
			if best > maxByTest[idx] {
				maxByTest[idx] = best
			}
		}
	}

	for idx, max := range maxByTest {
		if max <= 0 {
			return nil, fmt.Errorf("missing throughput data for test %q", throughputTests[idx].name)
		}
	}

	best := make(map[string]float64)
	for framework, fr := range rates {
		complete := true
		for idx := range fr.present {
			if !fr.present[idx] {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}

		composite := 0.0
		for idx, test := range throughputTests {
			composite += (fr.rps[idx] / maxByTest[idx]) * test.weight
		}
		if composite <= 0 {
			continue
		}

		lang, ok := survey.FrameworkLanguages[framework]
		if !ok {
			continue
		}
		if composite > best[lang] {
			best[lang] = composite
		}
	}

	if len(best) == 0 {
		return nil, ErrNoThroughputScores
	}
	return best, nil
}
