package domain

// PerformanceProfile holds the two per-language performance signals on their
// native scales: benchmark speed ratios in (0, 1] and throughput composites
// in (0, ThroughputMaxScore]. Either map may be nil or missing a language.
type PerformanceProfile struct {
	Benchmark  map[string]float64
	Throughput map[string]float64
}

// Score blends the available signals for one language into a single 0..1
// figure. The throughput composite is brought onto the benchmark ratio's
// scale by dividing by ThroughputMaxScore; when both signals exist the blend
// is their arithmetic mean, so improving either signal always improves the
// blend. The second return value is false only when the language has neither
// signal.
func (p PerformanceProfile) Score(lang string) (float64, bool) {
	bench, hasBench := p.Benchmark[lang]
	composite, hasThroughput := p.Throughput[lang]

	switch {
	case hasBench && hasThroughput:
		return (bench + composite/ThroughputMaxScore) / 2.0, true
	case hasBench:
		return bench, true
	case hasThroughput:
		return composite / ThroughputMaxScore, true
	default:
		return 0, false
	}
}

// BenchmarkScore returns the raw benchmark signal for one language, with
// presence reported separately so absence never reads as a zero score.
func (p PerformanceProfile) BenchmarkScore(lang string) (float64, bool) {
	v, ok := p.Benchmark[lang]
	return v, ok
}

// ThroughputScore returns the raw throughput composite for one language.
func (p PerformanceProfile) ThroughputScore(lang string) (float64, bool) {
	v, ok := p.Throughput[lang]
	return v, ok
}

// Languages returns every language present in at least one signal.
// The result order is unspecified.
func (p PerformanceProfile) Languages() []string {
	seen := make(map[string]struct{}, len(p.Benchmark)+len(p.Throughput))
	for lang := range p.Benchmark {
		seen[lang] = struct{}{}
	}
	for lang := range p.Throughput {
		seen[lang] = struct{}{}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	return langs
}
