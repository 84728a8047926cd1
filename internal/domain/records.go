package domain

// sourceFigures looks up one language's entry in a source's aggregated list,
// falling back to the neutral defaults for languages the source never
// reported: zero share, no rank, no trend.
func sourceFigures(entries []RankingEntry, lang string) (rank *int, share float64, trend *float64) {
	for i := range entries {
		if entries[i].Lang == lang {
			return cloneInt(entries[i].Rank), entries[i].Share, cloneFloat(entries[i].Trend)
		}
	}
	return nil, 0, nil
}

// BuildRecords resolves the consensus order into self-contained report rows.
// Every per-source figure is copied in, so records stay valid however the
// caller reuses the input slices. Candidates missing a popularity source get
// that source's neutral defaults; performance fields are nil when the
// corresponding signal has no data for the language.
func BuildRecords(
	ranked []RankedCandidate,
	tiobe, pypl, languish []RankingEntry,
	perf PerformanceProfile,
) []SchulzeRecord {
	records := make([]SchulzeRecord, len(ranked))
	for i, candidate := range ranked {
		record := SchulzeRecord{
			Position: candidate.Position,
			Lang:     candidate.Lang,
			Wins:     candidate.Wins,
		}
		record.TiobeRank, record.TiobeShare, record.TiobeTrend = sourceFigures(tiobe, candidate.Lang)
		record.PyplRank, record.PyplShare, record.PyplTrend = sourceFigures(pypl, candidate.Lang)
		record.LanguishRank, record.LanguishShare, record.LanguishTrend = sourceFigures(languish, candidate.Lang)

		if bench, ok := perf.BenchmarkScore(candidate.Lang); ok {
			record.BenchmarkScore = &bench
		}
		if composite, ok := perf.ThroughputScore(candidate.Lang); ok {
			record.TechempowerScore = &composite
		}
		if blended, ok := perf.Score(candidate.Lang); ok {
			record.PerfScore = blended
		}

		records[i] = record
	}
	return records
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
