package domain

import (
	"sort"
)

// Ballot is a strict total order over the candidate set for one metric,
// best first. Every candidate appears exactly once.
type Ballot []string

// ShareBallot orders the candidates by one source's share, descending.
// Candidates the source never reported count as share zero, so they sink to
// the bottom. Equal shares, including the incomparable NaN case, fall back
// to canonical name ascending, which keeps every ballot a total order.
func ShareBallot(candidates []string, entries []RankingEntry) Ballot {
	shares := make(map[string]float64, len(entries))
	for _, entry := range entries {
		shares[entry.Lang] = entry.Share
	}

	ballot := make(Ballot, len(candidates))
	copy(ballot, candidates)
	sort.Slice(ballot, func(i, j int) bool {
		si, sj := shares[ballot[i]], shares[ballot[j]]
		if si > sj {
			return true
		}
		if sj > si {
			return false
		}
		return ballot[i] < ballot[j]
	})
	return ballot
}

// PerfBallot orders the candidates by blended performance score, descending.
// Candidates without any performance signal count as the worst possible
// score. Ties fall back to canonical name ascending.
func PerfBallot(candidates []string, perf PerformanceProfile) Ballot {
	ballot := make(Ballot, len(candidates))
	copy(ballot, candidates)
	sort.Slice(ballot, func(i, j int) bool {
		si, _ := perf.Score(ballot[i])
		sj, _ := perf.Score(ballot[j])
		if si > sj {
			return true
		}
		if sj > si {
			return false
		}
		return ballot[i] < ballot[j]
	})
	return ballot
}

// BuildBallots produces the run's ballots in their fixed metric order: one
// per popularity source, then performance. Each is a total order over the
// same candidate set.
func BuildBallots(
	candidates []string,
	popularity [][]RankingEntry,
	perf PerformanceProfile,
) []Ballot {
	ballots := make([]Ballot, 0, len(popularity)+1)
	for _, entries := range popularity {
		ballots = append(ballots, ShareBallot(candidates, entries))
	}
	ballots = append(ballots, PerfBallot(candidates, perf))
	return ballots
}
