package domain

import (
	"sort"
)

// BuildDefeatMatrix counts, for every ordered candidate pair (i, j), the
// ballots on which i is ranked strictly ahead of j. Indexes follow the
// candidates slice. The diagonal stays zero and is never read.
func BuildDefeatMatrix(candidates []string, ballots []Ballot) [][]int {
	n := len(candidates)
	index := make(map[string]int, n)
	for i, lang := range candidates {
		index[lang] = i
	}

	d := newMatrix(n)
	positions := make([]int, n)
	for _, ballot := range ballots {
		for pos, lang := range ballot {
			if idx, ok := index[lang]; ok {
				positions[idx] = pos
			}
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j && positions[i] < positions[j] {
					d[i][j]++
				}
			}
		}
	}
	return d
}

// BeatpathStrengths derives the Schulze strength matrix from a defeat
// matrix. p[i][j] starts as d[i][j] where i pairwise-defeats j and zero
// otherwise, then each strength is widened to the strongest path through any
// intermediate candidate: p[j][k] = max(p[j][k], min(p[j][i], p[i][k])).
// With the intermediate index as the outer loop a single pass reaches the
// fixed point, the same relaxation order Floyd-Warshall uses.
func BeatpathStrengths(d [][]int) [][]int {
	n := len(d)
	p := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && d[i][j] > d[j][i] {
				p[i][j] = d[i][j]
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			for k := 0; k < n; k++ {
				if i == k || j == k {
					continue
				}
				if width := min(p[j][i], p[i][k]); width > p[j][k] {
					p[j][k] = width
				}
			}
		}
	}
	return p
}

// RankedCandidate is one candidate's place in the consensus order.
type RankedCandidate struct {
	// Position is the 1-based rank.
	Position int

	// Lang is the canonical language name.
	Lang string

	// Wins is the number of other candidates this one strictly beats by
	// beatpath strength. Reported, not used for ordering.
	Wins int
}

// SchulzeOrder computes the consensus ranking of the candidates from the
// ballots. A candidate precedes another when its beatpath strength over the
// other is strictly greater; equal strengths, including the all-zero tie,
// fall back to the tieScore figure descending and then to canonical name
// ascending. Both fallbacks are total orders, so the result is one too.
//
// The engine itself cannot fail: any candidate set of size two or more
// yields a complete order. Undersized sets are rejected upstream by
// SelectCandidates.
func SchulzeOrder(candidates []string, ballots []Ballot, tieScore map[string]float64) []RankedCandidate {
	n := len(candidates)
	index := make(map[string]int, n)
	for i, lang := range candidates {
		index[lang] = i
	}

	d := BuildDefeatMatrix(candidates, ballots)
	p := BeatpathStrengths(d)

	order := make([]string, n)
	copy(order, candidates)
	sort.Slice(order, func(x, y int) bool {
		a, b := index[order[x]], index[order[y]]
		if p[a][b] != p[b][a] {
			return p[a][b] > p[b][a]
		}
		sa, sb := tieScore[order[x]], tieScore[order[y]]
		if sa > sb {
			return true
		}
		if sb > sa {
			return false
		}
		return order[x] < order[y]
	})

	ranked := make([]RankedCandidate, n)
	for pos, lang := range order {
		idx := index[lang]
		wins := 0
		for other := 0; other < n; other++ {
			if other != idx && p[idx][other] > p[other][idx] {
				wins++
			}
		}
		ranked[pos] = RankedCandidate{Position: pos + 1, Lang: lang, Wins: wins}
	}
	return ranked
}

// CombinedScores precomputes the tie-break figure for every candidate: the
// sum of each source's share plus the blended performance score, all on
// their native scales. Candidates missing a source contribute zero for it.
func CombinedScores(
	candidates []string,
	popularity [][]RankingEntry,
	perf PerformanceProfile,
) map[string]float64 {
	shares := make(map[string]float64, len(candidates))
	for _, entries := range popularity {
		for _, entry := range entries {
			shares[entry.Lang] += entry.Share
		}
	}

	scores := make(map[string]float64, len(candidates))
	for _, lang := range candidates {
		total := shares[lang]
		if perfScore, ok := perf.Score(lang); ok {
			total += perfScore
		}
		scores[lang] = total
	}
	return scores
}

// newMatrix allocates an n by n zero matrix in one backing slice.
func newMatrix(n int) [][]int {
	cells := make([]int, n*n)
	rows := make([][]int, n)
	for i := range rows {
		rows[i] = cells[i*n : (i+1)*n]
	}
	return rows
}
