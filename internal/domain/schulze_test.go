package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildDefeatMatrix counts pairwise preferences over a small electorate
// with one Condorcet winner and two mutually tied candidates.
func TestBuildDefeatMatrix(t *testing.T) {
	candidates := []string{"Go", "Python", "Rust"}
	ballots := []Ballot{
		{"Go", "Python", "Rust"},
		{"Python", "Rust", "Go"},
		{"Go", "Rust", "Python"},
		{"Rust", "Go", "Python"},
	}

	d := BuildDefeatMatrix(candidates, ballots)

	expected := [][]int{
		{0, 3, 2},
		{1, 0, 2},
		{2, 2, 0},
	}
	assert.Equal(t, expected, d)
}

// TestBeatpathStrengths verifies that only one-sided pairwise defeats seed
// the strength matrix and that balanced pairs stay at zero.
func TestBeatpathStrengths(t *testing.T) {
	d := [][]int{
		{0, 3, 2},
		{1, 0, 2},
		{2, 2, 0},
	}

	p := BeatpathStrengths(d)

	expected := [][]int{
		{0, 3, 0},
		{0, 0, 0},
		{0, 0, 0},
	}
	assert.Equal(t, expected, p)
}

// TestBeatpathStrengths_IndirectPath widens a strength through an
// intermediate candidate: with Go beating Python and Python beating Rust,
// Go gains a path to Rust even without a direct defeat.
func TestBeatpathStrengths_IndirectPath(t *testing.T) {
	d := [][]int{
		{0, 4, 2}, // Go beats Python 4-1, ties Rust 2-2.
		{1, 0, 3}, // Python beats Rust 3-2.
		{2, 2, 0},
	}

	p := BeatpathStrengths(d)

	assert.Equal(t, 4, p[0][1])
	assert.Equal(t, 3, p[1][2])
	assert.Equal(t, 3, p[0][2], "path Go->Python->Rust has width min(4, 3)")
	assert.Zero(t, p[2][0])
}

func TestSchulzeOrder(t *testing.T) {
	candidates := []string{"Go", "Python", "Rust"}
	ballots := []Ballot{
		{"Go", "Python", "Rust"},
		{"Python", "Rust", "Go"},
		{"Go", "Rust", "Python"},
		{"Rust", "Go", "Python"},
	}

	tests := []struct {
		name     string
		tieScore map[string]float64
		expected []RankedCandidate
	}{
		{
			name:     "ties resolved by name",
			tieScore: nil,
			expected: []RankedCandidate{
				{Position: 1, Lang: "Go", Wins: 1},
				{Position: 2, Lang: "Python", Wins: 0},
				{Position: 3, Lang: "Rust", Wins: 0},
			},
		},
		{
			name:     "combined score reorders tied candidates",
			tieScore: map[string]float64{"Rust": 9.0, "Go": 4.0, "Python": 4.0},
			expected: []RankedCandidate{
				{Position: 1, Lang: "Rust", Wins: 0},
				{Position: 2, Lang: "Go", Wins: 1},
				{Position: 3, Lang: "Python", Wins: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SchulzeOrder(candidates, ballots, tt.tieScore)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// TestSchulzeOrder_UnanimousBallots ranks a candidate first when every
// ballot agrees, regardless of tie scores.
func TestSchulzeOrder_UnanimousBallots(t *testing.T) {
	candidates := []string{"Go", "Rust"}
	ballots := []Ballot{
		{"Rust", "Go"},
		{"Rust", "Go"},
		{"Rust", "Go"},
	}
	tieScore := map[string]float64{"Go": 100.0}

	got := SchulzeOrder(candidates, ballots, tieScore)

	require.Len(t, got, 2)
	assert.Equal(t, "Rust", got[0].Lang)
	assert.Equal(t, 1, got[0].Wins)
	assert.Equal(t, "Go", got[1].Lang)
	assert.Zero(t, got[1].Wins)
}

// TestBeatpathStrengths_MatrixProperties checks the structural invariants of
// the strength matrix on a larger electorate: zero diagonal, at most one
// positive direction per pair, and closure under path widening.
func TestBeatpathStrengths_MatrixProperties(t *testing.T) {
	candidates := []string{"C#", "Go", "JavaScript", "Python", "Rust"}
	ballots := []Ballot{
		{"Python", "JavaScript", "Go", "C#", "Rust"},
		{"Rust", "Go", "Python", "C#", "JavaScript"},
		{"Go", "Rust", "Python", "JavaScript", "C#"},
		{"Python", "Go", "Rust", "JavaScript", "C#"},
		{"JavaScript", "Python", "C#", "Go", "Rust"},
		{"Go", "Python", "Rust", "C#", "JavaScript"},
		{"Rust", "C#", "Go", "Python", "JavaScript"},
	}

	d := BuildDefeatMatrix(candidates, ballots)
	p := BeatpathStrengths(d)

	n := len(candidates)
	for i := 0; i < n; i++ {
		assert.Zero(t, p[i][i], "diagonal must stay zero at %d", i)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if p[i][j] > 0 {
				assert.Zero(t, p[j][i], "pair (%d, %d) positive in both directions", i, j)
			}
			for k := 0; k < n; k++ {
				if k == i || k == j {
					continue
				}
				width := min(p[j][i], p[i][k])
				assert.GreaterOrEqual(t, p[j][k], width,
					"widening through %d improves p[%d][%d]", i, j, k)
			}
		}
	}
}

// TestSchulzeOrder_Deterministic runs the same election twice and expects
// byte-identical results, with positions covering 1..n exactly once.
func TestSchulzeOrder_Deterministic(t *testing.T) {
	candidates := []string{"C#", "Go", "JavaScript", "Python", "Rust"}
	ballots := []Ballot{
		{"Python", "JavaScript", "Go", "C#", "Rust"},
		{"Rust", "Go", "Python", "C#", "JavaScript"},
		{"Go", "Rust", "Python", "JavaScript", "C#"},
		{"Python", "Go", "Rust", "JavaScript", "C#"},
		{"JavaScript", "Python", "C#", "Go", "Rust"},
	}
	tieScore := map[string]float64{"Go": 3.0, "Python": 2.5, "Rust": 2.5}

	first := SchulzeOrder(candidates, ballots, tieScore)
	second := SchulzeOrder(candidates, ballots, tieScore)

	assert.Equal(t, first, second)

	require.Len(t, first, len(candidates))
	seen := make(map[string]bool, len(first))
	for i, rc := range first {
		assert.Equal(t, i+1, rc.Position)
		assert.False(t, seen[rc.Lang], "candidate %q ranked twice", rc.Lang)
		seen[rc.Lang] = true
	}
}

func TestCombinedScores(t *testing.T) {
	candidates := []string{"COBOL", "Go", "Rust"}
	tiobe := []RankingEntry{
		{Lang: "Go", Share: 2.0},
		{Lang: "Rust", Share: 1.0},
		{Lang: "COBOL", Share: 0.4},
	}
	pypl := []RankingEntry{{Lang: "Go", Share: 1.5}}
	perf := PerformanceProfile{Benchmark: map[string]float64{"Go": 0.5, "Rust": 1.0}}

	scores := CombinedScores(candidates, [][]RankingEntry{tiobe, pypl}, perf)

	require.Len(t, scores, 3)
	assert.InDelta(t, 4.0, scores["Go"], 1e-12)
	assert.InDelta(t, 2.0, scores["Rust"], 1e-12)
	assert.InDelta(t, 0.4, scores["COBOL"], 1e-12, "no performance signal contributes zero")
}
