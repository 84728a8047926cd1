package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecords(t *testing.T) {
	ranked := []RankedCandidate{
		{Position: 1, Lang: "Go", Wins: 1},
		{Position: 2, Lang: "COBOL", Wins: 0},
	}
	tiobe := []RankingEntry{
		{Lang: "Go", Rank: intPtr(8), Share: 2.0, Trend: floatPtr(0.3)},
		{Lang: "COBOL", Rank: intPtr(20), Share: 0.4},
	}
	pypl := []RankingEntry{
		{Lang: "Go", Rank: intPtr(12), Share: 1.1, Trend: floatPtr(-0.1)},
	}
	perf := PerformanceProfile{
		Benchmark:  map[string]float64{"Go": 0.5},
		Throughput: map[string]float64{"Go": 4.8},
	}

	records := BuildRecords(ranked, tiobe, pypl, nil, perf)

	require.Len(t, records, 2)

	goRecord := records[0]
	assert.Equal(t, 1, goRecord.Position)
	assert.Equal(t, "Go", goRecord.Lang)
	assert.Equal(t, 1, goRecord.Wins)
	require.NotNil(t, goRecord.TiobeRank)
	assert.Equal(t, 8, *goRecord.TiobeRank)
	assert.InDelta(t, 2.0, goRecord.TiobeShare, 1e-12)
	require.NotNil(t, goRecord.TiobeTrend)
	assert.InDelta(t, 0.3, *goRecord.TiobeTrend, 1e-12)
	require.NotNil(t, goRecord.PyplRank)
	assert.Equal(t, 12, *goRecord.PyplRank)
	assert.Nil(t, goRecord.LanguishRank, "absent source keeps neutral defaults")
	assert.Zero(t, goRecord.LanguishShare)
	assert.Nil(t, goRecord.LanguishTrend)
	require.NotNil(t, goRecord.BenchmarkScore)
	assert.InDelta(t, 0.5, *goRecord.BenchmarkScore, 1e-12)
	require.NotNil(t, goRecord.TechempowerScore)
	assert.InDelta(t, 4.8, *goRecord.TechempowerScore, 1e-12)
	assert.InDelta(t, 0.65, goRecord.PerfScore, 1e-12)
	assert.True(t, goRecord.HasPerfSignal())

	cobolRecord := records[1]
	assert.Equal(t, 2, cobolRecord.Position)
	require.NotNil(t, cobolRecord.TiobeRank)
	assert.Equal(t, 20, *cobolRecord.TiobeRank)
	assert.Nil(t, cobolRecord.TiobeTrend)
	assert.Nil(t, cobolRecord.PyplRank)
	assert.Nil(t, cobolRecord.BenchmarkScore)
	assert.Nil(t, cobolRecord.TechempowerScore)
	assert.Zero(t, cobolRecord.PerfScore)
	assert.False(t, cobolRecord.HasPerfSignal())
}

// TestBuildRecords_FigureIndependence mutates the source entries after the
// records are built; the copied figures must not change.
func TestBuildRecords_FigureIndependence(t *testing.T) {
	ranked := []RankedCandidate{{Position: 1, Lang: "Go", Wins: 0}}
	tiobe := []RankingEntry{
		{Lang: "Go", Rank: intPtr(8), Share: 2.0, Trend: floatPtr(0.3)},
	}

	records := BuildRecords(ranked, tiobe, nil, nil, PerformanceProfile{})

	*tiobe[0].Rank = 99
	*tiobe[0].Trend = -5.0

	require.Len(t, records, 1)
	assert.Equal(t, 8, *records[0].TiobeRank)
	assert.InDelta(t, 0.3, *records[0].TiobeTrend, 1e-12)
}

func TestBuildRecords_Empty(t *testing.T) {
	records := BuildRecords(nil, nil, nil, nil, PerformanceProfile{})
	assert.Empty(t, records)
}

func TestSchulzeRecordHasPerfSignal(t *testing.T) {
	score := 0.5

	tests := []struct {
		name     string
		record   SchulzeRecord
		expected bool
	}{
		{
			name:     "no performance data",
			record:   SchulzeRecord{Lang: "COBOL"},
			expected: false,
		},
		{
			name:     "benchmark only",
			record:   SchulzeRecord{Lang: "Rust", BenchmarkScore: &score},
			expected: true,
		},
		{
			name:     "throughput only",
			record:   SchulzeRecord{Lang: "PHP", TechempowerScore: &score},
			expected: true,
		},
		{
			name:     "both signals",
			record:   SchulzeRecord{Lang: "Go", BenchmarkScore: &score, TechempowerScore: &score},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.HasPerfSignal())
		})
	}
}
