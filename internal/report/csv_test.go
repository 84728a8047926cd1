package report

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-langrank/internal/domain"
)

func TestWriteRankingsCSV(t *testing.T) {
	sources := []SourceRankings{
		{Source: "tiobe", Entries: []domain.RankingEntry{
			{Lang: "Python", Rank: intPtr(1), Share: 30.5, Trend: floatPtr(1.25)},
			{Lang: "Go", Rank: intPtr(8), Share: 2},
		}},
		{Source: "pypl", Entries: []domain.RankingEntry{
			{Lang: "Python", Share: 28},
		}},
	}

	path := filepath.Join(t.TempDir(), "out", "rankings.csv")
	written, err := WriteRankingsCSV(path, sources, false)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t,
		"source,lang,rank,share,trend\n"+
			"tiobe,Python,1,30.5,1.25\n"+
			"tiobe,Go,8,2,\n"+
			"pypl,Python,,28,\n",
		string(data))
}

func TestWriteSchulzeCSV(t *testing.T) {
	records := []domain.SchulzeRecord{
		{
			Position: 1, Lang: "Python",
			TiobeRank: intPtr(1), TiobeShare: 30, TiobeTrend: floatPtr(1.0),
			PyplRank: intPtr(1), PyplShare: 28, PyplTrend: floatPtr(-0.3),
			LanguishRank: intPtr(1), LanguishShare: 25, LanguishTrend: floatPtr(2.0),
			BenchmarkScore:   floatPtr(0.25),
			TechempowerScore: floatPtr(3.0),
			PerfScore:        0.375,
			Wins:             2,
		},
		{
			Position: 2, Lang: "Rust",
			TiobeShare: 1, PyplShare: 1.5, LanguishShare: 3,
			BenchmarkScore: floatPtr(1.0),
			PerfScore:      1,
			Wins:           0,
		},
	}

	path := filepath.Join(t.TempDir(), "schulze.csv")
	written, err := WriteSchulzeCSV(path, records, false)
	require.NoError(t, err)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t,
		"position,lang,tiobe_rank,tiobe_share,tiobe_trend,"+
			"pypl_rank,pypl_share,pypl_trend,"+
			"languish_rank,languish_share,languish_trend,"+
			"benchmark_score,techempower_score,perf_score,schulze_wins\n"+
			"1,Python,1,30,1,1,28,-0.3,1,25,2,0.25,3,0.375,2\n"+
			"2,Rust,,1,,,1.5,,,3,,1,,1,0\n",
		string(data))
}

func TestWriteBenchmarksCSV(t *testing.T) {
	raw := []byte("lang,name,status,elapsed-time(s)\ngo,nbody,0,2.1\n")

	path := filepath.Join(t.TempDir(), "nested", "dir", "benchmarksgame.csv")
	written, err := WriteBenchmarksCSV(path, raw, false)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestWriteArtifact_Archive(t *testing.T) {
	raw := []byte("lang,name\ngo,nbody\n")

	path := filepath.Join(t.TempDir(), "benchmarksgame.csv")
	written, err := WriteBenchmarksCSV(path, raw, true)
	require.NoError(t, err)
	assert.Equal(t, path+".gz", written)

	// The plain path must not exist; only the archived artifact does.
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer gz.Close()
	decompressed, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, raw, decompressed)
}

func TestWriteRankingsCSV_ArchiveRoundTrip(t *testing.T) {
	sources := []SourceRankings{
		{Source: "languish", Entries: []domain.RankingEntry{
			{Lang: "Go", Rank: intPtr(5), Share: 5, Trend: floatPtr(0.1)},
		}},
	}

	dir := t.TempDir()
	plain, err := WriteRankingsCSV(filepath.Join(dir, "plain.csv"), sources, false)
	require.NoError(t, err)
	archived, err := WriteRankingsCSV(filepath.Join(dir, "archived.csv"), sources, true)
	require.NoError(t, err)

	plainData, err := os.ReadFile(plain)
	require.NoError(t, err)
	archivedData, err := os.ReadFile(archived)
	require.NoError(t, err)

	gz, err := gzip.NewReader(bytes.NewReader(archivedData))
	require.NoError(t, err)
	defer gz.Close()
	decompressed, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, plainData, decompressed)
}
