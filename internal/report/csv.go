package report

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ahrav/go-langrank/internal/domain"
)

// SourceRankings pairs a popularity source's identifier with its aggregated
// entries for the combined rankings export.
type SourceRankings struct {
	Source  string
	Entries []domain.RankingEntry
}

// WriteRankingsCSV exports the per-source popularity tables as one combined
// CSV with columns source, lang, rank, share, trend. Optional fields are
// empty cells. It returns the path actually written, which gains a ".gz"
// suffix when archive is set.
func WriteRankingsCSV(path string, sources []SourceRankings, archive bool) (string, error) {
	rows := [][]string{{"source", "lang", "rank", "share", "trend"}}
	for _, src := range sources {
		for _, e := range src.Entries {
			rows = append(rows, []string{
				src.Source,
				e.Lang,
				csvOptionalInt(e.Rank),
				csvFloat(e.Share),
				csvOptionalFloat(e.Trend),
			})
		}
	}
	data, err := encodeRows(rows)
	if err != nil {
		return "", fmt.Errorf("encode rankings csv: %w", err)
	}
	return writeArtifact(path, data, archive)
}

var schulzeHeader = []string{
	"position", "lang",
	"tiobe_rank", "tiobe_share", "tiobe_trend",
	"pypl_rank", "pypl_share", "pypl_trend",
	"languish_rank", "languish_share", "languish_trend",
	"benchmark_score", "techempower_score", "perf_score", "schulze_wins",
}

// WriteSchulzeCSV exports the final consensus ranking, one row per record in
// position order. It returns the path actually written.
func WriteSchulzeCSV(path string, records []domain.SchulzeRecord, archive bool) (string, error) {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, schulzeHeader)
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			strconv.Itoa(r.Position),
			r.Lang,
			csvOptionalInt(r.TiobeRank),
			csvFloat(r.TiobeShare),
			csvOptionalFloat(r.TiobeTrend),
			csvOptionalInt(r.PyplRank),
			csvFloat(r.PyplShare),
			csvOptionalFloat(r.PyplTrend),
			csvOptionalInt(r.LanguishRank),
			csvFloat(r.LanguishShare),
			csvOptionalFloat(r.LanguishTrend),
			csvOptionalFloat(r.BenchmarkScore),
			csvOptionalFloat(r.TechempowerScore),
			csvFloat(r.PerfScore),
			strconv.Itoa(r.Wins),
		})
	}
	data, err := encodeRows(rows)
	if err != nil {
		return "", fmt.Errorf("encode schulze csv: %w", err)
	}
	return writeArtifact(path, data, archive)
}

// WriteBenchmarksCSV stores the downloaded benchmark dataset verbatim. It
// returns the path actually written.
func WriteBenchmarksCSV(path string, data []byte, archive bool) (string, error) {
	return writeArtifact(path, data, archive)
}

func encodeRows(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeArtifact writes data to path, creating parent directories as needed.
// With archive set the content is gzip-compressed and ".gz" appended to the
// path before writing.
func writeArtifact(path string, data []byte, archive bool) (string, error) {
	if archive {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(data); err != nil {
			return "", fmt.Errorf("compress %s: %w", path, err)
		}
		if err := gz.Close(); err != nil {
			return "", fmt.Errorf("compress %s: %w", path, err)
		}
		data = buf.Bytes()
		path += ".gz"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// csvFloat keeps full round-trip precision so exports stay loss-free.
func csvFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func csvOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func csvOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return csvFloat(*v)
}
