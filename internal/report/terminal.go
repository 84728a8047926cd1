package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/ahrav/go-langrank/internal/domain"
)

// SummaryPaths records where each artifact of the run was written. An empty
// string means the artifact was not saved.
type SummaryPaths struct {
	Benchmarks string
	Rankings   string
	Schulze    string
	HTML       string
}

// Summary carries everything the end-of-run terminal report prints.
type Summary struct {
	// TiobeCount, PyplCount, and LanguishCount are the aggregated entry
	// counts per popularity source. PyplCount reflects what the source
	// itself listed, before any combined entry is split.
	TiobeCount    int
	PyplCount     int
	LanguishCount int

	// BenchmarkCount and TechempowerCount are the numbers of languages
	// that ended up with a score from each performance signal.
	BenchmarkCount   int
	TechempowerCount int

	StartedAt time.Time
	Paths     SummaryPaths
	Records   []domain.SchulzeRecord

	// FullOutput switches the Schulze table from the compact top-10 view
	// to every row and column.
	FullOutput bool
}

const summaryBanner = "====================== LangRank Update ======================"

var (
	bannerColor    = color.New(color.FgHiCyan, color.Bold)
	labelColor     = color.New(color.FgHiYellow, color.Bold)
	valueColor     = color.New(color.FgHiWhite)
	headingColor   = color.New(color.FgHiMagenta, color.Bold)
	tableHeadColor = color.New(color.FgHiWhite, color.Bold)
	rowColor       = color.New(color.FgHiGreen)
	mutedColor     = color.New(color.FgHiBlack)
	dividerColor   = color.New(color.FgHiCyan)
)

// WriteSummary prints the end-of-run report: banner, run start time, source
// entry counts, artifact path lines, and the Schulze table followed by a
// divider matching the widest printed line.
func WriteSummary(w io.Writer, s *Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bannerColor.Sprint(summaryBanner))
	fmt.Fprintf(w, "%s %s\n",
		labelColor.Sprint("Run started"),
		valueColor.Sprint(s.StartedAt.Format("2006-01-02 15:04:05 MST")))
	fmt.Fprintf(w, "%s %s | %s | %s | %s | %s\n",
		labelColor.Sprint("Sources"),
		valueColor.Sprintf("TIOBE: %d", s.TiobeCount),
		valueColor.Sprintf("PYPL: %d", s.PyplCount),
		valueColor.Sprintf("Languish: %d", s.LanguishCount),
		valueColor.Sprintf("Benchmarks: %d", s.BenchmarkCount),
		valueColor.Sprintf("TechEmpower: %d", s.TechempowerCount))
	writePathLine(w, "Benchmarks CSV", s.Paths.Benchmarks, "not saved (use --save-benchmarks)")
	writePathLine(w, "Combined CSV", s.Paths.Rankings, "not saved (use --save-rankings)")
	writePathLine(w, "Schulze CSV", s.Paths.Schulze, "not saved (use --save-schulze)")
	writePathLine(w, "HTML Report", s.Paths.HTML, "not saved (use --save-html)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingColor.Sprint("Schulze Ranking"))
	width := writeSchulzeTable(w, s.Records, s.FullOutput)
	if width > 0 {
		fmt.Fprintln(w, dividerColor.Sprint(strings.Repeat("=", width)))
	}
}

func writePathLine(w io.Writer, label, path, hint string) {
	if path == "" {
		fmt.Fprintf(w, "%s %s\n", labelColor.Sprint(label), mutedColor.Sprint(hint))
		return
	}
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint(label), valueColor.Sprint(path))
}

// writeSchulzeTable prints either table variant and reports the display
// width of the widest line so the caller can size the closing divider.
func writeSchulzeTable(w io.Writer, records []domain.SchulzeRecord, fullOutput bool) int {
	if len(records) == 0 {
		message := "No Schulze data available."
		fmt.Fprintln(w, mutedColor.Sprint(message))
		return runewidth.StringWidth(message)
	}
	if fullOutput {
		return writeFullTable(w, records)
	}
	return writeCompactTable(w, records)
}

const (
	langColumnWidth = 13

	fullTableFormat = "%3s | %s | %6s | %6s | %7s | %6s | %6s | %7s | %6s | %6s | %7s | %6s | %6s | %6s | %4s"
	fullTableRule   = "----+---------------+--------+--------+---------+--------+--------+---------+--------+--------+---------+------+------+------+------+"

	compactTableHeader = "Pos | Language      | TIOBE% | PYPL% | LANG% | BG | TE | Perf | Wins"
	compactTableRule   = "----+---------------+--------+-------+------+----+----+------+------"
	compactRowLimit    = 10
)

func writeFullTable(w io.Writer, records []domain.SchulzeRecord) int {
	header := fmt.Sprintf(fullTableFormat,
		"Pos", runewidth.FillRight("Language", langColumnWidth),
		"T Rank", "T%", "T Trend",
		"P Rank", "P%", "P Trend",
		"L Rank", "L%", "L Trend",
		"BG", "TE", "Perf", "Wins")
	maxWidth := max(runewidth.StringWidth(header), len(fullTableRule))
	fmt.Fprintln(w, tableHeadColor.Sprint(header))
	fmt.Fprintln(w, mutedColor.Sprint(fullTableRule))

	for i := range records {
		r := &records[i]
		line := fmt.Sprintf(fullTableFormat,
			strconv.Itoa(r.Position),
			runewidth.FillRight(r.Lang, langColumnWidth),
			FormatRank(r.TiobeRank),
			fmt.Sprintf("%.2f", r.TiobeShare),
			FormatTrend(r.TiobeTrend),
			FormatRank(r.PyplRank),
			fmt.Sprintf("%.2f", r.PyplShare),
			FormatTrend(r.PyplTrend),
			FormatRank(r.LanguishRank),
			fmt.Sprintf("%.2f", r.LanguishShare),
			FormatTrend(r.LanguishTrend),
			FormatScore(r.BenchmarkScore),
			FormatScore(r.TechempowerScore),
			FormatPerf(r),
			strconv.Itoa(r.Wins))
		maxWidth = max(maxWidth, runewidth.StringWidth(line))
		fmt.Fprintln(w, rowColor.Sprint(line))
	}
	return maxWidth
}

func writeCompactTable(w io.Writer, records []domain.SchulzeRecord) int {
	maxWidth := max(len(compactTableHeader), len(compactTableRule))
	fmt.Fprintln(w, tableHeadColor.Sprint(compactTableHeader))
	fmt.Fprintln(w, mutedColor.Sprint(compactTableRule))

	shown := min(len(records), compactRowLimit)
	for i := range records[:shown] {
		r := &records[i]
		line := fmt.Sprintf("%3d | %s | %6.2f | %5.2f | %5.2f | %4s | %4s | %4s | %4d",
			r.Position,
			runewidth.FillRight(r.Lang, langColumnWidth),
			r.TiobeShare,
			r.PyplShare,
			r.LanguishShare,
			FormatScore(r.BenchmarkScore),
			FormatScore(r.TechempowerScore),
			FormatPerf(r),
			r.Wins)
		maxWidth = max(maxWidth, runewidth.StringWidth(line))
		fmt.Fprintln(w, rowColor.Sprint(line))
	}
	if len(records) > compactRowLimit {
		message := fmt.Sprintf("... %d more entries (use --full-output to display all).",
			len(records)-compactRowLimit)
		maxWidth = max(maxWidth, runewidth.StringWidth(message))
		fmt.Fprintln(w, mutedColor.Sprint(message))
	}
	return maxWidth
}
