package report

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/ahrav/go-langrank/internal/domain"
)

// HTMLContext carries everything the standalone HTML report needs. Counts
// have the same meaning as on Summary.
type HTMLContext struct {
	Version string

	TiobeCount       int
	PyplCount        int
	LanguishCount    int
	BenchmarkCount   int
	TechempowerCount int

	StartedAt time.Time
	Records   []domain.SchulzeRecord

	// FullOutput renders every row with the per-source rank and trend
	// columns; otherwise the report shows the compact top-10 table.
	FullOutput bool

	// ArchiveCSV notes that saved CSV downloads are gzip-compressed.
	ArchiveCSV bool

	// Paths locates the saved CSV artifacts for the downloads section.
	// The HTML field is ignored; the report does not link to itself.
	Paths SummaryPaths
}

// WriteHTML renders the report and writes it to path, creating parent
// directories as needed. It returns the path actually written.
func WriteHTML(path string, ctx *HTMLContext) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, newHTMLView(path, ctx)); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return writeArtifact(path, buf.Bytes(), false)
}

type htmlView struct {
	Title       string
	Version     string
	GeneratedAt string
	Showing     string
	Hint        string
	FullOutput  bool
	Cards       []htmlCard
	Rows        []htmlRow
	Downloads   []htmlDownload
	AnySaved    bool
	ArchiveCSV  bool
}

type htmlCard struct {
	Label string
	Value int
}

type htmlSourceCells struct {
	Rank       string
	Share      string
	Trend      string
	TrendClass string
}

type htmlRow struct {
	Position int
	Lang     string
	Tiobe    htmlSourceCells
	Pypl     htmlSourceCells
	Languish htmlSourceCells
	BG       string
	TE       string
	Perf     string
	Wins     int
}

type htmlDownload struct {
	Label string
	Path  string
	Name  string
	Href  string
}

const compactHTMLRowLimit = 10

func newHTMLView(outputPath string, ctx *HTMLContext) *htmlView {
	total := len(ctx.Records)
	shown := total
	showing := fmt.Sprintf("Showing all %d languages", total)
	hint := ""
	if !ctx.FullOutput {
		shown = min(total, compactHTMLRowLimit)
		showing = fmt.Sprintf("Showing top %d of %d languages", shown, total)
		hint = "Run with --full-output to include the full table."
	}

	rows := make([]htmlRow, 0, shown)
	for i := range ctx.Records[:shown] {
		rows = append(rows, newHTMLRow(&ctx.Records[i]))
	}

	downloads := []htmlDownload{
		newHTMLDownload("Schulze CSV", ctx.Paths.Schulze, outputPath),
		newHTMLDownload("Combined CSV", ctx.Paths.Rankings, outputPath),
		newHTMLDownload("Benchmarks CSV", ctx.Paths.Benchmarks, outputPath),
	}
	anySaved := false
	for _, d := range downloads {
		if d.Path != "" {
			anySaved = true
		}
	}

	return &htmlView{
		Title:       "LangRank Report - " + ctx.StartedAt.Format("2006-01-02"),
		Version:     ctx.Version,
		GeneratedAt: ctx.StartedAt.Format("2006-01-02 15:04:05 MST"),
		Showing:     showing,
		Hint:        hint,
		FullOutput:  ctx.FullOutput,
		Cards: []htmlCard{
			{Label: "Ranked languages", Value: total},
			{Label: "TIOBE entries", Value: ctx.TiobeCount},
			{Label: "PYPL entries", Value: ctx.PyplCount},
			{Label: "Languish entries", Value: ctx.LanguishCount},
			{Label: "Benchmarks langs", Value: ctx.BenchmarkCount},
			{Label: "TechEmpower langs", Value: ctx.TechempowerCount},
		},
		Rows:       rows,
		Downloads:  downloads,
		AnySaved:   anySaved,
		ArchiveCSV: ctx.ArchiveCSV,
	}
}

func newHTMLRow(r *domain.SchulzeRecord) htmlRow {
	return htmlRow{
		Position: r.Position,
		Lang:     r.Lang,
		Tiobe: htmlSourceCells{
			Rank:       FormatRank(r.TiobeRank),
			Share:      fmt.Sprintf("%.2f", r.TiobeShare),
			Trend:      FormatTrend(r.TiobeTrend),
			TrendClass: TrendClass(r.TiobeTrend),
		},
		Pypl: htmlSourceCells{
			Rank:       FormatRank(r.PyplRank),
			Share:      fmt.Sprintf("%.2f", r.PyplShare),
			Trend:      FormatTrend(r.PyplTrend),
			TrendClass: TrendClass(r.PyplTrend),
		},
		Languish: htmlSourceCells{
			Rank:       FormatRank(r.LanguishRank),
			Share:      fmt.Sprintf("%.2f", r.LanguishShare),
			Trend:      FormatTrend(r.LanguishTrend),
			TrendClass: TrendClass(r.LanguishTrend),
		},
		BG:   FormatScore(r.BenchmarkScore),
		TE:   FormatScore(r.TechempowerScore),
		Perf: FormatPerf(r),
		Wins: r.Wins,
	}
}

// newHTMLDownload links a saved artifact by bare file name when it sits in
// the same directory as the report, so published copies keep working. Any
// other location renders as plain text carrying the full path in its title.
func newHTMLDownload(label, path, outputPath string) htmlDownload {
	d := htmlDownload{Label: label, Path: path}
	if path == "" {
		return d
	}
	d.Name = filepath.Base(path)
	if filepath.Dir(path) == filepath.Dir(outputPath) {
		d.Href = d.Name
	}
	return d
}

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateText))

const reportTemplateText = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<meta name="description" content="LangRank ranks programming languages with the Schulze method, blending popularity and performance data from major indexes.">
<meta name="color-scheme" content="light">
<style>
:root {
  color-scheme: light;
  --bg: #f6f3ec;
  --ink: #1f1b16;
  --muted: #6b635b;
  --card: #ffffff;
  --accent: #e07a5f;
  --accent-strong: #c25335;
  --accent-cool: #3d405b;
  --border: #e2d6c6;
}
* { box-sizing: border-box; }
body {
  margin: 0;
  font-family: "Segoe UI", system-ui, sans-serif;
  color: var(--ink);
  background: linear-gradient(150deg, var(--bg), #efe7db);
}
.page { max-width: 1100px; margin: 0 auto; padding: 40px 24px 56px; }
.hero {
  background: var(--card);
  border: 1px solid var(--border);
  border-radius: 20px;
  padding: 28px 32px;
}
.hero-top { display: flex; justify-content: space-between; align-items: center; flex-wrap: wrap; gap: 12px; }
.pill {
  display: inline-block;
  padding: 5px 12px;
  border-radius: 999px;
  background: rgba(61, 64, 91, 0.12);
  color: var(--accent-cool);
  font-size: 12px;
  font-weight: 600;
  letter-spacing: 0.08em;
  text-transform: uppercase;
}
.repo-link { color: var(--accent-cool); font-size: 13px; font-weight: 600; text-decoration: none; }
.repo-link:hover { color: var(--accent-strong); }
h1 { font-family: Georgia, serif; font-size: 2.4rem; margin: 14px 0 6px; }
.subtitle { margin: 0 0 14px; color: var(--muted); max-width: 640px; line-height: 1.5; }
.subtitle a { color: inherit; font-weight: 600; }
.meta { display: flex; gap: 28px; flex-wrap: wrap; }
.meta .label {
  display: block;
  font-size: 11px;
  text-transform: uppercase;
  letter-spacing: 0.1em;
  color: var(--muted);
}
.meta .value { font-weight: 600; font-family: ui-monospace, monospace; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 14px; margin: 24px 0; }
.card {
  background: var(--card);
  border: 1px solid var(--border);
  border-radius: 14px;
  padding: 14px 16px;
}
.card-label { font-size: 11px; text-transform: uppercase; letter-spacing: 0.1em; color: var(--muted); }
.card-value { font-size: 24px; font-weight: 600; color: var(--accent-cool); }
.table-section h2 { font-family: Georgia, serif; margin: 24px 0 4px; }
.hint { color: var(--muted); font-size: 13px; margin-bottom: 12px; }
.table-wrap {
  border: 1px solid var(--border);
  border-radius: 14px;
  background: var(--card);
  overflow: auto;
}
table { width: 100%; border-collapse: collapse; min-width: 720px; }
thead th {
  position: sticky;
  top: 0;
  background: var(--accent-cool);
  color: #f8fafc;
  font-size: 12px;
  text-transform: uppercase;
  letter-spacing: 0.06em;
  text-align: left;
  padding: 12px 14px;
  cursor: pointer;
  white-space: nowrap;
}
tbody td { padding: 10px 14px; border-top: 1px solid var(--border); font-size: 14px; }
tbody tr:nth-child(even) { background: #f9f8f3; }
tbody tr:hover { background: #fbefec; }
.num { text-align: right; font-variant-numeric: tabular-nums; font-family: ui-monospace, monospace; }
.lang { font-weight: 600; }
.trend { display: inline-block; padding: 2px 8px; border-radius: 999px; font-size: 12px; font-weight: 600; }
.trend.up { background: rgba(129, 178, 154, 0.2); color: #2f6f54; }
.trend.down { background: rgba(224, 122, 95, 0.22); color: #8b2d17; }
.trend.neutral { background: rgba(61, 64, 91, 0.12); color: var(--accent-cool); }
.downloads {
  background: var(--card);
  border: 1px solid var(--border);
  border-radius: 14px;
  padding: 18px 22px;
  margin-top: 24px;
}
.downloads h3 { margin: 0 0 10px; font-family: Georgia, serif; }
.download-list { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 10px; }
.download-item { border: 1px solid var(--border); border-radius: 10px; padding: 10px 12px; background: rgba(246, 243, 236, 0.6); }
.download-label { font-size: 11px; text-transform: uppercase; letter-spacing: 0.08em; color: var(--muted); }
.download-item a, .download-path { color: var(--accent-strong); font-weight: 600; text-decoration: none; word-break: break-all; }
.download-item a:hover { text-decoration: underline; }
.muted { color: var(--muted); font-size: 13px; }
.footer { margin-top: 24px; color: var(--muted); font-size: 13px; text-align: center; }
.footer a { color: inherit; font-weight: 600; }
</style>
</head>
<body>
<div class="page">
<header class="hero">
  <div class="hero-top">
    <span class="pill">LangRank v{{.Version}}</span>
    <a class="repo-link" href="https://github.com/ahrav/go-langrank" target="_blank" rel="noopener">GitHub</a>
  </div>
  <h1>LangRank Report</h1>
  <p class="subtitle">Aggregated language popularity and performance ranking using the
    <a href="https://en.wikipedia.org/wiki/Schulze_method" target="_blank" rel="noopener noreferrer">Schulze method</a>.</p>
  <div class="meta">
    <div><span class="label">Generated</span><span class="value">{{.GeneratedAt}}</span></div>
    <div><span class="label">Coverage</span><span class="value">{{.Showing}}</span></div>
  </div>
</header>

<section class="cards">
{{range .Cards}}  <div class="card"><div class="card-label">{{.Label}}</div><div class="card-value">{{.Value}}</div></div>
{{end}}</section>

<section class="table-section">
  <h2>Schulze Ranking</h2>
{{if .Hint}}  <div class="hint">{{.Hint}}</div>
{{end}}  <div class="table-wrap">
  <table id="ranking">
{{if .FullOutput}}    <thead><tr>
      <th data-sort="num">Pos</th><th data-sort="text">Language</th>
      <th data-sort="num">T Rank</th><th data-sort="num">T Share</th><th data-sort="num">T Trend</th>
      <th data-sort="num">P Rank</th><th data-sort="num">P Share</th><th data-sort="num">P Trend</th>
      <th data-sort="num">L Rank</th><th data-sort="num">L Share</th><th data-sort="num">L Trend</th>
      <th data-sort="num">BG</th><th data-sort="num">TE</th><th data-sort="num">Perf</th><th data-sort="num">Wins</th>
    </tr></thead>
    <tbody>
{{range .Rows}}    <tr>
      <td class="num">{{.Position}}</td><td class="lang">{{.Lang}}</td>
      <td class="num">{{.Tiobe.Rank}}</td><td class="num">{{.Tiobe.Share}}</td><td><span class="trend {{.Tiobe.TrendClass}}">{{.Tiobe.Trend}}</span></td>
      <td class="num">{{.Pypl.Rank}}</td><td class="num">{{.Pypl.Share}}</td><td><span class="trend {{.Pypl.TrendClass}}">{{.Pypl.Trend}}</span></td>
      <td class="num">{{.Languish.Rank}}</td><td class="num">{{.Languish.Share}}</td><td><span class="trend {{.Languish.TrendClass}}">{{.Languish.Trend}}</span></td>
      <td class="num">{{.BG}}</td><td class="num">{{.TE}}</td><td class="num">{{.Perf}}</td><td class="num">{{.Wins}}</td>
    </tr>
{{end}}    </tbody>
{{else}}    <thead><tr>
      <th data-sort="num">Pos</th><th data-sort="text">Language</th>
      <th data-sort="num">TIOBE %</th><th data-sort="num">PYPL %</th><th data-sort="num">Languish %</th>
      <th data-sort="num">BG</th><th data-sort="num">TE</th><th data-sort="num">Perf</th><th data-sort="num">Wins</th>
    </tr></thead>
    <tbody>
{{range .Rows}}    <tr>
      <td class="num">{{.Position}}</td><td class="lang">{{.Lang}}</td>
      <td class="num">{{.Tiobe.Share}}</td><td class="num">{{.Pypl.Share}}</td><td class="num">{{.Languish.Share}}</td>
      <td class="num">{{.BG}}</td><td class="num">{{.TE}}</td><td class="num">{{.Perf}}</td><td class="num">{{.Wins}}</td>
    </tr>
{{end}}    </tbody>
{{end}}  </table>
  </div>
</section>

<section class="downloads">
  <h3>Downloads</h3>
{{if not .AnySaved}}  <p class="muted">No CSV files were saved. Use --save-schulze, --save-rankings, or --save-benchmarks.</p>
{{else}}  <div class="download-list">
{{range .Downloads}}    <div class="download-item"><div class="download-label">{{.Label}}</div>
{{if not .Path}}      <span class="download-path muted">Not saved</span>
{{else if .Href}}      <a href="{{.Href}}" title="{{.Path}}">{{.Name}}</a>
{{else}}      <span class="download-path" title="{{.Path}}">{{.Name}}</span>
{{end}}    </div>
{{end}}  </div>
{{end}}{{if .ArchiveCSV}}  <p class="muted">Saved CSV downloads are gzip-compressed (.gz).</p>
{{end}}</section>

<footer class="footer">
  Sources:
  <a href="https://www.tiobe.com/tiobe-index/" target="_blank" rel="noopener noreferrer">TIOBE</a>,
  <a href="https://pypl.github.io/PYPL.html" target="_blank" rel="noopener noreferrer">PYPL</a>,
  <a href="https://tjpalmer.github.io/languish/" target="_blank" rel="noopener noreferrer">Languish</a>,
  <a href="https://benchmarksgame-team.pages.debian.net/benchmarksgame/box-plot-summary-charts.html" target="_blank" rel="noopener noreferrer">Benchmarks Game</a>,
  <a href="https://www.techempower.com/benchmarks/" target="_blank" rel="noopener noreferrer">TechEmpower</a>.
</footer>
</div>
<script>
(() => {
  const table = document.getElementById("ranking");
  if (!table) return;
  const tbody = table.querySelector("tbody");
  const rows = Array.from(tbody.querySelectorAll("tr"));
  rows.forEach((row, i) => { row.dataset.index = String(i); });

  const parseNum = (text) => {
    const cleaned = text.replace(/[%\s,+]/g, "");
    if (!cleaned || cleaned === "-") return Number.NaN;
    const n = Number(cleaned);
    return Number.isFinite(n) ? n : Number.NaN;
  };

  table.querySelectorAll("thead th").forEach((th, index) => {
    th.addEventListener("click", () => {
      const numeric = th.dataset.sort === "num";
      const dir = table.dataset.sortIndex === String(index) && table.dataset.sortDir === "asc" ? "desc" : "asc";
      table.dataset.sortIndex = String(index);
      table.dataset.sortDir = dir;
      const sorted = rows.slice().sort((a, b) => {
        const at = a.children[index].textContent.trim();
        const bt = b.children[index].textContent.trim();
        let cmp;
        if (numeric) {
          const av = parseNum(at);
          const bv = parseNum(bt);
          if (Number.isNaN(av) && Number.isNaN(bv)) cmp = 0;
          else if (Number.isNaN(av)) cmp = 1;
          else if (Number.isNaN(bv)) cmp = -1;
          else cmp = dir === "asc" ? av - bv : bv - av;
        } else {
          cmp = dir === "asc" ? at.localeCompare(bt) : bt.localeCompare(at);
        }
        return cmp !== 0 ? cmp : Number(a.dataset.index) - Number(b.dataset.index);
      });
      sorted.forEach((row) => tbody.appendChild(row));
    });
  });
})();
</script>
</body>
</html>
`
