package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ahrav/go-langrank/internal/domain"
	"github.com/ahrav/go-langrank/internal/ports"
)

var _ ports.PopularitySource = (*PyplSource)(nil)

// pyplSourceName identifies this source in errors and metrics.
const pyplSourceName = "pypl"

// DefaultPyplURL is the public PYPL index page.
const DefaultPyplURL = "https://pypl.github.io/PYPL.html"

// Markers bracketing the "All" section of the page, inside which the
// ranking table lives as an escaped JavaScript string built line by line.
const (
	pyplStartMarker = "<!-- begin section All-->"
	pyplEndMarker   = "<!-- end section All-->"
)

// PyplConfig defines the configuration parameters for the PYPL scraper.
type PyplConfig struct {
	// URL is the index page to scrape.
	URL string `yaml:"url" json:"url" validate:"required,url"`
}

// DefaultPyplConfig returns a configuration pointing at the public index.
func DefaultPyplConfig() PyplConfig {
	return PyplConfig{URL: DefaultPyplURL}
}

// PyplSource scrapes the PYPL index page. The ranking is not served as a
// plain table: the page embeds it as JavaScript string concatenation, one
// escaped table row per line, between two HTML comment markers. Each line
// is unescaped back into a row fragment and parsed individually.
type PyplSource struct {
	config  PyplConfig
	fetcher ports.Fetcher
}

// NewPyplSource validates the configuration and returns a PYPL source that
// downloads through fetcher.
func NewPyplSource(config PyplConfig, fetcher ports.Fetcher) (*PyplSource, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid PYPL config: %w", err)
	}
	if fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}
	return &PyplSource{config: config, fetcher: fetcher}, nil
}

// Name implements ports.PopularitySource.
func (s *PyplSource) Name() string { return pyplSourceName }

// Fetch downloads the index page and extracts one raw sample per embedded
// table row. Missing or reordered section markers are structural failures.
func (s *PyplSource) Fetch(ctx context.Context) ([]domain.RawSample, error) {
	body, err := s.fetcher.Fetch(ctx, s.config.URL)
	if err != nil {
		return nil, ports.NewSourceError(pyplSourceName, "fetch", err)
	}

	samples, err := parsePyplPage(string(body))
	if err != nil {
		return nil, ports.NewSourceError(pyplSourceName, "parse", err)
	}
	return samples, nil
}

func parsePyplPage(page string) ([]domain.RawSample, error) {
	start := strings.Index(page, pyplStartMarker)
	if start < 0 {
		return nil, errors.New("start marker not found")
	}
	start += len(pyplStartMarker)
	end := strings.Index(page, pyplEndMarker)
	if end < 0 {
		return nil, errors.New("end marker not found")
	}
	if start >= end {
		return nil, errors.New("section markers are in unexpected order")
	}

	var samples []domain.RawSample
	for _, line := range strings.Split(page[start:end], "\n") {
		cells, ok := pyplRowCells(line)
		if !ok || len(cells) < 5 {
			continue
		}
		share, _ := parsePercent(cells[3])
		sample := domain.RawSample{
			Label: cells[2],
			Rank:  parseRank(cells[0]),
			Share: share,
		}
		if trend, ok := parsePercent(cells[4]); ok {
			sample.Trend = &trend
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// pyplRowCells turns one line of the embedded JavaScript table into cell
// texts. Continuation backslashes and concatenation scaffolding lines are
// skipped, escaped quotes restored, and the fragment wrapped into a full
// row before parsing.
func pyplRowCells(line string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed == `\` || strings.Contains(trimmed, `" + table + "`) {
		return nil, false
	}

	cleaned := strings.ReplaceAll(strings.TrimRight(trimmed, `\`), `\"`, `"`)
	if !strings.HasPrefix(cleaned, "<tr") {
		cleaned = "<tr>" + cleaned
	}
	if !strings.HasSuffix(cleaned, "</tr>") {
		cleaned += "</tr>"
	}

	row, err := html.Parse(strings.NewReader("<table>" + cleaned + "</table>"))
	if err != nil {
		return nil, false
	}
	return cellTexts(row), true
}
