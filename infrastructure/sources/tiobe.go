package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/ahrav/go-langrank/internal/domain"
	"github.com/ahrav/go-langrank/internal/ports"
)

var _ ports.PopularitySource = (*TiobeSource)(nil)

// tiobeSourceName identifies this source in errors and metrics.
const tiobeSourceName = "tiobe"

// DefaultTiobeURL is the public TIOBE index page.
const DefaultTiobeURL = "https://www.tiobe.com/tiobe-index/"

// TiobeConfig defines the configuration parameters for the TIOBE scraper.
type TiobeConfig struct {
	// URL is the index page to scrape.
	URL string `yaml:"url" json:"url" validate:"required,url"`
}

// DefaultTiobeConfig returns a configuration pointing at the public index.
func DefaultTiobeConfig() TiobeConfig {
	return TiobeConfig{URL: DefaultTiobeURL}
}

// TiobeSource scrapes the TIOBE index page. Samples come from two tables:
// the top-20 table (rank, share, and trend columns) and the "other
// languages" table below it, which carries no trend column.
type TiobeSource struct {
	config  TiobeConfig
	fetcher ports.Fetcher
}

// NewTiobeSource validates the configuration and returns a TIOBE source
// that downloads through fetcher.
func NewTiobeSource(config TiobeConfig, fetcher ports.Fetcher) (*TiobeSource, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid TIOBE config: %w", err)
	}
	if fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}
	return &TiobeSource{config: config, fetcher: fetcher}, nil
}

// Name implements ports.PopularitySource.
func (s *TiobeSource) Name() string { return tiobeSourceName }

// Fetch downloads the index page and extracts one raw sample per table row.
// A page without either ranking table yields no samples and no error; the
// pipeline's candidate selection handles starved sources.
func (s *TiobeSource) Fetch(ctx context.Context) ([]domain.RawSample, error) {
	body, err := s.fetcher.Fetch(ctx, s.config.URL)
	if err != nil {
		return nil, ports.NewSourceError(tiobeSourceName, "fetch", err)
	}

	samples, err := parseTiobePage(body)
	if err != nil {
		return nil, ports.NewSourceError(tiobeSourceName, "parse", err)
	}
	return samples, nil
}

func parseTiobePage(body []byte) ([]domain.RawSample, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("malformed index page: %w", err)
	}

	var samples []domain.RawSample

	topTable := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "table" && hasClasses(n, "table", "table-striped", "table-top20")
	})
	if topTable != nil {
		samples = append(samples, topTableSamples(topTable)...)
	}

	otherTable := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "table" && attrValue(n, "id") == "otherPL"
	})
	if otherTable != nil {
		samples = append(samples, otherTableSamples(otherTable)...)
	}

	return samples, nil
}

// topTableSamples reads the top-20 table. The page layout shifted once
// already: the current layout puts the language name in the fifth cell
// (after two trend-arrow cells and a logo cell), the fallback handles the
// six-cell layout with the name in the fourth.
func topTableSamples(table *html.Node) []domain.RawSample {
	rows := findAll(table, element("tr"))
	if len(rows) < 2 {
		return nil
	}

	var samples []domain.RawSample
	for _, row := range rows[1:] {
		cells := cellTexts(row)
		switch {
		case len(cells) >= 7:
			samples = append(samples, rowSample(cells[0], cells[4], cells[5], cells[6]))
		case len(cells) >= 6:
			samples = append(samples, rowSample(cells[0], cells[3], cells[4], cells[5]))
		}
	}
	return samples
}

// otherTableSamples reads the "other languages" table, which lists rank,
// name, and share only.
func otherTableSamples(table *html.Node) []domain.RawSample {
	rows := findAll(table, element("tr"))
	if len(rows) < 2 {
		return nil
	}

	var samples []domain.RawSample
	for _, row := range rows[1:] {
		cells := cellTexts(row)
		if len(cells) <= 2 {
			continue
		}
		share, _ := parsePercent(cells[2])
		samples = append(samples, domain.RawSample{
			Label: cells[1],
			Rank:  parseRank(cells[0]),
			Share: share,
		})
	}
	return samples
}

func rowSample(rankCell, labelCell, shareCell, trendCell string) domain.RawSample {
	share, _ := parsePercent(shareCell)
	sample := domain.RawSample{
		Label: labelCell,
		Rank:  parseRank(rankCell),
		Share: share,
	}
	if trend, ok := parsePercent(trendCell); ok {
		sample.Trend = &trend
	}
	return sample
}
