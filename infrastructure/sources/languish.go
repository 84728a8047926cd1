package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/ahrav/go-langrank/internal/domain"
	"github.com/ahrav/go-langrank/internal/ports"
)

var _ ports.PopularitySource = (*LanguishSource)(nil)

// languishSourceName identifies this source in errors and metrics.
const languishSourceName = "languish"

// Default endpoints for the Languish dashboard. The dataset is not served
// separately; it ships embedded in the dashboard's main JS bundle.
const (
	DefaultLanguishPageURL = "https://tjpalmer.github.io/languish/"
	DefaultLanguishBaseURL = "https://tjpalmer.github.io"
)

// languishEpoch is the first quarter Languish itself charts; rows before
// it are partial and skew the normalization sums.
const languishEpoch = "2012Q1"

// languishMetricWeight weighs each of the four GitHub/StackOverflow
// metrics equally when blending them into one percentage.
const languishMetricWeight = 1.0

// LanguishConfig defines the configuration parameters for the Languish
// scraper.
type LanguishConfig struct {
	// PageURL is the dashboard page referencing the data bundle.
	PageURL string `yaml:"page_url" json:"page_url" validate:"required,url"`

	// BaseURL prefixes bundle paths that the page references relatively.
	BaseURL string `yaml:"base_url" json:"base_url" validate:"required,url"`
}

// DefaultLanguishConfig returns a configuration pointing at the public
// dashboard.
func DefaultLanguishConfig() LanguishConfig {
	return LanguishConfig{
		PageURL: DefaultLanguishPageURL,
		BaseURL: DefaultLanguishBaseURL,
	}
}

// LanguishSource extracts quarterly GitHub and StackOverflow activity from
// the Languish dashboard. The dashboard is a single-page app whose main JS
// chunk embeds the whole dataset as a JSON.parse literal; the source pulls
// the page, follows the chunk reference, decodes the literal, and reduces
// the latest quarter to one share percentage per language.
type LanguishSource struct {
	config  LanguishConfig
	fetcher ports.Fetcher
}

// NewLanguishSource validates the configuration and returns a Languish
// source that downloads through fetcher.
func NewLanguishSource(config LanguishConfig, fetcher ports.Fetcher) (*LanguishSource, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid Languish config: %w", err)
	}
	if fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}
	return &LanguishSource{config: config, fetcher: fetcher}, nil
}

// Name implements ports.PopularitySource.
func (s *LanguishSource) Name() string { return languishSourceName }

// Fetch downloads the dashboard, locates the main JS chunk, and decodes
// the embedded dataset into ranked raw samples. Share is the weighted mean
// of the language's metric percentages for the latest quarter; trend is
// the delta against the previous quarter when one exists.
func (s *LanguishSource) Fetch(ctx context.Context) ([]domain.RawSample, error) {
	page, err := s.fetcher.Fetch(ctx, s.config.PageURL)
	if err != nil {
		return nil, ports.NewSourceError(languishSourceName, "fetch", err)
	}

	bundleURL, err := bundleScriptURL(page, s.config.BaseURL)
	if err != nil {
		return nil, ports.NewSourceError(languishSourceName, "parse", err)
	}

	bundle, err := s.fetcher.Fetch(ctx, bundleURL)
	if err != nil {
		return nil, ports.NewSourceError(languishSourceName, "fetch", err)
	}

	samples, err := parseLanguishBundle(bundle)
	if err != nil {
		return nil, ports.NewSourceError(languishSourceName, "parse", err)
	}
	return samples, nil
}

// bundleScriptURL finds the main chunk script reference on the dashboard
// page and makes it absolute.
func bundleScriptURL(page []byte, baseURL string) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("malformed dashboard page: %w", err)
	}

	scripts := findAll(doc, func(n *html.Node) bool {
		return n.Data == "script" && hasAttr(n, "src")
	})
	for _, script := range scripts {
		src := attrValue(script, "src")
		if !strings.Contains(src, "/static/js/main") || !strings.HasSuffix(src, ".chunk.js") {
			continue
		}
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			return src, nil
		}
		return baseURL + src, nil
	}
	return "", errors.New("main chunk script not found")
}

func parseLanguishBundle(bundle []byte) ([]domain.RawSample, error) {
	payload, ok := extractJSONParsePayload(string(bundle))
	if !ok {
		return nil, errors.New("embedded JSON payload not found")
	}

	jsonText, err := decodeJSStringLiteral(payload)
	if err != nil {
		return nil, err
	}

	var tables languishPayload
	if err := json.Unmarshal([]byte(jsonText), &tables); err != nil {
		return nil, fmt.Errorf("decode dataset object: %w", err)
	}
	if len(tables.Items.Keys) == 0 {
		return nil, errors.New("missing 'items' table")
	}
	if len(tables.Sums.Keys) == 0 {
		return nil, errors.New("missing 'sums' table")
	}

	return rankLanguishEntries(tables)
}

// extractJSONParsePayload returns the raw string literal inside the
// bundle's JSON.parse('...') call. The scan honors backslash escapes and
// only treats a quote as terminal when the call's closing parenthesis
// follows it.
func extractJSONParsePayload(js string) (string, bool) {
	const needle = "JSON.parse('"
	start := strings.Index(js, needle)
	if start < 0 {
		return "", false
	}
	start += len(needle)

	escaped := false
	for i := start; i < len(js); i++ {
		switch {
		case escaped:
			escaped = false
		case js[i] == '\\':
			escaped = true
		case js[i] == '\'':
			if strings.HasPrefix(js[i+1:], ")") {
				return js[start:i], true
			}
		}
	}
	return "", false
}

// decodeJSStringLiteral turns the body of a JS single-quoted string
// literal into the text it denotes. JSON-compatible escapes are left in
// place for the later document decode; only the JS-specific ones (\' and
// \xHH) need handling here. Routing the body through a JSON string decode
// first rejects raw control characters the literal could never contain.
func decodeJSStringLiteral(encoded string) (string, error) {
	var wrapped strings.Builder
	wrapped.Grow(len(encoded) + 2)
	wrapped.WriteByte('"')
	for _, ch := range encoded {
		switch ch {
		case '"':
			wrapped.WriteString(`\"`)
		case '\\':
			wrapped.WriteString(`\\`)
		default:
			wrapped.WriteRune(ch)
		}
	}
	wrapped.WriteByte('"')

	var decoded string
	if err := json.Unmarshal([]byte(wrapped.String()), &decoded); err != nil {
		return "", fmt.Errorf("decode embedded string literal: %w", err)
	}

	decoded = strings.ReplaceAll(decoded, `\'`, `'`)
	return replaceHexEscapes(decoded), nil
}

// replaceHexEscapes rewrites JS \xHH escapes into the characters they
// denote. Anything else passes through byte for byte.
func replaceHexEscapes(input string) string {
	var out strings.Builder
	out.Grow(len(input))
	for i := 0; i < len(input); {
		if input[i] == '\\' && i+3 < len(input) && input[i+1] == 'x' {
			hi, okHi := hexValue(input[i+2])
			lo, okLo := hexValue(input[i+3])
			if okHi && okLo {
				out.WriteRune(rune(hi)<<4 | rune(lo))
				i += 4
				continue
			}
		}
		out.WriteByte(input[i])
		i++
	}
	return out.String()
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// languishPayload mirrors the embedded dataset: two column-keyed tables,
// one row per (language, quarter) and one per quarter.
type languishPayload struct {
	Items languishTable `json:"items"`
	Sums  languishTable `json:"sums"`
}

type languishTable struct {
	Keys []string `json:"keys"`
	Rows [][]any  `json:"rows"`
}

// columnIndex resolves a column name to its position in the row arrays.
func (t languishTable) columnIndex(name string) (int, error) {
	for i, key := range t.Keys {
		if key == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing column '%s'", name)
}

func rowString(row []any, idx int) (string, bool) {
	if idx >= len(row) {
		return "", false
	}
	s, ok := row[idx].(string)
	return s, ok
}

func rowNumber(row []any, idx int) float64 {
	if idx >= len(row) {
		return 0
	}
	f, ok := row[idx].(float64)
	if !ok {
		return 0
	}
	return f
}

// languishMetrics carries the four activity counters of one table row.
type languishMetrics struct {
	issues      float64
	pulls       float64
	soQuestions float64
	stars       float64
}

type languishColumns struct {
	date, issues, pulls, soQuestions, stars int
}

func (t languishTable) columns() (languishColumns, error) {
	var cols languishColumns
	var err error
	if cols.date, err = t.columnIndex("date"); err != nil {
		return cols, err
	}
	if cols.issues, err = t.columnIndex("issues"); err != nil {
		return cols, err
	}
	if cols.pulls, err = t.columnIndex("pulls"); err != nil {
		return cols, err
	}
	if cols.soQuestions, err = t.columnIndex("soQuestions"); err != nil {
		return cols, err
	}
	if cols.stars, err = t.columnIndex("stars"); err != nil {
		return cols, err
	}
	return cols, nil
}

func metricsAt(row []any, cols languishColumns) languishMetrics {
	return languishMetrics{
		issues:      rowNumber(row, cols.issues),
		pulls:       rowNumber(row, cols.pulls),
		soQuestions: rowNumber(row, cols.soQuestions),
		stars:       rowNumber(row, cols.stars),
	}
}

func rankLanguishEntries(tables languishPayload) ([]domain.RawSample, error) {
	sumCols, err := tables.Sums.columns()
	if err != nil {
		return nil, err
	}

	sumsByDate := make(map[string]languishMetrics, len(tables.Sums.Rows))
	dates := make([]string, 0, len(tables.Sums.Rows))
	for _, row := range tables.Sums.Rows {
		date, ok := rowString(row, sumCols.date)
		if !ok {
			continue
		}
		sumsByDate[date] = metricsAt(row, sumCols)
		dates = append(dates, date)
	}
	sort.Strings(dates)
	dates = dedupeSorted(dates)
	if len(dates) == 0 {
		return nil, errors.New("no dates available in dataset")
	}

	latest := dates[len(dates)-1]
	latestSum, ok := sumsByDate[latest]
	if !ok {
		return nil, fmt.Errorf("missing sums for latest date %s", latest)
	}

	var prevSum *languishMetrics
	if len(dates) >= 2 {
		if sum, ok := sumsByDate[dates[len(dates)-2]]; ok {
			prevSum = &sum
		}
	}

	itemCols, err := tables.Items.columns()
	if err != nil {
		return nil, err
	}
	nameCol, err := tables.Items.columnIndex("name")
	if err != nil {
		return nil, err
	}

	byNameDate := make(map[string]map[string]languishMetrics)
	for _, row := range tables.Items.Rows {
		name, ok := rowString(row, nameCol)
		if !ok {
			continue
		}
		date, ok := rowString(row, itemCols.date)
		if !ok || date < languishEpoch {
			continue
		}
		byDate, exists := byNameDate[name]
		if !exists {
			byDate = make(map[string]languishMetrics)
			byNameDate[name] = byDate
		}
		byDate[date] = metricsAt(row, itemCols)
	}

	prevDate := ""
	if len(dates) >= 2 {
		prevDate = dates[len(dates)-2]
	}

	type langMean struct {
		name  string
		mean  float64
		trend *float64
	}
	perLang := make([]langMean, 0, len(byNameDate))
	for name, byDate := range byNameDate {
		entry := langMean{name: name, mean: meanPercent(byDate[latest], latestSum)}
		if prevDate != "" && prevSum != nil {
			trend := entry.mean - meanPercent(byDate[prevDate], *prevSum)
			entry.trend = &trend
		}
		perLang = append(perLang, entry)
	}

	sort.Slice(perLang, func(i, j int) bool {
		if perLang[i].mean != perLang[j].mean {
			return perLang[i].mean > perLang[j].mean
		}
		return perLang[i].name < perLang[j].name
	})

	samples := make([]domain.RawSample, 0, len(perLang))
	for idx, entry := range perLang {
		rank := idx + 1
		samples = append(samples, domain.RawSample{
			Label: entry.name,
			Rank:  &rank,
			Share: entry.mean,
			Trend: entry.trend,
		})
	}
	return samples, nil
}

// meanPercent blends the four metric ratios into one percentage. A metric
// contributes only when both the language and the quarter produced a
// positive count, so a missing counter neither drags nor divides by zero.
func meanPercent(m, sum languishMetrics) float64 {
	const totalWeight = 4 * languishMetricWeight

	weighted := 0.0
	if sum.issues > 0 && m.issues > 0 {
		weighted += languishMetricWeight * (m.issues / sum.issues)
	}
	if sum.pulls > 0 && m.pulls > 0 {
		weighted += languishMetricWeight * (m.pulls / sum.pulls)
	}
	if sum.soQuestions > 0 && m.soQuestions > 0 {
		weighted += languishMetricWeight * (m.soQuestions / sum.soQuestions)
	}
	if sum.stars > 0 && m.stars > 0 {
		weighted += languishMetricWeight * (m.stars / sum.stars)
	}
	return weighted * (100.0 / totalWeight)
}

func dedupeSorted(values []string) []string {
	out := values[:0]
	for i, v := range values {
		if i == 0 || values[i-1] != v {
			out = append(out, v)
		}
	}
	return out
}
