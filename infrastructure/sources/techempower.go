package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/net/html"

	"github.com/ahrav/go-langrank/internal/domain"
	"github.com/ahrav/go-langrank/internal/ports"
)

var _ ports.ThroughputSource = (*TechempowerSource)(nil)

// techempowerSourceName identifies this source in errors and metrics.
const techempowerSourceName = "techempower"

// DefaultTechempowerStatusURL is the public status site listing benchmark
// runs. Result artifacts are linked from each run's detail page.
const DefaultTechempowerStatusURL = "https://tfb-status.techempower.com"

// TechempowerConfig defines the configuration parameters for the
// TechEmpower survey download.
type TechempowerConfig struct {
	// StatusURL is the root of the status site.
	StatusURL string `yaml:"status_url" json:"status_url" validate:"required,url"`
}

// DefaultTechempowerConfig returns a configuration pointing at the public
// status site.
func DefaultTechempowerConfig() TechempowerConfig {
	return TechempowerConfig{StatusURL: DefaultTechempowerStatusURL}
}

// TechempowerSource locates the newest completed TechEmpower run and
// downloads its results artifact. Discovery takes three requests: the
// status page yields the run id, the run's detail page links the
// results.json artifact, and the artifact carries the survey itself.
type TechempowerSource struct {
	config  TechempowerConfig
	fetcher ports.Fetcher
}

// NewTechempowerSource validates the configuration and returns a
// TechEmpower source that downloads through fetcher.
func NewTechempowerSource(config TechempowerConfig, fetcher ports.Fetcher) (*TechempowerSource, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid TechEmpower config: %w", err)
	}
	if fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}
	return &TechempowerSource{config: config, fetcher: fetcher}, nil
}

// Name implements ports.ThroughputSource.
func (s *TechempowerSource) Name() string { return techempowerSourceName }

// Fetch walks status page, run page, and results artifact, returning the
// decoded survey. Composite scoring happens in the domain layer.
func (s *TechempowerSource) Fetch(ctx context.Context) (domain.ThroughputSurvey, error) {
	statusPage, err := s.fetcher.Fetch(ctx, s.config.StatusURL)
	if err != nil {
		return domain.ThroughputSurvey{}, ports.NewSourceError(techempowerSourceName, "fetch", err)
	}
	runID, err := latestCompletedRunID(statusPage)
	if err != nil {
		return domain.ThroughputSurvey{}, ports.NewSourceError(techempowerSourceName, "parse", err)
	}

	runURL := fmt.Sprintf("%s/results/%s", s.config.StatusURL, runID)
	runPage, err := s.fetcher.Fetch(ctx, runURL)
	if err != nil {
		return domain.ThroughputSurvey{}, ports.NewSourceError(techempowerSourceName, "fetch", err)
	}
	resultsURL, err := resultsArtifactURL(runPage, s.config.StatusURL, runID)
	if err != nil {
		return domain.ThroughputSurvey{}, ports.NewSourceError(techempowerSourceName, "parse", err)
	}

	resultsBody, err := s.fetcher.Fetch(ctx, resultsURL)
	if err != nil {
		return domain.ThroughputSurvey{}, ports.NewSourceError(techempowerSourceName, "fetch", err)
	}
	survey, err := decodeSurvey(resultsBody)
	if err != nil {
		return domain.ThroughputSurvey{}, ports.NewSourceError(techempowerSourceName, "parse", err)
	}
	return survey, nil
}

// latestCompletedRunID scans the status table for the first run marked
// completed. Rows carry their run id in a data-uuid attribute; status
// words appear somewhere in the row text, including negated forms like
// "not completed" that must not match.
func latestCompletedRunID(page []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("malformed status page: %w", err)
	}

	rows := findAll(doc, func(n *html.Node) bool {
		return n.Data == "tr" && hasAttr(n, "data-uuid")
	})
	for _, row := range rows {
		runID := strings.TrimSpace(attrValue(row, "data-uuid"))
		if runID == "" {
			continue
		}
		if isCompletedStatus(strings.ToLower(nodeText(row))) {
			return runID, nil
		}
	}
	return "", errors.New("no completed TechEmpower runs found")
}

func isCompletedStatus(rowText string) bool {
	isSeparator := func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		default:
			return true
		}
	}
	tokens := strings.FieldsFunc(rowText, isSeparator)
	for i, token := range tokens {
		if token == "completed" {
			if i > 0 && tokens[i-1] == "not" {
				continue
			}
			return true
		}
	}
	return false
}

// resultsArtifactURL finds the results.json link on a run's detail page
// and makes it absolute against the status site.
func resultsArtifactURL(page []byte, statusURL, runID string) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("malformed run page: %w", err)
	}

	for _, link := range findAll(doc, element("a")) {
		if strings.TrimSpace(nodeText(link)) != "results.json" {
			continue
		}
		href := attrValue(link, "href")
		if href == "" {
			return "", errors.New("missing href for results.json link")
		}
		return resolveArtifactHref(statusURL, href), nil
	}
	return "", fmt.Errorf("results.json link not found for run %s", runID)
}

func resolveArtifactHref(statusURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if base, err := url.Parse(statusURL); err == nil {
		if ref, err := url.Parse(href); err == nil {
			return base.ResolveReference(ref).String()
		}
	}
	if strings.HasPrefix(href, "/") {
		return statusURL + href
	}
	return statusURL + "/" + href
}

// tfbResults mirrors the artifact's shape. rawData values stay raw: the
// artifact mixes run arrays with unrelated metadata under the same key
// space, so each test decodes independently and failures drop that test
// rather than the whole artifact.
type tfbResults struct {
	RawData      map[string]json.RawMessage `json:"rawData"`
	TestMetadata []tfbTestMetadata          `json:"testMetadata"`
}

type tfbTestMetadata struct {
	Framework string `json:"framework"`
	Language  string `json:"language"`
}

type tfbRun struct {
	TotalRequests float64 `json:"totalRequests"`
	StartTime     float64 `json:"startTime"`
	EndTime       float64 `json:"endTime"`
}

func decodeSurvey(body []byte) (domain.ThroughputSurvey, error) {
	var results tfbResults
	if err := json.Unmarshal(body, &results); err != nil {
		return domain.ThroughputSurvey{}, fmt.Errorf("failed to parse results JSON: %w", err)
	}

	survey := domain.ThroughputSurvey{
		Runs:               make(map[string]map[string][]domain.ThroughputRun, len(results.RawData)),
		FrameworkLanguages: make(map[string]string, len(results.TestMetadata)),
	}

	for test, rawFrameworks := range results.RawData {
		var frameworks map[string]json.RawMessage
		if err := json.Unmarshal(rawFrameworks, &frameworks); err != nil {
			continue
		}
		perFramework := make(map[string][]domain.ThroughputRun, len(frameworks))
		for framework, rawRuns := range frameworks {
			runs := decodeRuns(rawRuns)
			if len(runs) > 0 {
				perFramework[framework] = runs
			}
		}
		if len(perFramework) > 0 {
			survey.Runs[test] = perFramework
		}
	}

	for _, meta := range results.TestMetadata {
		lang, ok := domain.CanonicalName(meta.Language)
		if !ok {
			continue
		}
		if _, exists := survey.FrameworkLanguages[meta.Framework]; !exists {
			survey.FrameworkLanguages[meta.Framework] = lang
		}
	}

	return survey, nil
}

func decodeRuns(rawRuns json.RawMessage) []domain.ThroughputRun {
	var rawList []json.RawMessage
	if err := json.Unmarshal(rawRuns, &rawList); err != nil {
		return nil
	}
	runs := make([]domain.ThroughputRun, 0, len(rawList))
	for _, raw := range rawList {
		var run tfbRun
		if err := json.Unmarshal(raw, &run); err != nil {
			continue
		}
		converted, ok := narrowRun(run)
		if !ok {
			continue
		}
		runs = append(runs, converted)
	}
	return runs
}

// narrowRun converts the artifact's JSON numbers to the survey's integer
// fields. Request counts and millisecond timestamps are integral; a
// fractional or out-of-range value marks a mangled run.
func narrowRun(run tfbRun) (domain.ThroughputRun, bool) {
	total, err := safecast.Convert[int64](run.TotalRequests)
	if err != nil {
		return domain.ThroughputRun{}, false
	}
	start, err := safecast.Convert[int64](run.StartTime)
	if err != nil {
		return domain.ThroughputRun{}, false
	}
	end, err := safecast.Convert[int64](run.EndTime)
	if err != nil {
		return domain.ThroughputRun{}, false
	}
	return domain.ThroughputRun{
		TotalRequests: total,
		StartTimeMS:   start,
		EndTimeMS:     end,
	}, true
}
