// Package fetch provides the HTTP transport used to download the metric
// source pages, with built-in support for retries, rate limiting, metrics,
// and tracing.
//
// The package hides transport concerns behind the ports.Fetcher interface
// while adding operational features through a middleware pattern. Sources
// see only a Fetch call that returns the final payload or the final error.
//
// Basic usage:
//
//	fetcher, err := fetch.NewClient(fetch.ClientConfig{
//	    Timeout: 20 * time.Second,
//	})
//	body, err := fetcher.Fetch(ctx, "https://www.tiobe.com/tiobe-index/")
//
// Usage with middleware:
//
//	fetcher, err := fetch.NewClient(fetch.ClientConfig{
//	    Timeout: 20 * time.Second,
//	    Middleware: []fetch.Middleware{
//	        fetch.RetryMiddleware(fetch.DefaultRetryConfig()),
//	        fetch.RateLimitMiddleware(rate.Limit(2), 4),
//	        fetch.MetricsMiddleware(metricsCollector),
//	    },
//	})
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ahrav/go-langrank/internal/ports"
)

// Default transport configuration constants.
const (
	// DefaultTimeout bounds a single HTTP request, including body download.
	DefaultTimeout = 20 * time.Second

	// DefaultUserAgent identifies the ranker to the metric sources.
	DefaultUserAgent = "langrank/1.0 (+https://github.com/ahrav/go-langrank)"

	// maxBodyBytes caps downloaded payloads. The largest real payload is
	// the benchmark CSV at a few megabytes; anything near the cap is a
	// misbehaving endpoint, not data.
	maxBodyBytes = 64 << 20
)

// Middleware wraps a ports.Fetcher to add cross-cutting functionality.
// This pattern allows composition of features like retries, rate limiting,
// metrics collection, and tracing without modifying transport logic.
type Middleware func(ports.Fetcher) ports.Fetcher

// ClientConfig holds all configuration options for creating a fetch client.
type ClientConfig struct {
	// Timeout sets the maximum duration for individual requests.
	// Zero value means DefaultTimeout.
	Timeout time.Duration

	// UserAgent overrides the User-Agent header sent with every request.
	// Leave empty to use DefaultUserAgent.
	UserAgent string

	// HTTPClient overrides the underlying HTTP client. When set, Timeout
	// is ignored and the caller owns transport configuration.
	HTTPClient *http.Client

	// Middleware allows custom middleware insertion.
	// These are applied in the order specified.
	Middleware []Middleware
}

// httpFetcher is the core transport implementation middleware wraps.
type httpFetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.Fetcher = (*httpFetcher)(nil)

// NewClient creates a fetcher with the specified configuration.
// This function assembles the middleware chain around the core HTTP
// transport before returning a ready-to-use instance.
func NewClient(config ClientConfig) (ports.Fetcher, error) {
	client := config.HTTPClient
	if client == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var fetcher ports.Fetcher = &httpFetcher{
		client:    client,
		userAgent: userAgent,
	}

	// Apply middleware in reverse order so the first middleware is the
	// outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		fetcher = config.Middleware[i](fetcher)
	}

	return fetcher, nil
}

// Fetch downloads the document at rawURL and returns its body.
// Transport failures and non-2xx statuses are mapped onto the ports error
// sentinels so retry policies can tell transient failures from permanent
// ones.
func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(rawURL, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", rawURL, err)
	}
	return body, nil
}

// classifyTransportError maps connection-level failures onto the ports
// sentinels. Context cancellation passes through untouched so callers can
// distinguish their own shutdown from remote flakiness.
func classifyTransportError(rawURL string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("fetch %s: %w: %v", rawURL, ports.ErrTimeout, err)
	}
	return fmt.Errorf("fetch %s: %w: %v", rawURL, ports.ErrServiceUnavailable, err)
}

// classifyStatus maps non-2xx responses onto the ports sentinels. 429 and
// 5xx are transient; everything else fails the run immediately.
func classifyStatus(rawURL string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		err := fmt.Errorf("fetch %s: %w: status %s", rawURL, ports.ErrRateLimited, resp.Status)
		if retryAfter := parseRetryAfter(resp.Header.Get("Retry-After")); retryAfter != nil {
			srcErr := ports.NewSourceError(hostOf(rawURL), "fetch", ports.ErrRateLimited)
			srcErr.RetryAfter = retryAfter
			return srcErr
		}
		return err
	case resp.StatusCode >= 500:
		return fmt.Errorf("fetch %s: %w: status %s", rawURL, ports.ErrServiceUnavailable, resp.Status)
	default:
		return fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}
}

// parseRetryAfter reads the delay-seconds form of the Retry-After header.
// The HTTP-date form is rare enough on the sources we talk to that it is
// treated as absent.
func parseRetryAfter(value string) *time.Duration {
	if value == "" {
		return nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return nil
	}
	d := time.Duration(seconds) * time.Second
	return &d
}

// hostOf extracts the host for error attribution, falling back to the raw
// URL when it does not parse.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
