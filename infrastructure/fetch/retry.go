package fetch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/ahrav/go-langrank/internal/ports"
)

// Default retry configuration constants.
const (
	// DefaultMaxAttempts is the default number of retry attempts.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the default initial delay before the first retry.
	DefaultBaseDelay = 1 * time.Second
	// DefaultMaxDelay is the default maximum delay between retry attempts.
	DefaultMaxDelay = 30 * time.Second
	// DefaultJitterPercent is the default jitter percentage.
	DefaultJitterPercent = 0.1
)

// RetryConfig defines the configuration for retry behavior. These settings
// control the exponential backoff and jitter logic used by the fetcher.
type RetryConfig struct {
	// MaxAttempts specifies the maximum number of times to retry a failed
	// fetch. A value of 0 means no retries will be attempted.
	MaxAttempts int

	// BaseDelay sets the initial delay for the first retry attempt.
	// Subsequent delays are calculated using exponential backoff.
	BaseDelay time.Duration

	// MaxDelay caps the maximum delay between retry attempts to prevent
	// excessively long waits during exponential backoff.
	MaxDelay time.Duration

	// JitterPercent adds a random percentage of the current delay to prevent
	// a "thundering herd" scenario. It should be between 0.0 and 1.0.
	JitterPercent float64
}

// DefaultRetryConfig returns a RetryConfig with sensible default values
// suitable for the public index pages the ranker talks to.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   DefaultMaxAttempts,
		BaseDelay:     DefaultBaseDelay,
		MaxDelay:      DefaultMaxDelay,
		JitterPercent: DefaultJitterPercent,
	}
}

var _ ports.Fetcher = (*RetryingFetcher)(nil)

// RetryingFetcher wraps an existing Fetcher with retry functionality.
// It implements the ports.Fetcher interface, adding exponential backoff
// with jitter to transient failures. The fetcher is thread-safe and can be
// used concurrently.
type RetryingFetcher struct {
	fetcher ports.Fetcher
	config  RetryConfig
}

// NewRetryingFetcher creates a new RetryingFetcher that wraps the provided
// fetcher. The retry behavior is controlled by the provided config.
func NewRetryingFetcher(fetcher ports.Fetcher, config RetryConfig) *RetryingFetcher {
	return &RetryingFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// RetryMiddleware creates middleware that adds retry behavior to the chain.
func RetryMiddleware(config RetryConfig) Middleware {
	return func(next ports.Fetcher) ports.Fetcher {
		return NewRetryingFetcher(next, config)
	}
}

// Fetch downloads the document with retry logic.
// It implements exponential backoff with jitter for transient errors and
// gives up immediately on permanent ones.
func (r *RetryingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxAttempts; attempt++ {
		body, err := r.fetcher.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if attempt == r.config.MaxAttempts || !r.isRetryableError(err) {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(r.calculateRetryDelay(attempt, err)):
		}
	}

	return nil, fmt.Errorf("fetch failed after %d attempts: %w", r.config.MaxAttempts+1, lastErr)
}

// isRetryableError determines if an error is likely transient and worth
// retrying. Sentinel errors are checked first; unclassified errors fall
// back to matching common transient error messages.
func (r *RetryingFetcher) isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ports.ErrRateLimited) ||
		errors.Is(err, ports.ErrServiceUnavailable) ||
		errors.Is(err, ports.ErrTimeout) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit", "too many requests", "timeout", "connection refused",
		"connection reset", "temporary failure", "service unavailable",
		"internal server error", "bad gateway", "gateway timeout", "network",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// calculateRetryDelay calculates the appropriate delay for an exponential
// backoff strategy, including jitter to prevent request storms. A
// Retry-After hint from the server overrides the computed backoff when it
// is longer.
func (r *RetryingFetcher) calculateRetryDelay(attempt int, err error) time.Duration {
	delay := r.config.BaseDelay * time.Duration(1<<attempt)
	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	jitter := int64(float64(delay) * r.config.JitterPercent)
	if jitter > 0 {
		//nolint:gosec // G404: math/rand is acceptable for retry jitter timing.
		delay += time.Duration(rand.Int64N(2*jitter) - jitter)
	}

	if delay < r.config.BaseDelay {
		delay = r.config.BaseDelay
	}

	var srcErr *ports.SourceError
	if errors.As(err, &srcErr) && srcErr.RetryAfter != nil && *srcErr.RetryAfter > delay {
		return *srcErr.RetryAfter
	}

	return delay
}
