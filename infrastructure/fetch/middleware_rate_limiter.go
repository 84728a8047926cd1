package fetch

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ahrav/go-langrank/internal/ports"
)

// rateLimitedFetcher implements rate limiting using a token bucket algorithm.
// This keeps the ranker polite toward the public index pages and ensures
// consistent request pacing when sources are fetched concurrently.
type rateLimitedFetcher struct {
	next    ports.Fetcher
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that enforces rate limiting using a
// token bucket algorithm. The limit parameter sets requests per second,
// while burst allows temporary spikes above the sustained rate.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next ports.Fetcher) ports.Fetcher {
		return &rateLimitedFetcher{
			next:    next,
			limiter: limiter,
		}
	}
}

// Fetch waits for rate limit permission before forwarding the request.
// This blocks the calling goroutine until a token is available.
func (r *rateLimitedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Fetch(ctx, url)
}
