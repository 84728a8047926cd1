package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-langrank/internal/ports"
)

func TestNewClient_FetchesBody(t *testing.T) {
	var seenUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>index</html>"))
	}))
	defer server.Close()

	fetcher, err := NewClient(ClientConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)

	body, err := fetcher.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, []byte("<html>index</html>"), body)
	assert.Equal(t, DefaultUserAgent, seenUserAgent)
}

func TestNewClient_CustomUserAgent(t *testing.T) {
	var seenUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserAgent = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	fetcher, err := NewClient(ClientConfig{UserAgent: "custom-agent/2.0"})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "custom-agent/2.0", seenUserAgent)
}

func TestHTTPFetcher_StatusClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		sentinel   error
	}{
		{
			name:       "too many requests maps to rate limited",
			statusCode: http.StatusTooManyRequests,
			sentinel:   ports.ErrRateLimited,
		},
		{
			name:       "bad gateway maps to service unavailable",
			statusCode: http.StatusBadGateway,
			sentinel:   ports.ErrServiceUnavailable,
		},
		{
			name:       "internal error maps to service unavailable",
			statusCode: http.StatusInternalServerError,
			sentinel:   ports.ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			fetcher, err := NewClient(ClientConfig{})
			require.NoError(t, err)

			_, err = fetcher.Fetch(context.Background(), server.URL)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "expected %v in %v", tt.sentinel, err)
		})
	}
}

func TestHTTPFetcher_NotFoundIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher, err := NewClient(ClientConfig{})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrRateLimited))
	assert.False(t, errors.Is(err, ports.ErrServiceUnavailable))
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestHTTPFetcher_RetryAfterHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	fetcher, err := NewClient(ClientConfig{})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	var srcErr *ports.SourceError
	require.True(t, errors.As(err, &srcErr), "expected a source error, got %v", err)
	require.NotNil(t, srcErr.RetryAfter)
	assert.Equal(t, 7*time.Second, *srcErr.RetryAfter)
	assert.True(t, srcErr.IsRetryable())
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	fetcher, err := NewClient(ClientConfig{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fetcher.Fetch(ctx, server.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewClient_MiddlewareOrder(t *testing.T) {
	var calls []string
	named := func(name string) Middleware {
		return func(next ports.Fetcher) ports.Fetcher {
			return fetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
				calls = append(calls, name)
				return next.Fetch(ctx, url)
			})
		}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	fetcher, err := NewClient(ClientConfig{
		Middleware: []Middleware{named("outer"), named("inner")},
	})
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls,
		"first configured middleware should be outermost")
}

// fetcherFunc adapts a function to ports.Fetcher for middleware tests.
type fetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}
