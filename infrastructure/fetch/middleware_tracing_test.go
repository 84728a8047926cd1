package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingMiddleware_PassesThroughBody(t *testing.T) {
	mock := NewMockFetcher()
	mock.Body = []byte("payload")
	wrapped := TracingMiddleware("langrank")(mock)

	body, err := wrapped.Fetch(context.Background(), "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)
	assert.Equal(t, 1, mock.GetCallCount())
}

func TestTracingMiddleware_PropagatesErrors(t *testing.T) {
	mock := NewMockFetcher()
	mock.Error = errors.New("boom")
	wrapped := TracingMiddleware("langrank")(mock)

	_, err := wrapped.Fetch(context.Background(), "https://example.com")

	require.Error(t, err)
	assert.Equal(t, "boom", err.Error(), "tracing must not rewrite errors")
}
