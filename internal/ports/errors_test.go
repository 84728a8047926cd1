package ports

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSourceError tests the functionality of the SourceError error type.
// It covers error creation, message formatting, and retryable logic.
func TestSourceError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := NewSourceError("tiobe", "fetch", ErrServiceUnavailable)

		assert.Equal(t, "source error: source=tiobe, operation=fetch, err=service unavailable", err.Error())
		assert.Equal(t, "tiobe", err.Source)
		assert.Equal(t, "fetch", err.Operation)
		assert.True(t, errors.Is(err, ErrServiceUnavailable))
	})

	t.Run("with retry after", func(t *testing.T) {
		retryAfter := 30 * time.Second
		err := &SourceError{
			Source:     "techempower",
			Operation:  "fetch",
			Err:        ErrRateLimited,
			RetryAfter: &retryAfter,
		}

		assert.Contains(t, err.Error(), "retry_after=30s")
	})

	t.Run("wraps parse failures", func(t *testing.T) {
		cause := errors.New("no ranking table found")
		err := NewSourceError("pypl", "parse", cause)

		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "operation=parse")
	})

	t.Run("retryable errors", func(t *testing.T) {
		retryableErrors := []error{
			ErrRateLimited,
			ErrServiceUnavailable,
			ErrTimeout,
		}

		for _, baseErr := range retryableErrors {
			err := NewSourceError("languish", "fetch", baseErr)
			assert.True(t, err.IsRetryable(), "%v should be retryable", baseErr)
		}

		nonRetryableErrors := []error{
			ErrInvalidResponse,
			errors.New("missing required column"),
		}

		for _, baseErr := range nonRetryableErrors {
			err := NewSourceError("benchmarks", "parse", baseErr)
			assert.False(t, err.IsRetryable(), "%v should not be retryable", baseErr)
		}
	})
}
