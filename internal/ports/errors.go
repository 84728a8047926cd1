package ports

import (
	"errors"
	"fmt"
	"time"
)

// Common infrastructure errors that can occur while talking to the metric
// sources.
var (
	// ErrRateLimited indicates that the remote service has rate limited the
	// request.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that the external service is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidResponse indicates that the service returned a payload the
	// parser could not make sense of.
	ErrInvalidResponse = errors.New("invalid response")
)

// SourceError represents a failure while fetching or parsing one metric
// source. It carries enough context to attribute the failure in logs and the
// run summary without losing the underlying cause.
type SourceError struct {
	// Source is the short identifier of the metric source, such as "tiobe".
	Source string

	// Operation is the step that failed, such as "fetch" or "parse".
	Operation string

	// Err is the underlying error that occurred.
	Err error

	// RetryAfter indicates how long to wait before retrying, if the remote
	// service said so.
	RetryAfter *time.Duration
}

// Error implements the error interface for SourceError.
func (e *SourceError) Error() string {
	msg := fmt.Sprintf("source error: source=%s, operation=%s, err=%v", e.Source, e.Operation, e.Err)
	if e.RetryAfter != nil {
		msg += fmt.Sprintf(", retry_after=%v", *e.RetryAfter)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error { return e.Err }

// IsRetryable returns true if the error is temporary and the operation
// can be retried.
func (e *SourceError) IsRetryable() bool {
	// Only network/service-level errors are retryable; parse errors are not.
	return errors.Is(e.Err, ErrRateLimited) ||
		errors.Is(e.Err, ErrServiceUnavailable) ||
		errors.Is(e.Err, ErrTimeout)
}

// NewSourceError creates a new SourceError with the given details.
func NewSourceError(source, operation string, err error) *SourceError {
	return &SourceError{
		Source:    source,
		Operation: operation,
		Err:       err,
	}
}
