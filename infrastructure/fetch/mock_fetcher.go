package fetch

import (
	"context"
	"sync"
	"time"
)

// MockFetcher provides a configurable mock implementation of ports.Fetcher
// for testing. It allows precise control over response behavior, timing, and
// error conditions to facilitate comprehensive middleware testing.
type MockFetcher struct {
	mu sync.Mutex

	// Response configuration
	Body          []byte
	Error         error
	ResponseDelay time.Duration

	// FailUntilAttempt fails the first N calls, then succeeds.
	FailUntilAttempt int

	// Tracking
	CallCount      int
	LastURL        string
	LastContext    context.Context
	CallTimestamps []time.Time
}

// NewMockFetcher creates a new mock fetcher with default successful behavior.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Body:           []byte("test payload"),
		CallTimestamps: make([]time.Time, 0),
	}
}

// Fetch implements the ports.Fetcher interface with configurable behavior.
func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastURL = url
	m.LastContext = ctx
	m.CallTimestamps = append(m.CallTimestamps, time.Now())

	if m.ResponseDelay > 0 {
		select {
		case <-time.After(m.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.FailUntilAttempt > 0 {
		if m.CallCount <= m.FailUntilAttempt {
			if m.Error != nil {
				return nil, m.Error
			}
			return nil, &testError{message: "simulated failure"}
		}
		return m.Body, nil
	}

	if m.Error != nil {
		return nil, m.Error
	}

	return m.Body, nil
}

// GetCallCount returns the number of times Fetch was called.
func (m *MockFetcher) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// testError provides a simple error type for testing.
type testError struct {
	message string
}

func (e *testError) Error() string {
	return e.message
}
