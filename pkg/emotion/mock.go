package emotion

import (
	"context"
	"sync"
)

// MockDetector is a configurable detector for testing.
type MockDetector struct {
	// DetectFunc overrides the default behavior when set.
	DetectFunc func(ctx context.Context, text string) (*Result, error)

	mu     sync.Mutex
	result *Result
	err    error
	calls  []string
}

var _ Detector = (*MockDetector)(nil)

// NewMockDetector creates a mock that reports Calm at 0.5.
func NewMockDetector() *MockDetector {
	return &MockDetector{
		result: &Result{Primary: BucketCalm, Score: FallbackScore},
	}
}

// WithResult makes the mock return a fixed result.
func (m *MockDetector) WithResult(result *Result) *MockDetector {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
	return m
}

// WithError makes the mock fail every call.
func (m *MockDetector) WithError(err error) *MockDetector {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Detect records the call and returns the configured result.
func (m *MockDetector) Detect(ctx context.Context, text string) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	fn := m.DetectFunc
	result, err := m.result, m.err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Name identifies the detector backend.
func (m *MockDetector) Name() string {
	return "mock"
}

// Calls returns the recorded utterances.
func (m *MockDetector) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Detect was invoked.
func (m *MockDetector) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded calls.
func (m *MockDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
