package power

import "sync"

// MockSource is a configurable battery source for testing.
type MockSource struct {
	// PercentFunc overrides the fixed value when set.
	PercentFunc func() (int, error)

	mu      sync.Mutex
	percent int
	err     error
	calls   int
}

var _ Source = (*MockSource)(nil)

// NewMockSource creates a mock reporting a fixed charge.
func NewMockSource(percent int) *MockSource {
	return &MockSource{percent: percent}
}

// WithError makes the mock fail every read.
func (m *MockSource) WithError(err error) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// SetPercent changes the reported charge.
func (m *MockSource) SetPercent(percent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.percent = percent
}

// Percent returns the configured charge or error.
func (m *MockSource) Percent() (int, error) {
	m.mu.Lock()
	m.calls++
	fn := m.PercentFunc
	percent, err := m.percent, m.err
	m.mu.Unlock()

	if fn != nil {
		return fn()
	}
	if err != nil {
		return 0, err
	}
	return percent, nil
}

// Name identifies the backend.
func (m *MockSource) Name() string {
	return "mock"
}

// Calls returns how many times Percent was invoked.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
