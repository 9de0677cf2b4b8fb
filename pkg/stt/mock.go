package stt

import (
	"context"
	"sync"
	"time"
)

// Mock implements Recognizer for testing.
type Mock struct {
	// RecognizeFunc is called when Recognize is invoked.
	RecognizeFunc func(ctx context.Context, audio []byte, sampleRate int) (*Result, error)

	// HealthFunc is called when Health is invoked.
	HealthFunc func(ctx context.Context) error

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation.
type MockCall struct {
	Method string
	Time   time.Time
}

// NewMock creates a new mock recognizer with sensible defaults.
func NewMock() *Mock {
	return &Mock{
		RecognizeFunc: func(ctx context.Context, audio []byte, sampleRate int) (*Result, error) {
			return &Result{Transcript: "mock transcript", Confidence: 0.9}, nil
		},
		HealthFunc: func(ctx context.Context) error {
			return nil
		},
	}
}

// Recognize calls RecognizeFunc and records the call.
func (m *Mock) Recognize(ctx context.Context, audio []byte, sampleRate int) (*Result, error) {
	m.record("Recognize")
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, audio, sampleRate)
	}
	return nil, ErrNoSpeech
}

// Health calls HealthFunc and records the call.
func (m *Mock) Health(ctx context.Context) error {
	m.record("Health")
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.record("Close")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// record adds a call to the tracking list.
func (m *Mock) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method: method,
		Time:   time.Now(),
	})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// WithError returns a mock that always returns the given error.
func WithError(err error) *Mock {
	return &Mock{
		RecognizeFunc: func(ctx context.Context, audio []byte, sampleRate int) (*Result, error) {
			return nil, err
		},
		HealthFunc: func(ctx context.Context) error {
			return err
		},
	}
}

// Verify Mock implements Recognizer at compile time.
var _ Recognizer = (*Mock)(nil)

// MockHearer implements Hearer with a scripted sequence of results.
// Each Hear call pops the next step; when the script is exhausted,
// Hear blocks until the context is cancelled. That keeps assistant
// loop tests deterministic: script the turns, then cancel.
type MockHearer struct {
	mu     sync.Mutex
	script []HearStep
	heard  []ListenParams

	// CalibrateErr is returned by Calibrate when set.
	CalibrateErr error
}

// HearStep is one scripted Hear result.
type HearStep struct {
	Text string
	Err  error
}

// NewMockHearer creates a MockHearer with the given script.
func NewMockHearer(steps ...HearStep) *MockHearer {
	return &MockHearer{script: steps}
}

// Say appends a successful transcript to the script.
func (m *MockHearer) Say(text string) *MockHearer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, HearStep{Text: text})
	return m
}

// Fail appends an error step to the script.
func (m *MockHearer) Fail(err error) *MockHearer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, HearStep{Err: err})
	return m
}

// Calibrate records nothing and returns CalibrateErr.
func (m *MockHearer) Calibrate(ctx context.Context) error {
	return m.CalibrateErr
}

// Hear pops the next scripted step, or blocks until ctx is cancelled
// when the script is exhausted.
func (m *MockHearer) Hear(ctx context.Context, params ListenParams) (string, error) {
	m.mu.Lock()
	m.heard = append(m.heard, params)
	if len(m.script) == 0 {
		m.mu.Unlock()
		<-ctx.Done()
		return "", ctx.Err()
	}
	step := m.script[0]
	m.script = m.script[1:]
	m.mu.Unlock()

	return step.Text, step.Err
}

// HearCalls returns the params of every Hear call so far.
func (m *MockHearer) HearCalls() []ListenParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]ListenParams, len(m.heard))
	copy(result, m.heard)
	return result
}

// Close does nothing.
func (m *MockHearer) Close() error {
	return nil
}

// Verify MockHearer implements Hearer at compile time.
var _ Hearer = (*MockHearer)(nil)
