package tts

import (
	"context"
	"sync"
	"time"
)

// Mock is a Provider for tests. Behavior is overridden through the
// function fields; every invocation is recorded for verification.
type Mock struct {
	// SynthesizeFunc handles Synthesize. The default returns silent
	// PCM sized to the text so playback timing stays speech-like.
	SynthesizeFunc func(ctx context.Context, text string) (*AudioResult, error)

	// StreamFunc handles Stream. When nil, Stream serves the
	// SynthesizeFunc result through a buffered stream.
	StreamFunc func(ctx context.Context, text string) (AudioStream, error)

	// HealthFunc handles Health. Nil means healthy.
	HealthFunc func(ctx context.Context) error

	// CloseFunc handles Close.
	CloseFunc func() error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall is one recorded invocation.
type MockCall struct {
	Method string
	Text   string
	Time   time.Time
}

// mockBytesPerChar approximates 20ms of 24kHz PCM16 per character,
// which keeps mock playback near natural speech pacing.
const mockBytesPerChar = 960

// NewMock creates a Mock that synthesizes silence and reports healthy.
func NewMock() *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text string) (*AudioResult, error) {
			return &AudioResult{
				Audio: make([]byte, len(text)*mockBytesPerChar),
				Format: AudioFormat{
					Encoding:   EncodingPCM24,
					SampleRate: 24000,
					Channels:   1,
					BitDepth:   16,
				},
				CharCount: len(text),
				LatencyMs: 10,
				Duration:  time.Duration(len(text)) * 20 * time.Millisecond,
			}, nil
		},
	}
}

// WithError returns a Mock whose every operation fails with err.
func WithError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text string) (*AudioResult, error) {
			return nil, err
		},
		StreamFunc: func(ctx context.Context, text string) (AudioStream, error) {
			return nil, err
		},
		HealthFunc: func(ctx context.Context) error {
			return err
		},
	}
}

// WithLatency delays m's Synthesize by d, honoring context
// cancellation during the wait.
func WithLatency(m *Mock, d time.Duration) *Mock {
	inner := m.SynthesizeFunc
	m.SynthesizeFunc = func(ctx context.Context, text string) (*AudioResult, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
		if inner == nil {
			return nil, WrapError("mock", ErrProviderUnavailable)
		}
		return inner(ctx, text)
	}
	return m
}

// Synthesize records the call and dispatches to SynthesizeFunc.
func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	m.record("Synthesize", text)
	if m.SynthesizeFunc == nil {
		return nil, WrapError("mock", ErrProviderUnavailable)
	}
	return m.SynthesizeFunc(ctx, text)
}

// Stream records the call and dispatches to StreamFunc, falling back
// to a buffered stream over the Synthesize result.
func (m *Mock) Stream(ctx context.Context, text string) (AudioStream, error) {
	m.record("Stream", text)
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, text)
	}
	if m.SynthesizeFunc == nil {
		return nil, WrapError("mock", ErrProviderUnavailable)
	}
	result, err := m.SynthesizeFunc(ctx, text)
	if err != nil {
		return nil, err
	}
	return &bufferStream{data: result.Audio, format: result.Format}, nil
}

// Health records the call and dispatches to HealthFunc.
func (m *Mock) Health(ctx context.Context) error {
	m.record("Health", "")
	if m.HealthFunc == nil {
		return nil
	}
	return m.HealthFunc(ctx)
}

// Close records the call and dispatches to CloseFunc.
func (m *Mock) Close() error {
	m.record("Close", "")
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

func (m *Mock) record(method, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Text: text, Time: time.Now()})
}

// Calls returns a copy of every recorded invocation.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times method was invoked.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears the recorded invocations.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

var _ Provider = (*Mock)(nil)
