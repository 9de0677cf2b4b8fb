package audioio

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// MockSource is an in-memory Source for tests and the mock backend.
//
// Reads return scripted chunks first, without delay. Once the script
// is exhausted the source produces silence, paced to the configured
// buffer duration so capture loops run at microphone cadence instead
// of spinning.
type MockSource struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	queue   []AudioChunk
	started bool
	closed  bool
	stopCh  chan struct{}

	chunksRead  atomic.Int64
	samplesRead atomic.Int64
}

// NewMockSource creates a mock source that produces silence until
// chunks are enqueued.
func NewMockSource(cfg Config, logger *slog.Logger) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSource{
		cfg:    cfg,
		logger: logger,
	}
}

// Enqueue appends chunks to the script. They are returned by Read in
// order, ahead of generated silence.
func (m *MockSource) Enqueue(chunks ...AudioChunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, chunks...)
}

// EnqueueTone appends a sine tone. Amplitude is a fraction of full
// scale in [0, 1].
func (m *MockSource) EnqueueTone(freq, amplitude float64, dur time.Duration) {
	frames := int(float64(m.cfg.SampleRate) * dur.Seconds())
	samples := make([]int16, frames*m.cfg.Channels)
	for i := 0; i < frames; i++ {
		v := int16(amplitude * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(m.cfg.SampleRate)))
		for ch := 0; ch < m.cfg.Channels; ch++ {
			samples[i*m.cfg.Channels+ch] = v
		}
	}
	m.Enqueue(AudioChunk{Samples: samples, SampleRate: m.cfg.SampleRate, Channels: m.cfg.Channels})
}

// EnqueueSilence appends dur of silence.
func (m *MockSource) EnqueueSilence(dur time.Duration) {
	frames := int(float64(m.cfg.SampleRate) * dur.Seconds())
	m.Enqueue(AudioChunk{
		Samples:    make([]int16, frames*m.cfg.Channels),
		SampleRate: m.cfg.SampleRate,
		Channels:   m.cfg.Channels,
	})
}

// Start marks the source running.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	if m.started {
		return nil
	}

	m.started = true
	m.stopCh = make(chan struct{})
	m.logger.Debug("mock source started", "sample_rate", m.cfg.SampleRate)
	return nil
}

// Stop ends the stream. Pending and future Reads return io.EOF.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil
	}
	m.started = false
	close(m.stopCh)
	m.logger.Debug("mock source stopped")
	return nil
}

// Read returns the next scripted chunk, or a silence chunk after one
// buffer duration when the script is empty.
func (m *MockSource) Read(ctx context.Context) (AudioChunk, error) {
	m.mu.Lock()
	if !m.started || m.closed {
		m.mu.Unlock()
		return AudioChunk{}, io.EOF
	}

	if len(m.queue) > 0 {
		chunk := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		m.count(chunk)
		return chunk, nil
	}

	stopCh := m.stopCh
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return AudioChunk{}, ctx.Err()
	case <-stopCh:
		return AudioChunk{}, io.EOF
	case <-time.After(m.cfg.BufferDuration):
	}

	chunk := AudioChunk{
		Samples:    make([]int16, m.cfg.BufferSize()*m.cfg.Channels),
		SampleRate: m.cfg.SampleRate,
		Channels:   m.cfg.Channels,
	}
	m.count(chunk)
	return chunk, nil
}

func (m *MockSource) count(chunk AudioChunk) {
	m.chunksRead.Add(1)
	m.samplesRead.Add(int64(len(chunk.Samples)))
}

// Config returns the capture configuration.
func (m *MockSource) Config() Config {
	return m.cfg
}

// Name returns "mock".
func (m *MockSource) Name() string {
	return "mock"
}

// Close stops the source permanently.
func (m *MockSource) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	return m.Stop()
}

// Stats returns capture counters.
func (m *MockSource) Stats() SourceStats {
	m.mu.Lock()
	running := m.started
	m.mu.Unlock()

	return SourceStats{
		ChunksRead:  m.chunksRead.Load(),
		SamplesRead: m.samplesRead.Load(),
		Running:     running,
		Backend:     "mock",
	}
}

var _ SourceWithStats = (*MockSource)(nil)

// MockSink is an in-memory Sink that records what would have been
// played. Tests inspect the recording through Played.
type MockSink struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	buffered []int16
	played   []int16

	chunksWritten  atomic.Int64
	samplesWritten atomic.Int64
}

// NewMockSink creates a mock sink.
func NewMockSink(cfg Config, logger *slog.Logger) *MockSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSink{
		cfg:    cfg,
		logger: logger,
	}
}

// Start marks the sink running.
func (m *MockSink) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	m.running = true
	return nil
}

// Stop marks the sink stopped.
func (m *MockSink) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	return nil
}

// Write queues a chunk.
func (m *MockSink) Write(ctx context.Context, chunk AudioChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || !m.running {
		return io.ErrClosedPipe
	}

	m.buffered = append(m.buffered, chunk.Samples...)
	m.chunksWritten.Add(1)
	m.samplesWritten.Add(int64(len(chunk.Samples)))
	return nil
}

// Flush moves queued samples to the played recording.
func (m *MockSink) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.played = append(m.played, m.buffered...)
	m.buffered = m.buffered[:0]
	return nil
}

// Clear discards queued samples without recording them.
func (m *MockSink) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffered = m.buffered[:0]
	return nil
}

// Played returns a copy of every sample flushed so far.
func (m *MockSink) Played() []int16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]int16, len(m.played))
	copy(out, m.played)
	return out
}

// Config returns the playback configuration.
func (m *MockSink) Config() Config {
	return m.cfg
}

// Name returns "mock".
func (m *MockSink) Name() string {
	return "mock"
}

// Close stops the sink permanently.
func (m *MockSink) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	return m.Stop()
}

// Stats returns playback counters.
func (m *MockSink) Stats() SinkStats {
	m.mu.Lock()
	running := m.running
	buffered := int64(len(m.buffered))
	m.mu.Unlock()

	return SinkStats{
		ChunksWritten:   m.chunksWritten.Load(),
		SamplesWritten:  m.samplesWritten.Load(),
		Running:         running,
		Backend:         "mock",
		BufferedSamples: buffered,
	}
}

var _ SinkWithStats = (*MockSink)(nil)
