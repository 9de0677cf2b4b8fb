package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource captures microphone audio via PortAudio.
// PortAudio wraps ALSA on Linux and CoreAudio on macOS, so a single
// implementation covers both development and production hosts.
type PortAudioSource struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	stream   *portaudio.Stream
	streamCh chan AudioChunk
	stopCh   chan struct{}
	doneCh   chan struct{}

	// Stats
	chunksRead  atomic.Int64
	samplesRead atomic.Int64
	overruns    atomic.Int64
}

// newPortAudioSource creates a new PortAudio capture source.
// The PortAudio library is initialized here and released in Close.
func newPortAudioSource(cfg Config, logger *slog.Logger) (*PortAudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio initialize: %w", err)
	}

	return &PortAudioSource{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start opens the capture stream and begins reading from the microphone.
func (p *PortAudioSource) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return io.ErrClosedPipe
	}
	if p.running {
		return nil
	}

	buf := make([]int16, p.cfg.BufferSize()*p.cfg.Channels)

	stream, err := p.openStream(buf)
	if err != nil {
		return fmt.Errorf("open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start capture stream: %w", err)
	}

	p.stream = stream
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.streamCh = make(chan AudioChunk, 10)

	go p.captureLoop(stream, buf)

	p.logger.Info("microphone capture started",
		"backend", "portaudio",
		"sample_rate", p.cfg.SampleRate,
		"buffer_samples", len(buf),
	)

	return nil
}

// openStream opens the default input device, or the first input device
// whose name contains cfg.Device (case-insensitive).
func (p *PortAudioSource) openStream(buf []int16) (*portaudio.Stream, error) {
	if p.cfg.Device == "" {
		return portaudio.OpenDefaultStream(p.cfg.Channels, 0, float64(p.cfg.SampleRate), p.cfg.BufferSize(), buf)
	}

	dev, err := findInputDevice(p.cfg.Device)
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = p.cfg.Channels
	params.SampleRate = float64(p.cfg.SampleRate)
	params.FramesPerBuffer = p.cfg.BufferSize()

	return portaudio.OpenStream(params, buf)
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}

	needle := strings.ToLower(name)
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 && strings.Contains(strings.ToLower(dev.Name), needle) {
			return dev, nil
		}
	}

	return nil, fmt.Errorf("no input device matching %q", name)
}

func (p *PortAudioSource) captureLoop(stream *portaudio.Stream, buf []int16) {
	defer close(p.doneCh)

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			if err == portaudio.InputOverflowed {
				// The device dropped samples; keep capturing.
				p.overruns.Add(1)
				continue
			}
			select {
			case <-p.stopCh:
				// Stop aborted the pending read.
			default:
				p.logger.Error("microphone read failed", "error", err)
			}
			return
		}

		samples := make([]int16, len(buf))
		copy(samples, buf)

		chunk := AudioChunk{
			Samples:    samples,
			SampleRate: p.cfg.SampleRate,
			Channels:   p.cfg.Channels,
		}

		select {
		case p.streamCh <- chunk:
			p.chunksRead.Add(1)
			p.samplesRead.Add(int64(len(samples)))
		default:
			// Consumer is behind; drop the chunk.
			p.overruns.Add(1)
		}
	}
}

// Stop halts capture and closes the stream.
// It is safe to call Stop multiple times; Start may be called again after.
func (p *PortAudioSource) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false

	close(p.stopCh)
	// Abort unblocks a pending stream.Read in the capture loop.
	p.stream.Abort()
	<-p.doneCh

	close(p.streamCh)
	p.stream.Close()
	p.stream = nil

	p.logger.Info("microphone capture stopped")

	return nil
}

// Read returns the next captured chunk.
// It returns io.EOF after Stop.
func (p *PortAudioSource) Read(ctx context.Context) (AudioChunk, error) {
	p.mu.Lock()
	ch := p.streamCh
	p.mu.Unlock()

	if ch == nil {
		return AudioChunk{}, io.EOF
	}

	select {
	case <-ctx.Done():
		return AudioChunk{}, ctx.Err()
	case chunk, ok := <-ch:
		if !ok {
			return AudioChunk{}, io.EOF
		}
		return chunk, nil
	}
}

// Config returns the audio configuration.
func (p *PortAudioSource) Config() Config {
	return p.cfg
}

// Name returns "portaudio".
func (p *PortAudioSource) Name() string {
	return "portaudio"
}

// Close stops capture and releases the PortAudio library.
func (p *PortAudioSource) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.Stop()
	return portaudio.Terminate()
}

// Stats returns capture statistics.
func (p *PortAudioSource) Stats() SourceStats {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()

	return SourceStats{
		ChunksRead:  p.chunksRead.Load(),
		SamplesRead: p.samplesRead.Load(),
		Overruns:    p.overruns.Load(),
		Running:     running,
		Backend:     "portaudio",
	}
}

var _ SourceWithStats = (*PortAudioSource)(nil)

// PortAudioSink plays PCM audio through the default output device.
// It is used by diagnostic commands for microphone loopback; normal
// assistant playback goes through pkg/audio instead.
type PortAudioSink struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	stream  *portaudio.Stream
	buf     []int16
	pending []int16

	// Stats
	chunksWritten  atomic.Int64
	samplesWritten atomic.Int64
	underruns      atomic.Int64
}

// newPortAudioSink creates a new PortAudio playback sink.
func newPortAudioSink(cfg Config, logger *slog.Logger) (*PortAudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio initialize: %w", err)
	}

	return &PortAudioSink{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start opens the playback stream.
func (p *PortAudioSink) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return io.ErrClosedPipe
	}
	if p.running {
		return nil
	}

	p.buf = make([]int16, p.cfg.BufferSize()*p.cfg.Channels)

	stream, err := portaudio.OpenDefaultStream(0, p.cfg.Channels, float64(p.cfg.SampleRate), p.cfg.BufferSize(), p.buf)
	if err != nil {
		return fmt.Errorf("open playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start playback stream: %w", err)
	}

	p.stream = stream
	p.running = true
	p.pending = p.pending[:0]

	p.logger.Info("playback sink started",
		"backend", "portaudio",
		"sample_rate", p.cfg.SampleRate,
	)

	return nil
}

// Stop halts playback and closes the stream.
func (p *PortAudioSink) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false

	p.stream.Stop()
	p.stream.Close()
	p.stream = nil
	p.pending = nil

	p.logger.Info("playback sink stopped")

	return nil
}

// Write queues a chunk for playback, writing full device buffers as
// they accumulate. Chunks must match the sink's sample rate.
func (p *PortAudioSink) Write(ctx context.Context, chunk AudioChunk) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return fmt.Errorf("sink not running")
	}

	p.pending = append(p.pending, chunk.Samples...)
	p.chunksWritten.Add(1)
	p.samplesWritten.Add(int64(len(chunk.Samples)))

	for len(p.pending) >= len(p.buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		copy(p.buf, p.pending[:len(p.buf)])
		p.pending = p.pending[len(p.buf):]

		if err := p.stream.Write(); err != nil {
			if err == portaudio.OutputUnderflowed {
				p.underruns.Add(1)
				continue
			}
			return fmt.Errorf("playback write: %w", err)
		}
	}

	return nil
}

// Flush pads the remaining samples to a full buffer and plays them.
func (p *PortAudioSink) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || len(p.pending) == 0 {
		return nil
	}

	copy(p.buf, p.pending)
	for i := len(p.pending); i < len(p.buf); i++ {
		p.buf[i] = 0
	}
	p.pending = p.pending[:0]

	if err := p.stream.Write(); err != nil && err != portaudio.OutputUnderflowed {
		return fmt.Errorf("playback flush: %w", err)
	}

	return nil
}

// Clear discards queued audio and restarts the stream immediately.
func (p *PortAudioSink) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}

	p.pending = p.pending[:0]
	p.stream.Abort()
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("restart playback stream: %w", err)
	}

	return nil
}

// Config returns the audio configuration.
func (p *PortAudioSink) Config() Config {
	return p.cfg
}

// Name returns "portaudio".
func (p *PortAudioSink) Name() string {
	return "portaudio"
}

// Close stops playback and releases the PortAudio library.
func (p *PortAudioSink) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.Stop()
	return portaudio.Terminate()
}

// Stats returns playback statistics.
func (p *PortAudioSink) Stats() SinkStats {
	p.mu.Lock()
	running := p.running
	buffered := int64(len(p.pending))
	p.mu.Unlock()

	return SinkStats{
		ChunksWritten:   p.chunksWritten.Load(),
		SamplesWritten:  p.samplesWritten.Load(),
		Underruns:       p.underruns.Load(),
		Running:         running,
		Backend:         "portaudio",
		BufferedSamples: buffered,
	}
}

var _ SinkWithStats = (*PortAudioSink)(nil)
