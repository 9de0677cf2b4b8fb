package audioio

import (
	"fmt"
	"time"
)

// Backend selects the capture and playback implementation.
type Backend string

const (
	// BackendAuto picks the platform default at construction time.
	BackendAuto Backend = "auto"

	// BackendPortAudio drives real devices through the portaudio
	// binding, which wraps ALSA on Linux and CoreAudio on macOS.
	BackendPortAudio Backend = "portaudio"

	// BackendMock is the in-memory backend for tests and CI.
	BackendMock Backend = "mock"
)

// Config describes an audio stream. The same struct serves both
// directions: a Source delivers chunks of BufferDuration at
// SampleRate, a Sink consumes them.
type Config struct {
	Backend Backend

	// SampleRate in Hz.
	SampleRate int

	// Channels of interleaved PCM16. The microphone path is mono.
	Channels int

	// BufferDuration is how much audio one chunk carries.
	BufferDuration time.Duration

	// Device narrows capture to the first input device whose name
	// contains this substring, case-insensitive. Empty means the
	// system default.
	Device string
}

// DefaultConfig is tuned for the speech recognition path: 16 kHz mono
// in 20 ms chunks.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     16000,
		Channels:       1,
		BufferDuration: 20 * time.Millisecond,
	}
}

// Validate reports the first nonsensical field.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("audioio: invalid sample rate %d", c.SampleRate)
	case c.Channels <= 0:
		return fmt.Errorf("audioio: invalid channel count %d", c.Channels)
	case c.BufferDuration <= 0:
		return fmt.Errorf("audioio: invalid buffer duration %v", c.BufferDuration)
	}
	return nil
}

// BufferSize returns the samples per chunk for one channel.
func (c Config) BufferSize() int {
	return int(int64(c.SampleRate) * int64(c.BufferDuration) / int64(time.Second))
}
