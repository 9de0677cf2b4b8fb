// Package audioio captures and plays PCM16 audio.
//
// Real devices go through the portaudio backend; the mock backend
// scripts capture and records playback so the packages above it test
// without hardware. NewSource and NewSink pick the backend from the
// Config, defaulting to whatever the platform supports.
package audioio

import (
	"context"
	"io"
	"time"
)

// AudioChunk is one buffer of PCM16 samples from a capture device or
// destined for a playback device. Multi-channel audio is interleaved.
type AudioChunk struct {
	// Samples contains little-endian PCM16 samples.
	Samples []int16

	// SampleRate is the sample rate in Hz.
	SampleRate int

	// Channels is the number of interleaved channels.
	Channels int
}

// Duration returns the playback time of the chunk.
func (c AudioChunk) Duration() time.Duration {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Source captures audio from a microphone.
//
// Sources deliver fixed-size chunks at the configured buffer cadence.
// Stop ends the stream; a subsequent Read returns io.EOF. Close
// releases the backend and makes the source unusable.
type Source interface {
	// Start begins capture. Calling Start on a running source is a
	// no-op.
	Start(ctx context.Context) error

	// Stop halts capture. Safe to call more than once.
	Stop() error

	// Read blocks until the next chunk is available.
	// It returns io.EOF once the source is stopped or closed.
	Read(ctx context.Context) (AudioChunk, error)

	// Config returns the capture configuration.
	Config() Config

	// Name identifies the backend ("portaudio", "mock").
	Name() string

	io.Closer
}

// Sink plays audio through a speaker.
type Sink interface {
	// Start opens the playback device. Calling Start on a running
	// sink is a no-op.
	Start(ctx context.Context) error

	// Stop halts playback. Safe to call more than once.
	Stop() error

	// Write queues a chunk for playback. The chunk must match the
	// sink's configured sample rate and channel count.
	Write(ctx context.Context, chunk AudioChunk) error

	// Flush plays out anything still queued.
	Flush(ctx context.Context) error

	// Clear drops queued audio without playing it.
	Clear() error

	// Config returns the playback configuration.
	Config() Config

	// Name identifies the backend ("portaudio", "mock").
	Name() string

	io.Closer
}

// SourceStats reports capture counters.
type SourceStats struct {
	ChunksRead  int64  `json:"chunks_read"`
	SamplesRead int64  `json:"samples_read"`
	Overruns    int64  `json:"overruns"`
	Running     bool   `json:"running"`
	Backend     string `json:"backend"`
}

// SinkStats reports playback counters.
type SinkStats struct {
	ChunksWritten   int64  `json:"chunks_written"`
	SamplesWritten  int64  `json:"samples_written"`
	Underruns       int64  `json:"underruns"`
	Running         bool   `json:"running"`
	Backend         string `json:"backend"`
	BufferedSamples int64  `json:"buffered_samples"`
}

// SourceWithStats is a Source that exposes capture counters.
type SourceWithStats interface {
	Source
	Stats() SourceStats
}

// SinkWithStats is a Sink that exposes playback counters.
type SinkWithStats interface {
	Sink
	Stats() SinkStats
}
