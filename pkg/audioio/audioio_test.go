package audioio

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestAudioChunkDuration(t *testing.T) {
	chunk := AudioChunk{
		Samples:    make([]int16, 320),
		SampleRate: 16000,
		Channels:   1,
	}
	if got := chunk.Duration(); got != 20*time.Millisecond {
		t.Errorf("Expected 20ms, got %v", got)
	}

	stereo := AudioChunk{
		Samples:    make([]int16, 640),
		SampleRate: 16000,
		Channels:   2,
	}
	if got := stereo.Duration(); got != 20*time.Millisecond {
		t.Errorf("Expected 20ms for stereo, got %v", got)
	}

	var empty AudioChunk
	if got := empty.Duration(); got != 0 {
		t.Errorf("Expected 0 for zero chunk, got %v", got)
	}
}

func TestMockSourceScriptedReads(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock

	src := NewMockSource(cfg, nil)
	defer src.Close()

	src.EnqueueTone(440, 0.5, 40*time.Millisecond)
	src.EnqueueSilence(20 * time.Millisecond)

	ctx := context.Background()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	tone, err := src.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if tone.SampleRate != cfg.SampleRate {
		t.Errorf("Expected rate %d, got %d", cfg.SampleRate, tone.SampleRate)
	}
	if RMS(tone.Samples) < 1000 {
		t.Errorf("Expected audible tone, got RMS %f", RMS(tone.Samples))
	}

	quiet, err := src.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if RMS(quiet.Samples) != 0 {
		t.Errorf("Expected silence, got RMS %f", RMS(quiet.Samples))
	}
}

func TestMockSourceGeneratesPacedSilence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferDuration = 10 * time.Millisecond

	src := NewMockSource(cfg, nil)
	defer src.Close()

	ctx := context.Background()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	start := time.Now()
	chunk, err := src.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("Expected paced read, returned after %v", elapsed)
	}
	if len(chunk.Samples) != cfg.BufferSize() {
		t.Errorf("Expected %d samples, got %d", cfg.BufferSize(), len(chunk.Samples))
	}
}

func TestMockSourceStopEndsStream(t *testing.T) {
	cfg := DefaultConfig()
	src := NewMockSource(cfg, nil)
	defer src.Close()

	ctx := context.Background()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := src.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := src.Stop(); err != nil {
		t.Fatalf("Second Stop failed: %v", err)
	}

	if _, err := src.Read(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF after Stop, got %v", err)
	}
}

func TestMockSourceStartAfterClose(t *testing.T) {
	src := NewMockSource(DefaultConfig(), nil)

	ctx := context.Background()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}

	if err := src.Start(ctx); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Expected ErrClosedPipe after Close, got %v", err)
	}
}

func TestMockSourceStats(t *testing.T) {
	cfg := DefaultConfig()
	src := NewMockSource(cfg, nil)
	defer src.Close()

	src.EnqueueSilence(40 * time.Millisecond)

	ctx := context.Background()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := src.Read(ctx); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	stats := src.Stats()
	if stats.ChunksRead != 1 {
		t.Errorf("Expected 1 chunk read, got %d", stats.ChunksRead)
	}
	if stats.Backend != "mock" {
		t.Errorf("Expected backend 'mock', got %q", stats.Backend)
	}
	if !stats.Running {
		t.Error("Expected running source")
	}
}

func TestMockSinkRecordsPlayback(t *testing.T) {
	cfg := DefaultConfig()
	sink := NewMockSink(cfg, nil)
	defer sink.Close()

	ctx := context.Background()
	if err := sink.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	chunk := AudioChunk{
		Samples:    []int16{1, 2, 3, 4},
		SampleRate: cfg.SampleRate,
		Channels:   1,
	}
	if err := sink.Write(ctx, chunk); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if stats := sink.Stats(); stats.BufferedSamples != 4 {
		t.Errorf("Expected 4 buffered samples, got %d", stats.BufferedSamples)
	}

	if err := sink.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	played := sink.Played()
	if len(played) != 4 || played[0] != 1 || played[3] != 4 {
		t.Errorf("Unexpected playback recording: %v", played)
	}
	if stats := sink.Stats(); stats.BufferedSamples != 0 {
		t.Errorf("Expected empty buffer after flush, got %d", stats.BufferedSamples)
	}
}

func TestMockSinkClearDiscards(t *testing.T) {
	cfg := DefaultConfig()
	sink := NewMockSink(cfg, nil)
	defer sink.Close()

	ctx := context.Background()
	if err := sink.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	chunk := AudioChunk{Samples: []int16{9, 9}, SampleRate: cfg.SampleRate, Channels: 1}
	if err := sink.Write(ctx, chunk); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := sink.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := sink.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if played := sink.Played(); len(played) != 0 {
		t.Errorf("Expected cleared audio to stay unplayed, got %v", played)
	}
	if stats := sink.Stats(); stats.ChunksWritten != 1 {
		t.Errorf("Expected write counter to survive Clear, got %d", stats.ChunksWritten)
	}
}

func TestMockSinkWriteWithoutStart(t *testing.T) {
	sink := NewMockSink(DefaultConfig(), nil)
	defer sink.Close()

	chunk := AudioChunk{Samples: []int16{1}, SampleRate: 16000, Channels: 1}
	if err := sink.Write(context.Background(), chunk); err == nil {
		t.Error("Expected error writing to a sink that was never started")
	}
}

func TestNewSourceMockBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock

	src, err := NewSource(cfg, nil)
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}
	defer src.Close()

	if src.Name() != "mock" {
		t.Errorf("Expected mock source, got %q", src.Name())
	}
}

func TestNewSinkMockBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock

	sink, err := NewSink(cfg, nil)
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}
	defer sink.Close()

	if sink.Name() != "mock" {
		t.Errorf("Expected mock sink, got %q", sink.Name())
	}
}

func TestNewSourceRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 0

	if _, err := NewSource(cfg, nil); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}
