// Package stt provides speech-to-text for the assistant.
//
// Two pieces cooperate here. The Listener watches a microphone source
// and cuts utterances out of the stream using an energy threshold: it
// waits for speech to start, records until the speaker pauses, and
// returns the captured PCM. The Recognizer turns that PCM into text;
// the production implementation is Google Cloud Speech-to-Text via the
// generated speech/v1 client.
//
// Example:
//
//	src, _ := audioio.NewSource(audioio.DefaultConfig(), nil)
//	rec, _ := stt.NewGoogle(ctx, stt.WithAPIKey(key))
//	listener := stt.NewListener(src, rec)
//
//	listener.Calibrate(ctx)
//	text, err := listener.Hear(ctx, stt.ListenParams{PhraseLimit: 8 * time.Second})
package stt

import (
	"context"
	"time"
)

// Result is a recognized utterance.
type Result struct {
	// Transcript is the recognized text.
	Transcript string

	// Confidence is the recognizer's confidence in [0, 1], when reported.
	Confidence float64

	// LatencyMs is the recognition round-trip in milliseconds.
	LatencyMs int64
}

// Recognizer converts captured PCM16 audio to text.
type Recognizer interface {
	// Recognize transcribes a single utterance of little-endian PCM16
	// mono audio at the given sample rate.
	// It returns ErrNoSpeech when the audio contains no recognizable
	// speech.
	Recognize(ctx context.Context, audio []byte, sampleRate int) (*Result, error)

	// Health checks if the recognizer is available.
	Health(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ListenParams controls a single listen.
type ListenParams struct {
	// Timeout is how long to wait for speech to start.
	// Zero means wait indefinitely.
	Timeout time.Duration

	// PhraseLimit caps the length of a captured phrase.
	// Zero applies the configured default.
	PhraseLimit time.Duration
}

// Utterance is a captured phrase before recognition.
type Utterance struct {
	// PCM is little-endian PCM16 mono audio.
	PCM []byte

	// SampleRate is the capture rate in Hz.
	SampleRate int

	// Duration is the length of the captured phrase.
	Duration time.Duration
}

// Hearer is the combined listen-then-recognize operation the assistant
// loops consume. Listener implements it; tests use MockHearer.
type Hearer interface {
	// Calibrate measures ambient noise and sets the speech threshold.
	Calibrate(ctx context.Context) error

	// Hear waits for a phrase and returns its transcript.
	// It returns ErrWaitTimeout when no speech starts within
	// params.Timeout, and ErrNoSpeech when the captured audio is
	// unintelligible.
	Hear(ctx context.Context, params ListenParams) (string, error)

	// Close releases the underlying audio source.
	Close() error
}
