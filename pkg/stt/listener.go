package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ashmitan/go-may/pkg/audioio"
)

// energyFloor is the lowest speech threshold calibration will set.
// Without it a silent room would make every chunk look like speech.
const energyFloor = 50

// Listener cuts utterances out of a microphone stream.
//
// It applies a simple energy gate: chunks above the threshold are
// speech, a run of quiet chunks ends the phrase. A short pre-roll is
// kept so the first syllable is not clipped.
type Listener struct {
	source     audioio.Source
	recognizer Recognizer
	config     *Config
	logger     *slog.Logger

	mu        sync.Mutex
	threshold float64
	started   bool
}

// NewListener creates a Listener over the given source and recognizer.
func NewListener(source audioio.Source, recognizer Recognizer, opts ...Option) *Listener {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Listener{
		source:     source,
		recognizer: recognizer,
		config:     cfg,
		logger:     cfg.Logger.With("component", "stt.listener"),
		threshold:  cfg.EnergyThreshold,
	}
}

// Threshold returns the current speech energy threshold.
func (l *Listener) Threshold() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.threshold
}

// Calibrate samples ambient noise and adjusts the speech threshold.
func (l *Listener) Calibrate(ctx context.Context) error {
	if err := l.ensureStarted(ctx); err != nil {
		return err
	}

	var (
		total    float64
		observed time.Duration
	)

	for observed < l.config.CalibrateFor {
		chunk, err := l.source.Read(ctx)
		if err != nil {
			return fmt.Errorf("calibrate: %w", err)
		}
		dur := chunk.Duration()
		total += audioio.RMS(chunk.Samples) * dur.Seconds()
		observed += dur
	}

	ambient := total / observed.Seconds()
	threshold := math.Max(ambient*l.config.DynamicRatio, energyFloor)

	l.mu.Lock()
	l.threshold = threshold
	l.mu.Unlock()

	l.logger.Info("calibrated for ambient noise",
		"ambient_rms", int(ambient),
		"threshold", int(threshold),
	)

	return nil
}

// Listen waits for a phrase and returns the captured audio.
//
// params.Timeout bounds the wait for speech to start; zero waits
// indefinitely. After speech starts, capture continues until
// PauseThreshold of silence or the phrase limit, whichever comes
// first. Bursts shorter than MinPhrase are treated as noise and
// capture resumes waiting.
func (l *Listener) Listen(ctx context.Context, params ListenParams) (*Utterance, error) {
	if err := l.ensureStarted(ctx); err != nil {
		return nil, err
	}

	phraseCap := params.PhraseLimit
	if phraseCap <= 0 {
		phraseCap = l.config.DefaultPhraseCap
	}

	threshold := l.Threshold()
	sampleRate := l.source.Config().SampleRate

	waitCtx := ctx
	cancel := func() {}
	if params.Timeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, params.Timeout)
	}
	defer cancel()

	var (
		capturing bool
		phrase    []int16
		phraseDur time.Duration
		silence   time.Duration
		preRoll   rollBuffer
	)
	preRoll.max = l.config.PreRoll

	for {
		readCtx := ctx
		if !capturing {
			readCtx = waitCtx
		}

		chunk, err := l.source.Read(readCtx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrSourceClosed
			}
			if !capturing && waitCtx.Err() != nil && ctx.Err() == nil {
				return nil, ErrWaitTimeout
			}
			return nil, err
		}

		dur := chunk.Duration()
		energy := audioio.RMS(chunk.Samples)

		if !capturing {
			preRoll.push(chunk, dur)
			if energy < threshold {
				continue
			}
			// Speech onset: seed the phrase with the pre-roll so the
			// first syllable survives.
			capturing = true
			phrase, phraseDur = preRoll.drain(phrase, phraseDur)
			silence = 0
			continue
		}

		phrase = append(phrase, chunk.Samples...)
		phraseDur += dur

		if energy < threshold {
			silence += dur
		} else {
			silence = 0
		}

		if silence >= l.config.PauseThreshold {
			if phraseDur-silence < l.config.MinPhrase {
				// Noise blip, not speech. Keep waiting.
				capturing = false
				phrase = phrase[:0]
				phraseDur = 0
				silence = 0
				continue
			}
			break
		}

		if phraseDur >= phraseCap {
			break
		}
	}

	l.logger.Debug("captured phrase",
		"duration_ms", phraseDur.Milliseconds(),
		"samples", len(phrase),
	)

	return &Utterance{
		PCM:        audioio.SamplesToBytes(phrase),
		SampleRate: sampleRate,
		Duration:   phraseDur,
	}, nil
}

// Hear captures one phrase and returns its transcript.
func (l *Listener) Hear(ctx context.Context, params ListenParams) (string, error) {
	utterance, err := l.Listen(ctx, params)
	if err != nil {
		return "", err
	}

	result, err := l.recognizer.Recognize(ctx, utterance.PCM, utterance.SampleRate)
	if err != nil {
		return "", err
	}

	l.logger.Debug("heard",
		"chars", len(result.Transcript),
		"audio_ms", utterance.Duration.Milliseconds(),
		"recognize_ms", result.LatencyMs,
	)

	return result.Transcript, nil
}

// Close stops and closes the audio source.
// The recognizer is owned by the caller and is not closed here.
func (l *Listener) Close() error {
	l.mu.Lock()
	started := l.started
	l.started = false
	l.mu.Unlock()

	if !started {
		return nil
	}
	return l.source.Close()
}

func (l *Listener) ensureStarted(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return nil
	}
	if err := l.source.Start(ctx); err != nil {
		return fmt.Errorf("start audio source: %w", err)
	}
	l.started = true
	return nil
}

// rollBuffer keeps the most recent chunks up to a duration cap.
type rollBuffer struct {
	chunks []audioio.AudioChunk
	durs   []time.Duration
	total  time.Duration
	max    time.Duration
}

func (b *rollBuffer) push(chunk audioio.AudioChunk, dur time.Duration) {
	b.chunks = append(b.chunks, chunk)
	b.durs = append(b.durs, dur)
	b.total += dur

	for len(b.chunks) > 1 && b.total-b.durs[0] >= b.max {
		b.total -= b.durs[0]
		b.chunks = b.chunks[1:]
		b.durs = b.durs[1:]
	}
}

// drain appends the buffered chunks to the phrase and resets the buffer.
func (b *rollBuffer) drain(phrase []int16, phraseDur time.Duration) ([]int16, time.Duration) {
	for _, chunk := range b.chunks {
		phrase = append(phrase, chunk.Samples...)
	}
	phraseDur += b.total

	b.chunks = b.chunks[:0]
	b.durs = b.durs[:0]
	b.total = 0

	return phrase, phraseDur
}

// Ensure Listener implements the Hearer interface.
var _ Hearer = (*Listener)(nil)
