// Package audio handles local audio playback for the assistant's voice.
//
// Playback runs through a single oto context opened at 44.1kHz stereo.
// MP3 replies from TTS are decoded with go-mp3 and fed straight to the
// device; raw PCM (the WebSocket streaming path) is upmixed and
// resampled to the context format first.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

const (
	// Context format. ElevenLabs MP3 output is 44.1kHz, go-mp3 always
	// decodes to 16-bit stereo.
	playbackRate     = 44100
	playbackChannels = 2

	// DefaultStreamRate is the sample rate of PCM chunks arriving from
	// the WebSocket TTS path (pcm_24000, mono).
	DefaultStreamRate = 24000
)

// Player plays MP3 and PCM audio on the local output device.
type Player struct {
	ctx        *oto.Context
	logger     *slog.Logger
	streamRate int

	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle

	// Streaming state
	streamMu   sync.Mutex
	streamPipe *io.PipeWriter
	streaming  bool
	streamDone chan struct{}

	// Callbacks
	OnPlaybackStart func()
	OnPlaybackEnd   func()

	// State
	speaking   bool
	speakingMu sync.Mutex
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithStreamRate sets the sample rate of incoming PCM stream chunks.
func WithStreamRate(rate int) PlayerOption {
	return func(p *Player) { p.streamRate = rate }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) PlayerOption {
	return func(p *Player) { p.logger = logger }
}

// NewPlayer creates an audio player. Initializes the system audio
// context; returns an error if the audio device is unavailable.
func NewPlayer(opts ...PlayerOption) (*Player, error) {
	p := &Player{
		logger:     slog.Default().With("component", "audio.player"),
		streamRate: DefaultStreamRate,
	}
	for _, opt := range opts {
		opt(p)
	}

	op := &oto.NewContextOptions{
		SampleRate:   playbackRate,
		ChannelCount: playbackChannels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	<-readyChan

	p.ctx = ctx
	p.logger.Debug("audio player initialized",
		"rate", playbackRate,
		"channels", playbackChannels,
	)
	return p, nil
}

// PlayMP3 decodes and plays MP3 audio synchronously. Blocks until
// playback finishes or Stop is called.
func (p *Player) PlayMP3(data []byte) error {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("audio: decode mp3: %w", err)
	}

	if decoder.SampleRate() != playbackRate {
		p.logger.Warn("mp3 sample rate differs from device",
			"mp3_rate", decoder.SampleRate(),
			"device_rate", playbackRate,
		)
	}

	return p.play(decoder)
}

// PlayPCM plays raw 16-bit mono PCM synchronously. The data is upmixed
// to stereo and resampled to the device rate.
func (p *Player) PlayPCM(pcm []byte, sampleRate int) error {
	if len(pcm) == 0 {
		return nil
	}
	converted := convertForPlayback(pcm, sampleRate)
	return p.play(bytes.NewReader(converted))
}

// play runs a single playback through the device, blocking until done.
func (p *Player) play(r io.Reader) error {
	player := p.ctx.NewPlayer(r)

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	p.setSpeaking(true)
	if p.OnPlaybackStart != nil {
		p.OnPlaybackStart()
	}

	player.Play()

	// Wait for playback to complete or be interrupted.
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	p.setSpeaking(false)
	if p.OnPlaybackEnd != nil {
		p.OnPlaybackEnd()
	}

	return player.Close()
}

// Stop interrupts the currently playing audio, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.logger.Debug("playback interrupted")
	}

	p.streamMu.Lock()
	if p.streamPipe != nil {
		p.streamPipe.CloseWithError(io.ErrClosedPipe)
		p.streamPipe = nil
		p.streaming = false
	}
	p.streamMu.Unlock()
}

// AppendPCMChunk appends a raw PCM chunk for streaming playback. The
// first chunk starts the stream; call FlushAndPlay to finish.
func (p *Player) AppendPCMChunk(pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}

	p.streamMu.Lock()
	if !p.streaming {
		p.startStreamLocked()
	}
	pipe := p.streamPipe
	p.streamMu.Unlock()

	if pipe == nil {
		return fmt.Errorf("audio: stream not started")
	}

	converted := convertForPlayback(pcm, p.streamRate)
	if _, err := pipe.Write(converted); err != nil {
		p.streamMu.Lock()
		p.streamPipe = nil
		p.streaming = false
		p.streamMu.Unlock()
		return fmt.Errorf("audio: write to stream: %w", err)
	}
	return nil
}

// startStreamLocked opens the pipe and begins device playback in the
// background. Must hold streamMu.
func (p *Player) startStreamLocked() {
	pr, pw := io.Pipe()
	p.streamPipe = pw
	p.streaming = true
	p.streamDone = make(chan struct{})

	go func() {
		defer close(p.streamDone)
		if err := p.play(pr); err != nil {
			p.logger.Warn("stream playback ended with error", "error", err)
		}
	}()
}

// FlushAndPlay signals end of the PCM stream and waits for the
// remaining audio to finish playing.
func (p *Player) FlushAndPlay() error {
	p.streamMu.Lock()
	pipe := p.streamPipe
	done := p.streamDone
	p.streamPipe = nil
	p.streaming = false
	p.streamMu.Unlock()

	if pipe == nil {
		return nil
	}
	pipe.Close()

	if done != nil {
		select {
		case <-done:
		case <-time.After(30 * time.Second):
			p.Stop()
		}
	}
	return nil
}

// IsSpeaking returns whether audio is currently playing.
func (p *Player) IsSpeaking() bool {
	p.speakingMu.Lock()
	defer p.speakingMu.Unlock()
	return p.speaking
}

func (p *Player) setSpeaking(v bool) {
	p.speakingMu.Lock()
	p.speaking = v
	p.speakingMu.Unlock()
}

// convertForPlayback upmixes mono PCM16 to stereo and resamples to the
// device rate.
func convertForPlayback(pcm []byte, srcRate int) []byte {
	samples := ConvertPCM16ToInt16(pcm)
	if srcRate != playbackRate {
		samples = Resample(samples, srcRate, playbackRate)
	}
	stereo := make([]int16, len(samples)*2)
	for i, s := range samples {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}
	return ConvertInt16ToPCM16(stereo)
}

// ConvertPCM16ToInt16 decodes little-endian PCM16 bytes into samples.
func ConvertPCM16ToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := 0; i < len(samples); i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// ConvertInt16ToPCM16 encodes samples as little-endian PCM16 bytes.
func ConvertInt16ToPCM16(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

// Resample converts samples from srcRate to dstRate by linear
// interpolation. Good enough for voice; this is not a music path.
func Resample(samples []int16, srcRate, dstRate int) []int16 {
	if srcRate == dstRate {
		return samples
	}

	ratio := float64(dstRate) / float64(srcRate)
	newLen := int(float64(len(samples)) * ratio)
	result := make([]int16, newLen)

	for i := 0; i < newLen; i++ {
		srcIdx := float64(i) / ratio
		idx := int(srcIdx)
		if idx >= len(samples)-1 {
			result[i] = samples[len(samples)-1]
		} else {
			frac := srcIdx - float64(idx)
			result[i] = int16(float64(samples[idx])*(1-frac) + float64(samples[idx+1])*frac)
		}
	}

	return result
}
