// Command test-listen validates the microphone capture and speech
// recognition stack: opens the audio source, calibrates against ambient
// noise, then captures phrases and prints their transcripts.
//
// Usage:
//
//	GOOGLE_STT_API_KEY=AIza... go run ./cmd/test-listen/
//	go run ./cmd/test-listen/ -capture-only        # no credentials needed
//	go run ./cmd/test-listen/ -loopback            # echo the mic to the speakers
//	go run ./cmd/test-listen/ -backend mock -capture-only
//
// Flags:
//
//	-backend       Audio backend (portaudio, mock; default: auto-detect)
//	-device        Input device name substring
//	-loops         Number of phrases to capture
//	-timeout       How long to wait for speech to start
//	-phrase-limit  Maximum phrase length
//	-lang          Recognition language code
//	-capture-only  Skip transcription, report captured audio only
//	-loopback      Play each captured phrase back (implies -capture-only)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashmitan/go-may/internal/log"
	"github.com/ashmitan/go-may/pkg/audioio"
	"github.com/ashmitan/go-may/pkg/stt"
)

var (
	backend     = flag.String("backend", "", "Audio backend (portaudio, mock)")
	device      = flag.String("device", "", "Input device name substring")
	loops       = flag.Int("loops", 3, "Number of phrases to capture")
	timeout     = flag.Duration("timeout", 15*time.Second, "How long to wait for speech to start")
	phraseLimit = flag.Duration("phrase-limit", 8*time.Second, "Maximum phrase length")
	lang        = flag.String("lang", "en-US", "Recognition language code")
	captureOnly = flag.Bool("capture-only", false, "Skip transcription, report captured audio only")
	loopback    = flag.Bool("loopback", false, "Play each captured phrase back (implies -capture-only)")
	debug       = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)
	logger := log.L()

	if *loopback {
		*captureOnly = true
	}

	fmt.Println("🎤 Listen Pipeline Test")
	fmt.Println("=======================")

	captureCfg := audioio.DefaultConfig()
	if *backend != "" {
		captureCfg.Backend = audioio.Backend(*backend)
	}
	captureCfg.Device = *device

	source, err := audioio.NewSource(captureCfg, logger)
	if err != nil {
		fmt.Printf("❌ Audio source: %v\n", err)
		fmt.Printf("   Available backends: %v\n", audioio.AvailableBackends())
		os.Exit(1)
	}
	fmt.Printf("🎙️  Source: %s (%d Hz)\n", source.Name(), source.Config().SampleRate)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sink audioio.Sink
	if *loopback {
		sink, err = audioio.NewSink(captureCfg, logger)
		if err != nil {
			fmt.Printf("❌ Audio sink: %v\n", err)
			os.Exit(1)
		}
		defer sink.Close()
		if err := sink.Start(ctx); err != nil {
			fmt.Printf("❌ Audio sink: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("🔈 Loopback sink: %s\n", sink.Name())
	}

	var recognizer stt.Recognizer
	if *captureOnly {
		fmt.Println("📼 Capture-only mode, transcription disabled")
	} else {
		apiKey := os.Getenv("GOOGLE_STT_API_KEY")
		if apiKey == "" {
			fmt.Println("🔑 GOOGLE_STT_API_KEY not set, trying application default credentials")
		}
		recognizer, err = stt.NewGoogle(ctx,
			stt.WithAPIKey(apiKey),
			stt.WithLanguage(*lang),
			stt.WithLogger(logger),
		)
		if err != nil {
			fmt.Printf("❌ Recognizer: %v\n", err)
			fmt.Println("   Tip: rerun with -capture-only to test audio capture alone")
			os.Exit(1)
		}
	}

	listener := stt.NewListener(source, recognizer, stt.WithLogger(logger))
	defer listener.Close()

	fmt.Print("🤫 Calibrating for ambient noise... ")
	if err := listener.Calibrate(ctx); err != nil {
		fmt.Printf("⚠️  %v\n", err)
	} else {
		fmt.Printf("✅ threshold %d\n", int(listener.Threshold()))
	}
	fmt.Println()

	captured := 0
	for i := 1; i <= *loops; i++ {
		if ctx.Err() != nil {
			break
		}

		fmt.Printf("📝 Phrase %d/%d: speak now\n", i, *loops)

		if *captureOnly {
			utterance, err := listener.Listen(ctx, stt.ListenParams{
				Timeout:     *timeout,
				PhraseLimit: *phraseLimit,
			})
			if err != nil {
				reportListenError(err)
				continue
			}
			fmt.Printf("   ✅ %d bytes, %dms of audio\n",
				len(utterance.PCM), utterance.Duration.Milliseconds())
			if sink != nil {
				if err := playBack(ctx, sink, utterance); err != nil {
					fmt.Printf("   ⚠️  Loopback: %v\n", err)
				}
			}
			captured++
			continue
		}

		start := time.Now()
		text, err := listener.Hear(ctx, stt.ListenParams{
			Timeout:     *timeout,
			PhraseLimit: *phraseLimit,
		})
		if err != nil {
			reportListenError(err)
			continue
		}
		fmt.Printf("   💬 %q (%dms)\n", text, time.Since(start).Milliseconds())
		captured++
	}

	fmt.Println()
	if src, ok := source.(audioio.SourceWithStats); ok {
		stats := src.Stats()
		fmt.Printf("📊 Capture: %d chunks, %d samples, %d overruns\n",
			stats.ChunksRead, stats.SamplesRead, stats.Overruns)
	}

	if captured == 0 {
		fmt.Println("❌ No phrases captured")
		os.Exit(1)
	}
	fmt.Printf("✅ Captured %d/%d phrases\n", captured, *loops)
}

// playBack echoes a captured phrase through the sink.
func playBack(ctx context.Context, sink audioio.Sink, utterance *stt.Utterance) error {
	chunk := audioio.AudioChunk{
		Samples:    audioio.BytesToSamples(utterance.PCM),
		SampleRate: utterance.SampleRate,
		Channels:   1,
	}
	if err := sink.Write(ctx, chunk); err != nil {
		return err
	}
	return sink.Flush(ctx)
}

func reportListenError(err error) {
	switch {
	case errors.Is(err, stt.ErrNoSpeech):
		fmt.Println("   🤐 No speech recognized")
	case errors.Is(err, stt.ErrWaitTimeout):
		fmt.Println("   ⏰ Timed out waiting for speech")
	case errors.Is(err, context.Canceled):
		fmt.Println("   🛑 Interrupted")
	default:
		fmt.Printf("   ❌ %v\n", err)
	}
}
