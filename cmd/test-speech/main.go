// Command test-speech validates the ElevenLabs synthesis stack end to
// end: HTTP synthesis, WebSocket synthesis, latency comparison, and
// optional local playback.
//
// Usage:
//
//	ELEVENLABS_API_KEY=sk_... go run ./cmd/test-speech/
//	ELEVENLABS_API_KEY=sk_... go run ./cmd/test-speech/ -play -text "Hello!"
//
// Flags:
//
//	-text         Phrase to synthesize
//	-voice        Voice preset name or raw voice ID
//	-play         Play the synthesized audio on the default output
//	-list-voices  List account voices and exit
//	-timeout      Synthesis timeout (default: 30s)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ashmitan/go-may/pkg/audio"
	"github.com/ashmitan/go-may/pkg/tts"
)

var (
	text       = flag.String("text", "Hi, I'm May. This is a speech synthesis test.", "Phrase to synthesize")
	voice      = flag.String("voice", "", "Voice preset name or ID (or set ELEVENLABS_VOICE_ID)")
	play       = flag.Bool("play", false, "Play the synthesized audio locally")
	listVoices = flag.Bool("list-voices", false, "List account voices and exit")
	timeout    = flag.Duration("timeout", 30*time.Second, "Synthesis timeout")
)

func main() {
	flag.Parse()

	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		fmt.Println("❌ ELEVENLABS_API_KEY environment variable required")
		os.Exit(1)
	}

	maskedKey := apiKey[:min(10, len(apiKey))] + "..."
	fmt.Printf("🔑 API Key: %s\n", maskedKey)

	voiceID := *voice
	if voiceID == "" {
		voiceID = os.Getenv("ELEVENLABS_VOICE_ID")
	}
	if voiceID == "" {
		voiceID = tts.DefaultElevenLabsVoice
	}
	voiceID = tts.ResolveElevenLabsVoice(voiceID)

	if name := tts.PresetNameForID(voiceID); name != "" {
		fmt.Printf("🎤 Voice: %s (%s)\n", name, voiceID)
	} else {
		fmt.Printf("🎤 Voice: %s\n", voiceID)
	}

	httpProvider, err := tts.NewElevenLabs(
		tts.WithAPIKey(apiKey),
		tts.WithVoice(voiceID),
	)
	if err != nil {
		fmt.Printf("❌ HTTP provider: %v\n", err)
		os.Exit(1)
	}
	defer httpProvider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *listVoices {
		if err := printVoices(ctx, httpProvider); err != nil {
			fmt.Printf("❌ Failed to list voices: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("💬 Text: %q\n\n", *text)

	// HTTP synthesis (buffered MP3, the assistant's primary path)
	fmt.Print("🌐 HTTP synthesis... ")
	httpResult, err := httpProvider.Synthesize(ctx, *text)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ %d bytes %s in %dms\n", len(httpResult.Audio), httpResult.Format.Encoding, httpResult.LatencyMs)

	// WebSocket synthesis (PCM, the fallback path)
	fmt.Print("🔌 WebSocket synthesis... ")
	wsProvider, err := tts.NewElevenLabsWS(
		tts.WithAPIKey(apiKey),
		tts.WithVoice(voiceID),
	)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	defer wsProvider.Close()

	wsResult, err := wsProvider.Synthesize(ctx, *text)
	if err != nil {
		fmt.Printf("⚠️  %v\n", err)
	} else {
		fmt.Printf("✅ %d bytes %s, first chunk in %dms\n", len(wsResult.Audio), wsResult.Format.Encoding, wsResult.LatencyMs)
		diff := httpResult.LatencyMs - wsResult.LatencyMs
		switch {
		case diff > 0:
			fmt.Printf("⏱️  WebSocket first byte %dms ahead of HTTP\n", diff)
		case diff < 0:
			fmt.Printf("⏱️  HTTP %dms ahead of WebSocket first byte\n", -diff)
		default:
			fmt.Println("⏱️  Even latency")
		}
	}

	if *play {
		fmt.Print("\n🔊 Playing HTTP audio... ")
		player, err := audio.NewPlayer()
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		if err := player.PlayMP3(httpResult.Audio); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅")

		if wsResult != nil {
			fmt.Print("🔊 Playing WebSocket audio... ")
			if err := player.PlayPCM(wsResult.Audio, wsResult.Format.SampleRate); err != nil {
				fmt.Printf("❌ %v\n", err)
				os.Exit(1)
			}
			fmt.Println("✅")
		}
	}

	fmt.Println("\n✅ Speech stack OK")
}

func printVoices(ctx context.Context, provider *tts.ElevenLabs) error {
	voices, err := provider.ListVoices(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n🎤 Available Voices (%d):\n\n", len(voices))
	fmt.Printf("%-30s %s\n", "NAME", "VOICE ID")
	fmt.Println(strings.Repeat("-", 55))
	for _, v := range voices {
		name := v.Name
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		fmt.Printf("%-30s %s\n", name, v.VoiceID)
	}
	fmt.Println()
	return nil
}
