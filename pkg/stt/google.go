package stt

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"
)

// Google transcribes audio with Google Cloud Speech-to-Text.
//
// Authentication is either an API key (WithAPIKey) or Application
// Default Credentials when no key is configured.
type Google struct {
	config  *Config
	service *speech.Service
	tokens  oauth2.TokenSource
	logger  *slog.Logger
}

// NewGoogle creates a Google Cloud Speech recognizer.
func NewGoogle(ctx context.Context, opts ...Option) (*Google, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		clientOpts []option.ClientOption
		tokens     oauth2.TokenSource
	)

	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	} else {
		ts, err := google.DefaultTokenSource(ctx, speech.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("no API key and no application default credentials: %w", err)
		}
		tokens = ts
		clientOpts = append(clientOpts, option.WithTokenSource(ts))
	}

	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := speech.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create speech service: %w", err)
	}

	return &Google{
		config:  cfg,
		service: service,
		tokens:  tokens,
		logger:  cfg.Logger.With("component", "stt.google"),
	}, nil
}

// Recognize transcribes one utterance of PCM16 mono audio.
func (g *Google) Recognize(ctx context.Context, audio []byte, sampleRate int) (*Result, error) {
	if len(audio) == 0 {
		return nil, ErrNoSpeech
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	req := &speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: int64(sampleRate),
			LanguageCode:    g.config.LanguageCode,
			Model:           g.config.Model,
		},
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio),
		},
	}

	start := time.Now()

	resp, err := g.service.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("speech recognize: %w", err)
	}

	latency := time.Since(start).Milliseconds()

	var (
		parts      []string
		confidence float64
	)
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		if alt.Transcript == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(alt.Transcript))
		if confidence == 0 {
			confidence = alt.Confidence
		}
	}

	transcript := strings.TrimSpace(strings.Join(parts, " "))
	if transcript == "" {
		return nil, ErrNoSpeech
	}

	g.logger.Debug("recognized speech",
		"chars", len(transcript),
		"confidence", confidence,
		"latency_ms", latency,
	)

	return &Result{
		Transcript: transcript,
		Confidence: confidence,
		LatencyMs:  latency,
	}, nil
}

// Health checks that credentials are usable.
// With an API key there is nothing to refresh, so it always passes.
func (g *Google) Health(ctx context.Context) error {
	if g.tokens == nil {
		return nil
	}
	if _, err := g.tokens.Token(); err != nil {
		return fmt.Errorf("refresh credentials: %w", err)
	}
	return nil
}

// Close releases resources. The generated client holds none.
func (g *Google) Close() error {
	return nil
}

// Ensure Google implements the Recognizer interface.
var _ Recognizer = (*Google)(nil)
