// Package respond turns one transcribed query into May's reply.
//
// Every query walks the same staged pipeline. Deterministic intents
// (time, date, reminders, voice control) answer locally and never
// touch the network. Everything else gets an emotion annotation, then
// a pass over the casual phrase table, then a trip through the model
// chain. When no model is configured, or the whole chain is down, an
// emotion-matched canned reply keeps the conversation going. The
// pipeline never fails: some reply always comes back.
//
// Example usage:
//
//	pipeline := respond.New(
//	    respond.WithEmotions(emotion.NewDefault(humeKey)),
//	    respond.WithModels(inference.NewAnthropicChain(apiKey)),
//	)
//	reply := pipeline.Respond(ctx, "how are you", nil)
//	fmt.Println(reply.Text)
package respond

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ashmitan/go-may/pkg/emotion"
	"github.com/ashmitan/go-may/pkg/inference"
	"github.com/ashmitan/go-may/pkg/reminder"
)

// Source identifies which pipeline stage produced a reply.
type Source string

const (
	// SourceIntent marks a deterministic answer: time, date,
	// reminders, voice control. Intent replies skip every provider.
	SourceIntent Source = "intent"

	// SourceCasual marks a canned reply from the casual phrase table.
	SourceCasual Source = "casual"

	// SourceModel marks a generated reply from the model chain.
	SourceModel Source = "model"

	// SourceFallback marks an emotion-matched canned reply used when
	// no model is configured or the whole chain failed.
	SourceFallback Source = "fallback"
)

// Reply is the outcome of one pipeline pass.
type Reply struct {
	// Text is what May says.
	Text string

	// Source identifies the stage that produced Text.
	Source Source

	// Emotion is the detected tone of the query. Nil for intent
	// replies, which skip detection.
	Emotion *emotion.Result

	// Model that generated Text. Empty unless Source is SourceModel.
	Model string

	// EmotionMs is the emotion detection latency in milliseconds.
	EmotionMs int64

	// GenerateMs is the model generation latency in milliseconds.
	GenerateMs int64
}

// Config holds pipeline dependencies and generation settings.
type Config struct {
	// Emotions annotates queries with the user's tone. Defaults to
	// the offline lexical detector.
	Emotions emotion.Detector

	// Models generates conversational replies. Nil disables
	// generation and routes non-intent queries to the canned
	// fallbacks.
	Models inference.Provider

	// Reminders handles "remind me" requests. Nil disables the
	// intent.
	Reminders *reminder.Service

	// Voices handles voice change and list requests. Nil makes those
	// intents report that ElevenLabs is not configured.
	Voices VoiceControl

	// Location resolves the timezone for time and date answers. A
	// nil return makes the pipeline apologize instead of answering.
	Location func() *time.Location

	// Clock returns the current time. Overridable for tests.
	Clock func() time.Time

	// MaxTokens caps generated replies. Voice answers stay short.
	MaxTokens int

	// Temperature for model generation.
	Temperature float64

	// Logger for pipeline diagnostics.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Emotions:    emotion.NewLexical(),
		Location:    func() *time.Location { return time.Local },
		Clock:       time.Now,
		MaxTokens:   100,
		Temperature: 0.7,
		Logger:      slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Option configures the pipeline.
type Option func(*Config)

// WithEmotions sets the emotion detector.
func WithEmotions(d emotion.Detector) Option {
	return func(c *Config) { c.Emotions = d }
}

// WithModels sets the reply generation provider.
func WithModels(p inference.Provider) Option {
	return func(c *Config) { c.Models = p }
}

// WithReminders sets the reminder service.
func WithReminders(s *reminder.Service) Option {
	return func(c *Config) { c.Reminders = s }
}

// WithVoices sets the voice control backend.
func WithVoices(v VoiceControl) Option {
	return func(c *Config) { c.Voices = v }
}

// WithLocation sets the timezone resolver for time and date answers.
func WithLocation(fn func() *time.Location) Option {
	return func(c *Config) { c.Location = fn }
}

// WithClock sets the time source.
func WithClock(fn func() time.Time) Option {
	return func(c *Config) { c.Clock = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// Pipeline produces a reply for every query.
type Pipeline struct {
	config *Config
	logger *slog.Logger
}

// New creates a reply pipeline.
func New(opts ...Option) *Pipeline {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Pipeline{
		config: cfg,
		logger: cfg.Logger.With("component", "respond"),
	}
}

// Respond runs query through the pipeline stages in order and always
// returns a reply. recent carries the last few conversation exchanges
// for model context; nil is fine.
func (p *Pipeline) Respond(ctx context.Context, query string, recent []string) *Reply {
	if reply := p.intentReply(ctx, query); reply != nil {
		p.logger.Debug("intent reply", "text", reply.Text)
		return reply
	}

	emoStart := time.Now()
	emo := p.detectEmotion(ctx, query)
	emoMs := time.Since(emoStart).Milliseconds()

	if text, ok := casualReply(query); ok {
		p.logger.Debug("casual reply", "text", text)
		return &Reply{Text: text, Source: SourceCasual, Emotion: emo, EmotionMs: emoMs}
	}

	if p.config.Models != nil {
		genStart := time.Now()
		resp, err := p.config.Models.Chat(ctx, &inference.ChatRequest{
			Messages: []inference.Message{
				inference.NewUserMessage(BuildPrompt(query, emo, recent)),
			},
			MaxTokens:   p.config.MaxTokens,
			Temperature: p.config.Temperature,
		})
		if err != nil {
			p.logger.Warn("model generation failed, using canned fallback", "error", err)
		} else if text := strings.TrimSpace(resp.Message.Content); text != "" {
			return &Reply{
				Text:       text,
				Source:     SourceModel,
				Emotion:    emo,
				Model:      resp.Model,
				EmotionMs:  emoMs,
				GenerateMs: time.Since(genStart).Milliseconds(),
			}
		}
	}

	return &Reply{Text: emotionReply(emo), Source: SourceFallback, Emotion: emo, EmotionMs: emoMs}
}

// detectEmotion annotates the query and never fails: any detector
// error reads as calm at the lexical confidence.
func (p *Pipeline) detectEmotion(ctx context.Context, query string) *emotion.Result {
	if p.config.Emotions == nil {
		return &emotion.Result{Primary: emotion.BucketCalm, Score: emotion.FallbackScore}
	}

	result, err := p.config.Emotions.Detect(ctx, query)
	if err != nil || result == nil {
		if err != nil {
			p.logger.Warn("emotion detection failed, assuming calm", "error", err)
		}
		return &emotion.Result{Primary: emotion.BucketCalm, Score: emotion.FallbackScore}
	}
	return result
}
