// Package assistant wires the capture, recognition, response, and
// speech components into May's two loops: passive wake-word listening
// and active conversation.
//
// Lifecycle mirrors the rest of the project:
//
//	app, err := assistant.New(cfg)
//	if err := app.Init(ctx); err != nil { ... }
//	defer app.Shutdown()
//	app.Run(ctx) // blocks until ctx is cancelled
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ashmitan/go-may/pkg/audio"
	"github.com/ashmitan/go-may/pkg/audioio"
	"github.com/ashmitan/go-may/pkg/display"
	"github.com/ashmitan/go-may/pkg/emotion"
	"github.com/ashmitan/go-may/pkg/inference"
	"github.com/ashmitan/go-may/pkg/power"
	"github.com/ashmitan/go-may/pkg/reminder"
	"github.com/ashmitan/go-may/pkg/respond"
	"github.com/ashmitan/go-may/pkg/session"
	"github.com/ashmitan/go-may/pkg/store"
	"github.com/ashmitan/go-may/pkg/stt"
	"github.com/ashmitan/go-may/pkg/tts"
	"github.com/ashmitan/go-may/pkg/wake"
	"github.com/ashmitan/go-may/pkg/web"
)

// Playback is the slice of the audio player the assistant needs.
// *audio.Player satisfies it.
type Playback interface {
	PlayMP3(data []byte) error
	PlayPCM(pcm []byte, sampleRate int) error
	Stop()
	IsSpeaking() bool
}

// App orchestrates all assistant components and owns the two loops.
type App struct {
	config Config
	logger *slog.Logger

	st        *store.Store
	sess      *session.State
	wake      *wake.Detector
	reminders *reminder.Service
	battery   *power.Monitor
	disp      *display.Client
	hearer    stt.Hearer
	speech    tts.Provider
	player    Playback
	pipeline  *respond.Pipeline
	webSrv    *web.Server

	onEvent func(Event)

	mu     sync.Mutex
	status Status
}

// Option pre-seeds an App component, mostly for tests and the smoke
// binaries. Init only builds what is still nil.
type Option func(*App)

// WithStore sets the persisted config store.
func WithStore(st *store.Store) Option {
	return func(a *App) { a.st = st }
}

// WithHearer sets the speech capture and recognition frontend.
func WithHearer(h stt.Hearer) Option {
	return func(a *App) { a.hearer = h }
}

// WithSpeech sets the speech synthesis provider.
func WithSpeech(p tts.Provider) Option {
	return func(a *App) { a.speech = p }
}

// WithPlayback sets the audio output device.
func WithPlayback(p Playback) Option {
	return func(a *App) { a.player = p }
}

// WithDisplay sets the side display client.
func WithDisplay(d *display.Client) Option {
	return func(a *App) { a.disp = d }
}

// WithBattery sets the battery monitor.
func WithBattery(m *power.Monitor) Option {
	return func(a *App) { a.battery = m }
}

// WithPipeline sets the response pipeline.
func WithPipeline(p *respond.Pipeline) Option {
	return func(a *App) { a.pipeline = p }
}

// WithEventSink registers a callback for observable assistant events
// (dashboard feed). The callback must not block.
func WithEventSink(fn func(Event)) Option {
	return func(a *App) { a.onEvent = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// New creates the assistant application. Call Init before Run.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		config: cfg,
		logger: slog.Default(),
		sess:   session.New(),
		wake:   wake.New(),
	}
	for _, opt := range opts {
		opt(app)
	}
	app.logger = app.logger.With("component", "assistant")
	app.status.State = StatePassive

	return app, nil
}

// Init builds every component Run needs that was not injected.
// Speech synthesis, battery, and the display degrade to disabled when
// unconfigured; capture and recognition are required.
func (a *App) Init(ctx context.Context) error {
	if a.st == nil {
		st, err := store.Open(filepath.Join(a.config.DataDir, "config.json"))
		if err != nil {
			return fmt.Errorf("open config store: %w", err)
		}
		a.st = st
	}
	a.logger.Info("config store ready", "path", a.st.Path(), "reminders", a.st.Count(), "timezone", a.st.Timezone())

	if a.reminders == nil {
		a.reminders = reminder.NewService(a.st)
	}

	if a.battery == nil && a.config.BatteryURL != "off" {
		a.battery = a.buildBattery()
	}

	if a.disp == nil {
		a.disp = display.NewClient(a.config.DisplayAddr)
	}

	if a.speech == nil && a.config.ElevenLabsKey != "" {
		speech, err := a.buildSpeech()
		if err != nil {
			a.logger.Warn("speech synthesis unavailable, text only", "error", err)
		} else {
			a.speech = speech
		}
	}

	if a.player == nil && a.speech != nil {
		player, err := audio.NewPlayer(audio.WithLogger(a.logger))
		if err != nil {
			a.logger.Warn("audio output unavailable, text only", "error", err)
		} else {
			a.player = player
		}
	}

	if a.hearer == nil {
		hearer, err := a.buildHearer(ctx)
		if err != nil {
			return fmt.Errorf("speech recognition: %w", err)
		}
		a.hearer = hearer
	}

	if a.pipeline == nil {
		a.pipeline = a.buildPipeline()
	}

	if a.config.Dashboard {
		a.webSrv = web.NewServer(a.config.DashboardAddr)
		a.webSrv.OnReminders = func() any { return a.st.Reminders() }
		a.webSrv.OnInterrupt = a.Interrupt
		a.logger.Info("dashboard enabled", "addr", a.config.DashboardAddr)
	}

	return nil
}

// Shutdown releases all components. Safe after a failed Init.
func (a *App) Shutdown() {
	if a.webSrv != nil {
		if err := a.webSrv.Stop(); err != nil {
			a.logger.Warn("dashboard stop", "error", err)
		}
	}
	if a.player != nil {
		a.player.Stop()
	}
	if a.hearer != nil {
		if err := a.hearer.Close(); err != nil {
			a.logger.Warn("hearer close", "error", err)
		}
	}
	if a.speech != nil {
		if err := a.speech.Close(); err != nil {
			a.logger.Warn("speech close", "error", err)
		}
	}
	if a.disp != nil {
		a.disp.Close()
	}
	a.logger.Info("assistant shut down")
}

func (a *App) buildBattery() *power.Monitor {
	if a.config.BatteryURL != "" {
		a.logger.Info("battery monitor", "source", "http", "url", a.config.BatteryURL)
		return power.NewMonitor(power.NewHTTPSource(a.config.BatteryURL))
	}

	src, err := power.NewSysfsSource()
	if err != nil {
		a.logger.Info("battery monitoring unavailable", "error", err)
		return nil
	}
	a.logger.Info("battery monitor", "source", src.Name())
	return power.NewMonitor(src)
}

func (a *App) buildSpeech() (tts.Provider, error) {
	voiceID := a.st.VoiceID()

	http, err := tts.NewElevenLabs(
		tts.WithAPIKey(a.config.ElevenLabsKey),
		tts.WithVoice(voiceID),
		tts.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	ws, err := tts.NewElevenLabsWS(
		tts.WithAPIKey(a.config.ElevenLabsKey),
		tts.WithVoice(voiceID),
		tts.WithLogger(a.logger),
	)
	if err != nil {
		a.logger.Warn("streaming synthesis unavailable", "error", err)
		return http, nil
	}

	return tts.NewChainWithLogger(a.logger, http, ws)
}

func (a *App) buildHearer(ctx context.Context) (stt.Hearer, error) {
	captureCfg := audioio.DefaultConfig()
	if a.config.AudioBackend != "" {
		captureCfg.Backend = audioio.Backend(a.config.AudioBackend)
	}
	captureCfg.Device = a.config.AudioDevice

	source, err := audioio.NewSource(captureCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("audio capture: %w", err)
	}

	recognizer, err := stt.NewGoogle(ctx,
		stt.WithAPIKey(a.config.GoogleSTTKey),
		stt.WithLogger(a.logger),
	)
	if err != nil {
		source.Close()
		return nil, err
	}

	listener := stt.NewListener(source, recognizer, stt.WithLogger(a.logger))
	if err := listener.Calibrate(ctx); err != nil {
		a.logger.Warn("ambient calibration failed, using default threshold", "error", err)
	}
	return listener, nil
}

func (a *App) buildPipeline() *respond.Pipeline {
	var models inference.Provider
	if a.config.AnthropicKey != "" {
		chain, err := inference.NewAnthropicChain(a.config.AnthropicKey)
		if err != nil {
			a.logger.Warn("model chain unavailable, canned replies only", "error", err)
		} else {
			models = chain
		}
	}

	var voices respond.VoiceControl
	if a.speech != nil {
		voices = &voiceSwitch{providers: a.speechProviders(), st: a.st, logger: a.logger}
	}

	return respond.New(
		respond.WithEmotions(emotion.NewDefault(a.config.HumeKey)),
		respond.WithModels(models),
		respond.WithReminders(a.reminders),
		respond.WithVoices(voices),
		respond.WithLocation(a.st.Location),
		respond.WithLogger(a.logger),
	)
}

// speechProviders flattens the synthesis chain so voice changes reach
// every provider.
func (a *App) speechProviders() []tts.Provider {
	if chain, ok := a.speech.(*tts.Chain); ok {
		return chain.Providers()
	}
	return []tts.Provider{a.speech}
}

// voiceSwitch applies voice changes to the synthesizer and persists
// the preference so it survives restarts.
type voiceSwitch struct {
	providers []tts.Provider
	st        *store.Store
	logger    *slog.Logger
}

var _ respond.VoiceControl = (*voiceSwitch)(nil)

func (v *voiceSwitch) SetVoice(nameOrID string) {
	for _, p := range v.providers {
		if s, ok := p.(interface{ SetVoice(string) }); ok {
			s.SetVoice(nameOrID)
		}
	}
	if err := v.st.SetVoiceID(tts.ResolveElevenLabsVoice(nameOrID)); err != nil {
		v.logger.Error("failed to persist voice preference", "error", err)
	}
}

func (v *voiceSwitch) ListVoices(ctx context.Context) ([]tts.Voice, error) {
	for _, p := range v.providers {
		if l, ok := p.(interface {
			ListVoices(context.Context) ([]tts.Voice, error)
		}); ok {
			return l.ListVoices(ctx)
		}
	}
	return nil, errors.New("assistant: no synthesis provider can list voices")
}

// Diagnostics reports component connectivity for the startup summary.
func (a *App) Diagnostics(ctx context.Context) Diagnostics {
	d := Diagnostics{
		Models:     "unconfigured (canned replies only)",
		Emotion:    "lexical fallback only (no Hume credential)",
		Speech:     "unconfigured (text only)",
		Recognizer: "google speech-to-text (default credentials)",
		Display:    "disabled",
		Dashboard:  "off",
	}

	if a.config.AnthropicKey != "" {
		d.Models = "anthropic (" + strings.Join(inference.DefaultAnthropicModels, " -> ") + ")"
	}
	if !emotion.IsPlaceholder(a.config.HumeKey) {
		d.Emotion = "hume with lexical fallback"
	}
	if a.speech != nil {
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := a.speech.Health(healthCtx); err != nil {
			d.Speech = "elevenlabs (unreachable)"
		} else {
			d.Speech = "elevenlabs (ok)"
		}
		cancel()
	}
	if a.config.GoogleSTTKey != "" {
		d.Recognizer = "google speech-to-text (api key)"
	}
	if a.config.DisplayAddr != "" {
		if a.disp != nil && a.disp.Connected() {
			d.Display = "connected (" + a.config.DisplayAddr + ")"
		} else {
			d.Display = "disconnected (" + a.config.DisplayAddr + ")"
		}
	}
	if a.config.Dashboard {
		d.Dashboard = a.config.DashboardAddr
	}
	return d
}

// Diagnostics summarizes component connectivity at startup.
type Diagnostics struct {
	Models     string `json:"models"`
	Emotion    string `json:"emotion"`
	Speech     string `json:"speech"`
	Recognizer string `json:"recognizer"`
	Display    string `json:"display"`
	Dashboard  string `json:"dashboard"`
}

func (d Diagnostics) String() string {
	var b strings.Builder
	b.WriteString("=== System Diagnostics ===\n")
	fmt.Fprintf(&b, "Models:      %s\n", d.Models)
	fmt.Fprintf(&b, "Emotion:     %s\n", d.Emotion)
	fmt.Fprintf(&b, "Speech:      %s\n", d.Speech)
	fmt.Fprintf(&b, "Recognizer:  %s\n", d.Recognizer)
	fmt.Fprintf(&b, "Display:     %s\n", d.Display)
	fmt.Fprintf(&b, "Dashboard:   %s\n", d.Dashboard)
	b.WriteString("==========================")
	return b.String()
}
