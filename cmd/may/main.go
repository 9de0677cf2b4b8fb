// May - voice-driven conversational assistant
// Wake-word gated listening, emotion-aware replies, spoken reminders
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ashmitan/go-may/internal/log"
	"github.com/ashmitan/go-may/pkg/assistant"
)

func main() {
	cfg, debug := parseFlags()

	level := "info"
	if debug {
		level = "debug"
	}
	log.Init(level)

	app, err := assistant.New(cfg)
	if err != nil {
		stdlog.Fatalf("❌ Configuration error: %v", err)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := app.Init(initCtx); err != nil {
		cancelInit()
		stdlog.Fatalf("❌ Initialization failed: %v", err)
	}
	cancelInit()
	defer app.Shutdown()

	diagCtx, cancelDiag := context.WithTimeout(context.Background(), 10*time.Second)
	fmt.Println(app.Diagnostics(diagCtx))
	cancelDiag()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		stdlog.Fatalf("❌ Runtime error: %v", err)
	}
}

// parseFlags parses command line flags and returns configuration.
func parseFlags() (assistant.Config, bool) {
	cfg := assistant.DefaultConfig()

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	envFile := flag.String("env", ".env", "Env file with API keys")
	dataDir := flag.String("data-dir", cfg.DataDir, "Directory for persisted assistant config")
	displayAddr := flag.String("display", "", "Side display host:port (overrides MAY_DISPLAY_ADDR)")
	batteryURL := flag.String("battery-url", "", "Battery status endpoint; 'off' disables checks")
	audioBackend := flag.String("audio-backend", cfg.AudioBackend, "Audio capture backend: auto, portaudio, mock")
	audioDevice := flag.String("audio-device", "", "Input device name substring")
	reengageCap := flag.Int("reengage-cap", 0, "Max silent re-engage prompts per conversation (0 = unlimited)")
	dashboard := flag.Bool("dashboard", false, "Enable the web dashboard")
	dashboardAddr := flag.String("dashboard-addr", cfg.DashboardAddr, "Dashboard listen address")
	flag.Parse()

	// API keys live in the env file during development.
	godotenv.Load(*envFile)

	cfg.Debug = *debug
	cfg.DataDir = *dataDir
	cfg.DisplayAddr = *displayAddr
	cfg.BatteryURL = *batteryURL
	cfg.AudioBackend = *audioBackend
	cfg.AudioDevice = *audioDevice
	cfg.ReengageCap = *reengageCap
	cfg.Dashboard = *dashboard
	cfg.DashboardAddr = *dashboardAddr

	cfg.LoadEnvConfig()
	return cfg, *debug
}
