package audioio

import (
	"fmt"
	"log/slog"
	"runtime"
)

// NewSource opens a capture backend for cfg. BackendAuto resolves to
// the platform default.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	backend, logger, err := resolve(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("opening audio source",
		"backend", backend,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
	)

	switch backend {
	case BackendPortAudio:
		return newPortAudioSource(cfg, logger)
	case BackendMock:
		return NewMockSource(cfg, logger), nil
	}
	return nil, fmt.Errorf("audioio: unknown backend %q", backend)
}

// NewSink opens a playback backend for cfg.
func NewSink(cfg Config, logger *slog.Logger) (Sink, error) {
	backend, logger, err := resolve(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("opening audio sink",
		"backend", backend,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
	)

	switch backend {
	case BackendPortAudio:
		return newPortAudioSink(cfg, logger)
	case BackendMock:
		return NewMockSink(cfg, logger), nil
	}
	return nil, fmt.Errorf("audioio: unknown backend %q", backend)
}

// resolve validates cfg and settles BackendAuto and a nil logger.
func resolve(cfg Config, logger *slog.Logger) (Backend, *slog.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto || backend == "" {
		backend = defaultBackend()
	}
	return backend, logger, nil
}

// defaultBackend is portaudio on desktop platforms and mock everywhere
// else, so unusual build targets still construct.
func defaultBackend() Backend {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		return BackendPortAudio
	}
	return BackendMock
}

// AvailableBackends lists the backends this platform can open.
func AvailableBackends() []Backend {
	if defaultBackend() == BackendPortAudio {
		return []Backend{BackendPortAudio, BackendMock}
	}
	return []Backend{BackendMock}
}
