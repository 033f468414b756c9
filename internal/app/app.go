// Package app wires the capture engine, AI provider, overlay bridge and text
// injector into the dictation daemon. One App owns the whole
// record-translate-inject pipeline and serializes its toggling.
package app

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/thalesmourabh/voxcode/internal/bridge"
	"github.com/thalesmourabh/voxcode/internal/capture"
	"github.com/thalesmourabh/voxcode/internal/conf"
	"github.com/thalesmourabh/voxcode/internal/errors"
	"github.com/thalesmourabh/voxcode/internal/injector"
	"github.com/thalesmourabh/voxcode/internal/logging"
	"github.com/thalesmourabh/voxcode/internal/observability"
	"github.com/thalesmourabh/voxcode/internal/provider"
)

// translator matches provider.Provider; the indirection keeps the pipeline
// testable without network credentials.
type translator interface {
	Name() string
	Translate(ctx context.Context, audioPath, sourceLang, targetLang string) (string, error)
}

// App is the long-running dictation daemon.
type App struct {
	settings *conf.Settings
	logger   *slog.Logger

	engine   *capture.Engine
	bridge   *bridge.Server
	provider translator
	injector *injector.Injector
	metrics  *observability.Metrics

	mu         sync.Mutex
	processing sync.WaitGroup

	removeArtifact func(string) error
}

// New assembles the daemon from settings. A failing provider falls back to
// Gemini so a typo in the config never leaves dictation dead.
func New(ctx context.Context, settings *conf.Settings) (*App, error) {
	logger := logging.ForService("app")
	metrics := observability.NewMetrics()

	prov, err := provider.New(ctx, &settings.Provider)
	if err != nil {
		if settings.Provider.Name == "" || settings.Provider.Name == "gemini" {
			return nil, err
		}
		logger.Warn("provider init failed, falling back to gemini",
			"provider", settings.Provider.Name, "error", err)
		prov, err = provider.New(ctx, &conf.ProviderSettings{Name: "gemini"})
		if err != nil {
			return nil, err
		}
	}
	logger.Info("AI provider ready", "provider", prov.Name())

	a := &App{
		settings: settings,
		logger:   logger,
		provider: prov,
		injector: injector.New(&settings.Injection),
		metrics:  metrics,
		engine: capture.NewEngine(
			&capture.MalgoOpener{Debug: settings.Debug},
			capture.WithExportDir(settings.Audio.Export.Path),
			capture.WithMetrics(metrics),
		),
		removeArtifact: os.Remove,
	}
	if settings.UI.Enabled {
		a.bridge = bridge.NewServer(fmt.Sprintf("%s:%d", settings.UI.Host, settings.UI.Port))
	}
	return a, nil
}

// Run blocks until ctx is canceled. Recording toggles on SIGUSR1 or on any
// line read from stdin, which is how hotkey daemons and shell bindings drive
// the app.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.bridge != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.bridge.Serve(ctx); err != nil {
				a.logger.Error("bridge stopped", "error", err)
			}
		}()
	}
	if a.settings.Telemetry.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.metrics.Serve(ctx, a.settings.Telemetry.Listen); err != nil {
				a.logger.Error("telemetry endpoint stopped", "error", err)
			}
		}()
	}

	toggle := make(chan os.Signal, 1)
	if sigs := toggleSignals(); len(sigs) > 0 {
		signal.Notify(toggle, sigs...)
		defer signal.Stop(toggle)
	}

	stdin := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case stdin <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	a.logger.Info("voxcode is running",
		"toggle", "SIGUSR1 or press Enter",
		"provider", a.provider.Name())

	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			wg.Wait()
			return nil
		case <-toggle:
			a.Toggle(ctx)
		case <-stdin:
			a.Toggle(ctx)
		}
	}
}

// Toggle starts a recording, or stops the active one and pushes the result
// through the pipeline.
func (a *App) Toggle(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.engine.State() == capture.StateActive {
		a.stopRecording(ctx)
		return
	}
	a.startRecording(ctx)
}

func (a *App) startRecording(ctx context.Context) {
	cfg := capture.Config{
		Source:           a.settings.Audio.Source,
		SampleRate:       a.settings.Audio.SampleRate,
		Channels:         a.settings.Audio.Channels,
		SilenceThreshold: a.settings.Audio.Silence.Threshold,
		SilenceDuration:  secondsToDuration(a.settings.Audio.Silence.Duration),
		MinRecordingTime: secondsToDuration(a.settings.Audio.Silence.MinRecording),
		PollInterval:     a.settings.Audio.Silence.PollInterval,
	}

	err := a.engine.Start(cfg, capture.Callbacks{
		OnAutoStop: func(artifact capture.Artifact) {
			a.processing.Add(1)
			go func() {
				defer a.processing.Done()
				a.processAndInject(ctx, &artifact)
			}()
		},
		OnEvent: a.onCaptureEvent,
	})
	if err != nil {
		a.logger.Error("failed to start recording", "error", err)
		a.showError(userMessage(err))
		return
	}
	a.showRecording()
}

func (a *App) stopRecording(ctx context.Context) {
	artifact, err := a.engine.Stop()
	if err != nil {
		a.logger.Warn("recording ended without audio", "error", err)
		a.showError(userMessage(err))
		return
	}
	a.processing.Add(1)
	go func() {
		defer a.processing.Done()
		a.processAndInject(ctx, artifact)
	}()
}

func (a *App) onCaptureEvent(event capture.Event) {
	switch event.Kind {
	case capture.EventDurationUpdate:
		if a.bridge != nil {
			a.bridge.DurationUpdate(event.Seconds)
		}
	case capture.EventCaptureError:
		a.logger.Error("capture failed", "error", event.Err)
		// A device loss can still salvage a partial take; the file is
		// incomplete, so discard it rather than injecting half a sentence.
		if event.Path != "" {
			if err := a.removeArtifact(event.Path); err != nil && !os.IsNotExist(err) {
				a.logger.Warn("failed to remove artifact", "path", event.Path, "error", err)
			}
		}
		a.showError(userMessage(event.Err))
	}
}

// processAndInject runs the translate-inject half of the pipeline. The
// artifact is transient and is removed whatever the outcome.
func (a *App) processAndInject(ctx context.Context, artifact *capture.Artifact) {
	defer func() {
		if err := a.removeArtifact(artifact.Path); err != nil && !os.IsNotExist(err) {
			a.logger.Warn("failed to remove artifact", "path", artifact.Path, "error", err)
		}
	}()

	if a.bridge != nil {
		a.bridge.ShowProcessing()
	}

	start := time.Now()
	text, err := a.provider.Translate(ctx, artifact.Path,
		a.settings.Provider.LanguageFrom, a.settings.Provider.LanguageTo)
	a.metrics.ProviderRequest(a.settings.Provider.Name, err, time.Since(start))
	if err != nil {
		a.logger.Error("translation failed", "error", err)
		a.showError(userMessage(err))
		return
	}
	a.logger.Info("translated", "chars", len(text), "took", time.Since(start).Round(time.Millisecond))

	if a.settings.Injection.Enabled {
		err = a.injector.Inject(ctx, text)
		a.metrics.Injection(err)
		if err != nil {
			a.logger.Error("injection failed", "error", err)
			a.showError(userMessage(err))
			return
		}
	}

	if a.bridge != nil {
		a.bridge.ShowSuccess(text)
	}
}

func (a *App) showRecording() {
	if a.bridge != nil {
		a.bridge.ShowRecording()
	}
}

func (a *App) showError(msg string) {
	if a.bridge != nil {
		a.bridge.ShowError(msg)
	}
}

// shutdown stops an in-flight recording and waits for pipeline goroutines.
func (a *App) shutdown() {
	if a.engine.State() == capture.StateActive {
		if _, err := a.engine.Stop(); err != nil && !errors.Is(err, capture.ErrEmptyCapture) {
			a.logger.Warn("failed to stop recording on shutdown", "error", err)
		}
	}
	a.processing.Wait()
	if a.bridge != nil {
		a.bridge.Hide()
	}
	a.logger.Info("voxcode stopped")
}

// userMessage flattens an error into something fit for the overlay.
func userMessage(err error) string {
	switch {
	case errors.Is(err, capture.ErrEmptyCapture):
		return "No audio was captured"
	case errors.Is(err, capture.ErrDeviceUnavailable):
		return "Microphone unavailable"
	case errors.Is(err, capture.ErrAlreadyRecording):
		return "Already recording"
	case errors.Is(err, capture.ErrNoActiveSession):
		return "Nothing is recording"
	default:
		return err.Error()
	}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
