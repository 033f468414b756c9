package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalesmourabh/voxcode/internal/capture"
	"github.com/thalesmourabh/voxcode/internal/conf"
	"github.com/thalesmourabh/voxcode/internal/injector"
	"github.com/thalesmourabh/voxcode/internal/logging"
	"github.com/thalesmourabh/voxcode/internal/observability"
)

type fakeTranslator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []string
}

func (f *fakeTranslator) Name() string { return "fake" }

func (f *fakeTranslator) Translate(_ context.Context, audioPath, sourceLang, targetLang string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, audioPath+" "+sourceLang+"->"+targetLang)
	return f.text, f.err
}

// silentOpener satisfies capture.DeviceOpener without touching hardware.
type silentOpener struct{}

type noopStream struct{ onStop func() }

func (s *noopStream) Start() error { return nil }
func (s *noopStream) Stop() error {
	if s.onStop != nil {
		s.onStop()
	}
	return nil
}

func (silentOpener) Open(_ capture.StreamConfig, _ func([]byte), onStop func()) (capture.Stream, error) {
	return &noopStream{onStop: onStop}, nil
}

func newTestApp(t *testing.T, translator *fakeTranslator) *App {
	t.Helper()
	settings := &conf.Settings{}
	settings.Provider.LanguageFrom = "pt"
	settings.Provider.LanguageTo = "en"
	settings.Audio.Silence.PollInterval = 5 * time.Millisecond

	return &App{
		settings: settings,
		logger:   logging.ForService("app"),
		provider: translator,
		injector: injector.New(&settings.Injection),
		metrics:  observability.NewMetrics(),
		engine: capture.NewEngine(silentOpener{},
			capture.WithExportDir(t.TempDir())),
		removeArtifact: os.Remove,
	}
}

func writeArtifact(t *testing.T) *capture.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "take.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return &capture.Artifact{Path: path, SampleRate: 16000, Channels: 1}
}

func TestProcessAndInjectRemovesArtifact(t *testing.T) {
	translator := &fakeTranslator{text: "hello world"}
	a := newTestApp(t, translator)
	artifact := writeArtifact(t)

	a.processAndInject(context.Background(), artifact)

	assert.NoFileExists(t, artifact.Path)
	require.Len(t, translator.calls, 1)
	assert.Contains(t, translator.calls[0], artifact.Path)
	assert.Contains(t, translator.calls[0], "pt->en")
}

func TestProcessAndInjectRemovesArtifactOnFailure(t *testing.T) {
	translator := &fakeTranslator{err: assert.AnError}
	a := newTestApp(t, translator)
	artifact := writeArtifact(t)

	a.processAndInject(context.Background(), artifact)

	assert.NoFileExists(t, artifact.Path)
}

func TestCaptureErrorEventRemovesSalvagedArtifact(t *testing.T) {
	a := newTestApp(t, &fakeTranslator{})
	artifact := writeArtifact(t)

	// A mid-recording device loss salvages a partial take; the app must not
	// leave it behind in the export dir.
	a.onCaptureEvent(capture.Event{
		Kind: capture.EventCaptureError,
		Path: artifact.Path,
		Err:  capture.ErrDeviceUnavailable,
	})

	assert.NoFileExists(t, artifact.Path)
}

func TestToggleStartAndEmptyStop(t *testing.T) {
	a := newTestApp(t, &fakeTranslator{text: "unused"})
	ctx := context.Background()

	a.Toggle(ctx)
	assert.Equal(t, capture.StateActive, a.engine.State())

	// No chunks arrived, so stopping surfaces an empty capture instead of
	// feeding the pipeline.
	a.Toggle(ctx)
	assert.Equal(t, capture.StateFinalized, a.engine.State())
	a.processing.Wait()
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{capture.ErrEmptyCapture, "No audio was captured"},
		{capture.ErrDeviceUnavailable, "Microphone unavailable"},
		{capture.ErrAlreadyRecording, "Already recording"},
		{capture.ErrNoActiveSession, "Nothing is recording"},
		{assert.AnError, assert.AnError.Error()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, userMessage(tt.err))
	}
}
