package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thalesmourabh/voxcode/internal/errors"
	"github.com/thalesmourabh/voxcode/internal/logging"
	"github.com/thalesmourabh/voxcode/internal/observability"
)

// EventKind identifies a lifecycle notification for the UI channel.
type EventKind string

const (
	EventRecordingStarted EventKind = "recording_started"
	EventDurationUpdate   EventKind = "duration_update"
	EventRecordingStopped EventKind = "recording_stopped"
	EventCaptureError     EventKind = "capture_error"
)

// Event is a fire-and-forget lifecycle notification. Delivery is best-effort
// and never acknowledged.
type Event struct {
	Kind    EventKind
	Seconds int    // elapsed recording seconds, set for duration updates
	Path    string // artifact path, set for recording_stopped and salvaged capture_error
	Err     error  // set for capture_error
}

// Callbacks are supplied per Start call.
type Callbacks struct {
	// OnAutoStop receives the artifact when the session ends via silence
	// detection. It is invoked exactly once per session and never on a
	// manual stop, whose caller already gets the artifact synchronously.
	OnAutoStop func(Artifact)
	// OnEvent receives lifecycle notifications. It is called from the
	// engine's goroutines and must not block or call back into the engine.
	OnEvent func(Event)
}

// StreamConfig is what the engine asks a device opener for.
type StreamConfig struct {
	Source     string
	SampleRate int
	Channels   int
}

// Stream is a running device input stream.
type Stream interface {
	Start() error
	Stop() error
}

// DeviceOpener abstracts the audio backend so the engine can be driven by a
// fake in tests. Open prepares an input stream that delivers PCM chunks to
// onChunk on the backend's own cadence; onChunk must return in microseconds,
// so implementations hand it the raw callback buffer and nothing else.
// onStop fires when the device stops for any reason, including Stream.Stop.
type DeviceOpener interface {
	Open(cfg StreamConfig, onChunk func([]byte), onStop func()) (Stream, error)
}

// Engine owns the audio device stream and drives recording sessions. Only
// one session may hold the device at a time; a Start while another session
// is active is rejected, not queued.
type Engine struct {
	opener    DeviceOpener
	exportDir string
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu        sync.Mutex
	session   *Session
	stream    Stream
	quit      chan struct{}
	callbacks Callbacks
}

// Option configures an Engine.
type Option func(*Engine)

// WithExportDir sets the directory artifacts are written to. Empty means the
// system temp directory.
func WithExportDir(dir string) Option {
	return func(e *Engine) { e.exportDir = dir }
}

// WithMetrics attaches a metrics set to the engine.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger overrides the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine using the given device opener.
func NewEngine(opener DeviceOpener, opts ...Option) *Engine {
	e := &Engine{
		opener: opener,
		logger: logging.ForService("capture"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports the lifecycle state of the current session, or Idle if no
// session has been started yet.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return StateIdle
	}
	return e.session.State()
}

// Start opens the device input stream, begins delivering chunks to a fresh
// session and launches the monitor loop. It returns immediately; results
// arrive through Stop or the callbacks. Start fails with ErrAlreadyRecording
// while a previous session is active or finalizing, and with a
// DeviceUnavailable error when the input stream cannot be opened, in which
// case no session state changes. A previous session stuck in Finalizing
// because its artifact write failed is terminal and does not block a new
// recording.
func (e *Engine) Start(cfg Config, cb Callbacks) error {
	cfg = cfg.withDefaults()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		switch e.session.State() {
		case StateActive, StateFinalizing:
			if !e.session.Failed() {
				return ErrAlreadyRecording
			}
		}
	}

	session := NewSession(cfg)
	buf := session.Buffer()
	quit := make(chan struct{})

	onChunk := func(pcm []byte) {
		if buf.Append(pcm) {
			e.metrics.ChunkCaptured(len(pcm))
		}
	}
	onStop := func() {
		go e.handleDeviceStop(session, quit, cb)
	}

	// The session is active before the first chunk can arrive, so nothing
	// the device delivers is ever discarded by a late Begin.
	if err := session.Begin(); err != nil {
		return err
	}

	stream, err := e.opener.Open(StreamConfig{
		Source:     cfg.Source,
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
	}, onChunk, onStop)
	if err != nil {
		return deviceUnavailable(cfg.Source, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Stop()
		return deviceUnavailable(cfg.Source, err)
	}

	e.session = session
	e.stream = stream
	e.quit = quit
	e.callbacks = cb

	e.metrics.SessionStarted()
	e.logger.Info("recording started",
		"source", cfg.Source,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels)
	e.emit(cb, Event{Kind: EventRecordingStarted})

	go e.monitor(session, quit, cb)
	return nil
}

// Stop forces the active session into finalization and returns its artifact.
// It is safe to call from any goroutine and is idempotent: a second Stop on
// an already finalized session returns the prior result without producing a
// second artifact. Stop fails with ErrNoActiveSession when nothing has been
// started and with ErrEmptyCapture when the device produced no chunks.
func (e *Engine) Stop() (*Artifact, error) {
	e.mu.Lock()
	session := e.session
	e.mu.Unlock()

	if session == nil {
		return nil, ErrNoActiveSession
	}

	artifact, won, err := e.finalize(session)
	if won {
		e.metrics.ManualStopped()
	}
	return artifact, err
}

func deviceUnavailable(source string, cause error) error {
	return errors.New(fmt.Errorf("%w: cannot open capture source %q: %v", ErrDeviceUnavailable, source, cause)).
		Component("capture").
		Category(errors.CategoryAudioDevice).
		Context("source", source).
		Build()
}

// monitor polls the session at the configured interval and reacts to its
// tick outcomes. It exits when the session finalizes or quit closes.
func (e *Engine) monitor(s *Session, quit chan struct{}, cb Callbacks) {
	ticker := time.NewTicker(s.Config().PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			outcome, elapsed := s.Tick()
			e.metrics.SetCaptureLevel(CalculateLevel(s.Buffer().Latest()).Level)

			switch outcome {
			case TickSound:
				e.emit(cb, Event{Kind: EventDurationUpdate, Seconds: int(elapsed.Seconds())})
			case TickAutoStop:
				e.logger.Info("silence detected, stopping automatically", "elapsed", elapsed.Round(time.Millisecond))
				artifact, won, err := e.finalize(s)
				if !won {
					return
				}
				e.metrics.AutoStopped()
				if err != nil {
					e.metrics.CaptureError()
					e.emit(cb, Event{Kind: EventCaptureError, Err: err})
					return
				}
				if cb.OnAutoStop != nil {
					cb.OnAutoStop(*artifact)
				}
				return
			}
		}
	}
}

// handleDeviceStop runs when the backend reports the device stopped. An
// intentional teardown closes quit before stopping the stream, so anything
// else is an unexpected device loss: the session is terminated, buffered
// audio is salvaged into an artifact where possible, and the failure is
// reported through the event channel.
func (e *Engine) handleDeviceStop(s *Session, quit chan struct{}, cb Callbacks) {
	select {
	case <-quit:
		return
	default:
	}
	if s.State() != StateActive {
		return
	}

	e.logger.Error("capture device stopped unexpectedly")
	artifact, won, err := e.finalize(s)
	if !won {
		return
	}
	e.metrics.CaptureError()
	event := Event{
		Kind: EventCaptureError,
		Err: errors.New(fmt.Errorf("%w: device stopped mid-recording", ErrDeviceUnavailable)).
			Component("capture").
			Category(errors.CategoryAudioDevice).
			Build(),
	}
	// The salvaged artifact travels on the event so the consumer can
	// process or delete it; it would otherwise leak in the export dir.
	if artifact != nil {
		event.Path = artifact.Path
	}
	e.emit(cb, event)
	if err != nil && !errors.Is(err, ErrEmptyCapture) {
		e.logger.Error("failed to salvage interrupted recording", "error", err)
	}
}

// finalize drives Finalizing -> Finalized. Only the first caller performs
// the work; later callers receive the recorded result, which makes Stop and
// auto-stop race-free and idempotent.
func (e *Engine) finalize(s *Session) (*Artifact, bool, error) {
	e.mu.Lock()

	if !s.BeginFinalize() {
		e.mu.Unlock()
		artifact, err := s.Result()
		return artifact, false, err
	}

	// quit closes before the stream stops so the device stop callback can
	// tell an intentional teardown from a device loss.
	if e.quit != nil {
		close(e.quit)
		e.quit = nil
	}
	if e.stream != nil {
		if err := e.stream.Stop(); err != nil {
			e.logger.Warn("failed to stop device stream", "error", err)
		}
		e.stream = nil
	}
	cb := e.callbacks

	pcm, err := s.Buffer().DrainAll()
	if err != nil {
		// BeginFinalize sealed the buffer, so this only trips on a reused
		// session, which is a programming error worth surfacing.
		s.CompleteFinalize(nil, err)
		e.mu.Unlock()
		return nil, true, err
	}

	if len(pcm) == 0 {
		s.CompleteEmpty()
		e.mu.Unlock()
		e.logger.Warn("recording ended with no captured audio")
		return nil, true, ErrEmptyCapture
	}

	cfg := s.Config()
	writer := NewArtifactWriter(e.exportDir, cfg.SampleRate, cfg.Channels)
	artifact, werr := writer.Write(pcm)
	s.CompleteFinalize(artifact, werr)
	e.mu.Unlock()

	if werr != nil {
		e.logger.Error("artifact write failed, session left unfinalized", "error", werr)
		return nil, true, werr
	}

	e.metrics.ArtifactWritten()
	e.logger.Info("recording saved",
		"path", artifact.Path,
		"duration", artifact.Duration.Round(10*time.Millisecond))
	e.emit(cb, Event{Kind: EventRecordingStopped, Path: artifact.Path})
	return artifact, true, nil
}

func (e *Engine) emit(cb Callbacks, event Event) {
	if cb.OnEvent != nil {
		cb.OnEvent(event)
	}
}
