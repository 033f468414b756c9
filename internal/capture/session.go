package capture

import (
	"sync"
	"time"
)

// State is the lifecycle state of a recording session.
type State int32

const (
	StateIdle State = iota
	StateActive
	StateFinalizing
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateFinalizing:
		return "finalizing"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Config holds the immutable per-session capture parameters.
type Config struct {
	Source           string  // device name or ID, "sysdefault" for the default input
	SampleRate       int     // Hz
	Channels         int
	SilenceThreshold float64 // normalized RMS floor, inclusive
	SilenceDuration  time.Duration // continuous silence required to auto-stop
	MinRecordingTime time.Duration // auto-stop is suppressed before this has elapsed
	PollInterval     time.Duration // monitor tick interval
}

// withDefaults fills the zero values with the documented defaults.
func (c Config) withDefaults() Config {
	if c.Source == "" {
		c.Source = "sysdefault"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.Channels == 0 {
		c.Channels = 1
	}
	if c.SilenceThreshold == 0 {
		c.SilenceThreshold = 0.01
	}
	if c.SilenceDuration == 0 {
		c.SilenceDuration = 1500 * time.Millisecond
	}
	if c.MinRecordingTime == 0 {
		c.MinRecordingTime = 2 * time.Second
	}
	if c.PollInterval == 0 {
		c.PollInterval = 100 * time.Millisecond
	}
	return c
}

// TickOutcome is what a single monitor tick decided.
type TickOutcome int

const (
	// TickQuiet means the latest chunk was silent but the auto-stop
	// condition has not been met yet.
	TickQuiet TickOutcome = iota
	// TickSound means sound was observed; the silence timer was reset and
	// a duration update is due.
	TickSound
	// TickAutoStop means sustained silence was detected past the minimum
	// recording time and the session should finalize.
	TickAutoStop
)

// Session owns one recording lifecycle: its buffer, timers and silence
// debounce state. All state transitions are centralized here and guarded by
// a single mutex so no goroutine can observe a torn state.
type Session struct {
	mu  sync.Mutex
	cfg Config
	buf *SampleBuffer

	state        State
	startTime    time.Time
	silenceSince time.Time // zero value means "no continuous silence running"

	artifact *Artifact
	finalErr error

	now func() time.Time // injectable clock for tests
}

// NewSession creates an Idle session for the given configuration.
func NewSession(cfg Config) *Session {
	return &Session{
		cfg: cfg.withDefaults(),
		buf: NewSampleBuffer(),
		now: time.Now,
	}
}

// Buffer returns the session's sample buffer. The device callback appends to
// it directly; the buffer carries its own synchronization.
func (s *Session) Buffer() *SampleBuffer {
	return s.buf
}

// Config returns the session's immutable configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin transitions Idle -> Active: the buffer is reset, the start time is
// recorded and the silence timer is cleared.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrAlreadyRecording
	}
	s.buf.Reset()
	s.state = StateActive
	s.startTime = s.now()
	s.silenceSince = time.Time{}
	return nil
}

// Elapsed returns how long the session has been recording.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return 0
	}
	return s.now().Sub(s.startTime)
}

// Tick evaluates the latest chunk and advances the silence debounce state.
// It returns the outcome and the elapsed recording time at the moment of the
// tick. Any non-silent chunk fully resets the silence timer: a single loud
// sample mid-silence restarts the debounce from scratch.
func (s *Session) Tick() (TickOutcome, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return TickQuiet, 0
	}

	now := s.now()
	elapsed := now.Sub(s.startTime)

	if !IsSilent(s.buf.Latest(), s.cfg.SilenceThreshold) {
		s.silenceSince = time.Time{}
		return TickSound, elapsed
	}

	if s.silenceSince.IsZero() {
		s.silenceSince = now
		return TickQuiet, elapsed
	}

	if now.Sub(s.silenceSince) >= s.cfg.SilenceDuration && elapsed >= s.cfg.MinRecordingTime {
		return TickAutoStop, elapsed
	}
	return TickQuiet, elapsed
}

// BeginFinalize transitions Active -> Finalizing and seals the buffer. It
// reports whether the caller won the transition; a false return means the
// session is already finalizing or finalized and the caller should use
// Result instead of producing a second artifact.
func (s *Session) BeginFinalize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive && s.state != StateIdle {
		return false
	}
	s.state = StateFinalizing
	s.buf.Seal()
	return true
}

// CompleteFinalize records the outcome of finalization. On success the
// session becomes Finalized and owns its artifact. A write failure keeps the
// session in Finalizing so callers can observe the failure instead of
// proceeding with a nonexistent artifact.
func (s *Session) CompleteFinalize(artifact *Artifact, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinalizing {
		return
	}
	s.finalErr = err
	if err != nil {
		return
	}
	s.artifact = artifact
	s.state = StateFinalized
}

// CompleteEmpty records an empty capture: the session becomes Finalized with
// no artifact and an empty-result signal.
func (s *Session) CompleteEmpty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinalizing {
		return
	}
	s.finalErr = ErrEmptyCapture
	s.state = StateFinalized
}

// Failed reports whether finalization ran to completion and ended in an
// error, leaving the session in Finalizing. Such a session holds no device
// resources and can never leave Finalizing, so it must not block a new
// recording.
func (s *Session) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateFinalizing && s.finalErr != nil
}

// Result returns the finalization outcome recorded so far.
func (s *Session) Result() (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact, s.finalErr
}
