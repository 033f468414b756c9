package capture

import (
	"github.com/thalesmourabh/voxcode/internal/errors"
)

// Error sentinel values for common capture errors
var (
	// ErrAlreadyRecording is returned by Start when a session is still
	// active or finalizing. Concurrent sessions are rejected, not queued.
	ErrAlreadyRecording = errors.Newf("a recording session is already active").
		Component("capture").
		Category(errors.CategoryState).
		Build()

	// ErrNoActiveSession is returned by Stop when nothing has been started.
	ErrNoActiveSession = errors.Newf("no active recording session").
		Component("capture").
		Category(errors.CategoryState).
		Build()

	// ErrEmptyCapture signals that a session ended with zero captured
	// chunks. No artifact is produced and no file is written.
	ErrEmptyCapture = errors.Newf("no audio was captured").
		Component("capture").
		Category(errors.CategoryAudioCapture).
		Build()

	// ErrBufferActive is returned when DrainAll is called before the buffer
	// has been sealed. Draining a buffer that is still receiving chunks is a
	// programming error and is signaled instead of silently proceeding.
	ErrBufferActive = errors.Newf("drain called on an unsealed sample buffer").
		Component("capture").
		Category(errors.CategoryBuffer).
		Build()

	// ErrBufferDrained is returned on a second DrainAll call.
	ErrBufferDrained = errors.Newf("sample buffer already drained").
		Component("capture").
		Category(errors.CategoryBuffer).
		Build()

	// ErrDeviceUnavailable marks device open failures. The engine wraps it
	// with the requested source name so the error is actionable.
	ErrDeviceUnavailable = errors.NewStd("capture device unavailable")
)
