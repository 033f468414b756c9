// Package capture owns the live microphone stream and the auto-stop engine.
//
// A recording session moves through Idle -> Active -> Finalizing -> Finalized.
// While a session is active three goroutines cooperate: the audio backend's
// device callback appends PCM chunks to the session's SampleBuffer, a monitor
// goroutine polls the latest chunk at a fixed interval and decides when
// sustained silence should end the recording, and the caller's goroutine may
// force a manual stop at any time. The buffer is the only structure shared
// between them and its locking favors the producer so device callbacks never
// stall.
//
// Finalization drains the buffer exactly once, concatenates the chunks in
// arrival order and writes a single WAV artifact. The path of that artifact
// is handed to the caller; deleting it after consumption is the caller's job.
package capture
