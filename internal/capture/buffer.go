package capture

import (
	"sync"
)

// Chunk is one block of S16LE PCM samples as delivered by a single device
// callback. Chunks are immutable once appended.
type Chunk []byte

// SampleBuffer is a thread-safe, ordered, append-only store of captured audio
// chunks. Appends come from the device callback, reads from the monitor
// goroutine; the critical sections are kept minimal so the producer is never
// delayed by a reader.
//
// Sealing the buffer marks the transition into finalization: appends that
// race the seal are rejected, and DrainAll becomes legal exactly once.
type SampleBuffer struct {
	mu      sync.Mutex
	chunks  []Chunk
	bytes   int
	sealed  bool
	drained bool
}

// NewSampleBuffer returns an empty, unsealed buffer.
func NewSampleBuffer() *SampleBuffer {
	return &SampleBuffer{}
}

// Append copies pcm into the buffer, preserving arrival order. It reports
// whether the chunk was accepted; chunks arriving after the buffer has been
// sealed are rejected. The copy is taken because audio backends reuse their
// callback buffers.
func (b *SampleBuffer) Append(pcm []byte) bool {
	if len(pcm) == 0 {
		return false
	}
	chunk := make(Chunk, len(pcm))
	copy(chunk, pcm)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sealed {
		return false
	}
	b.chunks = append(b.chunks, chunk)
	b.bytes += len(chunk)
	return true
}

// Latest returns the most recently appended chunk, or nil if no chunk has
// arrived yet. It never blocks beyond the append critical section.
func (b *SampleBuffer) Latest() Chunk {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) == 0 {
		return nil
	}
	return b.chunks[len(b.chunks)-1]
}

// Len returns the number of chunks currently stored.
func (b *SampleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// Bytes returns the total byte size of all stored chunks.
func (b *SampleBuffer) Bytes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bytes
}

// Seal stops the buffer from accepting further chunks. Called when the
// session enters Finalizing, before the device stream is torn down, so no
// chunk appended after that point can leak into the artifact.
func (b *SampleBuffer) Seal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sealed = true
}

// DrainAll concatenates every stored chunk in arrival order and returns the
// combined PCM data. It may only be called once, after Seal; anything else
// is a programming error and is reported as such.
func (b *SampleBuffer) DrainAll() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.sealed {
		return nil, ErrBufferActive
	}
	if b.drained {
		return nil, ErrBufferDrained
	}
	b.drained = true

	pcm := make([]byte, 0, b.bytes)
	for _, chunk := range b.chunks {
		pcm = append(pcm, chunk...)
	}
	b.chunks = nil
	b.bytes = 0
	return pcm, nil
}

// Reset clears the buffer and reopens it for appends. Called at session
// start so stale chunks from a previous attempt can never bleed in.
func (b *SampleBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = nil
	b.bytes = 0
	b.sealed = false
	b.drained = false
}
