package capture

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pcmChunk builds a chunk of count 16-bit samples, all set to value.
func pcmChunk(value int16, count int) []byte {
	chunk := make([]byte, count*2)
	for i := 0; i < count; i++ {
		binary.LittleEndian.PutUint16(chunk[i*2:], uint16(value))
	}
	return chunk
}

func TestSampleBufferAppendPreservesOrder(t *testing.T) {
	buf := NewSampleBuffer()

	require.True(t, buf.Append(pcmChunk(1, 4)))
	require.True(t, buf.Append(pcmChunk(2, 4)))
	require.True(t, buf.Append(pcmChunk(3, 4)))

	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, 24, buf.Bytes())
	assert.Equal(t, Chunk(pcmChunk(3, 4)), buf.Latest())

	buf.Seal()
	pcm, err := buf.DrainAll()
	require.NoError(t, err)

	want := append(append(pcmChunk(1, 4), pcmChunk(2, 4)...), pcmChunk(3, 4)...)
	assert.Equal(t, want, pcm)
}

func TestSampleBufferAppendCopies(t *testing.T) {
	buf := NewSampleBuffer()

	src := pcmChunk(7, 4)
	require.True(t, buf.Append(src))

	// The backend reuses its callback buffer; mutation after Append must
	// not be visible in the stored chunk.
	for i := range src {
		src[i] = 0xFF
	}
	assert.Equal(t, Chunk(pcmChunk(7, 4)), buf.Latest())
}

func TestSampleBufferRejectsEmptyChunk(t *testing.T) {
	buf := NewSampleBuffer()
	assert.False(t, buf.Append(nil))
	assert.False(t, buf.Append([]byte{}))
	assert.Equal(t, 0, buf.Len())
}

func TestSampleBufferSealRejectsAppends(t *testing.T) {
	buf := NewSampleBuffer()
	require.True(t, buf.Append(pcmChunk(1, 4)))

	buf.Seal()
	assert.False(t, buf.Append(pcmChunk(2, 4)))
	assert.Equal(t, 1, buf.Len())

	pcm, err := buf.DrainAll()
	require.NoError(t, err)
	assert.Equal(t, pcmChunk(1, 4), pcm)
}

func TestSampleBufferDrainRequiresSeal(t *testing.T) {
	buf := NewSampleBuffer()
	require.True(t, buf.Append(pcmChunk(1, 4)))

	_, err := buf.DrainAll()
	assert.ErrorIs(t, err, ErrBufferActive)
}

func TestSampleBufferDrainIsSingleUse(t *testing.T) {
	buf := NewSampleBuffer()
	require.True(t, buf.Append(pcmChunk(1, 4)))
	buf.Seal()

	_, err := buf.DrainAll()
	require.NoError(t, err)

	_, err = buf.DrainAll()
	assert.ErrorIs(t, err, ErrBufferDrained)
}

func TestSampleBufferResetReopens(t *testing.T) {
	buf := NewSampleBuffer()
	require.True(t, buf.Append(pcmChunk(1, 4)))
	buf.Seal()
	_, err := buf.DrainAll()
	require.NoError(t, err)

	buf.Reset()
	assert.Equal(t, 0, buf.Len())
	assert.True(t, buf.Append(pcmChunk(9, 4)))

	buf.Seal()
	pcm, err := buf.DrainAll()
	require.NoError(t, err)
	assert.Equal(t, pcmChunk(9, 4), pcm)
}
