package capture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRMS(t *testing.T) {
	t.Parallel()

	assert.Zero(t, RMS(nil))
	assert.Zero(t, RMS([]byte{}))
	assert.Zero(t, RMS(pcmChunk(0, 256)))

	// A constant-amplitude signal has an RMS equal to that amplitude.
	assert.InDelta(t, 3277.0/maxSampleValue, RMS(pcmChunk(3277, 256)), 1e-12)
	assert.InDelta(t, 1.0, RMS(pcmChunk(-32768, 256)), 1e-12)

	// A full-scale alternating square wave also sits at full scale.
	chunk := make([]byte, 0, 512)
	for i := 0; i < 128; i++ {
		chunk = append(chunk, pcmChunk(32767, 1)...)
		chunk = append(chunk, pcmChunk(-32767, 1)...)
	}
	assert.InDelta(t, 32767.0/maxSampleValue, RMS(chunk), 1e-12)
}

func TestIsSilent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		chunk     []byte
		threshold float64
		silent    bool
	}{
		{"empty chunk", nil, 0.01, true},
		{"all zeros", pcmChunk(0, 256), 0.01, true},
		{"quiet hum below threshold", pcmChunk(100, 256), 0.01, true},
		{"speech above threshold", pcmChunk(6554, 256), 0.01, false},
		{"exactly at threshold counts as silent", pcmChunk(3277, 256), 3277.0 / maxSampleValue, true},
		{"one step above threshold", pcmChunk(3277, 256), 3276.0 / maxSampleValue, false},
		{"zero threshold with any signal", pcmChunk(1, 256), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.silent, IsSilent(tt.chunk, tt.threshold))
		})
	}
}

func TestCalculateLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LevelData{}, CalculateLevel(nil))

	quiet := CalculateLevel(pcmChunk(10, 256))
	assert.Equal(t, 0, quiet.Level)
	assert.False(t, quiet.Clipping)

	loud := CalculateLevel(pcmChunk(16384, 256))
	assert.Greater(t, loud.Level, 50)
	assert.False(t, loud.Clipping)

	clipped := CalculateLevel(pcmChunk(math.MaxInt16, 256))
	assert.GreaterOrEqual(t, clipped.Level, 95)
	assert.True(t, clipped.Clipping)

	// More amplitude never reads as a lower meter value.
	assert.LessOrEqual(t, quiet.Level, loud.Level)
	assert.LessOrEqual(t, loud.Level, clipped.Level)
}
