package capture

import (
	"encoding/binary"
	"math"
)

// maxSampleValue is the full-scale magnitude of a 16-bit PCM sample, used to
// normalize amplitudes into [0, 1].
const maxSampleValue = 32768.0

// RMS returns the root-mean-square amplitude of the chunk's 16-bit samples,
// normalized so that full scale is 1.0. An empty chunk has an RMS of zero.
func RMS(chunk []byte) float64 {
	sampleCount := len(chunk) / 2 // 2 bytes per sample for 16-bit audio
	if sampleCount == 0 {
		return 0
	}

	var sum float64
	for i := 0; i+1 < len(chunk); i += 2 {
		sample := float64(int16(binary.LittleEndian.Uint16(chunk[i : i+2])))
		sum += sample * sample
	}

	return math.Sqrt(sum/float64(sampleCount)) / maxSampleValue
}

// IsSilent reports whether the chunk's RMS amplitude is at or below the
// threshold. An empty or absent chunk counts as silent, and an RMS exactly
// equal to the threshold is classified as silent. No smoothing happens here;
// debouncing over time is the session's job so this stays trivially testable.
func IsSilent(chunk []byte, threshold float64) bool {
	if len(chunk) == 0 {
		return true
	}
	return RMS(chunk) <= threshold
}

// LevelData describes the perceptual loudness of a chunk for UI meters.
type LevelData struct {
	Level    int // 0..100
	Clipping bool
}

// CalculateLevel converts a chunk into a 0-100 meter value on a decibel
// scale, flagging clipped samples.
func CalculateLevel(chunk []byte) LevelData {
	sampleCount := len(chunk) / 2
	if sampleCount == 0 {
		return LevelData{}
	}

	var sum float64
	isClipping := false
	for i := 0; i+1 < len(chunk); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(chunk[i : i+2]))
		v := math.Abs(float64(sample))
		sum += v * v
		if sample == math.MaxInt16 || sample == math.MinInt16 {
			isClipping = true
		}
	}

	rms := math.Sqrt(sum / float64(sampleCount))

	// Convert RMS to decibels relative to full scale, then map roughly
	// -60..-10 dB onto 0..100.
	db := 20 * math.Log10(rms/maxSampleValue)
	scaled := (db + 60) * (100.0 / 50.0)

	if isClipping {
		scaled = math.Max(scaled, 95)
	}
	scaled = math.Max(0, math.Min(100, scaled))

	return LevelData{Level: int(scaled), Clipping: isClipping}
}
