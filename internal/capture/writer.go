package capture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/thalesmourabh/voxcode/internal/errors"
)

// bitDepth is the PCM bit depth used for capture and export.
const bitDepth = 16

// Artifact is the finalized audio payload of a session: a self-contained WAV
// file plus its measured duration. The file is transient; the consumer
// deletes it once processed.
type Artifact struct {
	Path       string
	Duration   time.Duration
	Frames     int
	SampleRate int
	Channels   int
}

// ArtifactWriter serializes finished PCM data into WAV files, one unique
// file per session.
type ArtifactWriter struct {
	dir        string // target directory, empty for the system temp dir
	sampleRate int
	channels   int
}

// NewArtifactWriter returns a writer producing WAV files for the given
// format in dir.
func NewArtifactWriter(dir string, sampleRate, channels int) *ArtifactWriter {
	return &ArtifactWriter{dir: dir, sampleRate: sampleRate, channels: channels}
}

// Write saves the PCM data as a WAV file at a unique path and returns the
// artifact describing it. On any failure the partial file is removed so a
// corrupt artifact can never be observed.
func (w *ArtifactWriter) Write(pcm []byte) (*Artifact, error) {
	dir := w.dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(fmt.Errorf("failed to create export directory: %w", err)).
			Component("capture").
			Category(errors.CategoryFileIO).
			Context("dir", dir).
			Build()
	}

	path := filepath.Join(dir, fmt.Sprintf("voxcode-%s.wav", uuid.NewString()))

	outFile, err := os.Create(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to create artifact file: %w", err)).
			Component("capture").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}

	enc := wav.NewEncoder(outFile, w.sampleRate, bitDepth, w.channels, 1)

	if err := enc.Write(&audio.IntBuffer{
		Data:   byteSliceToInts(pcm),
		Format: &audio.Format{SampleRate: w.sampleRate, NumChannels: w.channels},
	}); err != nil {
		outFile.Close()
		os.Remove(path)
		return nil, errors.New(fmt.Errorf("failed to write to WAV encoder: %w", err)).
			Component("capture").
			Category(errors.CategoryFileIO).
			FileContext(path, int64(len(pcm))).
			Build()
	}

	if err := enc.Close(); err != nil {
		outFile.Close()
		os.Remove(path)
		return nil, errors.New(fmt.Errorf("failed to finalize WAV file: %w", err)).
			Component("capture").
			Category(errors.CategoryFileIO).
			FileContext(path, int64(len(pcm))).
			Build()
	}
	if err := outFile.Close(); err != nil {
		os.Remove(path)
		return nil, errors.New(fmt.Errorf("failed to close artifact file: %w", err)).
			Component("capture").
			Category(errors.CategoryFileIO).
			FileContext(path, int64(len(pcm))).
			Build()
	}

	frames := len(pcm) / 2 / w.channels
	return &Artifact{
		Path:       path,
		Duration:   time.Duration(frames) * time.Second / time.Duration(w.sampleRate),
		Frames:     frames,
		SampleRate: w.sampleRate,
		Channels:   w.channels,
	}, nil
}

// byteSliceToInts converts a byte slice to a slice of integers.
// Each pair of bytes is treated as a single 16-bit sample.
func byteSliceToInts(pcmData []byte) []int {
	samples := make([]int, 0, len(pcmData)/2)
	buf := bytes.NewBuffer(pcmData)

	for {
		var sample int16
		if err := binary.Read(buf, binary.LittleEndian, &sample); err != nil {
			break // end of buffer
		}
		samples = append(samples, int(sample))
	}

	return samples
}
