package capture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactWriterWrite(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter(dir, 16000, 1)

	pcm := pcmChunk(1000, 16000) // exactly one second of audio
	artifact, err := w.Write(pcm)
	require.NoError(t, err)
	require.NotNil(t, artifact)

	assert.Equal(t, dir, filepath.Dir(artifact.Path))
	assert.Equal(t, ".wav", filepath.Ext(artifact.Path))
	assert.Equal(t, time.Second, artifact.Duration)
	assert.Equal(t, 16000, artifact.Frames)
	assert.Equal(t, 16000, artifact.SampleRate)
	assert.Equal(t, 1, artifact.Channels)

	f, err := os.Open(artifact.Path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, 16000, buf.Format.SampleRate)
	assert.Equal(t, 1, buf.Format.NumChannels)
	require.Len(t, buf.Data, 16000)
	assert.Equal(t, 1000, buf.Data[0])
	assert.Equal(t, 1000, buf.Data[len(buf.Data)-1])
}

func TestArtifactWriterUniquePaths(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter(dir, 16000, 1)

	first, err := w.Write(pcmChunk(500, 1600))
	require.NoError(t, err)
	second, err := w.Write(pcmChunk(500, 1600))
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestArtifactWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	w := NewArtifactWriter(dir, 16000, 1)

	artifact, err := w.Write(pcmChunk(500, 1600))
	require.NoError(t, err)
	assert.FileExists(t, artifact.Path)
}

func TestArtifactWriterStereoDuration(t *testing.T) {
	w := NewArtifactWriter(t.TempDir(), 16000, 2)

	// 16000 samples across two channels is half a second of frames.
	artifact, err := w.Write(pcmChunk(500, 16000))
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, artifact.Duration)
	assert.Equal(t, 8000, artifact.Frames)
}

func TestArtifactWriterFailureLeavesNoFile(t *testing.T) {
	// A regular file sitting where the export directory should be makes
	// every write fail, regardless of the user the tests run as.
	blocked := filepath.Join(t.TempDir(), "exports")
	require.NoError(t, os.WriteFile(blocked, []byte("not a directory"), 0o644))

	w := NewArtifactWriter(blocked, 16000, 1)
	artifact, err := w.Write(pcmChunk(500, 1600))
	assert.Error(t, err)
	assert.Nil(t, artifact)
}
