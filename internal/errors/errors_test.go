package errors

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	ee := Newf("boom").Build()
	require.NotNil(t, ee)
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.WithinDuration(t, time.Now(), ee.Timestamp, time.Second)
	assert.EqualError(t, ee, "boom")
}

func TestBuilderMetadata(t *testing.T) {
	t.Parallel()

	ee := Newf("device open failed: %s", "hw:0,0").
		Component("capture").
		Category(CategoryAudioDevice).
		Context("source", "hw:0,0").
		Build()

	assert.Equal(t, "capture", ee.Component)
	assert.Equal(t, CategoryAudioDevice, ee.Category)
	assert.Equal(t, "hw:0,0", ee.GetContext()["source"])
}

func TestUnwrapPreservesSentinel(t *testing.T) {
	t.Parallel()

	ee := New(io.ErrUnexpectedEOF).Category(CategoryFileIO).Build()
	assert.True(t, Is(ee, io.ErrUnexpectedEOF))

	var target *EnhancedError
	assert.True(t, As(ee, &target))
	assert.Equal(t, CategoryFileIO, target.Category)
}

func TestGetContextReturnsCopy(t *testing.T) {
	t.Parallel()

	ee := Newf("x").Context("k", "v").Build()
	ctx := ee.GetContext()
	ctx["k"] = "mutated"
	assert.Equal(t, "v", ee.GetContext()["k"])
}

func TestLogAttrs(t *testing.T) {
	t.Parallel()

	ee := Newf("x").Component("bridge").Category(CategoryWebSocket).Context("clients", 3).Build()
	attrs := ee.LogAttrs()
	assert.Contains(t, attrs, "bridge")
	assert.Contains(t, attrs, "websocket")
	assert.Contains(t, attrs, 3)
}
