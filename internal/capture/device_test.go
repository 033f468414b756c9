package capture

import (
	"testing"

	"github.com/gen2brain/malgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToASCII(t *testing.T) {
	decoded, err := hexToASCII("73797364656661756c74")
	require.NoError(t, err)
	assert.Equal(t, "sysdefault", decoded)

	_, err = hexToASCII("not hex")
	assert.Error(t, err)
}

func TestMatchesDeviceSettings(t *testing.T) {
	var info malgo.DeviceInfo

	assert.True(t, matchesDeviceSettings("seeed-2mic-voicecard", info, "seeed-2mic-voicecard"))
	assert.False(t, matchesDeviceSettings("hw:0,0", info, "seeed-2mic-voicecard"))
}

func TestSelectCaptureSourceNoMatch(t *testing.T) {
	_, err := selectCaptureSource("missing-device", []malgo.DeviceInfo{{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-device")
}
