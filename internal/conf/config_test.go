package conf

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSettings(t *testing.T) *Settings {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaultConfig()

	s := &Settings{}
	require.NoError(t, viper.Unmarshal(s))
	return s
}

func TestDefaults(t *testing.T) {
	s := defaultSettings(t)

	assert.Equal(t, 16000, s.Audio.SampleRate)
	assert.Equal(t, 1, s.Audio.Channels)
	assert.InDelta(t, 0.01, s.Audio.Silence.Threshold, 1e-9)
	assert.InDelta(t, 1.5, s.Audio.Silence.Duration, 1e-9)
	assert.InDelta(t, 2.0, s.Audio.Silence.MinRecording, 1e-9)
	assert.Equal(t, 100*time.Millisecond, s.Audio.Silence.PollInterval)
	assert.Equal(t, "gemini", s.Provider.Name)
	assert.Equal(t, 8765, s.UI.Port)
}

func TestDefaultsValidate(t *testing.T) {
	s := defaultSettings(t)
	assert.NoError(t, ValidateSettings(s))
}

func TestValidateSettings(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"zero_sample_rate", func(s *Settings) { s.Audio.SampleRate = 0 }, "invalid sample rate"},
		{"negative_channels", func(s *Settings) { s.Audio.Channels = -1 }, "invalid channel count"},
		{"threshold_above_one", func(s *Settings) { s.Audio.Silence.Threshold = 1.5 }, "invalid silence threshold"},
		{"zero_silence_duration", func(s *Settings) { s.Audio.Silence.Duration = 0 }, "invalid silence duration"},
		{"negative_min_recording", func(s *Settings) { s.Audio.Silence.MinRecording = -1 }, "invalid minimum recording time"},
		{"tiny_poll_interval", func(s *Settings) { s.Audio.Silence.PollInterval = time.Millisecond }, "invalid poll interval"},
		{"unknown_provider", func(s *Settings) { s.Provider.Name = "cortana" }, "unknown provider"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := defaultSettings(t)
			tc.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
