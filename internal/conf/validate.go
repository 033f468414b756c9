package conf

import (
	"time"

	"github.com/thalesmourabh/voxcode/internal/errors"
)

// ValidateSettings checks the loaded settings for values the capture engine
// and providers cannot work with. It returns the first problem found.
func ValidateSettings(s *Settings) error {
	if s.Audio.SampleRate <= 0 {
		return errors.Newf("invalid sample rate: %d Hz, must be greater than 0", s.Audio.SampleRate).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.Audio.Channels <= 0 {
		return errors.Newf("invalid channel count: %d, must be greater than 0", s.Audio.Channels).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.Audio.Silence.Threshold < 0 || s.Audio.Silence.Threshold > 1 {
		return errors.Newf("invalid silence threshold: %f, must be within [0, 1]", s.Audio.Silence.Threshold).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.Audio.Silence.Duration <= 0 {
		return errors.Newf("invalid silence duration: %f seconds, must be greater than 0", s.Audio.Silence.Duration).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.Audio.Silence.MinRecording < 0 {
		return errors.Newf("invalid minimum recording time: %f seconds, must not be negative", s.Audio.Silence.MinRecording).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.Audio.Silence.PollInterval < 10*time.Millisecond {
		return errors.Newf("invalid poll interval: %s, must be at least 10ms", s.Audio.Silence.PollInterval).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	switch s.Provider.Name {
	case "gemini", "openai", "claude", "":
	default:
		return errors.Newf("unknown provider: %s, available: gemini, openai, claude", s.Provider.Name).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}
