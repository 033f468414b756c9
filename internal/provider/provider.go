// Package provider abstracts the AI services that turn a recorded WAV file
// into translated text ready for injection. Each provider owns its own
// transport; callers only see Translate.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/thalesmourabh/voxcode/internal/conf"
	"github.com/thalesmourabh/voxcode/internal/errors"
)

// Provider translates spoken audio into written text in the target language.
type Provider interface {
	// Name identifies the provider and model for logs and the UI.
	Name() string
	// Translate transcribes the WAV file at audioPath, spoken in
	// sourceLang, and returns the text translated to targetLang.
	Translate(ctx context.Context, audioPath, sourceLang, targetLang string) (string, error)
}

// Available lists the provider names New accepts.
func Available() []string {
	return []string{"gemini", "openai", "claude"}
}

// New builds the provider selected in settings. An empty name falls back to
// Gemini, the default stack.
func New(ctx context.Context, settings *conf.ProviderSettings) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(settings.Name))
	if name == "" {
		name = "gemini"
	}

	switch name {
	case "gemini":
		return NewGemini(ctx, settings.APIKey, settings.Model)
	case "openai":
		return NewOpenAI(settings.APIKey, settings.Model)
	case "claude":
		return NewClaude(settings.APIKey, settings.Model)
	default:
		return nil, errors.Newf("unknown provider %q, available: %s", name, strings.Join(Available(), ", ")).
			Component("provider").
			Category(errors.CategoryConfiguration).
			Context("provider", name).
			Build()
	}
}

// translationPrompt is shared by the text-to-text providers, which receive a
// transcript rather than raw audio.
func translationPrompt(sourceLang, targetLang, transcript string) string {
	return fmt.Sprintf(`Translate the following %s text to %s.

Requirements:
- Return ONLY the translation, no explanations
- Output as a SINGLE paragraph (no line breaks)
- Maintain technical terminology
- Use natural, fluent %s

Text: %s`, sourceLang, targetLang, targetLang, transcript)
}

func providerError(name string, err error) error {
	return errors.New(fmt.Errorf("%s request failed: %w", name, err)).
		Component("provider").
		Category(errors.CategoryProvider).
		Context("provider", name).
		Build()
}

func emptyResponseError(name string) error {
	return errors.Newf("%s returned an empty response", name).
		Component("provider").
		Category(errors.CategoryProvider).
		Context("provider", name).
		Build()
}
