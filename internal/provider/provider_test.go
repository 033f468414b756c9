package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalesmourabh/voxcode/internal/conf"
)

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), &conf.ProviderSettings{Name: "copilot"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewRequiresAPIKey(t *testing.T) {
	// Guarantee no ambient credentials are picked up.
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			_, err := New(context.Background(), &conf.ProviderSettings{Name: name})
			assert.Error(t, err)
		})
	}
}

func TestNewDefaultsToGemini(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	p, err := New(context.Background(), &conf.ProviderSettings{})
	require.NoError(t, err)
	assert.Contains(t, p.Name(), "Gemini")
}

func TestNewOpenAIName(t *testing.T) {
	p, err := NewOpenAI("test-key", "")
	require.NoError(t, err)
	assert.Equal(t, "OpenAI (Whisper + gpt-4o-mini)", p.Name())

	custom, err := NewOpenAI("test-key", "gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, "OpenAI (Whisper + gpt-4.1)", custom.Name())
}

func TestNewClaudeRequiresWhisperKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClaude("anthropic-key", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestTranslationPrompt(t *testing.T) {
	prompt := translationPrompt("pt", "en", "ola mundo")
	assert.Contains(t, prompt, "Translate the following pt text to en")
	assert.Contains(t, prompt, "ola mundo")
	assert.Contains(t, prompt, "SINGLE paragraph")
}
