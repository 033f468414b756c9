package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/thalesmourabh/voxcode/internal/errors"
)

const defaultClaudeModel = string(anthropic.ModelClaude3_5SonnetLatest)

// Claude translates transcripts with an Anthropic model. Claude has no audio
// input, so Whisper handles transcription first; that makes an OpenAI key a
// hard requirement for this provider.
type Claude struct {
	client      anthropic.Client
	transcriber *OpenAI
	model       string
}

// NewClaude creates a Claude provider. An empty apiKey falls back to the
// ANTHROPIC_API_KEY environment variable.
func NewClaude(apiKey, model string) (*Claude, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.Newf("anthropic API key not configured, set provider.apikey or ANTHROPIC_API_KEY").
			Component("provider").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if model == "" {
		model = defaultClaudeModel
	}

	transcriber, err := NewOpenAI(os.Getenv("OPENAI_API_KEY"), "")
	if err != nil {
		return nil, errors.Newf("OPENAI_API_KEY required for audio transcription with claude").
			Component("provider").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return &Claude{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		transcriber: transcriber,
		model:       model,
	}, nil
}

func (c *Claude) Name() string {
	return fmt.Sprintf("Anthropic Claude (%s)", c.model)
}

func (c *Claude) Translate(ctx context.Context, audioPath, sourceLang, targetLang string) (string, error) {
	transcript, err := c.transcriber.transcribe(ctx, audioPath, sourceLang)
	if err != nil {
		return "", err
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(translationPrompt(sourceLang, targetLang, transcript))),
		},
	})
	if err != nil {
		return "", providerError("claude", err)
	}
	if len(msg.Content) == 0 {
		return "", emptyResponseError("claude")
	}

	text := strings.TrimSpace(msg.Content[0].Text)
	if text == "" {
		return "", emptyResponseError("claude")
	}
	return text, nil
}
