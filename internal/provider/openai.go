package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/thalesmourabh/voxcode/internal/errors"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI translates in two steps: Whisper transcribes the audio, then a chat
// model translates the transcript.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI provider. An empty apiKey falls back to the
// OPENAI_API_KEY environment variable.
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.Newf("openai API key not configured, set provider.apikey or OPENAI_API_KEY").
			Component("provider").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (o *OpenAI) Name() string {
	return fmt.Sprintf("OpenAI (Whisper + %s)", o.model)
}

func (o *OpenAI) Translate(ctx context.Context, audioPath, sourceLang, targetLang string) (string, error) {
	transcript, err := o.transcribe(ctx, audioPath, sourceLang)
	if err != nil {
		return "", err
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(translationPrompt(sourceLang, targetLang, transcript)),
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", providerError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", emptyResponseError("openai")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", emptyResponseError("openai")
	}
	return text, nil
}

// transcribe runs Whisper over the WAV file. The Claude provider reuses this
// because Anthropic models do not accept audio input.
func (o *OpenAI) transcribe(ctx context.Context, audioPath, sourceLang string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", errors.New(fmt.Errorf("failed to open audio for whisper: %w", err)).
			Component("provider").
			Category(errors.CategoryFileIO).
			FileContext(audioPath, 0).
			Build()
	}
	defer f.Close()

	transcription, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:    openai.AudioModelWhisper1,
		File:     f,
		Language: openai.String(sourceLang),
	})
	if err != nil {
		return "", providerError("openai", err)
	}

	text := strings.TrimSpace(transcription.Text)
	if text == "" {
		return "", emptyResponseError("openai")
	}
	return text, nil
}
