package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/thalesmourabh/voxcode/internal/errors"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini sends the recorded audio straight to a multimodal Gemini model,
// which transcribes and translates in a single request.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider. An empty apiKey falls back to the
// GEMINI_API_KEY environment variable.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.Newf("gemini API key not configured, set provider.apikey or GEMINI_API_KEY").
			Component("provider").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, providerError("gemini", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string {
	return fmt.Sprintf("Google Gemini (%s)", g.model)
}

func (g *Gemini) Translate(ctx context.Context, audioPath, sourceLang, targetLang string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", errors.New(fmt.Errorf("failed to read audio for gemini: %w", err)).
			Component("provider").
			Category(errors.CategoryFileIO).
			FileContext(audioPath, 0).
			Build()
	}

	prompt := fmt.Sprintf(`You are a professional translator specializing in technical and programming content.

Task: Transcribe the audio in %s and translate it to %s.

Requirements:
1. Return ONLY the translated text, nothing else
2. Output as a SINGLE paragraph (no line breaks)
3. Maintain proper punctuation and grammar
4. Preserve technical terms accurately
5. Use natural, fluent %s

Audio to translate:`, sourceLang, targetLang, targetLang)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, "audio/wav"),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", providerError("gemini", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", emptyResponseError("gemini")
	}
	return text, nil
}
