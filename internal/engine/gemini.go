package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini sends court images and game videos as inline blobs to a Gemini model.
type Gemini struct {
	APIKey string
	Model  string
}

// NewGemini constructs the engine with a default model when none is given.
func NewGemini(apiKey, model string) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{APIKey: strings.TrimSpace(apiKey), Model: model}
}

func (g *Gemini) Name() string { return "gemini" }

// Analyze runs one GenerateContent call.
func (g *Gemini) Analyze(ctx context.Context, in Input) (string, error) {
	if g.APIKey == "" {
		return "", errors.New("gemini engine: api key required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini engine: new client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.Model)
	model.SetTemperature(0)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt(in.Quarter, in.Category))},
	}

	resp, err := model.GenerateContent(ctx, geminiParts(in)...)
	if err != nil {
		return "", fmt.Errorf("gemini engine: generate: %w", err)
	}
	text := firstText(resp)
	if text == "" {
		return "", errors.New("gemini engine: empty response")
	}
	return text, nil
}

func geminiParts(in Input) []genai.Part {
	parts := make([]genai.Part, 0, 3)
	if in.Image.Present() {
		parts = append(parts, &genai.Blob{MIMEType: in.Image.MIMEType, Data: in.Image.Data})
	}
	if in.Video.Present() {
		parts = append(parts, &genai.Blob{MIMEType: in.Video.MIMEType, Data: in.Video.Data})
	}
	return append(parts, genai.Text(TranscriptPrompt(in.Transcript, in.Image.Present())))
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if out := strings.TrimSpace(b.String()); out != "" {
			return out
		}
	}
	return ""
}
