package prompt

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"ai-content-scheduler/internal/domain/ports/adapter"
)

var _ adapter.PromptEnhancer = (*GeminiEnhancer)(nil)

// GeminiEnhancer rewrites prompts using the official Gemini SDK.
type GeminiEnhancer struct {
	client *genai.Client
	model  string
}

func NewGeminiEnhancer(ctx context.Context, apiKey, baseURL, model string) (*GeminiEnhancer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiEnhancer{client: c, model: model}, nil
}

func (g *GeminiEnhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	contents := genai.Text(enhanceInstruction + "\n\nPrompt: " + prompt)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", errors.New("gemini returned an empty completion")
	}
	return out, nil
}
