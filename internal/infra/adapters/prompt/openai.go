package prompt

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"ai-content-scheduler/internal/domain/ports/adapter"
)

var _ adapter.PromptEnhancer = (*OpenAIEnhancer)(nil)

const enhanceInstruction = "Rewrite the user's prompt into a single vivid, detailed prompt for an image generation model. Keep the subject and intent, add concrete style and composition detail. Reply with the rewritten prompt only."

// OpenAIEnhancer rewrites prompts via the Chat Completions API. Prompts are
// truncated to the configured token budget before they are sent.
type OpenAIEnhancer struct {
	client    openai.Client
	model     string
	maxTokens int
}

func NewOpenAIEnhancer(apiKey, model string, maxTokens int) (*OpenAIEnhancer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &OpenAIEnhancer{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (e *OpenAIEnhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	prompt = e.truncate(prompt)

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(enhanceInstruction),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("openai returned an empty completion")
	}
	return out, nil
}

// truncate bounds the prompt to maxTokens using the model's encoding.
// Counting failures are non-fatal: the prompt passes through unchanged.
func (e *OpenAIEnhancer) truncate(prompt string) string {
	enc, err := tiktoken.EncodingForModel(e.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return prompt
		}
	}
	toks := enc.Encode(prompt, nil, nil)
	if len(toks) <= e.maxTokens {
		return prompt
	}
	return enc.Decode(toks[:e.maxTokens])
}
