package prompt

import (
	"context"

	"ai-content-scheduler/internal/domain/ports/adapter"
)

var _ adapter.PromptEnhancer = (*NoopEnhancer)(nil)

// NoopEnhancer passes prompts through unchanged. Used when enhancement is
// disabled or no provider key is configured.
type NoopEnhancer struct{}

func NewNoopEnhancer() *NoopEnhancer { return &NoopEnhancer{} }

func (*NoopEnhancer) Enhance(_ context.Context, prompt string) (string, error) {
	return prompt, nil
}
