package adapter

import "context"

// PromptEnhancer rewrites a user prompt into a richer generation prompt.
// Implementations must be safe to skip: callers fall back to the original
// prompt when Enhance fails.
type PromptEnhancer interface {
	Enhance(ctx context.Context, prompt string) (string, error)
}
