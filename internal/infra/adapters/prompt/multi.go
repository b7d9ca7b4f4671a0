package prompt

import (
	"context"
	"errors"

	"ai-content-scheduler/internal/domain/ports/adapter"
)

var _ adapter.PromptEnhancer = (*MultiEnhancer)(nil)

// MultiEnhancer tries each enhancer in order and returns the first success.
type MultiEnhancer struct {
	chain []adapter.PromptEnhancer
}

func NewMultiEnhancer(chain ...adapter.PromptEnhancer) *MultiEnhancer {
	return &MultiEnhancer{chain: chain}
}

func (m *MultiEnhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, e := range m.chain {
		if e == nil {
			continue
		}
		out, err := e.Enhance(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no enhancer configured")
	}
	return "", lastErr
}
