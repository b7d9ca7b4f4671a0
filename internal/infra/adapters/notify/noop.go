package notify

import (
	"context"

	"ai-content-scheduler/internal/domain/ports/adapter"
)

var _ adapter.AlertNotifier = (*NoopNotifier)(nil)

// NoopNotifier is used when alerting is not configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (*NoopNotifier) SchedulePaused(context.Context, string, string) error { return nil }

func (*NoopNotifier) PassFailed(context.Context, string, error) error { return nil }
