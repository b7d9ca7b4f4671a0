package adapter

import "context"

// AlertNotifier delivers operational alerts. Implementations must never
// fail the caller's unit of work; errors are for logging only.
type AlertNotifier interface {
	SchedulePaused(ctx context.Context, scheduleID, reason string) error
	PassFailed(ctx context.Context, pass string, err error) error
}
