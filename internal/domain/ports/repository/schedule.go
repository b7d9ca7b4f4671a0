package repository

import (
	"context"
	"time"

	"ai-content-scheduler/internal/domain/model"
)

// ScheduleRepository persists recurring generation schedules.
type ScheduleRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Schedule) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Schedule, error)

	// FindDue returns up to limit schedules with status=active and
	// next_run<=now, oldest due first. A non-empty contentType restricts
	// the batch to that type. Overlapping passes are serialized by the
	// pass lock, not here.
	FindDue(ctx context.Context, tx Tx, now time.Time, limit int, contentType model.ContentType) ([]*model.Schedule, error)

	// MarkPaused forces status=paused and clears next_run.
	MarkPaused(ctx context.Context, tx Tx, id string) error

	// AdvanceRun persists last_run and next_run after a successful dispatch.
	AdvanceRun(ctx context.Context, tx Tx, id string, lastRun, nextRun time.Time) error
}
