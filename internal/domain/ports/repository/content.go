package repository

import (
	"context"
	"time"

	"ai-content-scheduler/internal/domain/model"
)

// ContentRepository persists generated-content records.
type ContentRepository interface {
	Save(ctx context.Context, tx Tx, rec *model.ContentRecord) error

	// CountBySchedule counts records of the given kind for a schedule.
	// A nil since counts all-time; otherwise only records created at or
	// after since are counted. Failed records do not count against the
	// run limit.
	CountBySchedule(ctx context.Context, tx Tx, scheduleID string, kind model.ContentKind, since *time.Time) (int, error)

	// ListProcessing returns up to limit records with
	// generation_status=processing and a non-empty external job id.
	ListProcessing(ctx context.Context, tx Tx, limit int) ([]*model.ContentRecord, error)

	// MarkCompleted transitions a processing record to completed. The
	// update is filtered on generation_status='processing'; a record that
	// already reached a terminal state is left untouched.
	MarkCompleted(ctx context.Context, tx Tx, id, contentURL, storagePath string) error

	// MarkFailed transitions a processing record to failed, recording the
	// reason under the record's error metadata. Same state filter as
	// MarkCompleted.
	MarkFailed(ctx context.Context, tx Tx, id, reason string) error
}
