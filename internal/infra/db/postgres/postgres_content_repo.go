package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"ai-content-scheduler/internal/domain"
	"ai-content-scheduler/internal/domain/model"
	"ai-content-scheduler/internal/domain/ports/repository"
)

var _ repository.ContentRepository = (*contentRepo)(nil)

type contentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *contentRepo {
	return &contentRepo{pool: pool}
}

const contentColumns = `
id, schedule_id, owner_id, task_id, kind, generation_status, external_job_id,
content_url, storage_path, metadata, created_at, updated_at`

func (r *contentRepo) Save(ctx context.Context, tx repository.Tx, rec *model.ContentRecord) error {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	rec.UpdatedAt = time.Now()

	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO generated_content (id, schedule_id, owner_id, task_id, kind, generation_status,
  external_job_id, content_url, storage_path, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
  generation_status = EXCLUDED.generation_status,
  external_job_id = EXCLUDED.external_job_id,
  content_url = EXCLUDED.content_url,
  storage_path = EXCLUDED.storage_path,
  metadata = EXCLUDED.metadata,
  updated_at = EXCLUDED.updated_at;`

	_, err = execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.ScheduleID, rec.OwnerID, rec.TaskID, string(rec.Kind),
		string(rec.GenerationStatus), rec.ExternalJobID, rec.ContentURL,
		rec.StoragePath, meta, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (r *contentRepo) CountBySchedule(ctx context.Context, tx repository.Tx, scheduleID string, kind model.ContentKind, since *time.Time) (int, error) {
	q := `
SELECT COUNT(*) FROM generated_content
WHERE schedule_id = $1 AND kind = $2 AND generation_status <> 'failed'`
	args := []interface{}{scheduleID, string(kind)}
	if since != nil {
		q += ` AND created_at >= $3`
		args = append(args, *since)
	}

	row, err := pickRow(ctx, r.pool, tx, q+";", args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *contentRepo) ListProcessing(ctx context.Context, tx repository.Tx, limit int) ([]*model.ContentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + contentColumns + `
FROM generated_content
WHERE generation_status = 'processing' AND external_job_id <> ''
ORDER BY created_at ASC LIMIT ` + strconv.Itoa(limit) + `;`

	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ContentRecord
	for rows.Next() {
		rec, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *contentRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id, contentURL, storagePath string) error {
	// State filter keeps terminal transitions idempotent: a record that
	// already resolved is never rewritten.
	const q = `
UPDATE generated_content
SET generation_status = 'completed', content_url = $2, storage_path = $3, updated_at = now()
WHERE id = $1 AND generation_status = 'processing';`
	_, err := execSQL(ctx, r.pool, tx, q, id, contentURL, storagePath)
	return err
}

func (r *contentRepo) MarkFailed(ctx context.Context, tx repository.Tx, id, reason string) error {
	const q = `
UPDATE generated_content
SET generation_status = 'failed',
    metadata = coalesce(metadata, '{}'::jsonb) || jsonb_build_object('error', $2::text),
    updated_at = now()
WHERE id = $1 AND generation_status = 'processing';`
	_, err := execSQL(ctx, r.pool, tx, q, id, reason)
	return err
}

func scanContent(row pgx.Row) (*model.ContentRecord, error) {
	var (
		rec    model.ContentRecord
		kind   string
		status string
		meta   []byte
	)
	err := row.Scan(
		&rec.ID, &rec.ScheduleID, &rec.OwnerID, &rec.TaskID, &kind, &status,
		&rec.ExternalJobID, &rec.ContentURL, &rec.StoragePath, &meta,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	rec.Kind = model.ContentKind(kind)
	rec.GenerationStatus = model.GenerationStatus(status)
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &rec.Metadata)
	}
	return &rec, nil
}
