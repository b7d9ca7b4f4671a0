package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-content-scheduler/internal/domain"
	"ai-content-scheduler/internal/domain/model"
	"ai-content-scheduler/internal/domain/ports/repository"
)

var _ repository.ScheduleRepository = (*scheduleRepo)(nil)

type scheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *scheduleRepo {
	return &scheduleRepo{pool: pool}
}

const scheduleColumns = `
id, owner_id, task_id, content_type, prompt, enabled, duration_hours,
interval_minutes, settings, status, created_at, updated_at, last_run, next_run`

func (r *scheduleRepo) Save(ctx context.Context, tx repository.Tx, s *model.Schedule) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.UpdatedAt = time.Now()

	const q = `
INSERT INTO schedules (id, owner_id, task_id, content_type, prompt, enabled, duration_hours,
  interval_minutes, settings, status, created_at, updated_at, last_run, next_run)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
  prompt = EXCLUDED.prompt,
  enabled = EXCLUDED.enabled,
  duration_hours = EXCLUDED.duration_hours,
  interval_minutes = EXCLUDED.interval_minutes,
  settings = EXCLUDED.settings,
  status = EXCLUDED.status,
  updated_at = EXCLUDED.updated_at,
  last_run = EXCLUDED.last_run,
  next_run = EXCLUDED.next_run;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.OwnerID, s.TaskID, string(s.ContentType), s.Prompt,
		s.Config.Enabled, s.Config.DurationHours, s.Config.IntervalMinutes,
		s.RawSettings, string(s.Status), s.CreatedAt, s.UpdatedAt, s.LastRun, s.NextRun)
	return err
}

func (r *scheduleRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Schedule, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	return scanSchedule(row)
}

func (r *scheduleRepo) FindDue(ctx context.Context, tx repository.Tx, now time.Time, limit int, contentType model.ContentType) ([]*model.Schedule, error) {
	q := `SELECT ` + scheduleColumns + `
FROM schedules
WHERE status = 'active' AND next_run IS NOT NULL AND next_run <= $1`
	args := []interface{}{now}
	if contentType != "" {
		q += ` AND content_type = $2`
		args = append(args, string(contentType))
	}
	if limit <= 0 {
		limit = 5
	}
	q += ` ORDER BY next_run ASC LIMIT ` + strconv.Itoa(limit) + `;`

	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *scheduleRepo) MarkPaused(ctx context.Context, tx repository.Tx, id string) error {
	const q = `
UPDATE schedules SET status = 'paused', next_run = NULL, updated_at = now()
WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *scheduleRepo) AdvanceRun(ctx context.Context, tx repository.Tx, id string, lastRun, nextRun time.Time) error {
	const q = `
UPDATE schedules SET last_run = $2, next_run = $3, updated_at = now()
WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, lastRun, nextRun)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSchedule(row pgx.Row) (*model.Schedule, error) {
	var (
		s       model.Schedule
		ctStr   string
		status  string
		lastRun *time.Time
		nextRun *time.Time
	)
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.TaskID, &ctStr, &s.Prompt,
		&s.Config.Enabled, &s.Config.DurationHours, &s.Config.IntervalMinutes,
		&s.RawSettings, &status, &s.CreatedAt, &s.UpdatedAt, &lastRun, &nextRun,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	s.ContentType = model.ContentType(ctStr)
	s.Status = model.ScheduleStatus(status)
	s.LastRun = lastRun
	s.NextRun = nextRun
	// Normalize the settings bundle once, at the read boundary.
	s.Settings = model.NormalizeSettings(s.RawSettings, s.ContentType)
	return &s, nil
}
