package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ai-content-scheduler/internal/domain/model"
	"ai-content-scheduler/internal/domain/ports/adapter"
	"ai-content-scheduler/internal/domain/ports/repository"
	"ai-content-scheduler/internal/infra/metrics"
)

// stuckWarnAfter is purely observational: records processing longer than
// this are counted and logged but still re-polled on every pass.
const stuckWarnAfter = 24 * time.Hour

// CompletionPassResult is the return contract of one completion pass.
type CompletionPassResult struct {
	CompletedCount int `json:"completed_count"`
	FailedCount    int `json:"failed_count"`
	TotalChecked   int `json:"total_checked"`
}

// CompletionUseCase reconciles in-flight content records against the
// provider's job-status endpoint.
type CompletionUseCase interface {
	RunPass(ctx context.Context) (*CompletionPassResult, error)
}

var _ CompletionUseCase = (*completionUseCase)(nil)

type completionUseCase struct {
	content   repository.ContentRepository
	provider  adapter.GenerationProvider
	fetcher   adapter.AssetFetcher
	store     adapter.ObjectStore
	batchSize int
	log       *zerolog.Logger
	now       func() time.Time
}

func NewCompletionUseCase(
	content repository.ContentRepository,
	provider adapter.GenerationProvider,
	fetcher adapter.AssetFetcher,
	store adapter.ObjectStore,
	batchSize int,
	logger *zerolog.Logger,
) *completionUseCase {
	if batchSize <= 0 {
		batchSize = 50
	}
	l := logger.With().Str("component", "CompletionUseCase").Logger()
	return &completionUseCase{
		content:   content,
		provider:  provider,
		fetcher:   fetcher,
		store:     store,
		batchSize: batchSize,
		log:       &l,
		now:       time.Now,
	}
}

// RunPass processes each record independently: one record's failure is
// converted into its own failed state (or deferred to the next pass) and
// never aborts the batch.
func (u *completionUseCase) RunPass(ctx context.Context) (*CompletionPassResult, error) {
	start := time.Now()

	recs, err := u.content.ListProcessing(ctx, nil, u.batchSize)
	if err != nil {
		return nil, fmt.Errorf("list processing records: %w", err)
	}

	res := &CompletionPassResult{TotalChecked: len(recs)}
	stuck := 0
	for _, rec := range recs {
		switch u.resolveOne(ctx, rec) {
		case model.GenerationStatusCompleted:
			res.CompletedCount++
			metrics.IncContentFinalized("completed")
		case model.GenerationStatusFailed:
			res.FailedCount++
			metrics.IncContentFinalized("failed")
		default:
			if u.now().Sub(rec.CreatedAt) > stuckWarnAfter {
				stuck++
			}
		}
	}

	metrics.SetStuckProcessing(stuck)
	metrics.ObserveCompletionPass(time.Since(start).Seconds())
	u.log.Info().
		Int("checked", res.TotalChecked).
		Int("completed", res.CompletedCount).
		Int("failed", res.FailedCount).
		Int("stuck", stuck).
		Dur("duration", time.Since(start)).
		Msg("completion pass finished")
	return res, nil
}

// resolveOne returns the terminal status the record reached in this pass,
// or GenerationStatusProcessing when it is left for the next one.
func (u *completionUseCase) resolveOne(ctx context.Context, rec *model.ContentRecord) model.GenerationStatus {
	log := u.log.With().Str("record_id", rec.ID).Str("job_id", rec.ExternalJobID).Logger()

	status, err := u.provider.Status(ctx, rec.ExternalJobID)
	if err != nil {
		// Transient poll failure: the record stays processing and is
		// re-polled on the next pass.
		log.Warn().Err(err).Msg("job status poll failed")
		return model.GenerationStatusProcessing
	}

	switch status.State {
	case adapter.JobStateSucceeded:
		return u.finalizeSucceeded(ctx, rec, status, &log)
	case adapter.JobStateFailed:
		reason := status.Error
		if reason == "" {
			reason = "provider reported failure"
		}
		if err := u.content.MarkFailed(ctx, nil, rec.ID, reason); err != nil {
			log.Error().Err(err).Msg("mark failed did not land")
			return model.GenerationStatusProcessing
		}
		log.Info().Str("reason", reason).Msg("record failed")
		return model.GenerationStatusFailed
	default:
		return model.GenerationStatusProcessing
	}
}

// finalizeSucceeded downloads the provider output and uploads it under the
// record's deterministic storage path. A download or upload failure is a
// local recovery: the record is failed with the underlying error and the
// rest of the batch proceeds.
func (u *completionUseCase) finalizeSucceeded(ctx context.Context, rec *model.ContentRecord, status *adapter.JobStatus, log *zerolog.Logger) model.GenerationStatus {
	fail := func(stage string, cause error) model.GenerationStatus {
		reason := fmt.Sprintf("%s: %v", stage, cause)
		if err := u.content.MarkFailed(ctx, nil, rec.ID, reason); err != nil {
			log.Error().Err(err).Str("reason", reason).Msg("mark failed did not land")
			return model.GenerationStatusProcessing
		}
		log.Warn().Str("reason", reason).Msg("record failed during finalization")
		return model.GenerationStatusFailed
	}

	if status.OutputURL == "" {
		return fail("download output", fmt.Errorf("provider returned no output url"))
	}
	data, contentType, ext, err := u.fetcher.Fetch(ctx, status.OutputURL)
	if err != nil {
		return fail("download output", err)
	}
	if ext == "" {
		ext = defaultExt(rec.Kind)
	}

	path := storagePath(rec, u.now(), ext)
	url, err := u.store.Upload(ctx, path, data, contentType)
	if err != nil {
		return fail("store output", err)
	}

	if err := u.content.MarkCompleted(ctx, nil, rec.ID, url, path); err != nil {
		log.Error().Err(err).Msg("mark completed did not land")
		return model.GenerationStatusProcessing
	}
	log.Info().Str("path", path).Msg("record completed")
	return model.GenerationStatusCompleted
}

// storagePath builds {owner}/{content-type}/{project}/{kind}_{timestamp}.{ext}.
func storagePath(rec *model.ContentRecord, now time.Time, ext string) string {
	project := rec.TaskID
	if project == "" {
		project = rec.ScheduleID
	}
	return fmt.Sprintf("%s/%s/%s/%s_%d.%s",
		rec.OwnerID, rec.Kind.ContentType(), project, rec.Kind, now.Unix(), ext)
}

func defaultExt(kind model.ContentKind) string {
	if kind == model.ContentKindVideo {
		return "mp4"
	}
	return "png"
}
