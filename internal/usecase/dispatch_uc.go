package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-content-scheduler/internal/domain"
	"ai-content-scheduler/internal/domain/model"
	"ai-content-scheduler/internal/domain/ports/adapter"
	"ai-content-scheduler/internal/domain/ports/repository"
	"ai-content-scheduler/internal/infra/metrics"
)

// ScheduleResultStatus classifies the outcome of one schedule in a pass.
type ScheduleResultStatus string

const (
	ResultDispatched     ScheduleResultStatus = "dispatched"
	ResultPausedDuration ScheduleResultStatus = "paused_duration"
	ResultPausedLimit    ScheduleResultStatus = "paused_limit"
	ResultSkipped        ScheduleResultStatus = "skipped"
	ResultFailed         ScheduleResultStatus = "failed"
)

// ScheduleResult is one entry of the dispatch pass's per-schedule report.
type ScheduleResult struct {
	ScheduleID  string               `json:"schedule_id"`
	ContentType model.ContentType    `json:"content_type"`
	Status      ScheduleResultStatus `json:"status"`
	Detail      string               `json:"detail,omitempty"`
	Submitted   int                  `json:"submitted"`
}

// DispatchPassResult is the return contract of one dispatch pass.
type DispatchPassResult struct {
	ProcessedCount  int              `json:"processed_count"`
	TotalConsidered int              `json:"total_considered"`
	Results         []ScheduleResult `json:"per_schedule_results"`
}

// DispatchUseCase runs the due-check -> guards -> generate -> reschedule
// pipeline once per invocation.
type DispatchUseCase interface {
	RunPass(ctx context.Context) (*DispatchPassResult, error)
}

var _ DispatchUseCase = (*dispatchUseCase)(nil)

type dispatchUseCase struct {
	tm        repository.TransactionManager
	schedules repository.ScheduleRepository
	content   repository.ContentRepository
	provider  adapter.GenerationProvider
	enhancer  adapter.PromptEnhancer
	notifier  adapter.AlertNotifier
	batchSize int
	log       *zerolog.Logger
	now       func() time.Time
}

func NewDispatchUseCase(
	tm repository.TransactionManager,
	schedules repository.ScheduleRepository,
	content repository.ContentRepository,
	provider adapter.GenerationProvider,
	enhancer adapter.PromptEnhancer,
	notifier adapter.AlertNotifier,
	batchSize int,
	logger *zerolog.Logger,
) *dispatchUseCase {
	if batchSize <= 0 {
		batchSize = 5
	}
	l := logger.With().Str("component", "DispatchUseCase").Logger()
	return &dispatchUseCase{
		tm:        tm,
		schedules: schedules,
		content:   content,
		provider:  provider,
		enhancer:  enhancer,
		notifier:  notifier,
		batchSize: batchSize,
		log:       &l,
		now:       time.Now,
	}
}

// RunPass makes exactly one guard decision and at most one dispatch per due
// schedule. A schedule's failure never aborts the batch; only the initial
// due-query is fatal for the pass.
func (u *dispatchUseCase) RunPass(ctx context.Context) (*DispatchPassResult, error) {
	start := time.Now()
	now := u.now()

	due, err := u.schedules.FindDue(ctx, nil, now, u.batchSize, "")
	if err != nil {
		u.alertPassFailed(ctx, "dispatch", err)
		return nil, fmt.Errorf("find due schedules: %w", err)
	}

	res := &DispatchPassResult{
		TotalConsidered: len(due),
		Results:         make([]ScheduleResult, 0, len(due)),
	}
	for _, s := range due {
		r := u.processSchedule(ctx, s, now)
		metrics.IncDispatchResult(string(r.Status))
		if r.Status == ResultDispatched {
			res.ProcessedCount++
		}
		res.Results = append(res.Results, r)
	}

	metrics.ObserveDispatchPass(time.Since(start).Seconds())
	u.log.Info().
		Int("considered", res.TotalConsidered).
		Int("processed", res.ProcessedCount).
		Dur("duration", time.Since(start)).
		Msg("dispatch pass finished")
	return res, nil
}

func (u *dispatchUseCase) processSchedule(ctx context.Context, s *model.Schedule, now time.Time) ScheduleResult {
	log := u.log.With().Str("schedule_id", s.ID).Str("content_type", string(s.ContentType)).Logger()
	r := ScheduleResult{ScheduleID: s.ID, ContentType: s.ContentType}

	// Duration expiry guard runs first.
	if s.DurationExpired(now) {
		if err := u.schedules.MarkPaused(ctx, nil, s.ID); err != nil {
			log.Error().Err(err).Msg("pause after duration expiry failed")
			r.Status = ResultFailed
			r.Detail = fmt.Sprintf("pause schedule: %v", err)
			return r
		}
		log.Info().Msg("schedule paused: duration window elapsed")
		u.alertPaused(ctx, s.ID, "duration window elapsed")
		r.Status = ResultPausedDuration
		r.Detail = "duration window elapsed"
		return r
	}

	// Run-limit guard. The count and the pause it may trigger run in one
	// serializable transaction so a concurrent writer cannot slip a record
	// in between the read and the decision.
	var count int
	var limitReached bool
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(ctx context.Context, tx repository.Tx) error {
		c, err := u.content.CountBySchedule(ctx, tx, s.ID, s.ContentType.Kind(), s.LimitWindowStart(now))
		if err != nil {
			return fmt.Errorf("count content: %w", err)
		}
		count = c
		if c >= s.Settings.MaxOutputs {
			limitReached = true
			if err := u.schedules.MarkPaused(ctx, tx, s.ID); err != nil {
				return fmt.Errorf("pause schedule: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("run-limit guard failed")
		r.Status = ResultFailed
		r.Detail = err.Error()
		return r
	}
	if limitReached {
		log.Info().Int("count", count).Int("max", s.Settings.MaxOutputs).Msg("schedule paused: run limit reached")
		u.alertPaused(ctx, s.ID, fmt.Sprintf("run limit reached (%d/%d)", count, s.Settings.MaxOutputs))
		r.Status = ResultPausedLimit
		r.Detail = fmt.Sprintf("run limit reached (%d/%d)", count, s.Settings.MaxOutputs)
		return r
	}

	submitted, err := u.dispatch(ctx, s, now, &log)
	r.Submitted = submitted
	if err != nil {
		// Precondition problems skip the schedule for this pass only;
		// everything else is a failure. Neither advances next_run, so
		// the schedule stays due and is retried on the next poll.
		if errors.Is(err, domain.ErrMissingSourceImages) || errors.Is(err, domain.ErrMissingBucketSets) {
			log.Warn().Err(err).Msg("schedule skipped: precondition not met")
			r.Status = ResultSkipped
		} else {
			log.Error().Err(err).Msg("dispatch failed")
			r.Status = ResultFailed
		}
		r.Detail = err.Error()
		return r
	}
	metrics.AddGenerationsSubmitted(string(s.ContentType), submitted)

	next := now.Add(s.Interval())
	if err := u.schedules.AdvanceRun(ctx, nil, s.ID, now, next); err != nil {
		// The generations are already submitted; the schedule stays due
		// and will be re-dispatched, so this is a loud failure.
		log.Error().Err(err).Msg("advance run failed after successful dispatch")
		r.Status = ResultFailed
		r.Detail = fmt.Sprintf("advance run: %v", err)
		return r
	}

	log.Info().Int("submitted", submitted).Time("next_run", next).Msg("schedule dispatched")
	r.Status = ResultDispatched
	return r
}

// dispatch routes the schedule to exactly one generation routine. The
// switch is exhaustive over the closed content-type set; adding a type
// without a branch lands in the unsupported default.
func (u *dispatchUseCase) dispatch(ctx context.Context, s *model.Schedule, now time.Time, log *zerolog.Logger) (int, error) {
	switch s.ContentType {
	case model.ContentTypeImageGeneration:
		return u.dispatchImage(ctx, s, now, log)
	case model.ContentTypePrintOnShirt:
		return u.dispatchCombination(ctx, s, now)
	case model.ContentTypeVideoGeneration:
		return u.dispatchVideo(ctx, s, now)
	case model.ContentTypeJournal:
		return 0, fmt.Errorf("%w: journal schedules are produced interactively", domain.ErrUnsupportedType)
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, s.ContentType)
	}
}

func (u *dispatchUseCase) dispatchImage(ctx context.Context, s *model.Schedule, now time.Time, log *zerolog.Logger) (int, error) {
	prompt := u.enhance(ctx, s.Prompt, log)
	jobID, err := u.provider.SubmitImage(ctx, adapter.ImageRequest{
		Prompt:         prompt,
		NegativePrompt: s.Settings.NegativePrompt,
		AspectRatio:    s.Settings.AspectRatio,
	})
	if err != nil {
		return 0, fmt.Errorf("submit image: %w", err)
	}
	if err := u.content.Save(ctx, nil, newProcessingRecord(s, jobID, now, nil)); err != nil {
		return 0, fmt.Errorf("record image job: %w", err)
	}
	return 1, nil
}

func (u *dispatchUseCase) dispatchCombination(ctx context.Context, s *model.Schedule, now time.Time) (int, error) {
	if s.Settings.UseBucketImages {
		return u.dispatchBucketCombinations(ctx, s, now)
	}

	if len(s.Settings.SourceImageURLs) < 2 {
		return 0, domain.ErrMissingSourceImages
	}
	jobID, err := u.provider.SubmitCombine(ctx, adapter.CombineRequest{
		Prompt:      s.Prompt,
		ImageURLs:   s.Settings.SourceImageURLs,
		AspectRatio: s.Settings.AspectRatio,
	})
	if err != nil {
		return 0, fmt.Errorf("submit combination: %w", err)
	}
	if err := u.content.Save(ctx, nil, newProcessingRecord(s, jobID, now, nil)); err != nil {
		return 0, fmt.Errorf("record combination job: %w", err)
	}
	return 1, nil
}

// dispatchBucketCombinations expands the Cartesian product of the two
// bucket sets: for sets of size m and n, exactly m*n jobs are submitted,
// each with its own record and a distinct combination tag.
func (u *dispatchUseCase) dispatchBucketCombinations(ctx context.Context, s *model.Schedule, now time.Time) (int, error) {
	setA, setB := s.Settings.BucketSetA, s.Settings.BucketSetB
	if len(setA) == 0 || len(setB) == 0 {
		return 0, domain.ErrMissingBucketSets
	}

	submitted := 0
	for i, a := range setA {
		for j, b := range setB {
			jobID, err := u.provider.SubmitCombine(ctx, adapter.CombineRequest{
				Prompt:      s.Prompt,
				ImageURLs:   []string{a, b},
				AspectRatio: s.Settings.AspectRatio,
			})
			if err != nil {
				return submitted, fmt.Errorf("submit combination %dx%d: %w", i+1, j+1, err)
			}
			meta := map[string]string{
				model.MetaCombination: fmt.Sprintf("%dx%d", i+1, j+1),
				model.MetaSourceA:     a,
				model.MetaSourceB:     b,
			}
			if err := u.content.Save(ctx, nil, newProcessingRecord(s, jobID, now, meta)); err != nil {
				return submitted, fmt.Errorf("record combination %dx%d: %w", i+1, j+1, err)
			}
			submitted++
		}
	}
	return submitted, nil
}

func (u *dispatchUseCase) dispatchVideo(ctx context.Context, s *model.Schedule, now time.Time) (int, error) {
	jobID, err := u.provider.SubmitVideo(ctx, adapter.VideoRequest{
		Prompt:         s.Prompt,
		NegativePrompt: s.Settings.NegativePrompt,
		StartImageURL:  s.Settings.StartImageURL,
		Mode:           s.Settings.VideoMode,
		DurationSecs:   s.Settings.VideoDurationS,
	})
	if err != nil {
		return 0, fmt.Errorf("submit video: %w", err)
	}
	if err := u.content.Save(ctx, nil, newProcessingRecord(s, jobID, now, nil)); err != nil {
		return 0, fmt.Errorf("record video job: %w", err)
	}
	return 1, nil
}

// enhance is best-effort: a failing enhancer never blocks dispatch.
func (u *dispatchUseCase) enhance(ctx context.Context, prompt string, log *zerolog.Logger) string {
	if u.enhancer == nil {
		return prompt
	}
	out, err := u.enhancer.Enhance(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("prompt enhancement failed, using original prompt")
		return prompt
	}
	return out
}

func (u *dispatchUseCase) alertPaused(ctx context.Context, scheduleID, reason string) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.SchedulePaused(ctx, scheduleID, reason); err != nil {
		u.log.Warn().Err(err).Str("schedule_id", scheduleID).Msg("pause alert failed")
	}
}

func (u *dispatchUseCase) alertPassFailed(ctx context.Context, pass string, cause error) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.PassFailed(ctx, pass, cause); err != nil {
		u.log.Warn().Err(err).Msg("pass-failure alert failed")
	}
}

func newProcessingRecord(s *model.Schedule, jobID string, now time.Time, meta map[string]string) *model.ContentRecord {
	return &model.ContentRecord{
		ScheduleID:       s.ID,
		OwnerID:          s.OwnerID,
		TaskID:           s.TaskID,
		Kind:             s.ContentType.Kind(),
		GenerationStatus: model.GenerationStatusProcessing,
		ExternalJobID:    jobID,
		Metadata:         meta,
		CreatedAt:        now,
	}
}
