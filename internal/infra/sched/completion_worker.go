package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"ai-content-scheduler/internal/domain"
	"ai-content-scheduler/internal/infra/worker"
	"ai-content-scheduler/internal/usecase"
)

// CompletionWorker periodically reconciles in-flight content records.
type CompletionWorker struct {
	interval time.Duration
	uc       usecase.CompletionUseCase
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewCompletionWorker(interval time.Duration, uc usecase.CompletionUseCase, pool *worker.Pool, logger *zerolog.Logger) *CompletionWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "CompletionWorker").Logger()
	return &CompletionWorker{interval: interval, uc: uc, pool: pool, log: &l}
}

func (w *CompletionWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting completion worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping completion worker")
			return ctx.Err()
		case <-ticker.C:
			_ = w.pool.Submit(func(ctx context.Context) error {
				res, err := w.uc.RunPass(ctx)
				if err != nil {
					if errors.Is(err, domain.ErrPassInProgress) {
						w.log.Debug().Msg("completion pass already running, skipping tick")
						return nil
					}
					w.log.Error().Err(err).Msg("completion pass failed")
					return nil
				}
				if res.CompletedCount > 0 || res.FailedCount > 0 {
					w.log.Info().Int("completed", res.CompletedCount).Int("failed", res.FailedCount).Msg("records finalized")
				}
				return nil
			})
		}
	}
}
