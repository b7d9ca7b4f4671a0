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

// DispatchWorker periodically runs a dispatch pass via the worker pool.
type DispatchWorker struct {
	interval time.Duration
	uc       usecase.DispatchUseCase
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewDispatchWorker(interval time.Duration, uc usecase.DispatchUseCase, pool *worker.Pool, logger *zerolog.Logger) *DispatchWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "DispatchWorker").Logger()
	return &DispatchWorker{interval: interval, uc: uc, pool: pool, log: &l}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting dispatch worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping dispatch worker")
			return ctx.Err()
		case <-ticker.C:
			_ = w.pool.Submit(func(ctx context.Context) error {
				res, err := w.uc.RunPass(ctx)
				if err != nil {
					if errors.Is(err, domain.ErrPassInProgress) {
						w.log.Debug().Msg("dispatch pass already running, skipping tick")
						return nil
					}
					w.log.Error().Err(err).Msg("dispatch pass failed")
					return nil
				}
				if res.ProcessedCount > 0 {
					w.log.Info().Int("processed", res.ProcessedCount).Msg("schedules dispatched")
				}
				return nil
			})
		}
	}
}
