// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ai-content-scheduler/internal/config"
	"ai-content-scheduler/internal/domain/ports/adapter"
	"ai-content-scheduler/internal/infra/adapters/notify"
	"ai-content-scheduler/internal/infra/adapters/prompt"
	"ai-content-scheduler/internal/infra/adapters/provider"
	"ai-content-scheduler/internal/infra/api"
	pg "ai-content-scheduler/internal/infra/db/postgres"
	"ai-content-scheduler/internal/infra/logging"
	"ai-content-scheduler/internal/infra/metrics"
	red "ai-content-scheduler/internal/infra/redis"
	"ai-content-scheduler/internal/infra/sched"
	"ai-content-scheduler/internal/infra/storage"
	"ai-content-scheduler/internal/infra/worker"
	"ai-content-scheduler/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, looser checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	scheduleRepo := pg.NewScheduleRepo(pool)
	contentRepo := pg.NewContentRepo(pool)

	// ---- Generation provider ----
	gen, err := provider.NewClient(cfg.Provider)
	if err != nil {
		logger.Fatal().Err(err).Msg("generation provider")
	}

	// ---- Object storage ----
	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("object storage")
	}

	// ---- Prompt enhancer (Gemini -> OpenAI, optional) ----
	enhancer := buildEnhancer(ctx, cfg, logger)

	// ---- Ops alerts ----
	var notifier adapter.AlertNotifier
	if cfg.Alert.TelegramToken != "" && cfg.Alert.ChatID != 0 {
		notifier, err = notify.NewTelegramNotifier(cfg.Alert.TelegramToken, cfg.Alert.ChatID)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
		logger.Info().Msg("alerts: telegram")
	} else {
		notifier = notify.NewNoopNotifier()
	}

	// ---- Use cases, serialized behind the pass lock ----
	dispatchUC := usecase.NewLockedDispatch(
		usecase.NewDispatchUseCase(txManager, scheduleRepo, contentRepo, gen, enhancer, notifier, cfg.Scheduler.BatchSize, logger),
		locker, cfg.Redis.LockTTL,
	)
	completionUC := usecase.NewLockedCompletion(
		usecase.NewCompletionUseCase(contentRepo, gen, store, store, cfg.Scheduler.CompletionBatch, logger),
		locker, cfg.Redis.LockTTL,
	)

	// ---- Worker mode (internal tickers) ----
	if cfg.Scheduler.WorkerMode {
		pool := worker.NewPool(cfg.Scheduler.Workers, logger)
		pool.Start(ctx)
		defer pool.Stop()

		go func() {
			_ = sched.NewDispatchWorker(cfg.Scheduler.DispatchInterval, dispatchUC, pool, logger).Run(ctx)
		}()
		go func() {
			_ = sched.NewCompletionWorker(cfg.Scheduler.CompletionInterval, completionUC, pool, logger).Run(ctx)
		}()
	}

	// ---- HTTP trigger API ----
	auth := api.NewServiceAuth(cfg.API.HMACSecret, cfg.API.TokenTTL)
	srv := api.NewServer(dispatchUC, completionUC, auth, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: srv.Routes(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}

// buildEnhancer wires the Gemini -> OpenAI fallback chain, or a noop when
// enhancement is disabled or unconfigured.
func buildEnhancer(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) adapter.PromptEnhancer {
	if !cfg.Prompt.Enabled {
		return prompt.NewNoopEnhancer()
	}
	var chain []adapter.PromptEnhancer
	if cfg.Prompt.GeminiKey != "" {
		g, err := prompt.NewGeminiEnhancer(ctx, cfg.Prompt.GeminiKey, cfg.Prompt.GeminiURL, cfg.Prompt.Model)
		if err != nil {
			logger.Warn().Err(err).Msg("gemini enhancer unavailable")
		} else {
			chain = append(chain, g)
		}
	}
	if cfg.Prompt.OpenAIKey != "" {
		o, err := prompt.NewOpenAIEnhancer(cfg.Prompt.OpenAIKey, cfg.Prompt.Model, cfg.Prompt.MaxTokens)
		if err != nil {
			logger.Warn().Err(err).Msg("openai enhancer unavailable")
		} else {
			chain = append(chain, o)
		}
	}
	if len(chain) == 0 {
		logger.Warn().Msg("prompt enhancement enabled but no provider configured; passing prompts through")
		return prompt.NewNoopEnhancer()
	}
	return prompt.NewMultiEnhancer(chain...)
}
