package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cryptotrivia/trivia-service/internal/config"
	"github.com/cryptotrivia/trivia-service/internal/db/repository"
	"github.com/cryptotrivia/trivia-service/internal/logging"
	"github.com/cryptotrivia/trivia-service/internal/question"
	"github.com/cryptotrivia/trivia-service/internal/question/gemini"
	"github.com/cryptotrivia/trivia-service/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server,
// background worker). Postgres, Redis and Gemini are each optional: the
// pipeline skips any tier whose client is absent.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool   *pgxpool.Pool
	redis  *redis.Client
	http   *http.Server
	worker *question.StoreWorker
}

// New bootstraps config, logger, optional clients and the sourcing pipeline.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	var pool *pgxpool.Pool
	var store question.Store
	if cfg.Postgres.Configured() {
		var err error
		pool, err = pgxpool.New(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store = repository.NewQuestionRepository(pool)
	} else {
		logger.Warn().Msg("postgres not configured; cache tier disabled")
	}

	var redisClient *redis.Client
	var batchCache question.BatchCache
	if cfg.Redis.Configured() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		batchCache = question.NewRedisBatchCache(redisClient, cfg.Redis.BatchTTL)
	} else {
		logger.Warn().Msg("redis not configured; batch cache disabled")
	}

	var generator question.Generator
	if cfg.Gemini.Configured() {
		generator = gemini.NewClient(gemini.Config{
			APIKey:     cfg.Gemini.APIKey,
			Model:      cfg.Gemini.Model,
			BaseURL:    cfg.Gemini.BaseURL,
			Timeout:    cfg.Gemini.Timeout,
			AnchorYear: cfg.Gemini.AnchorYear,
			EpochYear:  cfg.Gemini.EpochYear,
		}, logger)
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set; generative tier disabled")
	}

	opts := question.Options{
		CacheFirst: cfg.Pipeline.CacheFirst,
		Watermark:  cfg.Pipeline.Watermark,
		MaxBatch:   cfg.Pipeline.MaxBatch,
	}

	var worker *question.StoreWorker
	if store != nil {
		worker = question.NewStoreWorker(store, generator, opts, cfg.Pipeline.WorkerTimeout, logger)
	}

	bank := question.NewBank()
	pipeline := question.NewPipeline(store, batchCache, generator, bank, worker, opts, logger)
	handler := question.NewHTTPHandler(pipeline, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, handler.HandleSource)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
		worker: worker,
	}, nil
}

// Run starts the HTTP server and worker, then waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.worker != nil {
		go a.worker.Run()
	}

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	if a.worker != nil {
		a.worker.Stop()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
