package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emojid/internal/cache"
	"github.com/fyrsmithlabs/emojid/internal/config"
	"github.com/fyrsmithlabs/emojid/internal/embeddings"
	"github.com/fyrsmithlabs/emojid/internal/emoji"
	"github.com/fyrsmithlabs/emojid/internal/http"
	"github.com/fyrsmithlabs/emojid/internal/logging"
	"github.com/fyrsmithlabs/emojid/internal/ratelimit"
	"github.com/fyrsmithlabs/emojid/internal/rerank"
	"github.com/fyrsmithlabs/emojid/internal/search"
	"github.com/fyrsmithlabs/emojid/internal/telemetry"
	"github.com/fyrsmithlabs/emojid/internal/vectorindex"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the emojid HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("starting emojid",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("vector_backend", cfg.VectorIndex.Backend),
		zap.String("embedding_model", cfg.Embeddings.Model),
		zap.String("rerank_model", cfg.Rerank.Model))

	tel, err := telemetry.Init(ctx, cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	vocab, err := emoji.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	store, err := cache.NewBadgerStore(cfg.Cache, logger)
	if err != nil {
		return fmt.Errorf("failed to open cache store: %w", err)
	}
	defer store.Close()

	index, err := vectorindex.New(cfg.VectorIndex, logger)
	if err != nil {
		return fmt.Errorf("failed to open vector index: %w", err)
	}
	defer index.Close()

	embedder, err := embeddings.NewOpenAIProvider(cfg.Embeddings, logger)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}

	reranker, err := rerank.NewLLMReranker(cfg.Rerank, logger)
	if err != nil {
		return fmt.Errorf("failed to create reranker: %w", err)
	}

	limiter, err := ratelimit.NewLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	svc, err := search.NewService(cfg.Search, limiter, store, embedder, index, reranker, vocab,
		logger.Named("search"), search.NewMetrics(logger))
	if err != nil {
		return fmt.Errorf("failed to create search service: %w", err)
	}

	server, err := http.NewServer(svc, logger.Named("http"), &cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
	}

	logger.Info("server shutdown complete")
	return nil
}
