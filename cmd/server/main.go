// Package main provides the entry point for the paper summarization HTTP
// API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/config"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/database"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/extract"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/observability"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
	httpserver "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/server/http"
	pstemporal "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal/workflows"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("paper summarization server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// Run migrations if configured.
	if cfg.Database.MigrationAutoRun {
		migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			if closeErr := migrator.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close migrator")
			}
		}()

		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Create repositories.
	paperRepo := repository.NewPgPaperRepository(db)
	topicRepo := repository.NewPgTopicRepository(db)
	summaryRepo := repository.NewPgSummaryRepository(db)

	// Create Temporal client.
	temporalClient, err := pstemporal.NewClient(pstemporal.ClientConfig{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		TaskQueue: cfg.Temporal.TaskQueue,
		Logger:    observability.NewTemporalLogger(logger),
	})
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	defer temporalClient.Close()
	logger.Info().
		Str("host_port", cfg.Temporal.HostPort).
		Str("namespace", cfg.Temporal.Namespace).
		Msg("temporal client connected")

	workflowClient := pstemporal.NewPipelineWorkflowClient(temporalClient, cfg.Temporal.TaskQueue)

	// Crossref resolves metadata for DOI submissions.
	resolver := extract.NewCrossrefClient(nil).WithBaseURL(cfg.PaperSources.Crossref.BaseURL)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		UploadsDir:      cfg.Storage.UploadsDir,
		MaxPapers:       cfg.Pipeline.MaxPapers,
		MetricsPath:     metricsPath,
	}

	srv := httpserver.NewServer(
		httpCfg,
		workflowClient,
		workflows.PaperPipelineWorkflow,
		paperRepo,
		topicRepo,
		summaryRepo,
		resolver,
		db,
		logger,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal or server error.
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	logger.Info().Msg("server shut down")
	return nil
}
