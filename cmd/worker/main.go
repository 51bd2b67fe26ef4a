// Package main provides the entry point for the paper summarization
// Temporal worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/config"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/database"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/events"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/extract"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/llm"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/observability"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/papersources"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/papersources/semanticscholar"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
	pstemporal "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal/activities"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal/workflows"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/tts"
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
	logger = logger.With().Str("component", "worker").Logger()
	logger.Info().Msg("paper summarization worker starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// Create repositories and the pipeline store.
	paperRepo := repository.NewPgPaperRepository(db)
	topicRepo := repository.NewPgTopicRepository(db)
	summaryRepo := repository.NewPgSummaryRepository(db)
	extractedRepo := repository.NewPgExtractedDataRepository(db)
	citationRepo := repository.NewPgCitationRepository(db)
	pipelineStore := activities.NewPgPipelineStore(db)

	// Create the document extractor with Crossref DOI resolution.
	crossref := extract.NewCrossrefClient(nil).WithBaseURL(cfg.PaperSources.Crossref.BaseURL)
	extractor := extract.NewExtractor(logger, extract.WithCrossrefClient(crossref))

	// Create the LLM generator.
	generator, err := llm.NewGenerator(llm.FactoryConfig{
		Provider:         cfg.LLM.Provider,
		Temperature:      cfg.LLM.Temperature,
		MaxTokens:        cfg.LLM.MaxTokens,
		Timeout:          cfg.LLM.Timeout,
		OpenAIAPIKey:     cfg.LLM.OpenAI.APIKey,
		OpenAIModel:      cfg.LLM.OpenAI.Model,
		OpenAIBaseURL:    cfg.LLM.OpenAI.BaseURL,
		AnthropicAPIKey:  cfg.LLM.Anthropic.APIKey,
		AnthropicModel:   cfg.LLM.Anthropic.Model,
		AnthropicBaseURL: cfg.LLM.Anthropic.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("create LLM generator: %w", err)
	}
	logger.Info().Str("provider", generator.Provider()).Str("model", generator.Model()).Msg("LLM generator created")

	// Create the TTS synthesizer. Narration falls back to the static
	// provider when TTS is disabled.
	ttsProvider := cfg.TTS.Provider
	if !cfg.TTS.Enabled {
		ttsProvider = "static"
	}
	synthesizer, err := tts.NewSynthesizer(tts.FactoryConfig{
		Provider: ttsProvider,
		BaseURL:  cfg.TTS.BaseURL,
		Language: cfg.TTS.Language,
		Timeout:  cfg.TTS.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create TTS synthesizer: %w", err)
	}
	logger.Info().Str("provider", synthesizer.Provider()).Msg("TTS synthesizer created")

	// Create the event publisher.
	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close event publisher")
		}
	}()

	// Create the paper source registry and register enabled sources.
	registry := papersources.NewRegistry()
	registerPaperSources(registry, cfg, logger)

	// Create metrics.
	metrics := observability.NewMetrics("papersum")

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

	// Create the worker manager.
	manager, err := pstemporal.NewWorkerManager(temporalClient, pstemporal.DefaultWorkerConfig(cfg.Temporal.TaskQueue))
	if err != nil {
		return fmt.Errorf("create worker manager: %w", err)
	}

	// Register workflows.
	manager.RegisterWorkflow(workflows.PaperPipelineWorkflow)

	// Create and register all activity structs.
	discoveryActivities := activities.NewDiscoveryActivities(registry, metrics)
	statusActivities := activities.NewStatusActivities(paperRepo, topicRepo, summaryRepo, publisher, metrics)
	extractionActivities := activities.NewExtractionActivities(paperRepo, pipelineStore, extractor, cfg.Storage.TextDir, metrics)
	classificationActivities := activities.NewClassificationActivities(paperRepo, extractedRepo, pipelineStore, generator, cfg.Pipeline.DefaultTopics, metrics)
	summaryActivities := activities.NewSummaryActivities(paperRepo, extractedRepo, citationRepo, pipelineStore, generator, publisher, metrics)
	audioActivities := activities.NewAudioActivities(summaryRepo, synthesizer, cfg.Storage.AudioDir, publisher, metrics)

	manager.RegisterActivity(discoveryActivities)
	manager.RegisterActivity(statusActivities)
	manager.RegisterActivity(extractionActivities)
	manager.RegisterActivity(classificationActivities)
	manager.RegisterActivity(summaryActivities)
	manager.RegisterActivity(audioActivities)

	registeredWorkflows, registeredActivities := manager.Registrations()
	logger.Info().
		Str("task_queue", manager.TaskQueue()).
		Int("workflows", registeredWorkflows).
		Int("activities", registeredActivities).
		Msg("worker starting")

	if err := manager.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker stopped: %w", err)
	}

	logger.Info().Msg("worker shut down")
	return nil
}

// newPublisher creates the pipeline event publisher. A no-op publisher is
// used when Kafka is disabled.
func newPublisher(cfg *config.Config, logger zerolog.Logger) (events.Publisher, error) {
	if !cfg.Kafka.Enabled {
		logger.Info().Msg("kafka disabled; pipeline events will not be published")
		return events.NewNopPublisher(), nil
	}

	publisher, err := events.NewKafkaPublisher(events.Config{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		BatchSize:    cfg.Kafka.BatchSize,
		BatchTimeout: cfg.Kafka.BatchTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("kafka event publisher created")
	return publisher, nil
}

// registerPaperSources registers every enabled paper source with the
// discovery registry.
func registerPaperSources(registry *papersources.Registry, cfg *config.Config, logger zerolog.Logger) {
	if cfg.PaperSources.SemanticScholar.Enabled {
		registry.Register(semanticscholar.NewClient(semanticscholar.Config{
			BaseURL:    cfg.PaperSources.SemanticScholar.BaseURL,
			APIKey:     cfg.PaperSources.SemanticScholar.APIKey,
			Timeout:    cfg.PaperSources.SemanticScholar.Timeout,
			RateLimit:  cfg.PaperSources.SemanticScholar.RateLimit,
			MaxResults: cfg.PaperSources.SemanticScholar.MaxResults,
			Enabled:    true,
		}, nil))
		logger.Info().Str("source", "semantic_scholar").Msg("paper source registered")
	}

	if len(registry.EnabledSources()) == 0 {
		logger.Warn().Msg("no paper sources enabled; discovery will find nothing")
	}
}
