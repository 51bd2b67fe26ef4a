package activities

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/citation"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/events"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/llm"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/observability"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
)

// maxSummaryInputChars caps how much extracted text is offered to the model
// for an individual summary. Full papers regularly exceed provider context
// limits, so the head of the text is used.
const maxSummaryInputChars = 24000

// minSynthesisPapers is the contributor floor for a cross-topic synthesis.
// A synthesis over fewer than two papers is just a restatement of one
// summary, so the request is rejected as invalid.
const minSynthesisPapers = 2

// SummaryActivities provides Temporal activities for the summarization and
// synthesis stages.
// Methods on this struct are registered as Temporal activities via the worker.
type SummaryActivities struct {
	paperRepo     repository.PaperRepository
	extractedRepo repository.ExtractedDataRepository
	citationRepo  repository.CitationRepository
	store         PipelineStore
	generator     llm.Generator
	publisher     events.Publisher
	metrics       *observability.Metrics
}

// NewSummaryActivities creates a new SummaryActivities instance with the
// given dependencies. The metrics parameter may be nil (metrics recording
// will be skipped); the publisher may be a NopPublisher.
func NewSummaryActivities(
	paperRepo repository.PaperRepository,
	extractedRepo repository.ExtractedDataRepository,
	citationRepo repository.CitationRepository,
	store PipelineStore,
	generator llm.Generator,
	publisher events.Publisher,
	metrics *observability.Metrics,
) *SummaryActivities {
	return &SummaryActivities{
		paperRepo:     paperRepo,
		extractedRepo: extractedRepo,
		citationRepo:  citationRepo,
		store:         store,
		generator:     generator,
		publisher:     publisher,
		metrics:       metrics,
	}
}

// SummarizePaper generates an individual summary for a paper from its
// extracted text and advances the paper to summarized.
//
// The summary write is an upsert keyed on the paper, so a retried stage
// replaces its earlier content instead of accumulating duplicate rows.
func (a *SummaryActivities) SummarizePaper(ctx context.Context, input SummarizePaperInput) (*SummarizePaperOutput, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	paper, err := a.paperRepo.GetByID(ctx, input.PaperID)
	if err != nil {
		return nil, fmt.Errorf("load paper %s: %w", input.PaperID, err)
	}

	text, err := a.paperText(ctx, paper)
	if err != nil {
		return nil, err
	}

	logger.Info("summarizing paper",
		"paperID", paper.ID,
		"textLength", len(text),
	)

	system, user := llm.BuildSummaryPrompt(paper.Title, truncateText(text, maxSummaryInputChars))
	result, err := a.generator.Generate(ctx, llm.Request{System: system, Prompt: user})
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordLLMRequestFailed("summarize", a.generator.Model(), "generate_failed")
		}
		return nil, fmt.Errorf("summarize paper %s: %w", paper.ID, err)
	}
	if result.Content == "" {
		return nil, fmt.Errorf("summarize paper %s: model returned empty content", paper.ID)
	}

	if a.metrics != nil {
		a.metrics.RecordLLMRequest("summarize", result.Model, time.Since(start).Seconds())
	}

	paperID := paper.ID
	saved, err := a.store.SaveIndividualSummary(ctx, &domain.Summary{
		Type:    domain.SummaryTypeIndividual,
		Content: result.Content,
		PaperID: &paperID,
	})
	if err != nil {
		return nil, fmt.Errorf("persist summary for paper %s: %w", paper.ID, err)
	}

	if a.metrics != nil {
		a.metrics.RecordSummaryGenerated(string(domain.SummaryTypeIndividual))
	}

	event := events.NewEvent(events.TypeSummaryCreated, input.PipelineID.String())
	event.PaperID = paper.ID.String()
	event.Detail = map[string]string{"summary_id": saved.ID.String()}
	a.publish(ctx, event)

	logger.Info("paper summarized",
		"paperID", paper.ID,
		"summaryID", saved.ID,
		"duration", time.Since(start),
	)

	return &SummarizePaperOutput{
		PaperID:      paper.ID,
		SummaryID:    saved.ID,
		Model:        result.Model,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
	}, nil
}

// SynthesizeTopic generates a cross-topic synthesis from the contributing
// individual summaries and appends a deduplicated reference block built
// from the contributors' citations.
//
// The input summaries arrive sorted by paper ID, so the prompt and the
// reference block are deterministic for a given contributor set.
func (a *SummaryActivities) SynthesizeTopic(ctx context.Context, input SynthesizeTopicInput) (*SynthesizeTopicOutput, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	if len(input.Summaries) < minSynthesisPapers {
		return nil, domain.NewValidationError("summaries",
			fmt.Sprintf("synthesis requires at least %d summarized papers, got %d", minSynthesisPapers, len(input.Summaries)))
	}

	logger.Info("synthesizing topic",
		"topicID", input.TopicID,
		"topicName", input.TopicName,
		"paperCount", len(input.Summaries),
	)

	contents := make([]string, 0, len(input.Summaries))
	for _, s := range input.Summaries {
		contents = append(contents, s.Content)
	}

	system, user := llm.BuildSynthesisPrompt(input.TopicName, contents)
	result, err := a.generator.Generate(ctx, llm.Request{System: system, Prompt: user})
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordLLMRequestFailed("synthesize", a.generator.Model(), "generate_failed")
		}
		return nil, fmt.Errorf("synthesize topic %s: %w", input.TopicName, err)
	}
	if result.Content == "" {
		return nil, fmt.Errorf("synthesize topic %s: model returned empty content", input.TopicName)
	}

	if a.metrics != nil {
		a.metrics.RecordLLMRequest("synthesize", result.Model, time.Since(start).Seconds())
	}

	content := result.Content
	if refs := a.referencesBlock(ctx, input.Summaries); refs != "" {
		content += "\n\n" + refs
	}

	topicID := input.TopicID
	saved, err := a.store.SaveSynthesis(ctx, &domain.Summary{
		Type:    domain.SummaryTypeSynthesis,
		Content: content,
		TopicID: &topicID,
	})
	if err != nil {
		return nil, fmt.Errorf("persist synthesis for topic %s: %w", input.TopicName, err)
	}

	if a.metrics != nil {
		a.metrics.RecordSummaryGenerated(string(domain.SummaryTypeSynthesis))
	}

	event := events.NewEvent(events.TypeSynthesisCreated, input.PipelineID.String())
	event.TopicID = input.TopicID.String()
	event.Detail = map[string]string{
		"summary_id":  saved.ID.String(),
		"paper_count": fmt.Sprintf("%d", len(input.Summaries)),
	}
	a.publish(ctx, event)

	logger.Info("topic synthesized",
		"topicID", input.TopicID,
		"summaryID", saved.ID,
		"paperCount", len(input.Summaries),
		"duration", time.Since(start),
	)

	return &SynthesizeTopicOutput{
		TopicID:    input.TopicID,
		SummaryID:  saved.ID,
		PaperCount: len(input.Summaries),
		Model:      result.Model,
	}, nil
}

// paperText loads the extracted full text for a paper, falling back to the
// abstract when the text file is missing.
func (a *SummaryActivities) paperText(ctx context.Context, paper *domain.Paper) (string, error) {
	data, err := a.extractedRepo.GetByPaperID(ctx, paper.ID)
	if err != nil {
		return "", fmt.Errorf("load extracted data for paper %s: %w", paper.ID, err)
	}

	text, err := os.ReadFile(data.FullTextPath)
	if err != nil {
		if paper.Abstract != "" {
			return paper.Abstract, nil
		}
		return "", fmt.Errorf("read extracted text for paper %s: %w", paper.ID, err)
	}
	return string(text), nil
}

// referencesBlock builds the deduplicated citation block for the
// contributing papers. Citation lookup failures degrade to an empty block.
func (a *SummaryActivities) referencesBlock(ctx context.Context, summaries []PaperSummary) string {
	texts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		records, err := a.citationRepo.ListByPaper(ctx, s.PaperID)
		if err != nil {
			continue
		}
		for _, r := range records {
			texts = append(texts, r.CitationText)
		}
	}
	return citation.ReferencesBlock(texts)
}

// publish publishes a lifecycle event, logging failures instead of
// surfacing them.
func (a *SummaryActivities) publish(ctx context.Context, event events.Event) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		activity.GetLogger(ctx).Warn("failed to publish event",
			"eventType", event.EventType,
			"error", err,
		)
	}
}
