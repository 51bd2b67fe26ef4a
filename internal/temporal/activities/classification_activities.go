package activities

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/llm"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/observability"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
)

// maxClassificationInputChars caps how much paper text is offered to the
// model when the paper has no abstract.
const maxClassificationInputChars = 4000

// ClassificationActivities provides Temporal activities for the
// classification stage.
// Methods on this struct are registered as Temporal activities via the worker.
type ClassificationActivities struct {
	paperRepo     repository.PaperRepository
	extractedRepo repository.ExtractedDataRepository
	store         PipelineStore
	generator     llm.Generator
	defaultTopics []string
	metrics       *observability.Metrics
}

// NewClassificationActivities creates a new ClassificationActivities
// instance with the given dependencies. defaultTopics is the topic taxonomy
// used when a request supplies none. The metrics parameter may be nil
// (metrics recording will be skipped).
func NewClassificationActivities(
	paperRepo repository.PaperRepository,
	extractedRepo repository.ExtractedDataRepository,
	store PipelineStore,
	generator llm.Generator,
	defaultTopics []string,
	metrics *observability.Metrics,
) *ClassificationActivities {
	return &ClassificationActivities{
		paperRepo:     paperRepo,
		extractedRepo: extractedRepo,
		store:         store,
		generator:     generator,
		defaultTopics: defaultTopics,
		metrics:       metrics,
	}
}

// ClassifyPaper asks the model which of the offered topics a paper belongs
// to, records the associations, and advances the paper to classified.
//
// A "none" answer is a successful classification with zero associations:
// the paper still advances, it simply joins no topic and will not
// contribute to any synthesis. Provider errors are returned as-is so the
// workflow retry budget applies.
func (a *ClassificationActivities) ClassifyPaper(ctx context.Context, input ClassifyPaperInput) (*ClassifyPaperOutput, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	paper, err := a.paperRepo.GetByID(ctx, input.PaperID)
	if err != nil {
		return nil, fmt.Errorf("load paper %s: %w", input.PaperID, err)
	}

	topics := input.Topics
	if len(topics) == 0 {
		topics = a.defaultTopics
	}
	if len(topics) == 0 {
		return nil, domain.NewValidationError("topics", "no candidate topics configured")
	}

	abstract, err := a.classificationText(ctx, paper)
	if err != nil {
		return nil, err
	}

	logger.Info("classifying paper",
		"paperID", paper.ID,
		"topicCount", len(topics),
	)

	system, user := llm.BuildClassificationPrompt(paper.Title, abstract, topics)
	result, err := a.generator.Generate(ctx, llm.Request{System: system, Prompt: user})
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordLLMRequestFailed("classify", a.generator.Model(), "generate_failed")
		}
		return nil, fmt.Errorf("classify paper %s: %w", paper.ID, err)
	}

	if a.metrics != nil {
		a.metrics.RecordLLMRequest("classify", result.Model, time.Since(start).Seconds())
	}

	matched := llm.ParseClassification(result.Content, topics)

	topicIDs, err := a.store.SaveClassification(ctx, paper.ID, matched)
	if err != nil {
		return nil, fmt.Errorf("persist classification for paper %s: %w", paper.ID, err)
	}

	logger.Info("paper classified",
		"paperID", paper.ID,
		"matchedTopics", matched,
		"noMatch", len(matched) == 0,
		"duration", time.Since(start),
	)

	return &ClassifyPaperOutput{
		PaperID:    paper.ID,
		TopicIDs:   topicIDs,
		TopicNames: matched,
		NoMatch:    len(matched) == 0,
		Model:      result.Model,
	}, nil
}

// classificationText returns the text the model classifies on: the abstract
// when the paper has one, otherwise a truncated slice of the extracted full
// text.
func (a *ClassificationActivities) classificationText(ctx context.Context, paper *domain.Paper) (string, error) {
	if paper.Abstract != "" {
		return paper.Abstract, nil
	}

	data, err := a.extractedRepo.GetByPaperID(ctx, paper.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load extracted data for paper %s: %w", paper.ID, err)
	}

	if abstract, ok := data.Sections["abstract"]; ok && abstract != "" {
		return truncateText(abstract, maxClassificationInputChars), nil
	}

	text, err := os.ReadFile(data.FullTextPath)
	if err != nil {
		return "", fmt.Errorf("read extracted text for paper %s: %w", paper.ID, err)
	}
	return truncateText(string(text), maxClassificationInputChars), nil
}

// truncateText clips s to at most limit bytes.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
