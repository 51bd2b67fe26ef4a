package activities

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/events"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/observability"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
)

// StatusActivities provides Temporal activities for paper registration,
// status tracking, and the synthesis trigger snapshot.
// Methods on this struct are registered as Temporal activities via the worker.
type StatusActivities struct {
	paperRepo   repository.PaperRepository
	topicRepo   repository.TopicRepository
	summaryRepo repository.SummaryRepository
	publisher   events.Publisher
	metrics     *observability.Metrics
}

// NewStatusActivities creates a new StatusActivities instance with the given
// dependencies. The metrics parameter may be nil (metrics recording will be
// skipped); the publisher may be a NopPublisher.
func NewStatusActivities(
	paperRepo repository.PaperRepository,
	topicRepo repository.TopicRepository,
	summaryRepo repository.SummaryRepository,
	publisher events.Publisher,
	metrics *observability.Metrics,
) *StatusActivities {
	return &StatusActivities{
		paperRepo:   paperRepo,
		topicRepo:   topicRepo,
		summaryRepo: summaryRepo,
		publisher:   publisher,
		metrics:     metrics,
	}
}

// RegisterPapers registers a batch of papers in pending status.
//
// Papers carrying a DOI already in the store resolve to the existing record
// instead of creating a duplicate; the output counts them separately. A
// single failing paper aborts the activity so the registration phase can be
// retried as a whole; Create is idempotent under DOI dedup, so a retry
// never double-registers.
func (a *StatusActivities) RegisterPapers(ctx context.Context, input RegisterPapersInput) (*RegisterPapersOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("registering papers",
		"pipelineID", input.PipelineID,
		"paperCount", len(input.Papers),
	)

	output := &RegisterPapersOutput{
		PaperIDs: make([]uuid.UUID, 0, len(input.Papers)),
	}

	for _, paper := range input.Papers {
		stored, created, err := a.paperRepo.Create(ctx, paper)
		if err != nil {
			logger.Error("failed to register paper",
				"title", paper.Title,
				"doi", paper.DOI,
				"error", err,
			)
			return nil, fmt.Errorf("register paper %q: %w", paper.Title, err)
		}

		output.PaperIDs = append(output.PaperIDs, stored.ID)
		if created {
			output.Registered++
			if a.metrics != nil {
				a.metrics.RecordPaperRegistered(sourceLabel(stored))
			}
			a.publishEvent(ctx, paperEvent(events.TypePaperRegistered, input.PipelineID, stored.ID))
		} else {
			output.Deduplicated++
			if a.metrics != nil {
				a.metrics.RecordPaperDeduplicated()
			}
			logger.Info("paper deduplicated by DOI",
				"paperID", stored.ID,
				"doi", stored.DOI,
			)
		}
	}

	logger.Info("papers registered",
		"pipelineID", input.PipelineID,
		"registered", output.Registered,
		"deduplicated", output.Deduplicated,
	)

	return output, nil
}

// AdvanceStatus moves a paper forward in the pipeline state machine.
//
// A status regression is treated as a successful no-op: it means a retried
// or slower stage observed a paper that already moved past the requested
// status, which is exactly the race the monotonic store guard exists for.
func (a *StatusActivities) AdvanceStatus(ctx context.Context, input AdvanceStatusInput) error {
	logger := activity.GetLogger(ctx)

	err := a.paperRepo.AdvanceStatus(ctx, input.PaperID, input.Status)
	if errors.Is(err, domain.ErrStatusRegression) {
		logger.Info("status advance skipped, paper already past requested status",
			"paperID", input.PaperID,
			"requested", input.Status,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("advance paper %s to %s: %w", input.PaperID, input.Status, err)
	}

	logger.Info("paper status advanced",
		"paperID", input.PaperID,
		"status", input.Status,
	)
	return nil
}

// MarkFailed moves a paper to the failed terminal status with a cause.
func (a *StatusActivities) MarkFailed(ctx context.Context, input MarkFailedInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("marking paper failed",
		"paperID", input.PaperID,
		"cause", input.Cause,
	)

	if err := a.paperRepo.MarkFailed(ctx, input.PaperID, input.Cause); err != nil {
		return fmt.Errorf("mark paper %s failed: %w", input.PaperID, err)
	}

	if a.metrics != nil {
		a.metrics.RecordPaperFailed()
	}

	event := paperEvent(events.TypePaperFailed, input.PipelineID, input.PaperID)
	event.Detail = map[string]string{"cause": input.Cause}
	a.publishEvent(ctx, event)

	return nil
}

// GroupSummarizedByTopic snapshots the summarized papers per topic for the
// synthesis trigger. Paper IDs within a group are sorted, and groups are
// sorted by topic name, so the workflow dispatches syntheses in a
// deterministic order.
func (a *StatusActivities) GroupSummarizedByTopic(ctx context.Context) (*GroupSummarizedOutput, error) {
	logger := activity.GetLogger(ctx)

	byTopic, err := a.topicRepo.SummarizedPapersByTopic(ctx)
	if err != nil {
		return nil, fmt.Errorf("group summarized papers by topic: %w", err)
	}

	topics, err := a.topicRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	names := make(map[uuid.UUID]string, len(topics))
	for _, t := range topics {
		names[t.ID] = t.Name
	}

	output := &GroupSummarizedOutput{}
	for topicID, papers := range byTopic {
		group := TopicGroup{
			TopicID:   topicID,
			TopicName: names[topicID],
			PaperIDs:  make([]uuid.UUID, 0, len(papers)),
		}
		for _, p := range papers {
			group.PaperIDs = append(group.PaperIDs, p.ID)
		}
		sort.Slice(group.PaperIDs, func(i, j int) bool {
			return group.PaperIDs[i].String() < group.PaperIDs[j].String()
		})
		output.Groups = append(output.Groups, group)
	}

	sort.Slice(output.Groups, func(i, j int) bool {
		return output.Groups[i].TopicName < output.Groups[j].TopicName
	})

	logger.Info("summarized papers grouped by topic",
		"topicCount", len(output.Groups),
	)

	return output, nil
}

// FetchSummaries loads the individual summaries for the given papers,
// preserving input order. Papers without a summary are omitted rather than
// failing the batch.
func (a *StatusActivities) FetchSummaries(ctx context.Context, input FetchSummariesInput) (*FetchSummariesOutput, error) {
	logger := activity.GetLogger(ctx)

	papers, err := a.paperRepo.GetByIDs(ctx, input.PaperIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch papers: %w", err)
	}
	titles := make(map[uuid.UUID]string, len(papers))
	for _, p := range papers {
		titles[p.ID] = p.Title
	}

	output := &FetchSummariesOutput{}
	for _, paperID := range input.PaperIDs {
		summary, err := a.summaryRepo.GetForPaper(ctx, paperID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("paper has no individual summary, omitting from batch",
				"paperID", paperID,
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch summary for paper %s: %w", paperID, err)
		}

		output.Summaries = append(output.Summaries, PaperSummary{
			PaperID: paperID,
			Title:   titles[paperID],
			Content: summary.Content,
		})
	}

	return output, nil
}

// PublishPipelineEvent publishes a pipeline lifecycle event. Publish
// failures are logged and swallowed; event delivery never gates the
// pipeline.
func (a *StatusActivities) PublishPipelineEvent(ctx context.Context, input PublishEventInput) error {
	event := events.NewEvent(input.EventType, input.PipelineID.String())
	event.Detail = input.Detail
	a.publishEvent(ctx, event)
	return nil
}

// publishEvent publishes a lifecycle event, logging failures instead of
// surfacing them. Event delivery is best-effort and never fails a stage.
func (a *StatusActivities) publishEvent(ctx context.Context, event events.Event) {
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

// paperEvent builds a paper-scoped lifecycle event.
func paperEvent(eventType string, pipelineID, paperID uuid.UUID) events.Event {
	event := events.NewEvent(eventType, pipelineID.String())
	event.PaperID = paperID.String()
	return event
}

// sourceLabel maps a paper's ingestion source to a metrics label.
func sourceLabel(paper *domain.Paper) string {
	switch {
	case paper.LocalPath != "":
		return string(domain.SourceKindUpload)
	case paper.DOI != "" && paper.SourceURL == "":
		return string(domain.SourceKindDOI)
	case paper.SourceURL != "" && paper.DOI == "":
		return string(domain.SourceKindURL)
	default:
		return string(domain.SourceKindSearch)
	}
}
