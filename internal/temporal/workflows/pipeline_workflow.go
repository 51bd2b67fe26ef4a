package workflows

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/events"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal/activities"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal/resilience"
)

// PaperPipelineWorkflow orchestrates one run of the paper summarization
// pipeline.
//
// The workflow proceeds through the following phases:
//  1. Discover: search paper sources (skipped for direct submissions)
//  2. Register: create paper records in pending status, deduplicating by DOI
//  3. Extract: fan out text extraction per paper, fan in
//  4. Classify + Summarize: both stages fan out concurrently over the
//     papers that passed extraction
//  5. Synthesize: topics with enough summarized papers get one cross-topic
//     synthesis each
//  6. Narrate: best-effort audio rendering for the new summaries
//
// Each per-item stage execution carries its own bounded fixed-delay retry
// budget; one paper exhausting its budget never fails the run. The workflow
// supports cancellation via the "cancel" signal and progress queries via the
// "progress" query type.
func PaperPipelineWorkflow(ctx workflow.Context, input PipelineWorkflowInput) (*PipelineWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting paper pipeline workflow",
		"pipelineID", input.PipelineID,
		"query", input.Query,
		"submissions", len(input.Papers),
	)

	startTime := workflow.Now(ctx)
	configs := resilience.DefaultStageConfigs()

	result := &PipelineWorkflowResult{
		PipelineID: input.PipelineID,
		Status:     "completed",
	}

	progress := &workflowProgress{
		Phase: "starting",
		Retry: &resilience.Progress{},
	}

	if err := workflow.SetQueryHandler(ctx, QueryProgress, func() (*workflowProgress, error) {
		return progress, nil
	}); err != nil {
		logger.Error("failed to register progress query handler", "error", err)
		return nil, fmt.Errorf("register progress query handler: %w", err)
	}

	// Set up cancellation signal handling.
	cancelCtx, cancelFunc := workflow.WithCancel(ctx)
	signalCh := workflow.GetSignalChannel(ctx, SignalCancel)
	workflow.Go(ctx, func(gCtx workflow.Context) {
		signalCh.Receive(gCtx, nil)
		logger.Info("received cancel signal")
		cancelFunc()
	})

	// Activity nil-pointer variables for method references.
	var discoveryAct *activities.DiscoveryActivities
	var statusAct *activities.StatusActivities
	var extractionAct *activities.ExtractionActivities
	var classificationAct *activities.ClassificationActivities
	var summaryAct *activities.SummaryActivities
	var audioAct *activities.AudioActivities

	// Stage activities run a single SDK attempt per call; the retry loop
	// around them is the workflow-level stage executor.
	singleAttempt := &temporal.RetryPolicy{MaximumAttempts: 1}

	discoveryCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: discoveryActivityTimeout,
		RetryPolicy:         singleAttempt,
	})
	extractionCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: extractionActivityTimeout,
		RetryPolicy:         singleAttempt,
	})
	llmCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: llmActivityTimeout,
		RetryPolicy:         singleAttempt,
	})
	narrationCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: narrationActivityTimeout,
		RetryPolicy:         singleAttempt,
	})

	// Bookkeeping activities keep a short SDK retry policy of their own.
	statusCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: statusActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    500 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	})

	// Event publication survives cancellation by running on the root context.
	eventCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: statusActivityTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})
	publishEvent := func(eventType string, detail map[string]string) {
		err := workflow.ExecuteActivity(eventCtx, statusAct.PublishPipelineEvent, activities.PublishEventInput{
			EventType:  eventType,
			PipelineID: input.PipelineID,
			Detail:     detail,
		}).Get(ctx, nil)
		if err != nil {
			logger.Warn("failed to publish pipeline event", "eventType", eventType, "error", err)
		}
	}

	handleCancelled := func() (*PipelineWorkflowResult, error) {
		result.Status = "cancelled"
		result.Duration = workflow.Now(ctx).Sub(startTime).Seconds()
		publishEvent(events.TypePipelineCancelled, nil)
		return result, temporal.NewCanceledError("pipeline cancelled")
	}

	// A paper can fail more than one concurrently running stage; only the
	// first failure is recorded and counted.
	failedPapers := make(map[uuid.UUID]struct{})
	markFailed := func(paperID uuid.UUID, cause error) {
		if _, done := failedPapers[paperID]; done {
			return
		}
		err := workflow.ExecuteActivity(statusCtx, statusAct.MarkFailed, activities.MarkFailedInput{
			PipelineID: input.PipelineID,
			PaperID:    paperID,
			Cause:      cause.Error(),
		}).Get(cancelCtx, nil)
		if err != nil {
			logger.Error("failed to mark paper failed", "paperID", paperID, "error", err)
			return
		}
		failedPapers[paperID] = struct{}{}
		result.PapersFailed++
		progress.PapersFailed++
	}

	publishEvent(events.TypePipelineStarted, map[string]string{"query": input.Query})

	// Phase 1: Discovery.
	papers := submissionsToPapers(input.Papers)
	if input.Query != "" {
		progress.Phase = "discovering"

		var searchOut activities.SearchPapersOutput
		discoverRes := resilience.ExecuteStage(cancelCtx, configs[resilience.StageDiscovery], progress.Retry, func() error {
			return workflow.ExecuteActivity(discoveryCtx, discoveryAct.SearchPapers, activities.SearchPapersInput{
				Query:      input.Query,
				MaxResults: input.MaxResults,
				YearFrom:   input.YearFrom,
				YearTo:     input.YearTo,
			}).Get(cancelCtx, &searchOut)
		})
		if cancelCtx.Err() != nil {
			return handleCancelled()
		}

		switch {
		case discoverRes.Degraded:
			logger.Warn("discovery degraded, continuing with direct submissions only",
				"error", discoverRes.Err,
				"attempts", discoverRes.Attempts,
			)
		case discoverRes.Failed:
			logger.Error("discovery failed", "error", discoverRes.Err)
		default:
			result.PapersDiscovered = searchOut.TotalFound
			papers = append(papers, searchOut.Papers...)
		}
	}

	if len(papers) == 0 {
		logger.Info("no papers to process, completing pipeline")
		result.Duration = workflow.Now(ctx).Sub(startTime).Seconds()
		publishEvent(events.TypePipelineCompleted, completionDetail(result))
		return result, nil
	}

	// Phase 2: Registration.
	progress.Phase = "registering"

	var registerOut activities.RegisterPapersOutput
	err := workflow.ExecuteActivity(statusCtx, statusAct.RegisterPapers, activities.RegisterPapersInput{
		PipelineID: input.PipelineID,
		Papers:     papers,
	}).Get(cancelCtx, &registerOut)
	if err != nil {
		if cancelCtx.Err() != nil {
			return handleCancelled()
		}
		publishEvent(events.TypePipelineFailed, map[string]string{"error": err.Error()})
		return nil, fmt.Errorf("register papers: %w", err)
	}

	result.PapersRegistered = registerOut.Registered
	result.PapersDeduplicated = registerOut.Deduplicated
	paperIDs := registerOut.PaperIDs
	progress.PapersTotal = len(paperIDs)

	// Phase 3: Extraction fan-out/fan-in. Each paper advances to processing
	// as its extraction is dispatched, so mid-stage reads report the right
	// lifecycle state. On a retried attempt the advance is a no-op behind
	// the monotonic store guard.
	progress.Phase = "extracting"

	extractBatch := stageDispatch(cancelCtx, configs[resilience.StageExtraction], progress.Retry, len(paperIDs), func(gCtx workflow.Context, i int) error {
		if err := workflow.ExecuteActivity(statusCtx, statusAct.AdvanceStatus, activities.AdvanceStatusInput{
			PaperID: paperIDs[i],
			Status:  domain.PaperStatusProcessing,
		}).Get(gCtx, nil); err != nil {
			return err
		}
		return workflow.ExecuteActivity(extractionCtx, extractionAct.ExtractPaper, activities.ExtractPaperInput{
			PaperID: paperIDs[i],
		}).Get(gCtx, nil)
	})
	extractResults := collectStage(cancelCtx, extractBatch)
	if cancelCtx.Err() != nil {
		return handleCancelled()
	}

	var processedIDs []uuid.UUID
	for i, res := range extractResults {
		if res.Failed {
			logger.Warn("paper failed extraction",
				"paperID", paperIDs[i],
				"attempts", res.Attempts,
				"error", res.Err,
			)
			markFailed(paperIDs[i], res.Err)
			continue
		}
		processedIDs = append(processedIDs, paperIDs[i])
	}
	result.PapersProcessed = len(processedIDs)
	progress.PapersExtracted = len(processedIDs)

	// Phase 4: Classification and summarization fan out concurrently over
	// the papers that passed extraction.
	progress.Phase = "classifying_and_summarizing"

	classifyBatch := stageDispatch(cancelCtx, configs[resilience.StageClassification], progress.Retry, len(processedIDs), func(gCtx workflow.Context, i int) error {
		return workflow.ExecuteActivity(llmCtx, classificationAct.ClassifyPaper, activities.ClassifyPaperInput{
			PaperID: processedIDs[i],
			Topics:  input.Topics,
		}).Get(gCtx, nil)
	})

	summaryOuts := make([]activities.SummarizePaperOutput, len(processedIDs))
	summarizeBatch := stageDispatch(cancelCtx, configs[resilience.StageSummarization], progress.Retry, len(processedIDs), func(gCtx workflow.Context, i int) error {
		return workflow.ExecuteActivity(llmCtx, summaryAct.SummarizePaper, activities.SummarizePaperInput{
			PipelineID: input.PipelineID,
			PaperID:    processedIDs[i],
		}).Get(gCtx, &summaryOuts[i])
	})

	classifyResults := collectStage(cancelCtx, classifyBatch)
	summarizeResults := collectStage(cancelCtx, summarizeBatch)
	if cancelCtx.Err() != nil {
		return handleCancelled()
	}

	for i, res := range classifyResults {
		if res.Failed {
			logger.Warn("paper failed classification",
				"paperID", processedIDs[i],
				"attempts", res.Attempts,
				"error", res.Err,
			)
			markFailed(processedIDs[i], res.Err)
		}
	}
	result.PapersClassified = len(succeededIndexes(classifyResults))
	progress.PapersClassified = result.PapersClassified

	var summarizedIDs []uuid.UUID
	var audioTargets []uuid.UUID
	for i, res := range summarizeResults {
		if res.Failed {
			logger.Warn("paper failed summarization",
				"paperID", processedIDs[i],
				"attempts", res.Attempts,
				"error", res.Err,
			)
			markFailed(processedIDs[i], res.Err)
			continue
		}
		summarizedIDs = append(summarizedIDs, processedIDs[i])
		audioTargets = append(audioTargets, summaryOuts[i].SummaryID)
	}
	result.PapersSummarized = len(summarizedIDs)
	progress.PapersSummarized = len(summarizedIDs)

	// Phase 5: Synthesis trigger and fan-out. Eligibility is evaluated
	// once, from a store snapshot taken after the summarization fan-in.
	if len(summarizedIDs) > 0 {
		progress.Phase = "synthesizing"

		var groupOut activities.GroupSummarizedOutput
		err := workflow.ExecuteActivity(statusCtx, statusAct.GroupSummarizedByTopic).Get(cancelCtx, &groupOut)
		if err != nil {
			if cancelCtx.Err() != nil {
				return handleCancelled()
			}
			logger.Error("failed to snapshot summarized papers by topic, skipping synthesis", "error", err)
		} else {
			var eligible []activities.TopicGroup
			for _, group := range groupOut.Groups {
				if len(group.PaperIDs) < minSynthesisContributors {
					logger.Info("topic below synthesis contributor floor, skipping",
						"topicName", group.TopicName,
						"contributors", len(group.PaperIDs),
					)
					result.SynthesesSkipped++
					continue
				}
				eligible = append(eligible, group)
			}

			synthOuts := make([]activities.SynthesizeTopicOutput, len(eligible))
			synthBatch := stageDispatch(cancelCtx, configs[resilience.StageSynthesis], progress.Retry, len(eligible), func(gCtx workflow.Context, i int) error {
				group := eligible[i]

				var fetchOut activities.FetchSummariesOutput
				if err := workflow.ExecuteActivity(statusCtx, statusAct.FetchSummaries, activities.FetchSummariesInput{
					PaperIDs: group.PaperIDs,
				}).Get(gCtx, &fetchOut); err != nil {
					return err
				}

				return workflow.ExecuteActivity(llmCtx, summaryAct.SynthesizeTopic, activities.SynthesizeTopicInput{
					PipelineID: input.PipelineID,
					TopicID:    group.TopicID,
					TopicName:  group.TopicName,
					Summaries:  fetchOut.Summaries,
				}).Get(gCtx, &synthOuts[i])
			})
			synthResults := collectStage(cancelCtx, synthBatch)
			if cancelCtx.Err() != nil {
				return handleCancelled()
			}

			for i, res := range synthResults {
				if res.Degraded || res.Failed {
					logger.Warn("topic synthesis degraded",
						"topicName", eligible[i].TopicName,
						"attempts", res.Attempts,
						"error", res.Err,
					)
					continue
				}
				result.SynthesesCreated++
				audioTargets = append(audioTargets, synthOuts[i].SummaryID)
			}
			progress.SynthesesCreated = result.SynthesesCreated
		}
	}

	// Phase 6: Narration fan-out, fire-and-forget beyond best-effort
	// collection. Failures are logged skips.
	if input.GenerateAudio && len(audioTargets) > 0 {
		progress.Phase = "narrating"

		audioBatch := stageDispatch(cancelCtx, configs[resilience.StageNarration], progress.Retry, len(audioTargets), func(gCtx workflow.Context, i int) error {
			return workflow.ExecuteActivity(narrationCtx, audioAct.RenderSummaryAudio, activities.RenderAudioInput{
				PipelineID: input.PipelineID,
				SummaryID:  audioTargets[i],
			}).Get(gCtx, nil)
		})
		audioResults := collectStage(cancelCtx, audioBatch)
		if cancelCtx.Err() != nil {
			return handleCancelled()
		}

		for i, res := range audioResults {
			if res.Skipped || res.Failed {
				logger.Info("narration skipped",
					"summaryID", audioTargets[i],
					"error", res.Err,
				)
				continue
			}
			result.AudioRendered++
		}
	}

	progress.Phase = "completed"
	result.Duration = workflow.Now(ctx).Sub(startTime).Seconds()
	publishEvent(events.TypePipelineCompleted, completionDetail(result))

	logger.Info("paper pipeline workflow completed",
		"pipelineID", input.PipelineID,
		"registered", result.PapersRegistered,
		"deduplicated", result.PapersDeduplicated,
		"processed", result.PapersProcessed,
		"summarized", result.PapersSummarized,
		"failed", result.PapersFailed,
		"syntheses", result.SynthesesCreated,
		"duration", result.Duration,
	)

	return result, nil
}

// submissionsToPapers converts direct submissions into paper records ready
// for registration.
func submissionsToPapers(submissions []PaperSubmission) []*domain.Paper {
	if len(submissions) == 0 {
		return nil
	}

	papers := make([]*domain.Paper, 0, len(submissions))
	for _, s := range submissions {
		papers = append(papers, &domain.Paper{
			Title:           s.Title,
			Abstract:        s.Abstract,
			Authors:         s.Authors,
			PublicationYear: s.PublicationYear,
			DOI:             domain.NormalizeDOI(s.DOI),
			SourceURL:       s.SourceURL,
			LocalPath:       s.LocalPath,
			Status:          domain.PaperStatusPending,
		})
	}
	return papers
}

// completionDetail builds the event detail map for a completed run.
func completionDetail(result *PipelineWorkflowResult) map[string]string {
	return map[string]string{
		"registered": fmt.Sprintf("%d", result.PapersRegistered),
		"processed":  fmt.Sprintf("%d", result.PapersProcessed),
		"summarized": fmt.Sprintf("%d", result.PapersSummarized),
		"failed":     fmt.Sprintf("%d", result.PapersFailed),
		"syntheses":  fmt.Sprintf("%d", result.SynthesesCreated),
	}
}
