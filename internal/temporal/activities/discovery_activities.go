package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/observability"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/papersources"
)

// PaperSearcher defines the interface for searching paper sources.
// This decouples the activity from the concrete papersources.Registry,
// enabling straightforward testing with mock implementations.
type PaperSearcher interface {
	SearchAll(ctx context.Context, params papersources.SearchParams) []papersources.SourceResult
}

// DiscoveryActivities provides Temporal activities for paper discovery.
// Methods on this struct are registered as Temporal activities via the worker.
type DiscoveryActivities struct {
	registry PaperSearcher
	metrics  *observability.Metrics
}

// NewDiscoveryActivities creates a new DiscoveryActivities instance with the
// given dependencies. The metrics parameter may be nil (metrics recording
// will be skipped).
func NewDiscoveryActivities(registry PaperSearcher, metrics *observability.Metrics) *DiscoveryActivities {
	return &DiscoveryActivities{
		registry: registry,
		metrics:  metrics,
	}
}

// SearchPapers searches the enabled paper sources concurrently and merges
// the results, dropping cross-source DOI duplicates.
//
// If at least one source returns papers, the activity succeeds with partial
// results and the per-source errors recorded in the output. If every source
// fails, the activity returns an error so the workflow retry budget applies.
func (a *DiscoveryActivities) SearchPapers(ctx context.Context, input SearchPapersInput) (*SearchPapersOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("starting paper discovery",
		"query", input.Query,
		"maxResults", input.MaxResults,
		"yearFrom", input.YearFrom,
		"yearTo", input.YearTo,
	)

	params := papersources.SearchParams{
		Query:          input.Query,
		MaxResults:     input.MaxResults,
		YearFrom:       input.YearFrom,
		YearTo:         input.YearTo,
		OpenAccessOnly: input.OpenAccessOnly,
	}

	start := time.Now()
	results := a.registry.SearchAll(ctx, params)

	bySource := make(map[string]int)
	var sourceErrors []SourceError
	var errorCount int

	for _, sr := range results {
		if sr.Error != nil {
			errorCount++
			sourceErrors = append(sourceErrors, SourceError{
				Source: sr.Source,
				Error:  sr.Error.Error(),
			})

			logger.Warn("source search failed",
				"source", sr.Source,
				"error", sr.Error,
			)

			if a.metrics != nil {
				a.metrics.RecordSourceRequestFailed(sr.Source, "search", "search_failed")
			}

			continue
		}

		paperCount := 0
		if sr.Result != nil {
			paperCount = len(sr.Result.Papers)
		}
		bySource[sr.Source] = paperCount

		logger.Info("source search completed",
			"source", sr.Source,
			"paperCount", paperCount,
		)

		if a.metrics != nil {
			a.metrics.RecordSourceRequest(sr.Source, "search", time.Since(start).Seconds())
		}
	}

	papers := papersources.MergePapers(results)

	if len(papers) == 0 && errorCount > 0 {
		return nil, fmt.Errorf("all %d paper sources failed", errorCount)
	}

	logger.Info("paper discovery completed",
		"totalFound", len(papers),
		"sourceErrors", errorCount,
		"duration", time.Since(start),
	)

	return &SearchPapersOutput{
		Papers:     papers,
		TotalFound: len(papers),
		BySource:   bySource,
		Errors:     sourceErrors,
	}, nil
}
