package activities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/citation"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/extract"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/observability"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
)

// extractionErrorType is the temporal application error type used for
// non-retryable extraction failures.
const extractionErrorType = "extraction_error"

// PaperExtractor defines the interface for extracting text from paper
// sources. This decouples the activity from the concrete extract.Extractor,
// enabling straightforward testing with mock implementations.
type PaperExtractor interface {
	FromFile(path string) (*extract.Result, error)
	FromURL(ctx context.Context, rawURL string) (*extract.Result, error)
	FromDOI(ctx context.Context, doi string) (*extract.Result, error)
}

// ExtractionActivities provides Temporal activities for the extraction stage.
// Methods on this struct are registered as Temporal activities via the worker.
type ExtractionActivities struct {
	paperRepo repository.PaperRepository
	store     PipelineStore
	extractor PaperExtractor
	textDir   string
	metrics   *observability.Metrics
}

// NewExtractionActivities creates a new ExtractionActivities instance with
// the given dependencies. Extracted full text is written under textDir. The
// metrics parameter may be nil (metrics recording will be skipped).
func NewExtractionActivities(
	paperRepo repository.PaperRepository,
	store PipelineStore,
	extractor PaperExtractor,
	textDir string,
	metrics *observability.Metrics,
) *ExtractionActivities {
	return &ExtractionActivities{
		paperRepo: paperRepo,
		store:     store,
		extractor: extractor,
		textDir:   textDir,
		metrics:   metrics,
	}
}

// ExtractPaper extracts the full text of a paper from its best available
// source and persists the extraction artifact, the formatted citation, and
// the advance to processed in one transaction.
//
// Source resolution order: local file, then DOI, then URL. A paper with no
// source at all, or a source that yields no text, is a non-retryable
// failure; transient fetch errors are returned as-is so the workflow retry
// budget applies.
func (a *ExtractionActivities) ExtractPaper(ctx context.Context, input ExtractPaperInput) (*ExtractPaperOutput, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	paper, err := a.paperRepo.GetByID(ctx, input.PaperID)
	if err != nil {
		return nil, fmt.Errorf("load paper %s: %w", input.PaperID, err)
	}

	logger.Info("extracting paper",
		"paperID", paper.ID,
		"hasLocalPath", paper.LocalPath != "",
		"hasDOI", paper.DOI != "",
		"hasURL", paper.SourceURL != "",
	)

	if !paper.HasSource() {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("paper %s has no ingestible source", paper.ID),
			extractionErrorType,
			domain.ErrNoSource,
		)
	}

	result, err := a.resolve(ctx, paper)
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordStageFailure("extraction", "source_error")
		}
		return nil, fmt.Errorf("extract paper %s: %w", paper.ID, err)
	}

	if result.Text == "" {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("paper %s yielded no extractable text", paper.ID),
			extractionErrorType,
			domain.ErrNoExtractedText,
		)
	}

	textPath, err := a.writeText(paper, result.Text)
	if err != nil {
		return nil, fmt.Errorf("store extracted text for paper %s: %w", paper.ID, err)
	}

	data := &domain.ExtractedData{
		PaperID:      paper.ID,
		FullTextPath: textPath,
		Sections:     result.Sections,
		Keywords:     result.Keywords,
	}

	record := citation.ToRecord(paper)

	if err := a.store.SaveExtractionResult(ctx, data, record); err != nil {
		return nil, fmt.Errorf("persist extraction for paper %s: %w", paper.ID, err)
	}

	if a.metrics != nil {
		a.metrics.RecordStageAttempt("extraction", time.Since(start).Seconds())
	}

	logger.Info("paper extracted",
		"paperID", paper.ID,
		"textLength", len(result.Text),
		"sections", len(result.Sections),
		"keywords", len(result.Keywords),
		"duration", time.Since(start),
	)

	return &ExtractPaperOutput{
		PaperID:      paper.ID,
		FullTextPath: textPath,
		TextLength:   len(result.Text),
		SectionCount: len(result.Sections),
		KeywordCount: len(result.Keywords),
	}, nil
}

// resolve tries the paper's sources in priority order: local file, DOI, URL.
func (a *ExtractionActivities) resolve(ctx context.Context, paper *domain.Paper) (*extract.Result, error) {
	if paper.LocalPath != "" {
		return a.extractor.FromFile(paper.LocalPath)
	}
	if paper.DOI != "" {
		return a.extractor.FromDOI(ctx, paper.DOI)
	}
	return a.extractor.FromURL(ctx, paper.SourceURL)
}

// writeText stores the extracted full text under the text directory, keyed
// by paper ID so retries overwrite rather than accumulate.
func (a *ExtractionActivities) writeText(paper *domain.Paper, text string) (string, error) {
	if err := os.MkdirAll(a.textDir, 0o755); err != nil {
		return "", fmt.Errorf("create text directory: %w", err)
	}

	path := filepath.Join(a.textDir, paper.ID.String()+".txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write text file: %w", err)
	}
	return path, nil
}
