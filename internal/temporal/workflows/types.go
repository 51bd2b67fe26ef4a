// Package workflows defines Temporal workflow implementations for the
// paper summarization pipeline.
package workflows

import (
	"time"

	"github.com/google/uuid"

	pstemporal "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal/resilience"
)

// Re-export signal/query name constants from the parent temporal package for
// convenience. These are defined in the parent package so the server layer can
// reference them without depending on the workflows package.
const (
	SignalCancel  = pstemporal.SignalCancel
	QueryProgress = pstemporal.QueryProgress
)

// Activity timeout constants.
const (
	discoveryActivityTimeout  = 5 * time.Minute
	extractionActivityTimeout = 5 * time.Minute
	llmActivityTimeout        = 3 * time.Minute
	narrationActivityTimeout  = 2 * time.Minute
	statusActivityTimeout     = 30 * time.Second
)

// minSynthesisContributors is the summarized-paper floor a topic must reach
// before a synthesis is dispatched. Topics below the floor are logged skips.
const minSynthesisContributors = 2

// PipelineWorkflowInput is an alias for the shared input type defined in the
// parent temporal package. This allows the workflow function signature to
// remain unchanged while the type is importable from either location.
type PipelineWorkflowInput = pstemporal.PipelineWorkflowInput

// PaperSubmission is an alias for the shared submission type.
type PaperSubmission = pstemporal.PaperSubmission

// PipelineWorkflowResult contains the final results of a pipeline workflow.
type PipelineWorkflowResult struct {
	// PipelineID is the pipeline run identifier.
	PipelineID uuid.UUID

	// Status is the final status of the run ("completed" or "cancelled").
	Status string

	// PapersDiscovered is the number of papers the discovery stage found.
	PapersDiscovered int

	// PapersRegistered is the number of newly registered papers.
	PapersRegistered int

	// PapersDeduplicated is the number of papers resolved to existing
	// records by DOI.
	PapersDeduplicated int

	// PapersProcessed is the number of papers that passed extraction.
	PapersProcessed int

	// PapersClassified is the number of papers that passed classification.
	PapersClassified int

	// PapersSummarized is the number of papers that received an
	// individual summary.
	PapersSummarized int

	// PapersFailed is the number of papers marked failed.
	PapersFailed int

	// SynthesesCreated is the number of cross-topic syntheses produced.
	SynthesesCreated int

	// SynthesesSkipped is the number of topics skipped for not reaching
	// the contributor floor.
	SynthesesSkipped int

	// AudioRendered is the number of summaries that received narration.
	AudioRendered int

	// Duration is the total workflow execution time in seconds.
	Duration float64
}

// workflowProgress tracks the internal progress state of the workflow,
// exposed through the progress query handler.
type workflowProgress struct {
	// Phase names the phase the pipeline is currently in.
	Phase string

	// PapersTotal is the number of papers registered into this run.
	PapersTotal int

	// PapersExtracted counts papers that passed extraction so far.
	PapersExtracted int

	// PapersClassified counts papers that passed classification so far.
	PapersClassified int

	// PapersSummarized counts papers summarized so far.
	PapersSummarized int

	// PapersFailed counts papers marked failed so far.
	PapersFailed int

	// SynthesesCreated counts syntheses produced so far.
	SynthesesCreated int

	// Retry surfaces the retry state of the stage currently retrying.
	Retry *resilience.Progress
}
