// Package activities provides Temporal activity implementations for the
// paper summarization pipeline.
//
// Activity inputs and outputs are defined as serializable structs that cross the
// Temporal serialization boundary. Each activity receives an input struct and
// returns an output struct (or error). All fields must be exported for JSON
// serialization by the Temporal SDK's default data converter.
package activities

import (
	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// SearchPapersInput contains the parameters for the paper discovery activity.
type SearchPapersInput struct {
	// Query is the search query string.
	Query string

	// MaxResults is the maximum number of results to return per source.
	MaxResults int

	// YearFrom restricts results to papers published on or after this year
	// (0 = unrestricted).
	YearFrom int

	// YearTo restricts results to papers published on or before this year
	// (0 = unrestricted).
	YearTo int

	// OpenAccessOnly restricts results to open access papers.
	OpenAccessOnly bool
}

// SearchPapersOutput contains the results of the paper discovery activity.
type SearchPapersOutput struct {
	// Papers is the deduplicated list of papers found across all sources.
	Papers []*domain.Paper

	// TotalFound is the number of papers in Papers.
	TotalFound int

	// BySource maps each source to the count of papers it returned.
	BySource map[string]int

	// Errors contains any errors encountered from individual sources.
	Errors []SourceError
}

// SourceError represents an error from a specific paper source during search.
type SourceError struct {
	// Source is the paper source that produced the error.
	Source string

	// Error is the error message from the source.
	Error string
}

// RegisterPapersInput contains the parameters for the paper registration activity.
type RegisterPapersInput struct {
	// PipelineID is the pipeline run the papers belong to.
	PipelineID uuid.UUID

	// Papers are the papers to register. Papers carrying a DOI that is
	// already registered are deduplicated against the existing record.
	Papers []*domain.Paper
}

// RegisterPapersOutput contains the results of the paper registration activity.
type RegisterPapersOutput struct {
	// PaperIDs are the IDs of all papers in the batch, newly created and
	// deduplicated alike, in registration order.
	PaperIDs []uuid.UUID

	// Registered is the count of newly created papers.
	Registered int

	// Deduplicated is the count of papers resolved to an existing record
	// by DOI.
	Deduplicated int
}

// AdvanceStatusInput contains the parameters for the status advance activity.
type AdvanceStatusInput struct {
	// PaperID is the paper to advance.
	PaperID uuid.UUID

	// Status is the status to advance to.
	Status domain.PaperStatus
}

// MarkFailedInput contains the parameters for the paper failure activity.
type MarkFailedInput struct {
	// PipelineID is the pipeline run the failure occurred in.
	PipelineID uuid.UUID

	// PaperID is the paper to mark failed.
	PaperID uuid.UUID

	// Cause is the failure cause recorded on the paper.
	Cause string
}

// PublishEventInput contains the parameters for the lifecycle event activity.
type PublishEventInput struct {
	// EventType is the lifecycle event type (events.Type* constants).
	EventType string

	// PipelineID is the pipeline run the event belongs to.
	PipelineID uuid.UUID

	// Detail carries event-specific fields.
	Detail map[string]string
}

// TopicGroup is one topic's summarized papers, used by the synthesis trigger.
type TopicGroup struct {
	// TopicID is the topic identifier.
	TopicID uuid.UUID

	// TopicName is the topic display name.
	TopicName string

	// PaperIDs are the summarized papers in the topic, sorted by ID for
	// deterministic dispatch ordering.
	PaperIDs []uuid.UUID
}

// GroupSummarizedOutput contains the synthesis trigger snapshot.
type GroupSummarizedOutput struct {
	// Groups lists every topic that has at least one summarized paper,
	// sorted by topic name. The workflow applies the minimum-contributor
	// threshold.
	Groups []TopicGroup
}

// FetchSummariesInput contains the parameters for the summary fetch activity.
type FetchSummariesInput struct {
	// PaperIDs are the papers whose individual summaries to fetch.
	PaperIDs []uuid.UUID
}

// PaperSummary pairs a paper with its individual summary content.
type PaperSummary struct {
	// PaperID is the summarized paper.
	PaperID uuid.UUID

	// Title is the paper title.
	Title string

	// Content is the individual summary text.
	Content string
}

// FetchSummariesOutput contains the results of the summary fetch activity.
type FetchSummariesOutput struct {
	// Summaries are the fetched summaries in input order. Papers without a
	// summary are omitted.
	Summaries []PaperSummary
}

// ExtractPaperInput contains the parameters for the extraction activity.
type ExtractPaperInput struct {
	// PaperID is the paper to extract.
	PaperID uuid.UUID
}

// ExtractPaperOutput contains the results of the extraction activity.
type ExtractPaperOutput struct {
	// PaperID is the extracted paper.
	PaperID uuid.UUID

	// FullTextPath is where the extracted text was stored.
	FullTextPath string

	// TextLength is the extracted text length in bytes.
	TextLength int

	// SectionCount is the number of sections detected in the text.
	SectionCount int

	// KeywordCount is the number of keywords extracted from the text.
	KeywordCount int
}

// ClassifyPaperInput contains the parameters for the classification activity.
type ClassifyPaperInput struct {
	// PaperID is the paper to classify.
	PaperID uuid.UUID

	// Topics is the candidate topic list. When empty, the configured
	// default topic list is used.
	Topics []string
}

// ClassifyPaperOutput contains the results of the classification activity.
type ClassifyPaperOutput struct {
	// PaperID is the classified paper.
	PaperID uuid.UUID

	// TopicIDs are the topics the paper was associated with.
	TopicIDs []uuid.UUID

	// TopicNames are the matched topic names, parallel to TopicIDs.
	TopicNames []string

	// NoMatch is true when the model matched the paper to none of the
	// offered topics. This is a successful outcome with zero associations.
	NoMatch bool

	// Model is the model that produced the classification.
	Model string
}

// SummarizePaperInput contains the parameters for the summarization activity.
type SummarizePaperInput struct {
	// PipelineID is the pipeline run requesting the summary.
	PipelineID uuid.UUID

	// PaperID is the paper to summarize.
	PaperID uuid.UUID
}

// SummarizePaperOutput contains the results of the summarization activity.
type SummarizePaperOutput struct {
	// PaperID is the summarized paper.
	PaperID uuid.UUID

	// SummaryID is the persisted individual summary.
	SummaryID uuid.UUID

	// Model is the model that produced the summary.
	Model string

	// InputTokens is the prompt token count reported by the provider.
	InputTokens int

	// OutputTokens is the completion token count reported by the provider.
	OutputTokens int
}

// SynthesizeTopicInput contains the parameters for the synthesis activity.
type SynthesizeTopicInput struct {
	// PipelineID is the pipeline run requesting the synthesis.
	PipelineID uuid.UUID

	// TopicID is the topic to synthesize.
	TopicID uuid.UUID

	// TopicName is the topic display name used in the prompt.
	TopicName string

	// Summaries are the contributing individual summaries, sorted by paper
	// ID. At least two are required.
	Summaries []PaperSummary
}

// SynthesizeTopicOutput contains the results of the synthesis activity.
type SynthesizeTopicOutput struct {
	// TopicID is the synthesized topic.
	TopicID uuid.UUID

	// SummaryID is the persisted synthesis summary.
	SummaryID uuid.UUID

	// PaperCount is the number of contributing papers.
	PaperCount int

	// Model is the model that produced the synthesis.
	Model string
}

// RenderAudioInput contains the parameters for the narration activity.
type RenderAudioInput struct {
	// PipelineID is the pipeline run requesting the narration.
	PipelineID uuid.UUID

	// SummaryID is the summary to narrate.
	SummaryID uuid.UUID
}

// RenderAudioOutput contains the results of the narration activity.
type RenderAudioOutput struct {
	// SummaryID is the narrated summary.
	SummaryID uuid.UUID

	// AudioPath is where the rendered audio was stored.
	AudioPath string
}
