// Package domain provides domain models and business logic for the
// research paper summarization service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaperStatus represents the lifecycle states of a paper in the pipeline.
// These values must match the database enum paper_status.
type PaperStatus string

const (
	PaperStatusPending    PaperStatus = "pending"
	PaperStatusProcessing PaperStatus = "processing"
	PaperStatusProcessed  PaperStatus = "processed"
	PaperStatusClassified PaperStatus = "classified"
	PaperStatusSummarized PaperStatus = "summarized"
	PaperStatusFailed     PaperStatus = "failed"
)

// Rank returns the position of the status in the pipeline ordering.
// Status writes are monotonic upgrades: a transition is allowed only to a
// status with a strictly higher rank, so a slow stage can never clobber the
// result of a faster one. Failed is terminal and outranks everything.
func (s PaperStatus) Rank() int {
	switch s {
	case PaperStatusPending:
		return 0
	case PaperStatusProcessing:
		return 1
	case PaperStatusProcessed:
		return 2
	case PaperStatusClassified:
		return 3
	case PaperStatusSummarized:
		return 4
	case PaperStatusFailed:
		return 5
	default:
		return -1
	}
}

// IsTerminal returns true if the status represents a final state that will not change.
func (s PaperStatus) IsTerminal() bool {
	return s == PaperStatusFailed || s == PaperStatusSummarized
}

// CanTransition reports whether a transition from s to next is a legal
// forward move in the pipeline state machine. Failed is reachable from any
// non-terminal state; no transition may regress the rank ordering.
func (s PaperStatus) CanTransition(next PaperStatus) bool {
	if s == PaperStatusFailed {
		return false
	}
	if next == PaperStatusFailed {
		return true
	}
	return next.Rank() > s.Rank()
}

// SummaryType discriminates individual paper summaries from cross-paper
// topic syntheses. These values must match the database enum summary_type.
type SummaryType string

const (
	// SummaryTypeIndividual is a summary of a single paper, owned by that paper.
	SummaryTypeIndividual SummaryType = "individual"

	// SummaryTypeSynthesis is a cross-paper synthesis aggregating the
	// individual summaries of papers sharing a topic, owned by the topic.
	SummaryTypeSynthesis SummaryType = "cross_topic_synthesis"
)

// SourceKind identifies how a paper entered the system.
type SourceKind string

const (
	SourceKindSearch SourceKind = "search"
	SourceKindUpload SourceKind = "upload"
	SourceKindURL    SourceKind = "url"
	SourceKindDOI    SourceKind = "doi"
)

// Author represents a paper author.
type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
}

// Paper represents a research paper tracked through the pipeline.
// The record is owned by the store; status is mutated only through the
// monotonic transition operations on PaperRepository.
type Paper struct {
	ID              uuid.UUID
	Title           string
	Abstract        string
	Authors         []Author
	PublicationYear int
	// DOI is unique across papers when present. It is the idempotency key
	// that prevents duplicate ingestion of the same external paper.
	DOI       string
	SourceURL string
	// LocalPath points at a locally stored PDF for uploaded papers.
	LocalPath string
	Status    PaperStatus
	// FailureCause records why the paper reached failed status.
	FailureCause string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSource reports whether the paper has at least one ingestible source.
// A paper without a local file, DOI, or URL cannot pass the extraction stage.
func (p *Paper) HasSource() bool {
	return p.LocalPath != "" || p.DOI != "" || p.SourceURL != ""
}

// AuthorNames returns the ordered author name list.
func (p *Paper) AuthorNames() []string {
	if len(p.Authors) == 0 {
		return nil
	}
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// Topic groups papers by subject. Names are unique case-insensitively.
type Topic struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Summary holds generated summary content. Exactly one of PaperID or
// TopicID is set, depending on Type.
type Summary struct {
	ID      uuid.UUID
	Type    SummaryType
	Content string
	// PaperID is set for individual summaries, nil for syntheses.
	PaperID *uuid.UUID
	// TopicID is set for cross-topic syntheses, nil for individual summaries.
	TopicID *uuid.UUID
	// AudioPath points at the rendered audio file, when audio rendering
	// has completed for this summary.
	AudioPath string
	CreatedAt time.Time
}

// Validate checks the owner invariant: an individual summary references a
// paper and never a topic, a synthesis references a topic and never a paper.
func (s *Summary) Validate() error {
	switch s.Type {
	case SummaryTypeIndividual:
		if s.PaperID == nil || s.TopicID != nil {
			return NewValidationError("summary", "individual summary must reference exactly one paper")
		}
	case SummaryTypeSynthesis:
		if s.TopicID == nil || s.PaperID != nil {
			return NewValidationError("summary", "synthesis summary must reference exactly one topic")
		}
	default:
		return NewValidationError("summary_type", "unknown summary type")
	}
	if s.Content == "" {
		return NewValidationError("content", "summary content is required")
	}
	return nil
}

// ExtractedData holds the extraction stage's output for a paper, 1:1 with
// the paper. Its presence is the prerequisite for every later stage; the
// sections and keywords are opaque to the orchestrator.
type ExtractedData struct {
	ID           uuid.UUID
	PaperID      uuid.UUID
	FullTextPath string
	Sections     map[string]string
	Keywords     []string
	CreatedAt    time.Time
}

// Citation stores a formatted citation plus the structured fields needed
// to re-format it in another style.
type Citation struct {
	ID           uuid.UUID
	PaperID      uuid.UUID
	CitationText string
	Authors      string
	Title        string
	Year         int
	Venue        string
	DOI          string
	CreatedAt    time.Time
}
