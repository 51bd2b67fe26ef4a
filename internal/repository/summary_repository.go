package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// SummaryRepository manages individual paper summaries and cross-paper
// topic syntheses.
type SummaryRepository interface {
	// Create persists a summary. A retried stage writing the same
	// (owner, type) pair replaces the previous content rather than
	// accumulating duplicate rows. Returns domain.ErrInvalidInput when
	// the summary violates the single-owner rule or has no content.
	Create(ctx context.Context, summary *domain.Summary) (*domain.Summary, error)

	// GetByID retrieves a summary by its UUID.
	// Returns domain.ErrNotFound if no matching summary exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Summary, error)

	// GetForPaper retrieves the individual summary owned by a paper.
	// Returns domain.ErrNotFound if the paper has no summary.
	GetForPaper(ctx context.Context, paperID uuid.UUID) (*domain.Summary, error)

	// GetForTopic retrieves the synthesis owned by a topic.
	// Returns domain.ErrNotFound if the topic has no synthesis.
	GetForTopic(ctx context.Context, topicID uuid.UUID) (*domain.Summary, error)

	// List retrieves summaries matching the filter criteria.
	List(ctx context.Context, filter SummaryFilter) ([]*domain.Summary, error)

	// SetAudioPath records the narration audio file for a summary.
	// Returns domain.ErrNotFound if the summary does not exist.
	SetAudioPath(ctx context.Context, id uuid.UUID, audioPath string) error
}

// SummaryFilter specifies criteria for listing summaries.
type SummaryFilter struct {
	// Type filters to a specific summary type (optional).
	Type *domain.SummaryType

	// TopicID filters to summaries owned by a specific topic (optional).
	TopicID *uuid.UUID

	// Limit specifies maximum number of results (default: 100, max: 1000).
	Limit int

	// Offset specifies the starting position for pagination.
	Offset int
}

// Validate checks the filter values and applies pagination defaults.
func (f *SummaryFilter) Validate() error {
	applyPaginationDefaults(&f.Limit, &f.Offset)
	return nil
}
