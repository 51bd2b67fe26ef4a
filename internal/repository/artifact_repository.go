package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// ExtractedDataRepository manages per-paper extraction artifacts.
type ExtractedDataRepository interface {
	// Upsert persists the extraction artifact for a paper, replacing any
	// previous artifact from an earlier attempt.
	// Returns domain.ErrNotFound if the paper does not exist.
	Upsert(ctx context.Context, data *domain.ExtractedData) (*domain.ExtractedData, error)

	// GetByPaperID retrieves the extraction artifact for a paper.
	// Returns domain.ErrNotFound if the paper has no artifact.
	GetByPaperID(ctx context.Context, paperID uuid.UUID) (*domain.ExtractedData, error)
}

// CitationRepository manages formatted citations attached to papers.
type CitationRepository interface {
	// ReplaceForPaper atomically replaces the citations stored for a
	// paper. A retried stage therefore never accumulates duplicates.
	ReplaceForPaper(ctx context.Context, paperID uuid.UUID, citations []*domain.Citation) error

	// ListByPaper returns the citations for a paper in insertion order.
	ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Citation, error)
}
