package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// PaperRepository handles paper persistence, DOI deduplication, and status
// tracking through the pipeline.
type PaperRepository interface {
	// Create inserts a new paper. When the paper carries a DOI that is
	// already registered, the existing paper is returned instead and
	// created is false; the stored record is never mutated by a duplicate
	// registration. Returns domain.ErrInvalidInput when the paper has no
	// title.
	Create(ctx context.Context, paper *domain.Paper) (result *domain.Paper, created bool, err error)

	// GetByID retrieves a paper by its UUID.
	// Returns domain.ErrNotFound if no matching paper exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error)

	// GetByDOI retrieves a paper by its normalized DOI.
	// Returns domain.ErrNotFound if no matching paper exists.
	GetByDOI(ctx context.Context, doi string) (*domain.Paper, error)

	// GetByIDs retrieves multiple papers by UUID. Missing IDs are silently
	// skipped. Returns nil, nil for an empty input slice.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Paper, error)

	// List retrieves papers matching the filter criteria along with the
	// total count of matching records regardless of pagination.
	List(ctx context.Context, filter PaperFilter) ([]*domain.Paper, int64, error)

	// AdvanceStatus moves a paper to the given status. The update only
	// applies when the new status strictly outranks the current one, so
	// concurrent stage completions can never move a paper backwards.
	// Returns domain.ErrNotFound if the paper does not exist and
	// domain.ErrStatusRegression if the paper already holds an equal or
	// later status (including failed).
	AdvanceStatus(ctx context.Context, id uuid.UUID, next domain.PaperStatus) error

	// MarkFailed moves a paper to the failed terminal status and records
	// the failure cause. Marking an already failed paper is a no-op.
	// Returns domain.ErrNotFound if the paper does not exist.
	MarkFailed(ctx context.Context, id uuid.UUID, cause string) error

	// UpdateLocalPath records the filesystem location of the fetched
	// paper document.
	// Returns domain.ErrNotFound if the paper does not exist.
	UpdateLocalPath(ctx context.Context, id uuid.UUID, localPath string) error
}

// PaperFilter specifies criteria for listing papers.
type PaperFilter struct {
	// Status filters to papers in a specific pipeline status (optional).
	Status *domain.PaperStatus

	// TopicID filters to papers associated with a specific topic (optional).
	TopicID *uuid.UUID

	// Limit specifies maximum number of results (default: 100, max: 1000).
	Limit int

	// Offset specifies the starting position for pagination.
	Offset int
}

// Validate checks the filter values and applies pagination defaults.
func (f *PaperFilter) Validate() error {
	if f.Status != nil && f.Status.Rank() < 0 {
		return domain.NewValidationError("status", "unknown paper status")
	}
	applyPaginationDefaults(&f.Limit, &f.Offset)
	return nil
}
