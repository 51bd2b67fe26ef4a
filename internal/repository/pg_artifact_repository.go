package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// Compile-time interface verification.
var (
	_ ExtractedDataRepository = (*PgExtractedDataRepository)(nil)
	_ CitationRepository      = (*PgCitationRepository)(nil)
)

// PgExtractedDataRepository is a PostgreSQL implementation of
// ExtractedDataRepository.
type PgExtractedDataRepository struct {
	db DBTX
}

// NewPgExtractedDataRepository creates a new extracted data repository.
func NewPgExtractedDataRepository(db DBTX) *PgExtractedDataRepository {
	return &PgExtractedDataRepository{db: db}
}

// Upsert persists the extraction artifact for a paper.
func (r *PgExtractedDataRepository) Upsert(ctx context.Context, data *domain.ExtractedData) (*domain.ExtractedData, error) {
	if data == nil {
		return nil, domain.NewValidationError("extracted_data", "extracted data cannot be nil")
	}
	if data.PaperID == uuid.Nil {
		return nil, domain.NewValidationError("paper_id", "paper ID is required")
	}

	sectionsJSON, err := json.Marshal(data.Sections)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sections: %w", err)
	}
	keywordsJSON, err := json.Marshal(data.Keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keywords: %w", err)
	}

	if data.ID == uuid.Nil {
		data.ID = uuid.New()
	}

	query := `
		INSERT INTO extracted_data (id, paper_id, full_text_path, sections, keywords, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (paper_id) DO UPDATE SET
			full_text_path = EXCLUDED.full_text_path,
			sections = EXCLUDED.sections,
			keywords = EXCLUDED.keywords
		RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query,
		data.ID,
		data.PaperID,
		data.FullTextPath,
		sectionsJSON,
		keywordsJSON,
		time.Now().UTC(),
	).Scan(&data.ID, &data.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.NewNotFoundError("paper", data.PaperID.String())
		}
		return nil, fmt.Errorf("failed to upsert extracted data: %w", err)
	}

	return data, nil
}

// GetByPaperID retrieves the extraction artifact for a paper.
func (r *PgExtractedDataRepository) GetByPaperID(ctx context.Context, paperID uuid.UUID) (*domain.ExtractedData, error) {
	query := `
		SELECT id, paper_id, full_text_path, sections, keywords, created_at
		FROM extracted_data
		WHERE paper_id = $1`

	var data domain.ExtractedData
	var sectionsJSON, keywordsJSON []byte
	err := r.db.QueryRow(ctx, query, paperID).Scan(
		&data.ID, &data.PaperID, &data.FullTextPath, &sectionsJSON, &keywordsJSON, &data.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("extracted data", paperID.String())
		}
		return nil, fmt.Errorf("failed to get extracted data: %w", err)
	}

	if len(sectionsJSON) > 0 {
		if err := json.Unmarshal(sectionsJSON, &data.Sections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
		}
	}
	if len(keywordsJSON) > 0 {
		if err := json.Unmarshal(keywordsJSON, &data.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
		}
	}

	return &data, nil
}

// PgCitationRepository is a PostgreSQL implementation of CitationRepository.
type PgCitationRepository struct {
	db DBTX
}

// NewPgCitationRepository creates a new citation repository.
func NewPgCitationRepository(db DBTX) *PgCitationRepository {
	return &PgCitationRepository{db: db}
}

// ReplaceForPaper atomically replaces the citations stored for a paper.
// Pass a pgx.Tx as the repository's DBTX to make the replace atomic with
// other writes.
func (r *PgCitationRepository) ReplaceForPaper(ctx context.Context, paperID uuid.UUID, citations []*domain.Citation) error {
	if paperID == uuid.Nil {
		return domain.NewValidationError("paper_id", "paper ID is required")
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM citations WHERE paper_id = $1`, paperID); err != nil {
		return fmt.Errorf("failed to clear citations: %w", err)
	}

	if len(citations) == 0 {
		return nil
	}

	query := `
		INSERT INTO citations (id, paper_id, citation_text, authors, title, year, venue, doi, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now().UTC()
	batch := &pgx.Batch{}

	for _, c := range citations {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		batch.Queue(query, c.ID, paperID, c.CitationText, c.Authors, c.Title, c.Year, c.Venue, c.DOI, now)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := range citations {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert citation at index %d: %w", i, err)
		}
	}

	return nil
}

// ListByPaper returns the citations for a paper in insertion order.
func (r *PgCitationRepository) ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Citation, error) {
	query := `
		SELECT id, paper_id, citation_text, authors, title, year, venue, doi, created_at
		FROM citations
		WHERE paper_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list citations: %w", err)
	}
	defer rows.Close()

	var citations []*domain.Citation
	for rows.Next() {
		var c domain.Citation
		err := rows.Scan(&c.ID, &c.PaperID, &c.CitationText, &c.Authors, &c.Title, &c.Year, &c.Venue, &c.DOI, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan citation: %w", err)
		}
		citations = append(citations, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating citations: %w", err)
	}

	return citations, nil
}
