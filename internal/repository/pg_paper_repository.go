package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// Compile-time interface verification.
var _ PaperRepository = (*PgPaperRepository)(nil)

// PgPaperRepository is a PostgreSQL implementation of PaperRepository.
type PgPaperRepository struct {
	db DBTX
}

// NewPgPaperRepository creates a new PostgreSQL paper repository.
func NewPgPaperRepository(db DBTX) *PgPaperRepository {
	return &PgPaperRepository{db: db}
}

const paperColumns = `id, title, abstract, authors, publication_year, doi,
	source_url, local_path, status, failure_cause, created_at, updated_at`

// Create inserts a new paper, deduplicating on DOI.
func (r *PgPaperRepository) Create(ctx context.Context, paper *domain.Paper) (*domain.Paper, bool, error) {
	if paper == nil {
		return nil, false, domain.NewValidationError("paper", "paper cannot be nil")
	}
	if strings.TrimSpace(paper.Title) == "" {
		return nil, false, domain.NewValidationError("title", "title is required")
	}

	authorsJSON, err := json.Marshal(paper.Authors)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal authors: %w", err)
	}

	now := time.Now().UTC()
	if paper.ID == uuid.Nil {
		paper.ID = uuid.New()
	}
	if paper.Status == "" {
		paper.Status = domain.PaperStatusPending
	}
	paper.DOI = domain.NormalizeDOI(paper.DOI)

	query := `
		INSERT INTO papers (
			id, title, abstract, authors, publication_year, doi,
			source_url, local_path, status, failure_cause, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		ON CONFLICT (doi) WHERE doi IS NOT NULL DO NOTHING
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		paper.ID,
		paper.Title,
		paper.Abstract,
		authorsJSON,
		paper.PublicationYear,
		nullIfEmpty(paper.DOI),
		paper.SourceURL,
		paper.LocalPath,
		paper.Status,
		paper.FailureCause,
		now,
		now,
	).Scan(&paper.ID, &paper.CreatedAt, &paper.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// DOI conflict: the insert was skipped, return the existing
			// record untouched.
			existing, getErr := r.GetByDOI(ctx, paper.DOI)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to load existing paper after DOI conflict: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to insert paper: %w", err)
	}

	return paper, true, nil
}

// GetByID retrieves a paper by its UUID.
func (r *PgPaperRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error) {
	query := fmt.Sprintf(`SELECT %s FROM papers WHERE id = $1`, paperColumns)

	row := r.db.QueryRow(ctx, query, id)
	paper, err := scanPaper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", id.String())
		}
		return nil, fmt.Errorf("failed to get paper by ID: %w", err)
	}

	return paper, nil
}

// GetByDOI retrieves a paper by its normalized DOI.
func (r *PgPaperRepository) GetByDOI(ctx context.Context, doi string) (*domain.Paper, error) {
	doi = domain.NormalizeDOI(doi)
	if doi == "" {
		return nil, domain.NewValidationError("doi", "DOI is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM papers WHERE doi = $1`, paperColumns)

	row := r.db.QueryRow(ctx, query, doi)
	paper, err := scanPaper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", doi)
		}
		return nil, fmt.Errorf("failed to get paper by DOI: %w", err)
	}

	return paper, nil
}

// GetByIDs retrieves multiple papers by UUID.
func (r *PgPaperRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM papers WHERE id = ANY($1) ORDER BY created_at, id`, paperColumns)

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get papers by IDs: %w", err)
	}
	defer rows.Close()

	papers := make([]*domain.Paper, 0, len(ids))
	for rows.Next() {
		paper, err := scanPaperFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, paper)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating papers: %w", err)
	}

	return papers, nil
}

// List retrieves papers matching the filter criteria.
func (r *PgPaperRepository) List(ctx context.Context, filter PaperFilter) ([]*domain.Paper, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.TopicID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM paper_topics pt WHERE pt.paper_id = p.id AND pt.topic_id = $%d)", argIndex))
		args = append(args, *filter.TopicID)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM papers p %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count papers: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT p.id, p.title, p.abstract, p.authors, p.publication_year, p.doi,
			p.source_url, p.local_path, p.status, p.failure_cause, p.created_at, p.updated_at
		FROM papers p
		%s
		ORDER BY p.created_at, p.id
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list papers: %w", err)
	}
	defer rows.Close()

	papers := make([]*domain.Paper, 0, filter.Limit)
	for rows.Next() {
		paper, err := scanPaperFromRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, paper)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating papers: %w", err)
	}

	return papers, totalCount, nil
}

// AdvanceStatus moves a paper to the given status, guarded against
// regressions. The guard lives in the WHERE clause so concurrent stage
// completions race safely at the database.
func (r *PgPaperRepository) AdvanceStatus(ctx context.Context, id uuid.UUID, next domain.PaperStatus) error {
	if next.Rank() < 0 {
		return domain.NewValidationError("status", "unknown paper status")
	}
	if next == domain.PaperStatusFailed {
		return domain.NewValidationError("status", "use MarkFailed to fail a paper")
	}

	allowed := priorStatuses(next)

	query := `
		UPDATE papers
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4::paper_status[])`

	result, err := r.db.Exec(ctx, query, id, next, time.Now().UTC(), allowed)
	if err != nil {
		return fmt.Errorf("failed to advance paper status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var current domain.PaperStatus
		err := r.db.QueryRow(ctx, `SELECT status FROM papers WHERE id = $1`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NewNotFoundError("paper", id.String())
			}
			return fmt.Errorf("failed to check paper status: %w", err)
		}
		return fmt.Errorf("%w: paper %s is %s, cannot move to %s",
			domain.ErrStatusRegression, id, current, next)
	}

	return nil
}

// MarkFailed moves a paper to the failed terminal status.
func (r *PgPaperRepository) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	query := `
		UPDATE papers
		SET status = 'failed', failure_cause = $2, updated_at = $3
		WHERE id = $1 AND status <> 'failed'`

	result, err := r.db.Exec(ctx, query, id, cause, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark paper failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		var current domain.PaperStatus
		err := r.db.QueryRow(ctx, `SELECT status FROM papers WHERE id = $1`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NewNotFoundError("paper", id.String())
			}
			return fmt.Errorf("failed to check paper status: %w", err)
		}
		// Already failed, keep the first recorded cause.
		return nil
	}

	return nil
}

// UpdateLocalPath records the filesystem location of the fetched document.
func (r *PgPaperRepository) UpdateLocalPath(ctx context.Context, id uuid.UUID, localPath string) error {
	query := `
		UPDATE papers
		SET local_path = $2, updated_at = $3
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, localPath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update local path: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("paper", id.String())
	}

	return nil
}

// priorStatuses returns the statuses a paper may hold for a transition to
// next to be a strict advance. Failed is terminal and never included.
func priorStatuses(next domain.PaperStatus) []string {
	all := []domain.PaperStatus{
		domain.PaperStatusPending,
		domain.PaperStatusProcessing,
		domain.PaperStatusProcessed,
		domain.PaperStatusClassified,
		domain.PaperStatusSummarized,
	}
	prior := make([]string, 0, len(all))
	for _, s := range all {
		if s.Rank() < next.Rank() {
			prior = append(prior, string(s))
		}
	}
	return prior
}

// nullIfEmpty converts an empty string to a SQL NULL.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// paperScanDest holds the destination pointers for scanning a Paper row.
type paperScanDest struct {
	paper       domain.Paper
	authorsJSON []byte
	doi         *string
}

// destinations returns the slice of pointers for Scan operations.
func (d *paperScanDest) destinations() []interface{} {
	return []interface{}{
		&d.paper.ID, &d.paper.Title, &d.paper.Abstract, &d.authorsJSON,
		&d.paper.PublicationYear, &d.doi, &d.paper.SourceURL, &d.paper.LocalPath,
		&d.paper.Status, &d.paper.FailureCause, &d.paper.CreatedAt, &d.paper.UpdatedAt,
	}
}

// finalize performs post-scan processing: unmarshals JSON and resolves NULLs.
func (d *paperScanDest) finalize() (*domain.Paper, error) {
	if len(d.authorsJSON) > 0 {
		if err := json.Unmarshal(d.authorsJSON, &d.paper.Authors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal authors: %w", err)
		}
	}
	if d.doi != nil {
		d.paper.DOI = *d.doi
	}
	return &d.paper, nil
}

// scanPaper scans a single row into a Paper.
func scanPaper(row pgx.Row) (*domain.Paper, error) {
	var dest paperScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}

// scanPaperFromRows scans the current row from pgx.Rows into a Paper.
func scanPaperFromRows(rows pgx.Rows) (*domain.Paper, error) {
	var dest paperScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}
