package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// Compile-time interface verification.
var _ SummaryRepository = (*PgSummaryRepository)(nil)

// PgSummaryRepository is a PostgreSQL implementation of SummaryRepository.
type PgSummaryRepository struct {
	db DBTX
}

// NewPgSummaryRepository creates a new PostgreSQL summary repository.
func NewPgSummaryRepository(db DBTX) *PgSummaryRepository {
	return &PgSummaryRepository{db: db}
}

const summaryColumns = `id, summary_type, content, paper_id, topic_id, audio_path, created_at`

// Create persists a summary, replacing any previous content for the same
// owner and type so stage retries stay idempotent.
func (r *PgSummaryRepository) Create(ctx context.Context, summary *domain.Summary) (*domain.Summary, error) {
	if summary == nil {
		return nil, domain.NewValidationError("summary", "summary cannot be nil")
	}
	if err := summary.Validate(); err != nil {
		return nil, err
	}

	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}

	var conflictTarget string
	if summary.PaperID != nil {
		conflictTarget = "(paper_id, summary_type) WHERE paper_id IS NOT NULL"
	} else {
		conflictTarget = "(topic_id, summary_type) WHERE topic_id IS NOT NULL"
	}

	query := fmt.Sprintf(`
		INSERT INTO summaries (id, summary_type, content, paper_id, topic_id, audio_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT %s DO UPDATE SET
			content = EXCLUDED.content,
			audio_path = CASE WHEN EXCLUDED.audio_path <> '' THEN EXCLUDED.audio_path ELSE summaries.audio_path END
		RETURNING id, created_at`, conflictTarget)

	err := r.db.QueryRow(ctx, query,
		summary.ID,
		summary.Type,
		summary.Content,
		summary.PaperID,
		summary.TopicID,
		summary.AudioPath,
		time.Now().UTC(),
	).Scan(&summary.ID, &summary.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.NewNotFoundError("summary owner", ownerRef(summary))
		}
		return nil, fmt.Errorf("failed to create summary: %w", err)
	}

	return summary, nil
}

// GetByID retrieves a summary by its UUID.
func (r *PgSummaryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Summary, error) {
	query := fmt.Sprintf(`SELECT %s FROM summaries WHERE id = $1`, summaryColumns)

	summary, err := scanSummary(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("summary", id.String())
		}
		return nil, fmt.Errorf("failed to get summary by ID: %w", err)
	}

	return summary, nil
}

// GetForPaper retrieves the individual summary owned by a paper.
func (r *PgSummaryRepository) GetForPaper(ctx context.Context, paperID uuid.UUID) (*domain.Summary, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM summaries WHERE paper_id = $1 AND summary_type = $2`, summaryColumns)

	summary, err := scanSummary(r.db.QueryRow(ctx, query, paperID, domain.SummaryTypeIndividual))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("summary", paperID.String())
		}
		return nil, fmt.Errorf("failed to get summary for paper: %w", err)
	}

	return summary, nil
}

// GetForTopic retrieves the synthesis owned by a topic.
func (r *PgSummaryRepository) GetForTopic(ctx context.Context, topicID uuid.UUID) (*domain.Summary, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM summaries WHERE topic_id = $1 AND summary_type = $2`, summaryColumns)

	summary, err := scanSummary(r.db.QueryRow(ctx, query, topicID, domain.SummaryTypeSynthesis))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("synthesis", topicID.String())
		}
		return nil, fmt.Errorf("failed to get synthesis for topic: %w", err)
	}

	return summary, nil
}

// List retrieves summaries matching the filter criteria.
func (r *PgSummaryRepository) List(ctx context.Context, filter SummaryFilter) ([]*domain.Summary, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("summary_type = $%d", argIndex))
		args = append(args, *filter.Type)
		argIndex++
	}

	if filter.TopicID != nil {
		conditions = append(conditions, fmt.Sprintf("topic_id = $%d", argIndex))
		args = append(args, *filter.TopicID)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM summaries
		%s
		ORDER BY created_at, id
		LIMIT $%d OFFSET $%d`,
		summaryColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]*domain.Summary, 0, filter.Limit)
	for rows.Next() {
		summary, err := scanSummaryFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summaries: %w", err)
	}

	return summaries, nil
}

// SetAudioPath records the narration audio file for a summary.
func (r *PgSummaryRepository) SetAudioPath(ctx context.Context, id uuid.UUID, audioPath string) error {
	query := `UPDATE summaries SET audio_path = $2 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, audioPath)
	if err != nil {
		return fmt.Errorf("failed to set audio path: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("summary", id.String())
	}

	return nil
}

// ownerRef renders the owner of a summary for error messages.
func ownerRef(s *domain.Summary) string {
	if s.PaperID != nil {
		return "paper:" + s.PaperID.String()
	}
	if s.TopicID != nil {
		return "topic:" + s.TopicID.String()
	}
	return "unknown"
}

// scanSummary scans a single row into a Summary.
func scanSummary(row pgx.Row) (*domain.Summary, error) {
	var s domain.Summary
	err := row.Scan(&s.ID, &s.Type, &s.Content, &s.PaperID, &s.TopicID, &s.AudioPath, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// scanSummaryFromRows scans the current row from pgx.Rows into a Summary.
func scanSummaryFromRows(rows pgx.Rows) (*domain.Summary, error) {
	var s domain.Summary
	err := rows.Scan(&s.ID, &s.Type, &s.Content, &s.PaperID, &s.TopicID, &s.AudioPath, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
