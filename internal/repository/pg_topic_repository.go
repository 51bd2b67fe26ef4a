package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// Compile-time interface verification.
var _ TopicRepository = (*PgTopicRepository)(nil)

// PgTopicRepository is a PostgreSQL implementation of TopicRepository.
type PgTopicRepository struct {
	db DBTX
}

// NewPgTopicRepository creates a new PostgreSQL topic repository.
func NewPgTopicRepository(db DBTX) *PgTopicRepository {
	return &PgTopicRepository{db: db}
}

// GetOrCreate returns the topic with the given name, creating it when absent.
func (r *PgTopicRepository) GetOrCreate(ctx context.Context, name string) (*domain.Topic, error) {
	normalized := domain.NormalizeTopicName(name)
	if normalized == "" {
		return nil, domain.NewValidationError("name", "topic name is required")
	}

	topic := domain.NewTopic(name)

	// The no-op update makes RETURNING yield the row on conflict as well,
	// so lookup and creation are a single statement.
	query := `
		INSERT INTO topics (id, name, normalized_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (normalized_name) DO UPDATE SET normalized_name = EXCLUDED.normalized_name
		RETURNING id, name, created_at`

	err := r.db.QueryRow(ctx, query, topic.ID, topic.Name, normalized, time.Now().UTC()).
		Scan(&topic.ID, &topic.Name, &topic.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create topic: %w", err)
	}

	return topic, nil
}

// GetByID retrieves a topic by its UUID.
func (r *PgTopicRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	query := `SELECT id, name, created_at FROM topics WHERE id = $1`

	var topic domain.Topic
	err := r.db.QueryRow(ctx, query, id).Scan(&topic.ID, &topic.Name, &topic.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("topic", id.String())
		}
		return nil, fmt.Errorf("failed to get topic by ID: %w", err)
	}

	return &topic, nil
}

// List returns all topics ordered by name.
func (r *PgTopicRepository) List(ctx context.Context) ([]*domain.Topic, error) {
	query := `SELECT id, name, created_at FROM topics ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []*domain.Topic
	for rows.Next() {
		var topic domain.Topic
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, &topic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}

	return topics, nil
}

// AddPaperToTopic associates a paper with a topic. Idempotent.
func (r *PgTopicRepository) AddPaperToTopic(ctx context.Context, paperID, topicID uuid.UUID) error {
	query := `
		INSERT INTO paper_topics (paper_id, topic_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (paper_id, topic_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, paperID, topicID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.NewNotFoundError("paper or topic",
				fmt.Sprintf("%s/%s", paperID, topicID))
		}
		return fmt.Errorf("failed to associate paper with topic: %w", err)
	}

	return nil
}

// TopicsForPaper returns the topics a paper is associated with.
func (r *PgTopicRepository) TopicsForPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Topic, error) {
	query := `
		SELECT t.id, t.name, t.created_at
		FROM topics t
		INNER JOIN paper_topics pt ON pt.topic_id = t.id
		WHERE pt.paper_id = $1
		ORDER BY t.name`

	rows, err := r.db.Query(ctx, query, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics for paper: %w", err)
	}
	defer rows.Close()

	var topics []*domain.Topic
	for rows.Next() {
		var topic domain.Topic
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, &topic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}

	return topics, nil
}

// SummarizedPapersByTopic returns, per topic, the papers currently holding
// the summarized status.
func (r *PgTopicRepository) SummarizedPapersByTopic(ctx context.Context) (map[uuid.UUID][]*domain.Paper, error) {
	query := `
		SELECT pt.topic_id,
			p.id, p.title, p.abstract, p.authors, p.publication_year, p.doi,
			p.source_url, p.local_path, p.status, p.failure_cause, p.created_at, p.updated_at
		FROM paper_topics pt
		INNER JOIN papers p ON p.id = pt.paper_id
		WHERE p.status = 'summarized'
		ORDER BY pt.topic_id, p.created_at, p.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group summarized papers by topic: %w", err)
	}
	defer rows.Close()

	grouped := make(map[uuid.UUID][]*domain.Paper)
	for rows.Next() {
		var topicID uuid.UUID
		var dest paperScanDest
		scanArgs := append([]interface{}{&topicID}, dest.destinations()...)
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan grouped paper: %w", err)
		}
		paper, err := dest.finalize()
		if err != nil {
			return nil, err
		}
		grouped[topicID] = append(grouped[topicID], paper)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grouped papers: %w", err)
	}

	return grouped, nil
}
