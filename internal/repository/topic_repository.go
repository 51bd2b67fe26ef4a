package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// TopicRepository manages the topic taxonomy and paper-topic associations.
type TopicRepository interface {
	// GetOrCreate returns the topic with the given name, creating it when
	// absent. Matching is case-insensitive on the normalized name, so
	// "Health Policy" and "health policy" resolve to the same topic.
	// Returns domain.ErrInvalidInput for an empty name.
	GetOrCreate(ctx context.Context, name string) (*domain.Topic, error)

	// GetByID retrieves a topic by its UUID.
	// Returns domain.ErrNotFound if no matching topic exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error)

	// List returns all topics ordered by name.
	List(ctx context.Context) ([]*domain.Topic, error)

	// AddPaperToTopic associates a paper with a topic. Adding an existing
	// association is a no-op.
	// Returns domain.ErrNotFound if the paper or topic does not exist.
	AddPaperToTopic(ctx context.Context, paperID, topicID uuid.UUID) error

	// TopicsForPaper returns the topics a paper is associated with,
	// ordered by name.
	TopicsForPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Topic, error)

	// SummarizedPapersByTopic returns, for every topic, the papers in that
	// topic that currently hold the summarized status, ordered by paper
	// creation time. Topics without summarized papers are omitted.
	SummarizedPapersByTopic(ctx context.Context) (map[uuid.UUID][]*domain.Paper, error)
}
