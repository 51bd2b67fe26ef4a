package activities

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/database"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
)

// PipelineStore groups the multi-write persistence operations the stage
// activities need. Each method runs its writes in a single transaction so a
// stage either records its full result and the status advance, or nothing.
// Status regressions inside a store method are swallowed: a retried stage
// re-writing an artifact for an already advanced paper is a success.
type PipelineStore interface {
	// SaveExtractionResult persists the extraction artifact and citation
	// for a paper and advances it to processed.
	SaveExtractionResult(ctx context.Context, data *domain.ExtractedData, citation *domain.Citation) error

	// SaveClassification associates a paper with the named topics
	// (creating missing topics) and advances it to classified. An empty
	// topic list records a no-match classification: the paper advances
	// with zero associations. Returns the association topic IDs in input
	// order.
	SaveClassification(ctx context.Context, paperID uuid.UUID, topicNames []string) ([]uuid.UUID, error)

	// SaveIndividualSummary persists an individual summary and advances
	// the owning paper to summarized.
	SaveIndividualSummary(ctx context.Context, summary *domain.Summary) (*domain.Summary, error)

	// SaveSynthesis persists a cross-topic synthesis summary.
	SaveSynthesis(ctx context.Context, summary *domain.Summary) (*domain.Summary, error)
}

// PgPipelineStore implements PipelineStore on a pgx connection pool using
// database.DB.WithTransaction for atomicity.
type PgPipelineStore struct {
	db *database.DB
}

var _ PipelineStore = (*PgPipelineStore)(nil)

// NewPgPipelineStore creates a PipelineStore backed by the given database.
func NewPgPipelineStore(db *database.DB) *PgPipelineStore {
	return &PgPipelineStore{db: db}
}

// advance moves a paper forward, treating a regression as an idempotent
// no-op so retried stages do not fail against already advanced papers.
func advance(ctx context.Context, papers repository.PaperRepository, paperID uuid.UUID, next domain.PaperStatus) error {
	err := papers.AdvanceStatus(ctx, paperID, next)
	if err != nil && !errors.Is(err, domain.ErrStatusRegression) {
		return err
	}
	return nil
}

// SaveExtractionResult persists the artifact and citation and advances the
// paper to processed in one transaction.
func (s *PgPipelineStore) SaveExtractionResult(ctx context.Context, data *domain.ExtractedData, citation *domain.Citation) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := repository.NewPgExtractedDataRepository(tx).Upsert(ctx, data); err != nil {
			return fmt.Errorf("upsert extracted data: %w", err)
		}
		if citation != nil {
			citations := repository.NewPgCitationRepository(tx)
			if err := citations.ReplaceForPaper(ctx, data.PaperID, []*domain.Citation{citation}); err != nil {
				return fmt.Errorf("replace citation: %w", err)
			}
		}
		return advance(ctx, repository.NewPgPaperRepository(tx), data.PaperID, domain.PaperStatusProcessed)
	})
}

// SaveClassification creates missing topics, records the associations, and
// advances the paper to classified in one transaction.
func (s *PgPipelineStore) SaveClassification(ctx context.Context, paperID uuid.UUID, topicNames []string) ([]uuid.UUID, error) {
	var topicIDs []uuid.UUID

	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		topics := repository.NewPgTopicRepository(tx)
		for _, name := range topicNames {
			topic, err := topics.GetOrCreate(ctx, name)
			if err != nil {
				return fmt.Errorf("get or create topic %q: %w", name, err)
			}
			if err := topics.AddPaperToTopic(ctx, paperID, topic.ID); err != nil {
				return fmt.Errorf("associate paper with topic %q: %w", name, err)
			}
			topicIDs = append(topicIDs, topic.ID)
		}
		return advance(ctx, repository.NewPgPaperRepository(tx), paperID, domain.PaperStatusClassified)
	})
	if err != nil {
		return nil, err
	}

	return topicIDs, nil
}

// SaveIndividualSummary persists the summary and advances the owning paper
// to summarized in one transaction.
func (s *PgPipelineStore) SaveIndividualSummary(ctx context.Context, summary *domain.Summary) (*domain.Summary, error) {
	if summary.Type != domain.SummaryTypeIndividual || summary.PaperID == nil {
		return nil, domain.NewValidationError("summary", "individual summary must reference exactly one paper")
	}

	var saved *domain.Summary
	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		saved, err = repository.NewPgSummaryRepository(tx).Create(ctx, summary)
		if err != nil {
			return fmt.Errorf("create summary: %w", err)
		}
		return advance(ctx, repository.NewPgPaperRepository(tx), *summary.PaperID, domain.PaperStatusSummarized)
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// SaveSynthesis persists a cross-topic synthesis summary. Topics carry no
// pipeline status, so this is a single write.
func (s *PgPipelineStore) SaveSynthesis(ctx context.Context, summary *domain.Summary) (*domain.Summary, error) {
	if summary.Type != domain.SummaryTypeSynthesis || summary.TopicID == nil {
		return nil, domain.NewValidationError("summary", "synthesis summary must reference exactly one topic")
	}

	var saved *domain.Summary
	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		saved, err = repository.NewPgSummaryRepository(tx).Create(ctx, summary)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create synthesis: %w", err)
	}

	return saved, nil
}
