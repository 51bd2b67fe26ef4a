package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
)

// Helper to create a valid paper for testing.
func newTestPaper() *domain.Paper {
	now := time.Now().UTC()
	return &domain.Paper{
		ID:       uuid.New(),
		Title:    "Deep Residual Learning for Image Recognition",
		Abstract: "We present a residual learning framework.",
		Authors: []domain.Author{
			{Name: "Kaiming He", Affiliation: "Microsoft Research"},
			{Name: "Xiangyu Zhang"},
		},
		PublicationYear: 2016,
		DOI:             "10.1109/cvpr.2016.90",
		SourceURL:       "https://example.com/resnet.pdf",
		Status:          domain.PaperStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func paperRows(paper *domain.Paper) *pgxmock.Rows {
	authorsJSON, _ := json.Marshal(paper.Authors)
	doi := &paper.DOI
	if paper.DOI == "" {
		doi = nil
	}
	return pgxmock.NewRows([]string{
		"id", "title", "abstract", "authors", "publication_year", "doi",
		"source_url", "local_path", "status", "failure_cause", "created_at", "updated_at",
	}).AddRow(
		paper.ID, paper.Title, paper.Abstract, authorsJSON, paper.PublicationYear, doi,
		paper.SourceURL, paper.LocalPath, paper.Status, paper.FailureCause, paper.CreatedAt, paper.UpdatedAt,
	)
}

func TestNewPgPaperRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgPaperRepository(mock)
	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

func TestPgPaperRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates paper successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		paper := newTestPaper()

		mock.ExpectQuery("INSERT INTO papers").
			WithArgs(
				pgxmock.AnyArg(), paper.Title, paper.Abstract, pgxmock.AnyArg(),
				paper.PublicationYear, paper.DOI, paper.SourceURL, paper.LocalPath,
				paper.Status, paper.FailureCause, pgxmock.AnyArg(), pgxmock.AnyArg(),
			).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(paper.ID, paper.CreatedAt, paper.UpdatedAt))

		result, created, err := repo.Create(ctx, paper)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, paper.ID, result.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns existing paper on DOI conflict", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		existing := newTestPaper()
		duplicate := newTestPaper()
		duplicate.ID = uuid.New()
		duplicate.Title = "Different Title, Same DOI"

		// The insert is skipped, then the existing record is loaded.
		mock.ExpectQuery("INSERT INTO papers").
			WithArgs(
				pgxmock.AnyArg(), duplicate.Title, duplicate.Abstract, pgxmock.AnyArg(),
				duplicate.PublicationYear, duplicate.DOI, duplicate.SourceURL, duplicate.LocalPath,
				duplicate.Status, duplicate.FailureCause, pgxmock.AnyArg(), pgxmock.AnyArg(),
			).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}))
		mock.ExpectQuery("SELECT (.+) FROM papers WHERE doi").
			WithArgs(duplicate.DOI).
			WillReturnRows(paperRows(existing))

		result, created, err := repo.Create(ctx, duplicate)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, result.ID)
		assert.Equal(t, existing.Title, result.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns validation error for nil paper", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		result, created, err := repo.Create(ctx, nil)

		assert.Nil(t, result)
		assert.False(t, created)
		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})

	t.Run("returns validation error for missing title", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		paper := newTestPaper()
		paper.Title = "   "

		result, created, err := repo.Create(ctx, paper)

		assert.Nil(t, result)
		assert.False(t, created)
		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "title", validationErr.Field)
	})
}

func TestPgPaperRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns paper when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		paper := newTestPaper()

		mock.ExpectQuery("SELECT (.+) FROM papers WHERE id").
			WithArgs(paper.ID).
			WillReturnRows(paperRows(paper))

		result, err := repo.GetByID(ctx, paper.ID)
		require.NoError(t, err)
		assert.Equal(t, paper.ID, result.ID)
		assert.Equal(t, paper.DOI, result.DOI)
		assert.Len(t, result.Authors, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		id := uuid.New()

		mock.ExpectQuery("SELECT (.+) FROM papers WHERE id").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "title", "abstract", "authors", "publication_year", "doi",
				"source_url", "local_path", "status", "failure_cause", "created_at", "updated_at",
			}))

		result, err := repo.GetByID(ctx, id)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgPaperRepository_AdvanceStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("advances status forward", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		id := uuid.New()

		mock.ExpectExec("UPDATE papers").
			WithArgs(id, domain.PaperStatusProcessed, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.AdvanceStatus(ctx, id, domain.PaperStatusProcessed)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects regression from a later status", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		id := uuid.New()

		mock.ExpectExec("UPDATE papers").
			WithArgs(id, domain.PaperStatusProcessed, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT status FROM papers").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(domain.PaperStatusSummarized))

		err = repo.AdvanceStatus(ctx, id, domain.PaperStatusProcessed)
		assert.ErrorIs(t, err, domain.ErrStatusRegression)
	})

	t.Run("rejects advance out of failed", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		id := uuid.New()

		mock.ExpectExec("UPDATE papers").
			WithArgs(id, domain.PaperStatusSummarized, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT status FROM papers").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(domain.PaperStatusFailed))

		err = repo.AdvanceStatus(ctx, id, domain.PaperStatusSummarized)
		assert.ErrorIs(t, err, domain.ErrStatusRegression)
	})

	t.Run("returns not found for missing paper", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		id := uuid.New()

		mock.ExpectExec("UPDATE papers").
			WithArgs(id, domain.PaperStatusProcessing, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT status FROM papers").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"status"}))

		err = repo.AdvanceStatus(ctx, id, domain.PaperStatusProcessing)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rejects failed as target", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)

		err = repo.AdvanceStatus(ctx, uuid.New(), domain.PaperStatusFailed)
		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})
}

func TestPgPaperRepository_MarkFailed(t *testing.T) {
	ctx := context.Background()

	t.Run("marks paper failed with cause", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		id := uuid.New()

		mock.ExpectExec("UPDATE papers").
			WithArgs(id, "extraction failed after 4 attempts", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.MarkFailed(ctx, id, "extraction failed after 4 attempts")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("is a no-op when already failed", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		id := uuid.New()

		mock.ExpectExec("UPDATE papers").
			WithArgs(id, "second cause", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT status FROM papers").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(domain.PaperStatusFailed))

		err = repo.MarkFailed(ctx, id, "second cause")
		assert.NoError(t, err)
	})
}

func TestPgPaperRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("lists papers filtered by status", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPaperRepository(mock)
		paper := newTestPaper()
		status := domain.PaperStatusPending

		mock.ExpectQuery("SELECT COUNT").
			WithArgs(status).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery("SELECT p.id").
			WithArgs(status, 100, 0).
			WillReturnRows(paperRows(paper))

		papers, total, err := repo.List(ctx, PaperFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, papers, 1)
		assert.Equal(t, paper.ID, papers[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
