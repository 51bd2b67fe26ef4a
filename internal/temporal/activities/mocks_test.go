package activities

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/extract"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/llm"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/papersources"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/tts"
)

// ---------------------------------------------------------------------------
// Mock: PaperRepository
// ---------------------------------------------------------------------------

type mockPaperRepository struct {
	mock.Mock
}

var _ repository.PaperRepository = (*mockPaperRepository)(nil)

func (m *mockPaperRepository) Create(ctx context.Context, paper *domain.Paper) (*domain.Paper, bool, error) {
	args := m.Called(ctx, paper)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Paper), args.Bool(1), args.Error(2)
}

func (m *mockPaperRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Paper), args.Error(1)
}

func (m *mockPaperRepository) GetByDOI(ctx context.Context, doi string) (*domain.Paper, error) {
	args := m.Called(ctx, doi)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Paper), args.Error(1)
}

func (m *mockPaperRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Paper, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Paper), args.Error(1)
}

func (m *mockPaperRepository) List(ctx context.Context, filter repository.PaperFilter) ([]*domain.Paper, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Paper), args.Get(1).(int64), args.Error(2)
}

func (m *mockPaperRepository) AdvanceStatus(ctx context.Context, id uuid.UUID, next domain.PaperStatus) error {
	args := m.Called(ctx, id, next)
	return args.Error(0)
}

func (m *mockPaperRepository) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	args := m.Called(ctx, id, cause)
	return args.Error(0)
}

func (m *mockPaperRepository) UpdateLocalPath(ctx context.Context, id uuid.UUID, localPath string) error {
	args := m.Called(ctx, id, localPath)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// Mock: TopicRepository
// ---------------------------------------------------------------------------

type mockTopicRepository struct {
	mock.Mock
}

var _ repository.TopicRepository = (*mockTopicRepository)(nil)

func (m *mockTopicRepository) GetOrCreate(ctx context.Context, name string) (*domain.Topic, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Topic), args.Error(1)
}

func (m *mockTopicRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Topic), args.Error(1)
}

func (m *mockTopicRepository) List(ctx context.Context) ([]*domain.Topic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Topic), args.Error(1)
}

func (m *mockTopicRepository) AddPaperToTopic(ctx context.Context, paperID, topicID uuid.UUID) error {
	args := m.Called(ctx, paperID, topicID)
	return args.Error(0)
}

func (m *mockTopicRepository) TopicsForPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Topic, error) {
	args := m.Called(ctx, paperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Topic), args.Error(1)
}

func (m *mockTopicRepository) SummarizedPapersByTopic(ctx context.Context) (map[uuid.UUID][]*domain.Paper, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]*domain.Paper), args.Error(1)
}

// ---------------------------------------------------------------------------
// Mock: SummaryRepository
// ---------------------------------------------------------------------------

type mockSummaryRepository struct {
	mock.Mock
}

var _ repository.SummaryRepository = (*mockSummaryRepository)(nil)

func (m *mockSummaryRepository) Create(ctx context.Context, summary *domain.Summary) (*domain.Summary, error) {
	args := m.Called(ctx, summary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *mockSummaryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Summary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *mockSummaryRepository) GetForPaper(ctx context.Context, paperID uuid.UUID) (*domain.Summary, error) {
	args := m.Called(ctx, paperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *mockSummaryRepository) GetForTopic(ctx context.Context, topicID uuid.UUID) (*domain.Summary, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *mockSummaryRepository) List(ctx context.Context, filter repository.SummaryFilter) ([]*domain.Summary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Summary), args.Error(1)
}

func (m *mockSummaryRepository) SetAudioPath(ctx context.Context, id uuid.UUID, audioPath string) error {
	args := m.Called(ctx, id, audioPath)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// Mock: ExtractedDataRepository
// ---------------------------------------------------------------------------

type mockExtractedDataRepository struct {
	mock.Mock
}

var _ repository.ExtractedDataRepository = (*mockExtractedDataRepository)(nil)

func (m *mockExtractedDataRepository) Upsert(ctx context.Context, data *domain.ExtractedData) (*domain.ExtractedData, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedData), args.Error(1)
}

func (m *mockExtractedDataRepository) GetByPaperID(ctx context.Context, paperID uuid.UUID) (*domain.ExtractedData, error) {
	args := m.Called(ctx, paperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedData), args.Error(1)
}

// ---------------------------------------------------------------------------
// Mock: CitationRepository
// ---------------------------------------------------------------------------

type mockCitationRepository struct {
	mock.Mock
}

var _ repository.CitationRepository = (*mockCitationRepository)(nil)

func (m *mockCitationRepository) ReplaceForPaper(ctx context.Context, paperID uuid.UUID, citations []*domain.Citation) error {
	args := m.Called(ctx, paperID, citations)
	return args.Error(0)
}

func (m *mockCitationRepository) ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Citation, error) {
	args := m.Called(ctx, paperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Citation), args.Error(1)
}

// ---------------------------------------------------------------------------
// Mock: PipelineStore
// ---------------------------------------------------------------------------

type mockPipelineStore struct {
	mock.Mock
}

var _ PipelineStore = (*mockPipelineStore)(nil)

func (m *mockPipelineStore) SaveExtractionResult(ctx context.Context, data *domain.ExtractedData, citation *domain.Citation) error {
	args := m.Called(ctx, data, citation)
	return args.Error(0)
}

func (m *mockPipelineStore) SaveClassification(ctx context.Context, paperID uuid.UUID, topicNames []string) ([]uuid.UUID, error) {
	args := m.Called(ctx, paperID, topicNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *mockPipelineStore) SaveIndividualSummary(ctx context.Context, summary *domain.Summary) (*domain.Summary, error) {
	args := m.Called(ctx, summary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *mockPipelineStore) SaveSynthesis(ctx context.Context, summary *domain.Summary) (*domain.Summary, error) {
	args := m.Called(ctx, summary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

// ---------------------------------------------------------------------------
// Mock: PaperSearcher
// ---------------------------------------------------------------------------

type mockPaperSearcher struct {
	mock.Mock
}

var _ PaperSearcher = (*mockPaperSearcher)(nil)

func (m *mockPaperSearcher) SearchAll(ctx context.Context, params papersources.SearchParams) []papersources.SourceResult {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]papersources.SourceResult)
}

// ---------------------------------------------------------------------------
// Mock: PaperExtractor
// ---------------------------------------------------------------------------

type mockPaperExtractor struct {
	mock.Mock
}

var _ PaperExtractor = (*mockPaperExtractor)(nil)

func (m *mockPaperExtractor) FromFile(path string) (*extract.Result, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.Result), args.Error(1)
}

func (m *mockPaperExtractor) FromURL(ctx context.Context, rawURL string) (*extract.Result, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.Result), args.Error(1)
}

func (m *mockPaperExtractor) FromDOI(ctx context.Context, doi string) (*extract.Result, error) {
	args := m.Called(ctx, doi)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.Result), args.Error(1)
}

// ---------------------------------------------------------------------------
// Mock: llm.Generator
// ---------------------------------------------------------------------------

type mockGenerator struct {
	mock.Mock
}

var _ llm.Generator = (*mockGenerator)(nil)

func (m *mockGenerator) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Result), args.Error(1)
}

func (m *mockGenerator) Provider() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockGenerator) Model() string {
	args := m.Called()
	return args.String(0)
}

// ---------------------------------------------------------------------------
// Mock: tts.Synthesizer
// ---------------------------------------------------------------------------

type mockSynthesizer struct {
	mock.Mock
}

var _ tts.Synthesizer = (*mockSynthesizer)(nil)

func (m *mockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockSynthesizer) Provider() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockSynthesizer) FileExtension() string {
	args := m.Called()
	return args.String(0)
}
