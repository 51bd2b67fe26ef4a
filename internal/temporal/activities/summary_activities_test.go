package activities

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/events"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/llm"
)

func TestSummarizePaper_FromExtractedText(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	paperRepo := &mockPaperRepository{}
	extractedRepo := &mockExtractedDataRepository{}
	store := &mockPipelineStore{}
	generator := &mockGenerator{}

	textPath := filepath.Join(t.TempDir(), "paper.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Full extracted body of the paper."), 0o644))

	pipelineID := uuid.New()
	paperID := uuid.New()
	summaryID := uuid.New()

	paperRepo.On("GetByID", mock.Anything, paperID).Return(&domain.Paper{
		ID:    paperID,
		Title: "Attention Is All You Need",
	}, nil)
	extractedRepo.On("GetByPaperID", mock.Anything, paperID).Return(&domain.ExtractedData{
		PaperID:      paperID,
		FullTextPath: textPath,
	}, nil)
	generator.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.Contains(req.Prompt, "Full extracted body of the paper.")
	})).Return(&llm.Result{
		Content:      "The paper introduces the Transformer.",
		Model:        "gpt-4o-mini",
		InputTokens:  120,
		OutputTokens: 40,
	}, nil)
	store.On("SaveIndividualSummary", mock.Anything, mock.MatchedBy(func(s *domain.Summary) bool {
		return s.Type == domain.SummaryTypeIndividual &&
			s.PaperID != nil && *s.PaperID == paperID &&
			s.Content == "The paper introduces the Transformer."
	})).Return(&domain.Summary{ID: summaryID, Type: domain.SummaryTypeIndividual}, nil)

	act := NewSummaryActivities(paperRepo, extractedRepo, &mockCitationRepository{}, store,
		generator, events.NewNopPublisher(), nil)
	env.RegisterActivity(act.SummarizePaper)

	result, err := env.ExecuteActivity(act.SummarizePaper, SummarizePaperInput{
		PipelineID: pipelineID,
		PaperID:    paperID,
	})
	require.NoError(t, err)

	var output SummarizePaperOutput
	require.NoError(t, result.Get(&output))

	assert.Equal(t, summaryID, output.SummaryID)
	assert.Equal(t, "gpt-4o-mini", output.Model)
	assert.Equal(t, 120, output.InputTokens)
	assert.Equal(t, 40, output.OutputTokens)
	store.AssertExpectations(t)
}

func TestSummarizePaper_MissingTextFileFallsBackToAbstract(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	paperRepo := &mockPaperRepository{}
	extractedRepo := &mockExtractedDataRepository{}
	store := &mockPipelineStore{}
	generator := &mockGenerator{}

	paperID := uuid.New()
	paperRepo.On("GetByID", mock.Anything, paperID).Return(&domain.Paper{
		ID:       paperID,
		Title:    "Lost Text Paper",
		Abstract: "Abstract survives even when the text file is gone.",
	}, nil)
	extractedRepo.On("GetByPaperID", mock.Anything, paperID).Return(&domain.ExtractedData{
		PaperID:      paperID,
		FullTextPath: "/nonexistent/path.txt",
	}, nil)
	generator.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.Contains(req.Prompt, "Abstract survives")
	})).Return(&llm.Result{Content: "Summary.", Model: "gpt-4o-mini"}, nil)
	store.On("SaveIndividualSummary", mock.Anything, mock.Anything).
		Return(&domain.Summary{ID: uuid.New()}, nil)

	act := NewSummaryActivities(paperRepo, extractedRepo, &mockCitationRepository{}, store,
		generator, events.NewNopPublisher(), nil)
	env.RegisterActivity(act.SummarizePaper)

	_, err := env.ExecuteActivity(act.SummarizePaper, SummarizePaperInput{
		PipelineID: uuid.New(),
		PaperID:    paperID,
	})
	require.NoError(t, err)
	generator.AssertExpectations(t)
}

func TestSummarizePaper_EmptyContentIsAnError(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	paperRepo := &mockPaperRepository{}
	extractedRepo := &mockExtractedDataRepository{}
	generator := &mockGenerator{}

	textPath := filepath.Join(t.TempDir(), "paper.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("body"), 0o644))

	paperID := uuid.New()
	paperRepo.On("GetByID", mock.Anything, paperID).Return(&domain.Paper{ID: paperID, Title: "T"}, nil)
	extractedRepo.On("GetByPaperID", mock.Anything, paperID).Return(&domain.ExtractedData{
		PaperID:      paperID,
		FullTextPath: textPath,
	}, nil)
	generator.On("Generate", mock.Anything, mock.Anything).
		Return(&llm.Result{Content: "", Model: "gpt-4o-mini"}, nil)

	act := NewSummaryActivities(paperRepo, extractedRepo, &mockCitationRepository{}, &mockPipelineStore{},
		generator, events.NewNopPublisher(), nil)
	env.RegisterActivity(act.SummarizePaper)

	_, err := env.ExecuteActivity(act.SummarizePaper, SummarizePaperInput{
		PipelineID: uuid.New(),
		PaperID:    paperID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
}

func TestSynthesizeTopic_AppendsReferences(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	citationRepo := &mockCitationRepository{}
	store := &mockPipelineStore{}
	generator := &mockGenerator{}

	pipelineID := uuid.New()
	topicID := uuid.New()
	paperA := uuid.New()
	paperB := uuid.New()
	synthID := uuid.New()

	generator.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.Contains(req.Prompt, "machine learning") &&
			strings.Contains(req.Prompt, "Summary of paper A") &&
			strings.Contains(req.Prompt, "Summary of paper B")
	})).Return(&llm.Result{Content: "Common themes across both papers.", Model: "gpt-4o"}, nil)

	citationRepo.On("ListByPaper", mock.Anything, paperA).Return([]*domain.Citation{
		{PaperID: paperA, CitationText: "He, K. (2016). Deep Residual Learning."},
	}, nil)
	citationRepo.On("ListByPaper", mock.Anything, paperB).Return([]*domain.Citation{
		{PaperID: paperB, CitationText: "Vaswani, A. (2017). Attention Is All You Need."},
	}, nil)

	store.On("SaveSynthesis", mock.Anything, mock.MatchedBy(func(s *domain.Summary) bool {
		return s.Type == domain.SummaryTypeSynthesis &&
			s.TopicID != nil && *s.TopicID == topicID &&
			strings.Contains(s.Content, "Common themes across both papers.") &&
			strings.Contains(s.Content, "References:") &&
			strings.Contains(s.Content, "Deep Residual Learning") &&
			strings.Contains(s.Content, "Attention Is All You Need")
	})).Return(&domain.Summary{ID: synthID, Type: domain.SummaryTypeSynthesis}, nil)

	act := NewSummaryActivities(&mockPaperRepository{}, &mockExtractedDataRepository{}, citationRepo,
		store, generator, events.NewNopPublisher(), nil)
	env.RegisterActivity(act.SynthesizeTopic)

	result, err := env.ExecuteActivity(act.SynthesizeTopic, SynthesizeTopicInput{
		PipelineID: pipelineID,
		TopicID:    topicID,
		TopicName:  "machine learning",
		Summaries: []PaperSummary{
			{PaperID: paperA, Title: "ResNet", Content: "Summary of paper A"},
			{PaperID: paperB, Title: "Transformer", Content: "Summary of paper B"},
		},
	})
	require.NoError(t, err)

	var output SynthesizeTopicOutput
	require.NoError(t, result.Get(&output))

	assert.Equal(t, synthID, output.SummaryID)
	assert.Equal(t, 2, output.PaperCount)
	store.AssertExpectations(t)
}

func TestSynthesizeTopic_RejectsSingleContributor(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	act := NewSummaryActivities(&mockPaperRepository{}, &mockExtractedDataRepository{},
		&mockCitationRepository{}, &mockPipelineStore{}, &mockGenerator{},
		events.NewNopPublisher(), nil)
	env.RegisterActivity(act.SynthesizeTopic)

	_, err := env.ExecuteActivity(act.SynthesizeTopic, SynthesizeTopicInput{
		PipelineID: uuid.New(),
		TopicID:    uuid.New(),
		TopicName:  "machine learning",
		Summaries: []PaperSummary{
			{PaperID: uuid.New(), Content: "Only one summary"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 summarized papers")
}

func TestSynthesizeTopic_CitationLookupFailureOmitsReferences(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	citationRepo := &mockCitationRepository{}
	store := &mockPipelineStore{}
	generator := &mockGenerator{}

	topicID := uuid.New()
	paperA := uuid.New()
	paperB := uuid.New()

	generator.On("Generate", mock.Anything, mock.Anything).
		Return(&llm.Result{Content: "Synthesis body.", Model: "gpt-4o"}, nil)
	citationRepo.On("ListByPaper", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))
	store.On("SaveSynthesis", mock.Anything, mock.MatchedBy(func(s *domain.Summary) bool {
		return s.Content == "Synthesis body."
	})).Return(&domain.Summary{ID: uuid.New()}, nil)

	act := NewSummaryActivities(&mockPaperRepository{}, &mockExtractedDataRepository{}, citationRepo,
		store, generator, events.NewNopPublisher(), nil)
	env.RegisterActivity(act.SynthesizeTopic)

	_, err := env.ExecuteActivity(act.SynthesizeTopic, SynthesizeTopicInput{
		PipelineID: uuid.New(),
		TopicID:    topicID,
		TopicName:  "biology",
		Summaries: []PaperSummary{
			{PaperID: paperA, Content: "A"},
			{PaperID: paperB, Content: "B"},
		},
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}
