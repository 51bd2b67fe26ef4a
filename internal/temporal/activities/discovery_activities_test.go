package activities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/papersources"
)

func TestSearchPapers_MergesAndDeduplicatesAcrossSources(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	registry := &mockPaperSearcher{}
	registry.On("SearchAll", mock.Anything, mock.MatchedBy(func(p papersources.SearchParams) bool {
		return p.Query == "transformer architectures" && p.MaxResults == 10
	})).Return([]papersources.SourceResult{
		{
			Source: "arxiv",
			Result: &papersources.SearchResult{Papers: []*domain.Paper{
				{Title: "Attention Is All You Need", DOI: "10.1000/attn"},
				{Title: "BERT"},
			}},
		},
		{
			Source: "semantic_scholar",
			Result: &papersources.SearchResult{Papers: []*domain.Paper{
				// Same DOI as the arxiv hit, different casing.
				{Title: "Attention Is All You Need (mirror)", DOI: "10.1000/ATTN"},
				{Title: "GPT-3", DOI: "10.1000/gpt3"},
			}},
		},
	})

	act := NewDiscoveryActivities(registry, nil)
	env.RegisterActivity(act.SearchPapers)

	result, err := env.ExecuteActivity(act.SearchPapers, SearchPapersInput{
		Query:      "transformer architectures",
		MaxResults: 10,
	})
	require.NoError(t, err)

	var output SearchPapersOutput
	require.NoError(t, result.Get(&output))

	assert.Equal(t, 3, output.TotalFound)
	assert.Len(t, output.Papers, 3)
	assert.Equal(t, 2, output.BySource["arxiv"])
	assert.Equal(t, 2, output.BySource["semantic_scholar"])
	assert.Empty(t, output.Errors)
}

func TestSearchPapers_PartialFailureStillSucceeds(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	registry := &mockPaperSearcher{}
	registry.On("SearchAll", mock.Anything, mock.Anything).Return([]papersources.SourceResult{
		{
			Source: "arxiv",
			Result: &papersources.SearchResult{Papers: []*domain.Paper{
				{Title: "Attention Is All You Need"},
			}},
		},
		{
			Source: "semantic_scholar",
			Error:  errors.New("429 Too Many Requests"),
		},
	})

	act := NewDiscoveryActivities(registry, nil)
	env.RegisterActivity(act.SearchPapers)

	result, err := env.ExecuteActivity(act.SearchPapers, SearchPapersInput{Query: "attention"})
	require.NoError(t, err)

	var output SearchPapersOutput
	require.NoError(t, result.Get(&output))

	assert.Equal(t, 1, output.TotalFound)
	require.Len(t, output.Errors, 1)
	assert.Equal(t, "semantic_scholar", output.Errors[0].Source)
	assert.Contains(t, output.Errors[0].Error, "429")
}

func TestSearchPapers_AllSourcesFailedIsAnError(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	registry := &mockPaperSearcher{}
	registry.On("SearchAll", mock.Anything, mock.Anything).Return([]papersources.SourceResult{
		{Source: "arxiv", Error: errors.New("connection refused")},
		{Source: "semantic_scholar", Error: errors.New("503 Service Unavailable")},
	})

	act := NewDiscoveryActivities(registry, nil)
	env.RegisterActivity(act.SearchPapers)

	_, err := env.ExecuteActivity(act.SearchPapers, SearchPapersInput{Query: "attention"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 paper sources failed")
}

func TestSearchPapers_NoSourcesNoHitsIsEmptySuccess(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	registry := &mockPaperSearcher{}
	registry.On("SearchAll", mock.Anything, mock.Anything).Return([]papersources.SourceResult{
		{Source: "arxiv", Result: &papersources.SearchResult{}},
	})

	act := NewDiscoveryActivities(registry, nil)
	env.RegisterActivity(act.SearchPapers)

	result, err := env.ExecuteActivity(act.SearchPapers, SearchPapersInput{Query: "zzzzzz"})
	require.NoError(t, err)

	var output SearchPapersOutput
	require.NoError(t, result.Get(&output))
	assert.Zero(t, output.TotalFound)
	assert.Empty(t, output.Papers)
}
