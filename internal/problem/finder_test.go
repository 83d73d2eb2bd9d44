package problem

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-lab/internal/literature"
	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/types"
)

type stubSearcher struct {
	papers []types.PaperSummary
	err    error
	query  string
	max    int
}

func (s *stubSearcher) Search(_ context.Context, query string, maxResults int) ([]types.PaperSummary, error) {
	s.query = query
	s.max = maxResults
	return s.papers, s.err
}

func newMem(domain string) *memory.Store {
	return memory.New(uuid.New(), domain)
}

func TestFinder_WithLiterature(t *testing.T) {
	searcher := &stubSearcher{papers: []types.PaperSummary{
		{Title: "Quantum Machine Learning Advances", Identifier: "arxiv:1", AbstractExcerpt: "a"},
		{Title: "Variational Quantum Circuits Explained", Identifier: "arxiv:2", AbstractExcerpt: "b"},
	}}
	finder := NewFinder(searcher, 10)

	out, err := finder.Run(context.Background(), newMem("quantum machine learning"))
	require.NoError(t, err)

	problem, ok := out.(*types.ProblemOutput)
	require.True(t, ok)

	assert.Equal(t, "quantum machine learning", searcher.query)
	assert.Equal(t, 10, searcher.max)
	assert.Equal(t, 2, problem.PapersFound)
	assert.Len(t, problem.SourcePapers, 2)
	assert.Equal(t, types.SourceArxiv, problem.LiteratureSource)
	assert.NotEmpty(t, problem.IdentifiedGap)
	assert.NotEmpty(t, problem.ProblemStatement)
	assert.NotEmpty(t, problem.Keywords)
	assert.GreaterOrEqual(t, problem.Confidence, literatureConfidence)
}

func TestFinder_EmptyResultsNotFatal(t *testing.T) {
	finder := NewFinder(&stubSearcher{}, 10)

	out, err := finder.Run(context.Background(), newMem("quantum machine learning"))
	require.NoError(t, err)

	problem := out.(*types.ProblemOutput)
	assert.Equal(t, 0, problem.PapersFound)
	assert.Empty(t, problem.SourcePapers)
	assert.NotNil(t, problem.SourcePapers, "downstream stages expect an empty list, not nil")
	assert.Equal(t, types.SourceGenerated, problem.LiteratureSource)
	assert.Contains(t, problem.IdentifiedGap, "low confidence")
	assert.Equal(t, fallbackConfidence, problem.Confidence)
	assert.NotEmpty(t, problem.Keywords)
}

func TestFinder_Deterministic(t *testing.T) {
	finder := NewFinder(&stubSearcher{}, 10)

	first, err := finder.Run(context.Background(), newMem("climate modeling"))
	require.NoError(t, err)
	second, err := finder.Run(context.Background(), newMem("climate modeling"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFinder_SearchFailurePropagates(t *testing.T) {
	searcher := &stubSearcher{err: &literature.UnavailableError{Message: "down"}}
	finder := NewFinder(searcher, 10)

	_, err := finder.Run(context.Background(), newMem("quantum"))

	var unavailable *literature.UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestExtractKeywords(t *testing.T) {
	papers := []types.PaperSummary{
		{Title: "Efficient Transformers for Sequence Modeling"},
		{Title: "Efficient Attention Mechanisms, Revisited"},
	}

	keywords := extractKeywords(papers)

	assert.Contains(t, keywords, "efficient")
	assert.Contains(t, keywords, "transformers")
	assert.Contains(t, keywords, "mechanisms")
	// Short words and duplicates are excluded.
	assert.NotContains(t, keywords, "for")
	assert.LessOrEqual(t, len(keywords), maxKeywords)
	count := 0
	for _, k := range keywords {
		if k == "efficient" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestFinder_Name(t *testing.T) {
	assert.Equal(t, types.StageProblemFinder, NewFinder(&stubSearcher{}, 0).Name())
}
