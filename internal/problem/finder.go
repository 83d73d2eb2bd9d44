// Package problem implements the first pipeline stage: identifying a
// research gap for a domain, grounded in literature search results when
// the search collaborator returns any.
package problem

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/jonathan/research-lab/internal/literature"
	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/types"
)

const (
	// maxKeywords bounds the extracted keyword list.
	maxKeywords = 7
	// keywordsPerTitle bounds how many words one paper title contributes.
	keywordsPerTitle = 3
	// minKeywordLength filters short, low-signal title words.
	minKeywordLength = 6

	// literatureConfidence is reported when the gap is grounded in papers.
	literatureConfidence = 0.85
	// fallbackConfidence is reported when no papers were found; the gap
	// statement is generated from the domain alone and is explicitly
	// low-confidence.
	fallbackConfidence = 0.5
)

// stopWords are excluded from domain-derived keywords.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"for": true, "to": true, "of": true, "and": true, "with": true,
}

// improvementPatterns are candidate research angles for the fallback
// path. The choice is a deterministic function of the domain.
var improvementPatterns = []string{
	"optimization", "prediction", "efficiency", "accuracy", "scalability",
}

// Finder is the problem finder stage.
type Finder struct {
	searcher   literature.Searcher
	maxResults int
}

// NewFinder creates the stage. maxResults bounds the literature request.
func NewFinder(searcher literature.Searcher, maxResults int) *Finder {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Finder{searcher: searcher, maxResults: maxResults}
}

// Name returns the fixed stage name.
func (f *Finder) Name() string { return types.StageProblemFinder }

// Run queries the literature searcher with the run's domain and derives
// keywords and a gap statement from the results. An empty result set is
// not fatal: the stage falls back to domain-derived keywords and a
// low-confidence gap statement with no source papers. A failed search
// returns the searcher's error for the orchestrator to classify.
func (f *Finder) Run(ctx context.Context, mem *memory.Store) (types.StageOutput, error) {
	domain := mem.Domain()

	papers, err := f.searcher.Search(ctx, domain, f.maxResults)
	if err != nil {
		return nil, err
	}

	if len(papers) == 0 {
		return fallbackProblem(domain), nil
	}

	keywords := extractKeywords(papers)
	first, second := keywordPair(keywords)

	return &types.ProblemOutput{
		Domain: domain,
		ProblemStatement: fmt.Sprintf(
			"How can we advance %s through novel approaches addressing limitations in current %s?",
			domain, first),
		IdentifiedGap: fmt.Sprintf(
			"Recent literature shows %d studies, but gaps remain in integrating %s with %s",
			len(papers), first, second),
		Keywords:         keywords,
		SourcePapers:     papers,
		PapersFound:      len(papers),
		LiteratureSource: types.SourceArxiv,
		Confidence:       literatureConfidence,
	}, nil
}

// fallbackProblem builds a problem output from the domain alone.
func fallbackProblem(domain string) *types.ProblemOutput {
	var keyTerms []string
	for _, word := range strings.Fields(strings.ToLower(domain)) {
		if !stopWords[word] {
			keyTerms = append(keyTerms, word)
		}
	}

	focus := domain
	if len(keyTerms) > 0 {
		focus = keyTerms[0]
	}
	pattern := improvementPatterns[domainHash(domain)%uint32(len(improvementPatterns))]

	keywords := appendUnique(keyTerms, pattern)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	return &types.ProblemOutput{
		Domain: domain,
		ProblemStatement: fmt.Sprintf(
			"How can we improve %s of %s systems in %s?", pattern, focus, domain),
		IdentifiedGap: fmt.Sprintf(
			"No literature retrieved; current %s approaches appear to show limitations in %s (low confidence)",
			focus, pattern),
		Keywords:         keywords,
		SourcePapers:     []types.PaperSummary{},
		PapersFound:      0,
		LiteratureSource: types.SourceGenerated,
		Confidence:       fallbackConfidence,
	}
}

// extractKeywords pulls long words from paper titles, preserving first
// occurrence order, capped at maxKeywords.
func extractKeywords(papers []types.PaperSummary) []string {
	seen := make(map[string]bool)
	var keywords []string

	for _, paper := range papers {
		taken := 0
		for _, word := range strings.Fields(strings.ToLower(paper.Title)) {
			word = strings.Trim(word, ".,:;()[]{}\"'")
			if len(word) < minKeywordLength || seen[word] {
				continue
			}
			seen[word] = true
			keywords = append(keywords, word)
			taken++
			if taken == keywordsPerTitle || len(keywords) == maxKeywords {
				break
			}
		}
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// keywordPair returns the first two keywords with generic fallbacks.
func keywordPair(keywords []string) (string, string) {
	first, second := "methods", "applications"
	if len(keywords) > 0 {
		first = keywords[0]
	}
	if len(keywords) > 1 {
		second = keywords[1]
	}
	return first, second
}

func appendUnique(words []string, extra string) []string {
	for _, w := range words {
		if w == extra {
			return words
		}
	}
	return append(words, extra)
}

func domainHash(domain string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(domain)))
	return h.Sum32()
}
