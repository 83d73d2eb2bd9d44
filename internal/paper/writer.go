// Package paper implements the final pipeline stage: assembling one
// prompt from every prior stage output, calling the text generation
// collaborator, and post-validating the returned draft. Out-of-range
// word or citation counts are flagged on the output, never rejected;
// the pipeline favors a degraded artifact over no artifact.
package paper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/research-lab/internal/llm"
	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/prompts"
	"github.com/jonathan/research-lab/internal/types"
)

// WordRange is the configured target word-count window.
type WordRange struct {
	Min int
	Max int
}

// DefaultWordRange matches the product default of a 2500 to 3000 word paper.
var DefaultWordRange = WordRange{Min: 2500, Max: 3000}

// wordTolerance widens the range before flagging, since LLM word counts
// are approximate.
const wordTolerance = 0.1

// MinCitations is the fewest citation markers expected in a paper that
// was asked to cite its sources.
const MinCitations = 5

// Writer is the paper writer stage.
type Writer struct {
	client  llm.Client
	words   WordRange
	timeout time.Duration
}

// NewWriter creates the stage. A zero range uses DefaultWordRange and a
// zero timeout disables the per-call deadline.
func NewWriter(client llm.Client, words WordRange, timeout time.Duration) *Writer {
	if words.Min <= 0 || words.Max < words.Min {
		words = DefaultWordRange
	}
	return &Writer{client: client, words: words, timeout: timeout}
}

// Name returns the fixed stage name.
func (w *Writer) Name() string { return types.StagePaperWriter }

// Run assembles the prompt from all four prior outputs, makes a single
// generation call, and post-validates the draft. Generation failures
// propagate for the orchestrator to classify and retry.
func (w *Writer) Run(ctx context.Context, mem *memory.Store) (types.StageOutput, error) {
	prompt, err := w.buildPrompt(mem)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	text, err := w.client.GenerateContent(callCtx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, err
	}

	out := &types.PaperOutput{
		Title:             extractTitle(text),
		FullText:          text,
		WordCount:         countWords(text),
		CitationCount:     countCitations(text),
		SectionBoundaries: sectionBoundaries(text),
		Model:             w.client.GetModel(llm.TierAdvanced),
	}
	out.QualityFlags = w.qualityFlags(out)
	return out, nil
}

// buildPrompt renders the embedded paper template with every prior
// stage output.
func (w *Writer) buildPrompt(mem *memory.Store) (string, error) {
	problem, err := mem.Problem()
	if err != nil {
		return "", err
	}
	hyp, err := mem.Hypothesis()
	if err != nil {
		return "", err
	}
	exp, err := mem.Experiment()
	if err != nil {
		return "", err
	}
	analysis, err := mem.Analysis()
	if err != nil {
		return "", err
	}

	template := prompts.MustGet("paper.json", "write_paper")
	return prompts.Format(template, map[string]string{
		"TargetWords":         strconv.Itoa((w.words.Min + w.words.Max) / 2),
		"Domain":              problem.Domain,
		"ProblemStatement":    problem.ProblemStatement,
		"IdentifiedGap":       problem.IdentifiedGap,
		"Keywords":            strings.Join(problem.Keywords, ", "),
		"Hypothesis":          hyp.Statement,
		"NullHypothesis":      hyp.NullHypothesis,
		"IndependentVariable": hyp.IndependentVariable,
		"DependentVariable":   hyp.DependentVariable,
		"Methodology":         exp.Methodology,
		"SampleSize":          strconv.Itoa(exp.SampleSize),
		"AnalysisPlan":        exp.AnalysisPlan,
		"KeyFinding":          analysis.KeyFinding,
		"Interpretation":      analysis.Interpretation,
		"Conclusion":          analysis.Conclusion,
		"SourcePapers":        formatSources(problem.SourcePapers),
	}), nil
}

// qualityFlags reports non-fatal post-validation findings.
func (w *Writer) qualityFlags(out *types.PaperOutput) []string {
	var flags []string

	lo := int(float64(w.words.Min) * (1 - wordTolerance))
	hi := int(float64(w.words.Max) * (1 + wordTolerance))
	if out.WordCount < lo || out.WordCount > hi {
		flags = append(flags, fmt.Sprintf(
			"word count %d outside target range [%d, %d]", out.WordCount, w.words.Min, w.words.Max))
	}
	if out.CitationCount < MinCitations {
		flags = append(flags, fmt.Sprintf(
			"citation count %d below expected minimum %d", out.CitationCount, MinCitations))
	}
	return flags
}

// formatSources renders the source papers as a numbered list for the
// prompt, or an explicit note when the literature search came up empty.
func formatSources(papers []types.PaperSummary) string {
	if len(papers) == 0 {
		return "(no source literature retrieved)"
	}
	var sb strings.Builder
	for i, p := range papers {
		fmt.Fprintf(&sb, "[%d] %s (%s): %s\n", i+1, p.Title, p.Identifier, p.AbstractExcerpt)
	}
	return sb.String()
}
