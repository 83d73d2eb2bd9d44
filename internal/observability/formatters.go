// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/research-lab/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// PrintProblem outputs a human-readable summary of the identified research problem.
func (p *Printer) PrintProblem(problem *types.ProblemOutput) {
	if problem == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Domain:     %s\n", problem.Domain))
	sb.WriteString(fmt.Sprintf("Source:     %s (%d papers)\n", problem.LiteratureSource, problem.PapersFound))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", problem.Confidence))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Problem: %s\n", truncate(problem.ProblemStatement, 50)))
	sb.WriteString(fmt.Sprintf("Gap:     %s\n", truncate(problem.IdentifiedGap, 50)))

	if len(problem.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("\nKeywords: %s\n", truncate(strings.Join(problem.Keywords, ", "), 45)))
	}

	if len(problem.SourcePapers) > 0 {
		sb.WriteString("\nSource Papers:\n")
		count := min(len(problem.SourcePapers), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", truncate(problem.SourcePapers[i].Title, 50)))
		}
		if len(problem.SourcePapers) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(problem.SourcePapers)-maxItemsToShow))
		}
	}

	p.printBox("RESEARCH PROBLEM", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHypothesis outputs the formulated hypothesis with its variables.
func (p *Printer) PrintHypothesis(hyp *types.HypothesisOutput) {
	if hyp == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Type: %s (%s)\n", hyp.HypothesisType, hyp.EffectDirection))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("H1: %s\n", truncate(hyp.Statement, 50)))
	sb.WriteString(fmt.Sprintf("H0: %s\n", truncate(hyp.NullHypothesis, 50)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("IV: %s\n", hyp.IndependentVariable))
	sb.WriteString(fmt.Sprintf("DV: %s\n", hyp.DependentVariable))

	if len(hyp.ControlVariables) > 0 {
		sb.WriteString(fmt.Sprintf("Controls: %s\n", truncate(strings.Join(hyp.ControlVariables, ", "), 45)))
	}

	p.printBox("HYPOTHESIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExperiment outputs the experiment design summary.
func (p *Printer) PrintExperiment(exp *types.ExperimentOutput) {
	if exp == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Design:      %s\n", exp.DesignType))
	sb.WriteString(fmt.Sprintf("Sample size: %d (%d groups)\n", exp.SampleSize, exp.GroupCount))
	sb.WriteString(fmt.Sprintf("Analysis:    %s\n", truncate(exp.AnalysisPlan, 42)))
	sb.WriteString(fmt.Sprintf("Alpha:       %.2f\n", exp.SignificanceLevel))

	if len(exp.ProcedureSteps) > 0 {
		sb.WriteString("\nProcedure:\n")
		count := min(len(exp.ProcedureSteps), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, truncate(exp.ProcedureSteps[i], 48)))
		}
		if len(exp.ProcedureSteps) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more steps\n", len(exp.ProcedureSteps)-maxItemsToShow))
		}
	}

	p.printBox("EXPERIMENT DESIGN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs the simulated statistical results.
func (p *Printer) PrintAnalysis(analysis *types.AnalysisOutput) {
	if analysis == nil {
		return
	}

	var sb strings.Builder

	verdict := "not significant"
	if analysis.Significant {
		verdict = "significant"
	}
	sb.WriteString(fmt.Sprintf("p-value:     %.4f (%s)\n", analysis.PValue, verdict))
	sb.WriteString(fmt.Sprintf("Effect size: %.2f\n", analysis.EffectSize))
	sb.WriteString(fmt.Sprintf("Power:       %.2f\n", analysis.StatisticalPower))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Finding:    %s\n", truncate(analysis.KeyFinding, 45)))
	sb.WriteString(fmt.Sprintf("Conclusion: %s\n", truncate(analysis.Conclusion, 45)))
	if analysis.Simulated {
		sb.WriteString("\nNote: statistics are simulated, not measured\n")
	}

	p.printBox("STATISTICAL ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPaper outputs the generated paper's summary statistics.
func (p *Printer) PrintPaper(paper *types.PaperOutput) {
	if paper == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:     %s\n", truncate(paper.Title, 45)))
	sb.WriteString(fmt.Sprintf("Words:     %d\n", paper.WordCount))
	sb.WriteString(fmt.Sprintf("Citations: %d\n", paper.CitationCount))
	sb.WriteString(fmt.Sprintf("Model:     %s\n", paper.Model))

	if len(paper.SectionBoundaries) > 0 {
		sb.WriteString("\nSections:\n")
		count := min(len(paper.SectionBoundaries), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", truncate(paper.SectionBoundaries[i].SectionName, 48)))
		}
		if len(paper.SectionBoundaries) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(paper.SectionBoundaries)-maxItemsToShow))
		}
	}

	if len(paper.QualityFlags) > 0 {
		sb.WriteString("\nQuality flags:\n")
		for _, flag := range paper.QualityFlags {
			sb.WriteString(fmt.Sprintf("  ! %s\n", truncate(flag, 48)))
		}
	}

	p.printBox("GENERATED PAPER", strings.TrimSuffix(sb.String(), "\n"))
}
