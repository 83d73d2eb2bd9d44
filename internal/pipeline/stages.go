package pipeline

import (
	"github.com/jonathan/research-lab/internal/analysis"
	"github.com/jonathan/research-lab/internal/experiment"
	"github.com/jonathan/research-lab/internal/hypothesis"
	"github.com/jonathan/research-lab/internal/literature"
	"github.com/jonathan/research-lab/internal/llm"
	"github.com/jonathan/research-lab/internal/paper"
	"github.com/jonathan/research-lab/internal/problem"
)

// DefaultStages wires the five pipeline stages in their fixed order.
func DefaultStages(searcher literature.Searcher, client llm.Client, cfg Config) []Stage {
	words := paper.DefaultWordRange
	if cfg.MinWords > 0 {
		words.Min = cfg.MinWords
	}
	if cfg.MaxWords > 0 {
		words.Max = cfg.MaxWords
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = analysis.DefaultSeed
	}

	return []Stage{
		problem.NewFinder(searcher, cfg.MaxResults),
		hypothesis.NewGenerator(),
		experiment.NewDesigner(),
		analysis.NewAnalyst(seed),
		paper.NewWriter(client, words, cfg.Timeout),
	}
}
