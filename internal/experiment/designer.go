// Package experiment implements the third pipeline stage: deriving a
// methodology and sample-size recommendation from the declared hypothesis
// variables. No external calls; the design is a deterministic function of
// the hypothesis.
package experiment

import (
	"context"
	"fmt"

	"github.com/jonathan/research-lab/internal/hypothesis"
	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/types"
)

// significanceLevel is the alpha used in every analysis plan.
const significanceLevel = 0.05

// Designer is the experiment designer stage.
type Designer struct{}

// NewDesigner creates the stage.
func NewDesigner() *Designer { return &Designer{} }

// Name returns the fixed stage name.
func (d *Designer) Name() string { return types.StageExperimentDesigner }

// Run derives the experiment design from the hypothesis generator output.
func (d *Designer) Run(_ context.Context, mem *memory.Store) (types.StageOutput, error) {
	hyp, err := mem.Hypothesis()
	if err != nil {
		return nil, err
	}

	designType, groups := design(hyp.HypothesisType)
	sampleSize := sampleSize(groups, len(hyp.ControlVariables))

	return &types.ExperimentOutput{
		DesignType: designType,
		Methodology: fmt.Sprintf(
			"%s manipulating %s and measuring %s across %d parallel groups with random assignment",
			designType, hyp.IndependentVariable, hyp.DependentVariable, groups),
		SampleSize: sampleSize,
		GroupCount: groups,
		ProcedureSteps: []string{
			fmt.Sprintf("Randomly assign %d participants to %d groups", sampleSize, groups),
			"Record baseline measurements for all groups",
			fmt.Sprintf("Apply treatment conditions varying %s", hyp.IndependentVariable),
			fmt.Sprintf("Measure %s after the treatment period", hyp.DependentVariable),
			"Run the planned statistical analysis",
		},
		AnalysisPlan:      analysisPlan(groups),
		SignificanceLevel: significanceLevel,
	}, nil
}

// design maps the hypothesis type to a design type and group count.
func design(hypType string) (string, int) {
	switch hypType {
	case hypothesis.TypeCorrelational:
		return "Correlational Study", 1
	case hypothesis.TypeImprovement, hypothesis.TypeDetection:
		return "Randomized Controlled Trial", 2
	default:
		return "Factorial Experimental Design", 3
	}
}

// sampleSize recommends a total sample size: a per-group base inflated
// by the number of controlled covariates.
func sampleSize(groups, controlVars int) int {
	perGroup := 50 + 10*controlVars
	total := perGroup * groups
	if total < 30 {
		total = 30
	}
	return total
}

// analysisPlan picks the primary test for the group structure.
func analysisPlan(groups int) string {
	switch groups {
	case 1:
		return fmt.Sprintf("Pearson correlation with significance level %.2f, descriptive statistics, and effect sizes", significanceLevel)
	case 2:
		return fmt.Sprintf("Independent t-test with significance level %.2f, descriptive statistics, and effect sizes", significanceLevel)
	default:
		return fmt.Sprintf("One-way ANOVA with significance level %.2f, descriptive statistics, and effect sizes", significanceLevel)
	}
}
