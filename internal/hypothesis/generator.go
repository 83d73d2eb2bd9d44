// Package hypothesis implements the second pipeline stage: deriving one
// testable hypothesis, with its variables and null form, deterministically
// from the identified research gap and keywords. No external calls.
package hypothesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/types"
)

// Hypothesis type constants.
const (
	TypeImprovement   = "improvement"
	TypePredictive    = "predictive"
	TypeDetection     = "detection"
	TypeCorrelational = "correlational"
	TypeCausal        = "causal"
)

// Effect direction constants.
const (
	DirectionPositive      = "positive"
	DirectionNegative      = "negative"
	DirectionBidirectional = "bidirectional"
)

// controlVariables is the fixed set held constant across conditions.
var controlVariables = []string{
	"sample_characteristics",
	"environmental_conditions",
	"measurement_protocol",
	"baseline_performance",
}

// nullRewrites convert an alternative hypothesis into its null form.
var nullRewrites = [][2]string{
	{"will significantly", "will not significantly"},
	{"will improve", "will not improve"},
	{"will lead to", "will not lead to"},
	{"will achieve", "will not achieve"},
	{"will accurately", "will not accurately"},
	{"exists", "does not exist"},
}

// Generator is the hypothesis generator stage.
type Generator struct{}

// NewGenerator creates the stage.
func NewGenerator() *Generator { return &Generator{} }

// Name returns the fixed stage name.
func (g *Generator) Name() string { return types.StageHypothesisGenerator }

// Run derives the hypothesis from the problem finder output. It is a
// pure function of the recorded problem: running it twice on the same
// context yields identical output.
func (g *Generator) Run(_ context.Context, mem *memory.Store) (types.StageOutput, error) {
	problem, err := mem.Problem()
	if err != nil {
		return nil, err
	}

	hypType := classify(problem.ProblemStatement + " " + problem.IdentifiedGap)
	method, outcome := keywordPair(problem.Keywords)
	statement := formulate(hypType, method, outcome, problem.Domain)

	return &types.HypothesisOutput{
		Statement:             statement,
		NullHypothesis:        negate(statement),
		AlternativeHypothesis: statement,
		IndependentVariable:   method + "_method",
		DependentVariable:     outcome + "_score",
		ControlVariables:      append([]string(nil), controlVariables...),
		HypothesisType:        hypType,
		EffectDirection:       effectDirection(statement),
	}, nil
}

// classify picks the hypothesis type from the problem wording.
func classify(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "improve", "enhance", "optimize", "increase", "better"):
		return TypeImprovement
	case containsAny(lower, "predict", "forecast", "estimate"):
		return TypePredictive
	case containsAny(lower, "detect", "identify", "recognize"):
		return TypeDetection
	case containsAny(lower, "relationship", "correlation", "association"):
		return TypeCorrelational
	default:
		return TypeCausal
	}
}

// formulate builds the hypothesis statement for a type from the two
// leading keywords.
func formulate(hypType, method, outcome, domain string) string {
	switch hypType {
	case TypeImprovement:
		return fmt.Sprintf(
			"Implementing advanced %s techniques will significantly improve %s compared to baseline approaches in %s",
			method, outcome, domain)
	case TypePredictive:
		return fmt.Sprintf(
			"Utilizing %s as a predictive feature will accurately forecast %s with statistical significance",
			method, outcome)
	case TypeDetection:
		return fmt.Sprintf(
			"The proposed detection method will identify %s with higher accuracy and fewer false positives than existing methods",
			method)
	case TypeCorrelational:
		return fmt.Sprintf(
			"There exists a significant positive correlation between %s and %s in %s contexts",
			method, outcome, domain)
	default:
		return fmt.Sprintf(
			"Modifying %s will lead to measurable changes in %s, demonstrating a causal relationship in %s",
			method, outcome, domain)
	}
}

// negate rewrites the alternative hypothesis into its null form.
func negate(statement string) string {
	for _, rw := range nullRewrites {
		if strings.Contains(statement, rw[0]) {
			return strings.Replace(statement, rw[0], rw[1], 1)
		}
	}
	return "There is no significant difference between treatment and control conditions"
}

// effectDirection infers the expected direction from the statement.
func effectDirection(statement string) string {
	lower := strings.ToLower(statement)
	switch {
	case containsAny(lower, "increase", "improve", "enhance", "higher", "positive"):
		return DirectionPositive
	case containsAny(lower, "decrease", "reduce", "lower", "negative"):
		return DirectionNegative
	default:
		return DirectionBidirectional
	}
}

func keywordPair(keywords []string) (string, string) {
	method, outcome := "methods", "performance"
	if len(keywords) > 0 {
		method = keywords[0]
	}
	if len(keywords) > 1 {
		outcome = keywords[1]
	}
	return method, outcome
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
