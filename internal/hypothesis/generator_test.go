package hypothesis

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/types"
)

func memWithProblem(t *testing.T, problem *types.ProblemOutput) *memory.Store {
	t.Helper()
	mem := memory.New(uuid.New(), problem.Domain)
	require.NoError(t, mem.Record(problem))
	return mem
}

func TestGenerator_RequiresProblemOutput(t *testing.T) {
	mem := memory.New(uuid.New(), "quantum")

	_, err := NewGenerator().Run(context.Background(), mem)

	var missing *memory.MissingStageError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, types.StageProblemFinder, missing.Stage)
}

func TestGenerator_ImprovementHypothesis(t *testing.T) {
	mem := memWithProblem(t, &types.ProblemOutput{
		Domain:           "quantum machine learning",
		ProblemStatement: "How can we improve accuracy of quantum systems?",
		IdentifiedGap:    "gaps remain in integrating circuits with benchmarks",
		Keywords:         []string{"circuits", "benchmarks"},
	})

	out, err := NewGenerator().Run(context.Background(), mem)
	require.NoError(t, err)

	hyp := out.(*types.HypothesisOutput)
	assert.Equal(t, TypeImprovement, hyp.HypothesisType)
	assert.Contains(t, hyp.Statement, "circuits")
	assert.Contains(t, hyp.Statement, "benchmarks")
	assert.Equal(t, hyp.Statement, hyp.AlternativeHypothesis)
	assert.Contains(t, hyp.NullHypothesis, "will not significantly")
	assert.Equal(t, "circuits_method", hyp.IndependentVariable)
	assert.Equal(t, "benchmarks_score", hyp.DependentVariable)
	assert.NotEmpty(t, hyp.ControlVariables)
	assert.Equal(t, DirectionPositive, hyp.EffectDirection)
}

func TestGenerator_CorrelationalHypothesis(t *testing.T) {
	mem := memWithProblem(t, &types.ProblemOutput{
		Domain:           "social networks",
		ProblemStatement: "What is the relationship between engagement and churn?",
		IdentifiedGap:    "the correlation is poorly understood",
		Keywords:         []string{"engagement", "churn"},
	})

	out, err := NewGenerator().Run(context.Background(), mem)
	require.NoError(t, err)

	hyp := out.(*types.HypothesisOutput)
	assert.Equal(t, TypeCorrelational, hyp.HypothesisType)
	assert.Contains(t, hyp.Statement, "correlation between engagement and churn")
	assert.Contains(t, hyp.NullHypothesis, "does not exist")
}

func TestGenerator_NoKeywordsUsesGenericVariables(t *testing.T) {
	mem := memWithProblem(t, &types.ProblemOutput{
		Domain:           "materials science",
		ProblemStatement: "An open question in materials science",
		IdentifiedGap:    "unknown territory",
		Keywords:         nil,
	})

	out, err := NewGenerator().Run(context.Background(), mem)
	require.NoError(t, err)

	hyp := out.(*types.HypothesisOutput)
	assert.Equal(t, TypeCausal, hyp.HypothesisType)
	assert.Equal(t, "methods_method", hyp.IndependentVariable)
	assert.Equal(t, "performance_score", hyp.DependentVariable)
	assert.NotEmpty(t, hyp.NullHypothesis)
}

func TestGenerator_Deterministic(t *testing.T) {
	problem := &types.ProblemOutput{
		Domain:           "robotics",
		ProblemStatement: "How can we improve efficiency of robot navigation?",
		Keywords:         []string{"navigation", "planning"},
	}

	first, err := NewGenerator().Run(context.Background(), memWithProblem(t, problem))
	require.NoError(t, err)
	second, err := NewGenerator().Run(context.Background(), memWithProblem(t, problem))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNegate_FallbackForm(t *testing.T) {
	null := negate("Something without a rewritable verb phrase")
	assert.Equal(t, "There is no significant difference between treatment and control conditions", null)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"how to improve throughput", TypeImprovement},
		{"can we forecast demand", TypePredictive},
		{"methods to detect anomalies", TypeDetection},
		{"the association between x and y", TypeCorrelational},
		{"something else entirely", TypeCausal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.text), tt.text)
	}
}
