package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageOrder_ContainsAllFiveStages(t *testing.T) {
	require.Len(t, StageOrder, 5)
	assert.Equal(t, StageProblemFinder, StageOrder[0])
	assert.Equal(t, StageHypothesisGenerator, StageOrder[1])
	assert.Equal(t, StageExperimentDesigner, StageOrder[2])
	assert.Equal(t, StageDataAnalyst, StageOrder[3])
	assert.Equal(t, StagePaperWriter, StageOrder[4])
}

func TestStageIndex(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{StageProblemFinder, 0},
		{StageHypothesisGenerator, 1},
		{StageExperimentDesigner, 2},
		{StageDataAnalyst, 3},
		{StagePaperWriter, 4},
		{"unknown_stage", -1},
		{"", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StageIndex(tt.name), "stage %q", tt.name)
	}
}

func TestStageOutputs_ReportTheirStage(t *testing.T) {
	outputs := []StageOutput{
		&ProblemOutput{},
		&HypothesisOutput{},
		&ExperimentOutput{},
		&AnalysisOutput{},
		&PaperOutput{},
	}

	require.Len(t, outputs, len(StageOrder))
	for i, out := range outputs {
		assert.Equal(t, StageOrder[i], out.Stage())
	}
}
