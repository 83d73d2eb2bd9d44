package memory

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-lab/internal/types"
)

func outputForStage(stage string) types.StageOutput {
	switch stage {
	case types.StageProblemFinder:
		return &types.ProblemOutput{Domain: "test", IdentifiedGap: "gap", Keywords: []string{"k"}}
	case types.StageHypothesisGenerator:
		return &types.HypothesisOutput{Statement: "h1", NullHypothesis: "h0"}
	case types.StageExperimentDesigner:
		return &types.ExperimentOutput{SampleSize: 100}
	case types.StageDataAnalyst:
		return &types.AnalysisOutput{PValue: 0.01, Simulated: true}
	case types.StagePaperWriter:
		return &types.PaperOutput{FullText: "text", WordCount: 2}
	}
	return nil
}

func recordThrough(t *testing.T, s *Store, lastStage string) {
	t.Helper()
	for _, stage := range types.StageOrder {
		require.NoError(t, s.Record(outputForStage(stage)))
		if stage == lastStage {
			return
		}
	}
}

func TestStore_RecordInOrder(t *testing.T) {
	s := New(uuid.New(), "quantum computing")

	recordThrough(t, s, types.StagePaperWriter)

	assert.Equal(t, types.StageOrder, s.Completed())
}

func TestStore_RecordOutOfOrder(t *testing.T) {
	s := New(uuid.New(), "quantum computing")

	err := s.Record(&types.HypothesisOutput{Statement: "h1"})

	var oooErr *OutOfOrderWriteError
	require.ErrorAs(t, err, &oooErr)
	assert.Equal(t, types.StageHypothesisGenerator, oooErr.Stage)
	assert.Equal(t, types.StageProblemFinder, oooErr.Missing)
}

func TestStore_RecordSkippedStage(t *testing.T) {
	s := New(uuid.New(), "quantum computing")
	recordThrough(t, s, types.StageHypothesisGenerator)

	// Skipping experiment_designer must be rejected.
	err := s.Record(&types.AnalysisOutput{Simulated: true})

	var oooErr *OutOfOrderWriteError
	require.ErrorAs(t, err, &oooErr)
	assert.Equal(t, types.StageExperimentDesigner, oooErr.Missing)
}

func TestStore_RecordDuplicate(t *testing.T) {
	s := New(uuid.New(), "quantum computing")
	recordThrough(t, s, types.StageProblemFinder)

	err := s.Record(&types.ProblemOutput{Domain: "other"})

	var dupErr *DuplicateStageError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, types.StageProblemFinder, dupErr.Stage)

	// The original output must be untouched.
	problem, getErr := s.Problem()
	require.NoError(t, getErr)
	assert.Equal(t, "test", problem.Domain)
}

func TestStore_RecordUnknownStage(t *testing.T) {
	s := New(uuid.New(), "quantum computing")

	err := s.Record(fakeOutput{})

	var unknownErr *UnknownStageError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "not_a_stage", unknownErr.Stage)
}

type fakeOutput struct{}

func (fakeOutput) Stage() string { return "not_a_stage" }

func TestStore_GetMissing(t *testing.T) {
	s := New(uuid.New(), "quantum computing")

	_, err := s.Get(types.StagePaperWriter)

	var missingErr *MissingStageError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, types.StagePaperWriter, missingErr.Stage)

	_, err = s.Paper()
	assert.ErrorAs(t, err, &missingErr)
}

func TestStore_TypedGetters(t *testing.T) {
	s := New(uuid.New(), "quantum computing")
	recordThrough(t, s, types.StagePaperWriter)

	problem, err := s.Problem()
	require.NoError(t, err)
	assert.Equal(t, "gap", problem.IdentifiedGap)

	hyp, err := s.Hypothesis()
	require.NoError(t, err)
	assert.Equal(t, "h1", hyp.Statement)

	exp, err := s.Experiment()
	require.NoError(t, err)
	assert.Equal(t, 100, exp.SampleSize)

	analysis, err := s.Analysis()
	require.NoError(t, err)
	assert.True(t, analysis.Simulated)

	paper, err := s.Paper()
	require.NoError(t, err)
	assert.Equal(t, "text", paper.FullText)
}

func TestSnapshot_PreservesOrder(t *testing.T) {
	runID := uuid.New()
	s := New(runID, "quantum computing")
	recordThrough(t, s, types.StagePaperWriter)

	snap := s.Snapshot()

	assert.Equal(t, runID, snap.RunID)
	assert.Equal(t, "quantum computing", snap.Domain)
	require.Len(t, snap.Entries, 5)
	for i, entry := range snap.Entries {
		assert.Equal(t, types.StageOrder[i], entry.Stage)
		assert.Equal(t, types.StageOrder[i], entry.Output.Stage())
	}
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	s := New(uuid.New(), "quantum computing")
	recordThrough(t, s, types.StagePaperWriter)

	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var restored Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, snap.RunID, restored.RunID)
	assert.Equal(t, snap.Domain, restored.Domain)
	require.Len(t, restored.Entries, 5)

	problem, ok := restored.Entries[0].Output.(*types.ProblemOutput)
	require.True(t, ok)
	assert.Equal(t, "gap", problem.IdentifiedGap)

	paper, ok := restored.Entries[4].Output.(*types.PaperOutput)
	require.True(t, ok)
	assert.Equal(t, "text", paper.FullText)
}

func TestSnapshot_RejectsUnknownStage(t *testing.T) {
	var entry Entry
	err := json.Unmarshal([]byte(`{"stage":"bogus","output":{}}`), &entry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}
