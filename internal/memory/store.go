// Package memory provides the run context: the append-only record of
// stage outputs accumulated over a single pipeline run. Each run owns
// exactly one Store instance; it is created by the orchestrator, mutated
// only through Record, and snapshotted once the run reaches a terminal
// state.
package memory

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/research-lab/internal/types"
)

// Store is the mutable run context for one pipeline invocation.
// It enforces the linear dependency chain: stage N cannot be recorded
// until stages 1..N-1 are present, and no stage is ever overwritten.
//
// Store is not safe for concurrent use. The pipeline is strictly
// sequential, and every run receives its own instance.
type Store struct {
	runID     uuid.UUID
	domain    string
	createdAt time.Time

	order   []string
	outputs map[string]types.StageOutput
}

// New creates the run context for a single pipeline run.
func New(runID uuid.UUID, domain string) *Store {
	return &Store{
		runID:     runID,
		domain:    domain,
		createdAt: time.Now().UTC(),
		outputs:   make(map[string]types.StageOutput, len(types.StageOrder)),
	}
}

// RunID returns the run identifier, fixed at creation.
func (s *Store) RunID() uuid.UUID { return s.runID }

// Domain returns the research domain, fixed at creation.
func (s *Store) Domain() string { return s.domain }

// CreatedAt returns the run creation time, fixed at creation.
func (s *Store) CreatedAt() time.Time { return s.createdAt }

// Record appends a stage output to the run context. It fails with
// *UnknownStageError for names outside the fixed stage set, with
// *DuplicateStageError if the stage was already recorded, and with
// *OutOfOrderWriteError if the stage's predecessor is missing.
func (s *Store) Record(output types.StageOutput) error {
	stage := output.Stage()
	idx := types.StageIndex(stage)
	if idx < 0 {
		return &UnknownStageError{Stage: stage}
	}
	if _, exists := s.outputs[stage]; exists {
		return &DuplicateStageError{Stage: stage}
	}
	if idx > 0 {
		predecessor := types.StageOrder[idx-1]
		if _, ok := s.outputs[predecessor]; !ok {
			return &OutOfOrderWriteError{Stage: stage, Missing: predecessor}
		}
	}

	s.outputs[stage] = output
	s.order = append(s.order, stage)
	return nil
}

// Get returns the recorded output for a stage, or *MissingStageError
// if the stage has not run yet.
func (s *Store) Get(stage string) (types.StageOutput, error) {
	out, ok := s.outputs[stage]
	if !ok {
		return nil, &MissingStageError{Stage: stage}
	}
	return out, nil
}

// Completed returns the recorded stage names in insertion order.
func (s *Store) Completed() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Problem returns the problem finder output.
func (s *Store) Problem() (*types.ProblemOutput, error) {
	out, err := s.Get(types.StageProblemFinder)
	if err != nil {
		return nil, err
	}
	return out.(*types.ProblemOutput), nil
}

// Hypothesis returns the hypothesis generator output.
func (s *Store) Hypothesis() (*types.HypothesisOutput, error) {
	out, err := s.Get(types.StageHypothesisGenerator)
	if err != nil {
		return nil, err
	}
	return out.(*types.HypothesisOutput), nil
}

// Experiment returns the experiment designer output.
func (s *Store) Experiment() (*types.ExperimentOutput, error) {
	out, err := s.Get(types.StageExperimentDesigner)
	if err != nil {
		return nil, err
	}
	return out.(*types.ExperimentOutput), nil
}

// Analysis returns the data analyst output.
func (s *Store) Analysis() (*types.AnalysisOutput, error) {
	out, err := s.Get(types.StageDataAnalyst)
	if err != nil {
		return nil, err
	}
	return out.(*types.AnalysisOutput), nil
}

// Paper returns the paper writer output.
func (s *Store) Paper() (*types.PaperOutput, error) {
	out, err := s.Get(types.StagePaperWriter)
	if err != nil {
		return nil, err
	}
	return out.(*types.PaperOutput), nil
}
