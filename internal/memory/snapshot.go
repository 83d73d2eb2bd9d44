package memory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/research-lab/internal/types"
)

// Snapshot is an immutable copy of a run context, taken once the run
// reaches a terminal state. It is the unit handed to persistence: the
// pipeline history artifact is this structure serialized as JSON.
type Snapshot struct {
	RunID     uuid.UUID `json:"run_id"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
}

// Entry pairs a stage name with its recorded output, preserving
// insertion order.
type Entry struct {
	Stage  string            `json:"stage"`
	Output types.StageOutput `json:"output"`
}

// Snapshot returns an immutable copy of the run context with entries
// in insertion order. Mutating the returned snapshot does not affect
// the store.
func (s *Store) Snapshot() *Snapshot {
	entries := make([]Entry, 0, len(s.order))
	for _, stage := range s.order {
		entries = append(entries, Entry{Stage: stage, Output: s.outputs[stage]})
	}
	return &Snapshot{
		RunID:     s.runID,
		Domain:    s.domain,
		CreatedAt: s.createdAt,
		Entries:   entries,
	}
}

// UnmarshalJSON decodes an entry, dispatching the output payload to the
// concrete type declared for the entry's stage. This keeps the persisted
// history round-trippable despite the polymorphic output field.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Stage  string          `json:"stage"`
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out types.StageOutput
	switch raw.Stage {
	case types.StageProblemFinder:
		out = &types.ProblemOutput{}
	case types.StageHypothesisGenerator:
		out = &types.HypothesisOutput{}
	case types.StageExperimentDesigner:
		out = &types.ExperimentOutput{}
	case types.StageDataAnalyst:
		out = &types.AnalysisOutput{}
	case types.StagePaperWriter:
		out = &types.PaperOutput{}
	default:
		return fmt.Errorf("history entry references unknown stage %q", raw.Stage)
	}

	if err := json.Unmarshal(raw.Output, out); err != nil {
		return fmt.Errorf("failed to decode %s output: %w", raw.Stage, err)
	}

	e.Stage = raw.Stage
	e.Output = out
	return nil
}
