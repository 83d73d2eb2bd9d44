package memory

import "fmt"

// OutOfOrderWriteError indicates an attempt to record a stage output
// before its predecessor stage was recorded. This is an orchestration
// bug, never a recoverable condition.
type OutOfOrderWriteError struct {
	Stage   string
	Missing string
}

func (e *OutOfOrderWriteError) Error() string {
	return fmt.Sprintf("out-of-order write for stage %s: predecessor %s not recorded", e.Stage, e.Missing)
}

// DuplicateStageError indicates an attempt to record a stage output
// for a stage that was already recorded. Stage outputs are append-only
// and never overwritten.
type DuplicateStageError struct {
	Stage string
}

func (e *DuplicateStageError) Error() string {
	return fmt.Sprintf("duplicate write for stage %s: output already recorded", e.Stage)
}

// MissingStageError indicates a read of a stage output that has not
// been recorded yet.
type MissingStageError struct {
	Stage string
}

func (e *MissingStageError) Error() string {
	return fmt.Sprintf("stage %s has no recorded output", e.Stage)
}

// UnknownStageError indicates a stage name outside the fixed five-stage set.
type UnknownStageError struct {
	Stage string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage %q", e.Stage)
}
