package pipeline

import (
	"context"
	"errors"

	"github.com/jonathan/research-lab/internal/literature"
	"github.com/jonathan/research-lab/internal/llm"
	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/schemas"
)

type failureClass int

const (
	// classTransient covers external failures worth retrying: network
	// errors, provider outages, and per-stage timeouts.
	classTransient failureClass = iota
	// classContract covers violations of the pipeline's own contracts.
	// Retrying cannot help, so these fail the run immediately.
	classContract
	// classFatal is everything else.
	classFatal
)

// classify sorts a stage error into its failure class. Classification
// looks through wrapping, so stages are free to add context.
func classify(err error) failureClass {
	var litErr *literature.UnavailableError
	var llmErr *llm.UnavailableError
	if errors.As(err, &litErr) || errors.As(err, &llmErr) || errors.Is(err, context.DeadlineExceeded) {
		return classTransient
	}

	var (
		outOfOrder *memory.OutOfOrderWriteError
		duplicate  *memory.DuplicateStageError
		missing    *memory.MissingStageError
		unknown    *memory.UnknownStageError
		invalid    *schemas.ValidationError
	)
	if errors.As(err, &outOfOrder) || errors.As(err, &duplicate) ||
		errors.As(err, &missing) || errors.As(err, &unknown) ||
		errors.As(err, &invalid) {
		return classContract
	}

	return classFatal
}
