// Package pipeline provides the high-level orchestration for the research
// paper generation process.
//
// The pipeline runs five stages in a fixed order, each reading its inputs
// from the shared run context and recording exactly one output. Stage
// failures are classified before the run reacts: transient external
// failures are retried with doubling backoff, contract violations are
// never retried, and anything else fails the run immediately. The caller
// always receives a RunResult; raw collaborator errors never escape Run.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/research-lab/internal/artifacts"
	"github.com/jonathan/research-lab/internal/db"
	"github.com/jonathan/research-lab/internal/memory"
	"github.com/jonathan/research-lab/internal/observability"
	"github.com/jonathan/research-lab/internal/schemas"
	"github.com/jonathan/research-lab/internal/types"
)

// Terminal and intermediate run states. Each completed stage moves the
// run to "<stage>_done"; the terminal states are the last four.
const (
	StateCreated       = "created"
	StatePersisted     = "persisted"
	StateFailed        = "failed"
	StatePersistFailed = "persist_failed"
)

// Failure reason prefixes recorded on the RunResult.
const (
	ReasonContractViolation = "contract violation"
	ReasonUnavailable       = "external service unavailable"
	ReasonCancelled         = "cancelled"
	ReasonPersistFailure    = "persistence failure"
)

// Retry defaults. Retries counts additional attempts after the first.
const (
	DefaultRetries = 2
	DefaultTimeout = 60 * time.Second
	initialBackoff = 1 * time.Second
)

// StageDoneState returns the intermediate state name for a completed stage.
func StageDoneState(stage string) string {
	return stage + "_done"
}

// Stage is one step of the pipeline. Run reads prior outputs from the
// store and returns this stage's output without recording it; the
// runner owns validation and recording.
type Stage interface {
	Name() string
	Run(ctx context.Context, mem *memory.Store) (types.StageOutput, error)
}

// Config holds configuration for running the pipeline.
type Config struct {
	Domain     string
	OutputDir  string
	MaxResults int
	MinWords   int
	MaxWords   int
	Retries    int
	Timeout    time.Duration
	Seed       int64
	Verbose    bool
}

// RunResult is the pipeline's report to the caller. State is always a
// terminal state; FailedStage and Reason are set for failed and
// persist_failed runs. History carries the run snapshot even when
// persistence failed, so a completed run is never silently discarded.
type RunResult struct {
	RunID       uuid.UUID          `json:"run_id"`
	Domain      string             `json:"domain"`
	State       string             `json:"state"`
	FailedStage string             `json:"failed_stage,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	OutputDir   string             `json:"output_dir,omitempty"`
	History     *memory.Snapshot   `json:"history,omitempty"`
	Paper       *types.PaperOutput `json:"paper,omitempty"`
}

// Runner executes the configured stages against a fresh run context.
type Runner struct {
	cfg     Config
	stages  []Stage
	writer  *artifacts.Writer
	store   *db.Store
	printer *observability.Printer
	out     io.Writer
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewRunner wires a Runner. writer is required; store may be nil to run
// without database persistence.
func NewRunner(cfg Config, stages []Stage, writer *artifacts.Writer, store *db.Store) *Runner {
	return &Runner{
		cfg:     cfg,
		stages:  stages,
		writer:  writer,
		store:   store,
		printer: observability.NewPrinter(os.Stdout),
		out:     os.Stdout,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run executes all stages in order and persists the outcome. It never
// returns an error: every failure mode is folded into the RunResult.
func (r *Runner) Run(ctx context.Context) *RunResult {
	runID := uuid.New()
	mem := memory.New(runID, r.cfg.Domain)

	fmt.Fprintf(r.out, "Starting research pipeline (run %s)\n", runID)
	fmt.Fprintf(r.out, "Domain: %s\n\n", r.cfg.Domain)

	if r.store != nil {
		if err := r.store.CreateRun(ctx, runID, r.cfg.Domain); err != nil {
			fmt.Fprintf(r.out, "Warning: failed to create database run: %v\n", err)
		}
	}

	for i, stage := range r.stages {
		// Cancellation is honored at stage boundaries only; a stage
		// that has started is allowed to finish.
		if err := ctx.Err(); err != nil {
			return r.fail(ctx, mem, stage.Name(), ReasonCancelled, err, false)
		}

		fmt.Fprintf(r.out, "Stage %d/%d: %s...\n", i+1, len(r.stages), stage.Name())

		output, err := r.runStage(ctx, stage, mem)
		if err != nil {
			reason := reasonFor(err)
			return r.fail(ctx, mem, stage.Name(), reason, err, reason != ReasonCancelled)
		}

		data, err := json.Marshal(output)
		if err != nil {
			return r.fail(ctx, mem, stage.Name(), ReasonContractViolation, err, true)
		}
		if err := schemas.Validate(stage.Name(), data); err != nil {
			return r.fail(ctx, mem, stage.Name(), ReasonContractViolation, err, true)
		}
		if err := mem.Record(output); err != nil {
			return r.fail(ctx, mem, stage.Name(), ReasonContractViolation, err, true)
		}

		if r.store != nil {
			if err := r.store.SaveStageArtifact(ctx, runID, stage.Name(), output); err != nil {
				fmt.Fprintf(r.out, "Warning: failed to save %s artifact: %v\n", stage.Name(), err)
			}
		}
		if r.cfg.Verbose {
			r.printStageOutput(output)
		}
	}

	return r.persist(ctx, mem)
}

// runStage invokes one stage with bounded retry. Only transient external
// failures are retried; backoff doubles between attempts.
func (r *Runner) runStage(ctx context.Context, stage Stage, mem *memory.Store) (types.StageOutput, error) {
	retries := r.cfg.Retries
	if retries < 0 {
		retries = 0
	}

	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			fmt.Fprintf(r.out, "  %s failed, retrying in %s (attempt %d/%d)...\n",
				stage.Name(), backoff, attempt+1, retries+1)
			if err := r.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}

		output, err := stage.Run(ctx, mem)
		if err == nil {
			return output, nil
		}
		lastErr = err
		if classify(err) != classTransient {
			return nil, err
		}
	}
	return nil, lastErr
}

// persist writes the success artifacts. A persistence failure is its own
// terminal state; the completed history still reaches the caller.
func (r *Runner) persist(ctx context.Context, mem *memory.Store) *RunResult {
	snap := mem.Snapshot()
	paper, err := mem.Paper()
	if err != nil {
		return r.fail(ctx, mem, types.StagePaperWriter, ReasonContractViolation, err, true)
	}

	result := &RunResult{
		RunID:   snap.RunID,
		Domain:  snap.Domain,
		History: snap,
		Paper:   paper,
	}

	written, err := r.writer.Write(ctx, snap, StatePersisted)
	if err != nil {
		result.State = StatePersistFailed
		result.Reason = fmt.Sprintf("%s: %v", ReasonPersistFailure, err)
		r.completeRun(ctx, result)
		fmt.Fprintf(r.out, "\nPipeline completed but persistence failed: %v\n", err)
		return result
	}

	result.State = StatePersisted
	result.OutputDir = written.Dir
	r.completeRun(ctx, result)

	fmt.Fprintf(r.out, "\nAll outputs saved to: %s\n", written.Dir)
	return result
}

// fail builds the failed RunResult, optionally writing diagnostics.
// Cancelled runs skip persistence entirely.
func (r *Runner) fail(ctx context.Context, mem *memory.Store, stage, reason string, cause error, writeDiagnostics bool) *RunResult {
	snap := mem.Snapshot()
	result := &RunResult{
		RunID:       snap.RunID,
		Domain:      snap.Domain,
		State:       StateFailed,
		FailedStage: stage,
		Reason:      reason,
		History:     snap,
	}
	if cause != nil && reason != ReasonCancelled {
		result.Reason = fmt.Sprintf("%s: %v", reason, cause)
	}

	fmt.Fprintf(r.out, "\nPipeline failed at %s: %s\n", stage, result.Reason)

	if writeDiagnostics {
		// Diagnostics are best effort on the failure path.
		written, err := r.writer.WriteDiagnostics(context.WithoutCancel(ctx), snap, StateFailed, stage, result.Reason)
		if err != nil {
			fmt.Fprintf(r.out, "Warning: failed to write diagnostics: %v\n", err)
		} else {
			result.OutputDir = written.Dir
		}
	}
	r.completeRun(ctx, result)
	return result
}

func (r *Runner) completeRun(ctx context.Context, result *RunResult) {
	if r.store == nil {
		return
	}
	err := r.store.CompleteRun(context.WithoutCancel(ctx), result.RunID, result.State, result.FailedStage, result.Reason)
	if err != nil {
		fmt.Fprintf(r.out, "Warning: failed to record run completion: %v\n", err)
	}
}

func (r *Runner) printStageOutput(output types.StageOutput) {
	switch out := output.(type) {
	case *types.ProblemOutput:
		r.printer.PrintProblem(out)
	case *types.HypothesisOutput:
		r.printer.PrintHypothesis(out)
	case *types.ExperimentOutput:
		r.printer.PrintExperiment(out)
	case *types.AnalysisOutput:
		r.printer.PrintAnalysis(out)
	case *types.PaperOutput:
		r.printer.PrintPaper(out)
	}
}

// reasonFor maps a stage error to its failure reason prefix.
func reasonFor(err error) string {
	if errors.Is(err, context.Canceled) {
		return ReasonCancelled
	}
	switch classify(err) {
	case classTransient:
		return ReasonUnavailable
	case classContract:
		return ReasonContractViolation
	default:
		return "stage failure"
	}
}
