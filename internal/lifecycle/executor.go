// Package lifecycle orchestrates full checklist runs from current stage to done.
//
// The package provides [Executor], which takes a task from its current stage
// through the remaining checklist steps in order. Execution is strictly
// sequential and fail-fast: a required step that fails halts the run before
// any later step is invoked, because later steps depend on the repository
// state earlier ones validate. Each passing step advances the task's
// recorded stage.
//
// Key concepts:
//   - Remaining steps are determined by [router.Router.GetChecklist]
//   - Each step runs a command, then updates the stage via [StageWriter]
//   - Progress can be observed via [ProgressCallback] and [ResultCallback]
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"flowcheck/internal/checklist"
	"flowcheck/internal/router"
	"flowcheck/internal/stage"
	"flowcheck/internal/state"
)

// ErrRunFailed is a sentinel error indicating a required step failed and the
// run halted. The accompanying [checklist.Run] carries the per-step detail.
var ErrRunFailed = errors.New("checklist run failed")

// StepRunner is the interface for executing individual checklist steps.
//
// RunStep executes a fully-resolved step and reports its outcome as a
// [checklist.Result]; it never errors. The [checklist.Runner] type
// implements this interface.
type StepRunner interface {
	RunStep(ctx context.Context, step checklist.Step) checklist.Result
}

// StepResolver is the interface for turning step names into executable steps.
//
// ResolveStep expands the named step's configured command for the given task
// key. The [config.Config] type implements this interface.
type StepResolver interface {
	ResolveStep(name, taskKey string) (checklist.Step, error)
}

// StageReader is the interface for looking up task stage.
//
// GetTaskStage retrieves the current [stage.Stage] for a task key. It
// returns [stage.ErrTaskNotFound] for untracked tasks, which the executor
// maps to [stage.StageStarted].
type StageReader interface {
	GetTaskStage(taskKey string) (stage.Stage, error)
}

// StageWriter is the interface for persisting task stage updates.
//
// UpdateStage records a new [stage.Stage] after a step completes.
type StageWriter interface {
	UpdateStage(taskKey string, newStage stage.Stage) error
}

// Recorder is the interface for persisting run results.
//
// The [state.Store] type implements this interface. A nil recorder disables
// persistence.
type Recorder interface {
	WriteStepResult(res checklist.Result) error
	RecordRun(run *checklist.Run) error
}

// ProgressCallback is invoked before each checklist step begins execution.
//
// The callback receives stepIndex (1-based), the totalSteps count, and the
// resolved step. This enables progress reporting in the terminal.
type ProgressCallback func(stepIndex, totalSteps int, step checklist.Step)

// ResultCallback is invoked after each checklist step completes.
type ResultCallback func(res checklist.Result)

// Executor orchestrates a complete checklist run from current stage to done.
//
// Executor uses dependency injection for testability: [StepRunner] executes
// commands, [StepResolver] expands configuration, [StageReader] looks up the
// current stage, and [StageWriter] persists stage updates. Use [NewExecutor]
// to create an instance and [Execute] to run the checklist.
type Executor struct {
	runner      StepRunner
	resolver    StepResolver
	stageReader StageReader
	stageWriter StageWriter
	router      *router.Router
	recorder    Recorder
	onProgress  ProgressCallback
	onResult    ResultCallback
}

// NewExecutor creates an Executor with the required dependencies.
//
// The executor uses the default checklist router; call [SetRouter] to use a
// manifest-driven router instead. Recording and callbacks are off by
// default; use the corresponding setters to enable them.
func NewExecutor(runner StepRunner, resolver StepResolver, reader StageReader, writer StageWriter) *Executor {
	return &Executor{
		runner:      runner,
		resolver:    resolver,
		stageReader: reader,
		stageWriter: writer,
		router:      router.NewRouter(),
	}
}

// SetRouter configures a custom [router.Router] for stage-to-step mapping.
// Passing nil restores the default router.
func (e *Executor) SetRouter(r *router.Router) {
	if r == nil {
		r = router.NewRouter()
	}
	e.router = r
}

// SetRecorder configures run-state persistence. Pass nil to disable.
func (e *Executor) SetRecorder(rec Recorder) {
	e.recorder = rec
}

// SetProgressCallback configures an optional pre-step callback.
func (e *Executor) SetProgressCallback(cb ProgressCallback) {
	e.onProgress = cb
}

// SetResultCallback configures an optional post-step callback.
func (e *Executor) SetResultCallback(cb ResultCallback) {
	e.onResult = cb
}

// Execute runs the remaining checklist for a task, from its current stage
// through to done.
//
// Execute looks up the task's stage, determines the remaining steps via the
// router, and runs each in declared order. After a step passes (or is
// skipped, or fails while optional) the task's stage advances so a later
// invocation resumes past it. A required step that fails halts the run
// immediately: subsequent steps are never invoked, the partial run is
// recorded, and the returned error wraps [ErrRunFailed].
//
// For tasks already done, Execute returns [router.ErrTaskComplete]. An
// unrecognized stage returns [router.ErrUnknownStage]; remediation is
// manual, by fixing the task stage file.
func (e *Executor) Execute(ctx context.Context, taskKey string) (*checklist.Run, error) {
	currentStage, err := e.currentStage(taskKey)
	if err != nil {
		return nil, err
	}

	steps, err := e.router.GetChecklist(currentStage)
	if err != nil {
		return nil, err
	}

	run := &checklist.Run{Task: taskKey}
	totalSteps := len(steps)

	for i, cs := range steps {
		step, err := e.resolver.ResolveStep(cs.Name, taskKey)
		if err != nil {
			return run, err
		}

		if e.onProgress != nil {
			e.onProgress(i+1, totalSteps, step)
		}

		res := e.runner.RunStep(ctx, step)
		run.Results = append(run.Results, res)

		if e.recorder != nil {
			if err := e.recorder.WriteStepResult(res); err != nil {
				return run, fmt.Errorf("recording result for %s: %w", res.Step, err)
			}
		}

		if e.onResult != nil {
			e.onResult(res)
		}

		if res.Status == checklist.StatusFailed && step.Required {
			run.HaltedAt = step.Name
			if err := e.record(run); err != nil {
				return run, err
			}
			return run, fmt.Errorf("%w: required step %s exited %d", ErrRunFailed, step.Name, res.ExitCode)
		}

		// The stage advances for passed, skipped, and failed-but-optional
		// steps alike; only a halting failure leaves the task in place.
		if err := e.stageWriter.UpdateStage(taskKey, cs.NextStage); err != nil {
			return run, err
		}
	}

	if err := e.record(run); err != nil {
		return run, err
	}

	return run, nil
}

// GetSteps returns the remaining checklist steps for a task without
// executing them.
//
// GetSteps provides dry-run preview functionality, showing which steps would
// run and what stage transitions would occur. Returns [router.ErrTaskComplete]
// for tasks already done.
func (e *Executor) GetSteps(taskKey string) ([]router.ChecklistStep, error) {
	currentStage, err := e.currentStage(taskKey)
	if err != nil {
		return nil, err
	}

	return e.router.GetChecklist(currentStage)
}

// currentStage resolves a task's stage, treating untracked tasks as started.
func (e *Executor) currentStage(taskKey string) (stage.Stage, error) {
	s, err := e.stageReader.GetTaskStage(taskKey)
	if errors.Is(err, stage.ErrTaskNotFound) {
		return stage.StageStarted, nil
	}
	if err != nil {
		return "", err
	}
	return s, nil
}

func (e *Executor) record(run *checklist.Run) error {
	if e.recorder == nil {
		return nil
	}
	if err := e.recorder.RecordRun(run); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// assert interface satisfaction at compile time.
var _ Recorder = (*state.Store)(nil)
