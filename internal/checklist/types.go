// Package checklist defines the core checklist model and the single-step runner.
//
// A checklist is an ordered sequence of [Step] values, each wrapping one
// external tool invocation (git, gh, uv, pytest, mypy, ruff). Executing a step
// produces a [Result]; a full traversal accumulates results into a [Run].
//
// Key types:
//   - [Step] - one discrete workflow action with a pass/fail outcome
//   - [Result] - the recorded outcome of executing a step
//   - [Run] - one full checklist traversal for a single task
//   - [Runner] - executes individual steps through a [toolexec.Executor]
//
// The invariant maintained by [Run.Green] is the heart of the tool: a run is
// green if and only if every required step passed.
package checklist

import (
	"time"
)

// StepStatus represents the outcome of a checklist step.
type StepStatus string

const (
	// StatusPending means the step has not been executed yet. Steps after a
	// halting failure remain pending.
	StatusPending StepStatus = "pending"

	// StatusPassed means the step's command exited 0 and its output pattern
	// (if any) matched.
	StatusPassed StepStatus = "passed"

	// StatusFailed means the command exited non-zero, its output pattern did
	// not match, or a required tool binary was missing.
	StatusFailed StepStatus = "failed"

	// StatusSkipped means the step was not applicable, currently only because
	// an optional step's tool binary is not installed.
	StatusSkipped StepStatus = "skipped"
)

// IsValid returns true if the status is one of the defined values.
func (s StepStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPassed, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// Step is one discrete workflow action validated by running an external command.
//
// Steps are resolved from configuration (or a checklist manifest) before
// execution: the command template has already been expanded and split into
// argv form by the time a Step reaches the [Runner].
type Step struct {
	// Name identifies the step (e.g. "lint", "test", "pr").
	Name string

	// Command is the argv to execute. Command[0] is the tool binary.
	Command []string

	// Required marks a step whose failure blocks completion of the run.
	// Failure of a non-required step is recorded but does not halt execution.
	Required bool

	// Pattern is an optional regular expression applied to the command's
	// trimmed stdout. When set, the step only passes if the command exits 0
	// AND the pattern matches. Used for branch naming and review decisions.
	Pattern string

	// Timeout bounds the command's execution. Zero means no timeout.
	Timeout time.Duration

	// Dir is the working directory for the command. Empty means the
	// process working directory.
	Dir string
}

// Result is the recorded outcome of executing a single step.
type Result struct {
	// Step is the step name.
	Step string `json:"step"`

	// Status is the step outcome.
	Status StepStatus `json:"status"`

	// Required mirrors Step.Required so a stored result is self-contained.
	Required bool `json:"required"`

	// ExitCode is the subprocess exit code. 0 on success; 127 when the tool
	// binary was not found.
	ExitCode int `json:"exit_code"`

	// Output is the captured combined output, truncated per output settings.
	// Populated for failures so the operator sees what the tool reported.
	Output string `json:"output,omitempty"`

	// Artifact is the matched portion of stdout when the step declares a
	// pattern. For the pr step this is the PR URL.
	Artifact string `json:"artifact,omitempty"`

	// Note carries a short human-readable explanation for skips and
	// non-exit-code failures (missing binary, pattern mismatch).
	Note string `json:"note,omitempty"`

	// Duration is how long the command ran.
	Duration time.Duration `json:"-"`

	// DurationMS is Duration in milliseconds, for the JSON state files.
	DurationMS int64 `json:"duration_ms"`
}

// Run accumulates the results of one full checklist traversal for a task.
type Run struct {
	// Task is the task key the checklist was run for.
	Task string

	// Results are the recorded step outcomes, in execution order.
	Results []Result

	// HaltedAt names the required step whose failure stopped the run.
	// Empty when the run traversed the whole checklist.
	HaltedAt string
}

// Green reports whether every required step passed. Skipped and failed
// optional steps do not affect the verdict.
func (r *Run) Green() bool {
	for _, res := range r.Results {
		if res.Required && res.Status != StatusPassed {
			return false
		}
	}
	return r.HaltedAt == ""
}

// ExitCode returns the process exit code for the run: 0 when green, 1 otherwise.
func (r *Run) ExitCode() int {
	if r.Green() {
		return 0
	}
	return 1
}

// Failed returns the names of steps that failed, in execution order.
func (r *Run) Failed() []string {
	var failed []string
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res.Step)
		}
	}
	return failed
}

// StepNames returns the names of all executed steps, in execution order.
func (r *Run) StepNames() []string {
	names := make([]string, len(r.Results))
	for i, res := range r.Results {
		names[i] = res.Step
	}
	return names
}
