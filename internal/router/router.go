// Package router maps task stages to the remaining checklist steps.
//
// The router is the central decision point for what still needs to run: given
// a task's current stage it yields either the single next step or the full
// remaining step sequence through to completion. Routing can be driven by the
// built-in default chain ([NewRouter]) or by a checklist manifest
// ([NewRouterFromManifest]).
//
// Key types:
//   - [Router] - configurable stage-to-step router
//   - [ChecklistStep] - one step in a remaining-step sequence
package router

import (
	"errors"

	"flowcheck/internal/manifest"
	"flowcheck/internal/stage"
)

// Sentinel errors for checklist routing.
var (
	// ErrTaskComplete is a sentinel error indicating the task has stage "done"
	// and no step is needed. Callers should skip the task rather than treat
	// this as a failure condition.
	ErrTaskComplete = errors.New("task is complete, no step needed")

	// ErrUnknownStage is a sentinel error indicating the stage value is not
	// recognized. Callers should report this as an error, as it likely
	// indicates a typo in the task stage file.
	ErrUnknownStage = errors.New("unknown stage value")
)

// ChecklistStep represents a single step in the remaining-step sequence.
type ChecklistStep struct {
	// Name is the checklist step to execute. Must correspond to a key in the
	// steps configuration.
	Name string

	// NextStage is the stage to record after this step passes.
	// The final step sets the stage to "done".
	NextStage stage.Stage
}

// Router routes task stages to checklist steps.
//
// Create with [NewRouter] for the built-in chain or [NewRouterFromManifest]
// for manifest-driven routing. The router supports two modes of operation:
//   - Single-step: [Router.NextStep] returns the one step for a stage
//   - Multi-step: [Router.GetChecklist] returns all remaining steps
type Router struct {
	// stageStep maps trigger stage to step name for single-step routing.
	stageStep map[stage.Stage]string

	// chain is the ordered step sequence for full checklist execution.
	chain []ChecklistStep

	// stageChainIndex maps trigger stage to the chain index where
	// execution resumes.
	stageChainIndex map[stage.Stage]int

	// done is the stage that terminates routing.
	done stage.Stage
}

// NewRouter creates a [Router] with the default checklist chain:
// branch → sync → test → lint → typecheck → commit → pr → review.
//
// Each stage resumes the checklist at the step that produces the next stage,
// so a task at "tested" picks up again at lint and runs through to done.
func NewRouter() *Router {
	chain := []ChecklistStep{
		{Name: "branch", NextStage: stage.StageBranched},
		{Name: "sync", NextStage: stage.StageSynced},
		{Name: "test", NextStage: stage.StageTested},
		{Name: "lint", NextStage: stage.StageLinted},
		{Name: "typecheck", NextStage: stage.StageTypechecked},
		{Name: "commit", NextStage: stage.StageCommitted},
		{Name: "pr", NextStage: stage.StagePROpen},
		{Name: "review", NextStage: stage.StageDone},
	}

	r := &Router{
		stageStep:       make(map[stage.Stage]string, len(chain)),
		chain:           chain,
		stageChainIndex: make(map[stage.Stage]int, len(chain)),
		done:            stage.StageDone,
	}

	// Each step's trigger is the stage reached by the previous step.
	trigger := stage.StageStarted
	for i, cs := range chain {
		r.stageStep[trigger] = cs.Name
		r.stageChainIndex[trigger] = i
		trigger = cs.NextStage
	}

	return r
}

// NewRouterFromManifest creates a [Router] from a checklist manifest.
//
// The manifest entries define:
//   - The step chain order (from entry order in the manifest)
//   - Stage-to-step mappings (from trigger_stage fields)
//   - Stage transitions (from next_stage fields)
//
// Entries without a trigger_stage expose no resume point of their own but
// still run as part of the chain. The final entry's next_stage terminates
// routing; a task at that stage yields [ErrTaskComplete].
func NewRouterFromManifest(m *manifest.Manifest) *Router {
	r := &Router{
		stageStep:       make(map[stage.Stage]string),
		stageChainIndex: make(map[stage.Stage]int),
		done:            stage.StageDone,
	}

	seen := make(map[string]bool)
	for _, entry := range m.Entries {
		if seen[entry.Step] {
			// Already in the chain; just add the extra trigger mapping.
			if entry.TriggerStage != "" {
				s := stage.Stage(entry.TriggerStage)
				r.stageStep[s] = entry.Step
				for i, cs := range r.chain {
					if cs.Name == entry.Step {
						r.stageChainIndex[s] = i
						break
					}
				}
			}
			continue
		}
		seen[entry.Step] = true

		r.chain = append(r.chain, ChecklistStep{
			Name:      entry.Step,
			NextStage: stage.Stage(entry.NextStage),
		})

		if entry.TriggerStage != "" {
			s := stage.Stage(entry.TriggerStage)
			r.stageStep[s] = entry.Step
			r.stageChainIndex[s] = len(r.chain) - 1
		}
	}

	if len(r.chain) > 0 {
		r.done = r.chain[len(r.chain)-1].NextStage
	}

	return r
}

// NextStep returns the single step name for the given task stage.
//
// Returns [ErrTaskComplete] for done tasks (caller should skip, not fail).
// Returns [ErrUnknownStage] for unrecognized stage values.
func (r *Router) NextStep(s stage.Stage) (string, error) {
	if s == r.done {
		return "", ErrTaskComplete
	}

	step, ok := r.stageStep[s]
	if !ok {
		return "", ErrUnknownStage
	}
	return step, nil
}

// GetChecklist returns the complete sequence of remaining steps from the
// given stage through to completion.
//
// Returns [ErrTaskComplete] for done tasks (caller should skip, not fail).
// Returns [ErrUnknownStage] for unrecognized stage values.
func (r *Router) GetChecklist(s stage.Stage) ([]ChecklistStep, error) {
	if s == r.done {
		return nil, ErrTaskComplete
	}

	startIdx, ok := r.stageChainIndex[s]
	if !ok {
		return nil, ErrUnknownStage
	}

	remaining := r.chain[startIdx:]
	steps := make([]ChecklistStep, len(remaining))
	copy(steps, remaining)

	return steps, nil
}

// Steps returns the full chain's step names in declared order.
func (r *Router) Steps() []string {
	names := make([]string, len(r.chain))
	for i, cs := range r.chain {
		names[i] = cs.Name
	}
	return names
}

// DoneStage returns the stage that marks a task as complete.
func (r *Router) DoneStage() stage.Stage {
	return r.done
}
