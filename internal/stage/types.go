// Package stage tracks how far each task has progressed through the workflow.
//
// Progress persists in a small YAML file mapping task keys to stages. The
// checklist runner reads a task's stage to decide which steps remain, and
// advances the stage after each passing step. The file is the only durable
// artifact of the tool besides the JSON run state.
//
// Key types:
//   - [Stage] - a named point in the workflow (branched, tested, ...)
//   - [Reader] - loads the task file, with path auto-discovery
//   - [Writer] - updates a task's stage after a passing step
package stage

// Stage represents a task's position in the workflow.
//
// The zero-progress stage is [StageStarted]; a task absent from the task file
// is treated as started. [StageDone] means the checklist has been fully
// satisfied and no step remains.
type Stage string

const (
	StageStarted     Stage = "started"
	StageBranched    Stage = "branched"
	StageSynced      Stage = "synced"
	StageTested      Stage = "tested"
	StageLinted      Stage = "linted"
	StageTypechecked Stage = "typechecked"
	StageCommitted   Stage = "committed"
	StagePROpen      Stage = "pr-open"
	StageDone        Stage = "done"
)

// KnownStages lists all valid stages in workflow order.
var KnownStages = []Stage{
	StageStarted,
	StageBranched,
	StageSynced,
	StageTested,
	StageLinted,
	StageTypechecked,
	StageCommitted,
	StagePROpen,
	StageDone,
}

// IsValid returns true if the stage is one of the known values.
//
// Custom manifests may introduce their own stage names, so validity here
// only applies to the default chain; the Writer accepts any non-empty stage
// when a manifest is in play.
func (s Stage) IsValid() bool {
	for _, known := range KnownStages {
		if s == known {
			return true
		}
	}
	return false
}

// TaskFile is the on-disk structure of the task stage file.
type TaskFile struct {
	// Tasks maps task key to current stage.
	Tasks map[string]Stage `yaml:"tasks"`
}
