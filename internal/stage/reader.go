package stage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultTasksPath is the canonical location of the task stage file
// relative to the project root.
const DefaultTasksPath = ".flowcheck/tasks.yaml"

// LegacyTasksPath is the root-level fallback location.
const LegacyTasksPath = "flowcheck-tasks.yaml"

// TasksPathEnv overrides all path discovery when set.
const TasksPathEnv = "FLOWCHECK_TASKS_PATH"

// taskPaths lists the paths to search (in priority order) when
// auto-discovering the task file.
var taskPaths = []string{
	DefaultTasksPath,
	LegacyTasksPath,
}

// ErrTaskNotFound is a sentinel error indicating the task key has no entry
// in the task file. Callers typically treat this as [StageStarted] rather
// than a failure: a task the tool has never seen is simply at the beginning.
var ErrTaskNotFound = errors.New("task not tracked")

// ResolvePath discovers the task file location.
//
// Resolution order:
//  1. FLOWCHECK_TASKS_PATH environment variable (used as-is if set)
//  2. Explicit tasksPath parameter (if non-empty)
//  3. Auto-discovery: .flowcheck/tasks.yaml, then flowcheck-tasks.yaml
//     under basePath
//  4. Falls back to the default path (created on first write)
func ResolvePath(basePath, tasksPath string) string {
	if envPath := os.Getenv(TasksPathEnv); envPath != "" {
		return envPath
	}

	if tasksPath != "" {
		return tasksPath
	}

	for _, p := range taskPaths {
		fullPath := filepath.Join(basePath, p)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath
		}
	}

	return filepath.Join(basePath, DefaultTasksPath)
}

// Reader reads task stages from the YAML task file.
//
// Use [NewReader] for auto-discovery or [NewReaderWithPath] for an explicit
// path.
type Reader struct {
	tasksPath string
}

// NewReader creates a [Reader] that auto-discovers the task file under
// basePath. Pass an empty string to use the current working directory.
func NewReader(basePath string) *Reader {
	return &Reader{tasksPath: ResolvePath(basePath, "")}
}

// NewReaderWithPath creates a [Reader] that uses the specified task file
// path. The FLOWCHECK_TASKS_PATH environment variable still takes priority.
func NewReaderWithPath(basePath, tasksPath string) *Reader {
	return &Reader{tasksPath: ResolvePath(basePath, tasksPath)}
}

// Read reads and parses the complete task file.
//
// A missing file is not an error: it yields an empty [TaskFile], since a
// project with no tracked tasks is a valid starting state.
func (r *Reader) Read() (*TaskFile, error) {
	data, err := os.ReadFile(r.tasksPath)
	if os.IsNotExist(err) {
		return &TaskFile{Tasks: map[string]Stage{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}
	if tf.Tasks == nil {
		tf.Tasks = map[string]Stage{}
	}

	return &tf, nil
}

// GetTaskStage returns the [Stage] for a specific task key.
//
// Returns [ErrTaskNotFound] for untracked tasks; callers that want
// start-from-the-beginning semantics should map that to [StageStarted].
func (r *Reader) GetTaskStage(taskKey string) (Stage, error) {
	tf, err := r.Read()
	if err != nil {
		return "", err
	}

	s, ok := tf.Tasks[taskKey]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, taskKey)
	}

	return s, nil
}

// TaskKeys returns all tracked task keys, sorted.
func (r *Reader) TaskKeys() ([]string, error) {
	tf, err := r.Read()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(tf.Tasks))
	for k := range tf.Tasks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
