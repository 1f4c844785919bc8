package stage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Writer persists task stage updates to the YAML task file.
type Writer struct {
	tasksPath string
}

// NewWriter creates a [Writer] that auto-discovers the task file under
// basePath, matching [NewReader] so reads and writes hit the same file.
func NewWriter(basePath string) *Writer {
	return &Writer{tasksPath: ResolvePath(basePath, "")}
}

// NewWriterWithPath creates a [Writer] for an explicit task file path.
func NewWriterWithPath(basePath, tasksPath string) *Writer {
	return &Writer{tasksPath: ResolvePath(basePath, tasksPath)}
}

// UpdateStage sets a new stage for a task, creating the file if needed.
//
// Empty stages are rejected. Stages outside [KnownStages] are accepted
// because manifest-driven checklists may define their own; validation of
// the default chain happens in the router.
func (w *Writer) UpdateStage(taskKey string, newStage Stage) error {
	if newStage == "" {
		return fmt.Errorf("invalid stage for task %s: empty", taskKey)
	}

	tf, err := w.read()
	if err != nil {
		return err
	}

	tf.Tasks[taskKey] = newStage

	return w.write(tf)
}

// RemoveTask deletes a task's entry. Removing an untracked task is a no-op.
func (w *Writer) RemoveTask(taskKey string) error {
	tf, err := w.read()
	if err != nil {
		return err
	}

	delete(tf.Tasks, taskKey)

	return w.write(tf)
}

func (w *Writer) read() (*TaskFile, error) {
	data, err := os.ReadFile(w.tasksPath)
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

func (w *Writer) write(tf *TaskFile) error {
	if err := os.MkdirAll(filepath.Dir(w.tasksPath), 0755); err != nil {
		return fmt.Errorf("failed to create task file directory: %w", err)
	}

	data, err := yaml.Marshal(tf)
	if err != nil {
		return fmt.Errorf("failed to marshal task file: %w", err)
	}

	if err := os.WriteFile(w.tasksPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write task file: %w", err)
	}

	return nil
}
