// Package state persists run results as flat JSON files.
//
// The store lives under .flowcheck/run by default: last-run.json summarizes
// the most recent checklist traversal and steps/<name>.json holds each
// step's individual result. The files power the report, resume, and reset
// commands; deleting the directory returns the tool to a clean slate.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"flowcheck/internal/checklist"
)

// LastRun summarizes the most recent checklist run.
type LastRun struct {
	// Task is the task key the checklist was run for.
	Task string `json:"task"`

	// Status is "pass" or "fail".
	Status string `json:"status"`

	// Steps is the ordered list of steps that executed.
	Steps []string `json:"steps"`

	// Failed lists the steps that failed, in execution order.
	Failed []string `json:"failed"`

	// HaltedAt names the required step that stopped the run, if any.
	HaltedAt string `json:"halted_at,omitempty"`
}

// Green reports whether the recorded run passed.
func (l *LastRun) Green() bool {
	return l.Status == "pass"
}

// Store handles reading and writing run state.
type Store struct {
	baseDir string
}

// NewStore creates a store at the given base directory (e.g. .flowcheck/run).
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

// ReadLastRun loads the last run summary. A missing file returns (nil, nil):
// no recorded run is a clean state, not an error.
func (s *Store) ReadLastRun() (*LastRun, error) {
	f, err := os.Open(s.lastRunPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening last run file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var last LastRun
	if err := json.NewDecoder(f).Decode(&last); err != nil {
		return nil, fmt.Errorf("decoding last run: %w", err)
	}
	return &last, nil
}

// WriteLastRun saves the run summary.
func (s *Store) WriteLastRun(last LastRun) error {
	return s.writeJSON(s.lastRunPath(), last)
}

// RecordRun derives and saves the [LastRun] summary for a completed run.
func (s *Store) RecordRun(run *checklist.Run) error {
	last := LastRun{
		Task:     run.Task,
		Status:   "pass",
		Steps:    run.StepNames(),
		Failed:   run.Failed(),
		HaltedAt: run.HaltedAt,
	}
	if !run.Green() {
		last.Status = "fail"
	}
	return s.WriteLastRun(last)
}

// WriteStepResult saves a step's individual result.
func (s *Store) WriteStepResult(res checklist.Result) error {
	return s.writeJSON(filepath.Join(s.baseDir, "steps", res.Step+".json"), res)
}

// ReadStepResult loads a step's stored result. A missing file returns
// (nil, nil).
func (s *Store) ReadStepResult(stepName string) (*checklist.Result, error) {
	f, err := os.Open(filepath.Join(s.baseDir, "steps", stepName+".json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var res checklist.Result
	if err := json.NewDecoder(f).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FailedSteps returns the steps that failed in the last run.
func (s *Store) FailedSteps() ([]string, error) {
	last, err := s.ReadLastRun()
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, nil
	}
	return last.Failed, nil
}

// Reset clears the state directory.
func (s *Store) Reset() error {
	return os.RemoveAll(s.baseDir)
}

func (s *Store) writeJSON(path string, v any) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
