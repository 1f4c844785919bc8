// Package manifest reads checklist manifest files.
//
// The checklist manifest (typically at .flowcheck/checklist.csv) defines a
// custom step chain, replacing the built-in uv/pytest/mypy/ruff workflow.
// Each row names a step, the command that validates it, and the stage
// transition it drives.
//
// CSV format:
//
//	step,command,required,trigger_stage,next_stage,pattern
//	branch,git rev-parse --abbrev-ref HEAD,true,started,branched,^(feature|fix)/.+$
//	sync,uv sync,true,branched,synced,
//	test,uv run pytest,true,synced,tested,
//	commit,git diff-index --quiet HEAD --,true,tested,committed,
//
// Rows are ordered by checklist execution sequence. A step may appear
// multiple times with different trigger_stage values when several stages
// should resume at the same step.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultManifestPath is the canonical manifest location relative to the
// project root.
const DefaultManifestPath = ".flowcheck/checklist.csv"

// Entry represents a single row in the checklist manifest CSV.
type Entry struct {
	// Step is the checklist step name, matching keys in the steps configuration.
	Step string

	// Command is the command line to execute, split on whitespace at
	// resolution time. Empty means the step keeps its configured command.
	Command string

	// Required marks a step whose failure blocks the run. Defaults to true
	// when the column is empty.
	Required bool

	// TriggerStage is the task stage that resumes the checklist at this step.
	// Empty for steps that are only reached by passing the previous step.
	TriggerStage string

	// NextStage is the stage to record after this step passes.
	NextStage string

	// Pattern is an optional regular expression the command's stdout must match.
	Pattern string
}

// Manifest holds all entries parsed from a manifest CSV file, in checklist
// execution order.
type Manifest struct {
	Entries []Entry
}

// ReadFromFile reads and parses a checklist manifest CSV file.
func ReadFromFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	return readFromReader(f)
}

// ReadFromString parses a checklist manifest from a CSV string.
// This is useful for testing and for embedding manifest data.
func ReadFromString(data string) (*Manifest, error) {
	return readFromReader(strings.NewReader(data))
}

func readFromReader(r io.Reader) (*Manifest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}

	colIndex := buildColumnIndex(header)
	if err := validateColumns(colIndex); err != nil {
		return nil, err
	}

	var entries []Entry
	lineNum := 1 // header was line 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest line %d: %w", lineNum, err)
		}

		entry := Entry{
			Step:         getField(record, colIndex, "step"),
			Command:      getField(record, colIndex, "command"),
			TriggerStage: getField(record, colIndex, "trigger_stage"),
			NextStage:    getField(record, colIndex, "next_stage"),
			Pattern:      getField(record, colIndex, "pattern"),
		}

		if entry.Step == "" {
			return nil, fmt.Errorf("manifest line %d: step name is required", lineNum)
		}
		if entry.NextStage == "" {
			return nil, fmt.Errorf("manifest line %d: next_stage is required", lineNum)
		}

		required, err := parseRequired(getField(record, colIndex, "required"))
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", lineNum, err)
		}
		entry.Required = required

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("manifest contains no checklist entries")
	}

	return &Manifest{Entries: entries}, nil
}

// parseRequired interprets the required column. Empty defaults to true:
// a manifest author opts steps OUT of blocking, never accidentally in.
func parseRequired(field string) (bool, error) {
	if field == "" {
		return true, nil
	}
	required, err := strconv.ParseBool(field)
	if err != nil {
		return false, fmt.Errorf("invalid required value %q", field)
	}
	return required, nil
}

// requiredColumns are the columns that must be present in the manifest CSV.
var requiredColumns = []string{"step", "next_stage"}

func buildColumnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return index
}

func validateColumns(colIndex map[string]int) error {
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return fmt.Errorf("manifest missing required column: %s", col)
		}
	}
	return nil
}

func getField(record []string, colIndex map[string]int, column string) string {
	idx, ok := colIndex[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Steps returns the unique step names in checklist order.
// The order is determined by first appearance in the manifest.
func (m *Manifest) Steps() []string {
	seen := make(map[string]bool)
	var steps []string
	for _, e := range m.Entries {
		if !seen[e.Step] {
			seen[e.Step] = true
			steps = append(steps, e.Step)
		}
	}
	return steps
}

// GetEntry returns the first entry matching the given step name.
// Returns nil if not found.
func (m *Manifest) GetEntry(name string) *Entry {
	for _, e := range m.Entries {
		if e.Step == name {
			return &e
		}
	}
	return nil
}

// HasStep returns true if the manifest contains the given step.
func (m *Manifest) HasStep(name string) bool {
	return m.GetEntry(name) != nil
}
