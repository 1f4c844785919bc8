// Package toolexec spawns external tool processes and captures their results.
//
// Every checklist step reduces to one subprocess invocation: run the tool,
// capture its output, and read its exit code. This package isolates that
// mechanism behind the [Executor] interface so the checklist runner can be
// tested without spawning real processes.
//
// Key types:
//   - [Executor] - interface for running one tool invocation
//   - [CommandRunner] - production implementation using os/exec
//   - [MockExecutor] - scripted implementation for tests
package toolexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ExitCodeNotFound is reported when the tool binary is not in PATH,
// matching the conventional shell "command not found" code.
const ExitCodeNotFound = 127

// defaultMaxOutputBytes bounds captured output so a chatty tool cannot
// balloon the run state files.
const defaultMaxOutputBytes = 64 * 1024

// Invocation describes one external command execution.
type Invocation struct {
	// Step is the checklist step name, used for labeling only.
	Step string

	// Argv is the command to execute. Argv[0] is the tool binary.
	Argv []string

	// Dir is the working directory. Empty means the process working directory.
	Dir string

	// Timeout bounds execution. Zero means no timeout.
	Timeout time.Duration
}

// ExecResult is the raw outcome of a tool invocation.
type ExecResult struct {
	// ExitCode is the subprocess exit code, 0 on success.
	ExitCode int

	// Stdout is the captured standard output, untrimmed.
	Stdout string

	// Combined is stdout and stderr interleaved, truncated to the output limit.
	Combined string

	// NotFound is true when the tool binary is not installed.
	NotFound bool
}

// Executor runs external tool commands.
//
// Implementations must be safe for sequential reuse; the checklist runner
// issues one invocation at a time and blocks until it completes.
type Executor interface {
	Run(ctx context.Context, inv Invocation) ExecResult
}

// CommandRunner is the production [Executor] backed by os/exec.
type CommandRunner struct {
	// MaxOutputBytes caps the Combined output. Zero means the default cap.
	MaxOutputBytes int
}

// NewCommandRunner creates a [CommandRunner] with the default output cap.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{MaxOutputBytes: defaultMaxOutputBytes}
}

// Run executes the invocation and returns its result.
//
// The tool binary is probed with [exec.LookPath] first so a missing tool is
// reported as NotFound rather than a generic start failure. A non-zero exit
// is not an error from Run's perspective; it is a result the caller
// interprets. Context cancellation and timeout surface as the subprocess
// being killed, which yields a non-zero exit code.
func (r *CommandRunner) Run(ctx context.Context, inv Invocation) ExecResult {
	if len(inv.Argv) == 0 {
		return ExecResult{ExitCode: 1, Combined: "empty command"}
	}

	if _, err := exec.LookPath(inv.Argv[0]); err != nil {
		return ExecResult{
			ExitCode: ExitCodeNotFound,
			NotFound: true,
			Combined: fmt.Sprintf("%s: not found in PATH", inv.Argv[0]),
		}
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir

	var stdout, combined bytes.Buffer
	cmd.Stdout = multiWriter(&stdout, &combined)
	cmd.Stderr = &combined

	err := cmd.Run()

	res := ExecResult{
		Stdout:   stdout.String(),
		Combined: r.truncate(combined.String()),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = 1
			if res.Combined == "" {
				res.Combined = err.Error()
			}
		}
	}

	return res
}

func (r *CommandRunner) truncate(s string) string {
	limit := r.MaxOutputBytes
	if limit <= 0 {
		limit = defaultMaxOutputBytes
	}
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... (output truncated)"
}

// multiWriter tees writes into both buffers.
func multiWriter(a, b *bytes.Buffer) writerFunc {
	return func(p []byte) (int, error) {
		a.Write(p)
		b.Write(p)
		return len(p), nil
	}
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// MockExecutor is a scripted [Executor] for tests.
//
// Results are looked up by step name; unscripted steps return [Default].
// Every invocation is recorded so tests can assert on execution order and
// verify that halted runs never reached later steps.
type MockExecutor struct {
	// Results maps step name to the scripted result.
	Results map[string]ExecResult

	// Default is returned for steps not present in Results.
	Default ExecResult

	// Recorded collects every invocation in order.
	Recorded []Invocation
}

// Run records the invocation and returns the scripted result.
func (m *MockExecutor) Run(_ context.Context, inv Invocation) ExecResult {
	m.Recorded = append(m.Recorded, inv)
	if res, ok := m.Results[inv.Step]; ok {
		return res
	}
	return m.Default
}

// RecordedSteps returns the step names of all recorded invocations in order.
func (m *MockExecutor) RecordedSteps() []string {
	steps := make([]string, len(m.Recorded))
	for i, inv := range m.Recorded {
		steps[i] = inv.Step
	}
	return steps
}

// RecordedCommands returns each recorded invocation's argv joined with spaces.
func (m *MockExecutor) RecordedCommands() []string {
	cmds := make([]string, len(m.Recorded))
	for i, inv := range m.Recorded {
		cmds[i] = strings.Join(inv.Argv, " ")
	}
	return cmds
}
