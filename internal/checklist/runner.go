package checklist

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"flowcheck/internal/toolexec"
)

// Runner executes individual checklist steps through a [toolexec.Executor].
//
// Running a step never returns an error: every outcome, including a missing
// tool binary, is expressed as a [Result] status so the caller can apply the
// required/optional policy uniformly.
type Runner struct {
	exec toolexec.Executor

	// Dir is the working directory for step commands. Empty means the
	// process working directory.
	Dir string
}

// NewRunner creates a [Runner] backed by the given executor.
func NewRunner(exec toolexec.Executor) *Runner {
	return &Runner{exec: exec}
}

// RunStep executes one step and interprets the raw result.
//
// The step passes when its command exits 0 and, if a pattern is declared,
// the pattern matches the trimmed stdout. A missing tool binary fails a
// required step and skips an optional one, so an uninstalled advisory tool
// does not poison an otherwise compliant run.
func (r *Runner) RunStep(ctx context.Context, step Step) Result {
	start := time.Now()

	dir := step.Dir
	if dir == "" {
		dir = r.Dir
	}

	raw := r.exec.Run(ctx, toolexec.Invocation{
		Step:    step.Name,
		Argv:    step.Command,
		Dir:     dir,
		Timeout: step.Timeout,
	})

	res := Result{
		Step:     step.Name,
		Required: step.Required,
		ExitCode: raw.ExitCode,
		Duration: time.Since(start),
	}
	res.DurationMS = res.Duration.Milliseconds()

	if raw.NotFound {
		if step.Required {
			res.Status = StatusFailed
			res.Note = raw.Combined
		} else {
			res.Status = StatusSkipped
			res.Note = fmt.Sprintf("%s not installed, step skipped", toolName(step.Command))
		}
		return res
	}

	if raw.ExitCode != 0 {
		res.Status = StatusFailed
		res.Output = raw.Combined
		return res
	}

	if step.Pattern != "" {
		re, err := regexp.Compile(step.Pattern)
		if err != nil {
			// Patterns are validated at resolution time; a compile failure
			// here means the step was constructed by hand.
			res.Status = StatusFailed
			res.Note = fmt.Sprintf("invalid pattern: %v", err)
			return res
		}

		stdout := strings.TrimSpace(raw.Stdout)
		match := re.FindString(stdout)
		if match == "" {
			res.Status = StatusFailed
			res.Output = raw.Combined
			res.Note = fmt.Sprintf("output %q did not match %s", firstLine(stdout), step.Pattern)
			return res
		}
		res.Artifact = match
	}

	res.Status = StatusPassed
	return res
}

func toolName(argv []string) string {
	if len(argv) == 0 {
		return "tool"
	}
	return argv[0]
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
