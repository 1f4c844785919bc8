package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcheck/internal/checklist"
	"flowcheck/internal/router"
	"flowcheck/internal/stage"
	"flowcheck/internal/state"
)

func newTestPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(&buf)
	p.SetNoColor(true)
	return p, &buf
}

func TestStep_Passed(t *testing.T) {
	p, buf := newTestPrinter()

	p.Step(checklist.Result{
		Step:     "lint",
		Status:   checklist.StatusPassed,
		Duration: 1200 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "✓ lint")
	assert.Contains(t, out, "1.2s")
}

func TestStep_PassedWithArtifact(t *testing.T) {
	p, buf := newTestPrinter()

	p.Step(checklist.Result{
		Step:     "pr",
		Status:   checklist.StatusPassed,
		Artifact: "https://github.com/acme/widgets/pull/42",
	})

	assert.Contains(t, buf.String(), "https://github.com/acme/widgets/pull/42")
}

func TestStep_Failed(t *testing.T) {
	p, buf := newTestPrinter()

	p.Step(checklist.Result{
		Step:     "lint",
		Status:   checklist.StatusFailed,
		ExitCode: 1,
		Output:   "app.py:3:1: F401 'os' imported but unused",
	})

	out := buf.String()
	assert.Contains(t, out, "✗ lint failed (exit 1)")
	assert.Contains(t, out, "F401")
}

func TestStep_Skipped(t *testing.T) {
	p, buf := newTestPrinter()

	p.Step(checklist.Result{
		Step:   "review",
		Status: checklist.StatusSkipped,
		Note:   "gh not installed, step skipped",
	})

	out := buf.String()
	assert.Contains(t, out, "○ review skipped")
	assert.Contains(t, out, "gh not installed")
}

func TestPrintOutput_TruncatesLines(t *testing.T) {
	p, buf := newTestPrinter()
	p.TruncateLines = 3

	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "error line"
	}
	p.Step(checklist.Result{
		Step:     "test",
		Status:   checklist.StatusFailed,
		ExitCode: 1,
		Output:   strings.Join(lines, "\n"),
	})

	out := buf.String()
	assert.Contains(t, out, "... (7 more lines)")
	assert.Equal(t, 3, strings.Count(out, "error line"))
}

func TestPrintOutput_TruncatesLength(t *testing.T) {
	p, buf := newTestPrinter()
	p.TruncateLength = 20

	p.Step(checklist.Result{
		Step:     "test",
		Status:   checklist.StatusFailed,
		ExitCode: 1,
		Output:   strings.Repeat("x", 100),
	})

	out := buf.String()
	assert.Contains(t, out, "xxx...")
	assert.NotContains(t, out, strings.Repeat("x", 25))
}

func TestPrintOutput_TinyTruncateLength(t *testing.T) {
	// Lengths below the ellipsis width must hard-cut instead of slicing
	// out of range.
	const line = "a long failing line"
	for _, length := range []int{1, 2, 3} {
		p, buf := newTestPrinter()
		p.TruncateLength = length

		p.Step(checklist.Result{
			Step:     "test",
			Status:   checklist.StatusFailed,
			ExitCode: 1,
			Output:   line,
		})

		assert.Contains(t, buf.String(), "    "+line[:length]+"\n")
	}
}

func TestSummary_Green(t *testing.T) {
	p, buf := newTestPrinter()

	run := &checklist.Run{
		Task: "6-5",
		Results: []checklist.Result{
			{Step: "lint", Status: checklist.StatusPassed, Required: true},
		},
	}
	p.Summary(run, 3*time.Second)

	out := buf.String()
	assert.Contains(t, out, "CHECKLIST GREEN")
	assert.Contains(t, out, "Task: 6-5")
	assert.Contains(t, out, "Total: 3s")
}

func TestSummary_Halted(t *testing.T) {
	p, buf := newTestPrinter()

	run := &checklist.Run{
		Task: "6-5",
		Results: []checklist.Result{
			{Step: "lint", Status: checklist.StatusFailed, Required: true, ExitCode: 1},
		},
		HaltedAt: "lint",
	}
	p.Summary(run, time.Second)

	out := buf.String()
	assert.Contains(t, out, "CHECKLIST FAILED")
	assert.Contains(t, out, "Halted at: lint")
	assert.Contains(t, out, "Failed: lint")
}

func TestRunHeader(t *testing.T) {
	p, buf := newTestPrinter()

	p.RunHeader("6-5", []router.ChecklistStep{
		{Name: "lint", NextStage: stage.StageLinted},
		{Name: "typecheck", NextStage: stage.StageTypechecked},
	})

	out := buf.String()
	assert.Contains(t, out, "Checklist: 6-5")
	assert.Contains(t, out, "lint → typecheck")
}

func TestProgress(t *testing.T) {
	p, buf := newTestPrinter()

	p.Progress(2, 8, checklist.Step{Name: "sync", Command: []string{"uv", "sync"}})

	out := buf.String()
	assert.Contains(t, out, "[2/8] sync")
	assert.Contains(t, out, "$ uv sync")
}

func TestPlan(t *testing.T) {
	p, buf := newTestPrinter()

	p.Plan("6-5", []router.ChecklistStep{
		{Name: "commit", NextStage: stage.StageCommitted},
		{Name: "pr", NextStage: stage.StagePROpen},
	})

	out := buf.String()
	assert.Contains(t, out, "Plan: 6-5")
	assert.Contains(t, out, "1. commit")
	assert.Contains(t, out, "2. pr")
	assert.Contains(t, out, string(stage.StagePROpen))
}

func TestStages(t *testing.T) {
	p, buf := newTestPrinter()

	p.Stages(map[string]stage.Stage{
		"7-1": stage.StageTested,
		"6-5": stage.StageDone,
	})

	out := buf.String()
	// Sorted by key, done tasks get a check mark.
	require.Less(t, strings.Index(out, "6-5"), strings.Index(out, "7-1"))
	assert.Contains(t, out, "✓ 6-5")
	assert.Contains(t, out, "tested")
}

func TestStages_Empty(t *testing.T) {
	p, buf := newTestPrinter()

	p.Stages(nil)
	assert.Contains(t, buf.String(), "No tracked tasks.")
}

func TestLastRunReport(t *testing.T) {
	p, buf := newTestPrinter()

	p.LastRunReport(&state.LastRun{
		Task:     "6-5",
		Status:   "fail",
		Steps:    []string{"branch", "sync", "test"},
		Failed:   []string{"test"},
		HaltedAt: "test",
	})

	out := buf.String()
	assert.Contains(t, out, "last run: fail")
	assert.Contains(t, out, "branch → sync → test")
	assert.Contains(t, out, "Halted at: test")
	assert.Contains(t, out, "- test")
}

func TestLastRunReport_NoState(t *testing.T) {
	p, buf := newTestPrinter()

	p.LastRunReport(nil)
	assert.Contains(t, buf.String(), "No run state found.")
}

func TestQueueSummary(t *testing.T) {
	p, buf := newTestPrinter()

	outcomes := []TaskOutcome{
		{Key: "6-5", Green: true, Duration: 40 * time.Second},
		{Key: "6-6", Green: false, Duration: 10 * time.Second, FailedAt: "lint"},
	}
	p.QueueSummary(outcomes, []string{"6-5", "6-6", "6-7"}, 50*time.Second)

	out := buf.String()
	assert.Contains(t, out, "QUEUE STOPPED")
	assert.Contains(t, out, "Completed: 1 | Failed: 1 | Remaining: 1")
	assert.Contains(t, out, "failed at lint")
	assert.Contains(t, out, "(skipped)")
}

func TestQueueSummary_AllGreen(t *testing.T) {
	p, buf := newTestPrinter()

	outcomes := []TaskOutcome{
		{Key: "6-5", Green: true, Duration: 40 * time.Second},
	}
	p.QueueSummary(outcomes, []string{"6-5"}, 40*time.Second)

	assert.Contains(t, buf.String(), "ALL TASKS GREEN")
}

func TestStepList(t *testing.T) {
	p, buf := newTestPrinter()

	p.StepList([]string{"lint", "review"}, map[string]bool{"lint": true})

	out := buf.String()
	assert.Contains(t, out, "1. lint")
	assert.Contains(t, out, "required")
	assert.Contains(t, out, "2. review")
	assert.Contains(t, out, "optional")
}
