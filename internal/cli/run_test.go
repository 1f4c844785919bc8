package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcheck/internal/stage"
)

func TestRun_AllStepsPass(t *testing.T) {
	runner := &scriptedRunner{}
	app := newTestApp(t, runner)

	res, stdout, _ := execute(app, "run", "6-5")

	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, stdout, "Checklist: 6-5")
	assert.Contains(t, stdout, "CHECKLIST GREEN")
	assert.Equal(t,
		[]string{"branch", "sync", "test", "lint", "typecheck", "commit", "pr", "review"},
		runner.executed)

	// The task stage file records completion.
	reader := stage.NewReader(app.BaseDir)
	s, err := reader.GetTaskStage("6-5")
	require.NoError(t, err)
	assert.Equal(t, stage.StageDone, s)
}

func TestRun_RequiredFailureHaltsAndExitsOne(t *testing.T) {
	runner := &scriptedRunner{
		failOn: map[string]bool{"lint": true},
		output: map[string]string{"lint": "app.py:3:1: F401 'os' imported but unused"},
	}
	app := newTestApp(t, runner)

	res, stdout, _ := execute(app, "run", "6-5")

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, stdout, "CHECKLIST FAILED")
	assert.Contains(t, stdout, "Halted at: lint")
	assert.Contains(t, stdout, "F401")

	// Steps after the halting failure were never invoked.
	assert.Equal(t, []string{"branch", "sync", "test", "lint"}, runner.executed)
}

func TestRun_ResumesPastPassedSteps(t *testing.T) {
	runner := &scriptedRunner{failOn: map[string]bool{"typecheck": true}}
	app := newTestApp(t, runner)

	res, _, _ := execute(app, "run", "6-5")
	require.Equal(t, 1, res.ExitCode)
	require.Equal(t, []string{"branch", "sync", "test", "lint", "typecheck"}, runner.executed)

	// After remediation the run picks up at the failed step.
	runner.failOn = nil
	runner.executed = nil

	res, stdout, _ := execute(app, "run", "6-5")
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, stdout, "CHECKLIST GREEN")
	assert.Equal(t, []string{"typecheck", "commit", "pr", "review"}, runner.executed)
}

func TestRun_AlreadyDoneTask(t *testing.T) {
	runner := &scriptedRunner{}
	app := newTestApp(t, runner)

	writer := stage.NewWriter(app.BaseDir)
	require.NoError(t, writer.UpdateStage("6-5", stage.StageDone))

	res, stdout, _ := execute(app, "run", "6-5")

	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, stdout, "already done")
	assert.Empty(t, runner.executed)
}

func TestRun_OptionalFailureStaysGreen(t *testing.T) {
	runner := &scriptedRunner{failOn: map[string]bool{"review": true}}
	app := newTestApp(t, runner)

	res, stdout, _ := execute(app, "run", "6-5")

	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, stdout, "CHECKLIST GREEN")
}

func TestRun_QueueStopsAtFirstFailedTask(t *testing.T) {
	runner := &scriptedRunner{failOn: map[string]bool{"test": true}}
	app := newTestApp(t, runner)

	writer := stage.NewWriter(app.BaseDir)
	require.NoError(t, writer.UpdateStage("6-5", stage.StageDone))

	res, stdout, _ := execute(app, "run", "6-5", "6-6", "6-7")

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, stdout, "QUEUE STOPPED")
	assert.Contains(t, stdout, "failed at test")
	// 6-7 never ran.
	assert.Contains(t, stdout, "(skipped)")
}

func TestRun_QueueAllGreen(t *testing.T) {
	runner := &scriptedRunner{}
	app := newTestApp(t, runner)

	res, stdout, _ := execute(app, "run", "6-5", "6-6")

	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, stdout, "ALL TASKS GREEN")
}

func TestRun_NoArgs(t *testing.T) {
	app := newTestApp(t, &scriptedRunner{})

	res, _, _ := execute(app, "run")
	assert.Equal(t, 1, res.ExitCode)
}

func TestRun_ManifestOverridesChecklist(t *testing.T) {
	runner := &scriptedRunner{}
	app := newTestApp(t, runner)

	manifestPath := filepath.Join(app.BaseDir, "checklist.csv")
	writeFile(t, manifestPath, `step,command,required,trigger_stage,next_stage,pattern
test,,true,started,tested,
lint,,true,tested,linted,
`)

	res, _, _ := execute(app, "run", "6-5", "--manifest", manifestPath)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"test", "lint"}, runner.executed)

	reader := stage.NewReader(app.BaseDir)
	s, err := reader.GetTaskStage("6-5")
	require.NoError(t, err)
	assert.Equal(t, stage.Stage("linted"), s)
}

func TestRun_MissingManifestErrors(t *testing.T) {
	app := newTestApp(t, &scriptedRunner{})

	res, _, stderr := execute(app, "run", "6-5", "--manifest", filepath.Join(app.BaseDir, "nope.csv"))

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, stderr, "Error:")
}
