package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"flowcheck/internal/checklist"
)

// scriptedRunner satisfies [lifecycle.StepRunner] with canned outcomes.
// Steps not listed in failOn or skipOn pass.
type scriptedRunner struct {
	executed []string
	failOn   map[string]bool
	skipOn   map[string]bool
	output   map[string]string
}

func (r *scriptedRunner) RunStep(_ context.Context, step checklist.Step) checklist.Result {
	r.executed = append(r.executed, step.Name)

	res := checklist.Result{Step: step.Name, Required: step.Required, Status: checklist.StatusPassed}
	if r.failOn[step.Name] {
		res.Status = checklist.StatusFailed
		res.ExitCode = 1
		res.Output = r.output[step.Name]
	}
	if r.skipOn[step.Name] {
		res.Status = checklist.StatusSkipped
	}
	return res
}

// newTestApp builds an App anchored at a temp directory with a scripted
// runner injected. Everything else is built for real by initialize.
func newTestApp(t *testing.T, runner *scriptedRunner) *App {
	t.Helper()
	app := NewApp()
	app.BaseDir = t.TempDir()
	app.Runner = runner
	return app
}

// execute runs the CLI and returns the result plus captured stdout/stderr.
func execute(app *App, args ...string) (ExecuteResult, string, string) {
	var stdout, stderr bytes.Buffer
	res := Run(app, append(args, "--no-color"), &stdout, &stderr)
	return res, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
