package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcheck/internal/manifest"
	"flowcheck/internal/stage"
)

func TestNextStep(t *testing.T) {
	tests := []struct {
		name     string
		stage    stage.Stage
		wantStep string
		wantErr  error
	}{
		{
			name:     "started resumes at branch",
			stage:    stage.StageStarted,
			wantStep: "branch",
		},
		{
			name:     "branched resumes at sync",
			stage:    stage.StageBranched,
			wantStep: "sync",
		},
		{
			name:     "synced resumes at test",
			stage:    stage.StageSynced,
			wantStep: "test",
		},
		{
			name:     "tested resumes at lint",
			stage:    stage.StageTested,
			wantStep: "lint",
		},
		{
			name:     "linted resumes at typecheck",
			stage:    stage.StageLinted,
			wantStep: "typecheck",
		},
		{
			name:     "typechecked resumes at commit",
			stage:    stage.StageTypechecked,
			wantStep: "commit",
		},
		{
			name:     "committed resumes at pr",
			stage:    stage.StageCommitted,
			wantStep: "pr",
		},
		{
			name:     "pr-open resumes at review",
			stage:    stage.StagePROpen,
			wantStep: "review",
		},
		{
			name:    "done returns ErrTaskComplete",
			stage:   stage.StageDone,
			wantErr: ErrTaskComplete,
		},
		{
			name:    "unknown stage returns ErrUnknownStage",
			stage:   stage.Stage("in-review"),
			wantErr: ErrUnknownStage,
		},
		{
			name:    "empty stage returns ErrUnknownStage",
			stage:   stage.Stage(""),
			wantErr: ErrUnknownStage,
		},
	}

	r := NewRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, err := r.NextStep(tt.stage)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStep, step)
		})
	}
}

func TestGetChecklist_FullChainFromStart(t *testing.T) {
	r := NewRouter()

	steps, err := r.GetChecklist(stage.StageStarted)
	require.NoError(t, err)

	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"branch", "sync", "test", "lint", "typecheck", "commit", "pr", "review"}, names)

	// Final step records done.
	assert.Equal(t, stage.StageDone, steps[len(steps)-1].NextStage)
}

func TestGetChecklist_ResumesMidChain(t *testing.T) {
	r := NewRouter()

	steps, err := r.GetChecklist(stage.StageTypechecked)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "commit", steps[0].Name)
	assert.Equal(t, "pr", steps[1].Name)
	assert.Equal(t, "review", steps[2].Name)
}

func TestGetChecklist_Sentinels(t *testing.T) {
	r := NewRouter()

	_, err := r.GetChecklist(stage.StageDone)
	assert.ErrorIs(t, err, ErrTaskComplete)

	_, err = r.GetChecklist(stage.Stage("bogus"))
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestGetChecklist_ReturnsCopy(t *testing.T) {
	r := NewRouter()

	steps, err := r.GetChecklist(stage.StageStarted)
	require.NoError(t, err)
	steps[0].Name = "mutated"

	again, err := r.GetChecklist(stage.StageStarted)
	require.NoError(t, err)
	assert.Equal(t, "branch", again[0].Name)
}

func TestSteps_DeclaredOrder(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, []string{"branch", "sync", "test", "lint", "typecheck", "commit", "pr", "review"}, r.Steps())
}

const testManifest = `step,command,required,trigger_stage,next_stage,pattern
lint,ruff check .,true,started,linted,
test,pytest,true,linted,tested,
bench,pytest --benchmark-only,false,,benchmarked,
`

func TestNewRouterFromManifest(t *testing.T) {
	m, err := manifest.ReadFromString(testManifest)
	require.NoError(t, err)

	r := NewRouterFromManifest(m)

	assert.Equal(t, []string{"lint", "test", "bench"}, r.Steps())
	assert.Equal(t, stage.Stage("benchmarked"), r.DoneStage())

	step, err := r.NextStep(stage.StageStarted)
	require.NoError(t, err)
	assert.Equal(t, "lint", step)

	steps, err := r.GetChecklist(stage.Stage("linted"))
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "test", steps[0].Name)
	assert.Equal(t, "bench", steps[1].Name)

	_, err = r.GetChecklist(stage.Stage("benchmarked"))
	assert.ErrorIs(t, err, ErrTaskComplete)
}

func TestNewRouterFromManifest_DuplicateStepExtraTrigger(t *testing.T) {
	const dup = `step,command,required,trigger_stage,next_stage,pattern
test,pytest,true,started,tested,
test,pytest,true,retesting,tested,
commit,git diff-index --quiet HEAD --,true,tested,done,
`
	m, err := manifest.ReadFromString(dup)
	require.NoError(t, err)

	r := NewRouterFromManifest(m)

	// Both triggers resume at the same chain position.
	fromStart, err := r.GetChecklist(stage.StageStarted)
	require.NoError(t, err)
	fromRetest, err := r.GetChecklist(stage.Stage("retesting"))
	require.NoError(t, err)
	assert.Equal(t, fromStart, fromRetest)

	// The chain contains the step once.
	assert.Equal(t, []string{"test", "commit"}, r.Steps())
}
