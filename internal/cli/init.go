package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// starterConfig is written by `flowcheck init`. It restates the defaults so
// a team can edit conventions in place instead of reconstructing the schema.
const starterConfig = `# flowcheck configuration
#
# Every step runs one external command; exit 0 means the step is satisfied.
# A step with a pattern must also match the command's stdout.
# Steps marked optional are reported but never block the run.

git:
  default_branch: main
  branch_pattern: "^(feature|fix|chore|docs)/[a-z0-9][a-z0-9._/-]*$"

steps:
  branch:
    command: git rev-parse --abbrev-ref HEAD
    pattern: "{{.BranchPattern}}"
  sync:
    command: uv sync
  test:
    command: uv run pytest
  lint:
    command: ruff check .
  typecheck:
    command: mypy .
  commit:
    command: git diff-index --quiet HEAD --
  pr:
    command: gh pr view --json url --jq .url
    pattern: "^https://\\S+$"
  review:
    command: gh pr view --json reviewDecision --jq .reviewDecision
    pattern: "^APPROVED$"
    optional: true

run:
  state_dir: .flowcheck/run
  step_timeout_seconds: 0

output:
  truncate_lines: 20
  truncate_length: 120
`

func newInitCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter flowcheck.yaml config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(app.BaseDir, "flowcheck.yaml")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists: %s", path)
			}

			if err := os.WriteFile(path, []byte(starterConfig), 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}
