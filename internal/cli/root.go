package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ExecuteResult carries the outcome of a CLI invocation for callers that
// want to inspect it without the process exiting.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// NewRootCommand constructs the flowcheck root command with all
// subcommands registered.
func NewRootCommand(app *App) *cobra.Command {
	opts := rootOptions{}

	cmd := &cobra.Command{
		Use:   "flowcheck",
		Short: "Validate workflow compliance for a development task",
		Long: `flowcheck walks the development-workflow checklist for a task:
branch naming, dependency sync, tests, lint, typecheck, commit hygiene,
PR, and review state. Each step shells out to the corresponding tool
(git, gh, uv, pytest, mypy, ruff) and checks its exit code. The first
failing required step halts the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.initialize(opts, cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.manifestPath, "manifest", "", "path to checklist manifest CSV")
	cmd.PersistentFlags().StringVarP(&opts.baseDir, "dir", "C", "", "project root directory (default current directory)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newRunCommand(app))
	cmd.AddCommand(newStepCommand(app))
	cmd.AddCommand(newPlanCommand(app))
	cmd.AddCommand(newStatusCommand(app))
	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newReportCommand(app))
	cmd.AddCommand(newResumeCommand(app))
	cmd.AddCommand(newResetCommand(app))
	cmd.AddCommand(newInitCommand(app))

	return cmd
}

// Run executes the CLI with the given arguments and writers, returning the
// exit code instead of terminating the process. Tests use Run directly.
func Run(app *App, args []string, stdout, stderr io.Writer) ExecuteResult {
	cmd := NewRootCommand(app)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExecuteResult{ExitCode: 1, Err: err}
	}

	return ExecuteResult{ExitCode: 0}
}

// Execute is the process entry point: it runs the CLI against os.Args and
// exits with the resulting code.
func Execute() {
	res := Run(NewApp(), os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(res.ExitCode)
}
