package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flowcheck/internal/lifecycle"
	"flowcheck/internal/report"
	"flowcheck/internal/router"
)

func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <task-key> [task-key...]",
		Short: "Run the workflow checklist for one or more tasks",
		Long: `Run the remaining checklist steps for each task, from its current
stage through to done. With multiple tasks, the queue stops at the first
task whose checklist fails.

Example:
  flowcheck run 6-5 6-6 6-7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			queueStart := time.Now()
			multi := len(args) > 1

			var outcomes []report.TaskOutcome
			for _, taskKey := range args {
				steps, err := app.Executor.GetSteps(taskKey)
				if errors.Is(err, router.ErrTaskComplete) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: already done, nothing to check\n", taskKey)
					outcomes = append(outcomes, report.TaskOutcome{Key: taskKey, Green: true})
					continue
				}
				if err != nil {
					return fmt.Errorf("%s: %w", taskKey, err)
				}

				app.Printer.RunHeader(taskKey, steps)

				taskStart := time.Now()
				run, err := app.Executor.Execute(ctx, taskKey)
				elapsed := time.Since(taskStart)

				if err != nil && !errors.Is(err, lifecycle.ErrRunFailed) {
					return fmt.Errorf("%s: %w", taskKey, err)
				}

				app.Printer.Summary(run, elapsed)

				outcome := report.TaskOutcome{
					Key:      taskKey,
					Green:    run.Green(),
					Duration: elapsed,
					FailedAt: run.HaltedAt,
				}
				outcomes = append(outcomes, outcome)

				if !run.Green() {
					if multi {
						app.Printer.QueueSummary(outcomes, args, time.Since(queueStart))
					}
					return NewExitError(run.ExitCode())
				}
			}

			if multi {
				app.Printer.QueueSummary(outcomes, args, time.Since(queueStart))
			}
			return nil
		},
	}
}
