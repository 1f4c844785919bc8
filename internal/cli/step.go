package cli

import (
	"github.com/spf13/cobra"

	"flowcheck/internal/checklist"
)

func newStepCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "step <name> [task-key]",
		Short: "Run a single checklist step",
		Long: `Run one named checklist step (e.g. lint, test, pr) without
advancing the task's stage. The step result is recorded in the run state.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stepName := args[0]
			taskKey := ""
			if len(args) > 1 {
				taskKey = args[1]
			}

			step, err := app.Config.ResolveStep(stepName, taskKey)
			if err != nil {
				return err
			}

			res := app.Runner.RunStep(cmd.Context(), step)
			app.Printer.Step(res)

			if err := app.Store.WriteStepResult(res); err != nil {
				return err
			}

			if res.Status == checklist.StatusFailed {
				return NewExitError(1)
			}
			return nil
		},
	}
}
