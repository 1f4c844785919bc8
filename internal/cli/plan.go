package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"flowcheck/internal/router"
)

func newPlanCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <task-key>",
		Short: "Preview the remaining checklist steps for a task",
		Long: `Show which steps would run for a task, and the stage transitions
each passing step would record, without executing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskKey := args[0]

			steps, err := app.Executor.GetSteps(taskKey)
			if errors.Is(err, router.ErrTaskComplete) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: already done, nothing to check\n", taskKey)
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", taskKey, err)
			}

			app.Printer.Plan(taskKey, steps)
			return nil
		},
	}
}
