package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowcheck/internal/checklist"
)

func newResumeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Re-run the steps that failed in the last run",
		Long: `Re-run only the failed steps from the last recorded run, after
manual remediation. Steps that now pass are removed from the failure list;
the stored summary is updated accordingly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			last, err := app.Store.ReadLastRun()
			if err != nil {
				return err
			}
			if last == nil || len(last.Failed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No failed steps to resume.")
				return nil
			}

			var stillFailed []string
			for _, name := range last.Failed {
				step, err := app.Config.ResolveStep(name, last.Task)
				if err != nil {
					return err
				}

				res := app.Runner.RunStep(cmd.Context(), step)
				app.Printer.Step(res)

				if err := app.Store.WriteStepResult(res); err != nil {
					return err
				}

				if res.Status == checklist.StatusFailed {
					stillFailed = append(stillFailed, name)
				}
			}

			last.Failed = stillFailed
			if len(stillFailed) == 0 {
				last.Status = "pass"
				last.HaltedAt = ""
			}
			if err := app.Store.WriteLastRun(*last); err != nil {
				return err
			}

			if len(stillFailed) > 0 {
				return NewExitError(1)
			}
			return nil
		},
	}
}
