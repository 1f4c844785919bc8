package cli

import (
	"github.com/spf13/cobra"
)

func newReportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the result of the last checklist run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			last, err := app.Store.ReadLastRun()
			if err != nil {
				return err
			}
			app.Printer.LastRunReport(last)
			if last != nil && !last.Green() {
				return NewExitError(1)
			}
			return nil
		},
	}
}
