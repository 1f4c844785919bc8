package cli

import (
	"github.com/spf13/cobra"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checklist steps in execution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := app.Router.Steps()

			required := make(map[string]bool, len(steps))
			for _, name := range steps {
				sc, err := app.Config.GetStepConfig(name)
				if err != nil {
					return err
				}
				required[name] = !sc.Optional
			}

			app.Printer.StepList(steps, required)
			return nil
		},
	}
}
