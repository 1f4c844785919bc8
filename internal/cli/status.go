package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status [task-key]",
		Short: "Show tracked task stages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				s, err := app.StageReader.GetTaskStage(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], s)
				return nil
			}

			tf, err := app.TasksReader.Read()
			if err != nil {
				return err
			}
			app.Printer.Stages(tf.Tasks)
			return nil
		},
	}
}
