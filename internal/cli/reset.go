package cli

import (
	"github.com/spf13/cobra"
)

func newResetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear recorded run state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Store.Reset()
		},
	}
}
