package cli

import (
	"github.com/tino-q/ssonsoles-tasks/internal/model"

	"github.com/spf13/cobra"
)

func newCleanersCmd(app *App) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "cleaners",
		Short: "List cleaners (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			cleaners, err := client.GetCleaners(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if activeOnly {
				kept := make([]model.Cleaner, 0, len(cleaners))
				for _, c := range cleaners {
					if c.Active {
						kept = append(kept, c)
					}
				}
				cleaners = kept
			}
			return writeOut(cmd, app, map[string]any{"data": cleaners})
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only show active cleaners")
	return cmd
}
