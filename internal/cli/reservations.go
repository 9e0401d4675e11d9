package cli

import (
	"github.com/spf13/cobra"
)

func newReservationsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reservations",
		Short: "Reservation import (admin)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import",
		Short: "Pull new reservations into the task backlog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			raw, err := client.ImportReservations(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": raw})
		},
	})
	return cmd
}
