package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var month, year int
	var cleanerID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch the monthly activity report (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 1 || month > 12 {
				return writeErr(cmd, errBadArgument("month", "must be 1-12"))
			}

			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			raw, err := client.GetMonthlyReport(cmd.Context(), month, year, cleanerID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": raw})
		},
	}
	now := time.Now()
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "Report month (1-12)")
	cmd.Flags().IntVar(&year, "year", now.Year(), "Report year")
	cmd.Flags().StringVar(&cleanerID, "cleaner-id", "", "Limit the report to one cleaner")
	return cmd
}
