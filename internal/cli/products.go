package cli

import (
	"github.com/tino-q/ssonsoles-tasks/internal/model"

	"github.com/spf13/cobra"
)

func newProductsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Cleaning product catalog and usage",
	}
	cmd.AddCommand(newProductsListCmd(app))
	cmd.AddCommand(newProductsUsageCmd(app))
	cmd.AddCommand(newProductsLogCmd(app))
	cmd.AddCommand(newProductsRequestCmd(app))
	return cmd
}

func newProductsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			products, err := client.GetProducts(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": products})
		},
	}
}

func newProductsUsageCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "usage <task-id>",
		Short: "Show products logged against a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			usage, err := client.GetTaskProductUsage(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": usage})
		},
	}
}

func newProductsLogCmd(app *App) *cobra.Command {
	var quantity int
	var notes string
	cmd := &cobra.Command{
		Use:   "log <task-id> <product-id>",
		Short: "Record product usage on a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			cleanerID, err := currentCleanerID(app, store)
			if err != nil {
				return writeErr(cmd, err)
			}

			tracked := trackActivity(store)
			defer tracked()

			if err := client.LogProductUsage(cmd.Context(), args[0], cleanerID, args[1], quantity, notes); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "ok"})
		},
	}
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Units used")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional notes")
	return cmd
}

func newProductsRequestCmd(app *App) *cobra.Command {
	var quantities []int
	var productIDs []string
	cmd := &cobra.Command{
		Use:   "request <task-id>",
		Short: "Request product restocking for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(productIDs) == 0 {
				return writeErr(cmd, errBadArgument("product", "at least one product id required"))
			}
			if len(quantities) != 0 && len(quantities) != len(productIDs) {
				return writeErr(cmd, errBadArgument("quantity", "must be given once per --product"))
			}

			requests := make([]model.ProductUsage, 0, len(productIDs))
			for i, id := range productIDs {
				q := 1
				if i < len(quantities) {
					q = quantities[i]
				}
				requests = append(requests, model.ProductUsage{ProductID: id, Quantity: q})
			}

			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			tracked := trackActivity(store)
			defer tracked()

			if err := client.RequestProducts(cmd.Context(), args[0], requests); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "ok"})
		},
	}
	cmd.Flags().StringArrayVar(&productIDs, "product", nil, "Product id (repeatable)")
	cmd.Flags().IntSliceVar(&quantities, "quantity", nil, "Units per product, in --product order")
	return cmd
}
