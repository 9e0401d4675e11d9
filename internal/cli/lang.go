package cli

import (
	"github.com/tino-q/ssonsoles-tasks/internal/i18n"
	"github.com/tino-q/ssonsoles-tasks/internal/kvstore"

	"github.com/spf13/cobra"
)

func newLangCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang [code]",
		Short: "Show or set the display language",
		Long:  "Without an argument, prints the persisted language. With one, stores it (es or en).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			val := kvstore.NewValue(store, i18n.Key, i18n.DefaultLanguage)
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": val.Get(cmd.Context())})
			}

			lang := args[0]
			if !i18n.Supported(lang) {
				return writeErr(cmd, errBadArgument("code", "must be one of es, en"))
			}
			if err := val.Set(cmd.Context(), lang); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": lang})
		},
	}
	return cmd
}
