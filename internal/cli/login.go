package cli

import (
	"errors"
	"strings"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/session"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <phone>",
		Short: "Log in by phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phone := strings.TrimSpace(args[0])
			if phone == "" {
				return writeErr(cmd, errBadArgument("phone", "must not be empty"))
			}

			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			tr := translator(app, store)
			cleaner, err := client.FindCleanerByPhone(cmd.Context(), phone)
			if err != nil {
				if errors.Is(err, api.ErrCleanerNotFound) {
					return writeErr(cmd, errors.New(tr.T("login.error.notFound")))
				}
				return writeErr(cmd, err)
			}

			s, err := session.NewManager(store).Login(cmd.Context(), cleaner)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": s})
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			if err := session.NewManager(store).Logout(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "logged out"})
		},
	}
}

func newSessionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the current session and its expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			mgr := session.NewManager(store)
			s, ok := mgr.Current(cmd.Context())
			if !ok {
				return writeErr(cmd, errNotLoggedIn())
			}
			info, _ := mgr.Info(cmd.Context())
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"cleaner":         s.Cleaner,
				"loginTime":       info.LoginTime,
				"lastActivity":    info.LastActivity,
				"elapsed":         info.Elapsed.String(),
				"restored":        info.Restored,
				"daysUntilExpiry": info.DaysUntilExpiry,
			}})
		},
	}
}
