package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/config"
	"github.com/tino-q/ssonsoles-tasks/internal/i18n"
	"github.com/tino-q/ssonsoles-tasks/internal/kvstore"
	"github.com/tino-q/ssonsoles-tasks/internal/session"
	"github.com/tino-q/ssonsoles-tasks/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	APIBaseURL string
	Lang       string
	CleanerID  string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "sonsoles",
		Short:        "Cleaning-staff task client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  sonsoles

  # Log in by phone number, then work from scripts
  sonsoles login +34600111222
  sonsoles tasks list --filter pending
  sonsoles tasks respond task-12 --status CONFIRMED --comments "ok"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIBaseURL, "api-url", envOr("SONSOLES_API_URL", ""), "Backend endpoint URL (overrides config)")
	cmd.PersistentFlags().StringVar(&app.Lang, "lang", envOr("SONSOLES_LANG", ""), "Display language (es|en; overrides the persisted choice)")
	cmd.PersistentFlags().StringVar(&app.CleanerID, "cleaner", envOr("SONSOLES_CLEANER", ""), "Cleaner id (overrides the logged-in session)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newSessionCmd(app))
	cmd.AddCommand(newLangCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newCommentsCmd(app))
	cmd.AddCommand(newProductsCmd(app))
	cmd.AddCommand(newCleanersCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newReservationsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := newClient(app)
	if err != nil {
		return err
	}
	return tui.Run(tui.Deps{
		Client:     client,
		Store:      store,
		Sessions:   session.NewManager(store),
		Translator: translator(app, store),
	})
}

func openStoreAndClient(app *App) (*kvstore.Store, *api.Client, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(app)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, client, nil
}

func openStore() (*kvstore.Store, error) {
	path, err := config.StatePath()
	if err != nil {
		return nil, err
	}
	return kvstore.Open(context.Background(), path)
}

// newClient resolves the backend endpoint: flag/env first, then config file.
func newClient(app *App) (*api.Client, error) {
	base := strings.TrimSpace(app.APIBaseURL)
	if base == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		base = strings.TrimSpace(cfg.APIBaseURL)
	}
	if base == "" {
		return nil, errors.New("no backend URL configured; pass --api-url, set SONSOLES_API_URL, or add apiBaseUrl to " + configPathHint())
	}
	return api.NewClient(base), nil
}

func configPathHint() string {
	p, err := config.ConfigPath()
	if err != nil {
		return "~/.sonsoles/config.json"
	}
	return p
}

// translator picks the language: flag/env, then the persisted kv-store key,
// then the config default, then Spanish.
func translator(app *App, store *kvstore.Store) *i18n.Translator {
	if lang := strings.TrimSpace(app.Lang); lang != "" {
		return i18n.New(lang)
	}
	lang := kvstore.NewValue(store, i18n.Key, "").Get(context.Background())
	if lang == "" {
		if cfg, err := config.Load(); err == nil {
			lang = cfg.Language
		}
	}
	return i18n.New(lang)
}

// currentCleanerID resolves the acting cleaner: --cleaner or the session.
func currentCleanerID(app *App, store *kvstore.Store) (string, error) {
	if app.CleanerID != "" {
		return app.CleanerID, nil
	}
	s, ok := session.NewManager(store).Current(context.Background())
	if !ok {
		return "", errNotLoggedIn()
	}
	return s.Cleaner.ID, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
