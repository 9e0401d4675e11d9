package tui

import (
	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/busy"
	"github.com/tino-q/ssonsoles-tasks/internal/i18n"
	"github.com/tino-q/ssonsoles-tasks/internal/kvstore"
	"github.com/tino-q/ssonsoles-tasks/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type Deps struct {
	Client     *api.Client
	Store      *kvstore.Store
	Sessions   *session.Manager
	Translator *i18n.Translator
}

func Run(deps Deps) error {
	applyColorProfilePreference()
	applyThemePreference()

	tracker := busy.NewTracker()
	m := newAppModel(deps, tracker)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Request overlays render from tracker notifications so every backend
	// call shows feedback without each call site managing it.
	cancelBusy := tracker.Subscribe(func(st busy.State) { p.Send(busyMsg(st)) })
	defer cancelBusy()

	// Another process (the CLI) may log in or out while the TUI runs.
	w := deps.Store.Watch(0)
	defer w.Close()
	cancelSess := deps.Sessions.Subscribe(w, func(s *session.Session, loggedIn bool) {
		p.Send(sessionChangedMsg{session: s, loggedIn: loggedIn})
	})
	defer cancelSess()

	_, err := p.Run()
	return err
}
