package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) updateLogin(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		phone := strings.TrimSpace(m.phoneInput.Value())
		if phone == "" {
			m.loginErr = m.tr.T("login.error.notFound")
			return m, nil
		}
		m.loginErr = ""
		return m, m.loginCmd(phone)
	case "q":
		// Phone numbers never contain letters, but the input still gets the
		// keystroke so typing is not surprising.
	}

	var cmd tea.Cmd
	m.phoneInput, cmd = m.phoneInput.Update(msg)
	return m, cmd
}

func (m appModel) viewLogin() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.tr.T("login.title"))

	lines := []string{
		title,
		"",
		m.tr.T("login.phone") + ":",
		m.phoneInput.View(),
	}
	if m.loginErr != "" {
		lines = append(lines, "", styleError().Render(m.loginErr))
	}
	return strings.Join(lines, "\n")
}
