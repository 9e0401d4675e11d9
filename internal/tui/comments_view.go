package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) updateComments(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.thread == nil {
		m.view = viewDetail
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.view = viewDetail
		m.commentInput.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.commentInput.Value())
		if text == "" {
			m.errText = m.tr.T("comments.empty")
			return m, nil
		}
		m.errText = ""
		m.commentInput.SetValue("")
		thread, authorID := m.thread, m.session.Cleaner.ID
		return m, func() tea.Msg {
			return commentPostedMsg{err: thread.Post(context.Background(), authorID, text)}
		}
	}

	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	return m, cmd
}

func (m appModel) viewComments() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.selected.Property + "  " + m.tr.T("task.comments"))

	w := m.width - 4
	if w < 20 {
		w = 60
	}
	w = min(w, 80)

	lines := []string{title, "", m.commentInput.View(), ""}

	list := m.thread.Comments()
	if len(list) == 0 && m.thread.Loaded() {
		lines = append(lines, styleMuted().Render(m.tr.T("comments.noComments")))
		return strings.Join(lines, "\n")
	}

	for _, c := range list {
		meta := m.tr.T("comments.type." + string(c.Type))
		if !c.Timestamp.IsZero() {
			meta += "  " + c.Timestamp.Local().Format(time.DateTime)
		}
		lines = append(lines, styleMuted().Render(meta))
		lines = append(lines, renderMarkdownCompact(c.Text, w))
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
