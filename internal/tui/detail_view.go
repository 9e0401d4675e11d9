package tui

import (
	"context"
	"strings"

	"github.com/tino-q/ssonsoles-tasks/internal/comments"
	"github.com/tino-q/ssonsoles-tasks/internal/execution"
	"github.com/tino-q/ssonsoles-tasks/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) updateDetail(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.respond != respondNone {
		return m.updateRespondModal(msg)
	}

	switch msg.String() {
	case "esc", "backspace", "q":
		m.view = viewTasks
		return m, nil
	case "v":
		m.thread = comments.New(m.deps.Client, m.tracker, m.selected.ID)
		m.commentInput.SetValue("")
		m.commentInput.Focus()
		m.view = viewComments
		thread := m.thread
		return m, func() tea.Msg {
			return commentsLoadedMsg{err: thread.EnsureLoaded(context.Background())}
		}
	}

	if m.selected.Status.NeedsResponse() {
		switch msg.String() {
		case "y":
			m.respond = respondAccept
			m.respondInput.SetValue("")
			m.respondInput.Focus()
			return m, nil
		case "n":
			m.respond = respondReject
			m.respondInput.SetValue("")
			m.respondInput.Focus()
			return m, nil
		case "t":
			m.respond = respondPropose
			m.respondInput.SetValue("")
			m.respondInput.Blur()
			m.timeInput.SetValue("")
			m.timeInput.Focus()
			m.timeFocused = true
			return m, nil
		}
	}

	if m.selected.Status == model.StatusConfirmed && msg.String() == "b" {
		m.exec = execution.New(m.deps.Client, m.tracker, m.selected, m.session.Cleaner.ID)
		m.execArea.SetValue("")
		m.execArea.Blur()
		m.execFocus = 0
		m.execTyped = false
		m.view = viewExecution
		exec := m.exec
		return m, func() tea.Msg {
			exec.LoadProducts(context.Background())
			return productsLoadedMsg{}
		}
	}

	return m, nil
}

func (m appModel) updateRespondModal(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.respond = respondNone
		m.respondInput.Blur()
		m.timeInput.Blur()
		return m, nil
	case "tab":
		if m.respond == respondPropose {
			m.timeFocused = !m.timeFocused
			if m.timeFocused {
				m.timeInput.Focus()
				m.respondInput.Blur()
			} else {
				m.timeInput.Blur()
				m.respondInput.Focus()
			}
		}
		return m, nil
	case "enter":
		return m.submitResponse()
	}

	var cmd tea.Cmd
	if m.respond == respondPropose && m.timeFocused {
		m.timeInput, cmd = m.timeInput.Update(msg)
	} else {
		m.respondInput, cmd = m.respondInput.Update(msg)
	}
	return m, cmd
}

func (m appModel) submitResponse() (appModel, tea.Cmd) {
	taskID := m.selected.ID
	text := strings.TrimSpace(m.respondInput.Value())
	tasks := m.tasks

	switch m.respond {
	case respondAccept:
		return m, func() tea.Msg {
			return taskActionMsg{err: tasks.Respond(context.Background(), taskID, model.StatusConfirmed, text)}
		}
	case respondReject:
		return m, func() tea.Msg {
			return taskActionMsg{err: tasks.Reject(context.Background(), taskID, text)}
		}
	case respondPropose:
		proposed := strings.TrimSpace(m.timeInput.Value())
		if proposed == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			return taskActionMsg{err: tasks.Propose(context.Background(), taskID, proposed, text)}
		}
	}
	return m, nil
}

func (m appModel) viewDetail() string {
	t := m.selected

	title := lipgloss.NewStyle().Bold(true).Render(t.Property)
	meta := styleMuted().Render(strings.TrimSpace(t.Date + "  " + t.Type))
	status := statusStyle(t.Status).Render(m.tr.T("status." + string(t.Status)))

	lines := []string{title, meta, status}

	if t.StartTime != nil && !t.StartTime.IsZero() && t.EndTime != nil && !t.EndTime.IsZero() {
		dur := execution.FormatDuration(t.StartTime.Time, t.EndTime.Time)
		lines = append(lines, styleMuted().Render(m.tr.T("execution.duration")+": "+dur))
	}

	if strings.TrimSpace(t.Notes) != "" {
		w := m.width - 4
		if w < 20 {
			w = 60
		}
		lines = append(lines, "", renderMarkdown(t.Notes, min(w, 80)))
	}

	if m.respond != respondNone {
		lines = append(lines, "", m.viewRespondModal())
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewRespondModal() string {
	var title string
	switch m.respond {
	case respondAccept:
		title = m.tr.T("task.confirm")
	case respondReject:
		title = m.tr.T("task.reject")
	case respondPropose:
		title = m.tr.T("task.propose")
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Render(m.tr.T("task.respond") + ": " + title)}
	if m.respond == respondPropose {
		lines = append(lines, m.timeInput.View())
	}
	lines = append(lines, m.respondInput.View())
	return strings.Join(lines, "\n")
}

func (m appModel) detailFooter() string {
	var keys []string
	if m.selected.Status.NeedsResponse() {
		keys = append(keys,
			"y: "+m.tr.T("task.confirm"),
			"n: "+m.tr.T("task.reject"),
			"t: "+m.tr.T("task.propose"),
		)
	}
	if m.selected.Status == model.StatusConfirmed {
		keys = append(keys, "b: "+m.tr.T("task.begin"))
	}
	keys = append(keys, "v: "+m.tr.T("task.comments"), "esc: "+m.tr.T("common.back"))
	return strings.Join(keys, "  ")
}
