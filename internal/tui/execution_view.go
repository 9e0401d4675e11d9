package tui

import (
	"context"
	"strings"
	"time"

	"github.com/tino-q/ssonsoles-tasks/internal/execution"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) updateExecution(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.exec == nil {
		m.view = viewTasks
		return m, nil
	}

	if m.execTyped {
		switch msg.String() {
		case "esc":
			m.execTyped = false
			m.execArea.Blur()
			m.exec.SetComments(m.execArea.Value())
			return m, nil
		}
		var cmd tea.Cmd
		m.execArea, cmd = m.execArea.Update(msg)
		return m, cmd
	}

	switch m.exec.Phase() {
	case execution.PhaseStart:
		switch msg.String() {
		case "esc", "backspace", "q":
			// Nothing has been logged yet; abandoning is safe.
			m.exec = nil
			m.view = viewDetail
			return m, nil
		case "s", "enter":
			if err := m.exec.Start(); err == nil {
				m.errText = ""
			}
			return m, nil
		}

	case execution.PhaseInProgress:
		switch msg.String() {
		case "esc", "backspace":
			// Discards the local record; the entry log already sent stays.
			m.exec = nil
			m.view = viewDetail
			return m, nil
		case "f", "enter":
			if err := m.exec.Finish(); err == nil {
				m.errText = ""
			}
			return m, nil
		}

	case execution.PhaseEnd:
		switch msg.String() {
		case "esc", "backspace":
			m.exec = nil
			m.view = viewDetail
			return m, nil
		case "up", "k":
			if m.execFocus > 0 {
				m.execFocus--
			}
			return m, nil
		case "down", "j":
			if m.execFocus < len(m.exec.Products())-1 {
				m.execFocus++
			}
			return m, nil
		case " ":
			products := m.exec.Products()
			if m.execFocus >= 0 && m.execFocus < len(products) {
				m.exec.ToggleProduct(products[m.execFocus].ID)
			}
			return m, nil
		case "e":
			m.execTyped = true
			m.execArea.Focus()
			return m, nil
		case "R":
			exec := m.exec
			return m, func() tea.Msg {
				exec.LoadProducts(context.Background())
				return productsLoadedMsg{}
			}
		case "enter":
			m.exec.SetComments(m.execArea.Value())
			exec := m.exec
			return m, func() tea.Msg {
				return completeDoneMsg{err: exec.Complete(context.Background())}
			}
		}
	}

	return m, nil
}

func (m appModel) viewExecution() string {
	t := m.exec.Task()
	title := lipgloss.NewStyle().Bold(true).Render(t.Property + "  " + t.Date)

	var phaseLabel string
	switch m.exec.Phase() {
	case execution.PhaseStart:
		phaseLabel = m.tr.T("execution.phase.start")
	case execution.PhaseInProgress:
		phaseLabel = m.tr.T("execution.phase.progress")
	default:
		phaseLabel = m.tr.T("execution.phase.end")
	}
	lines := []string{title, statusStyle(t.Status).Render(phaseLabel)}

	if st, ok := m.exec.StartTime(); ok {
		lines = append(lines, styleMuted().Render(m.tr.T("execution.startTime")+": "+st.Format(time.Kitchen)))
	}
	if et, ok := m.exec.EndTime(); ok {
		lines = append(lines, styleMuted().Render(m.tr.T("execution.endTime")+": "+et.Format(time.Kitchen)))
	}
	if dur, ok := m.exec.Duration(); ok {
		lines = append(lines, styleMuted().Render(m.tr.T("execution.duration")+": "+dur))
	}

	if m.exec.Phase() == execution.PhaseEnd {
		lines = append(lines, "", m.viewProductPicker())
		lines = append(lines, "", m.tr.T("execution.comments")+":", m.execArea.View())
	}

	return strings.Join(lines, "\n")
}

func (m appModel) viewProductPicker() string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render(m.tr.T("execution.products"))}

	if m.exec.ProductsErr() != nil {
		lines = append(lines, styleError().Render(m.tr.T("execution.productsError")+"  (R: "+m.tr.T("tasks.tryAgain")+")"))
		return strings.Join(lines, "\n")
	}

	products := m.exec.Products()
	if len(products) == 0 {
		lines = append(lines, styleMuted().Render(m.tr.T("execution.productsNone")))
		return strings.Join(lines, "\n")
	}

	for i, p := range products {
		mark := "[ ]"
		if m.exec.IsSelected(p.ID) {
			mark = "[x]"
		}
		row := mark + " " + p.Name
		if i == m.execFocus {
			row = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("> " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func (m appModel) executionFooter() string {
	if m.exec == nil {
		return ""
	}
	if m.execTyped {
		return "esc: " + m.tr.T("common.back")
	}
	switch m.exec.Phase() {
	case execution.PhaseStart:
		return "s: " + m.tr.T("execution.start") + "  esc: " + m.tr.T("common.back")
	case execution.PhaseInProgress:
		return "f: " + m.tr.T("execution.finish") + "  esc: " + m.tr.T("common.back")
	default:
		return "space: toggle  e: " + m.tr.T("execution.comments") + "  enter: " + m.tr.T("execution.complete") + "  esc: " + m.tr.T("common.back")
	}
}
