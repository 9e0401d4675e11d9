package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/tino-q/ssonsoles-tasks/internal/i18n"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
	"github.com/tino-q/ssonsoles-tasks/internal/tasklist"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct {
	task model.Task
	tr   *i18n.Translator
}

func (i taskItem) FilterValue() string { return i.task.Property }

func (i taskItem) Title() string {
	parts := []string{i.task.Property, i.task.Date}
	if strings.TrimSpace(i.task.Type) != "" {
		parts = append(parts, i.task.Type)
	}
	return strings.Join(parts, "  ")
}

func (i taskItem) statusLabel() string {
	return i.tr.T("status." + string(i.task.Status))
}

func statusStyle(s model.TaskStatus) lipgloss.Style {
	switch s {
	case model.StatusUrgent:
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	case model.StatusAssigned:
		return lipgloss.NewStyle().Foreground(colorWarn)
	case model.StatusConfirmed, model.StatusCompleted:
		return lipgloss.NewStyle().Foreground(colorOK)
	case model.StatusTentative:
		return lipgloss.NewStyle().Foreground(colorAccent)
	default:
		return styleMuted()
	}
}

// taskDelegate renders one task per row: title left, status right, truncated
// to the list width.
type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}

	it, ok := item.(taskItem)
	if !ok {
		fmt.Fprint(w, fmt.Sprint(item))
		return
	}

	status := statusStyle(it.task.Status).Render(it.statusLabel())
	line := it.Title() + "  " + status

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}
	fmt.Fprint(w, style.Render(line))
}

func newTaskList(tr *i18n.Translator) list.Model {
	l := list.New([]list.Item{}, newTaskDelegate(), 0, 0)
	l.Title = tr.T("tasks.title")
	// The app renders its own header, footer and counts line.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// ESC is "back" everywhere in this app, never quit.
	l.KeyMap.Quit.SetKeys("q")
	return l
}

func (m *appModel) refreshTaskItems() {
	curID := ""
	if it, ok := m.tasksList.SelectedItem().(taskItem); ok {
		curID = it.task.ID
	}
	var items []list.Item
	for _, t := range m.tasks.Filtered() {
		items = append(items, taskItem{task: t, tr: m.tr})
	}
	m.tasksList.SetItems(items)
	if curID != "" {
		for i, it := range m.tasksList.Items() {
			if ti, ok := it.(taskItem); ok && ti.task.ID == curID {
				m.tasksList.Select(i)
				break
			}
		}
	}
}

func (m appModel) updateTasks(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "p":
		m.tasks.SetFilter(tasklist.FilterPending)
		m.refreshTaskItems()
		return m, nil
	case "c":
		m.tasks.SetFilter(tasklist.FilterConfirmed)
		m.refreshTaskItems()
		return m, nil
	case "a":
		m.tasks.SetFilter(tasklist.FilterAll)
		m.refreshTaskItems()
		return m, nil
	case "r":
		return m, m.loadTasksCmd()
	case "L":
		m.session = nil
		m.view = viewLogin
		m.phoneInput.SetValue("")
		m.phoneInput.Focus()
		return m, m.logoutCmd()
	case "enter":
		if it, ok := m.tasksList.SelectedItem().(taskItem); ok {
			m.selected = it.task
			m.view = viewDetail
			m.respond = respondNone
			m.errText = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.tasksList, cmd = m.tasksList.Update(msg)
	return m, cmd
}

func (m appModel) viewTasks() string {
	counts := m.tasks.Counts()
	segs := []struct {
		f     tasklist.Filter
		label string
		n     int
	}{
		{tasklist.FilterPending, m.tr.T("tasks.filter.pending"), counts.Pending},
		{tasklist.FilterConfirmed, m.tr.T("tasks.filter.confirmed"), counts.Confirmed},
		{tasklist.FilterAll, m.tr.T("tasks.filter.all"), counts.All},
	}
	var tabs []string
	for _, s := range segs {
		txt := fmt.Sprintf("%s (%d)", s.label, s.n)
		if s.f == m.tasks.Filter() {
			txt = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(txt)
		} else {
			txt = styleMuted().Render(txt)
		}
		tabs = append(tabs, txt)
	}
	bar := strings.Join(tabs, "   ")

	if len(m.tasksList.Items()) == 0 {
		return bar + "\n\n" + styleMuted().Render(m.emptyTasksText())
	}
	return bar + "\n" + m.tasksList.View()
}

func (m appModel) emptyTasksText() string {
	switch m.tasks.Filter() {
	case tasklist.FilterPending:
		return m.tr.T("tasks.noPending")
	case tasklist.FilterConfirmed:
		return m.tr.T("tasks.noConfirmed")
	default:
		return m.tr.T("tasks.noTasks")
	}
}
