package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/busy"
	"github.com/tino-q/ssonsoles-tasks/internal/comments"
	"github.com/tino-q/ssonsoles-tasks/internal/execution"
	"github.com/tino-q/ssonsoles-tasks/internal/i18n"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
	"github.com/tino-q/ssonsoles-tasks/internal/session"
	"github.com/tino-q/ssonsoles-tasks/internal/tasklist"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type view int

const (
	viewLogin view = iota
	viewTasks
	viewDetail
	viewExecution
	viewComments
)

type respondMode int

const (
	respondNone respondMode = iota
	respondAccept
	respondReject
	respondPropose
)

// activityPingEvery throttles key-driven activity stamps at the UI layer;
// the session manager applies its own, longer throttle on the actual write.
const activityPingEvery = time.Minute

type appModel struct {
	deps    Deps
	tracker *busy.Tracker
	tr      *i18n.Translator

	width  int
	height int

	view view

	session *session.Session

	phoneInput textinput.Model
	loginErr   string

	tasks     *tasklist.Controller
	tasksList list.Model

	selected model.Task

	respond      respondMode
	respondInput textarea.Model
	timeInput    textinput.Model
	timeFocused  bool

	exec      *execution.Machine
	execFocus int
	execArea  textarea.Model
	execTyped bool

	thread       *comments.Thread
	commentInput textinput.Model

	busy busy.State
	spin spinner.Model

	notice    string
	noticeSeq int

	lastPing time.Time

	errText string
}

func newAppModel(deps Deps, tracker *busy.Tracker) appModel {
	m := appModel{
		deps:    deps,
		tracker: tracker,
		tr:      deps.Translator,
		view:    viewLogin,
		tasks:   tasklist.New(deps.Client, tracker),
	}

	m.phoneInput = textinput.New()
	m.phoneInput.Placeholder = m.tr.T("login.phone")
	m.phoneInput.CharLimit = 20
	m.phoneInput.Width = 24
	m.phoneInput.Focus()

	m.respondInput = textarea.New()
	m.respondInput.Placeholder = m.tr.T("response.comments")
	m.respondInput.CharLimit = 0
	m.respondInput.SetWidth(60)
	m.respondInput.SetHeight(4)
	m.respondInput.ShowLineNumbers = false

	m.timeInput = textinput.New()
	m.timeInput.Placeholder = m.tr.T("response.suggestTime")
	m.timeInput.CharLimit = 60
	m.timeInput.Width = 36

	m.execArea = textarea.New()
	m.execArea.Placeholder = m.tr.T("execution.comments")
	m.execArea.CharLimit = 0
	m.execArea.SetWidth(60)
	m.execArea.SetHeight(4)
	m.execArea.ShowLineNumbers = false

	m.commentInput = textinput.New()
	m.commentInput.Placeholder = m.tr.T("comments.placeholder")
	m.commentInput.CharLimit = 500
	m.commentInput.Width = 48

	m.tasksList = newTaskList(m.tr)

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = lipgloss.NewStyle().Foreground(colorAccent)

	// Restore a previous login, if one is still valid.
	ctx := context.Background()
	if s, ok := deps.Sessions.Current(ctx); ok {
		m.session = s
		m.view = viewTasks
		if info, ok := deps.Sessions.Info(ctx); ok && info.Restored {
			m.notice = m.tr.T("session.welcome", "name", s.Cleaner.Name)
		}
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.session != nil {
		cmds = append(cmds, m.loadTasksCmd())
	}
	if m.notice != "" {
		cmds = append(cmds, expireNotice(m.noticeSeq))
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case busyMsg:
		m.busy = busy.State(msg)
		return m, nil

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case activityTouchedMsg:
		return m, nil

	case sessionChangedMsg:
		return m.onSessionChanged(msg)

	case loginResultMsg:
		return m.onLoginResult(msg)

	case tasksLoadedMsg:
		m.errText = ""
		if msg.err != nil {
			m.errText = m.tr.T("tasks.error.load")
		}
		m.refreshTaskItems()
		return m, nil

	case taskActionMsg:
		if msg.err != nil {
			m.errText = m.tr.T("tasks.error.update")
			return m, nil
		}
		m.errText = ""
		m.respond = respondNone
		m.view = viewTasks
		m.refreshTaskItems()
		return m, nil

	case productsLoadedMsg:
		return m, nil

	case completeDoneMsg:
		return m.onCompleteDone(msg)

	case commentsLoadedMsg:
		if msg.err != nil {
			m.errText = m.tr.T("tasks.error.load")
		}
		return m, nil

	case commentPostedMsg:
		if msg.err != nil {
			m.errText = m.tr.T("tasks.error.update")
		}
		return m, nil

	case tea.KeyMsg:
		var cmds []tea.Cmd
		if cmd := m.pingActivity(); cmd != nil {
			cmds = append(cmds, cmd)
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		var next appModel
		var cmd tea.Cmd
		switch m.view {
		case viewLogin:
			next, cmd = m.updateLogin(msg)
		case viewTasks:
			next, cmd = m.updateTasks(msg)
		case viewDetail:
			next, cmd = m.updateDetail(msg)
		case viewExecution:
			next, cmd = m.updateExecution(msg)
		case viewComments:
			next, cmd = m.updateComments(msg)
		default:
			next = m
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return next, tea.Batch(cmds...)
	}

	return m, nil
}

func (m appModel) View() string {
	var body string
	switch m.view {
	case viewLogin:
		body = m.viewLogin()
	case viewTasks:
		body = m.viewTasks()
	case viewDetail:
		body = m.viewDetail()
	case viewExecution:
		body = m.viewExecution()
	case viewComments:
		body = m.viewComments()
	}

	parts := []string{m.header(), body}
	if m.errText != "" {
		parts = append(parts, styleError().Render(m.errText))
	}
	if m.notice != "" {
		parts = append(parts, styleNotice().Render(m.notice))
	}
	parts = append(parts, m.footer())
	return strings.Join(parts, "\n\n")
}

func (m appModel) header() string {
	title := m.tr.T("app.title")
	if m.session != nil {
		title += "  " + styleMuted().Render(m.tr.T("app.welcome", "name", m.session.Cleaner.Name))
	}
	if m.busy.Active {
		label := m.tr.T(m.busy.Label)
		if strings.TrimSpace(label) == "" {
			label = m.tr.T("loading.default")
		}
		title += "  " + m.spin.View() + styleMuted().Render(label)
	}
	return styleHeader().Render(title)
}

func (m appModel) footer() string {
	var help string
	switch m.view {
	case viewLogin:
		help = "enter: " + m.tr.T("login.button") + "  ctrl+c: quit"
	case viewTasks:
		help = "enter: open  p/c/a: filter  r: " + m.tr.T("common.refresh") + "  L: " + m.tr.T("app.logout") + "  q: quit"
		if m.session != nil {
			days := (session.MaxAge - time.Since(m.session.LoginTime)).Hours() / 24
			help += fmt.Sprintf("  ·  %.1fd", days)
		}
	case viewDetail:
		if m.respond != respondNone {
			help = "enter: send  tab: switch field  esc: " + m.tr.T("common.cancel")
		} else {
			help = m.detailFooter()
		}
	case viewExecution:
		help = m.executionFooter()
	case viewComments:
		help = "enter: " + m.tr.T("comments.send") + "  esc: " + m.tr.T("common.back")
	}
	return styleMuted().Render(help)
}

func (m *appModel) resize() {
	h := m.height - 8
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.tasksList.SetSize(w, h)
	if w > 20 {
		m.respondInput.SetWidth(min(w-4, 72))
		m.execArea.SetWidth(min(w-4, 72))
	}
}

// pingActivity stamps session activity on keyboard use, at most once a minute.
func (m *appModel) pingActivity() tea.Cmd {
	if m.session == nil || time.Since(m.lastPing) < activityPingEvery {
		return nil
	}
	m.lastPing = time.Now()
	sessions := m.deps.Sessions
	return func() tea.Msg {
		sessions.TouchActivity(context.Background())
		return activityTouchedMsg{}
	}
}

func (m *appModel) setNotice(text string) tea.Cmd {
	m.notice = text
	m.noticeSeq++
	return expireNotice(m.noticeSeq)
}

func (m appModel) onSessionChanged(msg sessionChangedMsg) (tea.Model, tea.Cmd) {
	if !msg.loggedIn {
		if m.session == nil {
			return m, nil
		}
		m.session = nil
		m.view = viewLogin
		m.phoneInput.SetValue("")
		m.phoneInput.Focus()
		cmd := m.setNotice(m.tr.T("session.expired"))
		return m, cmd
	}

	m.session = msg.session
	if m.view == viewLogin {
		m.view = viewTasks
		return m, m.loadTasksCmd()
	}
	return m, nil
}

func (m appModel) onLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.errKey != "" {
		m.loginErr = m.tr.T(msg.errKey)
		return m, nil
	}
	m.session = msg.session
	m.loginErr = ""
	m.view = viewTasks
	return m, m.loadTasksCmd()
}

func (m appModel) onCompleteDone(msg completeDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = m.tr.T("execution.error.complete")
		return m, nil
	}
	m.errText = ""
	m.exec = nil
	m.view = viewTasks
	notice := m.setNotice(m.tr.T("status.COMPLETED"))
	return m, tea.Batch(notice, m.loadTasksCmd())
}

func (m appModel) loadTasksCmd() tea.Cmd {
	tasks := m.tasks
	cleanerID := ""
	if m.session != nil {
		cleanerID = m.session.Cleaner.ID
	}
	return func() tea.Msg {
		return tasksLoadedMsg{err: tasks.Load(context.Background(), cleanerID)}
	}
}

func (m appModel) loginCmd(phone string) tea.Cmd {
	deps, tracker := m.deps, m.tracker
	return func() tea.Msg {
		done := tracker.Begin("loading.default")
		defer done()

		ctx := context.Background()
		cleaner, err := deps.Client.FindCleanerByPhone(ctx, phone)
		if err != nil {
			if errors.Is(err, api.ErrCleanerNotFound) {
				return loginResultMsg{errKey: "login.error.notFound"}
			}
			return loginResultMsg{errKey: "login.error.failed"}
		}
		s, err := deps.Sessions.Login(ctx, cleaner)
		if err != nil {
			return loginResultMsg{errKey: "login.error.failed"}
		}
		return loginResultMsg{session: s}
	}
}

func (m appModel) logoutCmd() tea.Cmd {
	sessions := m.deps.Sessions
	return func() tea.Msg {
		sessions.Logout(context.Background())
		return sessionChangedMsg{loggedIn: false}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
