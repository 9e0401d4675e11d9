package tui

import (
	"time"

	"github.com/tino-q/ssonsoles-tasks/internal/busy"
	"github.com/tino-q/ssonsoles-tasks/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type busyMsg busy.State

// sessionChangedMsg arrives when another process logs in or out.
type sessionChangedMsg struct {
	session  *session.Session
	loggedIn bool
}

type loginResultMsg struct {
	session *session.Session
	errKey  string
}

type tasksLoadedMsg struct{ err error }

// taskActionMsg reports a respond/reject/propose round trip; the task
// collection has already been reloaded by the time it arrives.
type taskActionMsg struct{ err error }

type productsLoadedMsg struct{}

type completeDoneMsg struct{ err error }

type commentsLoadedMsg struct{ err error }

type commentPostedMsg struct{ err error }

type noticeExpiredMsg struct{ seq int }

type activityTouchedMsg struct{}

const noticeDuration = 4 * time.Second

func expireNotice(seq int) tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg { return noticeExpiredMsg{seq: seq} })
}
