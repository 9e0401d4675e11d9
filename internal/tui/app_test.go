package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/busy"
	"github.com/tino-q/ssonsoles-tasks/internal/execution"
	"github.com/tino-q/ssonsoles-tasks/internal/i18n"
	"github.com/tino-q/ssonsoles-tasks/internal/kvstore"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
	"github.com/tino-q/ssonsoles-tasks/internal/session"
	"github.com/tino-q/ssonsoles-tasks/internal/tasklist"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestDeps(t *testing.T, baseURL string) (Deps, *busy.Tracker) {
	t.Helper()
	store, err := kvstore.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return Deps{
		Client:     api.NewClient(baseURL),
		Store:      store,
		Sessions:   session.NewManager(store),
		Translator: i18n.New("en"),
	}, busy.NewTracker()
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoginRejectsEmptyPhone(t *testing.T) {
	deps, tracker := newTestDeps(t, "http://127.0.0.1:0")
	m := newAppModel(deps, tracker)

	if m.view != viewLogin {
		t.Fatalf("expected login view, got %d", m.view)
	}

	next, _ := m.Update(keyMsg("enter"))
	m = next.(appModel)
	if m.loginErr == "" {
		t.Fatal("expected a login error for an empty phone number")
	}
}

func TestTaskItemTitle(t *testing.T) {
	it := taskItem{
		task: model.Task{Property: "Villa Sol", Date: "2026-09-01", Type: "checkout"},
		tr:   i18n.New("en"),
	}
	want := "Villa Sol  2026-09-01  checkout"
	if got := it.Title(); got != want {
		t.Fatalf("Title() = %q, want %q", got, want)
	}
}

func TestFilterKeysSwitchFilterWithoutRefetch(t *testing.T) {
	gets := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gets++
		tasks := []model.Task{
			{ID: "t1", Property: "A", Status: model.StatusAssigned},
			{ID: "t2", Property: "B", Status: model.StatusConfirmed},
			{ID: "t3", Property: "C", Status: model.StatusCompleted},
		}
		data, _ := json.Marshal(tasks)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(data)})
	}))
	defer srv.Close()

	deps, tracker := newTestDeps(t, srv.URL)
	m := newAppModel(deps, tracker)
	m.session = &session.Session{Cleaner: model.Cleaner{ID: "c1", Name: "Ana"}}
	m.view = viewTasks

	if err := m.tasks.Load(context.Background(), "c1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	m.refreshTaskItems()

	if got := len(m.tasksList.Items()); got != 1 {
		t.Fatalf("pending filter shows %d items, want 1", got)
	}

	fetchesBefore := gets
	next, _ := m.Update(keyMsg("a"))
	m = next.(appModel)

	if m.tasks.Filter() != tasklist.FilterAll {
		t.Fatalf("filter = %q, want %q", m.tasks.Filter(), tasklist.FilterAll)
	}
	if got := len(m.tasksList.Items()); got != 3 {
		t.Fatalf("all filter shows %d items, want 3", got)
	}
	if gets != fetchesBefore {
		t.Fatalf("switching filters refetched (%d -> %d requests)", fetchesBefore, gets)
	}
}

func TestEnterOpensTaskDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tasks := []model.Task{{ID: "t1", Property: "A", Status: model.StatusAssigned}}
		data, _ := json.Marshal(tasks)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(data)})
	}))
	defer srv.Close()

	deps, tracker := newTestDeps(t, srv.URL)
	m := newAppModel(deps, tracker)
	m.session = &session.Session{Cleaner: model.Cleaner{ID: "c1"}}
	m.view = viewTasks

	if err := m.tasks.Load(context.Background(), "c1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	m.refreshTaskItems()

	next, _ := m.Update(keyMsg("enter"))
	m = next.(appModel)
	if m.view != viewDetail {
		t.Fatalf("expected detail view, got %d", m.view)
	}
	if m.selected.ID != "t1" {
		t.Fatalf("selected task %q, want t1", m.selected.ID)
	}
}

func TestExecutionWizardAbandonMidFlight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer srv.Close()

	deps, tracker := newTestDeps(t, srv.URL)
	m := newAppModel(deps, tracker)
	m.session = &session.Session{Cleaner: model.Cleaner{ID: "c1"}}
	m.selected = model.Task{ID: "t1", Property: "A", Status: model.StatusConfirmed}
	m.view = viewExecution
	m.exec = execution.New(deps.Client, tracker, m.selected, "c1")

	if err := m.exec.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Backing out mid-execution drops the record and returns to the task.
	next, _ := m.Update(keyMsg("esc"))
	m = next.(appModel)
	if m.view != viewDetail {
		t.Fatalf("expected detail view after backing out, got %d", m.view)
	}
	if m.exec != nil {
		t.Fatal("execution record should be discarded")
	}
}

func TestSessionLogoutFromOutsideReturnsToLogin(t *testing.T) {
	deps, tracker := newTestDeps(t, "http://127.0.0.1:0")
	m := newAppModel(deps, tracker)
	m.session = &session.Session{Cleaner: model.Cleaner{ID: "c1", Name: "Ana"}}
	m.view = viewTasks

	next, _ := m.Update(sessionChangedMsg{loggedIn: false})
	m = next.(appModel)

	if m.view != viewLogin {
		t.Fatalf("expected login view after remote logout, got %d", m.view)
	}
	if m.session != nil {
		t.Fatal("session should be cleared")
	}
	if m.notice == "" {
		t.Fatal("expected an expiry notice")
	}
}
