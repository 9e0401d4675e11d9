package tasklist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/busy"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "t1", Property: "Sol 3", Status: model.StatusAssigned},
		{ID: "t2", Property: "Mar 8", Status: model.StatusConfirmed},
		{ID: "t3", Property: "Rio 1", Status: model.StatusUrgent},
		{ID: "t4", Property: "Luz 5", Status: model.StatusCompleted},
		{ID: "t5", Property: "Paz 2", Status: model.StatusConfirmed},
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := sampleTasks()

	pending := FilterTasks(tasks, FilterPending)
	if len(pending) != 2 || pending[0].ID != "t1" || pending[1].ID != "t3" {
		t.Fatalf("pending = %+v", pending)
	}
	confirmed := FilterTasks(tasks, FilterConfirmed)
	if len(confirmed) != 2 || confirmed[0].ID != "t2" || confirmed[1].ID != "t5" {
		t.Fatalf("confirmed = %+v", confirmed)
	}
	if all := FilterTasks(tasks, FilterAll); len(all) != 5 {
		t.Fatalf("all = %d", len(all))
	}

	// Pure: input untouched.
	if tasks[0].ID != "t1" || len(tasks) != 5 {
		t.Fatalf("input mutated")
	}
}

// backend is a minimal scripted-spreadsheet stand-in: it serves a mutable
// task list and records which actions arrived.
type backend struct {
	mu      sync.Mutex
	tasks   []model.Task
	actions []string
}

func (b *backend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		b.mu.Lock()
		b.actions = append(b.actions, action)
		b.mu.Unlock()

		switch action {
		case "getTasks":
			b.mu.Lock()
			data, _ := json.Marshal(b.tasks)
			b.mu.Unlock()
			w.Write([]byte(`{"success":true,"data":` + string(data) + `}`))
		case "updateTaskStatus":
			if err := r.ParseForm(); err != nil {
				t.Errorf("ParseForm: %v", err)
			}
			id := r.PostForm.Get("taskId")
			status := model.TaskStatus(r.PostForm.Get("status"))
			b.mu.Lock()
			for i := range b.tasks {
				if b.tasks[i].ID == id {
					b.tasks[i].Status = status
					b.tasks[i].Comments = r.PostForm.Get("comments")
				}
			}
			b.mu.Unlock()
			w.Write([]byte(`{"success":true,"data":{}}`))
		case "logRejection", "createProposal":
			w.Write([]byte(`{"success":true,"data":{}}`))
		default:
			w.Write([]byte(`{"success":false,"data":{"error":"unknown action"}}`))
		}
	})
}

func (b *backend) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.actions...)
}

func TestLoadAndCounts(t *testing.T) {
	b := &backend{tasks: sampleTasks()}
	srv := httptest.NewServer(b.handler(t))
	defer srv.Close()

	c := New(api.NewClient(srv.URL), busy.NewTracker())
	if err := c.Load(context.Background(), "cl-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	counts := c.Counts()
	if counts.Pending != 2 || counts.Confirmed != 2 || counts.All != 5 {
		t.Fatalf("counts = %+v", counts)
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}
}

func TestRespondReloadsFromBackend(t *testing.T) {
	b := &backend{tasks: sampleTasks()}
	srv := httptest.NewServer(b.handler(t))
	defer srv.Close()

	c := New(api.NewClient(srv.URL), busy.NewTracker())
	if err := c.Load(context.Background(), "cl-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The backend flips t1 to CONFIRMED; the reloaded list must show the
	// backend's status, not anything the controller guessed.
	if err := c.Respond(context.Background(), "t1", model.StatusConfirmed, "ok"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	var got model.Task
	for _, task := range c.Tasks() {
		if task.ID == "t1" {
			got = task
		}
	}
	if got.Status != model.StatusConfirmed || got.Comments != "ok" {
		t.Fatalf("t1 after respond = %+v", got)
	}

	actions := b.recorded()
	// Mutation strictly before reload.
	want := []string{"getTasks", "updateTaskStatus", "getTasks"}
	if len(actions) != len(want) {
		t.Fatalf("actions = %v", actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("actions = %v, want %v", actions, want)
		}
	}
}

func TestRejectLogsReason(t *testing.T) {
	b := &backend{tasks: sampleTasks()}
	srv := httptest.NewServer(b.handler(t))
	defer srv.Close()

	c := New(api.NewClient(srv.URL), busy.NewTracker())
	if err := c.Load(context.Background(), "cl-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Reject(context.Background(), "t1", "sick today"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	actions := b.recorded()
	want := []string{"getTasks", "updateTaskStatus", "logRejection", "getTasks"}
	if len(actions) != len(want) {
		t.Fatalf("actions = %v", actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("actions = %v, want %v", actions, want)
		}
	}
}

func TestMalformedEnvelopeResetsCollection(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			data, _ := json.Marshal(sampleTasks())
			w.Write([]byte(`{"success":true,"data":` + string(data) + `}`))
			return
		}
		// success:true but data is not an array.
		w.Write([]byte(`{"success":true,"data":{"error":"boom"}}`))
	}))
	defer srv.Close()

	c := New(api.NewClient(srv.URL), busy.NewTracker())
	if err := c.Load(context.Background(), "cl-1"); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if len(c.Tasks()) != 5 {
		t.Fatalf("expected 5 tasks")
	}

	if err := c.Load(context.Background(), "cl-1"); err == nil {
		t.Fatalf("expected error on malformed envelope")
	}
	if got := c.Tasks(); len(got) != 0 {
		t.Fatalf("stale tasks left in place: %v", got)
	}
	if c.Err() == nil {
		t.Fatalf("expected recorded error")
	}
	counts := c.Counts()
	if counts.All != 0 {
		t.Fatalf("counts after failure = %+v", counts)
	}
}

func TestSetFilterDoesNotRefetch(t *testing.T) {
	b := &backend{tasks: sampleTasks()}
	srv := httptest.NewServer(b.handler(t))
	defer srv.Close()

	c := New(api.NewClient(srv.URL), busy.NewTracker())
	if err := c.Load(context.Background(), "cl-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := len(b.recorded())
	c.SetFilter(FilterConfirmed)
	if got := c.Filtered(); len(got) != 2 {
		t.Fatalf("filtered = %+v", got)
	}
	if len(b.recorded()) != before {
		t.Fatalf("SetFilter must not hit the backend")
	}
}
