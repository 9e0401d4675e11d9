package execution

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/busy"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
)

var testTask = model.Task{ID: "t1", Property: "Sol 3", Status: model.StatusConfirmed}

type recordingBackend struct {
	mu      sync.Mutex
	actions []string
	fail    map[string]bool
	timing  chan string
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{fail: map[string]bool{}, timing: make(chan string, 4)}
}

func (b *recordingBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		b.mu.Lock()
		b.actions = append(b.actions, action)
		shouldFail := b.fail[action]
		b.mu.Unlock()

		if action == "logEntry" || action == "logExit" {
			b.timing <- action
		}
		if shouldFail {
			w.Write([]byte(`{"success":false,"data":{"error":"nope"}}`))
			return
		}
		switch action {
		case "getProducts":
			w.Write([]byte(`{"success":true,"data":[{"id":"p1","name":"Bleach"},{"id":"p2","name":"Mop"}]}`))
		default:
			w.Write([]byte(`{"success":true,"data":{}}`))
		}
	})
}

func (b *recordingBackend) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.actions...)
}

func newTestMachine(t *testing.T, b *recordingBackend) *Machine {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	return New(api.NewClient(srv.URL), busy.NewTracker(), testTask, "cl-1")
}

func TestFormatDuration(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 11, 35, 0, 0, time.UTC)
	if got := FormatDuration(start, end); got != "1h 35m" {
		t.Fatalf("duration = %q, want 1h 35m", got)
	}
	if got := FormatDuration(start, start.Add(45*time.Minute)); got != "0h 45m" {
		t.Fatalf("duration = %q, want 0h 45m", got)
	}
	if got := FormatDuration(start, start.Add(2*time.Hour)); got != "2h 0m" {
		t.Fatalf("duration = %q, want 2h 0m", got)
	}
}

func TestPhaseTransitionsAreOneDirectional(t *testing.T) {
	b := newRecordingBackend()
	m := newTestMachine(t, b)

	if m.Phase() != PhaseStart {
		t.Fatalf("initial phase = %v", m.Phase())
	}
	// Finish before Start is out of order.
	if err := m.Finish(); !errors.Is(err, ErrPhase) {
		t.Fatalf("expected ErrPhase, got %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if m.Phase() != PhaseInProgress {
		t.Fatalf("phase = %v", m.Phase())
	}
	// Repeated Start is out of order.
	if err := m.Start(); !errors.Is(err, ErrPhase) {
		t.Fatalf("expected ErrPhase, got %v", err)
	}
	if err := m.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if m.Phase() != PhaseEnd {
		t.Fatalf("phase = %v", m.Phase())
	}
	if _, ok := m.Duration(); !ok {
		t.Fatalf("duration must be available after both timestamps")
	}
}

func TestTimingLogsAreDetached(t *testing.T) {
	b := newRecordingBackend()
	m := newTestMachine(t, b)

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case got := <-b.timing:
		if got != "logEntry" {
			t.Fatalf("timing action = %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("logEntry never fired")
	}

	now = now.Add(30 * time.Minute)
	if err := m.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	select {
	case got := <-b.timing:
		if got != "logExit" {
			t.Fatalf("timing action = %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("logExit never fired")
	}
}

func TestTimingLogFailureDoesNotBlockTransition(t *testing.T) {
	b := newRecordingBackend()
	b.fail["logEntry"] = true
	m := newTestMachine(t, b)

	reported := make(chan error, 1)
	m.OnDetachedError(func(err error) { reported <- err })

	if err := m.Start(); err != nil {
		t.Fatalf("Start must not propagate detached failures: %v", err)
	}
	if m.Phase() != PhaseInProgress {
		t.Fatalf("phase = %v", m.Phase())
	}
	select {
	case err := <-reported:
		if err == nil {
			t.Fatalf("expected a reported error")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("detached failure never reported")
	}
}

func TestToggleProduct(t *testing.T) {
	b := newRecordingBackend()
	m := newTestMachine(t, b)

	m.ToggleProduct("p2")
	m.ToggleProduct("p1")
	if !m.IsSelected("p1") || !m.IsSelected("p2") {
		t.Fatalf("expected both selected")
	}
	sel := m.Selected()
	if len(sel) != 2 || sel[0].ProductID != "p1" || sel[1].ProductID != "p2" {
		t.Fatalf("selected = %+v", sel)
	}
	if sel[0].Quantity != 1 {
		t.Fatalf("quantity defaults to 1, got %d", sel[0].Quantity)
	}
	// Toggling again removes.
	m.ToggleProduct("p1")
	if m.IsSelected("p1") {
		t.Fatalf("p1 should be deselected")
	}
}

func TestLoadProductsFailureIsNonFatal(t *testing.T) {
	b := newRecordingBackend()
	b.fail["getProducts"] = true
	m := newTestMachine(t, b)

	m.LoadProducts(context.Background())
	if m.ProductsErr() == nil {
		t.Fatalf("expected products error")
	}
	if len(m.Products()) != 0 {
		t.Fatalf("products must stay empty on failure")
	}
	// The wizard continues regardless.
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Retry succeeds.
	b.mu.Lock()
	b.fail["getProducts"] = false
	b.mu.Unlock()
	m.LoadProducts(context.Background())
	if m.ProductsErr() != nil {
		t.Fatalf("retry: %v", m.ProductsErr())
	}
	if len(m.Products()) != 2 {
		t.Fatalf("products = %+v", m.Products())
	}
}

func advanceToEnd(t *testing.T, m *Machine, b *recordingBackend) {
	t.Helper()
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	// Wait for both detached logs so the recorded action order is stable.
	for i := 0; i < 2; i++ {
		select {
		case <-b.timing:
		case <-time.After(5 * time.Second):
			t.Fatalf("timing log %d never arrived", i)
		}
	}
}

func TestCompleteSequence(t *testing.T) {
	b := newRecordingBackend()
	m := newTestMachine(t, b)

	advanceToEnd(t, m, b)
	m.SetComments("all clean")
	m.ToggleProduct("p1")

	if err := m.Complete(context.Background()); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if m.Phase() != PhaseSubmitted {
		t.Fatalf("phase = %v", m.Phase())
	}

	var rest []string
	for _, a := range b.recorded() {
		if a == "logEntry" || a == "logExit" {
			continue
		}
		rest = append(rest, a)
	}
	want := []string{"updateTaskStatus", "addComment", "logMultipleProductUsage"}
	if len(rest) != len(want) {
		t.Fatalf("actions = %v", rest)
	}
	for i := range want {
		if rest[i] != want[i] {
			t.Fatalf("actions = %v, want %v", rest, want)
		}
	}
}

func TestCompleteSkipsEmptySteps(t *testing.T) {
	b := newRecordingBackend()
	m := newTestMachine(t, b)

	advanceToEnd(t, m, b)
	// No comments, no products: only the status update goes out.
	if err := m.Complete(context.Background()); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	for _, a := range b.recorded() {
		if a == "addComment" || a == "logMultipleProductUsage" {
			t.Fatalf("unexpected action %q", a)
		}
	}
}

func TestCompletePartialFailureAborts(t *testing.T) {
	b := newRecordingBackend()
	b.fail["addComment"] = true
	m := newTestMachine(t, b)

	advanceToEnd(t, m, b)
	m.SetComments("all clean")
	m.ToggleProduct("p1")

	err := m.Complete(context.Background())
	if err == nil {
		t.Fatalf("expected failure from addComment")
	}
	// Aborted mid-sequence: status update went out, product usage did not,
	// and the machine stays at End so the user can retry.
	if m.Phase() != PhaseEnd {
		t.Fatalf("phase = %v", m.Phase())
	}
	sawStatus := false
	for _, a := range b.recorded() {
		if a == "updateTaskStatus" {
			sawStatus = true
		}
		if a == "logMultipleProductUsage" {
			t.Fatalf("later step ran after failure")
		}
	}
	if !sawStatus {
		t.Fatalf("status update should have run before the failing step")
	}
}
