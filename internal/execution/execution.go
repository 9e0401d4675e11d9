// Package execution drives a single task through its start → in-progress →
// end wizard, keeping the ephemeral execution record (timestamps, final
// comments, selected products). The record lives only as long as the Machine;
// abandoning the flow means dropping the Machine, nothing is persisted
// halfway.
package execution

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/busy"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
)

type Phase int

const (
	PhaseStart Phase = iota
	PhaseInProgress
	PhaseEnd
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseInProgress:
		return "in-progress"
	case PhaseEnd:
		return "end"
	case PhaseSubmitted:
		return "submitted"
	}
	return "unknown"
}

// ErrPhase is returned when a transition is attempted out of order.
// Transitions are one-directional; there is no way back.
var ErrPhase = errors.New("invalid execution phase for this transition")

const detachedTimeout = 30 * time.Second

type Machine struct {
	client  *api.Client
	tracker *busy.Tracker
	task    model.Task
	userID  string

	now func() time.Time
	// reportDetached receives failures from the fire-and-forget timing
	// logs. They are reported, never propagated: a failed log must not
	// block a phase transition.
	reportDetached func(error)

	mu          sync.Mutex
	phase       Phase
	startTime   time.Time
	endTime     time.Time
	comments    string
	selected    map[string]model.ProductUsage
	products    []model.Product
	productsErr error
}

func New(client *api.Client, tracker *busy.Tracker, task model.Task, userID string) *Machine {
	return &Machine{
		client:         client,
		tracker:        tracker,
		task:           task,
		userID:         userID,
		now:            time.Now,
		reportDetached: func(err error) { log.Printf("execution: %v", err) },
		selected:       map[string]model.ProductUsage{},
	}
}

// OnDetachedError replaces the sink for fire-and-forget call failures.
func (m *Machine) OnDetachedError(fn func(error)) {
	if fn != nil {
		m.reportDetached = fn
	}
}

func (m *Machine) Task() model.Task { return m.task }

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Start records the start timestamp and fires the entry timing log without
// waiting for it.
func (m *Machine) Start() error {
	m.mu.Lock()
	if m.phase != PhaseStart {
		m.mu.Unlock()
		return ErrPhase
	}
	m.phase = PhaseInProgress
	m.startTime = m.now()
	ts := m.startTime
	m.mu.Unlock()

	m.detach("logEntry", func(ctx context.Context) error {
		return m.client.LogEntry(ctx, m.task.ID, m.userID, ts)
	})
	return nil
}

// Finish records the end timestamp and fires the exit timing log.
func (m *Machine) Finish() error {
	m.mu.Lock()
	if m.phase != PhaseInProgress {
		m.mu.Unlock()
		return ErrPhase
	}
	m.phase = PhaseEnd
	m.endTime = m.now()
	ts := m.endTime
	m.mu.Unlock()

	m.detach("logExit", func(ctx context.Context) error {
		return m.client.LogExit(ctx, m.task.ID, m.userID, ts)
	})
	return nil
}

func (m *Machine) detach(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			m.reportDetached(fmt.Errorf("%s: %w", name, err))
		}
	}()
}

func (m *Machine) StartTime() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime, !m.startTime.IsZero()
}

func (m *Machine) EndTime() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endTime, !m.endTime.IsZero()
}

// Duration renders the elapsed time once both timestamps exist.
func (m *Machine) Duration() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startTime.IsZero() || m.endTime.IsZero() {
		return "", false
	}
	return FormatDuration(m.startTime, m.endTime), true
}

// FormatDuration renders "XhYm" from whole elapsed minutes.
func FormatDuration(start, end time.Time) string {
	minutes := int(end.Sub(start).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func (m *Machine) SetComments(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = text
}

func (m *Machine) Comments() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.comments
}

// ToggleProduct adds the product to the selection, or removes it if already
// selected. Quantity is fixed at 1 for now.
func (m *Machine) ToggleProduct(productID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.selected[productID]; ok {
		delete(m.selected, productID)
		return
	}
	m.selected[productID] = model.ProductUsage{ProductID: productID, Quantity: 1}
}

func (m *Machine) IsSelected(productID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.selected[productID]
	return ok
}

// Selected returns the selection ordered by product id (stable batches).
func (m *Machine) Selected() []model.ProductUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ProductUsage, 0, len(m.selected))
	for _, u := range m.selected {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// LoadProducts fetches the product reference list. Failure never blocks the
// wizard: the error is held for inline display with a retry, and the list
// stays empty.
func (m *Machine) LoadProducts(ctx context.Context) {
	done := m.tracker.Begin("loading.products")
	products, err := m.client.GetProducts(ctx)
	done()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.products = nil
		m.productsErr = err
		return
	}
	m.products = products
	m.productsErr = nil
}

func (m *Machine) Products() []model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Product(nil), m.products...)
}

func (m *Machine) ProductsErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.productsErr
}

// Complete submits the execution record in order: status update, then the
// completion comment (when comments were written), then the batched product
// usage (when products were selected). The first failing step aborts the
// sequence and is returned; earlier steps are not rolled back — the backend
// may be left partially updated, which is the accepted behavior today.
func (m *Machine) Complete(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != PhaseEnd {
		m.mu.Unlock()
		return ErrPhase
	}
	comments := strings.TrimSpace(m.comments)
	m.mu.Unlock()
	selected := m.Selected()

	done := m.tracker.Begin("loading.completing")
	defer done()

	if err := m.client.UpdateTaskStatus(ctx, m.task.ID, model.StatusCompleted, comments); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if comments != "" {
		if err := m.client.AddComment(ctx, m.task.ID, m.userID, comments, model.CommentConfirmation); err != nil {
			return fmt.Errorf("add completion comment: %w", err)
		}
	}
	if len(selected) > 0 {
		if err := m.client.LogMultipleProductUsage(ctx, m.task.ID, m.userID, selected); err != nil {
			return fmt.Errorf("log product usage: %w", err)
		}
	}

	m.mu.Lock()
	m.phase = PhaseSubmitted
	m.mu.Unlock()
	return nil
}
