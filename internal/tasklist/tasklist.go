// Package tasklist loads and filters the cleaner's assigned tasks and
// dispatches status responses. The collection is a read-mostly cache of
// backend state: every mutation is followed by an unconditional reload, so
// the list never shows a locally-guessed status.
package tasklist

import (
	"context"
	"strings"
	"sync"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/busy"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
)

type Filter string

const (
	FilterPending   Filter = "pending"
	FilterConfirmed Filter = "confirmed"
	FilterAll       Filter = "all"
)

type Counts struct {
	Pending   int
	Confirmed int
	All       int
}

type Controller struct {
	client  *api.Client
	tracker *busy.Tracker

	mu         sync.Mutex
	cleanerID  string
	tasks      []model.Task
	filter     Filter
	loading    bool
	refreshing bool
	loaded     bool
	err        error
}

func New(client *api.Client, tracker *busy.Tracker) *Controller {
	return &Controller{client: client, tracker: tracker, filter: FilterPending}
}

// Load fetches the cleaner's tasks. Any failure (transport or malformed
// envelope) clears the collection and records the error; a stale non-list is
// never left in place.
func (c *Controller) Load(ctx context.Context, cleanerID string) error {
	c.mu.Lock()
	c.cleanerID = cleanerID
	if c.loaded {
		c.refreshing = true
	} else {
		c.loading = true
	}
	c.err = nil
	c.mu.Unlock()

	done := c.tracker.Begin("loading.tasks")
	tasks, err := c.client.GetTasks(ctx, api.TaskFilters{CleanerID: cleanerID})
	done()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.refreshing = false
	if err != nil {
		c.tasks = nil
		c.err = err
		return err
	}
	c.tasks = tasks
	c.loaded = true
	return nil
}

// Respond sends a status update for one task and then reloads the whole
// collection, so the list reflects whatever the backend decided.
func (c *Controller) Respond(ctx context.Context, taskID string, status model.TaskStatus, comments string) error {
	done := c.tracker.Begin("loading.updateTask")
	err := c.client.UpdateTaskStatus(ctx, taskID, status, comments)
	done()
	if err != nil {
		c.setErr(err)
		return err
	}
	return c.reload(ctx)
}

// Reject is a REJECTED response that also records the rejection reason.
func (c *Controller) Reject(ctx context.Context, taskID, reason string) error {
	done := c.tracker.Begin("loading.updateTask")
	err := c.client.UpdateTaskStatus(ctx, taskID, model.StatusRejected, reason)
	if err == nil && strings.TrimSpace(reason) != "" {
		err = c.client.LogRejection(ctx, taskID, c.currentCleanerID(), reason)
	}
	done()
	if err != nil {
		c.setErr(err)
		return err
	}
	return c.reload(ctx)
}

// Propose is a TENTATIVE response carrying an alternative time. The proposed
// time is folded into the status comment (what the backend sheet shows) and
// also recorded through the dedicated proposal action.
func (c *Controller) Propose(ctx context.Context, taskID, proposedTime, comments string) error {
	text := "Alternative time suggested: " + proposedTime
	if strings.TrimSpace(comments) != "" {
		text += ". " + comments
	}
	done := c.tracker.Begin("loading.updateTask")
	err := c.client.UpdateTaskStatus(ctx, taskID, model.StatusTentative, text)
	if err == nil {
		err = c.client.CreateProposal(ctx, taskID, c.currentCleanerID(), proposedTime, comments)
	}
	done()
	if err != nil {
		c.setErr(err)
		return err
	}
	return c.reload(ctx)
}

func (c *Controller) reload(ctx context.Context) error {
	return c.Load(ctx, c.currentCleanerID())
}

func (c *Controller) currentCleanerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleanerID
}

func (c *Controller) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *Controller) SetFilter(f Filter) {
	switch f {
	case FilterPending, FilterConfirmed, FilterAll:
	default:
		f = FilterAll
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Tasks returns a copy of the full cached collection.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Task(nil), c.tasks...)
}

// Filtered applies the active filter to the cached collection. No refetch.
func (c *Controller) Filtered() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FilterTasks(c.tasks, c.filter)
}

// Counts are derived from the cached collection, never stored.
func (c *Controller) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Counts{
		Pending:   len(FilterTasks(c.tasks, FilterPending)),
		Confirmed: len(FilterTasks(c.tasks, FilterConfirmed)),
		All:       len(c.tasks),
	}
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// FilterTasks is the pure filter predicate: pending keeps tasks still
// awaiting a response, confirmed keeps CONFIRMED, all keeps everything.
func FilterTasks(tasks []model.Task, f Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		switch f {
		case FilterPending:
			if t.Status.NeedsResponse() {
				out = append(out, t)
			}
		case FilterConfirmed:
			if t.Status == model.StatusConfirmed {
				out = append(out, t)
			}
		default:
			out = append(out, t)
		}
	}
	return out
}
