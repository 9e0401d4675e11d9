// Package comments is the per-task comment thread: lazily loaded on first
// expand, newest first, reload-after-post.
package comments

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/busy"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
)

// ErrEmpty rejects whitespace-only comments before any request is made.
var ErrEmpty = errors.New("comment text is empty")

type Thread struct {
	client  *api.Client
	tracker *busy.Tracker
	taskID  string

	mu       sync.Mutex
	comments []model.Comment
	loaded   bool
	loading  bool
	err      error
}

func New(client *api.Client, tracker *busy.Tracker, taskID string) *Thread {
	return &Thread{client: client, tracker: tracker, taskID: taskID}
}

func (t *Thread) TaskID() string { return t.taskID }

// EnsureLoaded loads the thread the first time it is expanded and is a no-op
// after that (explicit Load refreshes).
func (t *Thread) EnsureLoaded(ctx context.Context) error {
	t.mu.Lock()
	if t.loaded {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()
	return t.Load(ctx)
}

func (t *Thread) Load(ctx context.Context) error {
	t.mu.Lock()
	t.loading = true
	t.err = nil
	t.mu.Unlock()

	done := t.tracker.Begin("loading.comments")
	list, err := t.client.GetComments(ctx, t.taskID)
	done()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if err != nil {
		t.comments = nil
		t.err = err
		return err
	}
	t.comments = SortDescending(list)
	t.loaded = true
	return nil
}

// Post validates, sends, and reloads. No optimistic insert: the thread shown
// afterwards is whatever the backend returned.
func (t *Thread) Post(ctx context.Context, authorID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmpty
	}

	done := t.tracker.Begin("loading.sending")
	err := t.client.AddComment(ctx, t.taskID, authorID, text, model.CommentGeneral)
	done()
	if err != nil {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		return err
	}
	return t.Load(ctx)
}

func (t *Thread) Comments() []model.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Comment(nil), t.comments...)
}

func (t *Thread) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.comments)
}

func (t *Thread) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

func (t *Thread) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

func (t *Thread) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// SortDescending returns the comments newest first. Stable, so backend order
// breaks timestamp ties.
func SortDescending(list []model.Comment) []model.Comment {
	out := append([]model.Comment(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp.Time)
	})
	return out
}
