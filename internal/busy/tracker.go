// Package busy tracks in-flight backend requests for the global spinner
// overlay. It is purely observational: nothing consults it before starting
// another request.
package busy

import "sync"

type State struct {
	Active bool
	Label  string
	Count  int
}

type Tracker struct {
	mu    sync.Mutex
	count int
	label string
	subs  map[int]func(State)
	next  int
}

func NewTracker() *Tracker {
	return &Tracker{subs: map[int]func(State){}}
}

// Begin marks a request as in flight and returns its done func. Call done
// exactly once; deferring it at the call site is the expected shape.
func (t *Tracker) Begin(label string) (done func()) {
	t.mu.Lock()
	t.count++
	t.label = label
	st := t.stateLocked()
	fns := t.subscribersLocked()
	t.mu.Unlock()
	notify(fns, st)

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			t.count--
			if t.count <= 0 {
				t.count = 0
				t.label = ""
			}
			st := t.stateLocked()
			fns := t.subscribersLocked()
			t.mu.Unlock()
			notify(fns, st)
		})
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Subscribe registers fn to run on every state change.
func (t *Tracker) Subscribe(fn func(State)) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

func (t *Tracker) stateLocked() State {
	return State{Active: t.count > 0, Label: t.label, Count: t.count}
}

func (t *Tracker) subscribersLocked() []func(State) {
	fns := make([]func(State), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(State), st State) {
	for _, fn := range fns {
		fn(st)
	}
}
