// Package session owns the login state: who is logged in, when they logged
// in, and when they were last seen. The record lives in the shared kv store
// so every process (and a second terminal) sees the same session.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tino-q/ssonsoles-tasks/internal/kvstore"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
)

// Key is the kv-store key holding the session record.
const Key = "sonsoles.user"

const (
	// MaxAge is the session lifetime; past it the next load logs out.
	MaxAge = 7 * 24 * time.Hour

	// activityThrottle suppresses lastActivity writes closer together than
	// this. There is no background timer: expiry and activity are only
	// evaluated when something touches the session.
	activityThrottle = 5 * time.Minute

	// restoredAfter: a session older than this on load is a "restored"
	// session (the welcome-back notification).
	restoredAfter = 5 * time.Minute
)

type Session struct {
	Cleaner      model.Cleaner `json:"actor"`
	LoginTime    time.Time     `json:"loginTime"`
	LastActivity time.Time     `json:"lastActivity"`
}

// Info is a derived, read-only view of the current session for diagnostics.
type Info struct {
	LoginTime       time.Time
	LastActivity    time.Time
	Elapsed         time.Duration
	Restored        bool
	DaysUntilExpiry float64
}

// Manager is a two-state machine (logged out / logged in) over the kv store.
// It holds no cache: every read goes to the store, which is where the lazy
// expiry check lives.
type Manager struct {
	value *kvstore.Value[*Session]

	now func() time.Time
}

func NewManager(store *kvstore.Store) *Manager {
	return &Manager{
		value: kvstore.NewValue[*Session](store, Key, nil),
		now:   time.Now,
	}
}

// Login stamps loginTime = lastActivity = now and persists the session.
func (m *Manager) Login(ctx context.Context, cleaner model.Cleaner) (*Session, error) {
	now := m.now()
	s := &Session{Cleaner: cleaner, LoginTime: now, LastActivity: now}
	if err := m.value.Set(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Logout removes the persisted session.
func (m *Manager) Logout(ctx context.Context) error {
	return m.value.Clear(ctx)
}

// Current loads the persisted session. An expired session is evicted here
// and reported as logged out; this is the sole expiry enforcement.
func (m *Manager) Current(ctx context.Context) (*Session, bool) {
	s, ok := m.value.GetOK(ctx)
	if !ok || s == nil {
		return nil, false
	}
	if !m.valid(s) {
		_ = m.Logout(ctx)
		return nil, false
	}
	return s, true
}

// Valid reports whether the session's age is under MaxAge.
func (m *Manager) Valid(ctx context.Context) bool {
	_, ok := m.Current(ctx)
	return ok
}

func (m *Manager) valid(s *Session) bool {
	return m.now().Sub(s.LoginTime) < MaxAge
}

// TouchActivity persists an updated lastActivity, but only when the recorded
// value is more than the throttle window old. loginTime never changes.
// Returns whether a write happened.
func (m *Manager) TouchActivity(ctx context.Context) (bool, error) {
	s, ok := m.Current(ctx)
	if !ok {
		return false, nil
	}
	now := m.now()
	if now.Sub(s.LastActivity) <= activityThrottle {
		return false, nil
	}
	s.LastActivity = now
	if err := m.value.Set(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

// Info derives the diagnostic view of the current session.
func (m *Manager) Info(ctx context.Context) (Info, bool) {
	s, ok := m.Current(ctx)
	if !ok {
		return Info{}, false
	}
	now := m.now()
	elapsed := now.Sub(s.LoginTime)
	return Info{
		LoginTime:       s.LoginTime,
		LastActivity:    s.LastActivity,
		Elapsed:         elapsed,
		Restored:        elapsed > restoredAfter,
		DaysUntilExpiry: (MaxAge - elapsed).Hours() / 24,
	}, true
}

// Subscribe wires a kv-store watcher to session changes from other
// processes: fn receives the new session (nil on logout) once per change.
func (m *Manager) Subscribe(w *kvstore.Watcher, fn func(s *Session, loggedIn bool)) (cancel func()) {
	return w.Subscribe(Key, func(raw string, ok bool) {
		if !ok {
			fn(nil, false)
			return
		}
		var s *Session
		if err := json.Unmarshal([]byte(raw), &s); err != nil || s == nil {
			fn(nil, false)
			return
		}
		if !m.valid(s) {
			fn(nil, false)
			return
		}
		fn(s, true)
	})
}
