package kvstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "k", `"v1"`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || v != `"v1"` {
		t.Fatalf("Get: %q ok=%v err=%v", v, ok, err)
	}
	if err := s.Set(ctx, "k", `"v2"`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, _, _ := s.Get(ctx, "k"); v != `"v2"` {
		t.Fatalf("overwrite: %q", v)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("key survived delete")
	}
}

func TestValue_RoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	type rec struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	v := NewValue(s, "test.rec", rec{})
	want := rec{Name: "ana", N: 7}
	if err := v.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Simulated reload: fresh store over the same file.
	s2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, ok := NewValue(s2, "test.rec", rec{}).GetOK(ctx)
	if !ok {
		t.Fatalf("expected value after reopen")
	}
	if got != want {
		t.Fatalf("roundtrip mismatch: %#v != %#v", got, want)
	}
}

func TestValue_DecodeFailureFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Set(ctx, "test.rec", `{not json`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v := NewValue(s, "test.rec", 42)
	got, ok := v.GetOK(ctx)
	if ok {
		t.Fatalf("corrupt value must not report ok")
	}
	if got != 42 {
		t.Fatalf("expected default 42, got %d", got)
	}
}

func TestWatcher_NotifiesOnOtherConnectionWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	a, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open a: %v", err)
	}
	defer a.Close()
	b, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open b: %v", err)
	}
	defer b.Close()

	w := a.Watch(25 * time.Millisecond)
	defer w.Close()

	got := make(chan string, 1)
	cancel := w.Subscribe("shared.key", func(raw string, ok bool) {
		if ok {
			got <- raw
		}
	})
	defer cancel()

	if err := b.Set(ctx, "shared.key", `"from-b"`); err != nil {
		t.Fatalf("Set via b: %v", err)
	}

	select {
	case raw := <-got:
		if raw != `"from-b"` {
			t.Fatalf("raw = %q", raw)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no notification for cross-connection write")
	}
}

func TestWatcher_WriteBeforeFirstPollIsReported(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	a, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open a: %v", err)
	}
	defer a.Close()
	b, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open b: %v", err)
	}
	defer b.Close()

	// A long interval guarantees the commit below lands before the first
	// poll; the bump must be measured against a baseline captured at Watch
	// time, not at the first poll.
	w := a.Watch(150 * time.Millisecond)
	defer w.Close()

	got := make(chan string, 1)
	cancel := w.Subscribe("session", func(raw string, ok bool) {
		if ok {
			got <- raw
		}
	})
	defer cancel()

	if err := b.Set(ctx, "session", `"s1"`); err != nil {
		t.Fatalf("Set via b: %v", err)
	}

	select {
	case raw := <-got:
		if raw != `"s1"` {
			t.Fatalf("raw = %q", raw)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("write committed before the first poll was never reported")
	}
}

func TestWatcher_UnchangedValueDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	a, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open a: %v", err)
	}
	defer a.Close()
	b, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open b: %v", err)
	}
	defer b.Close()

	if err := b.Set(ctx, "watched", `"same"`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := a.Watch(25 * time.Millisecond)
	defer w.Close()

	fired := make(chan struct{}, 4)
	cancel := w.Subscribe("watched", func(string, bool) { fired <- struct{}{} })
	defer cancel()

	// A commit elsewhere bumps data_version, but "watched" is unchanged.
	if err := b.Set(ctx, "other", `"x"`); err != nil {
		t.Fatalf("Set other: %v", err)
	}

	select {
	case <-fired:
		t.Fatalf("notified although the watched key did not change")
	case <-time.After(300 * time.Millisecond):
	}
}
