package kvstore

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"
)

// Watcher notifies subscribers when another connection changes a watched key.
//
// SQLite bumps `PRAGMA data_version` on a dedicated connection whenever a
// different connection commits, which makes it a cheap cross-process change
// signal. The counter is per database, not per key, so on every bump the
// watcher re-reads all watched keys and only notifies those whose serialized
// value actually changed.
type Watcher struct {
	store    *Store
	interval time.Duration

	mu    sync.Mutex
	subs  map[string]map[int]func(raw string, ok bool)
	known map[string]watchedValue
	next  int

	cancel context.CancelFunc
	done   chan struct{}
}

type watchedValue struct {
	raw string
	ok  bool
}

// Watch starts a polling watcher. Close it when done.
func (s *Store) Watch(interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		store:    s,
		interval: interval,
		subs:     map[string]map[int]func(string, bool){},
		known:    map[string]watchedValue{},
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	// The baseline has to exist before Watch returns. A dedicated connection
	// is required either way: data_version only moves when *another*
	// connection commits, so polling must not share pooled connections. And a
	// commit landing between Subscribe and a lazily-read baseline would be
	// folded into it and never reported.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		log.Printf("kvstore: watcher connection: %v", err)
		cancel()
		close(w.done)
		return w
	}
	var last int64
	if err := conn.QueryRowContext(ctx, "PRAGMA data_version;").Scan(&last); err != nil {
		log.Printf("kvstore: data_version: %v", err)
		conn.Close()
		cancel()
		close(w.done)
		return w
	}

	go w.loop(ctx, conn, last)
	return w
}

// Subscribe registers fn for changes to key and returns an unsubscribe func.
// fn receives the new raw value and whether the key still exists.
func (w *Watcher) Subscribe(key string, fn func(raw string, ok bool)) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.subs[key] == nil {
		w.subs[key] = map[int]func(string, bool){}
		// Snapshot the current value so only real changes notify.
		raw, ok, err := w.store.Get(context.Background(), key)
		if err != nil {
			log.Printf("kvstore: watch snapshot %q: %v", key, err)
		}
		w.known[key] = watchedValue{raw: raw, ok: ok}
	}
	id := w.next
	w.next++
	w.subs[key][id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs[key], id)
		if len(w.subs[key]) == 0 {
			delete(w.subs, key)
			delete(w.known, key)
		}
	}
}

func (w *Watcher) Close() {
	w.cancel()
	<-w.done
}

func (w *Watcher) loop(ctx context.Context, conn *sql.Conn, last int64) {
	defer close(w.done)
	defer conn.Close()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var v int64
		if err := conn.QueryRowContext(ctx, "PRAGMA data_version;").Scan(&v); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("kvstore: data_version: %v", err)
			continue
		}
		if v == last {
			continue
		}
		last = v
		w.recheck(ctx)
	}
}

func (w *Watcher) recheck(ctx context.Context) {
	w.mu.Lock()
	keys := make([]string, 0, len(w.subs))
	for k := range w.subs {
		keys = append(keys, k)
	}
	w.mu.Unlock()

	for _, key := range keys {
		raw, ok, err := w.store.Get(ctx, key)
		if err != nil {
			log.Printf("kvstore: watch read %q: %v", key, err)
			continue
		}

		w.mu.Lock()
		prev, tracked := w.known[key]
		changed := tracked && (prev.raw != raw || prev.ok != ok)
		w.known[key] = watchedValue{raw: raw, ok: ok}
		var fns []func(string, bool)
		if changed {
			for _, fn := range w.subs[key] {
				fns = append(fns, fn)
			}
		}
		w.mu.Unlock()

		for _, fn := range fns {
			fn(raw, ok)
		}
	}
}
