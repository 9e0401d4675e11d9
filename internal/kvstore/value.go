package kvstore

import (
	"context"
	"encoding/json"
	"log"
)

// Value binds one key to a JSON-encoded T with a fallback default.
// Reads are best effort: a missing key or an undecodable stored value yields
// the default (the latter is logged), never an error to the caller.
type Value[T any] struct {
	store *Store
	key   string
	def   T
}

func NewValue[T any](s *Store, key string, def T) *Value[T] {
	return &Value[T]{store: s, key: key, def: def}
}

func (v *Value[T]) Key() string { return v.key }

func (v *Value[T]) Get(ctx context.Context) T {
	out, _ := v.GetOK(ctx)
	return out
}

// GetOK additionally reports whether a decodable value was present.
func (v *Value[T]) GetOK(ctx context.Context) (T, bool) {
	raw, ok, err := v.store.Get(ctx, v.key)
	if err != nil {
		log.Printf("kvstore: read %q: %v", v.key, err)
		return v.def, false
	}
	if !ok {
		return v.def, false
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Printf("kvstore: decode %q: %v", v.key, err)
		return v.def, false
	}
	return out, true
}

func (v *Value[T]) Set(ctx context.Context, val T) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return v.store.Set(ctx, v.key, string(b))
}

// Clear removes the key (the nil-write of the storage contract).
func (v *Value[T]) Clear(ctx context.Context) error {
	return v.store.Delete(ctx, v.key)
}
