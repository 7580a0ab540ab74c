// Package store persists stream state snapshots keyed by string, with
// optimistic concurrency and optional expiry. It backs the persistence
// bridge in the producer package but stands on its own.
package store

import (
	"context"
	"time"
)

// StateEntry is one keyed snapshot. A nil State on Set deletes the key.
// Timestamp is the concurrency token: pass back the value you read, or nil
// for a blind write of a new key. Expiry, when set, bounds the entry's
// lifetime from the moment it is written.
type StateEntry[TState any] struct {
	Key       string
	State     *TState
	Timestamp *int64
	Expiry    *time.Duration
}

type StateStore[TState any] interface {
	Get(ctx context.Context, keys ...string) ([]StateEntry[TState], error)
	Set(ctx context.Context, entries ...StateEntry[TState]) error
}

// StateStoreConflict reports the keys whose timestamps no longer matched at
// write time. Entries without conflicts were still written.
type StateStoreConflict struct {
	conflicts []string
}

func (s *StateStoreConflict) Error() string {
	return "state entry was modified concurrently"
}

func (s *StateStoreConflict) GetConflicts() []string {
	return s.conflicts
}

// ToPtr lifts a value to a pointer, for building entries inline.
func ToPtr[T any](v T) *T {
	return &v
}
