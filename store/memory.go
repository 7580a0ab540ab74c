package store

import (
	"context"
	"sync"
	"time"
)

const purgeInterval = 10 * time.Second

type inMemoryEntry[TState any] struct {
	StateEntry[TState]
	ExpireOn *time.Time
}

// InMemoryStore keeps entries in a map guarded by an RWMutex. Expired
// entries are hidden from Get immediately and purged in the background.
type InMemoryStore[TState any] struct {
	entries map[string]inMemoryEntry[TState]
	mu      sync.RWMutex
	done    chan struct{}
	stop    sync.Once
}

func NewInMemoryStore[TState any]() *InMemoryStore[TState] {
	s := &InMemoryStore[TState]{
		entries: make(map[string]inMemoryEntry[TState]),
		done:    make(chan struct{}),
	}
	go s.purge()
	return s
}

func (s *InMemoryStore[TState]) purge() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if entry.ExpireOn != nil && entry.ExpireOn.Before(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *InMemoryStore[TState]) Get(_ context.Context, keys ...string) ([]StateEntry[TState], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]StateEntry[TState], 0, len(keys))
	for _, key := range keys {
		entry, ok := s.entries[key]
		if !ok {
			continue
		}
		if entry.ExpireOn != nil && entry.ExpireOn.Before(time.Now()) {
			continue
		}
		result = append(result, entry.StateEntry)
	}
	return result, nil
}

func (s *InMemoryStore[TState]) Set(_ context.Context, entries ...StateEntry[TState]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conflicts := make([]string, 0)

	for _, entry := range entries {
		if stored, ok := s.entries[entry.Key]; ok {
			if !timestampsMatch(stored.Timestamp, entry.Timestamp) {
				conflicts = append(conflicts, entry.Key)
				continue
			}
			if entry.State == nil {
				delete(s.entries, entry.Key)
				continue
			}
		} else if entry.State == nil {
			continue
		}

		entry.Timestamp = ToPtr(time.Now().UnixNano())
		wrapper := inMemoryEntry[TState]{StateEntry: entry}
		if entry.Expiry != nil {
			wrapper.ExpireOn = ToPtr(time.Now().Add(*entry.Expiry))
		}
		s.entries[entry.Key] = wrapper
	}

	if len(conflicts) > 0 {
		return &StateStoreConflict{conflicts: conflicts}
	}
	return nil
}

// Close stops the background purge goroutine.
func (s *InMemoryStore[TState]) Close() {
	s.stop.Do(func() {
		close(s.done)
	})
}

func timestampsMatch(stored, given *int64) bool {
	if stored == nil || given == nil {
		return stored == nil && given == nil
	}
	return *stored == *given
}
