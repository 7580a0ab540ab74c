package xsync

import (
	"sync"
)

// Lock is a minimal, non-reentrant mutual exclusion primitive. Fairness is
// not guaranteed; mutual exclusion is. Acquiring a Lock that the calling
// goroutine already holds blocks forever, which is the intended failure mode
// for re-entrant access: a detectable hang instead of corrupted ordering.
type Lock struct {
	mu sync.Mutex
}

func (l *Lock) Lock() {
	l.mu.Lock()
}

func (l *Lock) Unlock() {
	l.mu.Unlock()
}

// TryLock reports whether the lock was acquired without blocking.
func (l *Lock) TryLock() bool {
	return l.mu.TryLock()
}
