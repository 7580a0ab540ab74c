package xsync

import (
	"sync/atomic"
)

// AtomicState is a lock-free cell holding a small enumerated state. It is
// used where a full Lock would be overkill, such as the disposed flag on
// the hot disposal path.
type AtomicState struct {
	v atomic.Int32
}

func NewAtomicState(initial int32) *AtomicState {
	s := &AtomicState{}
	s.v.Store(initial)
	return s
}

// Is reports whether the cell currently holds state.
func (s *AtomicState) Is(state int32) bool {
	return s.v.Load() == state
}

// TryTransition atomically moves the cell from one state to another. It
// reports whether the transition was made; exactly one caller racing on the
// same transition wins.
func (s *AtomicState) TryTransition(from, to int32) bool {
	return s.v.CompareAndSwap(from, to)
}

func (s *AtomicState) Load() int32 {
	return s.v.Load()
}
