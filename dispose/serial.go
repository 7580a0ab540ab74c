package dispose

import (
	"github.com/drava/go-surge/xsync"
)

type serialState struct {
	disposed bool
	inner    Disposable
}

// Serial holds exactly one replaceable child slot. Setting the slot disposes
// the previous occupant; setting it after the serial has been disposed
// disposes the new value inline.
type Serial struct {
	state *xsync.Atomic[serialState]
}

func NewSerial() *Serial {
	return &Serial{state: xsync.NewAtomic(serialState{})}
}

// Set replaces the slot with d, disposing whatever occupied it before.
func (s *Serial) Set(d Disposable) {
	var old Disposable
	disposed := false

	s.state.Modify(func(st *serialState) {
		if st.disposed {
			disposed = true
			return
		}
		old = st.inner
		st.inner = d
	})

	if disposed {
		if d != nil {
			d.Dispose()
		}
		return
	}
	if old != nil {
		old.Dispose()
	}
}

// Get returns the current occupant, which may be nil.
func (s *Serial) Get() Disposable {
	var inner Disposable
	s.state.WithValue(func(st serialState) {
		inner = st.inner
	})
	return inner
}

func (s *Serial) Dispose() {
	var inner Disposable
	s.state.Modify(func(st *serialState) {
		if st.disposed {
			return
		}
		st.disposed = true
		inner = st.inner
		st.inner = nil
	})
	if inner != nil {
		inner.Dispose()
	}
}

func (s *Serial) IsDisposed() bool {
	disposed := false
	s.state.WithValue(func(st serialState) {
		disposed = st.disposed
	})
	return disposed
}
