// Package dispose implements the resource-disposal graph: one-shot action
// disposables, composites with token-based removal, serial slots and
// scope-bound wrappers.
package dispose

import (
	"github.com/drava/go-surge/xsync"
)

const (
	stateActive int32 = iota
	stateDisposed
)

// Disposable is a one-shot, idempotent resource-release handle. Dispose
// never fails; a second call is a no-op.
type Disposable interface {
	Dispose()
	IsDisposed() bool
}

type anyDisposable struct {
	state  *xsync.AtomicState
	action func()
}

// New returns a disposable that runs action at most once.
func New(action func()) Disposable {
	return &anyDisposable{
		state:  xsync.NewAtomicState(stateActive),
		action: action,
	}
}

// Nop returns a disposable with no action. Disposing it only flips the flag.
func Nop() Disposable {
	return New(nil)
}

// Disposed returns a disposable that is already spent.
func Disposed() Disposable {
	d := New(nil)
	d.Dispose()
	return d
}

func (d *anyDisposable) Dispose() {
	if !d.state.TryTransition(stateActive, stateDisposed) {
		return
	}
	if d.action != nil {
		d.action()
		d.action = nil
	}
}

func (d *anyDisposable) IsDisposed() bool {
	return d.state.Is(stateDisposed)
}
