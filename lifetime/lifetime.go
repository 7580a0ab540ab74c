// Package lifetime provides a read-only handle that notifies observers when
// an owning scope ends.
package lifetime

import (
	"runtime"

	"github.com/drava/go-surge/dispose"
)

// Lifetime is the read-only projection of a disposal token. It ends exactly
// once; observers attached after the end are notified synchronously.
type Lifetime struct {
	scope *dispose.Composite
}

// Token ends its Lifetime when End is called or when the token itself
// becomes unreachable, whichever happens first.
type Token struct {
	scope *dispose.Composite
}

// Make returns a fresh Lifetime and the Token that ends it.
func Make() (*Lifetime, *Token) {
	scope := dispose.NewComposite()
	token := &Token{scope: scope}
	runtime.SetFinalizer(token, func(t *Token) {
		t.scope.Dispose()
	})
	return &Lifetime{scope: scope}, token
}

// ObserveEnded registers action to run when the lifetime ends. If it has
// already ended, action runs synchronously before ObserveEnded returns. The
// returned disposable detaches the observer without running it.
func (l *Lifetime) ObserveEnded(action func()) dispose.Disposable {
	h := l.scope.Add(dispose.New(action))
	if h == (dispose.Handle{}) {
		return dispose.Disposed()
	}
	return dispose.New(func() {
		l.scope.Remove(h)
	})
}

// Add ties d to the lifetime: it is disposed when the lifetime ends, or
// immediately if it already has.
func (l *Lifetime) Add(d dispose.Disposable) {
	l.scope.Add(d)
}

// HasEnded reports whether the lifetime has ended.
func (l *Lifetime) HasEnded() bool {
	return l.scope.IsDisposed()
}

// End ends the lifetime. It is safe to call more than once; observers are
// notified exactly once.
func (t *Token) End() {
	runtime.SetFinalizer(t, nil)
	t.scope.Dispose()
}
