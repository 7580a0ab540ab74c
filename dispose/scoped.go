package dispose

import (
	"runtime"
)

// Scoped ties a disposable to the reachability of the Scoped value itself:
// when the wrapper is collected without having been disposed explicitly, the
// inner disposable is disposed.
type Scoped struct {
	inner Disposable
}

func NewScoped(inner Disposable) *Scoped {
	s := &Scoped{inner: inner}
	runtime.SetFinalizer(s, func(s *Scoped) {
		s.inner.Dispose()
	})
	return s
}

func (s *Scoped) Dispose() {
	runtime.SetFinalizer(s, nil)
	s.inner.Dispose()
}

func (s *Scoped) IsDisposed() bool {
	return s.inner.IsDisposed()
}
