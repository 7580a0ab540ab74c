package signal

import (
	"github.com/drava/go-surge/event"
)

// Observer receives the events of a signal through per-variant callbacks.
// Nil callbacks are skipped. An observer has no lifetime of its own; it is a
// forwarding target owned by whoever attached it.
type Observer[V any] struct {
	OnValue       func(V)
	OnFailed      func(error)
	OnCompleted   func()
	OnInterrupted func()
}

func (o Observer[V]) send(e event.Event[V]) {
	switch e.Kind() {
	case event.KindValue:
		if o.OnValue != nil {
			v, _ := e.Val()
			o.OnValue(v)
		}
	case event.KindFailed:
		if o.OnFailed != nil {
			o.OnFailed(e.Err())
		}
	case event.KindCompleted:
		if o.OnCompleted != nil {
			o.OnCompleted()
		}
	case event.KindInterrupted:
		if o.OnInterrupted != nil {
			o.OnInterrupted()
		}
	}
}

// NewObserver builds an Observer that funnels every event into a single
// callback.
func NewObserver[V any](fn func(event.Event[V])) Observer[V] {
	return Observer[V]{
		OnValue:       func(v V) { fn(event.Value(v)) },
		OnFailed:      func(err error) { fn(event.Failed[V](err)) },
		OnCompleted:   func() { fn(event.Completed[V]()) },
		OnInterrupted: func() { fn(event.Interrupted[V]()) },
	}
}

// Forward returns an observer that re-sends every event into sink,
// preserving the event kind.
func Forward[V any](sink *Sink[V]) Observer[V] {
	return Observer[V]{
		OnValue:       sink.Write,
		OnFailed:      sink.Fail,
		OnCompleted:   sink.Complete,
		OnInterrupted: sink.Interrupt,
	}
}
