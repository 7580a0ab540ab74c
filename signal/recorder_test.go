package signal

import (
	"sync"

	"github.com/drava/go-surge/event"
)

// recorder accumulates every event an observer receives, for asserting
// whole-stream histories.
type recorder[V any] struct {
	mu     sync.Mutex
	events []event.Event[V]
}

func newRecorder[V any]() *recorder[V] {
	return &recorder[V]{}
}

func (r *recorder[V]) observer() Observer[V] {
	return NewObserver(func(e event.Event[V]) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
}

func (r *recorder[V]) Events() []event.Event[V] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event[V](nil), r.events...)
}

func (r *recorder[V]) Values() []V {
	r.mu.Lock()
	defer r.mu.Unlock()
	values := make([]V, 0, len(r.events))
	for _, e := range r.events {
		if v, ok := e.Val(); ok {
			values = append(values, v)
		}
	}
	return values
}

func (r *recorder[V]) Kinds() []event.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]event.Kind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

func (r *recorder[V]) Last() (event.Event[V], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return event.Event[V]{}, false
	}
	return r.events[len(r.events)-1], true
}
