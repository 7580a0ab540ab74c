package signal

import (
	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/event"
	"github.com/drava/go-surge/xsync"
)

// Map returns a signal emitting fn applied to every value of src. Terminal
// events pass through unchanged.
func Map[V, U any](src *Signal[V], fn func(V) U) *Signal[U] {
	return New(func(sink *Sink[U], scope *dispose.Composite) {
		scope.Add(src.Observe(Observer[V]{
			OnValue:       func(v V) { sink.Write(fn(v)) },
			OnFailed:      sink.Fail,
			OnCompleted:   sink.Complete,
			OnInterrupted: sink.Interrupt,
		}))
	}, WithActivityName(src.Activity()+".map"))
}

// Filter returns a signal emitting only the values of src for which pred
// holds.
func Filter[V any](src *Signal[V], pred func(V) bool) *Signal[V] {
	return New(func(sink *Sink[V], scope *dispose.Composite) {
		scope.Add(src.Observe(Observer[V]{
			OnValue: func(v V) {
				if pred(v) {
					sink.Write(v)
				}
			},
			OnFailed:      sink.Fail,
			OnCompleted:   sink.Complete,
			OnInterrupted: sink.Interrupt,
		}))
	}, WithActivityName(src.Activity()+".filter"))
}

// Take returns a signal that forwards the first count values of src and then
// completes.
func Take[V any](src *Signal[V], count int) *Signal[V] {
	return New(func(sink *Sink[V], scope *dispose.Composite) {
		if count <= 0 {
			sink.Complete()
			return
		}
		remaining := xsync.NewAtomic(count)
		scope.Add(src.Observe(Observer[V]{
			OnValue: func(v V) {
				forward, last := false, false
				remaining.Modify(func(n *int) {
					if *n == 0 {
						return
					}
					*n--
					forward = true
					last = *n == 0
				})
				if forward {
					sink.Write(v)
				}
				if last {
					sink.Complete()
				}
			},
			OnFailed:      sink.Fail,
			OnCompleted:   sink.Complete,
			OnInterrupted: sink.Interrupt,
		}))
	}, WithActivityName(src.Activity()+".take"))
}

// On taps every event of src without altering the stream.
func On[V any](src *Signal[V], fn func(event.Event[V])) *Signal[V] {
	return New(func(sink *Sink[V], scope *dispose.Composite) {
		scope.Add(src.Observe(NewObserver(func(e event.Event[V]) {
			fn(e)
			sink.Send(e)
		})))
	}, WithActivityName(src.Activity()+".on"))
}
