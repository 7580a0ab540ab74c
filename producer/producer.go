// Package producer implements cold streams: deferred work that is performed
// anew for every start, feeding an independent signal each time.
package producer

import (
	"time"

	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/event"
	"github.com/drava/go-surge/instrument"
	"github.com/drava/go-surge/signal"
)

// Producer describes how to start a stream of values. It holds no state of
// its own; copying a Producer is free and every start is fully independent
// of every other.
type Producer[V any] struct {
	start func(*signal.Sink[V], *dispose.Composite)
}

// New builds a producer from a start function. The function runs once per
// start, after the caller has had a chance to observe the signal; events it
// sends before then cannot be missed. Resources registered on the scope are
// released when the started stream terminates or is interrupted.
func New[V any](start func(*signal.Sink[V], *dispose.Composite)) Producer[V] {
	return Producer[V]{start: start}
}

// StartWithSignal materialises one run of the producer. setup receives the
// signal before any work begins, so observers it attaches see every event;
// disposing the interrupter sends interrupted and tears the run down. If
// setup disposes the interrupter, the work is never started.
func (p Producer[V]) StartWithSignal(setup func(*signal.Signal[V], dispose.Disposable)) {
	var sink *signal.Sink[V]
	var scope *dispose.Composite
	sig := signal.New(func(in *signal.Sink[V], sc *dispose.Composite) {
		sink = in
		scope = sc
	})

	interrupter := dispose.New(sink.Interrupt)
	setup(sig, interrupter)

	if interrupter.IsDisposed() {
		instrument.Metrics().Incr(sig.Activity(), "producer_start_abandoned", 1)
		return
	}
	if p.start != nil {
		began := time.Now()
		p.start(sink, scope)
		instrument.Metrics().Timing(sig.Activity(), "producer_start", time.Since(began))
	}
}

// Start runs the producer, delivering its events to o. The returned handle
// interrupts the run.
func (p Producer[V]) Start(o signal.Observer[V]) dispose.Disposable {
	var interrupter dispose.Disposable
	p.StartWithSignal(func(sig *signal.Signal[V], stop dispose.Disposable) {
		interrupter = stop
		sig.Observe(o)
	})
	return interrupter
}

// Subscribe runs the producer with per-variant callbacks.
func (p Producer[V]) Subscribe(onValue func(V), opts ...signal.SubscribeOption) dispose.Disposable {
	return p.Start(signal.CallbackObserver(onValue, opts...))
}

// Of emits the given values and completes.
func Of[V any](values ...V) Producer[V] {
	return New(func(sink *signal.Sink[V], _ *dispose.Composite) {
		for _, v := range values {
			sink.Write(v)
		}
		sink.Complete()
	})
}

// Empty completes immediately without emitting.
func Empty[V any]() Producer[V] {
	return New(func(sink *signal.Sink[V], _ *dispose.Composite) {
		sink.Complete()
	})
}

// Never emits nothing and never terminates on its own.
func Never[V any]() Producer[V] {
	return Producer[V]{}
}

// Failed fails immediately with err.
func Failed[V any](err error) Producer[V] {
	return New(func(sink *signal.Sink[V], _ *dispose.Composite) {
		sink.Fail(err)
	})
}

// Lift promotes a signal transformation to producers: each start of the
// result starts p once and applies transform to that run's signal.
func Lift[V, U any](p Producer[V], transform func(*signal.Signal[V]) *signal.Signal[U]) Producer[U] {
	return New(func(out *signal.Sink[U], scope *dispose.Composite) {
		p.StartWithSignal(func(sig *signal.Signal[V], stop dispose.Disposable) {
			scope.Add(stop)
			scope.Add(transform(sig).Observe(signal.Forward(out)))
		})
	})
}

func Map[V, U any](p Producer[V], fn func(V) U) Producer[U] {
	return Lift(p, func(sig *signal.Signal[V]) *signal.Signal[U] {
		return signal.Map(sig, fn)
	})
}

func Filter[V any](p Producer[V], pred func(V) bool) Producer[V] {
	return Lift(p, func(sig *signal.Signal[V]) *signal.Signal[V] {
		return signal.Filter(sig, pred)
	})
}

func Take[V any](p Producer[V], count int) Producer[V] {
	return Lift(p, func(sig *signal.Signal[V]) *signal.Signal[V] {
		return signal.Take(sig, count)
	})
}

func On[V any](p Producer[V], fn func(event.Event[V])) Producer[V] {
	return Lift(p, func(sig *signal.Signal[V]) *signal.Signal[V] {
		return signal.On(sig, fn)
	})
}
