package signal

import (
	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/xsync"
)

type Tuple2[A, B any] struct {
	First  A
	Second B
}

type Tuple3[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

type Tuple4[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// slotSink receives the per-slot callbacks of an n-ary aggregation. The
// heterogeneous inputs are erased to any at the slot boundary and re-typed
// when the aggregate emits; the erasure never leaves this package.
type slotSink interface {
	value(slot int, v any)
	completeSlot(slot int)
	failSlot(err error)
	interruptSlot()
}

func slotObserver[V any](agg slotSink, slot int) Observer[V] {
	return Observer[V]{
		OnValue:       func(v V) { agg.value(slot, v) },
		OnFailed:      agg.failSlot,
		OnCompleted:   func() { agg.completeSlot(slot) },
		OnInterrupted: agg.interruptSlot,
	}
}

// aggregateOut is the write side of an aggregate: emit receives one value
// per slot, the rest terminate the aggregate.
type aggregateOut struct {
	emit      func([]any)
	fail      func(error)
	complete  func()
	interrupt func()
}

func sinkOut[V any](sink *Sink[V], fromSlots func([]any) V) aggregateOut {
	return aggregateOut{
		emit:      func(values []any) { sink.Write(fromSlots(values)) },
		fail:      sink.Fail,
		complete:  sink.Complete,
		interrupt: sink.Interrupt,
	}
}

type combineState struct {
	latest    []any
	filled    []bool
	completed []bool
	done      bool
}

// combineAggregator tracks the most recent value per slot and emits a tuple
// once every slot has produced at least one value, then again on every
// subsequent value. Emission happens while the aggregate's lock is held so
// that tuples leave in the order their triggering values arrived; pushing
// back into an input slot from an emission callback therefore deadlocks, the
// same fail-loud behavior as a recursive value send.
type combineAggregator struct {
	state *xsync.Atomic[combineState]
	out   aggregateOut
}

func newCombineAggregator(n int, out aggregateOut) *combineAggregator {
	return &combineAggregator{
		state: xsync.NewAtomic(combineState{
			latest:    make([]any, n),
			filled:    make([]bool, n),
			completed: make([]bool, n),
		}),
		out: out,
	}
}

func (a *combineAggregator) value(slot int, v any) {
	a.state.Modify(func(st *combineState) {
		if st.done {
			return
		}
		st.latest[slot] = v
		st.filled[slot] = true
		if allTrue(st.filled) {
			a.out.emit(snapshot(st.latest))
		}
	})
}

func (a *combineAggregator) completeSlot(slot int) {
	a.state.Modify(func(st *combineState) {
		if st.done {
			return
		}
		st.completed[slot] = true
		if allTrue(st.completed) {
			st.done = true
			a.out.complete()
		}
	})
}

func (a *combineAggregator) failSlot(err error) {
	a.state.Modify(func(st *combineState) {
		if st.done {
			return
		}
		st.done = true
		a.out.fail(err)
	})
}

func (a *combineAggregator) interruptSlot() {
	a.state.Modify(func(st *combineState) {
		if st.done {
			return
		}
		st.done = true
		a.out.interrupt()
	})
}

func allTrue(flags []bool) bool {
	for _, f := range flags {
		if !f {
			return false
		}
	}
	return true
}

func snapshot(values []any) []any {
	return append([]any(nil), values...)
}

// CombineLatest2 emits a tuple of the most recent values of a and b, first
// once both have emitted and then on every subsequent value from either. It
// completes once both inputs complete; a failure or interruption from either
// input terminates the aggregate immediately.
func CombineLatest2[A, B any](a *Signal[A], b *Signal[B]) *Signal[Tuple2[A, B]] {
	return New(func(sink *Sink[Tuple2[A, B]], scope *dispose.Composite) {
		agg := newCombineAggregator(2, sinkOut(sink, func(v []any) Tuple2[A, B] {
			return Tuple2[A, B]{v[0].(A), v[1].(B)}
		}))
		scope.Add(a.Observe(slotObserver[A](agg, 0)))
		scope.Add(b.Observe(slotObserver[B](agg, 1)))
	}, WithActivityName("combineLatest"))
}

func CombineLatest3[A, B, C any](a *Signal[A], b *Signal[B], c *Signal[C]) *Signal[Tuple3[A, B, C]] {
	return New(func(sink *Sink[Tuple3[A, B, C]], scope *dispose.Composite) {
		agg := newCombineAggregator(3, sinkOut(sink, func(v []any) Tuple3[A, B, C] {
			return Tuple3[A, B, C]{v[0].(A), v[1].(B), v[2].(C)}
		}))
		scope.Add(a.Observe(slotObserver[A](agg, 0)))
		scope.Add(b.Observe(slotObserver[B](agg, 1)))
		scope.Add(c.Observe(slotObserver[C](agg, 2)))
	}, WithActivityName("combineLatest"))
}

func CombineLatest4[A, B, C, D any](a *Signal[A], b *Signal[B], c *Signal[C], d *Signal[D]) *Signal[Tuple4[A, B, C, D]] {
	return New(func(sink *Sink[Tuple4[A, B, C, D]], scope *dispose.Composite) {
		agg := newCombineAggregator(4, sinkOut(sink, func(v []any) Tuple4[A, B, C, D] {
			return Tuple4[A, B, C, D]{v[0].(A), v[1].(B), v[2].(C), v[3].(D)}
		}))
		scope.Add(a.Observe(slotObserver[A](agg, 0)))
		scope.Add(b.Observe(slotObserver[B](agg, 1)))
		scope.Add(c.Observe(slotObserver[C](agg, 2)))
		scope.Add(d.Observe(slotObserver[D](agg, 3)))
	}, WithActivityName("combineLatest"))
}

// CombineLatest is the homogeneous-sequence form for unbounded arity.
func CombineLatest[V any](inputs []*Signal[V]) *Signal[[]V] {
	return New(func(sink *Sink[[]V], scope *dispose.Composite) {
		if len(inputs) == 0 {
			sink.Complete()
			return
		}
		agg := newCombineAggregator(len(inputs), sinkOut(sink, retype[V]))
		for i, input := range inputs {
			scope.Add(input.Observe(slotObserver[V](agg, i)))
		}
	}, WithActivityName("combineLatest"))
}

func retype[V any](values []any) []V {
	typed := make([]V, len(values))
	for i, v := range values {
		typed[i] = v.(V)
	}
	return typed
}
