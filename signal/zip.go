package signal

import (
	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/xsync"
)

type zipState struct {
	buffers   [][]any
	completed []bool
	done      bool
}

// zipAggregator buffers unconsumed values per slot and emits the n-th tuple
// once every slot holds at least n values, consuming one buffered value per
// slot per emission in FIFO order. The aggregate completes when all slots
// have completed, or as soon as any slot is both completed and empty, since
// that slot can never contribute another element.
type zipAggregator struct {
	state *xsync.Atomic[zipState]
	out   aggregateOut
}

func newZipAggregator(n int, out aggregateOut) *zipAggregator {
	return &zipAggregator{
		state: xsync.NewAtomic(zipState{
			buffers:   make([][]any, n),
			completed: make([]bool, n),
		}),
		out: out,
	}
}

func (a *zipAggregator) value(slot int, v any) {
	a.state.Modify(func(st *zipState) {
		if st.done {
			return
		}
		st.buffers[slot] = append(st.buffers[slot], v)
		if !allNonEmpty(st.buffers) {
			return
		}

		tuple := make([]any, len(st.buffers))
		for i := range st.buffers {
			tuple[i] = st.buffers[i][0]
			st.buffers[i] = st.buffers[i][1:]
		}
		a.out.emit(tuple)

		if anyExhausted(st) {
			st.done = true
			a.out.complete()
		}
	})
}

func (a *zipAggregator) completeSlot(slot int) {
	a.state.Modify(func(st *zipState) {
		if st.done {
			return
		}
		st.completed[slot] = true
		if len(st.buffers[slot]) == 0 || allTrue(st.completed) {
			st.done = true
			a.out.complete()
		}
	})
}

func (a *zipAggregator) failSlot(err error) {
	a.state.Modify(func(st *zipState) {
		if st.done {
			return
		}
		st.done = true
		a.out.fail(err)
	})
}

func (a *zipAggregator) interruptSlot() {
	a.state.Modify(func(st *zipState) {
		if st.done {
			return
		}
		st.done = true
		a.out.interrupt()
	})
}

func allNonEmpty(buffers [][]any) bool {
	for _, b := range buffers {
		if len(b) == 0 {
			return false
		}
	}
	return true
}

// anyExhausted reports whether some slot has completed with nothing left in
// its buffer, making further emission impossible.
func anyExhausted(st *zipState) bool {
	for i := range st.buffers {
		if st.completed[i] && len(st.buffers[i]) == 0 {
			return true
		}
	}
	return false
}

// Zip2 emits pairs of values from a and b in strict arrival order: the n-th
// pair combines the n-th value of each input.
func Zip2[A, B any](a *Signal[A], b *Signal[B]) *Signal[Tuple2[A, B]] {
	return New(func(sink *Sink[Tuple2[A, B]], scope *dispose.Composite) {
		agg := newZipAggregator(2, sinkOut(sink, func(v []any) Tuple2[A, B] {
			return Tuple2[A, B]{v[0].(A), v[1].(B)}
		}))
		scope.Add(a.Observe(slotObserver[A](agg, 0)))
		scope.Add(b.Observe(slotObserver[B](agg, 1)))
	}, WithActivityName("zip"))
}

func Zip3[A, B, C any](a *Signal[A], b *Signal[B], c *Signal[C]) *Signal[Tuple3[A, B, C]] {
	return New(func(sink *Sink[Tuple3[A, B, C]], scope *dispose.Composite) {
		agg := newZipAggregator(3, sinkOut(sink, func(v []any) Tuple3[A, B, C] {
			return Tuple3[A, B, C]{v[0].(A), v[1].(B), v[2].(C)}
		}))
		scope.Add(a.Observe(slotObserver[A](agg, 0)))
		scope.Add(b.Observe(slotObserver[B](agg, 1)))
		scope.Add(c.Observe(slotObserver[C](agg, 2)))
	}, WithActivityName("zip"))
}

func Zip4[A, B, C, D any](a *Signal[A], b *Signal[B], c *Signal[C], d *Signal[D]) *Signal[Tuple4[A, B, C, D]] {
	return New(func(sink *Sink[Tuple4[A, B, C, D]], scope *dispose.Composite) {
		agg := newZipAggregator(4, sinkOut(sink, func(v []any) Tuple4[A, B, C, D] {
			return Tuple4[A, B, C, D]{v[0].(A), v[1].(B), v[2].(C), v[3].(D)}
		}))
		scope.Add(a.Observe(slotObserver[A](agg, 0)))
		scope.Add(b.Observe(slotObserver[B](agg, 1)))
		scope.Add(c.Observe(slotObserver[C](agg, 2)))
		scope.Add(d.Observe(slotObserver[D](agg, 3)))
	}, WithActivityName("zip"))
}

// Zip is the homogeneous-sequence form for unbounded arity.
func Zip[V any](inputs []*Signal[V]) *Signal[[]V] {
	return New(func(sink *Sink[[]V], scope *dispose.Composite) {
		if len(inputs) == 0 {
			sink.Complete()
			return
		}
		agg := newZipAggregator(len(inputs), sinkOut(sink, retype[V]))
		for i, input := range inputs {
			scope.Add(input.Observe(slotObserver[V](agg, i)))
		}
	}, WithActivityName("zip"))
}
