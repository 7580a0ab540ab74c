package producer

import (
	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/signal"
)

// CombineLatest2 starts both producers and combines their runs with
// latest-value semantics. The aggregate attaches before either run begins,
// so no event can slip past it.
func CombineLatest2[A, B any](a Producer[A], b Producer[B]) Producer[signal.Tuple2[A, B]] {
	return New(func(sink *signal.Sink[signal.Tuple2[A, B]], scope *dispose.Composite) {
		a.StartWithSignal(func(sigA *signal.Signal[A], stopA dispose.Disposable) {
			scope.Add(stopA)
			b.StartWithSignal(func(sigB *signal.Signal[B], stopB dispose.Disposable) {
				scope.Add(stopB)
				scope.Add(signal.CombineLatest2(sigA, sigB).Observe(signal.Forward(sink)))
			})
		})
	})
}

// Zip2 starts both producers and pairs their runs in strict arrival order.
func Zip2[A, B any](a Producer[A], b Producer[B]) Producer[signal.Tuple2[A, B]] {
	return New(func(sink *signal.Sink[signal.Tuple2[A, B]], scope *dispose.Composite) {
		a.StartWithSignal(func(sigA *signal.Signal[A], stopA dispose.Disposable) {
			scope.Add(stopA)
			b.StartWithSignal(func(sigB *signal.Signal[B], stopB dispose.Disposable) {
				scope.Add(stopB)
				scope.Add(signal.Zip2(sigA, sigB).Observe(signal.Forward(sink)))
			})
		})
	})
}

// CombineLatest combines a homogeneous slice of producers into a slice-valued
// stream. Starting with no producers yields an interrupted stream.
func CombineLatest[V any](producers []Producer[V]) Producer[[]V] {
	return New(func(sink *signal.Sink[[]V], scope *dispose.Composite) {
		startAll(producers, scope, func(sigs []*signal.Signal[V]) {
			scope.Add(signal.CombineLatest(sigs).Observe(signal.Forward(sink)))
		})
	})
}

// Zip pairs a homogeneous slice of producers in strict arrival order.
func Zip[V any](producers []Producer[V]) Producer[[]V] {
	return New(func(sink *signal.Sink[[]V], scope *dispose.Composite) {
		startAll(producers, scope, func(sigs []*signal.Signal[V]) {
			scope.Add(signal.Zip(sigs).Observe(signal.Forward(sink)))
		})
	})
}

// startAll nests one StartWithSignal per producer so that then runs, with
// every run's signal in hand, before any of the runs begin their work.
func startAll[V any](producers []Producer[V], scope *dispose.Composite, then func([]*signal.Signal[V])) {
	sigs := make([]*signal.Signal[V], 0, len(producers))
	var next func(int)
	next = func(i int) {
		if i == len(producers) {
			then(sigs)
			return
		}
		producers[i].StartWithSignal(func(sig *signal.Signal[V], stop dispose.Disposable) {
			scope.Add(stop)
			sigs = append(sigs, sig)
			next(i + 1)
		})
	}
	next(0)
}
