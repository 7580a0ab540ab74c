package producer

import (
	"context"

	"github.com/teivah/onecontext"

	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/signal"
)

// WithContext interrupts each run of p when any of the given contexts is
// cancelled. Multiple contexts are merged; the first cancellation wins.
func WithContext[V any](p Producer[V], ctxs ...context.Context) Producer[V] {
	if len(ctxs) == 0 {
		return p
	}
	return New(func(sink *signal.Sink[V], scope *dispose.Composite) {
		ctx, cancel := onecontext.Merge(ctxs[0], ctxs[1:]...)
		scope.AddAction(cancel)

		released := make(chan struct{})
		scope.AddAction(func() { close(released) })
		go func() {
			select {
			case <-ctx.Done():
				sink.Interrupt()
			case <-released:
			}
		}()

		p.StartWithSignal(func(sig *signal.Signal[V], stop dispose.Disposable) {
			scope.Add(stop)
			scope.Add(sig.Observe(signal.Forward(sink)))
		})
	})
}

// StartContext runs the producer until ctx is cancelled or the stream
// terminates on its own.
func StartContext[V any](ctx context.Context, p Producer[V], o signal.Observer[V]) dispose.Disposable {
	return WithContext(p, ctx).Start(o)
}
