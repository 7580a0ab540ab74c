package producer

import (
	"github.com/avast/retry-go/v4"

	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/signal"
)

// Attempt runs fn once per start, emitting its result or failing with its
// error.
func Attempt[V any](fn func() (V, error)) Producer[V] {
	return New(func(sink *signal.Sink[V], _ *dispose.Composite) {
		v, err := fn()
		if err != nil {
			sink.Fail(err)
			return
		}
		sink.Write(v)
		sink.Complete()
	})
}

// AttemptRetry runs fn once per start, retrying per the given policy before
// failing the stream with the final error.
func AttemptRetry[V any](fn func() (V, error), opts ...retry.Option) Producer[V] {
	return New(func(sink *signal.Sink[V], _ *dispose.Composite) {
		var v V
		err := retry.Do(func() error {
			var attemptErr error
			v, attemptErr = fn()
			return attemptErr
		}, opts...)
		if err != nil {
			sink.Fail(err)
			return
		}
		sink.Write(v)
		sink.Complete()
	})
}
