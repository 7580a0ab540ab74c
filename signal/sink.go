package signal

import (
	"runtime"

	"github.com/drava/go-surge/event"
)

// Sink is the write endpoint of a signal, handed to its generator. It is the
// only way to inject events into the stream. A sink that becomes unreachable
// while its stream is still alive sends interrupted on the stream's behalf,
// so a stream whose generator gave up on it cannot dangle forever.
type Sink[V any] struct {
	core *core[V]
}

func newSink[V any](c *core[V]) *Sink[V] {
	in := &Sink[V]{core: c}
	runtime.SetFinalizer(in, func(in *Sink[V]) {
		in.core.terminate(event.TerminateInterrupted())
	})
	return in
}

// Write pushes the next value. Writes after termination are dropped.
func (s *Sink[V]) Write(v V) {
	s.core.send(event.Value(v))
	runtime.KeepAlive(s)
}

// Fail terminates the stream with a domain failure.
func (s *Sink[V]) Fail(err error) {
	s.core.terminate(event.TerminateFailed(err))
	runtime.KeepAlive(s)
}

// Complete terminates the stream normally.
func (s *Sink[V]) Complete() {
	s.core.terminate(event.TerminateCompleted())
	runtime.KeepAlive(s)
}

// Interrupt terminates the stream with a cancellation notice.
func (s *Sink[V]) Interrupt() {
	s.core.terminate(event.TerminateInterrupted())
	runtime.KeepAlive(s)
}

// Send pushes any event, routing terminal events through the termination
// path.
func (s *Sink[V]) Send(e event.Event[V]) {
	if t, ok := e.Termination(); ok {
		s.core.terminate(t)
	} else {
		s.core.send(e)
	}
	runtime.KeepAlive(s)
}

// Terminate ends the stream with the given reason.
func (s *Sink[V]) Terminate(t event.Termination) {
	s.core.terminate(t)
	runtime.KeepAlive(s)
}
