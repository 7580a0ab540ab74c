// Package event defines the closed set of signals a stream may emit: zero or
// more values followed by at most one terminal event.
package event

// Kind discriminates the variants of an Event.
type Kind uint8

const (
	// KindValue carries the next value in the stream
	KindValue Kind = iota
	// KindFailed indicates the stream terminated with a domain failure
	KindFailed
	// KindCompleted indicates the stream terminated normally
	KindCompleted
	// KindInterrupted indicates the stream was cancelled before completing
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindFailed:
		return "failed"
	case KindCompleted:
		return "completed"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Event is one signal emitted by a stream. A stream's event history always
// matches the grammar `value* (failed | completed | interrupted)?`.
type Event[V any] struct {
	kind  Kind
	value V
	err   error
}

func Value[V any](v V) Event[V] {
	return Event[V]{kind: KindValue, value: v}
}

func Failed[V any](err error) Event[V] {
	return Event[V]{kind: KindFailed, err: err}
}

func Completed[V any]() Event[V] {
	return Event[V]{kind: KindCompleted}
}

func Interrupted[V any]() Event[V] {
	return Event[V]{kind: KindInterrupted}
}

func (e Event[V]) Kind() Kind {
	return e.kind
}

// IsTerminating reports whether the event ends the stream.
func (e Event[V]) IsTerminating() bool {
	return e.kind != KindValue
}

// Val returns the carried value and whether the event is a value event.
func (e Event[V]) Val() (V, bool) {
	return e.value, e.kind == KindValue
}

// Err returns the carried failure, or nil for every other variant.
func (e Event[V]) Err() error {
	return e.err
}

// Termination converts a terminal event into its Termination form. The
// second return is false for value events.
func (e Event[V]) Termination() (Termination, bool) {
	if !e.IsTerminating() {
		return Termination{}, false
	}
	return Termination{kind: e.kind, err: e.err}, true
}

// Termination is the restriction of Event to its three terminal variants,
// used at sink boundaries where value delivery and termination take distinct
// code paths.
type Termination struct {
	kind Kind
	err  error
}

func TerminateFailed(err error) Termination {
	return Termination{kind: KindFailed, err: err}
}

func TerminateCompleted() Termination {
	return Termination{kind: KindCompleted}
}

func TerminateInterrupted() Termination {
	return Termination{kind: KindInterrupted}
}

func (t Termination) Kind() Kind {
	return t.kind
}

func (t Termination) Err() error {
	return t.err
}

// FromTermination widens a termination back into an event of any value type.
func FromTermination[V any](t Termination) Event[V] {
	return Event[V]{kind: t.kind, err: t.err}
}

// MapEvent transforms the value of a value event, passing terminal events
// through untouched.
func MapEvent[V, U any](e Event[V], fn func(V) U) Event[U] {
	if v, ok := e.Val(); ok {
		return Value(fn(v))
	}
	return Event[U]{kind: e.kind, err: e.err}
}
