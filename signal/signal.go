// Package signal implements the multicast live stream primitive: a hot event
// source that pushes values synchronously to every attached observer under a
// per-stream lock, terminates at most once, and disposes itself when it is
// neither retained nor observed.
package signal

import (
	"runtime"

	"github.com/drava/go-surge/bag"
	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/event"
	"github.com/drava/go-surge/instrument"
	"github.com/drava/go-surge/xsync"
	"github.com/google/uuid"
)

type stage uint8

const (
	stageAlive stage = iota
	stageTerminating
	stageTerminated
)

// core carries the shared state behind a Signal. It is referenced by the
// Signal handle, by the generator's Sink, and by every observation
// disposable, so it stays reachable as long as anyone can still interact
// with the stream.
type core[V any] struct {
	activity string

	// sendLock serializes event delivery: no two events are ever fanned out
	// concurrently, and a re-entrant value send deadlocks here by design.
	sendLock xsync.Lock
	// stateLock guards the fields below.
	stateLock xsync.Lock

	stage         stage
	observers     *bag.Bag[Observer[V]]
	pending       event.Termination
	silent        bool
	deinitialized bool

	// scope is handed to the generator; it is disposed exactly once, when
	// the stream terminates.
	scope *dispose.Composite
}

// Signal is a multicast, self-disposing live event source. It stays alive
// while it is retained or has at least one attached observer; once neither
// holds, it disposes silently without synthesizing a terminal event.
type Signal[V any] struct {
	core *core[V]
}

// New builds a signal from a generator. The generator runs synchronously,
// before New returns, receiving the stream's input sink and its disposal
// scope; events it sends before any observer attaches are simply
// unobservable, not buffered.
func New[V any](generator func(*Sink[V], *dispose.Composite), opts ...Option) *Signal[V] {
	options := applyOptions(opts)

	c := &core[V]{
		activity:  options.activity,
		observers: &bag.Bag[Observer[V]]{},
		scope:     dispose.NewComposite(),
	}
	if c.activity == "" {
		c.activity = uuid.NewString()
	}

	s := &Signal[V]{core: c}
	runtime.SetFinalizer(s, func(s *Signal[V]) {
		s.core.deinitialize()
	})

	if generator != nil {
		generator(newSink(c), c.scope)
	}
	return s
}

// NewPipe returns a signal together with its input sink, for pushing events
// from outside a generator.
func NewPipe[V any](opts ...Option) (*Sink[V], *Signal[V]) {
	var sink *Sink[V]
	s := New(func(in *Sink[V], _ *dispose.Composite) {
		sink = in
	}, opts...)
	return sink, s
}

// Empty returns a signal that has already completed; attaching to it yields
// a single interrupted event, as with any terminated signal.
func Empty[V any]() *Signal[V] {
	return New(func(sink *Sink[V], _ *dispose.Composite) {
		sink.Complete()
	})
}

// Never returns a signal that emits nothing until it stops being retained.
func Never[V any]() *Signal[V] {
	return New[V](nil)
}

// Observe attaches an observer. The returned disposable detaches it; neither
// attaching nor detaching has any effect on the producer side. Attaching to
// a terminated signal delivers exactly one synthesized interrupted event.
func (s *Signal[V]) Observe(o Observer[V]) dispose.Disposable {
	d := s.core.observe(o)
	runtime.KeepAlive(s)
	return d
}

// Subscribe attaches individual callbacks; only the value callback is
// required.
func (s *Signal[V]) Subscribe(onValue func(V), opts ...SubscribeOption) dispose.Disposable {
	return s.Observe(CallbackObserver(onValue, opts...))
}

// Activity returns the name the signal reports to instrumentation.
func (s *Signal[V]) Activity() string {
	return s.core.activity
}

func (c *core[V]) observe(o Observer[V]) dispose.Disposable {
	c.stateLock.Lock()
	if c.stage != stageAlive {
		c.stateLock.Unlock()
		o.send(event.Interrupted[V]())
		return dispose.Disposed()
	}
	token := c.observers.Insert(o)
	c.stateLock.Unlock()

	instrument.Metrics().Incr(c.activity, "observer_attached", 1)
	return dispose.New(func() {
		c.removeObserver(token)
	})
}

func (c *core[V]) removeObserver(token bag.Token) {
	c.stateLock.Lock()
	if c.stage != stageAlive {
		c.stateLock.Unlock()
		return
	}
	c.observers.Remove(token)
	unobserved := c.observers.Len() == 0 && c.deinitialized
	c.stateLock.Unlock()

	if unobserved {
		c.terminateSilently()
	}
}

// deinitialize records that the signal handle is no longer retained. With no
// observers left either, the stream disposes silently: no terminal event is
// synthesized for nobody.
func (c *core[V]) deinitialize() {
	c.stateLock.Lock()
	if c.stage != stageAlive {
		c.stateLock.Unlock()
		return
	}
	c.deinitialized = true
	unobserved := c.observers.Len() == 0
	c.stateLock.Unlock()

	if unobserved {
		c.terminateSilently()
	}
}

// send delivers a value event to every attached observer while holding
// sendLock. A terminal event raced in by another goroutine during fan-out is
// committed right after the lock is released, so it can never interleave
// before an in-flight value.
func (c *core[V]) send(e event.Event[V]) {
	c.sendLock.Lock()
	c.stateLock.Lock()
	var targets []Observer[V]
	if c.stage == stageAlive {
		targets = c.observers.Values()
	}
	c.stateLock.Unlock()
	for _, o := range targets {
		o.send(e)
	}
	c.sendLock.Unlock()

	c.stateLock.Lock()
	terminating := c.stage == stageTerminating
	c.stateLock.Unlock()
	if terminating {
		c.tryCommitTermination()
	}
}

// terminate moves the stream into the terminating stage and attempts to
// commit. Unlike value sends it never blocks on sendLock, which is what
// permits a terminal event to be sent from within a delivery callback.
func (c *core[V]) terminate(t event.Termination) {
	c.stateLock.Lock()
	if c.stage != stageAlive {
		c.stateLock.Unlock()
		return
	}
	c.stage = stageTerminating
	c.pending = t
	c.silent = false
	c.stateLock.Unlock()

	c.tryCommitTermination()
}

func (c *core[V]) terminateSilently() {
	c.stateLock.Lock()
	if c.stage != stageAlive {
		c.stateLock.Unlock()
		return
	}
	c.stage = stageTerminating
	c.pending = event.TerminateInterrupted()
	c.silent = true
	c.stateLock.Unlock()

	c.tryCommitTermination()
}

// tryCommitTermination delivers the pending termination once no value send
// is in flight. When sendLock is contended, the in-flight sender commits on
// its way out instead.
func (c *core[V]) tryCommitTermination() {
	if !c.sendLock.TryLock() {
		return
	}

	c.stateLock.Lock()
	if c.stage != stageTerminating {
		c.stateLock.Unlock()
		c.sendLock.Unlock()
		return
	}
	targets := c.observers.Values()
	t := c.pending
	silent := c.silent
	c.stage = stageTerminated
	c.observers = &bag.Bag[Observer[V]]{}
	c.stateLock.Unlock()

	if !silent {
		e := event.FromTermination[V](t)
		for _, o := range targets {
			o.send(e)
		}
	}
	c.sendLock.Unlock()

	instrument.Logging().Debug(c.activity, "signal terminated: "+t.Kind().String())
	c.scope.Dispose()
}

func (c *core[V]) terminated() bool {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.stage == stageTerminated
}
