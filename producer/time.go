package producer

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/event"
	"github.com/drava/go-surge/scheduler"
	"github.com/drava/go-surge/signal"
	"github.com/drava/go-surge/xsync"
)

// ErrSynchronousScheduler fails a repeating time source whose scheduler runs
// tasks on the calling goroutine. A re-arming tick cannot make progress
// there; it would recurse instead of waiting.
var ErrSynchronousScheduler = errors.New("repeating time source requires a deferring scheduler")

const (
	rearmIdle int32 = iota
	rearmBusy
)

// Timer emits the current time every interval on the given scheduler. Each
// start gets its own timer; interrupting a start stops only that timer. The
// scheduler must defer execution, like scheduler.Queue; a synchronous
// scheduler fails the stream with ErrSynchronousScheduler.
func Timer(interval time.Duration, sched scheduler.Scheduler) Producer[time.Time] {
	return New(func(sink *signal.Sink[time.Time], scope *dispose.Composite) {
		slot := dispose.NewSerial()
		scope.Add(slot)
		rearming := xsync.NewAtomicState(rearmIdle)

		var tick func()
		tick = func() {
			if !rearming.TryTransition(rearmIdle, rearmBusy) {
				sink.Fail(ErrSynchronousScheduler)
				return
			}
			sink.Write(time.Now())
			slot.Set(sched.ScheduleAfter(interval, tick))
			rearming.TryTransition(rearmBusy, rearmIdle)
		}
		slot.Set(sched.ScheduleAfter(interval, tick))
	})
}

// Cron emits the scheduled fire time on every match of the cron pattern.
// Seconds-resolution patterns and descriptors like @hourly are accepted.
// Like Timer, Cron needs a scheduler that defers execution.
func Cron(pattern string, sched scheduler.Scheduler) (Producer[time.Time], error) {
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	schedule, err := parser.Parse(pattern)
	if err != nil {
		return Producer[time.Time]{}, err
	}

	return New(func(sink *signal.Sink[time.Time], scope *dispose.Composite) {
		slot := dispose.NewSerial()
		scope.Add(slot)
		rearming := xsync.NewAtomicState(rearmIdle)

		var arm func()
		arm = func() {
			if !rearming.TryTransition(rearmIdle, rearmBusy) {
				sink.Fail(ErrSynchronousScheduler)
				return
			}
			next := schedule.Next(time.Now())
			slot.Set(sched.ScheduleAfter(time.Until(next), func() {
				sink.Write(next)
				arm()
			}))
			rearming.TryTransition(rearmBusy, rearmIdle)
		}
		arm()
	}), nil
}

type delayedEvent[V any] struct {
	e        event.Event[V]
	deadline time.Time
}

type delayState[V any] struct {
	pending []delayedEvent[V]
	armed   bool
}

// Delay shifts every value and the completion of p forward by d, delivering
// them in arrival order through a single re-armed timer. Failures and
// interruptions are not delayed.
func Delay[V any](p Producer[V], d time.Duration, sched scheduler.Scheduler) Producer[V] {
	return New(func(sink *signal.Sink[V], scope *dispose.Composite) {
		state := xsync.NewAtomic(delayState[V]{})
		slot := dispose.NewSerial()
		scope.Add(slot)

		var drain func()
		drain = func() {
			var head event.Event[V]
			popped, rearm := false, false
			var wait time.Duration
			state.Modify(func(st *delayState[V]) {
				if len(st.pending) == 0 {
					st.armed = false
					return
				}
				head = st.pending[0].e
				st.pending = st.pending[1:]
				popped = true
				if len(st.pending) == 0 {
					st.armed = false
					return
				}
				wait = time.Until(st.pending[0].deadline)
				rearm = true
			})
			if popped {
				sink.Send(head)
			}
			if rearm {
				slot.Set(sched.ScheduleAfter(wait, drain))
			}
		}

		p.StartWithSignal(func(sig *signal.Signal[V], stop dispose.Disposable) {
			scope.Add(stop)
			scope.Add(sig.Observe(signal.NewObserver(func(e event.Event[V]) {
				if term, ok := e.Termination(); ok && term.Kind() != event.KindCompleted {
					sink.Terminate(term)
					return
				}
				arm := false
				state.Modify(func(st *delayState[V]) {
					st.pending = append(st.pending, delayedEvent[V]{e: e, deadline: time.Now().Add(d)})
					if !st.armed {
						st.armed = true
						arm = true
					}
				})
				if arm {
					slot.Set(sched.ScheduleAfter(d, drain))
				}
			})))
		})
	})
}
