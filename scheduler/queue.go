package scheduler

import (
	"sync"
	"time"

	"github.com/drava/go-surge/dispose"
)

const defaultQueueDepth = 64

// Queue runs tasks one at a time on a single background goroutine, in the
// order they were scheduled. Stop drains nothing; tasks that have not run
// by the time the worker observes the stop are dropped.
type Queue struct {
	tasks chan func()
	done  chan struct{}
	stop  sync.Once
}

func NewQueue() *Queue {
	q := &Queue{
		tasks: make(chan func(), defaultQueueDepth),
		done:  make(chan struct{}),
	}
	go q.work()
	return q
}

func (q *Queue) work() {
	for {
		select {
		case task := <-q.tasks:
			task()
		case <-q.done:
			return
		}
	}
}

func (q *Queue) Schedule(task func()) dispose.Disposable {
	cancel := dispose.Nop()
	q.enqueue(func() {
		if cancel.IsDisposed() {
			return
		}
		task()
	})
	return cancel
}

func (q *Queue) ScheduleAfter(delay time.Duration, task func()) dispose.Disposable {
	cancel := dispose.Nop()
	timer := time.AfterFunc(delay, func() {
		if cancel.IsDisposed() {
			return
		}
		q.enqueue(func() {
			if cancel.IsDisposed() {
				return
			}
			task()
		})
	})
	return dispose.New(func() {
		timer.Stop()
		cancel.Dispose()
	})
}

// Stop shuts the worker goroutine down. Scheduling after Stop is a no-op.
func (q *Queue) Stop() {
	q.stop.Do(func() {
		close(q.done)
	})
}

func (q *Queue) enqueue(task func()) {
	select {
	case q.tasks <- task:
	case <-q.done:
	}
}
