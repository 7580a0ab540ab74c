package scheduler

import (
	"time"

	"github.com/drava/go-surge/dispose"
)

// Immediate runs every task synchronously on the calling goroutine. Delays
// are ignored; the task runs before ScheduleAfter returns.
type Immediate struct{}

func NewImmediate() *Immediate {
	return &Immediate{}
}

func (*Immediate) Schedule(task func()) dispose.Disposable {
	task()
	return dispose.Disposed()
}

func (s *Immediate) ScheduleAfter(_ time.Duration, task func()) dispose.Disposable {
	return s.Schedule(task)
}
