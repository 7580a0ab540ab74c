// Package scheduler decides where and when deferred work runs. The stream
// core never spawns goroutines of its own; anything that needs a thread or
// a clock goes through a Scheduler.
package scheduler

import (
	"time"

	"github.com/drava/go-surge/dispose"
)

type Scheduler interface {
	// Schedule enqueues task for execution. The returned disposable cancels
	// the task if it has not started yet.
	Schedule(task func()) dispose.Disposable
	// ScheduleAfter enqueues task to run once delay has elapsed.
	ScheduleAfter(delay time.Duration, task func()) dispose.Disposable
}
