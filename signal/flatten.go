package signal

import (
	"math"

	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/xsync"
)

// FlattenPolicy names a policy for collapsing a stream of streams into one.
type FlattenPolicy string

const (
	// ConcurrentPolicy observes up to Limit inner streams at once, queueing
	// the rest in outer-arrival order
	ConcurrentPolicy FlattenPolicy = "concurrent"
	// LatestPolicy observes only the most recently arrived inner stream,
	// dropping the previous one on every switch
	LatestPolicy FlattenPolicy = "latest"
	// RacePolicy observes all inner streams until the first event decides a
	// winner, then discards the rest
	RacePolicy FlattenPolicy = "race"
)

// FlattenStrategy selects how a stream of streams is flattened.
type FlattenStrategy struct {
	Policy FlattenPolicy
	Limit  int
}

// Merge observes every inner stream concurrently, forwarding values as they
// arrive.
func Merge() FlattenStrategy {
	return Concurrent(math.MaxInt)
}

// Concat observes inner streams one at a time, in outer-arrival order.
func Concat() FlattenStrategy {
	return Concurrent(1)
}

// Concurrent observes up to limit inner streams at once.
func Concurrent(limit int) FlattenStrategy {
	if limit < 1 {
		panic("flatten concurrency limit must be at least 1")
	}
	return FlattenStrategy{Policy: ConcurrentPolicy, Limit: limit}
}

// Latest switches to each newly arrived inner stream, dropping the previous
// one.
func Latest() FlattenStrategy {
	return FlattenStrategy{Policy: LatestPolicy}
}

// Race keeps the first inner stream to produce an event and discards the
// others.
func Race() FlattenStrategy {
	return FlattenStrategy{Policy: RacePolicy}
}

// Flatten collapses a signal of signals into one signal according to the
// strategy. Outer failures and interruptions terminate the result
// immediately, as do inner ones unless the strategy's documented purpose is
// to discard them.
func Flatten[V any](src *Signal[*Signal[V]], strategy FlattenStrategy) *Signal[V] {
	switch strategy.Policy {
	case LatestPolicy:
		return flattenLatest(src)
	case RacePolicy:
		return flattenRace(src)
	default:
		return flattenConcurrent(src, strategy.Limit)
	}
}

type concurrentState[V any] struct {
	queue     []*Signal[V]
	active    int
	outerDone bool
	done      bool
}

func flattenConcurrent[V any](src *Signal[*Signal[V]], limit int) *Signal[V] {
	return New(func(sink *Sink[V], scope *dispose.Composite) {
		state := xsync.NewAtomic(concurrentState[V]{})

		var observeInner func(inner *Signal[V])
		observeInner = func(inner *Signal[V]) {
			slot := dispose.NewSerial()
			handle := scope.Add(slot)
			slot.Set(inner.Observe(Observer[V]{
				OnValue: sink.Write,
				OnFailed: func(err error) {
					sink.Fail(err)
				},
				OnInterrupted: sink.Interrupt,
				OnCompleted: func() {
					scope.Remove(handle)
					slot.Dispose()

					// The next queued inner stream is picked under the state
					// lock but started only after it is released, so a
					// completion delivered re-entrantly cannot trip over the
					// aggregate's own lock.
					var next *Signal[V]
					finished := false
					state.Modify(func(st *concurrentState[V]) {
						if st.done {
							return
						}
						st.active--
						if len(st.queue) > 0 {
							next = st.queue[0]
							st.queue = st.queue[1:]
							st.active++
							return
						}
						if st.outerDone && st.active == 0 {
							st.done = true
							finished = true
						}
					})
					if next != nil {
						observeInner(next)
					}
					if finished {
						sink.Complete()
					}
				},
			}))
		}

		scope.Add(src.Observe(Observer[*Signal[V]]{
			OnValue: func(inner *Signal[V]) {
				start := false
				state.Modify(func(st *concurrentState[V]) {
					if st.done {
						return
					}
					if st.active < limit {
						st.active++
						start = true
						return
					}
					st.queue = append(st.queue, inner)
				})
				if start {
					observeInner(inner)
				}
			},
			OnFailed:      sink.Fail,
			OnInterrupted: sink.Interrupt,
			OnCompleted: func() {
				finished := false
				state.Modify(func(st *concurrentState[V]) {
					if st.done {
						return
					}
					st.outerDone = true
					if st.active == 0 && len(st.queue) == 0 {
						st.done = true
						finished = true
					}
				})
				if finished {
					sink.Complete()
				}
			},
		}))
	}, WithActivityName("flatten.concurrent"))
}

type latestState struct {
	generation uint64
	innerAlive bool
	outerDone  bool
	done       bool
}

func flattenLatest[V any](src *Signal[*Signal[V]]) *Signal[V] {
	return New(func(sink *Sink[V], scope *dispose.Composite) {
		state := xsync.NewAtomic(latestState{})
		current := dispose.NewSerial()
		scope.Add(current)

		isCurrent := func(gen uint64) bool {
			ok := false
			state.WithValue(func(st latestState) {
				ok = st.generation == gen && !st.done
			})
			return ok
		}

		scope.Add(src.Observe(Observer[*Signal[V]]{
			OnValue: func(inner *Signal[V]) {
				var gen uint64
				state.Modify(func(st *latestState) {
					st.generation++
					st.innerAlive = true
					gen = st.generation
				})

				// Setting the serial slot disposes the previous inner
				// observation; its in-flight termination, if any, is
				// discarded by the generation check rather than propagated.
				current.Set(inner.Observe(Observer[V]{
					OnValue: func(v V) {
						if isCurrent(gen) {
							sink.Write(v)
						}
					},
					OnFailed: func(err error) {
						if isCurrent(gen) {
							sink.Fail(err)
						}
					},
					OnInterrupted: func() {
						if isCurrent(gen) {
							sink.Interrupt()
						}
					},
					OnCompleted: func() {
						finished := false
						state.Modify(func(st *latestState) {
							if st.done || st.generation != gen {
								return
							}
							st.innerAlive = false
							if st.outerDone {
								st.done = true
								finished = true
							}
						})
						if finished {
							sink.Complete()
						}
					},
				}))
			},
			OnFailed:      sink.Fail,
			OnInterrupted: sink.Interrupt,
			OnCompleted: func() {
				finished := false
				state.Modify(func(st *latestState) {
					if st.done {
						return
					}
					st.outerDone = true
					if !st.innerAlive {
						st.done = true
						finished = true
					}
				})
				if finished {
					sink.Complete()
				}
			},
		}))
	}, WithActivityName("flatten.latest"))
}

type raceState struct {
	nextID     uint64
	decided    bool
	winner     uint64
	contenders map[uint64]dispose.Disposable
	outerDone  bool
	done       bool
}

func flattenRace[V any](src *Signal[*Signal[V]]) *Signal[V] {
	return New(func(sink *Sink[V], scope *dispose.Composite) {
		state := xsync.NewAtomic(raceState{contenders: map[uint64]dispose.Disposable{}})

		// claim reports whether the contender may forward its event, deciding
		// the race on first contact and returning the losers for disposal.
		claim := func(id uint64) (bool, []dispose.Disposable) {
			won := false
			var losers []dispose.Disposable
			state.Modify(func(st *raceState) {
				if st.done {
					return
				}
				if !st.decided {
					st.decided = true
					st.winner = id
					for otherID, d := range st.contenders {
						if otherID != id {
							losers = append(losers, d)
						}
					}
					st.contenders = map[uint64]dispose.Disposable{}
				}
				won = st.winner == id
			})
			return won, losers
		}

		forward := func(id uint64, deliver func()) {
			won, losers := claim(id)
			for _, d := range losers {
				d.Dispose()
			}
			if won {
				deliver()
			}
		}

		scope.Add(src.Observe(Observer[*Signal[V]]{
			OnValue: func(inner *Signal[V]) {
				var id uint64
				skip := false
				state.Modify(func(st *raceState) {
					if st.done || st.decided {
						skip = true
						return
					}
					st.nextID++
					id = st.nextID
				})
				if skip {
					return
				}

				d := inner.Observe(Observer[V]{
					OnValue: func(v V) {
						forward(id, func() { sink.Write(v) })
					},
					OnFailed: func(err error) {
						forward(id, func() { sink.Fail(err) })
					},
					OnCompleted: func() {
						forward(id, sink.Complete)
					},
					OnInterrupted: func() {
						forward(id, sink.Interrupt)
					},
				})
				scope.Add(d)

				lost := false
				state.Modify(func(st *raceState) {
					if st.decided || st.done {
						// decided while attaching; this contender lost
						lost = st.winner != id
						return
					}
					st.contenders[id] = d
				})
				if lost {
					d.Dispose()
				}
			},
			OnFailed:      sink.Fail,
			OnInterrupted: sink.Interrupt,
			OnCompleted: func() {
				finished := false
				state.Modify(func(st *raceState) {
					if st.done {
						return
					}
					st.outerDone = true
					if !st.decided && len(st.contenders) == 0 {
						st.done = true
						finished = true
					}
				})
				if finished {
					sink.Complete()
				}
			},
		}))
	}, WithActivityName("flatten.race"))
}
