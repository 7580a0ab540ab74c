package producer

import (
	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/event"
	"github.com/drava/go-surge/signal"
	"github.com/drava/go-surge/xsync"
)

// Flatten merges a stream of producers into a single stream of their values,
// per the given strategy. Unlike flattening signals, inner work here is
// deferred: with Concat or a bounded Concurrent limit, a queued producer is
// not even started until a slot frees up.
func Flatten[V any](outer Producer[Producer[V]], strategy signal.FlattenStrategy) Producer[V] {
	switch strategy.Policy {
	case signal.LatestPolicy:
		return flattenLatest(outer)
	case signal.RacePolicy:
		return flattenRace(outer)
	default:
		return flattenConcurrent(outer, strategy.Limit)
	}
}

type concurrentState[V any] struct {
	queue     []Producer[V]
	active    int
	outerDone bool
	done      bool
}

func flattenConcurrent[V any](outer Producer[Producer[V]], limit int) Producer[V] {
	if limit < 1 {
		limit = 1
	}
	return New(func(sink *signal.Sink[V], scope *dispose.Composite) {
		state := xsync.NewAtomic(concurrentState[V]{})

		var startInner func(p Producer[V])
		startInner = func(p Producer[V]) {
			p.StartWithSignal(func(inner *signal.Signal[V], stop dispose.Disposable) {
				run := dispose.NewComposite(stop)
				handle := scope.Add(run)
				run.Add(inner.Observe(signal.NewObserver(func(e event.Event[V]) {
					if v, ok := e.Val(); ok {
						sink.Write(v)
						return
					}
					term, _ := e.Termination()
					if term.Kind() != event.KindCompleted {
						state.Modify(func(s *concurrentState[V]) { s.done = true })
						sink.Terminate(term)
						return
					}

					scope.Remove(handle)
					run.Dispose()
					var next *Producer[V]
					finish := false
					state.Modify(func(s *concurrentState[V]) {
						if s.done {
							return
						}
						s.active--
						if len(s.queue) > 0 {
							p := s.queue[0]
							s.queue = s.queue[1:]
							s.active++
							next = &p
						} else if s.outerDone && s.active == 0 {
							s.done = true
							finish = true
						}
					})
					if next != nil {
						startInner(*next)
					}
					if finish {
						sink.Complete()
					}
				})))
			})
		}

		outer.StartWithSignal(func(sig *signal.Signal[Producer[V]], stop dispose.Disposable) {
			scope.Add(stop)
			scope.Add(sig.Observe(signal.NewObserver(func(e event.Event[Producer[V]]) {
				if p, ok := e.Val(); ok {
					start := false
					state.Modify(func(s *concurrentState[V]) {
						if s.done {
							return
						}
						if s.active < limit {
							s.active++
							start = true
						} else {
							s.queue = append(s.queue, p)
						}
					})
					if start {
						startInner(p)
					}
					return
				}
				term, _ := e.Termination()
				if term.Kind() != event.KindCompleted {
					state.Modify(func(s *concurrentState[V]) { s.done = true })
					sink.Terminate(term)
					return
				}
				finish := false
				state.Modify(func(s *concurrentState[V]) {
					if s.done {
						return
					}
					s.outerDone = true
					if s.active == 0 && len(s.queue) == 0 {
						s.done = true
						finish = true
					}
				})
				if finish {
					sink.Complete()
				}
			})))
		})
	})
}

type latestState struct {
	generation uint64
	innerAlive bool
	outerDone  bool
	done       bool
}

func flattenLatest[V any](outer Producer[Producer[V]]) Producer[V] {
	return New(func(sink *signal.Sink[V], scope *dispose.Composite) {
		state := xsync.NewAtomic(latestState{})
		current := dispose.NewSerial()
		scope.Add(current)

		outer.StartWithSignal(func(sig *signal.Signal[Producer[V]], stop dispose.Disposable) {
			scope.Add(stop)
			scope.Add(sig.Observe(signal.NewObserver(func(e event.Event[Producer[V]]) {
				if p, ok := e.Val(); ok {
					var gen uint64
					live := false
					state.Modify(func(s *latestState) {
						if s.done {
							return
						}
						s.generation++
						s.innerAlive = true
						gen, live = s.generation, true
					})
					if !live {
						return
					}
					p.StartWithSignal(func(inner *signal.Signal[V], innerStop dispose.Disposable) {
						run := dispose.NewComposite(innerStop)
						run.Add(inner.Observe(signal.NewObserver(func(ie event.Event[V]) {
							if v, ok := ie.Val(); ok {
								isCurrent := false
								state.WithValue(func(s latestState) {
									isCurrent = !s.done && s.generation == gen
								})
								if isCurrent {
									sink.Write(v)
								}
								return
							}
							term, _ := ie.Termination()
							forward, finish := false, false
							state.Modify(func(s *latestState) {
								if s.done || s.generation != gen {
									return
								}
								if term.Kind() != event.KindCompleted {
									s.done = true
									forward = true
									return
								}
								s.innerAlive = false
								if s.outerDone {
									s.done = true
									finish = true
								}
							})
							if forward {
								sink.Terminate(term)
							}
							if finish {
								sink.Complete()
							}
						})))
						// replacing the slot tears the previous run down
						current.Set(run)
					})
					return
				}
				term, _ := e.Termination()
				forward, finish := false, false
				state.Modify(func(s *latestState) {
					if s.done {
						return
					}
					if term.Kind() != event.KindCompleted {
						s.done = true
						forward = true
						return
					}
					s.outerDone = true
					if !s.innerAlive {
						s.done = true
						finish = true
					}
				})
				if forward {
					sink.Terminate(term)
				}
				if finish {
					sink.Complete()
				}
			})))
		})
	})
}

type raceState struct {
	nextID    uint64
	decided   bool
	winner    uint64
	outerDone bool
	done      bool
}

func flattenRace[V any](outer Producer[Producer[V]]) Producer[V] {
	return New(func(sink *signal.Sink[V], scope *dispose.Composite) {
		state := xsync.NewAtomic(raceState{})
		contenders := xsync.NewAtomic(map[uint64]dispose.Disposable{})

		// claim returns whether id may forward events, deciding the race on
		// its first event and tearing the losers down.
		claim := func(id uint64) bool {
			won, decides := false, false
			state.Modify(func(s *raceState) {
				if s.done {
					return
				}
				if !s.decided {
					s.decided = true
					s.winner = id
					decides = true
				}
				won = s.winner == id
			})
			if decides {
				var losers []dispose.Disposable
				contenders.Modify(func(m *map[uint64]dispose.Disposable) {
					for cid, d := range *m {
						if cid != id {
							losers = append(losers, d)
						}
					}
					*m = map[uint64]dispose.Disposable{id: (*m)[id]}
				})
				for _, d := range losers {
					d.Dispose()
				}
			}
			return won
		}

		outer.StartWithSignal(func(sig *signal.Signal[Producer[V]], stop dispose.Disposable) {
			scope.Add(stop)
			scope.Add(sig.Observe(signal.NewObserver(func(e event.Event[Producer[V]]) {
				if p, ok := e.Val(); ok {
					var id uint64
					admit := false
					state.Modify(func(s *raceState) {
						if s.done || s.decided {
							return
						}
						s.nextID++
						id, admit = s.nextID, true
					})
					if !admit {
						return
					}
					p.StartWithSignal(func(inner *signal.Signal[V], innerStop dispose.Disposable) {
						run := dispose.NewComposite(innerStop)
						contenders.Modify(func(m *map[uint64]dispose.Disposable) {
							(*m)[id] = run
						})
						scope.Add(run)
						run.Add(inner.Observe(signal.NewObserver(func(ie event.Event[V]) {
							if !claim(id) {
								return
							}
							if v, ok := ie.Val(); ok {
								sink.Write(v)
								return
							}
							term, _ := ie.Termination()
							state.Modify(func(s *raceState) { s.done = true })
							sink.Terminate(term)
						})))
					})
					return
				}
				term, _ := e.Termination()
				racing := 0
				contenders.WithValue(func(m map[uint64]dispose.Disposable) { racing = len(m) })
				forward := false
				state.Modify(func(s *raceState) {
					if s.done {
						return
					}
					s.outerDone = true
					if term.Kind() != event.KindCompleted {
						s.done = true
						forward = true
						return
					}
					// an undecided race with live contenders stays open
					if !s.decided && racing == 0 {
						s.done = true
						forward = true
					}
				})
				if forward {
					sink.Terminate(term)
				}
			})))
		})
	})
}
