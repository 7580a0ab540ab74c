package producer

import (
	"context"

	"github.com/drava/go-surge/dispose"
	"github.com/drava/go-surge/event"
	"github.com/drava/go-surge/instrument"
	"github.com/drava/go-surge/signal"
	"github.com/drava/go-surge/store"
)

// PersistLatest taps each run of p, writing every value to the store under
// key as the latest snapshot. Writes are last-writer-wins; a write failure
// is logged and does not disturb the stream.
func PersistLatest[V any](p Producer[V], st store.StateStore[V], key string) Producer[V] {
	return New(func(sink *signal.Sink[V], scope *dispose.Composite) {
		p.StartWithSignal(func(sig *signal.Signal[V], stop dispose.Disposable) {
			scope.Add(stop)
			scope.Add(sig.Observe(signal.NewObserver(func(e event.Event[V]) {
				if v, ok := e.Val(); ok {
					entries, err := st.Get(context.Background(), key)
					if err == nil {
						entry := store.StateEntry[V]{Key: key, State: &v}
						if len(entries) > 0 {
							entry.Timestamp = entries[0].Timestamp
						}
						err = st.Set(context.Background(), entry)
					}
					if err != nil {
						instrument.Logging().Warn(sig.Activity(), "persisting snapshot: "+err.Error())
					}
				}
				sink.Send(e)
			})))
		})
	})
}

// Rehydrate emits the snapshot stored under key, if any, then completes.
func Rehydrate[V any](st store.StateStore[V], key string) Producer[V] {
	return New(func(sink *signal.Sink[V], _ *dispose.Composite) {
		entries, err := st.Get(context.Background(), key)
		if err != nil {
			sink.Fail(err)
			return
		}
		if len(entries) > 0 && entries[0].State != nil {
			sink.Write(*entries[0].State)
		}
		sink.Complete()
	})
}
