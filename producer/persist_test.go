package producer

import (
	"context"
	"testing"

	"github.com/drava/go-surge/event"
	"github.com/drava/go-surge/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPersistLatest(t *testing.T) {
	t.Run("When a persisted stream emits values", func(t *testing.T) {
		st := store.NewInMemoryStore[int]()
		defer st.Close()
		key := uuid.NewString()

		r := newRecorder[int]()
		PersistLatest(Of(1, 2, 3), st, key).Start(r.observer())

		t.Run("Then the stream should pass through unchanged", func(t *testing.T) {
			assert.Equal(t, []int{1, 2, 3}, r.Values())
			last, _ := r.Last()
			assert.Equal(t, event.KindCompleted, last.Kind())
		})

		t.Run("And the store should hold the latest value", func(t *testing.T) {
			entries, err := st.Get(context.Background(), key)
			assert.NoError(t, err)
			assert.Len(t, entries, 1)
			assert.Equal(t, 3, *entries[0].State)
		})
	})

	t.Run("When the persisted stream fails", func(t *testing.T) {
		st := store.NewInMemoryStore[int]()
		defer st.Close()
		key := uuid.NewString()

		r := newRecorder[int]()
		PersistLatest(Failed[int](assert.AnError), st, key).Start(r.observer())

		t.Run("Then the failure should pass through and nothing should be stored", func(t *testing.T) {
			assert.Equal(t, []event.Kind{event.KindFailed}, r.Kinds())
			entries, err := st.Get(context.Background(), key)
			assert.NoError(t, err)
			assert.Empty(t, entries)
		})
	})
}

func TestRehydrate(t *testing.T) {
	t.Run("When a snapshot exists under the key", func(t *testing.T) {
		st := store.NewInMemoryStore[int]()
		defer st.Close()
		key := uuid.NewString()

		err := st.Set(context.Background(), store.StateEntry[int]{
			Key:   key,
			State: store.ToPtr(42),
		})
		assert.NoError(t, err)

		r := newRecorder[int]()
		Rehydrate(st, key).Start(r.observer())

		t.Run("Then the snapshot should be replayed and the stream completed", func(t *testing.T) {
			assert.Equal(t, []int{42}, r.Values())
			assert.Equal(t, []event.Kind{event.KindValue, event.KindCompleted}, r.Kinds())
		})
	})

	t.Run("When no snapshot exists", func(t *testing.T) {
		st := store.NewInMemoryStore[int]()
		defer st.Close()

		r := newRecorder[int]()
		Rehydrate(st, uuid.NewString()).Start(r.observer())

		t.Run("Then the stream should complete empty", func(t *testing.T) {
			assert.Equal(t, []event.Kind{event.KindCompleted}, r.Kinds())
		})
	})

	t.Run("When rehydrating then persisting the same key", func(t *testing.T) {
		st := store.NewInMemoryStore[int]()
		defer st.Close()
		key := uuid.NewString()

		PersistLatest(Of(7), st, key).Start(newRecorder[int]().observer())

		r := newRecorder[int]()
		Rehydrate(st, key).Start(r.observer())

		t.Run("Then the round trip should yield the persisted value", func(t *testing.T) {
			assert.Equal(t, []int{7}, r.Values())
		})
	})
}
