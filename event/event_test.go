package event

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent(t *testing.T) {
	t.Run("When constructing each event variant", func(t *testing.T) {
		err := errors.New("boom")

		value := Value(42)
		failed := Failed[int](err)
		completed := Completed[int]()
		interrupted := Interrupted[int]()

		t.Run("Then only the value event should be non-terminating", func(t *testing.T) {
			assert.False(t, value.IsTerminating())
			assert.True(t, failed.IsTerminating())
			assert.True(t, completed.IsTerminating())
			assert.True(t, interrupted.IsTerminating())
		})

		t.Run("And only the failed event should carry an error", func(t *testing.T) {
			assert.Equal(t, err, failed.Err())
			assert.NoError(t, value.Err())
			assert.NoError(t, completed.Err())
			assert.NoError(t, interrupted.Err())
		})

		t.Run("And Val should only succeed for the value event", func(t *testing.T) {
			v, ok := value.Val()
			assert.True(t, ok)
			assert.Equal(t, 42, v)

			_, ok = completed.Val()
			assert.False(t, ok)
		})
	})

	t.Run("When converting events to terminations", func(t *testing.T) {
		err := errors.New("boom")

		t.Run("Then a value event should refuse the conversion", func(t *testing.T) {
			_, ok := Value(1).Termination()
			assert.False(t, ok)
		})

		t.Run("Then a failed event should round-trip through Termination", func(t *testing.T) {
			term, ok := Failed[int](err).Termination()
			assert.True(t, ok)
			assert.Equal(t, KindFailed, term.Kind())
			assert.Equal(t, err, term.Err())

			back := FromTermination[string](term)
			assert.Equal(t, KindFailed, back.Kind())
			assert.Equal(t, err, back.Err())
		})
	})

	t.Run("When mapping events", func(t *testing.T) {
		mapped := MapEvent(Value(7), strconv.Itoa)

		t.Run("Then a value event should be transformed", func(t *testing.T) {
			v, ok := mapped.Val()
			assert.True(t, ok)
			assert.Equal(t, "7", v)
		})

		t.Run("Then terminal events should pass through untouched", func(t *testing.T) {
			err := errors.New("boom")
			failed := MapEvent(Failed[int](err), strconv.Itoa)
			assert.Equal(t, KindFailed, failed.Kind())
			assert.Equal(t, err, failed.Err())

			completed := MapEvent(Completed[int](), strconv.Itoa)
			assert.Equal(t, KindCompleted, completed.Kind())
		})
	})

	t.Run("When printing kinds", func(t *testing.T) {
		assert.Equal(t, "value", KindValue.String())
		assert.Equal(t, "failed", KindFailed.String())
		assert.Equal(t, "completed", KindCompleted.String())
		assert.Equal(t, "interrupted", KindInterrupted.String())
	})
}
