package signal

import (
	"errors"
	"testing"

	"github.com/drava/go-surge/event"
	"github.com/stretchr/testify/assert"
)

func TestCombineLatest(t *testing.T) {
	t.Run("When combining two signals", func(t *testing.T) {
		a, sigA := NewPipe[int]()
		b, sigB := NewPipe[string]()

		r := newRecorder[Tuple2[int, string]]()
		CombineLatest2(sigA, sigB).Observe(r.observer())

		a.Write(1)
		a.Write(2)

		t.Run("Then nothing should be emitted until every slot has a value", func(t *testing.T) {
			assert.Empty(t, r.Events())
		})

		b.Write("x")

		t.Run("Then the first tuple should combine the latest of each slot", func(t *testing.T) {
			assert.Equal(t, []Tuple2[int, string]{{2, "x"}}, r.Values())
		})

		a.Write(3)
		b.Write("y")

		t.Run("And every subsequent value from any slot should re-emit", func(t *testing.T) {
			assert.Equal(t, []Tuple2[int, string]{{2, "x"}, {3, "x"}, {3, "y"}}, r.Values())
		})

		a.Complete()
		b.Write("z")

		t.Run("And one completed input should not stop the rest", func(t *testing.T) {
			assert.Equal(t, Tuple2[int, string]{3, "z"}, r.Values()[len(r.Values())-1])
		})

		b.Complete()

		t.Run("Then the aggregate should complete once all inputs have", func(t *testing.T) {
			last, ok := r.Last()
			assert.True(t, ok)
			assert.Equal(t, event.KindCompleted, last.Kind())
		})
	})

	t.Run("When one input fails", func(t *testing.T) {
		err := errors.New("boom")
		a, sigA := NewPipe[int]()
		b, sigB := NewPipe[int]()

		r := newRecorder[Tuple2[int, int]]()
		CombineLatest2(sigA, sigB).Observe(r.observer())

		a.Write(1)
		b.Fail(err)
		a.Write(2)

		t.Run("Then the failure should propagate immediately and discard the rest", func(t *testing.T) {
			assert.Equal(t, []event.Kind{event.KindFailed}, r.Kinds())
			last, _ := r.Last()
			assert.Equal(t, err, last.Err())
		})
	})

	t.Run("When one input is interrupted", func(t *testing.T) {
		a, sigA := NewPipe[int]()
		_, sigB := NewPipe[int]()

		r := newRecorder[Tuple2[int, int]]()
		CombineLatest2(sigA, sigB).Observe(r.observer())

		a.Interrupt()

		t.Run("Then the interruption should terminate the aggregate", func(t *testing.T) {
			assert.Equal(t, []event.Kind{event.KindInterrupted}, r.Kinds())
		})
	})

	t.Run("When combining three signals", func(t *testing.T) {
		a, sigA := NewPipe[int]()
		b, sigB := NewPipe[int]()
		c, sigC := NewPipe[int]()

		r := newRecorder[Tuple3[int, int, int]]()
		CombineLatest3(sigA, sigB, sigC).Observe(r.observer())

		a.Write(1)
		b.Write(2)
		assert.Empty(t, r.Events())
		c.Write(3)

		t.Run("Then the gate should require all three slots", func(t *testing.T) {
			assert.Equal(t, []Tuple3[int, int, int]{{1, 2, 3}}, r.Values())
		})
	})

	t.Run("When combining a homogeneous slice of signals", func(t *testing.T) {
		sinks := make([]*Sink[int], 3)
		sigs := make([]*Signal[int], 3)
		for i := range sigs {
			sinks[i], sigs[i] = NewPipe[int]()
		}

		r := newRecorder[[]int]()
		CombineLatest(sigs).Observe(r.observer())

		for i, s := range sinks {
			s.Write(i * 10)
		}

		t.Run("Then the slice tuple should hold one element per slot", func(t *testing.T) {
			assert.Equal(t, [][]int{{0, 10, 20}}, r.Values())
		})

		for _, s := range sinks {
			s.Complete()
		}

		t.Run("And completion should require every slot", func(t *testing.T) {
			last, _ := r.Last()
			assert.Equal(t, event.KindCompleted, last.Kind())
		})
	})

	t.Run("When combining an empty slice", func(t *testing.T) {
		r := newRecorder[[]int]()
		CombineLatest[int](nil).Observe(r.observer())

		t.Run("Then the aggregate should already be terminated", func(t *testing.T) {
			assert.Equal(t, []event.Kind{event.KindInterrupted}, r.Kinds())
		})
	})
}
