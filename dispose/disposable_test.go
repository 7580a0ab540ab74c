package dispose

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisposable(t *testing.T) {
	t.Run("When disposing an action disposable twice", func(t *testing.T) {
		calls := 0
		d := New(func() { calls++ })

		d.Dispose()
		d.Dispose()

		t.Run("Then the action should have run exactly once", func(t *testing.T) {
			assert.Equal(t, 1, calls)
			assert.True(t, d.IsDisposed())
		})
	})

	t.Run("When many goroutines race to dispose the same disposable", func(t *testing.T) {
		calls := 0
		mu := &sync.Mutex{}
		d := New(func() {
			mu.Lock()
			defer mu.Unlock()
			calls++
		})

		wg := &sync.WaitGroup{}
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d.Dispose()
			}()
		}
		wg.Wait()

		t.Run("Then the action should still run exactly once", func(t *testing.T) {
			assert.Equal(t, 1, calls)
		})
	})

	t.Run("When using a pre-disposed disposable", func(t *testing.T) {
		d := Disposed()

		t.Run("Then it should already report disposed", func(t *testing.T) {
			assert.True(t, d.IsDisposed())
		})
	})

	t.Run("When using a nop disposable", func(t *testing.T) {
		d := Nop()

		assert.False(t, d.IsDisposed())
		d.Dispose()

		t.Run("Then only the disposed flag should flip", func(t *testing.T) {
			assert.True(t, d.IsDisposed())
		})
	})
}
