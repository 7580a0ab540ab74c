package bag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBag(t *testing.T) {
	t.Run("When inserting a sequence of values", func(t *testing.T) {
		b := &Bag[string]{}
		b.Insert("a")
		b.Insert("b")
		b.Insert("c")

		t.Run("Then the values should come back in insertion order", func(t *testing.T) {
			assert.Equal(t, []string{"a", "b", "c"}, b.Values())
		})
	})

	t.Run("When removing an element from the middle", func(t *testing.T) {
		b := &Bag[string]{}
		b.Insert("a")
		tok := b.Insert("b")
		b.Insert("c")

		b.Remove(tok)

		t.Run("Then the remaining elements should keep their order", func(t *testing.T) {
			assert.Equal(t, []string{"a", "c"}, b.Values())
			assert.Equal(t, 2, b.Len())
		})

		t.Run("And removing the same token again should be a no-op", func(t *testing.T) {
			b.Remove(tok)
			assert.Equal(t, []string{"a", "c"}, b.Values())
		})
	})

	t.Run("When equal values are inserted twice", func(t *testing.T) {
		b := &Bag[string]{}
		first := b.Insert("dup")
		second := b.Insert("dup")

		t.Run("Then the tokens should be distinct and remove independently", func(t *testing.T) {
			assert.NotEqual(t, first, second)
			b.Remove(first)
			assert.Equal(t, []string{"dup"}, b.Values())
		})
	})

	t.Run("When snapshotting values before a removal", func(t *testing.T) {
		b := &Bag[int]{}
		tok := b.Insert(1)
		b.Insert(2)

		snapshot := b.Values()
		b.Remove(tok)

		t.Run("Then the snapshot should be unaffected", func(t *testing.T) {
			assert.Equal(t, []int{1, 2}, snapshot)
		})
	})
}
