// Package bag provides an insertion-ordered collection with opaque removal
// tokens. Owners hand tokens out instead of references, keeping ownership
// strictly one-directional.
package bag

import (
	"golang.org/x/exp/slices"
)

// Token identifies an element inserted into a Bag. Tokens are never reused
// within the same bag.
type Token uint64

type entry[T any] struct {
	token Token
	value T
}

// Bag is an insertion-stable, efficiently-removable multiset. It is not safe
// for concurrent use; callers guard it with their own lock.
type Bag[T any] struct {
	next    Token
	entries []entry[T]
}

// Insert appends value and returns the token that removes it.
func (b *Bag[T]) Insert(value T) Token {
	b.next++
	b.entries = append(b.entries, entry[T]{token: b.next, value: value})
	return b.next
}

// Remove deletes the element identified by token, preserving the insertion
// order of the remaining elements. Unknown tokens are ignored.
func (b *Bag[T]) Remove(token Token) {
	i := slices.IndexFunc(b.entries, func(e entry[T]) bool {
		return e.token == token
	})
	if i < 0 {
		return
	}
	b.entries = slices.Delete(b.entries, i, i+1)
}

func (b *Bag[T]) Len() int {
	return len(b.entries)
}

// Values returns a snapshot of the elements in insertion order. The snapshot
// is safe to iterate after the bag has been mutated.
func (b *Bag[T]) Values() []T {
	values := make([]T, 0, len(b.entries))
	for _, e := range b.entries {
		values = append(values, e.value)
	}
	return values
}
