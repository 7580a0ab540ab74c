package xsync

// Atomic guards a value of type T behind a Lock, offering atomic read,
// replace and modify.
type Atomic[T any] struct {
	lock  Lock
	value T
}

func NewAtomic[T any](value T) *Atomic[T] {
	return &Atomic[T]{value: value}
}

// Load returns a copy of the guarded value.
func (a *Atomic[T]) Load() T {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.value
}

// Swap replaces the guarded value and returns the previous one.
func (a *Atomic[T]) Swap(value T) T {
	a.lock.Lock()
	defer a.lock.Unlock()
	old := a.value
	a.value = value
	return old
}

// Modify grants fn exclusive mutable access to the guarded value for the
// duration of the call. Calling Modify again on the same container from
// within fn deadlocks deterministically rather than corrupting state.
func (a *Atomic[T]) Modify(fn func(*T)) {
	a.lock.Lock()
	defer a.lock.Unlock()
	fn(&a.value)
}

// WithValue invokes fn with the current value while holding the lock.
func (a *Atomic[T]) WithValue(fn func(T)) {
	a.lock.Lock()
	defer a.lock.Unlock()
	fn(a.value)
}
