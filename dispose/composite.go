package dispose

import (
	"github.com/drava/go-surge/bag"
	"github.com/drava/go-surge/xsync"
)

// Handle identifies a child added to a Composite. It carries no reference
// back to the composite, so a child can never transitively own its parent.
type Handle struct {
	token bag.Token
}

// Composite owns a dynamic set of child disposables. Disposing it disposes
// every current child exactly once, in reverse-insertion order. A child
// added after disposal is disposed synchronously and never retained.
type Composite struct {
	state    *xsync.AtomicState
	children *xsync.Atomic[*bag.Bag[Disposable]]
}

func NewComposite(children ...Disposable) *Composite {
	b := &bag.Bag[Disposable]{}
	for _, d := range children {
		if d != nil {
			b.Insert(d)
		}
	}
	return &Composite{
		state:    xsync.NewAtomicState(stateActive),
		children: xsync.NewAtomic(b),
	}
}

// Add registers d and returns a handle that can later remove it. When the
// composite is already disposed, d is disposed inline and the zero Handle is
// returned.
func (c *Composite) Add(d Disposable) Handle {
	if d == nil {
		return Handle{}
	}

	var h Handle
	c.children.Modify(func(b **bag.Bag[Disposable]) {
		if *b == nil {
			return
		}
		h = Handle{token: (*b).Insert(d)}
	})

	if h == (Handle{}) {
		d.Dispose()
	}
	return h
}

// AddAction is shorthand for Add(New(action)).
func (c *Composite) AddAction(action func()) Handle {
	return c.Add(New(action))
}

// Remove detaches the child identified by h without disposing it.
func (c *Composite) Remove(h Handle) {
	if h == (Handle{}) {
		return
	}
	c.children.Modify(func(b **bag.Bag[Disposable]) {
		if *b == nil {
			return
		}
		(*b).Remove(h.token)
	})
}

func (c *Composite) Dispose() {
	if !c.state.TryTransition(stateActive, stateDisposed) {
		return
	}

	var kids []Disposable
	c.children.Modify(func(b **bag.Bag[Disposable]) {
		if *b == nil {
			return
		}
		kids = (*b).Values()
		*b = nil
	})

	for i := len(kids) - 1; i >= 0; i-- {
		kids[i].Dispose()
	}
}

func (c *Composite) IsDisposed() bool {
	return c.state.Is(stateDisposed)
}
