package query

import (
	"go.uber.org/atomic"
)

type state uint8

const (
	stateCreated state = iota
	stateEnumerating
	stateExhausted
	stateDisposed
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateEnumerating:
		return "enumerating"
	case stateExhausted:
		return "exhausted"
	default:
		return "disposed"
	}
}

// cursorBase holds the fields shared by every cursor.
type cursorBase[T any] struct {
	state   state
	current T
	err     error
}

func (c *cursorBase[T]) Current() T { return c.current }

func (c *cursorBase[T]) Err() error { return c.err }

// end moves the cursor to a terminal state and clears the current element.
func (c *cursorBase[T]) end(s state, err error) {
	var zero T
	c.current = zero
	c.state = s
	if err != nil && c.err == nil {
		c.err = err
	}
}

// claim hands the descriptor's embedded cursor to exactly one caller.
type claim struct {
	taken atomic.Bool
}

// start returns the cursor for a new enumeration of op: first when this call
// wins the claim, a fresh zero cursor otherwise.
func start[C any](op string, c *claim, first *C) *C {
	reused := c.taken.CompareAndSwap(false, true)
	opts().Observer.CursorStarted(op, reused)
	if reused {
		return first
	}
	return new(C)
}

// stepper is the per-enumeration state of a lazy operator.
type stepper[T any] interface {
	// step produces the next element, or false when done or failed.
	step() (T, bool)
	err() error
	close()
}

// lazySpec is the descriptor shared by most lazy operators: open builds the
// operator state for one enumeration.
type lazySpec[T any] struct {
	claim
	op    string
	open  func() stepper[T]
	index func() (Indexed[T], bool)
	first lazyCursor[T]
}

func newLazy[T any](op string, open func() stepper[T]) Query[T] {
	return wrap[T](&lazySpec[T]{op: op, open: open})
}

func (s *lazySpec[T]) Enumerate() Enumerator[T] {
	c := start(s.op, &s.claim, &s.first)
	c.spec = s
	return c
}

func (s *lazySpec[T]) indexed() (Indexed[T], bool) {
	if s.index == nil {
		return nil, false
	}
	return s.index()
}

type lazyCursor[T any] struct {
	cursorBase[T]
	spec *lazySpec[T]
	st   stepper[T]
}

func (c *lazyCursor[T]) MoveNext() bool {
	switch c.state {
	case stateCreated:
		c.st = c.spec.open()
		c.state = stateEnumerating
		fallthrough
	case stateEnumerating:
		if v, ok := c.st.step(); ok {
			c.current = v
			return true
		}
		err := c.st.err()
		c.release()
		c.end(stateExhausted, err)
	}
	return false
}

func (c *lazyCursor[T]) release() {
	if c.st != nil {
		c.st.close()
		c.st = nil
	}
}

func (c *lazyCursor[T]) Close() {
	c.release()
	c.end(stateDisposed, nil)
}
