package query

// filterReader drives a source through an optional predicate. It is the
// single upstream stage shared by filters and projections.
type filterReader[T any] struct {
	r    reader[T]
	pred func(T) bool
}

func (f *filterReader[T]) advance() bool {
	for f.r.next() {
		if f.pred == nil || f.pred(f.r.value()) {
			return true
		}
	}
	return false
}

func (f *filterReader[T]) fail() error { return f.r.err }
func (f *filterReader[T]) close()      { f.r.close() }

// driver is a filterReader with its element type erased.
type driver interface {
	advance() bool
	fail() error
	close()
}

// filterSpec is a pure filter over a source.
type filterSpec[T any] struct {
	claim
	src   source[T]
	pred  func(T) bool
	first filterCursor[T]
}

func (s *filterSpec[T]) Enumerate() Enumerator[T] {
	c := start("where", &s.claim, &s.first)
	c.spec = s
	return c
}

type filterCursor[T any] struct {
	cursorBase[T]
	spec *filterSpec[T]
	f    filterReader[T]
}

func (c *filterCursor[T]) MoveNext() bool {
	switch c.state {
	case stateCreated:
		c.f.pred = c.spec.pred
		c.f.r.open(c.spec.src)
		c.state = stateEnumerating
		fallthrough
	case stateEnumerating:
		if c.f.advance() {
			c.current = c.f.r.value()
			return true
		}
		err := c.f.fail()
		c.f.close()
		c.end(stateExhausted, err)
	}
	return false
}

func (c *filterCursor[T]) Close() {
	if c.state != stateCreated {
		c.f.close()
	}
	c.end(stateDisposed, nil)
}

// projectSpec is a projection, optionally filtered, whose source element type
// is hidden behind open.
type projectSpec[T any] struct {
	claim
	// open builds the upstream driver for one enumeration and a getter that
	// projects the driver's current element.
	open func() (driver, func() T)
	// index is nil for filtered projections.
	index func() (Indexed[T], bool)
	first projectCursor[T]
}

func newProjection[S, T any](src source[S], pred func(S) bool, sel func(S) T) *projectSpec[T] {
	p := &projectSpec[T]{
		open: func() (driver, func() T) {
			f := &filterReader[S]{pred: pred}
			f.r.open(src)
			return f, func() T { return sel(f.r.value()) }
		},
	}
	if pred == nil {
		p.index = func() (Indexed[T], bool) {
			ix, ok := src.indexed()
			if !ok {
				return nil, false
			}
			return mappedIndex[S, T]{src: ix, sel: sel}, true
		}
	}
	return p
}

// compose returns a projection applying g after p's projection, over the
// same driver.
func compose[S, T any](p *projectSpec[S], g func(S) T) *projectSpec[T] {
	open := p.open
	c := &projectSpec[T]{
		open: func() (driver, func() T) {
			d, get := open()
			return d, func() T { return g(get()) }
		},
	}
	if p.index != nil {
		index := p.index
		c.index = func() (Indexed[T], bool) {
			ix, ok := index()
			if !ok {
				return nil, false
			}
			return mappedIndex[S, T]{src: ix, sel: g}, true
		}
	}
	return c
}

func (s *projectSpec[T]) Enumerate() Enumerator[T] {
	c := start("select", &s.claim, &s.first)
	c.spec = s
	return c
}

func (s *projectSpec[T]) indexed() (Indexed[T], bool) {
	if s.index == nil {
		return nil, false
	}
	return s.index()
}

type projectCursor[T any] struct {
	cursorBase[T]
	spec *projectSpec[T]
	d    driver
	get  func() T
}

func (c *projectCursor[T]) MoveNext() bool {
	switch c.state {
	case stateCreated:
		c.d, c.get = c.spec.open()
		c.state = stateEnumerating
		fallthrough
	case stateEnumerating:
		if c.d.advance() {
			c.current = c.get()
			return true
		}
		err := c.d.fail()
		c.release()
		c.end(stateExhausted, err)
	}
	return false
}

func (c *projectCursor[T]) release() {
	if c.d != nil {
		c.d.close()
		c.d, c.get = nil, nil
	}
}

func (c *projectCursor[T]) Close() {
	c.release()
	c.end(stateDisposed, nil)
}

// Where keeps the elements satisfying pred. Where over a filter fuses both
// predicates into one stage.
func Where[T any](src Sequence[T], pred func(T) bool) Query[T] {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	if f, ok := s.(*filterSpec[T]); ok {
		p1 := f.pred
		return wrap[T](&filterSpec[T]{src: f.src, pred: func(x T) bool { return p1(x) && pred(x) }})
	}
	return wrap[T](&filterSpec[T]{src: sourceOf(s), pred: pred})
}

// Select projects each element with sel. Select over a filter or an earlier
// projection fuses into one stage.
func Select[S, T any](src Sequence[S], sel func(S) T) Query[T] {
	s := mustSeq(src, "source")
	mustFunc(sel == nil, "selector")
	switch v := s.(type) {
	case *filterSpec[S]:
		return wrap[T](newProjection(v.src, v.pred, sel))
	case *projectSpec[S]:
		return wrap[T](compose(v, sel))
	}
	return wrap[T](newProjection(sourceOf(s), nil, sel))
}

// WhereIndexed keeps the elements for which pred, given the element and its
// source index, holds.
func WhereIndexed[T any](src Sequence[T], pred func(T, int) bool) Query[T] {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	in := sourceOf(s)
	return newLazy("where_indexed", func() stepper[T] {
		st := &indexedStep[T]{i: -1}
		st.r.open(in)
		st.next = func(v T, i int) (T, bool) { return v, pred(v, i) }
		return st
	})
}

// SelectIndexed projects each element with its source index.
func SelectIndexed[S, T any](src Sequence[S], sel func(S, int) T) Query[T] {
	s := mustSeq(src, "source")
	mustFunc(sel == nil, "selector")
	in := sourceOf(s)
	return newLazy("select_indexed", func() stepper[T] {
		st := &mapIndexedStep[S, T]{sel: sel, i: -1}
		st.r.open(in)
		return st
	})
}

type indexedStep[T any] struct {
	r    reader[T]
	i    int
	next func(T, int) (T, bool)
}

func (s *indexedStep[T]) step() (T, bool) {
	for s.r.next() {
		s.i++
		if v, ok := s.next(s.r.value(), s.i); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (s *indexedStep[T]) err() error { return s.r.err }
func (s *indexedStep[T]) close()     { s.r.close() }

type mapIndexedStep[S, T any] struct {
	r   reader[S]
	sel func(S, int) T
	i   int
}

func (s *mapIndexedStep[S, T]) step() (T, bool) {
	if s.r.next() {
		s.i++
		return s.sel(s.r.value(), s.i), true
	}
	var zero T
	return zero, false
}

func (s *mapIndexedStep[S, T]) err() error { return s.r.err }
func (s *mapIndexedStep[S, T]) close()     { s.r.close() }
