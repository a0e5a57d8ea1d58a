package query

import "github.com/kbukum/seqkit/errors"

// readerStep is the base of operators that pull from one source.
type readerStep[T any] struct {
	r reader[T]
}

func (s *readerStep[T]) err() error { return s.r.err }
func (s *readerStep[T]) close()     { s.r.close() }

func openReader[T any](src source[T]) readerStep[T] {
	var s readerStep[T]
	s.r.open(src)
	return s
}

type selectManyStep[S, T any] struct {
	readerStep[S]
	fn    func(S) Sequence[T]
	inner Enumerator[T]
	e     error
}

func (s *selectManyStep[S, T]) step() (T, bool) {
	var zero T
	for {
		if s.inner != nil {
			if s.inner.MoveNext() {
				return s.inner.Current(), true
			}
			s.e = s.inner.Err()
			s.inner.Close()
			s.inner = nil
			if s.e != nil {
				return zero, false
			}
		}
		if !s.r.next() {
			return zero, false
		}
		seq := unwrap(s.fn(s.r.value()))
		if seq == nil {
			continue
		}
		s.inner = seq.Enumerate()
	}
}

func (s *selectManyStep[S, T]) err() error {
	if s.e != nil {
		return s.e
	}
	return s.r.err
}

func (s *selectManyStep[S, T]) close() {
	if s.inner != nil {
		s.inner.Close()
		s.inner = nil
	}
	s.r.close()
}

// SelectMany projects each element to a sequence and flattens the results.
// A nil sequence from fn contributes nothing.
func SelectMany[S, T any](src Sequence[S], fn func(S) Sequence[T]) Query[T] {
	s := mustSeq(src, "source")
	mustFunc(fn == nil, "selector")
	in := sourceOf(s)
	return newLazy("select_many", func() stepper[T] {
		return &selectManyStep[S, T]{readerStep: openReader(in), fn: fn}
	})
}

type takeStep[T any] struct {
	readerStep[T]
	left int
}

func (s *takeStep[T]) step() (T, bool) {
	if s.left > 0 && s.r.next() {
		s.left--
		v := s.r.value()
		if s.left == 0 {
			s.r.close()
		}
		return v, true
	}
	var zero T
	return zero, false
}

// Take yields the first n elements. Upstream is released as soon as the n-th
// element has been yielded.
func Take[T any](src Sequence[T], n int) Query[T] {
	s := mustSeq(src, "source")
	if n <= 0 {
		return Empty[T]()
	}
	in := sourceOf(s)
	spec := &lazySpec[T]{op: "take", open: func() stepper[T] {
		return &takeStep[T]{readerStep: openReader(in), left: n}
	}}
	spec.index = func() (Indexed[T], bool) {
		ix, ok := in.indexed()
		if !ok {
			return nil, false
		}
		return windowIndex[T]{src: ix, offset: 0, limit: n}, true
	}
	return wrap[T](spec)
}

type skipStep[T any] struct {
	readerStep[T]
	skip int
}

func (s *skipStep[T]) step() (T, bool) {
	for ; s.skip > 0; s.skip-- {
		if !s.r.next() {
			var zero T
			return zero, false
		}
	}
	if s.r.next() {
		return s.r.value(), true
	}
	var zero T
	return zero, false
}

// Skip bypasses the first n elements and yields the rest.
func Skip[T any](src Sequence[T], n int) Query[T] {
	s := mustSeq(src, "source")
	if n <= 0 {
		return wrap(s)
	}
	in := sourceOf(s)
	spec := &lazySpec[T]{op: "skip", open: func() stepper[T] {
		return &skipStep[T]{readerStep: openReader(in), skip: n}
	}}
	spec.index = func() (Indexed[T], bool) {
		ix, ok := in.indexed()
		if !ok {
			return nil, false
		}
		return windowIndex[T]{src: ix, offset: n, limit: -1}, true
	}
	return wrap[T](spec)
}

// windowIndex exposes [offset, offset+limit) of an indexed source, clamped to
// its current length. A negative limit means no upper bound.
type windowIndex[T any] struct {
	src    Indexed[T]
	offset int
	limit  int
}

func (w windowIndex[T]) Len() int {
	n := w.src.Len() - w.offset
	if n < 0 {
		n = 0
	}
	if w.limit >= 0 && n > w.limit {
		n = w.limit
	}
	return n
}

func (w windowIndex[T]) At(i int) T { return w.src.At(w.offset + i) }

type whileStep[T any] struct {
	readerStep[T]
	pred     func(T) bool
	skip     bool
	skipping bool
	done     bool
}

func (s *whileStep[T]) step() (T, bool) {
	var zero T
	if s.done {
		return zero, false
	}
	for s.r.next() {
		x := s.r.value()
		if s.skip {
			if s.skipping && s.pred(x) {
				continue
			}
			s.skipping = false
			return x, true
		}
		if s.pred(x) {
			return x, true
		}
		s.done = true
		break
	}
	return zero, false
}

// TakeWhile yields elements while pred holds and stops at the first that
// fails it.
func TakeWhile[T any](src Sequence[T], pred func(T) bool) Query[T] {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	in := sourceOf(s)
	return newLazy("take_while", func() stepper[T] {
		return &whileStep[T]{readerStep: openReader(in), pred: pred}
	})
}

// SkipWhile bypasses elements while pred holds and yields the rest.
func SkipWhile[T any](src Sequence[T], pred func(T) bool) Query[T] {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	in := sourceOf(s)
	return newLazy("skip_while", func() stepper[T] {
		return &whileStep[T]{readerStep: openReader(in), pred: pred, skip: true, skipping: true}
	})
}

// chainStep yields from each source in turn.
type chainStep[T any] struct {
	srcs []source[T]
	i    int
	r    reader[T]
	open bool
	e    error
}

func (s *chainStep[T]) step() (T, bool) {
	var zero T
	for s.e == nil {
		if !s.open {
			if s.i >= len(s.srcs) {
				break
			}
			s.r = reader[T]{}
			s.r.open(s.srcs[s.i])
			s.open = true
		}
		if s.r.next() {
			return s.r.value(), true
		}
		s.e = s.r.err
		s.r.close()
		s.open = false
		s.i++
	}
	return zero, false
}

func (s *chainStep[T]) err() error { return s.e }

func (s *chainStep[T]) close() {
	if s.open {
		s.r.close()
		s.open = false
	}
	s.i = len(s.srcs)
}

func chain[T any](op string, srcs ...source[T]) Query[T] {
	return newLazy(op, func() stepper[T] {
		return &chainStep[T]{srcs: srcs}
	})
}

// Concat yields the elements of first followed by those of second.
func Concat[T any](first, second Sequence[T]) Query[T] {
	a := sourceOf(mustSeq(first, "first"))
	b := sourceOf(mustSeq(second, "second"))
	return chain("concat", a, b)
}

// Append yields the elements of src followed by v.
func Append[T any](src Sequence[T], v T) Query[T] {
	a := sourceOf(mustSeq(src, "source"))
	return chain("append", a, source[T]{kind: kindSlice, items: []T{v}})
}

// Prepend yields v followed by the elements of src.
func Prepend[T any](src Sequence[T], v T) Query[T] {
	a := sourceOf(mustSeq(src, "source"))
	return chain("prepend", source[T]{kind: kindSlice, items: []T{v}}, a)
}

type zipStep[A, B, R any] struct {
	a  reader[A]
	b  reader[B]
	fn func(A, B) R
}

func (s *zipStep[A, B, R]) step() (R, bool) {
	if s.a.next() && s.b.next() {
		return s.fn(s.a.value(), s.b.value()), true
	}
	var zero R
	return zero, false
}

func (s *zipStep[A, B, R]) err() error {
	if s.a.err != nil {
		return s.a.err
	}
	return s.b.err
}

func (s *zipStep[A, B, R]) close() {
	s.a.close()
	s.b.close()
}

// Zip pairs the elements of a and b with fn and stops at the end of the
// shorter sequence.
func Zip[A, B, R any](a Sequence[A], b Sequence[B], fn func(A, B) R) Query[R] {
	sa := sourceOf(mustSeq(a, "first"))
	sb := sourceOf(mustSeq(b, "second"))
	mustFunc(fn == nil, "resultSelector")
	return newLazy("zip", func() stepper[R] {
		s := &zipStep[A, B, R]{fn: fn}
		s.a.open(sa)
		s.b.open(sb)
		return s
	})
}

type defaultStep[T any] struct {
	readerStep[T]
	def  T
	seen bool
	done bool
}

func (s *defaultStep[T]) step() (T, bool) {
	var zero T
	if s.done {
		return zero, false
	}
	if s.r.next() {
		s.seen = true
		return s.r.value(), true
	}
	s.done = true
	if !s.seen && s.r.err == nil {
		return s.def, true
	}
	return zero, false
}

// DefaultIfEmpty yields the elements of src, or just def when src is empty.
func DefaultIfEmpty[T any](src Sequence[T], def T) Query[T] {
	in := sourceOf(mustSeq(src, "source"))
	return newLazy("default_if_empty", func() stepper[T] {
		return &defaultStep[T]{readerStep: openReader(in), def: def}
	})
}

type ofTypeStep[T any] struct {
	readerStep[any]
}

func (s *ofTypeStep[T]) step() (T, bool) {
	for s.r.next() {
		if v, ok := s.r.value().(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// OfType yields the elements of src that hold a T.
func OfType[T any](src Sequence[any]) Query[T] {
	in := sourceOf(mustSeq(src, "source"))
	return newLazy("of_type", func() stepper[T] {
		return &ofTypeStep[T]{readerStep: openReader(in)}
	})
}

type chunkStep[T any] struct {
	readerStep[T]
	size int
}

func (s *chunkStep[T]) step() ([]T, bool) {
	var chunk []T
	for len(chunk) < s.size && s.r.next() {
		if chunk == nil {
			chunk = make([]T, 0, min(s.size, opts().BufferCapacity))
		}
		chunk = append(chunk, s.r.value())
	}
	return chunk, len(chunk) > 0 && s.r.err == nil
}

// Chunk splits src into slices of size elements; the last may be shorter.
func Chunk[T any](src Sequence[T], size int) Query[[]T] {
	in := sourceOf(mustSeq(src, "source"))
	if size < 1 {
		panic(errors.ArgumentOutOfRange("size", size))
	}
	return newLazy("chunk", func() stepper[[]T] {
		return &chunkStep[T]{readerStep: openReader(in), size: size}
	})
}
