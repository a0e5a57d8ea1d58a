package query

import (
	"github.com/kbukum/seqkit/logger"
)

// each feeds every element of src to fn until fn returns false.
func each[T any](src source[T], fn func(T) bool) error {
	var r reader[T]
	r.open(src)
	defer r.close()
	for r.next() {
		if !fn(r.value()) {
			return nil
		}
	}
	return r.err
}

// materialize reads src once into a new slice.
func materialize[T any](op string, src source[T]) ([]T, error) {
	var buf []T
	if ix, ok := src.indexed(); ok {
		buf = make([]T, ix.Len())
		for i := range buf {
			buf[i] = ix.At(i)
		}
	} else {
		o := opts()
		buf = make([]T, 0, o.BufferCapacity)
		err := each(src, func(x T) bool {
			buf = append(buf, x)
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	opts().Observer.Materialized(op, len(buf))
	traceBuild("buffer materialized", logger.Fields(
		logger.FieldOperation, op,
		logger.FieldElements, len(buf),
	))
	return buf, nil
}

// ToSlice returns the elements in a new slice.
func ToSlice[T any](src Sequence[T]) ([]T, error) {
	s := mustSeq(src, "source")
	buf, err := materialize("to_slice", sourceOf(s))
	if err != nil {
		return nil, fail("to_slice", err)
	}
	return buf, nil
}

// ToList returns the elements in a new List.
func ToList[T any](src Sequence[T]) (*List[T], error) {
	s := mustSeq(src, "source")
	buf, err := materialize("to_list", sourceOf(s))
	if err != nil {
		return nil, fail("to_list", err)
	}
	return &List[T]{items: buf}, nil
}

// ForEach calls fn for every element and stops at the first error.
func ForEach[T any](src Sequence[T], fn func(T) error) error {
	s := mustSeq(src, "source")
	mustFunc(fn == nil, "action")
	var fnErr error
	err := each(sourceOf(s), func(x T) bool {
		fnErr = fn(x)
		return fnErr == nil
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fail("for_each", err)
	}
	return nil
}

type reverseStep[T any] struct {
	src source[T]
	buf []T
	i   int
	e   error
}

func (s *reverseStep[T]) step() (T, bool) {
	var zero T
	if s.buf == nil && s.e == nil {
		s.buf, s.e = materialize("reverse", s.src)
		s.i = len(s.buf)
	}
	if s.e != nil || s.i == 0 {
		return zero, false
	}
	s.i--
	return s.buf[s.i], true
}

func (s *reverseStep[T]) err() error { return s.e }
func (s *reverseStep[T]) close()     { s.buf = nil }

type reversedIndex[T any] struct {
	src Indexed[T]
}

func (r reversedIndex[T]) Len() int   { return r.src.Len() }
func (r reversedIndex[T]) At(i int) T { return r.src.At(r.src.Len() - 1 - i) }

// Reverse yields the elements back to front. The source is buffered on the
// first MoveNext.
func Reverse[T any](src Sequence[T]) Query[T] {
	s := mustSeq(src, "source")
	in := sourceOf(s)
	spec := &lazySpec[T]{op: "reverse", open: func() stepper[T] {
		return &reverseStep[T]{src: in}
	}}
	spec.index = func() (Indexed[T], bool) {
		ix, ok := in.indexed()
		if !ok {
			return nil, false
		}
		return reversedIndex[T]{src: ix}, true
	}
	return wrap[T](spec)
}
