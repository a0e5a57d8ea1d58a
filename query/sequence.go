package query

import (
	"iter"

	"github.com/kbukum/seqkit/errors"
)

// Enumerator is a cursor over one pass of a sequence.
type Enumerator[T any] interface {
	// MoveNext advances to the next element. It returns false once the
	// sequence is exhausted, has failed or the cursor was closed.
	MoveNext() bool
	// Current returns the element MoveNext advanced to.
	Current() T
	// Err reports the failure that ended enumeration, if any.
	Err() error
	// Close releases upstream resources. Safe to call more than once.
	Close()
}

// Sequence is anything that can be enumerated.
type Sequence[T any] interface {
	Enumerate() Enumerator[T]
}

// Indexed is implemented by sequences with O(1) length and element access.
type Indexed[T any] interface {
	Len() int
	At(i int) T
}

// SequenceFunc adapts a function to Sequence.
type SequenceFunc[T any] func() Enumerator[T]

func (f SequenceFunc[T]) Enumerate() Enumerator[T] { return f() }

// Query is an immutable query descriptor.
type Query[T any] struct {
	seq Sequence[T]
}

func wrap[T any](s Sequence[T]) Query[T] {
	return Query[T]{seq: s}
}

// Enumerate starts a new pass over the query.
func (q Query[T]) Enumerate() Enumerator[T] {
	if q.seq == nil {
		panic(errors.NullArgument("source"))
	}
	return q.seq.Enumerate()
}

// All returns an iterator for range loops. A failing source ends the loop
// with one (zero, err) pair. Breaking out of the loop closes the cursor.
func (q Query[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		e := q.Enumerate()
		defer e.Close()
		for e.MoveNext() {
			if !yield(e.Current(), nil) {
				return
			}
		}
		if err := e.Err(); err != nil {
			var zero T
			yield(zero, fail("all", err))
		}
	}
}

func (q Query[T]) Where(pred func(T) bool) Query[T]         { return Where[T](q, pred) }
func (q Query[T]) Take(n int) Query[T]                      { return Take[T](q, n) }
func (q Query[T]) Skip(n int) Query[T]                      { return Skip[T](q, n) }
func (q Query[T]) TakeWhile(pred func(T) bool) Query[T]     { return TakeWhile[T](q, pred) }
func (q Query[T]) SkipWhile(pred func(T) bool) Query[T]     { return SkipWhile[T](q, pred) }
func (q Query[T]) Concat(other Sequence[T]) Query[T]        { return Concat[T](q, other) }
func (q Query[T]) Append(v T) Query[T]                      { return Append[T](q, v) }
func (q Query[T]) Prepend(v T) Query[T]                     { return Prepend[T](q, v) }
func (q Query[T]) Reverse() Query[T]                        { return Reverse[T](q) }
func (q Query[T]) DefaultIfEmpty(def T) Query[T]            { return DefaultIfEmpty[T](q, def) }
func (q Query[T]) Count() (int, error)                      { return Count[T](q) }
func (q Query[T]) LongCount() (int64, error)                { return LongCount[T](q) }
func (q Query[T]) Any() (bool, error)                       { return Any[T](q) }
func (q Query[T]) AnyMatch(pred func(T) bool) (bool, error) { return AnyMatch[T](q, pred) }
func (q Query[T]) First() (T, error)                        { return First[T](q) }
func (q Query[T]) Last() (T, error)                         { return Last[T](q) }
func (q Query[T]) Single() (T, error)                       { return Single[T](q) }
func (q Query[T]) ElementAt(i int) (T, error)               { return ElementAt[T](q, i) }
func (q Query[T]) ToSlice() ([]T, error)                    { return ToSlice[T](q) }
func (q Query[T]) ToList() (*List[T], error)                { return ToList[T](q) }
func (q Query[T]) ForEach(fn func(T) error) error           { return ForEach[T](q, fn) }

// unwrap strips Query wrappers so operators can see the concrete descriptor.
func unwrap[T any](s Sequence[T]) Sequence[T] {
	switch q := s.(type) {
	case Query[T]:
		return q.seq
	case *Query[T]:
		if q == nil {
			return nil
		}
		return q.seq
	case OrderedQuery[T]:
		return q.seq
	case *OrderedQuery[T]:
		if q == nil {
			return nil
		}
		return q.seq
	}
	return s
}

// indexer is implemented by descriptors that are indexable only in some
// configurations, e.g. an unfiltered projection over a slice.
type indexer[T any] interface {
	indexed() (Indexed[T], bool)
}

func indexedOf[T any](s Sequence[T]) (Indexed[T], bool) {
	switch v := unwrap(s).(type) {
	case indexer[T]:
		return v.indexed()
	case Indexed[T]:
		return v, true
	}
	return nil, false
}

func mustSeq[T any](s Sequence[T], param string) Sequence[T] {
	s = unwrap(s)
	if s == nil {
		panic(errors.NullArgument(param))
	}
	return s
}

func mustFunc(isNil bool, param string) {
	if isNil {
		panic(errors.NullArgument(param))
	}
}

func mustCount(n int, param string) {
	if n < 0 {
		panic(errors.ArgumentOutOfRange(param, n))
	}
}
