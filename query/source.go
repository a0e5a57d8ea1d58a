package query

import (
	"context"
	"iter"
	"math"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
)

type sourceKind uint8

const (
	kindSequence sourceKind = iota // opaque pull sequence
	kindSlice                      // fixed-size block, plain index loop
	kindIndexed                    // fixed-size generated block (Range, Repeat)
	kindList                       // growable block with a version-checked cursor
)

// source is the raw input of a pipeline stage.
type source[T any] struct {
	kind  sourceKind
	items []T
	idx   Indexed[T]
	list  *List[T]
	seq   Sequence[T]
}

// sourceOf classifies an unwrapped sequence.
func sourceOf[T any](s Sequence[T]) source[T] {
	switch v := s.(type) {
	case *sourceSpec[T]:
		return v.src
	case *List[T]:
		return source[T]{kind: kindList, list: v}
	}
	return source[T]{kind: kindSequence, seq: s}
}

func (s source[T]) indexed() (Indexed[T], bool) {
	switch s.kind {
	case kindSlice:
		return sliceIndex[T](s.items), true
	case kindIndexed:
		return s.idx, true
	case kindList:
		return s.list, true
	default:
		return indexedOf(s.seq)
	}
}

// reader pulls from a source without allocating a cursor for slice, indexed
// and list sources.
type reader[T any] struct {
	src     source[T]
	pos     int
	n       int
	version int
	it      Enumerator[T]
	cur     T
	err     error
	closed  bool
}

func (r *reader[T]) open(src source[T]) {
	r.src = src
	r.pos = -1
	switch src.kind {
	case kindSlice:
		r.n = len(src.items)
	case kindIndexed:
		r.n = src.idx.Len()
	case kindList:
		r.version = src.list.version
	default:
		r.it = src.seq.Enumerate()
	}
}

func (r *reader[T]) next() bool {
	if r.closed {
		return false
	}
	switch r.src.kind {
	case kindSlice:
		r.pos++
		if r.pos < r.n {
			r.cur = r.src.items[r.pos]
			return true
		}
	case kindIndexed:
		r.pos++
		if r.pos < r.n {
			r.cur = r.src.idx.At(r.pos)
			return true
		}
	case kindList:
		if r.version != r.src.list.version {
			r.err = errors.CollectionModified()
			return false
		}
		r.pos++
		if r.pos < len(r.src.list.items) {
			r.cur = r.src.list.items[r.pos]
			return true
		}
	default:
		if r.it.MoveNext() {
			r.cur = r.it.Current()
			return true
		}
		r.err = r.it.Err()
	}
	return false
}

func (r *reader[T]) value() T { return r.cur }

func (r *reader[T]) close() {
	if r.it != nil {
		r.it.Close()
		r.it = nil
	}
	var zero T
	r.cur = zero
	r.closed = true
}

// sourceSpec is the descriptor of a raw source.
type sourceSpec[T any] struct {
	claim
	op    string
	src   source[T]
	first sourceCursor[T]
}

func newSource[T any](op string, src source[T]) Query[T] {
	return wrap[T](&sourceSpec[T]{op: op, src: src})
}

func (s *sourceSpec[T]) Enumerate() Enumerator[T] {
	c := start(s.op, &s.claim, &s.first)
	c.spec = s
	return c
}

func (s *sourceSpec[T]) indexed() (Indexed[T], bool) { return s.src.indexed() }

type sourceCursor[T any] struct {
	cursorBase[T]
	spec *sourceSpec[T]
	r    reader[T]
}

func (c *sourceCursor[T]) MoveNext() bool {
	switch c.state {
	case stateCreated:
		c.r.open(c.spec.src)
		c.state = stateEnumerating
		fallthrough
	case stateEnumerating:
		if c.r.next() {
			c.current = c.r.value()
			return true
		}
		err := c.r.err
		c.r.close()
		c.end(stateExhausted, err)
	}
	return false
}

func (c *sourceCursor[T]) Close() {
	if c.state != stateCreated {
		c.r.close()
	}
	c.end(stateDisposed, nil)
}

// FromSlice queries a fixed-size slice. The slice is not copied.
func FromSlice[T any](items []T) Query[T] {
	return newSource("from_slice", source[T]{kind: kindSlice, items: items})
}

// Of queries the given values.
func Of[T any](items ...T) Query[T] {
	return FromSlice(items)
}

// FromList queries a growable List. Modifying the list while a cursor is
// live makes that cursor fail with COLLECTION_MODIFIED.
func FromList[T any](l *List[T]) Query[T] {
	mustFunc(l == nil, "list")
	return newSource("from_list", source[T]{kind: kindList, list: l})
}

// From queries an arbitrary sequence. Sequences that also implement Indexed
// get the O(1) fast paths of Count, ElementAt and Last.
func From[T any](s Sequence[T]) Query[T] {
	return wrap(mustSeq(s, "source"))
}

// Empty returns an empty query.
func Empty[T any]() Query[T] {
	return newSource("empty", source[T]{kind: kindSlice})
}

// Range returns count consecutive integers starting at start.
func Range(start, count int) Query[int] {
	mustCount(count, "count")
	if count > 0 && start > math.MaxInt-count+1 {
		panic(errors.ArgumentOutOfRange("count", count))
	}
	return newSource("range", source[int]{kind: kindIndexed, idx: rangeIndex{start: start, count: count}})
}

// Repeat returns v count times.
func Repeat[T any](v T, count int) Query[T] {
	mustCount(count, "count")
	return newSource("repeat", source[T]{kind: kindIndexed, idx: repeatIndex[T]{v: v, count: count}})
}

// FromSeq adapts a push iterator. The iterator runs as a coroutine that is
// stopped when the cursor finishes or is closed.
func FromSeq[T any](seq iter.Seq[T]) Query[T] {
	mustFunc(seq == nil, "seq")
	return newLazy("from_seq", func() stepper[T] {
		next, stop := iter.Pull(seq)
		return &pullStep[T]{next: next, stop: stop}
	})
}

type pullStep[T any] struct {
	next func() (T, bool)
	stop func()
}

func (s *pullStep[T]) step() (T, bool) { return s.next() }
func (s *pullStep[T]) err() error      { return nil }
func (s *pullStep[T]) close()          { s.stop() }

// Puller is a pull iterator that can fail, such as a stream from a remote
// provider. Next returns (zero, false, nil) when exhausted.
type Puller[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// FromPuller queries the pullers produced by open, one per enumeration.
// A Next error ends the enumeration and is reported by Err; Close errors are
// logged.
func FromPuller[T any](ctx context.Context, open func(ctx context.Context) Puller[T]) Query[T] {
	mustFunc(open == nil, "open")
	return newLazy("from_puller", func() stepper[T] {
		return &pullerStep[T]{ctx: ctx, p: open(ctx)}
	})
}

type pullerStep[T any] struct {
	ctx context.Context
	p   Puller[T]
	e   error
}

func (s *pullerStep[T]) step() (T, bool) {
	v, ok, err := s.p.Next(s.ctx)
	if err != nil {
		s.e = err
		return v, false
	}
	return v, ok
}

func (s *pullerStep[T]) err() error { return s.e }

func (s *pullerStep[T]) close() {
	if s.p == nil {
		return
	}
	if err := s.p.Close(); err != nil {
		opts().Logger.Warn("failed to close puller", logger.ErrorFields("from_puller", err))
	}
	s.p = nil
}

type sliceIndex[T any] []T

func (s sliceIndex[T]) Len() int   { return len(s) }
func (s sliceIndex[T]) At(i int) T { return s[i] }

type rangeIndex struct {
	start, count int
}

func (r rangeIndex) Len() int     { return r.count }
func (r rangeIndex) At(i int) int { return r.start + i }

type repeatIndex[T any] struct {
	v     T
	count int
}

func (r repeatIndex[T]) Len() int { return r.count }
func (r repeatIndex[T]) At(int) T { return r.v }

type mappedIndex[S, T any] struct {
	src Indexed[S]
	sel func(S) T
}

func (m mappedIndex[S, T]) Len() int   { return m.src.Len() }
func (m mappedIndex[S, T]) At(i int) T { return m.sel(m.src.At(i)) }
