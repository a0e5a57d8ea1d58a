package query

import (
	"cmp"
	"slices"

	"github.com/kbukum/seqkit/logger"
)

// keyColumn holds one sort key computed for every buffered element.
type keyColumn interface {
	compare(i, j int) int
}

type column[K any] struct {
	keys  []K
	order func(a, b K) int
}

func (c *column[K]) compare(i, j int) int { return c.order(c.keys[i], c.keys[j]) }

// sortKey is one link of an ordering chain.
type sortKey[T any] struct {
	build      func(items []T) keyColumn
	descending bool
}

func newSortKey[T, K any](key func(T) K, compare func(a, b K) int, descending bool) sortKey[T] {
	return sortKey[T]{
		build: func(items []T) keyColumn {
			keys := make([]K, len(items))
			for i, x := range items {
				keys[i] = key(x)
			}
			return &column[K]{keys: keys, order: compare}
		},
		descending: descending,
	}
}

// orderedSpec is the descriptor of an ordering chain.
type orderedSpec[T any] struct {
	claim
	src   source[T]
	keys  []sortKey[T]
	first lazyCursor[T]
	lazy  *lazySpec[T]
}

// OrderedQuery is a query sorted by one or more keys. Extend it with ThenBy.
type OrderedQuery[T any] struct {
	Query[T]
	spec *orderedSpec[T]
}

func newOrdered[T any](src source[T], keys []sortKey[T]) OrderedQuery[T] {
	spec := &orderedSpec[T]{src: src, keys: keys}
	spec.lazy = &lazySpec[T]{op: "order_by", open: spec.open}
	return OrderedQuery[T]{Query: wrap[T](spec), spec: spec}
}

func (s *orderedSpec[T]) Enumerate() Enumerator[T] {
	c := start("order_by", &s.claim, &s.first)
	c.spec = s.lazy
	return c
}

func (s *orderedSpec[T]) open() stepper[T] {
	return &orderedStep[T]{spec: s}
}

// sort buffers the source and returns it with the stable sort permutation.
func (s *orderedSpec[T]) sort() ([]T, []int, error) {
	buf, err := materialize("order_by", s.src)
	if err != nil {
		return nil, nil, err
	}
	cols := make([]keyColumn, len(s.keys))
	for k, key := range s.keys {
		cols[k] = key.build(buf)
	}
	perm := make([]int, len(buf))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		for k, col := range cols {
			var c int
			if s.keys[k].descending {
				c = col.compare(b, a)
			} else {
				c = col.compare(a, b)
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	traceBuild("ordered buffer sorted", logger.Fields(
		logger.FieldOperation, "order_by",
		logger.FieldElements, len(buf),
		logger.FieldSortKeys, len(cols),
	))
	return buf, perm, nil
}

type orderedStep[T any] struct {
	spec *orderedSpec[T]
	buf  []T
	perm []int
	i    int
	done bool
	e    error
}

func (s *orderedStep[T]) step() (T, bool) {
	var zero T
	if !s.done {
		s.buf, s.perm, s.e = s.spec.sort()
		s.done = true
	}
	if s.e != nil || s.i >= len(s.perm) {
		return zero, false
	}
	v := s.buf[s.perm[s.i]]
	s.i++
	return v, true
}

func (s *orderedStep[T]) err() error { return s.e }

func (s *orderedStep[T]) close() {
	s.buf, s.perm = nil, nil
}

func orderBy[T, K any](src Sequence[T], key func(T) K, compare func(a, b K) int, descending bool) OrderedQuery[T] {
	s := mustSeq(src, "source")
	mustFunc(key == nil, "keySelector")
	mustFunc(compare == nil, "comparer")
	return newOrdered(sourceOf(s), []sortKey[T]{newSortKey(key, compare, descending)})
}

func thenBy[T, K any](q OrderedQuery[T], key func(T) K, compare func(a, b K) int, descending bool) OrderedQuery[T] {
	mustFunc(q.spec == nil, "source")
	mustFunc(key == nil, "keySelector")
	mustFunc(compare == nil, "comparer")
	keys := make([]sortKey[T], len(q.spec.keys), len(q.spec.keys)+1)
	copy(keys, q.spec.keys)
	keys = append(keys, newSortKey(key, compare, descending))
	return newOrdered(q.spec.src, keys)
}

// OrderBy sorts elements by key in ascending natural order. The sort is
// stable and runs on the first MoveNext.
func OrderBy[T any, K cmp.Ordered](src Sequence[T], key func(T) K) OrderedQuery[T] {
	return orderBy(src, key, cmp.Compare[K], false)
}

// OrderByDescending sorts elements by key in descending natural order.
func OrderByDescending[T any, K cmp.Ordered](src Sequence[T], key func(T) K) OrderedQuery[T] {
	return orderBy(src, key, cmp.Compare[K], true)
}

// OrderByFunc sorts elements by key in ascending order of compare.
func OrderByFunc[T, K any](src Sequence[T], key func(T) K, compare func(a, b K) int) OrderedQuery[T] {
	return orderBy(src, key, compare, false)
}

// OrderByDescendingFunc sorts elements by key in descending order of compare.
func OrderByDescendingFunc[T, K any](src Sequence[T], key func(T) K, compare func(a, b K) int) OrderedQuery[T] {
	return orderBy(src, key, compare, true)
}

// ThenBy breaks ties of q by key in ascending natural order.
func ThenBy[T any, K cmp.Ordered](q OrderedQuery[T], key func(T) K) OrderedQuery[T] {
	return thenBy(q, key, cmp.Compare[K], false)
}

// ThenByDescending breaks ties of q by key in descending natural order.
func ThenByDescending[T any, K cmp.Ordered](q OrderedQuery[T], key func(T) K) OrderedQuery[T] {
	return thenBy(q, key, cmp.Compare[K], true)
}

// ThenByFunc breaks ties of q by key in ascending order of compare.
func ThenByFunc[T, K any](q OrderedQuery[T], key func(T) K, compare func(a, b K) int) OrderedQuery[T] {
	return thenBy(q, key, compare, false)
}

// ThenByDescendingFunc breaks ties of q by key in descending order of compare.
func ThenByDescendingFunc[T, K any](q OrderedQuery[T], key func(T) K, compare func(a, b K) int) OrderedQuery[T] {
	return thenBy(q, key, compare, true)
}
