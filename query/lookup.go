package query

import (
	"github.com/kbukum/seqkit/logger"
)

// buildLookup makes one pass over src and groups elem(x) by key(x).
func buildLookup[T, K, E any](op string, src source[T], key func(T) K, elem func(T) E, index keyIndex[K]) (*Lookup[K, E], error) {
	l := newLookup[K, E](index)
	var r reader[T]
	r.open(src)
	n := 0
	for r.next() {
		x := r.value()
		l.add(key(x), elem(x))
		n++
	}
	err := r.err
	r.close()
	if err != nil {
		return nil, err
	}
	traceBuild("lookup built", logger.Fields(
		logger.FieldOperation, op,
		logger.FieldKeys, l.Len(),
		logger.FieldElements, n,
	))
	return l, nil
}

func identity[T any](x T) T { return x }

// groupStep builds the lookup on the first step and then yields its groups.
type groupStep[T, K, E any] struct {
	op    string
	src   source[T]
	key   func(T) K
	elem  func(T) E
	index func() keyIndex[K]
	l     *Lookup[K, E]
	i     int
	e     error
}

func (s *groupStep[T, K, E]) step() (*Grouping[K, E], bool) {
	if s.l == nil {
		if s.e != nil {
			return nil, false
		}
		s.l, s.e = buildLookup(s.op, s.src, s.key, s.elem, s.index())
		if s.e != nil {
			return nil, false
		}
	}
	if s.i >= s.l.Len() {
		return nil, false
	}
	g := s.l.At(s.i)
	s.i++
	return g, true
}

func (s *groupStep[T, K, E]) err() error { return s.e }
func (s *groupStep[T, K, E]) close()     {}

func groupBy[T, K, E any](op string, src Sequence[T], key func(T) K, elem func(T) E, index func() keyIndex[K]) Query[*Grouping[K, E]] {
	s := mustSeq(src, "source")
	mustFunc(key == nil, "keySelector")
	mustFunc(elem == nil, "elementSelector")
	in := sourceOf(s)
	return newLazy(op, func() stepper[*Grouping[K, E]] {
		return &groupStep[T, K, E]{op: op, src: in, key: key, elem: elem, index: index}
	})
}

// GroupBy groups elements by key. Groups appear in first-seen key order and
// keep source order within each group. The source is read in full on the
// first MoveNext.
func GroupBy[T any, K comparable](src Sequence[T], key func(T) K) Query[*Grouping[K, T]] {
	return groupBy("group_by", src, key, identity[T], newMapIndex[K])
}

// GroupByElement groups elem(x) by key(x).
func GroupByElement[T any, K comparable, E any](src Sequence[T], key func(T) K, elem func(T) E) Query[*Grouping[K, E]] {
	return groupBy("group_by", src, key, elem, newMapIndex[K])
}

// GroupByFunc groups elements by key using cmp for key equality.
func GroupByFunc[T, K any](src Sequence[T], key func(T) K, cmp EqualityComparer[K]) Query[*Grouping[K, T]] {
	mustFunc(cmp == nil, "comparer")
	return groupBy("group_by", src, key, identity[T], func() keyIndex[K] { return newHashIndex(cmp) })
}

// GroupByElementFunc groups elem(x) by key(x) using cmp for key equality.
func GroupByElementFunc[T, K, E any](src Sequence[T], key func(T) K, elem func(T) E, cmp EqualityComparer[K]) Query[*Grouping[K, E]] {
	mustFunc(cmp == nil, "comparer")
	return groupBy("group_by", src, key, elem, func() keyIndex[K] { return newHashIndex(cmp) })
}

func toLookup[T, K, E any](src Sequence[T], key func(T) K, elem func(T) E, index keyIndex[K]) (*Lookup[K, E], error) {
	s := mustSeq(src, "source")
	mustFunc(key == nil, "keySelector")
	mustFunc(elem == nil, "elementSelector")
	l, err := buildLookup("to_lookup", sourceOf(s), key, elem, index)
	if err != nil {
		return nil, fail("to_lookup", err)
	}
	return l, nil
}

// ToLookup eagerly groups elements by key.
func ToLookup[T any, K comparable](src Sequence[T], key func(T) K) (*Lookup[K, T], error) {
	return toLookup(src, key, identity[T], newMapIndex[K]())
}

// ToLookupElement eagerly groups elem(x) by key(x).
func ToLookupElement[T any, K comparable, E any](src Sequence[T], key func(T) K, elem func(T) E) (*Lookup[K, E], error) {
	return toLookup(src, key, elem, newMapIndex[K]())
}

// ToLookupFunc eagerly groups elements by key using cmp for key equality.
func ToLookupFunc[T, K any](src Sequence[T], key func(T) K, cmp EqualityComparer[K]) (*Lookup[K, T], error) {
	mustFunc(cmp == nil, "comparer")
	return toLookup(src, key, identity[T], newHashIndex(cmp))
}
