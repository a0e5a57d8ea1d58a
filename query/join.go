package query

import "github.com/kbukum/seqkit/errors"

// joinStep builds a lookup over inner, then streams outer and probes it.
type joinStep[O, I, K, R any] struct {
	outerKey func(O) K
	result   func(O, I) R

	outer reader[O]
	l     *Lookup[K, I]
	cur   O
	group *Grouping[K, I]
	gi    int
	e     error
}

func (s *joinStep[O, I, K, R]) step() (R, bool) {
	var zero R
	if s.e != nil {
		return zero, false
	}
	for {
		if s.group != nil && s.gi < s.group.Len() {
			v := s.result(s.cur, s.group.At(s.gi))
			s.gi++
			return v, true
		}
		if !s.outer.next() {
			s.e = s.outer.err
			return zero, false
		}
		s.cur = s.outer.value()
		s.group, _ = s.l.Get(s.outerKey(s.cur))
		s.gi = 0
	}
}

func (s *joinStep[O, I, K, R]) err() error { return s.e }
func (s *joinStep[O, I, K, R]) close()     { s.outer.close() }

func join[O, I, K, R any](outer Sequence[O], inner Sequence[I], outerKey func(O) K, innerKey func(I) K, result func(O, I) R, index func() keyIndex[K]) Query[R] {
	oseq := mustSeq(outer, "outer")
	iseq := mustSeq(inner, "inner")
	mustFunc(outerKey == nil, "outerKeySelector")
	mustFunc(innerKey == nil, "innerKeySelector")
	mustFunc(result == nil, "resultSelector")
	out, in := sourceOf(oseq), sourceOf(iseq)
	return newLazy("join", func() stepper[R] {
		s := &joinStep[O, I, K, R]{outerKey: outerKey, result: result}
		s.l, s.e = buildLookup("join", in, innerKey, identity[I], index())
		if s.e == nil {
			s.outer.open(out)
		}
		return s
	})
}

// Join correlates outer and inner elements with equal keys and yields one
// result per matching pair, in outer order then inner order. Outer elements
// without a match produce nothing.
func Join[O, I any, K comparable, R any](outer Sequence[O], inner Sequence[I], outerKey func(O) K, innerKey func(I) K, result func(O, I) R) Query[R] {
	return join(outer, inner, outerKey, innerKey, result, newMapIndex[K])
}

// JoinFunc is Join with a custom key comparer.
func JoinFunc[O, I, K, R any](outer Sequence[O], inner Sequence[I], outerKey func(O) K, innerKey func(I) K, result func(O, I) R, cmp EqualityComparer[K]) Query[R] {
	mustFunc(cmp == nil, "comparer")
	return join(outer, inner, outerKey, innerKey, result, func() keyIndex[K] { return newHashIndex(cmp) })
}

type groupJoinStep[O, I, K, R any] struct {
	outerKey func(O) K
	result   func(O, Query[I]) R
	outer    reader[O]
	l        *Lookup[K, I]
	e        error
}

func (s *groupJoinStep[O, I, K, R]) step() (R, bool) {
	var zero R
	if s.e != nil {
		return zero, false
	}
	if !s.outer.next() {
		s.e = s.outer.err
		return zero, false
	}
	o := s.outer.value()
	return s.result(o, s.l.Values(s.outerKey(o))), true
}

func (s *groupJoinStep[O, I, K, R]) err() error { return s.e }
func (s *groupJoinStep[O, I, K, R]) close()     { s.outer.close() }

func groupJoin[O, I, K, R any](outer Sequence[O], inner Sequence[I], outerKey func(O) K, innerKey func(I) K, result func(O, Query[I]) R, index func() keyIndex[K]) Query[R] {
	oseq := mustSeq(outer, "outer")
	iseq := mustSeq(inner, "inner")
	mustFunc(outerKey == nil, "outerKeySelector")
	mustFunc(innerKey == nil, "innerKeySelector")
	mustFunc(result == nil, "resultSelector")
	out, in := sourceOf(oseq), sourceOf(iseq)
	return newLazy("group_join", func() stepper[R] {
		s := &groupJoinStep[O, I, K, R]{outerKey: outerKey, result: result}
		s.l, s.e = buildLookup("group_join", in, innerKey, identity[I], index())
		if s.e == nil {
			s.outer.open(out)
		}
		return s
	})
}

// GroupJoin yields exactly one result per outer element, paired with the
// (possibly empty) inner elements whose key matches.
func GroupJoin[O, I any, K comparable, R any](outer Sequence[O], inner Sequence[I], outerKey func(O) K, innerKey func(I) K, result func(O, Query[I]) R) Query[R] {
	return groupJoin(outer, inner, outerKey, innerKey, result, newMapIndex[K])
}

// GroupJoinFunc is GroupJoin with a custom key comparer.
func GroupJoinFunc[O, I, K, R any](outer Sequence[O], inner Sequence[I], outerKey func(O) K, innerKey func(I) K, result func(O, Query[I]) R, cmp EqualityComparer[K]) Query[R] {
	mustFunc(cmp == nil, "comparer")
	return groupJoin(outer, inner, outerKey, innerKey, result, func() keyIndex[K] { return newHashIndex(cmp) })
}

func toDictionary[T any, K comparable, V any](src Sequence[T], key func(T) K, val func(T) V, index keyIndex[K]) (map[K]V, error) {
	s := mustSeq(src, "source")
	mustFunc(key == nil, "keySelector")
	mustFunc(val == nil, "elementSelector")
	in := sourceOf(s)
	n := 0
	if ix, ok := in.indexed(); ok {
		n = ix.Len()
	}
	m := make(map[K]V, n)
	var dup *errors.AppError
	err := each(in, func(x T) bool {
		k := key(x)
		if !addKey(index, k) {
			dup = errors.DuplicateKey(k)
			return false
		}
		m[k] = val(x)
		return true
	})
	if dup != nil {
		err = dup
	}
	if err != nil {
		return nil, fail("to_dictionary", err)
	}
	return m, nil
}

// ToDictionary builds a map from key(x) to val(x). A repeated key fails with
// DUPLICATE_KEY.
func ToDictionary[T any, K comparable, V any](src Sequence[T], key func(T) K, val func(T) V) (map[K]V, error) {
	return toDictionary(src, key, val, newMapIndex[K]())
}

// ToDictionaryFunc is ToDictionary with keys compared by cmp; keys equal
// under cmp are duplicates even when == tells them apart.
func ToDictionaryFunc[T any, K comparable, V any](src Sequence[T], key func(T) K, val func(T) V, cmp EqualityComparer[K]) (map[K]V, error) {
	mustFunc(cmp == nil, "comparer")
	return toDictionary(src, key, val, newHashIndex(cmp))
}
