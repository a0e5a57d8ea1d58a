package query

type setOp uint8

const (
	opDistinct setOp = iota
	opUnion
	opIntersect
	opExcept
)

var setOpNames = [...]string{"distinct", "union", "intersect", "except"}

// setStep streams first (then second, for union) through one key set.
// Intersect and except preload the set with second.
type setStep[T any] struct {
	op     setOp
	first  source[T]
	second source[T]
	set    keyIndex[T]
	r      reader[T]
	phase  int
	e      error
}

func (s *setStep[T]) preload() {
	s.e = each(s.second, func(x T) bool {
		addKey(s.set, x)
		return true
	})
}

func (s *setStep[T]) step() (T, bool) {
	var zero T
	for s.e == nil {
		if !s.r.next() {
			if s.e = s.r.err; s.e != nil {
				break
			}
			if s.op != opUnion || s.phase == 1 {
				break
			}
			s.r.close()
			s.r = reader[T]{}
			s.r.open(s.second)
			s.phase = 1
			continue
		}
		x := s.r.value()
		switch s.op {
		case opIntersect:
			if s.set.remove(x) {
				return x, true
			}
		default:
			if addKey(s.set, x) {
				return x, true
			}
		}
	}
	return zero, false
}

func (s *setStep[T]) err() error { return s.e }
func (s *setStep[T]) close()     { s.r.close() }

func setQuery[T any](op setOp, first, second Sequence[T], index func() keyIndex[T]) Query[T] {
	f := mustSeq(first, "first")
	in := sourceOf(f)
	var other source[T]
	if op != opDistinct {
		other = sourceOf(mustSeq(second, "second"))
	}
	return newLazy(setOpNames[op], func() stepper[T] {
		s := &setStep[T]{op: op, first: in, second: other, set: index()}
		if op == opIntersect || op == opExcept {
			s.preload()
		}
		if s.e == nil {
			s.r.open(in)
		}
		return s
	})
}

func hashed[T any](cmp EqualityComparer[T]) func() keyIndex[T] {
	mustFunc(cmp == nil, "comparer")
	return func() keyIndex[T] { return newHashIndex(cmp) }
}

// Distinct yields each element the first time it is seen.
func Distinct[T comparable](src Sequence[T]) Query[T] {
	return setQuery(opDistinct, src, nil, newMapIndex[T])
}

// DistinctFunc is Distinct with a custom comparer.
func DistinctFunc[T any](src Sequence[T], cmp EqualityComparer[T]) Query[T] {
	return setQuery(opDistinct, src, nil, hashed(cmp))
}

// Union yields the distinct elements of first followed by those of second
// not already yielded.
func Union[T comparable](first, second Sequence[T]) Query[T] {
	return setQuery(opUnion, first, second, newMapIndex[T])
}

// UnionFunc is Union with a custom comparer.
func UnionFunc[T any](first, second Sequence[T], cmp EqualityComparer[T]) Query[T] {
	return setQuery(opUnion, first, second, hashed(cmp))
}

// Intersect yields the elements of first that occur in second, each at most once.
func Intersect[T comparable](first, second Sequence[T]) Query[T] {
	return setQuery(opIntersect, first, second, newMapIndex[T])
}

// IntersectFunc is Intersect with a custom comparer.
func IntersectFunc[T any](first, second Sequence[T], cmp EqualityComparer[T]) Query[T] {
	return setQuery(opIntersect, first, second, hashed(cmp))
}

// Except yields the distinct elements of first that do not occur in second.
func Except[T comparable](first, second Sequence[T]) Query[T] {
	return setQuery(opExcept, first, second, newMapIndex[T])
}

// ExceptFunc is Except with a custom comparer.
func ExceptFunc[T any](first, second Sequence[T], cmp EqualityComparer[T]) Query[T] {
	return setQuery(opExcept, first, second, hashed(cmp))
}

// Contains reports whether v occurs in src.
func Contains[T comparable](src Sequence[T], v T) (bool, error) {
	return AnyMatch(src, func(x T) bool { return x == v })
}

// ContainsFunc reports whether an element equal to v under cmp occurs in src.
func ContainsFunc[T any](src Sequence[T], v T, cmp EqualityComparer[T]) (bool, error) {
	mustFunc(cmp == nil, "comparer")
	return AnyMatch(src, func(x T) bool { return cmp.Equal(x, v) })
}

func sequenceEqual[T any](first, second Sequence[T], eq func(a, b T) bool) (bool, error) {
	a := sourceOf(mustSeq(first, "first"))
	b := sourceOf(mustSeq(second, "second"))
	if ia, ok := a.indexed(); ok {
		if ib, ok := b.indexed(); ok && ia.Len() != ib.Len() {
			return false, nil
		}
	}

	var ra, rb reader[T]
	ra.open(a)
	defer ra.close()
	rb.open(b)
	defer rb.close()
	for {
		na, nb := ra.next(), rb.next()
		if ra.err != nil {
			return false, fail("sequence_equal", ra.err)
		}
		if rb.err != nil {
			return false, fail("sequence_equal", rb.err)
		}
		if na != nb {
			return false, nil
		}
		if !na {
			return true, nil
		}
		if !eq(ra.value(), rb.value()) {
			return false, nil
		}
	}
}

// SequenceEqual reports whether both sequences hold equal elements in the same order.
func SequenceEqual[T comparable](first, second Sequence[T]) (bool, error) {
	return sequenceEqual(first, second, func(a, b T) bool { return a == b })
}

// SequenceEqualFunc is SequenceEqual with a custom comparer.
func SequenceEqualFunc[T any](first, second Sequence[T], cmp EqualityComparer[T]) (bool, error) {
	mustFunc(cmp == nil, "comparer")
	return sequenceEqual(first, second, cmp.Equal)
}
