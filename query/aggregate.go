package query

import (
	"cmp"

	"github.com/ccoveille/go-safecast/v2"
	"github.com/shopspring/decimal"

	"github.com/kbukum/seqkit/errors"
)

// Count returns the number of elements. Sources of known size are not
// enumerated. More than math.MaxInt32 elements fail with OVERFLOW.
func Count[T any](src Sequence[T]) (int, error) {
	s := mustSeq(src, "source")
	in := sourceOf(s)
	if ix, ok := in.indexed(); ok {
		n, err := safecast.Convert[int32](ix.Len())
		if err != nil {
			return 0, fail("count", errors.Overflow("count").WithCause(err))
		}
		return int(n), nil
	}
	n, err := count[int32]("count", in, nil)
	return int(n), err
}

// CountMatch returns the number of elements satisfying pred.
func CountMatch[T any](src Sequence[T], pred func(T) bool) (int, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	n, err := count[int32]("count", sourceOf(s), pred)
	return int(n), err
}

// LongCount is Count with a 64-bit counter.
func LongCount[T any](src Sequence[T]) (int64, error) {
	s := mustSeq(src, "source")
	in := sourceOf(s)
	if ix, ok := in.indexed(); ok {
		return int64(ix.Len()), nil
	}
	return count[int64]("long_count", in, nil)
}

// LongCountMatch is CountMatch with a 64-bit counter.
func LongCountMatch[T any](src Sequence[T], pred func(T) bool) (int64, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	return count[int64]("long_count", sourceOf(s), pred)
}

func count[C int32 | int64, T any](op string, src source[T], pred func(T) bool) (C, error) {
	var n C
	overflow := false
	err := each(src, func(x T) bool {
		if pred != nil && !pred(x) {
			return true
		}
		var ok bool
		n, ok = checkedAdd(n, 1)
		overflow = !ok
		return ok
	})
	if overflow {
		err = errors.Overflow(op)
	}
	if err != nil {
		return 0, fail(op, err)
	}
	return n, nil
}

// Sum adds the elements. Integer sums fail with OVERFLOW when they leave
// T's range; float sums follow IEEE semantics. An empty source sums to 0.
func Sum[T Number](src Sequence[T]) (T, error) {
	s := mustSeq(src, "source")
	var sum T
	overflow := false
	err := each(sourceOf(s), func(x T) bool {
		var ok bool
		sum, ok = checkedAdd(sum, x)
		overflow = !ok
		return ok
	})
	if overflow {
		err = errors.Overflow("sum")
	}
	if err != nil {
		var zero T
		return zero, fail("sum", err)
	}
	return sum, nil
}

// SumNullable adds the non-nil elements; nil elements are skipped.
func SumNullable[T Number](src Sequence[*T]) (T, error) {
	return Sum[T](Select(Where[*T](src, notNil[T]), deref[T]))
}

// SumDecimal adds decimal elements exactly.
func SumDecimal(src Sequence[decimal.Decimal]) (decimal.Decimal, error) {
	s := mustSeq(src, "source")
	sum := decimal.Zero
	err := each(sourceOf(s), func(x decimal.Decimal) bool {
		sum = sum.Add(x)
		return true
	})
	if err != nil {
		return decimal.Zero, fail("sum", err)
	}
	return sum, nil
}

// Average returns the arithmetic mean. Integer elements are summed in a
// checked 64-bit accumulator. An empty source fails with NO_ELEMENTS.
func Average[T Number](src Sequence[T]) (float64, error) {
	s := mustSeq(src, "source")
	avg, n, err := average(sourceOf(s))
	if err != nil {
		return 0, fail("average", err)
	}
	if n == 0 {
		return 0, fail("average", errors.NoElements())
	}
	return avg, nil
}

// AverageNullable averages the non-nil elements and returns nil when there
// are none.
func AverageNullable[T Number](src Sequence[*T]) (*float64, error) {
	s := mustSeq(src, "source")
	q := Select(Where[*T](s, notNil[T]), deref[T])
	avg, n, err := average(sourceOf(unwrap[T](q)))
	if err != nil {
		return nil, fail("average", err)
	}
	if n == 0 {
		return nil, nil
	}
	return &avg, nil
}

func average[T Number](src source[T]) (float64, int64, error) {
	var n int64
	if isFloat[T]() {
		var sum float64
		err := each(src, func(x T) bool {
			sum += float64(x)
			n++
			return true
		})
		if err != nil || n == 0 {
			return 0, n, err
		}
		return sum / float64(n), n, nil
	}

	var sum int64
	var convErr error
	unsigned := isUnsigned[T]()
	err := each(src, func(x T) bool {
		v, err := toInt64(x, unsigned)
		if err != nil {
			convErr = errors.Overflow("average").WithCause(err)
			return false
		}
		var ok bool
		if sum, ok = checkedAdd(sum, v); !ok {
			convErr = errors.Overflow("average")
			return false
		}
		n++
		return true
	})
	if convErr != nil {
		err = convErr
	}
	if err != nil || n == 0 {
		return 0, n, err
	}
	return float64(sum) / float64(n), n, nil
}

// AverageDecimal returns the mean of decimal elements.
func AverageDecimal(src Sequence[decimal.Decimal]) (decimal.Decimal, error) {
	s := mustSeq(src, "source")
	sum := decimal.Zero
	var n int64
	err := each(sourceOf(s), func(x decimal.Decimal) bool {
		sum = sum.Add(x)
		n++
		return true
	})
	if err != nil {
		return decimal.Zero, fail("average", err)
	}
	if n == 0 {
		return decimal.Zero, fail("average", errors.NoElements())
	}
	return sum.Div(decimal.NewFromInt(n)), nil
}

// Min returns the smallest element. A NaN element is returned as soon as it
// is seen. An empty source fails with NO_ELEMENTS.
func Min[T cmp.Ordered](src Sequence[T]) (T, error) {
	s := mustSeq(src, "source")
	v, ok, err := minOf(sourceOf(s))
	return extremum("min", v, ok, err)
}

// Max returns the largest element. NaN is returned only when every element
// is NaN. An empty source fails with NO_ELEMENTS.
func Max[T cmp.Ordered](src Sequence[T]) (T, error) {
	s := mustSeq(src, "source")
	v, ok, err := maxOf(sourceOf(s))
	return extremum("max", v, ok, err)
}

// MinNullable is Min over the non-nil elements; it returns nil when there are none.
func MinNullable[T cmp.Ordered](src Sequence[*T]) (*T, error) {
	s := mustSeq(src, "source")
	v, ok, err := minOf(sourceOf(unwrap[T](Select(Where[*T](s, notNil[T]), deref[T]))))
	return nullableExtremum("min", v, ok, err)
}

// MaxNullable is Max over the non-nil elements; it returns nil when there are none.
func MaxNullable[T cmp.Ordered](src Sequence[*T]) (*T, error) {
	s := mustSeq(src, "source")
	v, ok, err := maxOf(sourceOf(unwrap[T](Select(Where[*T](s, notNil[T]), deref[T]))))
	return nullableExtremum("max", v, ok, err)
}

// MinFunc returns the first element no other element orders before.
func MinFunc[T any](src Sequence[T], compare func(a, b T) int) (T, error) {
	s := mustSeq(src, "source")
	mustFunc(compare == nil, "comparer")
	v, ok, err := bestOf(sourceOf(s), func(x, best T) bool { return compare(x, best) < 0 })
	return extremum("min", v, ok, err)
}

// MaxFunc returns the first element no other element orders after.
func MaxFunc[T any](src Sequence[T], compare func(a, b T) int) (T, error) {
	s := mustSeq(src, "source")
	mustFunc(compare == nil, "comparer")
	v, ok, err := bestOf(sourceOf(s), func(x, best T) bool { return compare(x, best) > 0 })
	return extremum("max", v, ok, err)
}

func minOf[T cmp.Ordered](src source[T]) (T, bool, error) {
	var v T
	seen := false
	err := each(src, func(x T) bool {
		if !seen {
			v, seen = x, true
			return !isNaN(x)
		}
		if isNaN(x) {
			v = x
			return false
		}
		if x < v {
			v = x
		}
		return true
	})
	return v, seen, err
}

func maxOf[T cmp.Ordered](src source[T]) (T, bool, error) {
	var v T
	seen := false
	err := each(src, func(x T) bool {
		if !seen || isNaN(v) || x > v {
			v, seen = x, true
		}
		return true
	})
	return v, seen, err
}

func bestOf[T any](src source[T], better func(x, best T) bool) (T, bool, error) {
	var v T
	seen := false
	err := each(src, func(x T) bool {
		if !seen || better(x, v) {
			v, seen = x, true
		}
		return true
	})
	return v, seen, err
}

func extremum[T any](op string, v T, ok bool, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, fail(op, err)
	}
	if !ok {
		return zero, fail(op, errors.NoElements())
	}
	return v, nil
}

func nullableExtremum[T any](op string, v T, ok bool, err error) (*T, error) {
	if err != nil {
		return nil, fail(op, err)
	}
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func notNil[T any](p *T) bool { return p != nil }
func deref[T any](p *T) T     { return *p }

// Aggregate folds the elements left to right, starting from the first. An
// empty source fails with NO_ELEMENTS.
func Aggregate[T any](src Sequence[T], fn func(acc, x T) T) (T, error) {
	s := mustSeq(src, "source")
	mustFunc(fn == nil, "func")
	var acc T
	seen := false
	err := each(sourceOf(s), func(x T) bool {
		if seen {
			acc = fn(acc, x)
		} else {
			acc, seen = x, true
		}
		return true
	})
	return extremum("aggregate", acc, seen, err)
}

// AggregateSeed folds the elements left to right starting from seed.
func AggregateSeed[T, A any](src Sequence[T], seed A, fn func(acc A, x T) A) (A, error) {
	s := mustSeq(src, "source")
	mustFunc(fn == nil, "func")
	acc := seed
	err := each(sourceOf(s), func(x T) bool {
		acc = fn(acc, x)
		return true
	})
	if err != nil {
		var zero A
		return zero, fail("aggregate", err)
	}
	return acc, nil
}

// AggregateResult is AggregateSeed followed by result.
func AggregateResult[T, A, R any](src Sequence[T], seed A, fn func(acc A, x T) A, result func(A) R) (R, error) {
	mustFunc(result == nil, "resultSelector")
	acc, err := AggregateSeed(src, seed, fn)
	if err != nil {
		var zero R
		return zero, err
	}
	return result(acc), nil
}

// Any reports whether src has at least one element.
func Any[T any](src Sequence[T]) (bool, error) {
	s := mustSeq(src, "source")
	in := sourceOf(s)
	if ix, ok := in.indexed(); ok {
		return ix.Len() > 0, nil
	}
	found := false
	err := each(in, func(T) bool {
		found = true
		return false
	})
	if err != nil {
		return false, fail("any", err)
	}
	return found, nil
}

// AnyMatch reports whether some element satisfies pred. It stops at the first match.
func AnyMatch[T any](src Sequence[T], pred func(T) bool) (bool, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	found := false
	err := each(sourceOf(s), func(x T) bool {
		found = pred(x)
		return !found
	})
	if err != nil {
		return false, fail("any", err)
	}
	return found, nil
}

// All reports whether every element satisfies pred. It stops at the first
// violation; an empty source satisfies any predicate.
func All[T any](src Sequence[T], pred func(T) bool) (bool, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	ok := true
	err := each(sourceOf(s), func(x T) bool {
		ok = pred(x)
		return ok
	})
	if err != nil {
		return false, fail("all", err)
	}
	return ok, nil
}
