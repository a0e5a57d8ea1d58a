package query

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kbukum/seqkit/errors"
)

func ptr[T any](v T) *T { return &v }

func TestCount(t *testing.T) {
	n, err := Count(Range(0, 10))
	require.NoError(t, err)
	require.Equal(t, 10, n)

	n, err = Count(Where(Range(0, 10), isEven))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	n, err = CountMatch(Range(0, 10), func(x int) bool { return x > 6 })
	require.NoError(t, err)
	require.Equal(t, 3, n)

	long, err := LongCount(From[int](newProbe(1, 2, 3)))
	require.NoError(t, err)
	require.EqualValues(t, 3, long)

	long, err = LongCountMatch(Range(0, 10), isEven)
	require.NoError(t, err)
	require.EqualValues(t, 5, long)
}

func TestLongCount_KeepsSixtyFourBitCounter(t *testing.T) {
	var n int64
	n, err := count[int64]("long_count", sourceOf[int](From[int](newProbe(1, 2, 3, 4))), isEven)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	var m int32
	m, err = count[int32]("count", sourceOf[int](Range(0, 5)), nil)
	require.NoError(t, err)
	require.Equal(t, int32(5), m)
}

func TestCount_IndexedSourceIsNotEnumerated(t *testing.T) {
	rec := observe(t)
	n, err := Count(Select(Range(0, 1<<20), func(x int) string { return "" }))
	require.NoError(t, err)
	require.Equal(t, 1<<20, n)
	require.Empty(t, rec.started)
}

func TestCount_Overflow(t *testing.T) {
	_, err := Count(Repeat(0, math.MaxInt32+1))
	requireCode(t, err, errors.ErrCodeOverflow)

	n, err := LongCount(Repeat(0, math.MaxInt32+1))
	require.NoError(t, err)
	require.EqualValues(t, math.MaxInt32+1, n)
}

func TestSum(t *testing.T) {
	s, err := Sum(Of(1, 2, 3, 4))
	require.NoError(t, err)
	require.Equal(t, 10, s)

	empty, err := Sum(Empty[float64]())
	require.NoError(t, err)
	require.Zero(t, empty)

	_, err = Sum(Of[int8](100, 27, 1))
	requireCode(t, err, errors.ErrCodeOverflow)

	_, err = Sum(Of[int64](math.MinInt64, -1))
	requireCode(t, err, errors.ErrCodeOverflow)

	_, err = Sum(Of[uint8](200, 56))
	requireCode(t, err, errors.ErrCodeOverflow)

	inf, err := Sum(Of(math.MaxFloat64, math.MaxFloat64))
	require.NoError(t, err)
	require.True(t, math.IsInf(inf, 1))

	nan, err := Sum(Of(1, math.NaN()))
	require.NoError(t, err)
	require.True(t, math.IsNaN(nan))
}

func TestSum_MatchesLoopWithinRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xs := rapid.SliceOf(rapid.Int16()).Draw(t, "xs")
		var want int64
		for _, x := range xs {
			want += int64(x)
		}

		got, err := Sum(FromSlice(xs))
		if want < math.MinInt16 || want > math.MaxInt16 {
			// Partial sums can overflow even when the total fits; only the
			// total is checked here.
			return
		}
		if err != nil {
			require.True(t, errors.HasCode(err, errors.ErrCodeOverflow))
			return
		}
		require.EqualValues(t, want, got)

		wide, err := Sum(Select(FromSlice(xs), func(x int16) int64 { return int64(x) }))
		require.NoError(t, err)
		require.Equal(t, want, wide)
	})
}

func TestSumNullable_SumDecimal(t *testing.T) {
	s, err := SumNullable(Of(ptr(1.5), nil, ptr(2.5)))
	require.NoError(t, err)
	require.InDelta(t, 4.0, s, 1e-9)

	zero, err := SumNullable(Of[*int](nil, nil))
	require.NoError(t, err)
	require.Zero(t, zero)

	d, err := SumDecimal(Of(decimal.RequireFromString("0.1"), decimal.RequireFromString("0.2")))
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.RequireFromString("0.3")), "got %s", d)
}

func TestAverage(t *testing.T) {
	avg, err := Average(Of(1, 2, 3, 4))
	require.NoError(t, err)
	require.InDelta(t, 2.5, avg, 1e-9)

	avg, err = Average(Of(1.0, 2.0))
	require.NoError(t, err)
	require.InDelta(t, 1.5, avg, 1e-9)

	_, err = Average(Empty[int]())
	requireCode(t, err, errors.ErrCodeNoElements)

	// Elements of a narrow type are summed in a wide accumulator.
	avg, err = Average(Of[int8](127, 127))
	require.NoError(t, err)
	require.InDelta(t, 127.0, avg, 1e-9)

	_, err = Average(Of[int64](math.MaxInt64, 1))
	requireCode(t, err, errors.ErrCodeOverflow)

	_, err = Average(Of[uint64](math.MaxUint64))
	requireCode(t, err, errors.ErrCodeOverflow)
}

func TestAverageNullable_AverageDecimal(t *testing.T) {
	avg, err := AverageNullable(Of(ptr(2), nil, ptr(4)))
	require.NoError(t, err)
	require.NotNil(t, avg)
	require.InDelta(t, 3.0, *avg, 1e-9)

	none, err := AverageNullable(Of[*int](nil))
	require.NoError(t, err)
	require.Nil(t, none)

	d, err := AverageDecimal(Of(decimal.NewFromInt(1), decimal.NewFromInt(2)))
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.RequireFromString("1.5")), "got %s", d)

	_, err = AverageDecimal(Empty[decimal.Decimal]())
	requireCode(t, err, errors.ErrCodeNoElements)
}

func TestMinMax(t *testing.T) {
	lo, err := Min(Of(3, 1, 2))
	require.NoError(t, err)
	require.Equal(t, 1, lo)

	hi, err := Max(Of("pear", "apple", "zucchini"))
	require.NoError(t, err)
	require.Equal(t, "zucchini", hi)

	_, err = Min(Empty[int]())
	requireCode(t, err, errors.ErrCodeNoElements)
	_, err = Max(Empty[int]())
	requireCode(t, err, errors.ErrCodeNoElements)
}

func TestMinMax_NaN(t *testing.T) {
	nan := math.NaN()

	lo, err := Min(Of(1.0, nan, -5.0))
	require.NoError(t, err)
	require.True(t, math.IsNaN(lo), "min returns NaN as soon as one is seen")

	p := newProbe(1.0, nan, -5.0)
	_, err = Min(From[float64](p))
	require.NoError(t, err)
	_, pulls, _ := p.stats()
	require.Equal(t, 2, pulls, "min stops at the first NaN")

	hi, err := Max(Of(nan, 1.0, nan, 3.0))
	require.NoError(t, err)
	require.Equal(t, 3.0, hi)

	hi, err = Max(Of(nan, nan))
	require.NoError(t, err)
	require.True(t, math.IsNaN(hi), "max is NaN only when every element is")
}

func TestMinMaxNullable(t *testing.T) {
	lo, err := MinNullable(Of(ptr(5), nil, ptr(2)))
	require.NoError(t, err)
	require.Equal(t, 2, *lo)

	hi, err := MaxNullable(Of(ptr(5), nil, ptr(2)))
	require.NoError(t, err)
	require.Equal(t, 5, *hi)

	none, err := MinNullable(Of[*int](nil, nil))
	require.NoError(t, err)
	require.Nil(t, none)

	none, err = MaxNullable(Empty[*int]())
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestMinFunc_MaxFunc(t *testing.T) {
	byLen := func(a, b string) int { return len(a) - len(b) }
	words := Of("ccc", "a", "bb", "d", "eee")

	short, err := MinFunc(words, byLen)
	require.NoError(t, err)
	require.Equal(t, "a", short, "first of the tied minima")

	long, err := MaxFunc(words, byLen)
	require.NoError(t, err)
	require.Equal(t, "ccc", long, "first of the tied maxima")

	_, err = MinFunc(Empty[string](), byLen)
	requireCode(t, err, errors.ErrCodeNoElements)
}

func TestAggregate(t *testing.T) {
	product, err := Aggregate(Range(1, 5), func(acc, x int) int { return acc * x })
	require.NoError(t, err)
	require.Equal(t, 120, product)

	_, err = Aggregate(Empty[int](), func(acc, x int) int { return acc + x })
	requireCode(t, err, errors.ErrCodeNoElements)

	joined, err := AggregateSeed(Of("a", "b", "c"), ">", func(acc string, x string) string { return acc + x })
	require.NoError(t, err)
	require.Equal(t, ">abc", joined)

	seed, err := AggregateSeed(Empty[int](), 42, func(acc, x int) int { return acc + x })
	require.NoError(t, err)
	require.Equal(t, 42, seed)

	n, err := AggregateResult(Of("a", "bb"), 0, func(acc int, s string) int { return acc + len(s) },
		func(total int) string { return string(rune('0' + total)) })
	require.NoError(t, err)
	require.Equal(t, "3", n)
}

func TestAny_All(t *testing.T) {
	ok, err := Any(Empty[int]())
	require.NoError(t, err)
	require.False(t, ok)

	p := newProbe(1, 2, 3)
	ok, err = Any(From[int](p))
	require.NoError(t, err)
	require.True(t, ok)
	_, pulls, closes := p.stats()
	require.Equal(t, 1, pulls)
	require.Equal(t, 1, closes)

	ok, err = AnyMatch(Of(1, 3, 4), isEven)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = All(Empty[int](), isEven)
	require.NoError(t, err)
	require.True(t, ok, "all holds vacuously on an empty source")

	ok, err = All(Of(2, 4, 5, 6), isEven)
	require.NoError(t, err)
	require.False(t, ok)

	failing := newProbe(2)
	failing.fail = errSource
	_, err = All(From[int](failing), isEven)
	require.ErrorIs(t, err, errSource)
}
