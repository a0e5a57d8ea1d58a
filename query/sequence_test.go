package query

import (
	stderrors "errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/seqkit/errors"
)

func TestQuery_EndToEnd(t *testing.T) {
	src := Of(1, 2, 3, 4, 5)

	got := collect(t, Select(src.Where(isEven), func(x int) int { return x * 10 }))
	require.Equal(t, []int{20, 40}, got)

	desc := collect[int](t, OrderByDescending(src, identity[int]))
	require.Equal(t, []int{5, 4, 3, 2, 1}, desc)

	groups := collect(t, GroupBy(Of(1, 2, 3, 4), func(x int) int { return x % 2 }))
	require.Len(t, groups, 2)
	require.Equal(t, 1, groups[0].Key())
	require.Equal(t, []int{1, 3}, groups[0].Values())
	require.Equal(t, 0, groups[1].Key())
	require.Equal(t, []int{2, 4}, groups[1].Values())
}

func TestQuery_DeferredUntilConsumed(t *testing.T) {
	src := From[int](trap[int]{t: t})
	other := From[int](trap[int]{t: t})

	// Building any pipeline must not touch the source.
	_ = Select(Where(src, isEven), func(x int) string { return "x" })
	_ = OrderBy(src, identity[int])
	_ = ThenByDescending(OrderBy(src, identity[int]), identity[int])
	_ = GroupBy(src, func(x int) int { return x })
	_ = Join(src, other, identity[int], identity[int], func(a, b int) int { return a + b })
	_ = GroupJoin(src, other, identity[int], identity[int], func(a int, _ Query[int]) int { return a })
	_ = Distinct(src)
	_ = Union(src, other)
	_ = Intersect(src, other)
	_ = Except(src, other)
	_ = Reverse(src)
	_ = Take(src, 3)
	_ = Skip(src, 3)
	_ = TakeWhile(src, isEven)
	_ = SkipWhile(src, isEven)
	_ = Concat(src, other)
	_ = Zip(src, other, func(a, b int) int { return a * b })
	_ = Chunk(src, 2)
	_ = SelectMany(src, func(int) Sequence[int] { return other })
	_ = DefaultIfEmpty(src, 0)
	_ = src.Append(1).Prepend(0)
}

func TestQuery_EnumerateTwiceIsIsolated(t *testing.T) {
	rec := observe(t)
	q := Of(1, 2, 3, 4, 5, 6).Where(isEven)

	a := q.Enumerate()
	b := q.Enumerate()
	defer a.Close()
	defer b.Close()

	require.True(t, a.MoveNext())
	require.Equal(t, 2, a.Current())
	require.True(t, a.MoveNext())
	require.Equal(t, 4, a.Current())

	// b starts from the beginning regardless of a's position.
	require.True(t, b.MoveNext())
	require.Equal(t, 2, b.Current())

	require.True(t, a.MoveNext())
	require.Equal(t, 6, a.Current())
	require.False(t, a.MoveNext())

	require.True(t, b.MoveNext())
	require.Equal(t, 4, b.Current())

	require.Equal(t, []string{"where", "where"}, rec.started)
	require.Equal(t, []bool{true, false}, rec.reused)
}

func TestQuery_ReusedAfterCompletion(t *testing.T) {
	q := Select(Of(1, 2, 3), func(x int) int { return x + 1 })
	for range 3 {
		require.Equal(t, []int{2, 3, 4}, collect[int](t, q))
	}
}

func TestCursor_Lifecycle(t *testing.T) {
	e := Take(Of(1, 2, 3), 2).Enumerate()

	require.True(t, e.MoveNext())
	require.True(t, e.MoveNext())
	require.Equal(t, 2, e.Current())
	require.False(t, e.MoveNext())
	require.Zero(t, e.Current(), "current is cleared once exhausted")
	require.False(t, e.MoveNext(), "exhausted is terminal")
	require.NoError(t, e.Err())

	e.Close()
	e.Close()
	require.False(t, e.MoveNext())
}

func TestCursor_CloseBeforeStartDoesNotOpenSource(t *testing.T) {
	p := newProbe(1, 2, 3)
	e := Select(From[int](p), func(x int) int { return x }).Enumerate()
	e.Close()
	require.False(t, e.MoveNext())

	enumerated, _, _ := p.stats()
	require.Zero(t, enumerated)
}

func TestCursor_ClosePropagatesUpstream(t *testing.T) {
	p := newProbe(1, 2, 3, 4)
	e := Where(Select(From[int](p), func(x int) int { return x * 2 }), func(x int) bool { return x > 2 }).Enumerate()

	require.True(t, e.MoveNext())
	require.Equal(t, 4, e.Current())
	e.Close()

	enumerated, pulls, closes := p.stats()
	require.Equal(t, 1, enumerated)
	require.Equal(t, 2, pulls)
	require.Equal(t, 1, closes)
}

func TestCursor_SourceErrorPropagates(t *testing.T) {
	rec := observe(t)
	p := newProbe(1, 2, 3)
	p.fail = errSource

	e := Where(From[int](p), isEven).Enumerate()
	require.True(t, e.MoveNext())
	require.False(t, e.MoveNext())
	require.ErrorIs(t, e.Err(), errSource)
	e.Close()

	_, err := ToSlice(Where(From[int](p), isEven))
	require.ErrorIs(t, err, errSource)
	require.Equal(t, []errors.ErrorCode{codeExternal}, rec.failed)

	_, _, closes := p.stats()
	require.Equal(t, 2, closes)
}

func TestQuery_ConcurrentEnumeration(t *testing.T) {
	q := Select(Where(Range(0, 1000), isEven), func(x int) int { return x / 2 })
	want := collect(t, Range(0, 500))

	var wg sync.WaitGroup
	results := make([][]int, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = ToSlice(q)
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, want, results[i])
	}
}

func TestQuery_AllRangeLoop(t *testing.T) {
	var got []int
	for v, err := range Of(1, 2, 3, 4).All() {
		require.NoError(t, err)
		if v == 3 {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []int{1, 2}, got)

	p := newProbe(7)
	p.fail = errSource
	var errs []error
	for _, err := range From[int](p).All() {
		errs = append(errs, err)
	}
	require.Len(t, errs, 2)
	require.NoError(t, errs[0])
	require.True(t, stderrors.Is(errs[1], errSource))
}

func TestQuery_MethodChain(t *testing.T) {
	q := Range(1, 10).
		Where(isEven).
		Skip(1).
		Take(3).
		Reverse().
		Append(0).
		Prepend(100)
	require.Equal(t, []int{100, 8, 6, 4, 0}, collect[int](t, q))

	n, err := q.Count()
	require.NoError(t, err)
	require.Equal(t, 5, n)

	first, err := q.First()
	require.NoError(t, err)
	require.Equal(t, 100, first)
}

func TestQuery_NilArgumentsPanic(t *testing.T) {
	var zero Query[int]
	tests := []struct {
		name string
		code errors.ErrorCode
		fn   func()
	}{
		{"enumerate zero query", errors.ErrCodeNullArgument, func() { zero.Enumerate() }},
		{"where nil source", errors.ErrCodeNullArgument, func() { Where[int](nil, isEven) }},
		{"where zero query", errors.ErrCodeNullArgument, func() { Where(zero, isEven) }},
		{"where nil predicate", errors.ErrCodeNullArgument, func() { Where(Of(1), nil) }},
		{"select nil selector", errors.ErrCodeNullArgument, func() { Select[int, int](Of(1), nil) }},
		{"order nil key", errors.ErrCodeNullArgument, func() { OrderBy[int, int](Of(1), nil) }},
		{"join nil inner", errors.ErrCodeNullArgument, func() {
			Join[int, int](Of(1), nil, identity[int], identity[int], func(a, b int) int { return a })
		}},
		{"to_slice nil", errors.ErrCodeNullArgument, func() { _, _ = ToSlice[int](nil) }},
		{"range negative", errors.ErrCodeArgumentOutOfRange, func() { Range(0, -1) }},
		{"range overflow", errors.ErrCodeArgumentOutOfRange, func() { Range(math.MaxInt, 2) }},
		{"repeat negative", errors.ErrCodeArgumentOutOfRange, func() { Repeat("x", -2) }},
		{"chunk zero", errors.ErrCodeArgumentOutOfRange, func() { Chunk(Of(1), 0) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			requirePanicCode(t, tc.code, tc.fn)
		})
	}
}

func TestState_String(t *testing.T) {
	require.Equal(t, "created", stateCreated.String())
	require.Equal(t, "enumerating", stateEnumerating.String())
	require.Equal(t, "exhausted", stateExhausted.String())
	require.Equal(t, "disposed", stateDisposed.String())
}
