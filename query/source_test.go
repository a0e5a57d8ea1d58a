package query

import (
	"bytes"
	"context"
	stderrors "errors"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
)

func TestRangeRepeatEmpty(t *testing.T) {
	require.Equal(t, []int{-2, -1, 0}, collect[int](t, Range(-2, 3)))
	require.Empty(t, collect[int](t, Range(10, 0)))
	require.Equal(t, []string{"x", "x"}, collect[string](t, Repeat("x", 2)))
	require.Empty(t, collect[string](t, Empty[string]()))
}

func TestFromSlice_DoesNotCopy(t *testing.T) {
	items := []int{1, 2, 3}
	q := FromSlice(items)
	items[0] = 10
	require.Equal(t, []int{10, 2, 3}, collect[int](t, q))
}

type squares int

func (s squares) Len() int     { return int(s) }
func (s squares) At(i int) int { return i * i }

func (s squares) Enumerate() Enumerator[int] {
	return Select(Range(0, int(s)), func(i int) int { return i * i }).Enumerate()
}

func TestFrom_UsesIndexedFastPath(t *testing.T) {
	q := From[int](squares(5))

	n, err := Count(q)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	v, err := ElementAt(q, 3)
	require.NoError(t, err)
	require.Equal(t, 9, v)

	require.Equal(t, []int{0, 1, 4, 9, 16}, collect[int](t, q))
}

func TestSequenceFunc(t *testing.T) {
	fn := SequenceFunc[int](func() Enumerator[int] { return Of(4, 5).Enumerate() })
	require.Equal(t, []int{5}, collect[int](t, Where[int](fn, func(x int) bool { return x > 4 })))
}

func TestFromSeq(t *testing.T) {
	q := FromSeq(slices.Values([]int{1, 2, 3, 4}))
	require.Equal(t, []int{2, 4}, collect[int](t, Where(q, isEven)))

	// Stopping early must stop the iterator goroutine; goleak checks this in TestMain.
	v, err := First(Where(q, func(x int) bool { return x > 1 }))
	require.NoError(t, err)
	require.Equal(t, 2, v)

	e := q.Enumerate()
	require.True(t, e.MoveNext())
	e.Close()
}

func TestFromSeq_Infinite(t *testing.T) {
	naturals := iter.Seq[int](func(yield func(int) bool) {
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	})
	require.Equal(t, []int{0, 2, 4}, collect[int](t, Take(Where(FromSeq(naturals), isEven), 3)))
}

type stubPuller struct {
	items    []string
	failAt   int
	closeErr error
	closed   *int
}

func (p *stubPuller) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if p.failAt >= 0 && len(p.items) == p.failAt {
		return "", false, errSource
	}
	if len(p.items) == 0 {
		return "", false, nil
	}
	v := p.items[0]
	p.items = p.items[1:]
	return v, true, nil
}

func (p *stubPuller) Close() error {
	*p.closed++
	return p.closeErr
}

func TestFromPuller(t *testing.T) {
	closed := 0
	open := func(context.Context) Puller[string] {
		return &stubPuller{items: []string{"a", "b", "c"}, failAt: -1, closed: &closed}
	}
	q := FromPuller(context.Background(), open)

	require.Equal(t, []string{"a", "b", "c"}, collect[string](t, q))
	require.Equal(t, []string{"a", "b", "c"}, collect[string](t, q), "each enumeration opens a new puller")
	require.Equal(t, 2, closed)
}

func TestFromPuller_NextError(t *testing.T) {
	closed := 0
	q := FromPuller(context.Background(), func(context.Context) Puller[string] {
		return &stubPuller{items: []string{"a", "b"}, failAt: 1, closed: &closed}
	})

	e := q.Enumerate()
	require.True(t, e.MoveNext())
	require.False(t, e.MoveNext())
	require.ErrorIs(t, e.Err(), errSource)
	e.Close()
	require.Equal(t, 1, closed)
}

func TestFromPuller_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	closed := 0
	q := FromPuller(ctx, func(context.Context) Puller[string] {
		return &stubPuller{items: []string{"a"}, failAt: -1, closed: &closed}
	})

	_, err := ToSlice(q)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFromPuller_CloseErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := &logger.Config{Level: "debug", Format: "json"}
	Configure(WithLogger(logger.NewWithWriter(cfg, "test", &buf)))
	t.Cleanup(Reset)

	closed := 0
	q := FromPuller(context.Background(), func(context.Context) Puller[string] {
		return &stubPuller{items: []string{"a"}, failAt: -1, closed: &closed, closeErr: stderrors.New("close failed")}
	})
	require.Equal(t, []string{"a"}, collect[string](t, q))
	require.Contains(t, buf.String(), "failed to close puller")
	require.Contains(t, buf.String(), "close failed")
}

func TestList_Operations(t *testing.T) {
	l := NewList[int](2)
	l.Add(1)
	l.AddAll(2, 3)
	l.Insert(0, 0)
	l.Insert(l.Len(), 4)
	l.Set(1, 10)
	l.RemoveAt(2)
	require.Equal(t, []int{0, 10, 3, 4}, l.Slice())
	require.Equal(t, 3, l.At(2))

	l.Clear()
	require.Zero(t, l.Len())

	requirePanicCode(t, errors.ErrCodeArgumentOutOfRange, func() { l.At(0) })
	requirePanicCode(t, errors.ErrCodeArgumentOutOfRange, func() { l.Insert(2, 1) })
	requirePanicCode(t, errors.ErrCodeArgumentOutOfRange, func() { NewList[int](-1) })
	requirePanicCode(t, errors.ErrCodeNullArgument, func() { FromList[int](nil) })
}

func TestList_ModifiedDuringEnumeration(t *testing.T) {
	rec := observe(t)
	l := ListOf(1, 2, 3)

	e := l.Query().Where(func(int) bool { return true }).Enumerate()
	require.True(t, e.MoveNext())
	l.Add(4)
	require.False(t, e.MoveNext())
	requireCode(t, e.Err(), errors.ErrCodeCollectionModified)
	e.Close()

	direct := l.Enumerate()
	require.True(t, direct.MoveNext())
	l.RemoveAt(0)
	require.False(t, direct.MoveNext())
	requireCode(t, direct.Err(), errors.ErrCodeCollectionModified)
	direct.Close()

	_, err := ToSlice(Where(l.Query(), func(x int) bool {
		l.Add(x)
		return true
	}))
	requireCode(t, err, errors.ErrCodeCollectionModified)
	require.Contains(t, rec.failed, errors.ErrCodeCollectionModified)
}

func TestList_QuerySeesLaterChanges(t *testing.T) {
	l := ListOf(1, 2)
	q := Select(l.Query(), func(x int) int { return x * 2 })
	l.Add(3)
	require.Equal(t, []int{2, 4, 6}, collect[int](t, q))
}

func TestToList_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xs := rapid.SliceOf(rapid.Int()).Draw(t, "xs")

		l, err := ToList(From[int](newProbe(xs...)))
		require.NoError(t, err)
		require.Equal(t, len(xs), l.Len())

		back, err := ToSlice(FromList(l))
		require.NoError(t, err)
		require.Equal(t, len(xs), len(back))
		for i := range xs {
			require.Equal(t, xs[i], back[i])
		}
	})
}

func TestToSlice_IsACopy(t *testing.T) {
	items := []int{1, 2, 3}
	out := collect[int](t, FromSlice(items))
	out[0] = 99
	require.Equal(t, 1, items[0])
}

func TestForEach(t *testing.T) {
	var seen []int
	err := ForEach(Range(1, 5), func(x int) error {
		seen = append(seen, x)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5}, seen)

	stop := stderrors.New("stop")
	seen = nil
	err = ForEach(Range(1, 5), func(x int) error {
		if x == 3 {
			return stop
		}
		seen = append(seen, x)
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, []int{1, 2}, seen)
}
