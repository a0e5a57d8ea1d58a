package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kbukum/seqkit/errors"
)

type person struct {
	Name string
	Team string
}

type pet struct {
	Name  string
	Owner string
}

var (
	people = []person{
		{"ann", "red"}, {"bob", "blue"}, {"cid", "red"}, {"dee", "green"},
	}
	pets = []pet{
		{"rex", "bob"}, {"tom", "ann"}, {"kit", "bob"}, {"orphan", "zed"},
	}
)

func petOwner(p pet) string      { return p.Owner }
func personName(p person) string { return p.Name }

func TestGroupBy_FirstSeenKeyOrder(t *testing.T) {
	groups := collect(t, GroupBy(FromSlice(people), func(p person) string { return p.Team }))

	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key()
	}
	require.Equal(t, []string{"red", "blue", "green"}, keys)
	require.Equal(t, []person{{"ann", "red"}, {"cid", "red"}}, groups[0].Values())
	require.Equal(t, 1, groups[2].Len())
}

func TestGroupBy_PartitionsSource(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xs := rapid.SliceOf(rapid.IntRange(-20, 20)).Draw(t, "xs")
		mod := rapid.IntRange(1, 7).Draw(t, "mod")
		key := func(x int) int { return ((x % mod) + mod) % mod }

		groups, err := ToSlice(GroupBy(FromSlice(xs), key))
		require.NoError(t, err)

		total := 0
		seen := map[int]bool{}
		for _, g := range groups {
			require.False(t, seen[g.Key()], "keys are distinct")
			seen[g.Key()] = true
			total += g.Len()
			for _, v := range g.Values() {
				require.Equal(t, g.Key(), key(v))
			}
		}
		require.Equal(t, len(xs), total)

		// Concatenating every group's elements in key order keeps source order
		// within each key.
		for _, g := range groups {
			var want []int
			for _, x := range xs {
				if key(x) == g.Key() {
					want = append(want, x)
				}
			}
			require.Equal(t, want, g.Values())
		}
	})
}

func TestGroupByElement_ProjectsMembers(t *testing.T) {
	groups := collect(t, GroupByElement(FromSlice(people), func(p person) string { return p.Team }, personName))
	require.Equal(t, []string{"ann", "cid"}, groups[0].Values())
	require.Equal(t, []string{"bob"}, collect[string](t, groups[1].Query()))
}

func TestGroupByFunc_CaseInsensitiveKeys(t *testing.T) {
	words := Of("Go", "rust", "GO", "Rust", "zig")
	groups := collect(t, GroupByFunc(words, identity[string], StringFoldEquality()))

	require.Len(t, groups, 3)
	require.Equal(t, "Go", groups[0].Key(), "the first spelling seen names the group")
	require.Equal(t, []string{"Go", "GO"}, groups[0].Values())
	require.Equal(t, []string{"rust", "Rust"}, groups[1].Values())
}

func TestGroupBy_SourceErrorSurfacesOnFirstMoveNext(t *testing.T) {
	p := newProbe(1, 2)
	p.fail = errSource
	e := GroupBy(From[int](p), identity[int]).Enumerate()
	defer e.Close()

	require.False(t, e.MoveNext())
	require.ErrorIs(t, e.Err(), errSource)
}

func TestToLookup_GetContainsValues(t *testing.T) {
	l, err := ToLookup(FromSlice(pets), petOwner)
	require.NoError(t, err)

	require.Equal(t, 3, l.Len())
	require.True(t, l.Contains("bob"))
	require.False(t, l.Contains("nobody"))

	g, ok := l.Get("bob")
	require.True(t, ok)
	require.Equal(t, []pet{{"rex", "bob"}, {"kit", "bob"}}, g.Values())

	_, ok = l.Get("nobody")
	require.False(t, ok)
	require.Empty(t, collect[pet](t, l.Values("nobody")))

	n, err := Count(l)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "bob", l.At(0).Key())
}

func TestToLookupElement_ToLookupFunc(t *testing.T) {
	names, err := ToLookupElement(FromSlice(pets), petOwner, func(p pet) string { return p.Name })
	require.NoError(t, err)
	require.Equal(t, []string{"rex", "kit"}, collect[string](t, names.Values("bob")))

	folded, err := ToLookupFunc(Of("a", "B", "A", "b"), identity[string], StringFoldEquality())
	require.NoError(t, err)
	require.Equal(t, 2, folded.Len())
	require.Equal(t, []string{"B", "b"}, collect[string](t, folded.Values("b")))
}

func TestJoin_MatchingPairsInOuterOrder(t *testing.T) {
	pairs := Join(FromSlice(people), FromSlice(pets), personName, petOwner,
		func(o person, p pet) string { return o.Name + ":" + p.Name })

	require.Equal(t, []string{"ann:tom", "bob:rex", "bob:kit"}, collect[string](t, pairs))
}

func TestGroupJoin_OneResultPerOuter(t *testing.T) {
	counts := GroupJoin(FromSlice(people), FromSlice(pets), personName, petOwner,
		func(o person, ps Query[pet]) string {
			n, err := ps.Count()
			if err != nil {
				return "error"
			}
			return o.Name + "=" + strings.Repeat("*", n)
		})

	require.Equal(t, []string{"ann=*", "bob=**", "cid=", "dee="}, collect[string](t, counts))
}

func TestJoinFunc_GroupJoinFunc(t *testing.T) {
	outer := Of("ANN", "Bob")
	inner := FromSlice(pets)

	joined := JoinFunc(outer, inner, identity[string], petOwner,
		func(o string, p pet) string { return o + "/" + p.Name }, StringFoldEquality())
	require.Equal(t, []string{"ANN/tom", "Bob/rex", "Bob/kit"}, collect[string](t, joined))

	grouped := GroupJoinFunc(outer, inner, identity[string], petOwner,
		func(o string, ps Query[pet]) int {
			n, _ := ps.Count()
			return n
		}, StringFoldEquality())
	require.Equal(t, []int{1, 2}, collect[int](t, grouped))
}

func TestJoin_CardinalityAgainstGroupJoin(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		outer := rapid.SliceOf(rapid.IntRange(0, 5)).Draw(t, "outer")
		inner := rapid.SliceOf(rapid.IntRange(0, 5)).Draw(t, "inner")

		n, err := Count(Join(FromSlice(outer), FromSlice(inner), identity[int], identity[int],
			func(a, b int) int { return a }))
		require.NoError(t, err)

		sizes, err := ToSlice(GroupJoin(FromSlice(outer), FromSlice(inner), identity[int], identity[int],
			func(_ int, ms Query[int]) int {
				c, _ := ms.Count()
				return c
			}))
		require.NoError(t, err)
		require.Len(t, sizes, len(outer))

		sum := 0
		for _, s := range sizes {
			sum += s
		}
		require.Equal(t, sum, n)
	})
}

func TestToDictionary(t *testing.T) {
	m, err := ToDictionary(FromSlice(people), personName, func(p person) string { return p.Team })
	require.NoError(t, err)
	require.Equal(t, map[string]string{"ann": "red", "bob": "blue", "cid": "red", "dee": "green"}, m)

	_, err = ToDictionary(FromSlice(pets), petOwner, func(p pet) string { return p.Name })
	requireCode(t, err, errors.ErrCodeDuplicateKey)

	app, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "bob", app.Details["key"])
}

func TestToDictionaryFunc_ComparerDuplicates(t *testing.T) {
	_, err := ToDictionaryFunc(Of("a", "A"), identity[string], identity[string], StringFoldEquality())
	requireCode(t, err, errors.ErrCodeDuplicateKey)

	m, err := ToDictionaryFunc(Of("a", "b"), identity[string], strings.ToUpper, StringFoldEquality())
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "A", "b": "B"}, m)
}
