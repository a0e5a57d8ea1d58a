package query

import (
	"hash/maphash"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// EqualityComparer defines equality for set, grouping and join operators.
// Equal values must have equal hashes.
type EqualityComparer[T any] interface {
	Equal(a, b T) bool
	Hash(v T) uint64
}

type equalityFuncs[T any] struct {
	eq   func(a, b T) bool
	hash func(T) uint64
}

func (e equalityFuncs[T]) Equal(a, b T) bool { return e.eq(a, b) }

func (e equalityFuncs[T]) Hash(v T) uint64 {
	if e.hash == nil {
		return 0
	}
	return e.hash(v)
}

// EqualityFunc builds a comparer from an equality and a hash function. A nil
// hash puts every value in one bucket, which is correct but linear.
func EqualityFunc[T any](eq func(a, b T) bool, hash func(T) uint64) EqualityComparer[T] {
	mustFunc(eq == nil, "equal")
	return equalityFuncs[T]{eq: eq, hash: hash}
}

type defaultEquality[T comparable] struct {
	seed maphash.Seed
}

func (d defaultEquality[T]) Equal(a, b T) bool { return a == b }
func (d defaultEquality[T]) Hash(v T) uint64   { return maphash.Comparable(d.seed, v) }

// DefaultEquality returns the comparer of Go's == operator.
func DefaultEquality[T comparable]() EqualityComparer[T] {
	return defaultEquality[T]{seed: maphash.MakeSeed()}
}

type foldEquality struct{}

func (foldEquality) Equal(a, b string) bool { return strings.EqualFold(a, b) }
func (foldEquality) Hash(v string) uint64   { return xxhash.Sum64String(foldKey(v)) }

// foldKey maps every rune to the smallest rune of its simple case-folding
// orbit, so strings equal under strings.EqualFold get the same key.
func foldKey(v string) string {
	return strings.Map(func(r rune) rune {
		least := r
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			if f < least {
				least = f
			}
		}
		return least
	}, v)
}

// StringFoldEquality compares strings case-insensitively.
func StringFoldEquality() EqualityComparer[string] {
	return foldEquality{}
}

// KeyEquality compares values by a derived comparable key.
func KeyEquality[T any, K comparable](key func(T) K) EqualityComparer[T] {
	mustFunc(key == nil, "key")
	inner := DefaultEquality[K]()
	return equalityFuncs[T]{
		eq:   func(a, b T) bool { return key(a) == key(b) },
		hash: func(v T) uint64 { return inner.Hash(key(v)) },
	}
}

// ReverseOrder inverts an ordering comparer.
func ReverseOrder[K any](compare func(a, b K) int) func(a, b K) int {
	mustFunc(compare == nil, "compare")
	return func(a, b K) int { return compare(b, a) }
}

// keyIndex maps keys to slots. mapIndex serves comparable keys with Go's
// map; hashIndex serves custom comparers.
type keyIndex[K any] interface {
	find(k K) (int, bool)
	insert(k K, slot int)
	remove(k K) bool
	len() int
}

type mapIndex[K comparable] struct {
	m map[K]int
}

func newMapIndex[K comparable]() keyIndex[K] {
	return &mapIndex[K]{m: make(map[K]int)}
}

func (x *mapIndex[K]) find(k K) (int, bool) {
	slot, ok := x.m[k]
	return slot, ok
}

func (x *mapIndex[K]) insert(k K, slot int) { x.m[k] = slot }

func (x *mapIndex[K]) remove(k K) bool {
	if _, ok := x.m[k]; !ok {
		return false
	}
	delete(x.m, k)
	return true
}

func (x *mapIndex[K]) len() int { return len(x.m) }

type hashEntry[K any] struct {
	key  K
	slot int
}

type hashIndex[K any] struct {
	cmp     EqualityComparer[K]
	buckets map[uint64][]hashEntry[K]
	n       int
}

func newHashIndex[K any](cmp EqualityComparer[K]) keyIndex[K] {
	return &hashIndex[K]{cmp: cmp, buckets: make(map[uint64][]hashEntry[K])}
}

func (x *hashIndex[K]) find(k K) (int, bool) {
	for _, e := range x.buckets[x.cmp.Hash(k)] {
		if x.cmp.Equal(e.key, k) {
			return e.slot, true
		}
	}
	return 0, false
}

func (x *hashIndex[K]) insert(k K, slot int) {
	h := x.cmp.Hash(k)
	x.buckets[h] = append(x.buckets[h], hashEntry[K]{key: k, slot: slot})
	x.n++
}

func (x *hashIndex[K]) remove(k K) bool {
	h := x.cmp.Hash(k)
	bucket := x.buckets[h]
	for i, e := range bucket {
		if !x.cmp.Equal(e.key, k) {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket[last] = hashEntry[K]{}
		if last == 0 {
			delete(x.buckets, h)
		} else {
			x.buckets[h] = bucket[:last]
		}
		x.n--
		return true
	}
	return false
}

func (x *hashIndex[K]) len() int { return x.n }

// addKey inserts k unless present and reports whether it was new.
func addKey[K any](x keyIndex[K], k K) bool {
	if _, ok := x.find(k); ok {
		return false
	}
	x.insert(k, x.len())
	return true
}
