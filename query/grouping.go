package query

import "slices"

// Grouping is a key with the elements that share it, in source order.
type Grouping[K, E any] struct {
	key   K
	elems []E
}

func (g *Grouping[K, E]) Key() K { return g.key }

func (g *Grouping[K, E]) Len() int { return len(g.elems) }

func (g *Grouping[K, E]) At(i int) E { return g.elems[i] }

// Values returns a copy of the elements.
func (g *Grouping[K, E]) Values() []E { return slices.Clone(g.elems) }

// Query returns a query over the elements.
func (g *Grouping[K, E]) Query() Query[E] {
	return newSource("grouping", source[E]{kind: kindSlice, items: g.elems})
}

func (g *Grouping[K, E]) Enumerate() Enumerator[E] { return g.Query().Enumerate() }

// Lookup is a read-only multi-map whose groups keep first-seen key order.
type Lookup[K, E any] struct {
	index  keyIndex[K]
	groups []*Grouping[K, E]
}

func newLookup[K, E any](index keyIndex[K]) *Lookup[K, E] {
	return &Lookup[K, E]{index: index}
}

func (l *Lookup[K, E]) add(k K, e E) {
	if slot, ok := l.index.find(k); ok {
		g := l.groups[slot]
		g.elems = append(g.elems, e)
		return
	}
	l.index.insert(k, len(l.groups))
	l.groups = append(l.groups, &Grouping[K, E]{key: k, elems: []E{e}})
}

// Len returns the number of groups.
func (l *Lookup[K, E]) Len() int { return len(l.groups) }

// At returns the group with the i-th distinct key.
func (l *Lookup[K, E]) At(i int) *Grouping[K, E] { return l.groups[i] }

// Contains reports whether k has a group.
func (l *Lookup[K, E]) Contains(k K) bool {
	_, ok := l.index.find(k)
	return ok
}

// Get returns the group of k.
func (l *Lookup[K, E]) Get(k K) (*Grouping[K, E], bool) {
	slot, ok := l.index.find(k)
	if !ok {
		return nil, false
	}
	return l.groups[slot], true
}

// Values returns the elements of k, or an empty query when k has no group.
func (l *Lookup[K, E]) Values(k K) Query[E] {
	if g, ok := l.Get(k); ok {
		return g.Query()
	}
	return Empty[E]()
}

// Query returns a query over the groups in key order.
func (l *Lookup[K, E]) Query() Query[*Grouping[K, E]] {
	return newSource("lookup", source[*Grouping[K, E]]{kind: kindSlice, items: l.groups})
}

func (l *Lookup[K, E]) Enumerate() Enumerator[*Grouping[K, E]] { return l.Query().Enumerate() }
