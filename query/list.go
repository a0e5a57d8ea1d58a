package query

import (
	"slices"

	"github.com/kbukum/seqkit/errors"
)

// List is a growable indexable block. Every structural change bumps its
// version so live cursors can detect concurrent modification.
type List[T any] struct {
	items   []T
	version int
}

// NewList creates an empty list with the given capacity.
func NewList[T any](capacity int) *List[T] {
	mustCount(capacity, "capacity")
	return &List[T]{items: make([]T, 0, capacity)}
}

// ListOf creates a list holding a copy of items.
func ListOf[T any](items ...T) *List[T] {
	return &List[T]{items: slices.Clone(items)}
}

func (l *List[T]) Len() int { return len(l.items) }

// At returns the element at i and panics with ARGUMENT_OUT_OF_RANGE when i is
// outside [0, Len).
func (l *List[T]) At(i int) T {
	l.checkIndex(i)
	return l.items[i]
}

// Set replaces the element at i.
func (l *List[T]) Set(i int, v T) {
	l.checkIndex(i)
	l.items[i] = v
	l.version++
}

// Add appends v.
func (l *List[T]) Add(v T) {
	l.items = append(l.items, v)
	l.version++
}

// AddAll appends vs.
func (l *List[T]) AddAll(vs ...T) {
	l.items = append(l.items, vs...)
	l.version++
}

// Insert places v at i, shifting later elements; i may equal Len.
func (l *List[T]) Insert(i int, v T) {
	if i < 0 || i > len(l.items) {
		panic(errors.ArgumentOutOfRange("index", i))
	}
	l.items = slices.Insert(l.items, i, v)
	l.version++
}

// RemoveAt deletes the element at i.
func (l *List[T]) RemoveAt(i int) {
	l.checkIndex(i)
	l.items = slices.Delete(l.items, i, i+1)
	l.version++
}

// Clear removes every element.
func (l *List[T]) Clear() {
	l.items = slices.Delete(l.items, 0, len(l.items))
	l.version++
}

// Slice returns a copy of the elements.
func (l *List[T]) Slice() []T { return slices.Clone(l.items) }

// Query returns a query over the list.
func (l *List[T]) Query() Query[T] { return FromList(l) }

// Enumerate starts a version-checked pass over the list.
func (l *List[T]) Enumerate() Enumerator[T] {
	c := &sourceCursor[T]{spec: &sourceSpec[T]{op: "from_list", src: source[T]{kind: kindList, list: l}}}
	opts().Observer.CursorStarted("from_list", false)
	return c
}

func (l *List[T]) checkIndex(i int) {
	if i < 0 || i >= len(l.items) {
		panic(errors.ArgumentOutOfRange("index", i))
	}
}
