package query

import "github.com/kbukum/seqkit/errors"

// first scans for the first element satisfying pred (nil matches anything).
func first[T any](src source[T], pred func(T) bool) (T, bool, error) {
	if pred == nil {
		if ix, ok := src.indexed(); ok {
			if ix.Len() == 0 {
				var zero T
				return zero, false, nil
			}
			return ix.At(0), true, nil
		}
	}
	var v T
	found := false
	err := each(src, func(x T) bool {
		if pred == nil || pred(x) {
			v, found = x, true
			return false
		}
		return true
	})
	return v, found, err
}

// last scans for the last element satisfying pred, backwards when src is indexed.
func last[T any](src source[T], pred func(T) bool) (T, bool, error) {
	if ix, ok := src.indexed(); ok {
		for i := ix.Len() - 1; i >= 0; i-- {
			if x := ix.At(i); pred == nil || pred(x) {
				return x, true, nil
			}
		}
		var zero T
		return zero, false, nil
	}
	var v T
	found := false
	err := each(src, func(x T) bool {
		if pred == nil || pred(x) {
			v, found = x, true
		}
		return true
	})
	return v, found, err
}

// single looks for exactly one element satisfying pred. It stops at the second match.
func single[T any](src source[T], pred func(T) bool) (v T, n int, err error) {
	if pred == nil {
		if ix, ok := src.indexed(); ok {
			switch ix.Len() {
			case 0:
				return v, 0, nil
			case 1:
				return ix.At(0), 1, nil
			default:
				return v, 2, nil
			}
		}
	}
	err = each(src, func(x T) bool {
		if pred == nil || pred(x) {
			n++
			if n == 1 {
				v = x
			}
		}
		return n < 2
	})
	return v, n, err
}

func orMissing[T any](op string, v T, ok bool, err error, missing func() *errors.AppError) (T, error) {
	var zero T
	if err != nil {
		return zero, fail(op, err)
	}
	if !ok {
		return zero, fail(op, missing())
	}
	return v, nil
}

func orDefault[T any](op string, v T, ok bool, err error, def T) (T, error) {
	if err != nil {
		return def, fail(op, err)
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// First returns the first element, or NO_ELEMENTS.
func First[T any](src Sequence[T]) (T, error) {
	v, ok, err := first(sourceOf(mustSeq(src, "source")), nil)
	return orMissing("first", v, ok, err, errors.NoElements)
}

// FirstMatch returns the first element satisfying pred, or NO_MATCH.
func FirstMatch[T any](src Sequence[T], pred func(T) bool) (T, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	v, ok, err := first(sourceOf(s), pred)
	return orMissing("first", v, ok, err, errors.NoMatch)
}

// FirstOrDefault returns the first element, or def when src is empty.
func FirstOrDefault[T any](src Sequence[T], def T) (T, error) {
	v, ok, err := first(sourceOf(mustSeq(src, "source")), nil)
	return orDefault("first", v, ok, err, def)
}

// FirstMatchOrDefault returns the first element satisfying pred, or def.
func FirstMatchOrDefault[T any](src Sequence[T], pred func(T) bool, def T) (T, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	v, ok, err := first(sourceOf(s), pred)
	return orDefault("first", v, ok, err, def)
}

// Last returns the last element, or NO_ELEMENTS.
func Last[T any](src Sequence[T]) (T, error) {
	v, ok, err := last(sourceOf(mustSeq(src, "source")), nil)
	return orMissing("last", v, ok, err, errors.NoElements)
}

// LastMatch returns the last element satisfying pred, or NO_MATCH.
func LastMatch[T any](src Sequence[T], pred func(T) bool) (T, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	v, ok, err := last(sourceOf(s), pred)
	return orMissing("last", v, ok, err, errors.NoMatch)
}

// LastOrDefault returns the last element, or def when src is empty.
func LastOrDefault[T any](src Sequence[T], def T) (T, error) {
	v, ok, err := last(sourceOf(mustSeq(src, "source")), nil)
	return orDefault("last", v, ok, err, def)
}

// LastMatchOrDefault returns the last element satisfying pred, or def.
func LastMatchOrDefault[T any](src Sequence[T], pred func(T) bool, def T) (T, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	v, ok, err := last(sourceOf(s), pred)
	return orDefault("last", v, ok, err, def)
}

// Single returns the only element. It fails with NO_ELEMENTS when src is
// empty and MORE_THAN_ONE_ELEMENT when it holds several.
func Single[T any](src Sequence[T]) (T, error) {
	v, n, err := single(sourceOf(mustSeq(src, "source")), nil)
	if err == nil && n > 1 {
		err = errors.MoreThanOneElement()
	}
	return orMissing("single", v, n == 1, err, errors.NoElements)
}

// SingleMatch returns the only element satisfying pred. It fails with
// NO_MATCH or MORE_THAN_ONE_MATCH.
func SingleMatch[T any](src Sequence[T], pred func(T) bool) (T, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	v, n, err := single(sourceOf(s), pred)
	if err == nil && n > 1 {
		err = errors.MoreThanOneMatch()
	}
	return orMissing("single", v, n == 1, err, errors.NoMatch)
}

// SingleOrDefault returns the only element, or def when src is empty. Several
// elements still fail with MORE_THAN_ONE_ELEMENT.
func SingleOrDefault[T any](src Sequence[T], def T) (T, error) {
	v, n, err := single(sourceOf(mustSeq(src, "source")), nil)
	if err == nil && n > 1 {
		err = errors.MoreThanOneElement()
	}
	return orDefault("single", v, n == 1, err, def)
}

// SingleMatchOrDefault returns the only element satisfying pred, or def when
// none does. Several matches still fail with MORE_THAN_ONE_MATCH.
func SingleMatchOrDefault[T any](src Sequence[T], pred func(T) bool, def T) (T, error) {
	s := mustSeq(src, "source")
	mustFunc(pred == nil, "predicate")
	v, n, err := single(sourceOf(s), pred)
	if err == nil && n > 1 {
		err = errors.MoreThanOneMatch()
	}
	return orDefault("single", v, n == 1, err, def)
}

func elementAt[T any](src source[T], i int) (T, bool, error) {
	var zero T
	if i < 0 {
		return zero, false, nil
	}
	if ix, ok := src.indexed(); ok {
		if i >= ix.Len() {
			return zero, false, nil
		}
		return ix.At(i), true, nil
	}
	var v T
	ok := false
	pos := 0
	err := each(src, func(x T) bool {
		if pos == i {
			v, ok = x, true
			return false
		}
		pos++
		return true
	})
	return v, ok, err
}

// ElementAt returns the element at index i. An index outside the sequence
// fails with ARGUMENT_OUT_OF_RANGE.
func ElementAt[T any](src Sequence[T], i int) (T, error) {
	v, ok, err := elementAt(sourceOf(mustSeq(src, "source")), i)
	return orMissing("element_at", v, ok, err, func() *errors.AppError {
		return errors.ArgumentOutOfRange("index", i)
	})
}

// ElementAtOrDefault returns the element at index i, or def when i is outside
// the sequence.
func ElementAtOrDefault[T any](src Sequence[T], i int, def T) (T, error) {
	v, ok, err := elementAt(sourceOf(mustSeq(src, "source")), i)
	return orDefault("element_at", v, ok, err, def)
}
