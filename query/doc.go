// Package query is a deferred, pull-based sequence query engine.
//
// A Query describes a pipeline; building one never touches source data.
// Elements are pulled one at a time only when the query is enumerated, either
// through an Enumerator, a range loop over All, or a terminal operator such as
// ToSlice, Count or First.
//
//	src := query.FromSlice([]int{1, 2, 3, 4, 5})
//	evens := query.Select(src.Where(func(x int) bool { return x%2 == 0 }),
//	    func(x int) int { return x * 10 })
//	for v, err := range evens.All() {
//	    ...
//	}
//
// # Descriptors and cursors
//
// Every lazy operator returns an immutable descriptor. Enumerate hands out a
// cursor: the first caller gets the cursor allocated with the descriptor,
// every later or concurrent caller gets a fresh one, so a descriptor can be
// shared freely. A cursor itself is single-owner and must not be used from
// two goroutines.
//
// # Fusion
//
// Where over a filter combines both predicates into one stage. Select over a
// filter, or over an earlier projection, composes into one projection stage.
// Chains of Where/Select therefore cost one cursor regardless of length.
//
// # Errors
//
// Invalid arguments (nil sequences or functions, negative counts) panic with
// an *errors.AppError when the operator is called. Failures found while
// enumerating are returned by terminal operators or reported by
// Enumerator.Err, and match the sentinels of the errors package:
//
//	_, err := query.Single(q)
//	if errors.Is(err, seqerrors.ErrMoreThanOneElement) { ... }
//
// Type-preserving operators are available as methods on Query. Operators that
// change the element type (Select, GroupBy, Join, ...) are package functions.
package query
