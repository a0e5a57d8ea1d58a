// Package errors provides the error taxonomy shared by seqkit packages.
//
// Every failure is an *AppError carrying a machine-readable ErrorCode. The
// package exposes one sentinel per code so callers can match with the
// standard library:
//
//	if errors.Is(err, seqerrors.ErrNoElements) { ... }
//
// Construction-time codes (NULL_ARGUMENT, ARGUMENT_OUT_OF_RANGE) are raised
// as panics by query operators; all other codes are returned from terminal
// operators or reported by Enumerator.Err.
package errors
