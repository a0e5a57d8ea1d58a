package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type of the toolkit.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code. It lets the
// package sentinels match any error of their kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Sentinels for errors.Is matching. Do not mutate.
var (
	ErrNullArgument       = New(ErrCodeNullArgument, "argument is nil")
	ErrArgumentOutOfRange = New(ErrCodeArgumentOutOfRange, "argument is out of range")
	ErrNoElements         = New(ErrCodeNoElements, "sequence contains no elements")
	ErrNoMatch            = New(ErrCodeNoMatch, "sequence contains no matching element")
	ErrMoreThanOneMatch   = New(ErrCodeMoreThanOneMatch, "sequence contains more than one matching element")
	ErrMoreThanOneElement = New(ErrCodeMoreThanOneElement, "sequence contains more than one element")
	ErrDuplicateKey       = New(ErrCodeDuplicateKey, "an element with the same key already exists")
	ErrOverflow           = New(ErrCodeOverflow, "arithmetic operation resulted in an overflow")
	ErrCollectionModified = New(ErrCodeCollectionModified, "collection was modified during enumeration")
	ErrInvalidInput       = New(ErrCodeInvalidInput, "invalid input")
)

// --- Constructors ---

// NullArgument creates a new AppError for a nil required argument.
func NullArgument(param string) *AppError {
	return &AppError{
		Code: ErrCodeNullArgument, Message: fmt.Sprintf("Value cannot be nil: %s", param),
		Details: map[string]any{"param": param},
	}
}

// ArgumentOutOfRange creates a new AppError for a count or index outside its range.
func ArgumentOutOfRange(param string, value any) *AppError {
	return &AppError{
		Code: ErrCodeArgumentOutOfRange, Message: fmt.Sprintf("Argument %s is out of range: %v", param, value),
		Details: map[string]any{"param": param, "value": value},
	}
}

// NoElements creates a new AppError for an empty sequence.
func NoElements() *AppError {
	return &AppError{Code: ErrCodeNoElements, Message: "Sequence contains no elements."}
}

// NoMatch creates a new AppError for a predicate no element satisfied.
func NoMatch() *AppError {
	return &AppError{Code: ErrCodeNoMatch, Message: "Sequence contains no matching element."}
}

// MoreThanOneMatch creates a new AppError for a predicate several elements satisfied.
func MoreThanOneMatch() *AppError {
	return &AppError{Code: ErrCodeMoreThanOneMatch, Message: "Sequence contains more than one matching element."}
}

// MoreThanOneElement creates a new AppError for a sequence expected to hold one element.
func MoreThanOneElement() *AppError {
	return &AppError{Code: ErrCodeMoreThanOneElement, Message: "Sequence contains more than one element."}
}

// DuplicateKey creates a new AppError for a repeated key.
func DuplicateKey(key any) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateKey, Message: fmt.Sprintf("An element with the same key already exists: %v", key),
		Details: map[string]any{"key": key},
	}
}

// Overflow creates a new AppError for a checked accumulation that left its range.
func Overflow(op string) *AppError {
	return &AppError{
		Code: ErrCodeOverflow, Message: "Arithmetic operation resulted in an overflow.",
		Details: map[string]any{"operation": op},
	}
}

// CollectionModified creates a new AppError for a list changed mid-enumeration.
func CollectionModified() *AppError {
	return &AppError{
		Code:    ErrCodeCollectionModified,
		Message: "Collection was modified; enumeration operation may not execute.",
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err, or any error it wraps, is an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}
