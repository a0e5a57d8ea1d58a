package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Argument errors, raised when an operator is constructed.
const (
	// ErrCodeNullArgument indicates a required sequence, function or comparer was nil.
	ErrCodeNullArgument ErrorCode = "NULL_ARGUMENT"
	// ErrCodeArgumentOutOfRange indicates a count or index outside its valid range.
	ErrCodeArgumentOutOfRange ErrorCode = "ARGUMENT_OUT_OF_RANGE"
)

// Element errors, raised by reducing and positional operators.
const (
	// ErrCodeNoElements indicates the sequence was empty.
	ErrCodeNoElements ErrorCode = "NO_ELEMENTS"
	// ErrCodeNoMatch indicates no element satisfied the predicate.
	ErrCodeNoMatch ErrorCode = "NO_MATCH"
	// ErrCodeMoreThanOneMatch indicates several elements satisfied the predicate.
	ErrCodeMoreThanOneMatch ErrorCode = "MORE_THAN_ONE_MATCH"
	// ErrCodeMoreThanOneElement indicates the sequence held more than one element.
	ErrCodeMoreThanOneElement ErrorCode = "MORE_THAN_ONE_ELEMENT"
)

// State errors, raised while a sequence is being consumed.
const (
	// ErrCodeDuplicateKey indicates a key was produced twice where keys must be unique.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
	// ErrCodeOverflow indicates a checked accumulation left the range of its type.
	ErrCodeOverflow ErrorCode = "OVERFLOW"
	// ErrCodeCollectionModified indicates a list changed while it was being enumerated.
	ErrCodeCollectionModified ErrorCode = "COLLECTION_MODIFIED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

var constructionCodes = map[ErrorCode]bool{
	ErrCodeNullArgument:       true,
	ErrCodeArgumentOutOfRange: true,
}

// IsConstructionCode reports whether code is raised while building a query
// rather than while consuming one.
func IsConstructionCode(code ErrorCode) bool {
	return constructionCodes[code]
}
