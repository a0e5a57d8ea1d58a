package query

import (
	"github.com/ccoveille/go-safecast/v2"
	"golang.org/x/exp/constraints"
)

// Number is the element type of Sum and Average.
type Number interface {
	constraints.Integer | constraints.Float
}

// checkedAdd returns a+b and false when the sum left T's range. Float sums
// never report overflow; they saturate to ±Inf or propagate NaN.
func checkedAdd[T Number](a, b T) (T, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return s, false
	}
	return s, true
}

// isFloat reports whether T is a floating-point type.
func isFloat[T Number]() bool {
	var one T = 1
	return one/2 != 0
}

// isNaN reports whether x is a floating-point NaN.
func isNaN[T comparable](x T) bool {
	return x != x
}

// isUnsigned reports whether T is an unsigned integer type.
func isUnsigned[T Number]() bool {
	var m T
	m--
	return m > 0
}

// toInt64 widens an integer element, failing for unsigned values above
// math.MaxInt64.
func toInt64[T Number](x T, unsigned bool) (int64, error) {
	if unsigned {
		return safecast.Convert[int64](uint64(x))
	}
	return int64(x), nil
}
