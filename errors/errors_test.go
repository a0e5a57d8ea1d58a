package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNoElements, "empty")
	if err.Code != ErrCodeNoElements {
		t.Errorf("expected code %s, got %s", ErrCodeNoElements, err.Code)
	}
	if err.Message != "empty" {
		t.Errorf("expected message 'empty', got %q", err.Message)
	}
	if err.Error() != "NO_ELEMENTS: empty" {
		t.Errorf("unexpected Error() %q", err.Error())
	}
}

func TestAppError_NullArgument_Details(t *testing.T) {
	err := NullArgument("predicate")
	if err.Code != ErrCodeNullArgument {
		t.Errorf("expected NULL_ARGUMENT, got %s", err.Code)
	}
	if err.Details["param"] != "predicate" {
		t.Errorf("expected param=predicate, got %v", err.Details["param"])
	}
	if !strings.Contains(err.Message, "predicate") {
		t.Errorf("expected message to name the parameter, got %q", err.Message)
	}
}

func TestAppError_ArgumentOutOfRange_Details(t *testing.T) {
	err := ArgumentOutOfRange("count", -1)
	if err.Details["param"] != "count" {
		t.Errorf("expected param=count, got %v", err.Details["param"])
	}
	if err.Details["value"] != -1 {
		t.Errorf("expected value=-1, got %v", err.Details["value"])
	}
}

func TestAppError_DuplicateKey_Details(t *testing.T) {
	err := DuplicateKey("a")
	if err.Details["key"] != "a" {
		t.Errorf("expected key=a, got %v", err.Details["key"])
	}
	if !strings.Contains(err.Error(), "a") {
		t.Errorf("expected key in message, got %q", err.Error())
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     ErrorCode
		sentinel error
	}{
		{"NullArgument", NullArgument("source"), ErrCodeNullArgument, ErrNullArgument},
		{"ArgumentOutOfRange", ArgumentOutOfRange("index", 9), ErrCodeArgumentOutOfRange, ErrArgumentOutOfRange},
		{"NoElements", NoElements(), ErrCodeNoElements, ErrNoElements},
		{"NoMatch", NoMatch(), ErrCodeNoMatch, ErrNoMatch},
		{"MoreThanOneMatch", MoreThanOneMatch(), ErrCodeMoreThanOneMatch, ErrMoreThanOneMatch},
		{"MoreThanOneElement", MoreThanOneElement(), ErrCodeMoreThanOneElement, ErrMoreThanOneElement},
		{"DuplicateKey", DuplicateKey(1), ErrCodeDuplicateKey, ErrDuplicateKey},
		{"Overflow", Overflow("sum"), ErrCodeOverflow, ErrOverflow},
		{"CollectionModified", CollectionModified(), ErrCodeCollectionModified, ErrCollectionModified},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if !stderrors.Is(tc.err, tc.sentinel) {
				t.Errorf("expected errors.Is to match sentinel for %s", tc.code)
			}
			if stderrors.Is(tc.err, mismatchSentinel(tc.code)) {
				t.Errorf("sentinel of a different code should not match %s", tc.code)
			}
		})
	}
}

// mismatchSentinel returns a sentinel whose code differs from code.
func mismatchSentinel(code ErrorCode) error {
	if code == ErrCodeOverflow {
		return ErrNoElements
	}
	return ErrOverflow
}

func TestAppError_Is_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("single: %w", MoreThanOneElement())
	if !stderrors.Is(wrapped, ErrMoreThanOneElement) {
		t.Error("expected wrapped error to match its sentinel")
	}
	if stderrors.Is(wrapped, ErrMoreThanOneMatch) {
		t.Error("MORE_THAN_ONE_ELEMENT must not match MORE_THAN_ONE_MATCH")
	}
	if stderrors.Is(fmt.Errorf("plain"), ErrNoElements) {
		t.Error("plain error should not match")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Overflow("count").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if NoElements().Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := DuplicateKey("k").WithDetails(map[string]any{
		"operation": "to_dictionary",
	})
	if err.Details["operation"] != "to_dictionary" {
		t.Errorf("expected operation=to_dictionary in details")
	}
	if err.Details["key"] != "k" {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetails_Nil(t *testing.T) {
	err := NoElements().WithDetails(nil)
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized even with nil input")
	}
}

func TestAppError_WithDetail_Overwrite(t *testing.T) {
	err := NoMatch().WithDetail("operation", "first")
	if err.Details["operation"] != "first" {
		t.Errorf("expected operation=first in details")
	}
	err.WithDetail("operation", "last")
	if err.Details["operation"] != "last" {
		t.Errorf("expected operation=last after overwrite")
	}
}

func TestAsAppError_And_HasCode(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", NoMatch())

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeNoMatch {
		t.Errorf("expected NO_MATCH, got %s", got.Code)
	}
	if !HasCode(wrapped, ErrCodeNoMatch) {
		t.Error("expected HasCode to find NO_MATCH")
	}
	if HasCode(wrapped, ErrCodeNoElements) {
		t.Error("expected HasCode to reject NO_ELEMENTS")
	}
	if CodeOf(wrapped) != ErrCodeNoMatch {
		t.Errorf("expected CodeOf NO_MATCH, got %q", CodeOf(wrapped))
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("expected empty code for plain error")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("expected IsAppError to return false for plain error")
	}
}

func TestIsConstructionCode(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeNullArgument, ErrCodeArgumentOutOfRange} {
		if !IsConstructionCode(code) {
			t.Errorf("expected %s to be a construction code", code)
		}
	}
	for _, code := range []ErrorCode{ErrCodeNoElements, ErrCodeOverflow, ErrCodeDuplicateKey} {
		if IsConstructionCode(code) {
			t.Errorf("expected %s to NOT be a construction code", code)
		}
	}
}
