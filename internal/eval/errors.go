package eval

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes evaluator errors.
type RuntimeErrorCode string

const (
	// CodeInvariantViolation indicates the evaluator was invoked on an
	// unvalidated tree, or a validated tree references a helper with no
	// implementation binding. Both are programming errors in the
	// integration, never expected at runtime - validation is mandatory
	// and adapter completeness is checked at construction.
	CodeInvariantViolation RuntimeErrorCode = "INVARIANT_VIOLATION"
)

// RuntimeError represents an error detected during rule evaluation.
// There is no recoverable evaluation error by design: a well-formed,
// validated tree over a complete adapter cannot fail.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Helper names the offending helper, when one is involved.
	Helper string
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Helper != "" {
		return fmt.Sprintf("%s: %s (helper=%s)", e.Code, e.Message, e.Helper)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvariantViolation returns true if the error is an invariant
// violation. Uses errors.As to handle wrapped errors.
func IsInvariantViolation(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == CodeInvariantViolation
	}
	return false
}

func invariantViolation(format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    CodeInvariantViolation,
		Message: fmt.Sprintf(format, args...),
	}
}
