package records

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrTooFewFields    = errors.New("too few fields")
)

// ParseError provides structured error information for a rejected line.
type ParseError struct {
	Stream Stream // Stream being scanned
	Line   int    // 1-based line number
	Field  string // Field that failed to tokenize, if any
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s line %d (field %s): %v", e.Stream, e.Line, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s line %d: %v", e.Stream, e.Line, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *ParseError) Is(target error) bool {
	if target == ErrMalformedRecord {
		return true
	}
	return errors.Is(e.Cause, target)
}
