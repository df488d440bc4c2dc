package derive

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned (wrapped in a MissingFieldError) by generated
// Build methods when a required field was never set.
var ErrMissingField = errors.New("derive: missing required field")

// MissingFieldError reports the first required field that was not set
// on a builder when Build was called.
type MissingFieldError struct {
	Type  string // Struct name
	Field string // Field name
}

// Error returns the error string.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("derive: missing required field %q", e.Type+"."+e.Field)
}

// Is reports whether the target error matches MissingFieldError.
// This allows errors.Is(missingErr, ErrMissingField) to return true.
func (e *MissingFieldError) Is(err error) bool {
	return err == ErrMissingField
}

// NewMissingFieldError returns a new MissingFieldError for the given struct field.
func NewMissingFieldError(typ, field string) *MissingFieldError {
	return &MissingFieldError{Type: typ, Field: field}
}

// IsMissingField returns true if the error is a MissingFieldError.
func IsMissingField(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingFieldError
	return errors.As(err, &e) || errors.Is(err, ErrMissingField)
}

// MissingField returns the name of the missing field carried by err,
// or "" if err is not a MissingFieldError.
func MissingField(err error) string {
	var e *MissingFieldError
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
