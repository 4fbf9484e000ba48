package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDescriptor is matched by the error returned from Result.Err.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// ValidationResult collects every violation found in one descriptor.
type ValidationResult struct {
	Errors []FieldError
	Valid  bool
}

// FieldError is one violation. Field is a JSON pointer into the descriptor.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (r *ValidationResult) add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
	r.Valid = false
}

// Err returns nil for a valid result, otherwise an error wrapping
// ErrInvalidDescriptor that lists every violation.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.String()
	}
	return fmt.Errorf("%w: %s", ErrInvalidDescriptor, strings.Join(msgs, "; "))
}
