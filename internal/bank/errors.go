package bank

import (
	"errors"
	"fmt"
)

// Field names used in FormatError.
const (
	FieldMorningIn    = "morning in"
	FieldMorningOut   = "morning out"
	FieldAfternoonIn  = "afternoon in"
	FieldAfternoonOut = "afternoon out"
)

// ErrInvalidTime matches every FormatError through errors.Is.
var ErrInvalidTime = errors.New("invalid time, expected HH:MM")

// FormatError reports a punch that is not a valid HH:MM time of day.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q is not a valid HH:MM time", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrInvalidTime }
