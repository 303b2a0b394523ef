package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrValidationFailed indicates a setting holds an unusable value.
	ErrValidationFailed = errors.New("validation failed")

	// ErrUnknownStyle indicates a [styles] key that is not a style property.
	ErrUnknownStyle = errors.New("unknown style property")

	// ErrInvalidDuration indicates a duration that cannot be parsed.
	ErrInvalidDuration = errors.New("invalid duration")
)

// ValidationError reports an invalid setting.
type ValidationError struct {
	// Path is the dotted setting path, e.g. "guard.max_steps".
	Path  string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid value %v: %v", e.Path, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
