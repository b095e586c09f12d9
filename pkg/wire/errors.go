package wire

import (
	"errors"
	"fmt"
)

// Common strict-decode error types
var (
	// ErrMissingValue is returned when a required key is absent or null
	ErrMissingValue = errors.New("missing required value")

	// ErrTypeMismatch is returned when a key holds a value of the wrong shape
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNotAnObject is returned when a document or nested value is not a keyed object
	ErrNotAnObject = errors.New("value is not a keyed object")
)

// MissingValueError identifies a required key that was absent during a strict decode
type MissingValueError struct {
	Path string
}

// Error implements the error interface
func (e *MissingValueError) Error() string {
	return fmt.Sprintf("missing required value: %s", e.Path)
}

// Is reports whether target is ErrMissingValue
func (e *MissingValueError) Is(target error) bool {
	return target == ErrMissingValue
}

// TypeMismatchError identifies a key whose value could not be decoded as the expected type
type TypeMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

// Error implements the error interface
func (e *TypeMismatchError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("type mismatch at %s: expected %s", e.Path, e.Expected)
	}
	return fmt.Sprintf("type mismatch at %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// Is reports whether target is ErrTypeMismatch
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// IsMissingValue returns true if the error is a missing-value failure
func IsMissingValue(err error) bool {
	return errors.Is(err, ErrMissingValue)
}

// IsTypeMismatch returns true if the error is a type-mismatch failure
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// FieldPath returns the dotted key path carried by a strict-decode error, or "" if there is none
func FieldPath(err error) string {
	var missing *MissingValueError
	if errors.As(err, &missing) {
		return missing.Path
	}
	var mismatch *TypeMismatchError
	if errors.As(err, &mismatch) {
		return mismatch.Path
	}
	return ""
}

// joinPath appends key to a dotted container path
func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// indexPath appends a sequence index to a container path
func indexPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}
