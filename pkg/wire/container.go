package wire

import (
	"time"

	"github.com/google/uuid"
)

// KeyedContainer is a schema-validated, read-only view over one keyed object of a strict
// document. Unknown keys are ignored. A key whose value is null is treated as absent.
type KeyedContainer interface {
	// Path returns the dotted location of this container within its document
	Path() string
	// Has returns true if the key is present with a non-null value
	Has(key string) bool
	// Keys returns the keys present in the container in document order
	Keys() []string
	// Decode decodes the value under key into v, failing with a
	// *MissingValueError or *TypeMismatchError
	Decode(key string, v any) error
	// DecodeIfPresent decodes the value under key into v when it is present.
	// It reports whether a value was decoded.
	DecodeIfPresent(key string, v any) (bool, error)
	// Nested returns the keyed object stored under key
	Nested(key string) (KeyedContainer, error)
	// NestedSlice returns the sequence of keyed objects stored under key
	NestedSlice(key string) ([]KeyedContainer, error)
}

// KeyedEncoder writes the declared fields of an entity into a strict document.
// Keys are emitted in the order they are first encoded.
type KeyedEncoder interface {
	// Path returns the dotted location of this encoder within its document
	Path() string
	// Encode writes v under key. A nil v is written as null.
	Encode(key string, v any) error
	// EncodeNested writes a keyed object under key, populated by fn
	EncodeNested(key string, fn func(KeyedEncoder) error) error
	// EncodeNestedSlice writes a sequence of n keyed objects under key, each populated by fn
	EncodeNestedSlice(key string, n int, fn func(i int, e KeyedEncoder) error) error
}

// DocumentEncoder is a root KeyedEncoder that can render the finished document
type DocumentEncoder interface {
	KeyedEncoder
	Bytes() ([]byte, error)
}

// Required decodes a required value of type T
func Required[T any](c KeyedContainer, key string) (T, error) {
	var v T
	if err := c.Decode(key, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Optional decodes a value of type T when present. It reports whether the key held a value.
func Optional[T any](c KeyedContainer, key string) (T, bool, error) {
	var v T
	ok, err := c.DecodeIfPresent(key, &v)
	if err != nil || !ok {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// RequiredUUID decodes a required identifier stored as its canonical string form
func RequiredUUID(c KeyedContainer, key string) (uuid.UUID, error) {
	s, err := Required[string](c, key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &TypeMismatchError{Path: joinPath(c.Path(), key), Expected: "uuid", Actual: "string"}
	}
	return id, nil
}

// RequiredTime decodes a required RFC 3339 timestamp
func RequiredTime(c KeyedContainer, key string) (time.Time, error) {
	s, err := Required[string](c, key)
	if err != nil {
		return time.Time{}, err
	}
	return parseTime(c, key, s)
}

// OptionalTime decodes an RFC 3339 timestamp when present. It returns nil when the key is absent.
func OptionalTime(c KeyedContainer, key string) (*time.Time, error) {
	s, ok, err := Optional[string](c, key)
	if err != nil || !ok {
		return nil, err
	}
	t, err := parseTime(c, key, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseTime(c KeyedContainer, key, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &TypeMismatchError{Path: joinPath(c.Path(), key), Expected: "timestamp", Actual: "string"}
	}
	return t.UTC(), nil
}

// FormatTime renders a timestamp the way encoders and dictionaries carry it
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
