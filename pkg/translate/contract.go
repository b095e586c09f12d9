// Package translate defines the operation set every entity implements and the reusable
// pieces of its algorithms: the explicit merge step of partial-merge decode, field-wise
// diff helpers, value normalization and change reports.
//
// Partial-merge decode (Decode) never fails. For each declared field the entity coerces
// the dictionary value and merges it only when coercion succeeded, so an absent or
// malformed key keeps the field's current value. Strict decode (StrictDecode) is
// all-or-nothing and fails on the first missing or malformed required field.
package translate

import (
	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/conduit-lang/entitykit/pkg/wire"
)

// Decoder merges the valid fields of a dictionary into the receiver
type Decoder interface {
	Decode(d wire.Dictionary, cfg *registry.Config)
}

// Encoder renders every declared field into a dictionary
type Encoder interface {
	Encode() wire.Dictionary
}

// StrictDecoder populates the receiver from a strict keyed container
type StrictDecoder interface {
	StrictDecode(c wire.KeyedContainer, cfg *registry.Config) error
}

// StrictEncoder writes every declared field into a strict keyed encoder
type StrictEncoder interface {
	StrictEncode(e wire.KeyedEncoder) error
}

// Copier produces a deep, storage-independent copy
type Copier[T any] interface {
	Copy() T
}

// Differ reports whether any declared field differs from other
type Differ[T any] interface {
	Diff(other T) bool
}

// Codec is the bidirectional part of the contract, without the self-typed operations
type Codec interface {
	Decoder
	Encoder
	StrictDecoder
	StrictEncoder
}

// Translatable is the full contract implemented by every entity type T
type Translatable[T any] interface {
	Codec
	Copier[T]
	Differ[T]
}

// Apply runs a partial-merge decode and returns the entity for chaining
func Apply[T Decoder](entity T, d wire.Dictionary, cfg *registry.Config) T {
	entity.Decode(d, cfg)
	return entity
}

// StrictDecodeNew strictly decodes c into a fresh instance from newFn. On failure the
// zero value is returned, never a partially populated entity.
func StrictDecodeNew[T StrictDecoder](newFn func() T, c wire.KeyedContainer, cfg *registry.Config) (T, error) {
	out := newFn()
	if err := out.StrictDecode(c, cfg); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// StrictEncodeDocument strictly encodes entity into a fresh document of the given format
func StrictEncodeDocument(entity StrictEncoder, format wire.Format) ([]byte, error) {
	enc, err := wire.NewEncoder(format)
	if err != nil {
		return nil, err
	}
	if err := entity.StrictEncode(enc); err != nil {
		return nil, err
	}
	return enc.Bytes()
}
