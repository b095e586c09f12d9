package translate

import (
	"github.com/conduit-lang/entitykit/pkg/coerce"
	"github.com/conduit-lang/entitykit/pkg/wire"
)

// CoerceFunc converts an untyped dictionary value into T, reporting success
type CoerceFunc[T any] func(v any) (T, bool)

// Merge is the merge-or-keep step of partial-merge decode: dst is overwritten only when
// ok is true. It reports whether dst was written.
func Merge[T any](dst *T, v T, ok bool) bool {
	if !ok {
		return false
	}
	*dst = v
	return true
}

// MergeField coerces d[key] and merges the result into dst
func MergeField[T any](dst *T, d wire.Dictionary, key string, coerceFn CoerceFunc[T]) bool {
	v, ok := coerceFn(d[key])
	return Merge(dst, v, ok)
}

// MergeNormalized is MergeField for fields with a known valid domain; normalize maps a
// coerced value into that domain before it is merged
func MergeNormalized[T any](dst *T, d wire.Dictionary, key string, coerceFn CoerceFunc[T], normalize func(T) T) bool {
	v, ok := coerceFn(d[key])
	if ok && normalize != nil {
		v = normalize(v)
	}
	return Merge(dst, v, ok)
}

// MergeOptional merges d[key] into an optional field. A coerced value is stored
// through a fresh pointer so dst never aliases caller storage.
func MergeOptional[T any](dst **T, d wire.Dictionary, key string, coerceFn CoerceFunc[T]) bool {
	v, ok := coerceFn(d[key])
	if !ok {
		return false
	}
	*dst = &v
	return true
}

// MergeNested hands the nested dictionary under key to merge, when there is one
func MergeNested(d wire.Dictionary, key string, merge func(wire.Dictionary)) bool {
	nested, ok := coerce.Dict(d[key])
	if !ok {
		return false
	}
	merge(nested)
	return true
}

// MergeDictionary merges the nested dictionary under key into dst key by key: keys
// present in the input overwrite, keys absent from it are kept
func MergeDictionary(dst *wire.Dictionary, d wire.Dictionary, key string) bool {
	return MergeNested(d, key, func(nested wire.Dictionary) {
		if *dst == nil {
			*dst = make(wire.Dictionary, len(nested))
		}
		for k, v := range nested {
			(*dst)[k] = wire.CloneValue(v)
		}
	})
}
