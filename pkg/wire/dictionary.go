// Package wire defines the untyped forms that cross into the translation layer: the
// string-keyed Dictionary used for partial-merge decode, the strict KeyedContainer and
// KeyedEncoder formats, and the Input union used for polymorphic dispatch.
package wire

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
)

// Dictionary is the wire/storage form of an entity: an untyped string-keyed map
type Dictionary map[string]any

// Keys returns the dictionary keys in sorted order
func (d Dictionary) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has returns true if the key is present, even when its value is nil
func (d Dictionary) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Clone returns a deep copy of the dictionary. Nested maps and slices are copied so the
// result shares no mutable storage with d. A nil dictionary clones to an empty one.
func (d Dictionary) Clone() Dictionary {
	out := make(Dictionary, len(d))
	for k, v := range d {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep copies a dictionary value
func CloneValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case Dictionary:
		return val.Clone()
	case map[string]any:
		return Dictionary(val).Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	case []Dictionary:
		out := make([]Dictionary, len(val))
		for i, item := range val {
			out[i] = item.Clone()
		}
		return out
	case []map[string]any:
		out := make([]Dictionary, len(val))
		for i, item := range val {
			out[i] = Dictionary(item).Clone()
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice:
			if rv.IsNil() {
				return v
			}
			out := make([]any, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				out[i] = CloneValue(rv.Index(i).Interface())
			}
			return out
		case reflect.Map:
			if rv.IsNil() {
				return v
			}
			out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				item := reflect.ValueOf(CloneValue(iter.Value().Interface()))
				if !item.IsValid() {
					item = reflect.Zero(rv.Type().Elem())
				} else if !item.Type().AssignableTo(rv.Type().Elem()) {
					item = iter.Value()
				}
				out.SetMapIndex(iter.Key(), item)
			}
			return out.Interface()
		}
		// Primitives and structs are copied by value
		return v
	}
}

// Equal compares two dictionaries value-wise. Numbers compare by value regardless of
// their Go representation, so a decoded JSON float64 equals the int it was encoded from.
func Equal(a, b Dictionary) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !ValueEqual(av, bv) {
			return false
		}
	}
	return true
}

// ValueEqual compares two dictionary values, normalizing numbers, maps and sequences
func ValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, ok := number(a); ok {
		bf, ok := number(b)
		return ok && af == bf
	}

	if ad, ok := AsDictionary(a); ok {
		bd, ok := AsDictionary(b)
		return ok && Equal(ad, bd)
	}

	if as, ok := asSequence(a); ok {
		bs, ok := asSequence(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !ValueEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

// AsDictionary returns v as a Dictionary when it is any string-keyed map shape
func AsDictionary(v any) (Dictionary, bool) {
	switch m := v.(type) {
	case Dictionary:
		return m, m != nil
	case map[string]any:
		return Dictionary(m), m != nil
	case map[string]string:
		if m == nil {
			return nil, false
		}
		out := make(Dictionary, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	case map[any]any:
		if m == nil {
			return nil, false
		}
		out := make(Dictionary, len(m))
		for k, item := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = item
		}
		return out, true
	}
	return nil, false
}

func asSequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		// []byte compares as an opaque value
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func number(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
