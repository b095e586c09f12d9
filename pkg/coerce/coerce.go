// Package coerce converts untyped dictionary values into primitive Go types.
// Every function takes the raw value as it arrives from a wire.Dictionary and reports
// whether it could be interpreted unambiguously as the target type. An absent value and
// an uncoercible one are indistinguishable to the caller: both return false.
// None of these functions panic or have side effects.
package coerce

import (
	"encoding"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/google/uuid"
)

// String returns v as a string. Numbers and booleans are not treated as strings.
func String(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	case []byte:
		if s == nil {
			return "", false
		}
		return string(s), true
	case json.Number:
		return s.String(), true
	case encoding.TextMarshaler:
		if isNilPointer(v) {
			return "", false
		}
		text, err := s.MarshalText()
		if err != nil {
			return "", false
		}
		return string(text), true
	}
	return "", false
}

// Bool returns v as a bool. Strings such as "true", "no" or "1" and the integers 0 and 1
// are accepted.
func Bool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case *bool:
		if b == nil {
			return false, false
		}
		return *b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "on", "1":
			return true, true
		case "false", "no", "off", "0":
			return false, true
		}
		return false, false
	}

	if i, ok := Int64(v); ok && !isString(v) {
		switch i {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	}
	return false, false
}

// Float64 returns v as a finite float64. Numeric strings are parsed.
func Float64(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		rv, ok := deref(v)
		if !ok {
			return 0, false
		}
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return 0, false
		}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int64 returns v as an int64. Floats and numeric strings are accepted only when they
// hold an integral value within range.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		return integral(n.Float64())
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		return integral(strconv.ParseFloat(s, 64))
	}

	rv, ok := deref(v)
	if !ok {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return integral(rv.Float(), nil)
	}
	return 0, false
}

// Int returns v as an int. See Int64 for accepted representations.
func Int(v any) (int, bool) {
	i, ok := Int64(v)
	if !ok || i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}

// integral converts a parsed float to int64 when it has no fractional part and fits
func integral(f float64, err error) (int64, bool) {
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// timeLayouts are tried in order when coercing a string to a timestamp
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Epoch seconds accepted by Time: years 1 through 9999, the range RFC 3339 can render
const (
	minEpochSeconds = -62135596800
	maxEpochSeconds = 253402300799
)

// Time returns v as a UTC timestamp. ISO 8601 strings and Unix epoch seconds, as numbers
// or numeric strings, are accepted.
func Time(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
	}

	if secs, ok := Float64(v); ok && secs >= minEpochSeconds && secs <= maxEpochSeconds {
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC(), true
	}
	return time.Time{}, false
}

// UUID returns v as a non-nil UUID
func UUID(v any) (uuid.UUID, bool) {
	var id uuid.UUID
	switch u := v.(type) {
	case uuid.UUID:
		id = u
	case *uuid.UUID:
		if u == nil {
			return uuid.Nil, false
		}
		id = *u
	case [16]byte:
		id = uuid.UUID(u)
	case string:
		parsed, err := uuid.Parse(strings.TrimSpace(u))
		if err != nil {
			return uuid.Nil, false
		}
		id = parsed
	default:
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// Identifier returns v as an entity identifier: any non-blank string or a valid UUID
func Identifier(v any) (string, bool) {
	if id, ok := UUID(v); ok {
		return id.String(), true
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// Dict returns v as a nested dictionary
func Dict(v any) (wire.Dictionary, bool) {
	return wire.AsDictionary(v)
}

// DictSlice returns v as a sequence of dictionaries. Every element must be a dictionary;
// a single element of another shape fails the whole value.
func DictSlice(v any) ([]wire.Dictionary, bool) {
	switch s := v.(type) {
	case []wire.Dictionary:
		return s, s != nil
	case []map[string]any:
		if s == nil {
			return nil, false
		}
		out := make([]wire.Dictionary, len(s))
		for i, m := range s {
			out[i] = wire.Dictionary(m)
		}
		return out, true
	case []any:
		if s == nil {
			return nil, false
		}
		out := make([]wire.Dictionary, len(s))
		for i, item := range s {
			d, ok := wire.AsDictionary(item)
			if !ok {
				return nil, false
			}
			out[i] = d
		}
		return out, true
	}
	return nil, false
}

// Slice returns v as a sequence of untyped values
func Slice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, s != nil
	}
	if d, ok := DictSlice(v); ok {
		out := make([]any, len(d))
		for i := range d {
			out[i] = d[i]
		}
		return out, true
	}
	if s, ok := v.([]string); ok && s != nil {
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	}
	return nil, false
}

// StringSlice returns v as a sequence of strings. Every element must be a string.
func StringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		if s == nil {
			return nil, false
		}
		return append([]string(nil), s...), true
	case []any:
		if s == nil {
			return nil, false
		}
		out := make([]string, len(s))
		for i, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = str
		}
		return out, true
	}
	return nil, false
}

// deref unwraps pointers, failing on nil
func deref(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func isString(v any) bool {
	switch v.(type) {
	case string, json.Number:
		return true
	}
	return false
}
