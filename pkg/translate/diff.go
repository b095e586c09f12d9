package translate

import (
	"reflect"
	"time"

	"github.com/conduit-lang/entitykit/pkg/wire"
)

// DiffOptional compares two possibly-nil related entities. Two nils are equal; a nil and
// a non-nil differ; otherwise the entities' own Diff decides.
func DiffOptional[T Differ[T]](a, b T) bool {
	aNil, bNil := isNil(a), isNil(b)
	if aNil || bNil {
		return aNil != bNil
	}
	return a.Diff(b)
}

// DiffSlices compares two entity lists element-wise. Order matters.
func DiffSlices[T Differ[T]](a, b []T) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if DiffOptional(a[i], b[i]) {
			return true
		}
	}
	return false
}

// DiffTimes compares two instants, ignoring location
func DiffTimes(a, b time.Time) bool {
	return !a.Equal(b)
}

// DiffOptionalTimes compares two optional instants
func DiffOptionalTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a != b
	}
	return !a.Equal(*b)
}

// DiffDictionaries compares two open-ended dictionaries value-wise
func DiffDictionaries(a, b wire.Dictionary) bool {
	return !wire.Equal(a, b)
}

// DiffStrings compares two string lists element-wise
func DiffStrings(a, b []string) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

// isNil reports nil interfaces and typed nil pointers, maps and slices
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
