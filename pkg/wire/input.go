package wire

import "reflect"

// Entity is implemented by every typed domain object that crosses the wire boundary.
// The identifier is the only capability the boundary needs to tell an entity apart
// from raw data.
type Entity interface {
	EntityID() string
}

// InputKind tags the shape of an untyped value arriving at the boundary
type InputKind int

const (
	// InputOther is any value that is neither a dictionary nor an entity
	InputOther InputKind = iota
	// InputDictionary is a string-keyed map that can be decoded
	InputDictionary
	// InputEntity is an already-constructed entity
	InputEntity
)

// String returns the string representation of the input kind
func (k InputKind) String() string {
	switch k {
	case InputDictionary:
		return "dictionary"
	case InputEntity:
		return "entity"
	default:
		return "other"
	}
}

// Input is the tagged union produced by Classify. Exactly one of Dictionary or Entity is
// set, according to Kind; Raw always holds the original value.
type Input struct {
	Kind       InputKind
	Dictionary Dictionary
	Entity     Entity
	Raw        any
}

// Classify inspects the shape of v once so callers can switch on Kind instead of
// repeating runtime type tests
func Classify(v any) Input {
	if e, ok := v.(Entity); ok && !isNilEntity(e) {
		return Input{Kind: InputEntity, Entity: e, Raw: v}
	}
	if d, ok := AsDictionary(v); ok {
		return Input{Kind: InputDictionary, Dictionary: d, Raw: v}
	}
	return Input{Kind: InputOther, Raw: v}
}

// isNilEntity reports typed nil pointers, which satisfy Entity but cannot be used as one
func isNilEntity(e Entity) bool {
	if e == nil {
		return true
	}
	rv := reflect.ValueOf(e)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
