package registry

import (
	"reflect"

	"github.com/conduit-lang/entitykit/pkg/coerce"
	"github.com/conduit-lang/entitykit/pkg/wire"
	"go.uber.org/zap"
)

// Decodable is the decode half of the translation contract
type Decodable interface {
	// Decode merges the valid fields of d into the receiver
	Decode(d wire.Dictionary, cfg *Config)
	// StrictDecode populates the receiver from c, failing on missing or malformed fields
	StrictDecode(c wire.KeyedContainer, cfg *Config) error
}

// Prototype is what a Category needs from the concrete types it instantiates: the
// decode operations, an identifier to match sequence elements by and a copy to merge
// into
type Prototype[C any] interface {
	Decodable
	wire.Entity
	Copy() C
}

// Category resolves one abstract entity category C to a concrete implementation.
// Every method swallows decode failures and reports them as absence.
type Category[C any] interface {
	// Name is the key the category is registered under
	Name() string
	// New returns a default-constructed instance of the concrete type
	New() C
	// DecodeOne strictly decodes the object under key as the concrete type
	DecodeOne(c wire.KeyedContainer, key string, cfg *Config) (C, bool)
	// DecodeMany strictly decodes the sequence under key. An absent or malformed
	// sequence, or any element that fails to decode, yields an empty slice.
	DecodeMany(c wire.KeyedContainer, key string, cfg *Config) []C
	// MergeOne resolves d[key] against the field's current value. A dictionary is
	// decoded into a copy of current when current has the registered concrete type,
	// otherwise into a fresh instance. ok is false when the key is absent or unusable.
	MergeOne(d wire.Dictionary, key string, current C, cfg *Config) (C, bool)
	// MergeMany resolves each element of the sequence d[key], dropping elements that
	// cannot be resolved. A dictionary element is decoded into a copy of the current
	// element with the same identifier, or when it carries no identifier, of the
	// current element at the same position. ok is false when the key is absent or not
	// a sequence.
	MergeMany(d wire.Dictionary, key string, current []C, cfg *Config) ([]C, bool)
	// Resolve reduces an untyped value to C: an entity already of category C is
	// returned unchanged, a dictionary is decoded into a fresh instance and any other
	// shape is rejected
	Resolve(v any, cfg *Config) (C, bool)
}

// factoryCategory is the default Category, instantiating C through a constructor
type factoryCategory[C Prototype[C]] struct {
	name     string
	newFn    func() C
	concrete reflect.Type
}

// NewCategory creates a Category whose concrete type is produced by newFn. C is usually
// an interface naming the abstract category, and newFn returns the concrete type
// registered for it.
func NewCategory[C Prototype[C]](name string, newFn func() C) Category[C] {
	return &factoryCategory[C]{name: name, newFn: newFn, concrete: reflect.TypeOf(newFn())}
}

func (f *factoryCategory[C]) Name() string { return f.name }

func (f *factoryCategory[C]) New() C { return f.newFn() }

func (f *factoryCategory[C]) DecodeOne(c wire.KeyedContainer, key string, cfg *Config) (C, bool) {
	var zero C

	nested, err := c.Nested(key)
	if err != nil {
		if !wire.IsMissingValue(err) {
			f.debug(cfg, "strict decode failed", key, err)
		}
		return zero, false
	}

	out := f.newFn()
	if err := out.StrictDecode(nested, cfg); err != nil {
		f.debug(cfg, "strict decode failed", key, err)
		return zero, false
	}
	return out, true
}

func (f *factoryCategory[C]) DecodeMany(c wire.KeyedContainer, key string, cfg *Config) []C {
	items, err := c.NestedSlice(key)
	if err != nil {
		if !wire.IsMissingValue(err) {
			f.debug(cfg, "strict sequence decode failed", key, err)
		}
		return []C{}
	}

	out := make([]C, 0, len(items))
	for _, item := range items {
		decoded := f.newFn()
		if err := decoded.StrictDecode(item, cfg); err != nil {
			f.debug(cfg, "strict sequence decode failed", key, err)
			return []C{}
		}
		out = append(out, decoded)
	}
	return out
}

func (f *factoryCategory[C]) MergeOne(d wire.Dictionary, key string, current C, cfg *Config) (C, bool) {
	raw, ok := d[key]
	if !ok {
		var zero C
		return zero, false
	}
	return f.resolve(raw, key, current, cfg)
}

func (f *factoryCategory[C]) MergeMany(d wire.Dictionary, key string, current []C, cfg *Config) ([]C, bool) {
	raw, ok := d[key]
	if !ok {
		return nil, false
	}

	items, ok := sequence(raw)
	if !ok {
		f.debug(cfg, "merge ignored non-sequence value", key, nil)
		return nil, false
	}

	out := make([]C, 0, len(items))
	for _, item := range items {
		if resolved, ok := f.resolve(item, key, f.counterpart(item, current, len(out)), cfg); ok {
			out = append(out, resolved)
		}
	}
	return out, true
}

// counterpart picks the current element a sequence item merges into: the element with
// the item's identifier when it has one, otherwise the element at position i
func (f *factoryCategory[C]) counterpart(item any, current []C, i int) C {
	var zero C

	d, ok := wire.AsDictionary(item)
	if !ok {
		return zero
	}
	if id, ok := coerce.Identifier(d["id"]); ok {
		for _, c := range current {
			if f.matches(c) && c.EntityID() == id {
				return c
			}
		}
		return zero
	}
	if i < len(current) {
		return current[i]
	}
	return zero
}

// matches reports whether c is a non-nil instance of the registered concrete type
func (f *factoryCategory[C]) matches(c C) bool {
	v := reflect.ValueOf(c)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return false
	}
	return v.Type() == f.concrete
}

func (f *factoryCategory[C]) Resolve(v any, cfg *Config) (C, bool) {
	var zero C
	return f.resolve(v, "", zero, cfg)
}

func (f *factoryCategory[C]) resolve(v any, key string, current C, cfg *Config) (C, bool) {
	var zero C

	in := wire.Classify(v)
	switch in.Kind {
	case wire.InputEntity:
		entity, ok := in.Entity.(C)
		if !ok {
			f.debug(cfg, "entity belongs to another category", key, nil)
			return zero, false
		}
		return entity, true
	case wire.InputDictionary:
		var out C
		if f.matches(current) {
			out = current.Copy()
		} else {
			out = f.newFn()
		}
		out.Decode(in.Dictionary, cfg)
		return out, true
	case wire.InputOther:
		if v != nil {
			f.debug(cfg, "value cannot be resolved", key, nil)
		}
		return zero, false
	}
	return zero, false
}

func (f *factoryCategory[C]) debug(cfg *Config, msg, key string, err error) {
	fields := []zap.Field{zap.String("category", f.name)}
	if key != "" {
		fields = append(fields, zap.String("key", key))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	cfg.Logger().Debug(msg, fields...)
}

// sequence returns v as a slice of untyped elements when it is any slice or array
func sequence(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
