package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// jsonContainer is a KeyedContainer over one JSON object
type jsonContainer struct {
	path   string
	keys   []string
	fields map[string]json.RawMessage
}

// NewJSONContainer parses a JSON document whose root must be an object
func NewJSONContainer(data []byte) (KeyedContainer, error) {
	return newJSONContainer("", data)
}

func newJSONContainer(path string, data []byte) (*jsonContainer, error) {
	if jsonKind(data) != "object" {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotAnObject, displayPath(path), jsonKind(data))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse JSON object at %s: %w", displayPath(path), err)
	}

	keys, err := jsonObjectKeys(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON object at %s: %w", displayPath(path), err)
	}

	return &jsonContainer{path: path, keys: keys, fields: fields}, nil
}

func (c *jsonContainer) Path() string { return c.path }

func (c *jsonContainer) Keys() []string {
	return append([]string(nil), c.keys...)
}

func (c *jsonContainer) Has(key string) bool {
	_, ok := c.raw(key)
	return ok
}

func (c *jsonContainer) raw(key string) (json.RawMessage, bool) {
	raw, ok := c.fields[key]
	if !ok || jsonKind(raw) == "null" {
		return nil, false
	}
	return raw, true
}

func (c *jsonContainer) Decode(key string, v any) error {
	raw, ok := c.raw(key)
	if !ok {
		return &MissingValueError{Path: joinPath(c.path, key)}
	}
	return c.decodeRaw(key, raw, v)
}

func (c *jsonContainer) DecodeIfPresent(key string, v any) (bool, error) {
	raw, ok := c.raw(key)
	if !ok {
		return false, nil
	}
	if err := c.decodeRaw(key, raw, v); err != nil {
		return false, err
	}
	return true, nil
}

func (c *jsonContainer) decodeRaw(key string, raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		mismatch := &TypeMismatchError{
			Path:     joinPath(c.path, key),
			Expected: targetType(v),
			Actual:   jsonKind(raw),
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			mismatch.Expected = typeErr.Type.String()
			if typeErr.Field != "" {
				mismatch.Path = joinPath(mismatch.Path, typeErr.Field)
			}
			mismatch.Actual = typeErr.Value
		}
		return mismatch
	}
	return nil
}

func (c *jsonContainer) Nested(key string) (KeyedContainer, error) {
	raw, ok := c.raw(key)
	if !ok {
		return nil, &MissingValueError{Path: joinPath(c.path, key)}
	}
	path := joinPath(c.path, key)
	if kind := jsonKind(raw); kind != "object" {
		return nil, &TypeMismatchError{Path: path, Expected: "object", Actual: kind}
	}
	return newJSONContainer(path, raw)
}

func (c *jsonContainer) NestedSlice(key string) ([]KeyedContainer, error) {
	raw, ok := c.raw(key)
	if !ok {
		return nil, &MissingValueError{Path: joinPath(c.path, key)}
	}
	path := joinPath(c.path, key)
	if kind := jsonKind(raw); kind != "array" {
		return nil, &TypeMismatchError{Path: path, Expected: "array", Actual: kind}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &TypeMismatchError{Path: path, Expected: "array", Actual: "invalid JSON"}
	}

	out := make([]KeyedContainer, 0, len(items))
	for i, item := range items {
		itemPath := indexPath(path, i)
		if kind := jsonKind(item); kind != "object" {
			return nil, &TypeMismatchError{Path: itemPath, Expected: "object", Actual: kind}
		}
		nested, err := newJSONContainer(itemPath, item)
		if err != nil {
			return nil, err
		}
		out = append(out, nested)
	}
	return out, nil
}

// jsonObjectKeys returns the keys of a JSON object in document order
func jsonObjectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		// Skip the value
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// jsonKind names the JSON value type of raw
func jsonKind(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "empty"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func targetType(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

func displayPath(path string) string {
	if path == "" {
		return "document root"
	}
	return path
}

// JSONEncoder is a DocumentEncoder producing a JSON object
type JSONEncoder struct {
	path   string
	keys   []string
	values map[string]any
}

// NewJSONEncoder creates an encoder for a JSON document root
func NewJSONEncoder() *JSONEncoder {
	return newJSONEncoder("")
}

func newJSONEncoder(path string) *JSONEncoder {
	return &JSONEncoder{path: path, values: make(map[string]any)}
}

func (e *JSONEncoder) Path() string { return e.path }

func (e *JSONEncoder) set(key string, v any) {
	if _, exists := e.values[key]; !exists {
		e.keys = append(e.keys, key)
	}
	e.values[key] = v
}

func (e *JSONEncoder) Encode(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", joinPath(e.path, key), err)
	}
	e.set(key, json.RawMessage(data))
	return nil
}

func (e *JSONEncoder) EncodeNested(key string, fn func(KeyedEncoder) error) error {
	child := newJSONEncoder(joinPath(e.path, key))
	if err := fn(child); err != nil {
		return err
	}
	e.set(key, child)
	return nil
}

func (e *JSONEncoder) EncodeNestedSlice(key string, n int, fn func(i int, e KeyedEncoder) error) error {
	path := joinPath(e.path, key)
	children := make([]*JSONEncoder, n)
	for i := 0; i < n; i++ {
		children[i] = newJSONEncoder(indexPath(path, i))
		if err := fn(i, children[i]); err != nil {
			return err
		}
	}
	e.set(key, children)
	return nil
}

// MarshalJSON renders the object with keys in encoding order
func (e *JSONEncoder) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		value, err := json.Marshal(e.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Bytes renders the finished document
func (e *JSONEncoder) Bytes() ([]byte, error) {
	return e.MarshalJSON()
}
