package wire

import (
	"errors"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// yamlContainer is a KeyedContainer over one YAML mapping node
type yamlContainer struct {
	path string
	node *yaml.Node
}

// NewYAMLContainer parses a YAML document whose root must be a mapping
func NewYAMLContainer(data []byte) (KeyedContainer, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML document: %w", err)
	}

	node := resolveAlias(&doc)
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = resolveAlias(node.Content[0])
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document root is %s", ErrNotAnObject, yamlKind(node))
	}
	return &yamlContainer{node: node}, nil
}

func (c *yamlContainer) Path() string { return c.path }

func (c *yamlContainer) Keys() []string {
	keys := make([]string, 0, len(c.node.Content)/2)
	for i := 0; i+1 < len(c.node.Content); i += 2 {
		keys = append(keys, c.node.Content[i].Value)
	}
	return keys
}

// lookup returns the non-null value node stored under key
func (c *yamlContainer) lookup(key string) (*yaml.Node, bool) {
	for i := 0; i+1 < len(c.node.Content); i += 2 {
		if c.node.Content[i].Value != key {
			continue
		}
		value := resolveAlias(c.node.Content[i+1])
		if isYAMLNull(value) {
			return nil, false
		}
		return value, true
	}
	return nil, false
}

func (c *yamlContainer) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c *yamlContainer) Decode(key string, v any) error {
	node, ok := c.lookup(key)
	if !ok {
		return &MissingValueError{Path: joinPath(c.path, key)}
	}
	return c.decodeNode(key, node, v)
}

func (c *yamlContainer) DecodeIfPresent(key string, v any) (bool, error) {
	node, ok := c.lookup(key)
	if !ok {
		return false, nil
	}
	if err := c.decodeNode(key, node, v); err != nil {
		return false, err
	}
	return true, nil
}

func (c *yamlContainer) decodeNode(key string, node *yaml.Node, v any) error {
	if path, bad := mistagged(joinPath(c.path, key), node, reflect.TypeOf(v)); bad != nil {
		return &TypeMismatchError{Path: path, Expected: targetType(v), Actual: yamlKind(bad)}
	}
	if err := node.Decode(v); err != nil {
		mismatch := &TypeMismatchError{
			Path:     joinPath(c.path, key),
			Expected: targetType(v),
			Actual:   yamlKind(node),
		}
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			mismatch.Actual = err.Error()
		}
		return mismatch
	}
	return nil
}

func (c *yamlContainer) Nested(key string) (KeyedContainer, error) {
	node, ok := c.lookup(key)
	if !ok {
		return nil, &MissingValueError{Path: joinPath(c.path, key)}
	}
	path := joinPath(c.path, key)
	if node.Kind != yaml.MappingNode {
		return nil, &TypeMismatchError{Path: path, Expected: "object", Actual: yamlKind(node)}
	}
	return &yamlContainer{path: path, node: node}, nil
}

func (c *yamlContainer) NestedSlice(key string) ([]KeyedContainer, error) {
	node, ok := c.lookup(key)
	if !ok {
		return nil, &MissingValueError{Path: joinPath(c.path, key)}
	}
	path := joinPath(c.path, key)
	if node.Kind != yaml.SequenceNode {
		return nil, &TypeMismatchError{Path: path, Expected: "array", Actual: yamlKind(node)}
	}

	out := make([]KeyedContainer, 0, len(node.Content))
	for i, item := range node.Content {
		item = resolveAlias(item)
		itemPath := indexPath(path, i)
		if item.Kind != yaml.MappingNode {
			return nil, &TypeMismatchError{Path: itemPath, Expected: "object", Actual: yamlKind(item)}
		}
		out = append(out, &yamlContainer{path: itemPath, node: item})
	}
	return out, nil
}

// mistagged finds a scalar whose tag does not match the string or bool it is decoded
// into. yaml.v3 would otherwise decode any scalar into a string and YAML 1.1 words
// such as "yes" into a bool.
func mistagged(path string, n *yaml.Node, t reflect.Type) (string, *yaml.Node) {
	n = resolveAlias(n)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if n == nil || t == nil || isYAMLNull(n) {
		return "", nil
	}

	switch t.Kind() {
	case reflect.String:
		if n.Kind != yaml.ScalarNode || (n.ShortTag() != "!!str" && n.ShortTag() != "!!timestamp") {
			return path, n
		}
	case reflect.Bool:
		if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!bool" {
			return path, n
		}
	case reflect.Slice, reflect.Array:
		if n.Kind != yaml.SequenceNode {
			return "", nil
		}
		for i, item := range n.Content {
			if p, bad := mistagged(indexPath(path, i), item, t.Elem()); bad != nil {
				return p, bad
			}
		}
	case reflect.Map:
		if n.Kind != yaml.MappingNode {
			return "", nil
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			if p, bad := mistagged(joinPath(path, n.Content[i].Value), n.Content[i+1], t.Elem()); bad != nil {
				return p, bad
			}
		}
	}
	return "", nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isYAMLNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// yamlKind names the YAML node type using the same vocabulary as the JSON container
func yamlKind(n *yaml.Node) string {
	if n == nil {
		return "null"
	}
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	case yaml.DocumentNode:
		return "document"
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			return "number"
		case "!!bool":
			return "bool"
		case "!!null":
			return "null"
		default:
			return "string"
		}
	}
	return "unknown"
}

// YAMLEncoder is a DocumentEncoder producing a YAML mapping
type YAMLEncoder struct {
	path string
	node *yaml.Node
}

// NewYAMLEncoder creates an encoder for a YAML document root
func NewYAMLEncoder() *YAMLEncoder {
	return newYAMLEncoder("")
}

func newYAMLEncoder(path string) *YAMLEncoder {
	return &YAMLEncoder{path: path, node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func (e *YAMLEncoder) Path() string { return e.path }

func (e *YAMLEncoder) set(key string, value *yaml.Node) {
	for i := 0; i+1 < len(e.node.Content); i += 2 {
		if e.node.Content[i].Value == key {
			e.node.Content[i+1] = value
			return
		}
	}
	e.node.Content = append(e.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

func (e *YAMLEncoder) Encode(key string, v any) error {
	value := &yaml.Node{}
	if err := value.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", joinPath(e.path, key), err)
	}
	e.set(key, value)
	return nil
}

func (e *YAMLEncoder) EncodeNested(key string, fn func(KeyedEncoder) error) error {
	child := newYAMLEncoder(joinPath(e.path, key))
	if err := fn(child); err != nil {
		return err
	}
	e.set(key, child.node)
	return nil
}

func (e *YAMLEncoder) EncodeNestedSlice(key string, n int, fn func(i int, e KeyedEncoder) error) error {
	path := joinPath(e.path, key)
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for i := 0; i < n; i++ {
		child := newYAMLEncoder(indexPath(path, i))
		if err := fn(i, child); err != nil {
			return err
		}
		seq.Content = append(seq.Content, child.node)
	}
	e.set(key, seq)
	return nil
}

// Bytes renders the finished document
func (e *YAMLEncoder) Bytes() ([]byte, error) {
	return yaml.Marshal(e.node)
}
