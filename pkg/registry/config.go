// Package registry resolves abstract entity categories to caller-supplied concrete types
// at decode time. A Config bundles one Category per abstract category and is passed
// explicitly through every decode call; the translation core never needs compile-time
// knowledge of which concrete types exist.
//
// A Config is immutable once built and may be shared by concurrent decode calls.
package registry

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Config holds the categories available to a decode call
type Config struct {
	categories map[string]any
	logger     *zap.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the logger used to report swallowed decode failures
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder collects categories before freezing them into a Config
type Builder struct {
	categories map[string]any
	logger     *zap.Logger
}

// NewBuilder creates an empty Builder
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		categories: make(map[string]any),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds a category to the builder. Registering two categories under the same
// name is an error.
func Register[C any](b *Builder, category Category[C]) error {
	if category == nil {
		return fmt.Errorf("category cannot be nil")
	}
	name := category.Name()
	if name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if _, exists := b.categories[name]; exists {
		return fmt.Errorf("category %s already registered", name)
	}
	b.categories[name] = category
	return nil
}

// MustRegister is like Register but panics on error. It is intended for package-level
// wiring where a duplicate name is a programming error.
func MustRegister[C any](b *Builder, category Category[C]) *Builder {
	if err := Register(b, category); err != nil {
		panic(err)
	}
	return b
}

// Build freezes the registered categories into a Config. Later changes to the builder
// do not affect the returned Config.
func (b *Builder) Build() *Config {
	categories := make(map[string]any, len(b.categories))
	for name, category := range b.categories {
		categories[name] = category
	}
	return &Config{categories: categories, logger: b.logger}
}

// Logger returns the logger for swallowed decode failures. A nil Config has a no-op logger.
func (c *Config) Logger() *zap.Logger {
	if c == nil || c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// Names returns the registered category names in sorted order
func (c *Config) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the category registered under name. It reports false when no category
// is registered or the registered category resolves a different type.
func Lookup[C any](c *Config, name string) (Category[C], bool) {
	if c == nil {
		return nil, false
	}
	category, ok := c.categories[name].(Category[C])
	return category, ok
}

// LookupOr returns the category registered under name, or fallback when there is none
func LookupOr[C any](c *Config, name string, fallback Category[C]) Category[C] {
	if category, ok := Lookup[C](c, name); ok {
		return category
	}
	return fallback
}

// Override returns a copy of c in which the category's name resolves to category.
// The receiver is left unchanged, so a per-call override never leaks into other callers.
func Override[C any](c *Config, category Category[C]) *Config {
	out := &Config{
		categories: make(map[string]any),
		logger:     c.Logger(),
	}
	if c != nil {
		for name, existing := range c.categories {
			out.categories[name] = existing
		}
	}
	out.categories[category.Name()] = category
	return out
}
