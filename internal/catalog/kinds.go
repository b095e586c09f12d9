// Package catalog holds a small set of concrete entities built on the translation
// contract: page sections resolved through the registry, pages that reference and
// contain sections, and pricing items with normalized fields. Kinds exposes them to
// callers that only know an entity by name.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/conduit-lang/entitykit/pkg/translate"
	"github.com/conduit-lang/entitykit/pkg/wire"
	"go.uber.org/zap"
)

// ErrUnknownKind is returned when a kind name is not in the catalog
var ErrUnknownKind = errors.New("unknown entity kind")

// Item is a catalog entity handled without knowing its concrete type
type Item interface {
	wire.Entity
	translate.Codec
}

// Kind describes one entity type of the catalog
type Kind struct {
	Name        string
	Description string
	// New returns a default-constructed entity, resolved through cfg where the kind is a category
	New func(cfg *registry.Config) Item
	// Copy returns an independent copy of an entity created by New
	Copy func(e Item) Item
	// Diff compares two entities created by New
	Diff func(a, b Item) bool
}

func kindOf[T interface {
	Item
	translate.Copier[T]
	translate.Differ[T]
}](name, description string, newFn func(cfg *registry.Config) T) Kind {
	return Kind{
		Name:        name,
		Description: description,
		New:         func(cfg *registry.Config) Item { return newFn(cfg) },
		Copy:        func(e Item) Item { return e.(T).Copy() },
		Diff: func(a, b Item) bool {
			ta, aok := a.(T)
			tb, bok := b.(T)
			if !aok || !bok {
				return true
			}
			return ta.Diff(tb)
		},
	}
}

var kinds = map[string]Kind{
	"page": kindOf("page", "page with a parent section and child sections",
		func(*registry.Config) *Page { return NewPage() }),
	"pricing": kindOf("pricing", "priced line item",
		func(*registry.Config) *PricingItem { return NewPricingItem() }),
	SectionCategory: kindOf(SectionCategory, "page section, standard or premium by configuration",
		func(cfg *registry.Config) Section { return SectionsFor(cfg).New() }),
}

// Kinds returns every kind in name order
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupKind returns the kind registered under name
func LookupKind(name string) (Kind, error) {
	k, ok := kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// NewConfig builds a registry config for the catalog. premium selects PremiumSection as
// the concrete section type.
func NewConfig(premium bool, logger *zap.Logger) *registry.Config {
	sections := StandardSections
	if premium {
		sections = PremiumSections
	}
	b := registry.NewBuilder(registry.WithLogger(logger))
	registry.MustRegister(b, sections)
	return b.Build()
}
