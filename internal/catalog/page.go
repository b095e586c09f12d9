package catalog

import (
	"github.com/conduit-lang/entitykit/pkg/coerce"
	"github.com/conduit-lang/entitykit/pkg/entity"
	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/conduit-lang/entitykit/pkg/translate"
	"github.com/conduit-lang/entitykit/pkg/wire"
)

// Page is a published page. Sections are owned by the page; Parent is a reference to a
// section owned elsewhere and is shared, not copied, by Copy.
type Page struct {
	entity.Base
	Title     string
	Slug      string
	Published bool
	Parent    Section
	Sections  []Section
}

// NewPage creates an empty page with a generated identifier
func NewPage() *Page {
	return &Page{Base: entity.NewBase(), Sections: []Section{}}
}

func (p *Page) Decode(d wire.Dictionary, cfg *registry.Config) {
	p.Base.Decode(d, cfg)
	translate.MergeField(&p.Title, d, "title", coerce.String)
	translate.MergeField(&p.Slug, d, "slug", coerce.String)
	translate.MergeField(&p.Published, d, "published", coerce.Bool)

	sections := SectionsFor(cfg)
	parent, ok := sections.MergeOne(d, "parent", p.Parent, cfg)
	translate.Merge(&p.Parent, parent, ok)
	children, ok := sections.MergeMany(d, "sections", p.Sections, cfg)
	translate.Merge(&p.Sections, children, ok)
}

func (p *Page) Encode() wire.Dictionary {
	var parent any
	if p.Parent != nil {
		parent = p.Parent.Encode()
	}
	sections := make([]any, len(p.Sections))
	for i, s := range p.Sections {
		sections[i] = s.Encode()
	}
	return p.Base.EncodeInto(wire.Dictionary{
		"title":     p.Title,
		"slug":      p.Slug,
		"published": p.Published,
		"parent":    parent,
		"sections":  sections,
	})
}

func (p *Page) StrictDecode(c wire.KeyedContainer, cfg *registry.Config) error {
	var out Page
	var err error

	if err = out.Base.StrictDecode(c, cfg); err != nil {
		return err
	}
	if out.Title, err = wire.Required[string](c, "title"); err != nil {
		return err
	}
	if out.Slug, _, err = wire.Optional[string](c, "slug"); err != nil {
		return err
	}
	if out.Published, _, err = wire.Optional[bool](c, "published"); err != nil {
		return err
	}

	sections := SectionsFor(cfg)
	if parent, ok := sections.DecodeOne(c, "parent", cfg); ok {
		out.Parent = parent
	}
	out.Sections = sections.DecodeMany(c, "sections", cfg)

	*p = out
	return nil
}

func (p *Page) StrictEncode(e wire.KeyedEncoder) error {
	if err := p.Base.StrictEncode(e); err != nil {
		return err
	}
	if err := e.Encode("title", p.Title); err != nil {
		return err
	}
	if err := e.Encode("slug", p.Slug); err != nil {
		return err
	}
	if err := e.Encode("published", p.Published); err != nil {
		return err
	}

	var err error
	if p.Parent != nil {
		err = e.EncodeNested("parent", p.Parent.StrictEncode)
	} else {
		err = e.Encode("parent", nil)
	}
	if err != nil {
		return err
	}

	return e.EncodeNestedSlice("sections", len(p.Sections), func(i int, e wire.KeyedEncoder) error {
		return p.Sections[i].StrictEncode(e)
	})
}

func (p *Page) Copy() *Page {
	out := &Page{
		Base:      *p.Base.Copy(),
		Title:     p.Title,
		Slug:      p.Slug,
		Published: p.Published,
		Parent:    p.Parent,
		Sections:  make([]Section, len(p.Sections)),
	}
	for i, s := range p.Sections {
		out.Sections[i] = s.Copy()
	}
	return out
}

func (p *Page) Diff(other *Page) bool {
	return p.Base.Diff(&other.Base) ||
		p.Title != other.Title ||
		p.Slug != other.Slug ||
		p.Published != other.Published ||
		translate.DiffOptional(p.Parent, other.Parent) ||
		translate.DiffSlices(p.Sections, other.Sections)
}
