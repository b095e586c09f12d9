package catalog

import (
	"github.com/conduit-lang/entitykit/pkg/coerce"
	"github.com/conduit-lang/entitykit/pkg/entity"
	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/conduit-lang/entitykit/pkg/translate"
	"github.com/conduit-lang/entitykit/pkg/wire"
)

// SectionCategory is the registry name of the section category
const SectionCategory = "section"

// Section is the abstract page section category
type Section interface {
	wire.Entity
	translate.Translatable[Section]
	SectionCode() string
}

// StandardSections resolves sections to StandardSection
var StandardSections = registry.NewCategory(SectionCategory, func() Section { return NewStandardSection() })

// PremiumSections resolves sections to PremiumSection
var PremiumSections = registry.NewCategory(SectionCategory, func() Section { return NewPremiumSection() })

// SectionsFor returns the section category configured in cfg, StandardSections by default
func SectionsFor(cfg *registry.Config) registry.Category[Section] {
	return registry.LookupOr(cfg, SectionCategory, StandardSections)
}

// StandardSection is a plain page section
type StandardSection struct {
	entity.Base
	Code    string
	Heading string
	Order   int
}

// NewStandardSection creates an empty section with a generated identifier
func NewStandardSection() *StandardSection {
	return &StandardSection{Base: entity.NewBase()}
}

func (s *StandardSection) SectionCode() string { return s.Code }

func (s *StandardSection) Decode(d wire.Dictionary, cfg *registry.Config) {
	s.Base.Decode(d, cfg)
	translate.MergeField(&s.Code, d, "code", coerce.String)
	translate.MergeField(&s.Heading, d, "heading", coerce.String)
	translate.MergeNormalized(&s.Order, d, "order", coerce.Int, translate.AtLeast(0))
}

func (s *StandardSection) Encode() wire.Dictionary {
	return s.Base.EncodeInto(wire.Dictionary{
		"code":    s.Code,
		"heading": s.Heading,
		"order":   s.Order,
	})
}

func (s *StandardSection) StrictDecode(c wire.KeyedContainer, cfg *registry.Config) error {
	var out StandardSection
	var err error

	if err = out.Base.StrictDecode(c, cfg); err != nil {
		return err
	}
	if out.Code, err = wire.Required[string](c, "code"); err != nil {
		return err
	}
	if out.Heading, _, err = wire.Optional[string](c, "heading"); err != nil {
		return err
	}
	if out.Order, _, err = wire.Optional[int](c, "order"); err != nil {
		return err
	}
	out.Order = translate.AtLeast(0)(out.Order)

	*s = out
	return nil
}

func (s *StandardSection) StrictEncode(e wire.KeyedEncoder) error {
	if err := s.Base.StrictEncode(e); err != nil {
		return err
	}
	if err := e.Encode("code", s.Code); err != nil {
		return err
	}
	if err := e.Encode("heading", s.Heading); err != nil {
		return err
	}
	return e.Encode("order", s.Order)
}

func (s *StandardSection) Copy() Section {
	return s.copy()
}

func (s *StandardSection) copy() *StandardSection {
	return &StandardSection{
		Base:    *s.Base.Copy(),
		Code:    s.Code,
		Heading: s.Heading,
		Order:   s.Order,
	}
}

func (s *StandardSection) Diff(other Section) bool {
	o, ok := other.(*StandardSection)
	if !ok {
		return true
	}
	return s.diff(o)
}

func (s *StandardSection) diff(o *StandardSection) bool {
	return s.Base.Diff(&o.Base) ||
		s.Code != o.Code ||
		s.Heading != o.Heading ||
		s.Order != o.Order
}

// PremiumSection is a paid section with a tier and a price
type PremiumSection struct {
	StandardSection
	Tier  string
	Price float64
}

// NewPremiumSection creates an empty premium section with a generated identifier
func NewPremiumSection() *PremiumSection {
	return &PremiumSection{StandardSection: *NewStandardSection()}
}

func (s *PremiumSection) Decode(d wire.Dictionary, cfg *registry.Config) {
	s.StandardSection.Decode(d, cfg)
	translate.MergeField(&s.Tier, d, "tier", coerce.String)
	translate.MergeNormalized(&s.Price, d, "price", coerce.Float64, translate.AtLeast(0.0))
}

func (s *PremiumSection) Encode() wire.Dictionary {
	d := s.StandardSection.Encode()
	d["tier"] = s.Tier
	d["price"] = s.Price
	return d
}

func (s *PremiumSection) StrictDecode(c wire.KeyedContainer, cfg *registry.Config) error {
	var out PremiumSection
	var err error

	if err = out.StandardSection.StrictDecode(c, cfg); err != nil {
		return err
	}
	if out.Tier, err = wire.Required[string](c, "tier"); err != nil {
		return err
	}
	if out.Price, _, err = wire.Optional[float64](c, "price"); err != nil {
		return err
	}
	out.Price = translate.AtLeast(0.0)(out.Price)

	*s = out
	return nil
}

func (s *PremiumSection) StrictEncode(e wire.KeyedEncoder) error {
	if err := s.StandardSection.StrictEncode(e); err != nil {
		return err
	}
	if err := e.Encode("tier", s.Tier); err != nil {
		return err
	}
	return e.Encode("price", s.Price)
}

func (s *PremiumSection) Copy() Section {
	return &PremiumSection{
		StandardSection: *s.StandardSection.copy(),
		Tier:            s.Tier,
		Price:           s.Price,
	}
}

func (s *PremiumSection) Diff(other Section) bool {
	o, ok := other.(*PremiumSection)
	if !ok {
		return true
	}
	return s.StandardSection.diff(&o.StandardSection) ||
		s.Tier != o.Tier ||
		s.Price != o.Price
}
