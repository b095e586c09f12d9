package catalog

import (
	"strings"

	"github.com/conduit-lang/entitykit/pkg/coerce"
	"github.com/conduit-lang/entitykit/pkg/entity"
	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/conduit-lang/entitykit/pkg/translate"
	"github.com/conduit-lang/entitykit/pkg/wire"
)

// DefaultCurrency is the currency of a new pricing item
const DefaultCurrency = "USD"

// PricingItem is a priced line item. Probability is the estimated chance of the item
// being purchased and always lies in [0, 1].
type PricingItem struct {
	entity.Base
	SKU         string
	Amount      float64
	Currency    string
	Probability float64
	Tags        []string
}

// NewPricingItem creates an empty item with a generated identifier
func NewPricingItem() *PricingItem {
	return &PricingItem{Base: entity.NewBase(), Currency: DefaultCurrency, Tags: []string{}}
}

func currencyCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (p *PricingItem) Decode(d wire.Dictionary, cfg *registry.Config) {
	p.Base.Decode(d, cfg)
	translate.MergeField(&p.SKU, d, "sku", coerce.String)
	translate.MergeNormalized(&p.Amount, d, "amount", coerce.Float64, translate.AtLeast(0.0))
	translate.MergeNormalized(&p.Currency, d, "currency", coerce.String, currencyCode)
	translate.MergeNormalized(&p.Probability, d, "probability", coerce.Float64, translate.Between(0.0, 1.0))
	translate.MergeField(&p.Tags, d, "tags", coerce.StringSlice)
}

func (p *PricingItem) Encode() wire.Dictionary {
	tags := make([]any, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = t
	}
	return p.Base.EncodeInto(wire.Dictionary{
		"sku":         p.SKU,
		"amount":      p.Amount,
		"currency":    p.Currency,
		"probability": p.Probability,
		"tags":        tags,
	})
}

func (p *PricingItem) StrictDecode(c wire.KeyedContainer, cfg *registry.Config) error {
	var out PricingItem
	var err error

	if err = out.Base.StrictDecode(c, cfg); err != nil {
		return err
	}
	if out.SKU, err = wire.Required[string](c, "sku"); err != nil {
		return err
	}
	if out.Amount, err = wire.Required[float64](c, "amount"); err != nil {
		return err
	}
	if out.Currency, err = wire.Required[string](c, "currency"); err != nil {
		return err
	}
	if out.Probability, _, err = wire.Optional[float64](c, "probability"); err != nil {
		return err
	}
	if out.Tags, _, err = wire.Optional[[]string](c, "tags"); err != nil {
		return err
	}
	out.Amount = translate.AtLeast(0.0)(out.Amount)
	out.Currency = currencyCode(out.Currency)
	out.Probability = translate.Clamp(out.Probability, 0, 1)
	if out.Tags == nil {
		out.Tags = []string{}
	}

	*p = out
	return nil
}

func (p *PricingItem) StrictEncode(e wire.KeyedEncoder) error {
	if err := p.Base.StrictEncode(e); err != nil {
		return err
	}
	fields := []struct {
		key   string
		value any
	}{
		{"sku", p.SKU},
		{"amount", p.Amount},
		{"currency", p.Currency},
		{"probability", p.Probability},
		{"tags", p.Tags},
	}
	for _, f := range fields {
		if err := e.Encode(f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}

func (p *PricingItem) Copy() *PricingItem {
	out := &PricingItem{
		Base:        *p.Base.Copy(),
		SKU:         p.SKU,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Probability: p.Probability,
		Tags:        append([]string{}, p.Tags...),
	}
	return out
}

func (p *PricingItem) Diff(other *PricingItem) bool {
	return p.Base.Diff(&other.Base) ||
		p.SKU != other.SKU ||
		p.Amount != other.Amount ||
		p.Currency != other.Currency ||
		p.Probability != other.Probability ||
		translate.DiffStrings(p.Tags, other.Tags)
}
