package entity

import (
	"time"

	"github.com/conduit-lang/entitykit/pkg/coerce"
	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/conduit-lang/entitykit/pkg/translate"
	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/google/uuid"
)

// AnalyticsCategory is the registry name of the analytics payload category
const AnalyticsCategory = "analytics"

// Analytics is an open-ended analytics payload attached to an entity. Applications
// register their own concrete payload types under AnalyticsCategory; Payload is used
// when none is registered.
type Analytics interface {
	wire.Entity
	translate.Translatable[Analytics]
	AnalyticsKind() string
}

// DefaultAnalytics resolves analytics payloads to Payload
var DefaultAnalytics = registry.NewCategory(AnalyticsCategory, func() Analytics { return NewPayload() })

// AnalyticsFor returns the analytics category configured in cfg
func AnalyticsFor(cfg *registry.Config) registry.Category[Analytics] {
	return registry.LookupOr(cfg, AnalyticsCategory, DefaultAnalytics)
}

// Payload is a schemaless analytics payload. Data is preserved opaquely.
type Payload struct {
	ID         string
	Kind       string
	RecordedAt *time.Time
	Data       wire.Dictionary
}

// NewPayload creates an empty payload with a generated identifier
func NewPayload() *Payload {
	return &Payload{ID: uuid.NewString(), Data: wire.Dictionary{}}
}

func (p *Payload) EntityID() string { return p.ID }

func (p *Payload) AnalyticsKind() string { return p.Kind }

func (p *Payload) Decode(d wire.Dictionary, _ *registry.Config) {
	translate.MergeField(&p.ID, d, "id", coerce.Identifier)
	translate.MergeField(&p.Kind, d, "kind", coerce.String)
	translate.MergeOptional(&p.RecordedAt, d, "recorded_at", coerce.Time)
	translate.MergeDictionary(&p.Data, d, "data")
}

func (p *Payload) Encode() wire.Dictionary {
	var recorded any
	if p.RecordedAt != nil {
		recorded = wire.FormatTime(*p.RecordedAt)
	}
	return wire.Dictionary{
		"id":          p.ID,
		"kind":        p.Kind,
		"recorded_at": recorded,
		"data":        p.Data.Clone(),
	}
}

func (p *Payload) StrictDecode(c wire.KeyedContainer, _ *registry.Config) error {
	var out Payload
	var err error

	if out.ID, err = wire.Required[string](c, "id"); err != nil {
		return err
	}
	if out.Kind, err = wire.Required[string](c, "kind"); err != nil {
		return err
	}
	if out.RecordedAt, err = wire.OptionalTime(c, "recorded_at"); err != nil {
		return err
	}
	var data map[string]any
	if _, err = c.DecodeIfPresent("data", &data); err != nil {
		return err
	}
	out.Data = wire.Dictionary(data).Clone()

	*p = out
	return nil
}

func (p *Payload) StrictEncode(e wire.KeyedEncoder) error {
	var recorded any
	if p.RecordedAt != nil {
		recorded = wire.FormatTime(*p.RecordedAt)
	}
	if err := e.Encode("id", p.ID); err != nil {
		return err
	}
	if err := e.Encode("kind", p.Kind); err != nil {
		return err
	}
	if err := e.Encode("recorded_at", recorded); err != nil {
		return err
	}
	return e.Encode("data", map[string]any(p.Data.Clone()))
}

func (p *Payload) Copy() Analytics {
	out := *p
	if p.RecordedAt != nil {
		recorded := *p.RecordedAt
		out.RecordedAt = &recorded
	}
	out.Data = p.Data.Clone()
	return &out
}

// Diff reports a difference for any payload of another concrete type
func (p *Payload) Diff(other Analytics) bool {
	o, ok := other.(*Payload)
	if !ok {
		return true
	}
	return p.ID != o.ID ||
		p.Kind != o.Kind ||
		translate.DiffOptionalTimes(p.RecordedAt, o.RecordedAt) ||
		translate.DiffDictionaries(p.Data, o.Data)
}
