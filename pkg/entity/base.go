// Package entity provides Base, the identity, metadata and analytics shape that every
// concrete entity embeds, together with its implementation of the translation contract.
//
// A concrete entity embeds Base and calls the Base methods from its own, adding its
// declared fields:
//
//	func (p *Page) Decode(d wire.Dictionary, cfg *registry.Config) {
//		p.Base.Decode(d, cfg)
//		translate.MergeField(&p.Title, d, "title", coerce.String)
//	}
package entity

import (
	"github.com/conduit-lang/entitykit/pkg/coerce"
	"github.com/conduit-lang/entitykit/pkg/metadata"
	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/conduit-lang/entitykit/pkg/translate"
	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/google/uuid"
)

// Wire keys of the Base fields
const (
	KeyID        = "id"
	KeyMetadata  = "metadata"
	KeyAnalytics = "analytics"
)

// Base is the common shape of every entity
type Base struct {
	ID        string
	Metadata  metadata.Record
	Analytics []Analytics
}

// NewBase creates a Base with a generated identifier, fresh metadata and no analytics
func NewBase() Base {
	return Base{
		ID:        uuid.NewString(),
		Metadata:  metadata.New(),
		Analytics: []Analytics{},
	}
}

// EntityID returns the entity identifier
func (b Base) EntityID() string { return b.ID }

// Decode merges the Base fields of d. Metadata merges field by field; analytics are
// replaced only when d carries a sequence under KeyAnalytics.
func (b *Base) Decode(d wire.Dictionary, cfg *registry.Config) {
	translate.MergeField(&b.ID, d, KeyID, coerce.Identifier)
	translate.MergeNested(d, KeyMetadata, b.Metadata.Decode)
	items, ok := AnalyticsFor(cfg).MergeMany(d, KeyAnalytics, b.Analytics, cfg)
	translate.Merge(&b.Analytics, items, ok)
}

// Encode renders the Base fields
func (b *Base) Encode() wire.Dictionary {
	analytics := make([]any, len(b.Analytics))
	for i, a := range b.Analytics {
		analytics[i] = a.Encode()
	}
	return wire.Dictionary{
		KeyID:        b.ID,
		KeyMetadata:  b.Metadata.Encode(),
		KeyAnalytics: analytics,
	}
}

// EncodeInto writes the Base fields into d, for entities that extend the encoded form
func (b *Base) EncodeInto(d wire.Dictionary) wire.Dictionary {
	for k, v := range b.Encode() {
		d[k] = v
	}
	return d
}

// StrictDecode populates the Base fields from c. The identifier and metadata are
// required; an unusable analytics sequence decodes as empty.
func (b *Base) StrictDecode(c wire.KeyedContainer, cfg *registry.Config) error {
	var out Base
	var err error

	if out.ID, err = wire.Required[string](c, KeyID); err != nil {
		return err
	}
	md, err := c.Nested(KeyMetadata)
	if err != nil {
		return err
	}
	if err := out.Metadata.StrictDecode(md); err != nil {
		return err
	}
	out.Analytics = AnalyticsFor(cfg).DecodeMany(c, KeyAnalytics, cfg)

	*b = out
	return nil
}

// StrictEncode writes the Base fields into e
func (b *Base) StrictEncode(e wire.KeyedEncoder) error {
	if err := e.Encode(KeyID, b.ID); err != nil {
		return err
	}
	if err := e.EncodeNested(KeyMetadata, b.Metadata.StrictEncode); err != nil {
		return err
	}
	return e.EncodeNestedSlice(KeyAnalytics, len(b.Analytics), func(i int, e wire.KeyedEncoder) error {
		return b.Analytics[i].StrictEncode(e)
	})
}

// Copy returns an independent Base
func (b *Base) Copy() *Base {
	out := &Base{
		ID:        b.ID,
		Metadata:  b.Metadata.Copy(),
		Analytics: make([]Analytics, len(b.Analytics)),
	}
	for i, a := range b.Analytics {
		out.Analytics[i] = a.Copy()
	}
	return out
}

// Diff compares the identifier, the metadata and the analytics list in order
func (b *Base) Diff(other *Base) bool {
	return b.ID != other.ID ||
		b.Metadata.Diff(&other.Metadata) ||
		translate.DiffSlices(b.Analytics, other.Analytics)
}
