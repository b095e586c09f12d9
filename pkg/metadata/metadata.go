// Package metadata provides the fixed-shape record attached to every entity: identity,
// timestamps, status, audit fields and an open extension map preserved opaquely.
package metadata

import (
	"time"

	"github.com/conduit-lang/entitykit/pkg/coerce"
	"github.com/conduit-lang/entitykit/pkg/translate"
	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/google/uuid"
)

// Wire keys of a metadata record
const (
	KeyID         = "id"
	KeyCreatedAt  = "created_at"
	KeyUpdatedAt  = "updated_at"
	KeySyncedAt   = "synced_at"
	KeyStatus     = "status"
	KeyCreatedBy  = "created_by"
	KeyUpdatedBy  = "updated_by"
	KeyExtensions = "extensions"
)

// StatusActive is the status of a freshly created record
const StatusActive = "active"

// Record is the metadata owned by an entity
type Record struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncedAt   *time.Time
	Status     string
	CreatedBy  string
	UpdatedBy  string
	Extensions wire.Dictionary
}

// New creates a record with a generated identifier, created and updated set to now
func New() Record {
	now := time.Now().UTC()
	return Record{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		Status:     StatusActive,
		Extensions: wire.Dictionary{},
	}
}

// Decode merges the valid fields of d into the record. An identifier that is not a
// valid UUID keeps the existing one. Extensions merge key by key.
func (r *Record) Decode(d wire.Dictionary) {
	translate.MergeField(&r.ID, d, KeyID, coerce.UUID)
	translate.MergeField(&r.CreatedAt, d, KeyCreatedAt, coerce.Time)
	translate.MergeField(&r.UpdatedAt, d, KeyUpdatedAt, coerce.Time)
	translate.MergeOptional(&r.SyncedAt, d, KeySyncedAt, coerce.Time)
	translate.MergeField(&r.Status, d, KeyStatus, coerce.String)
	translate.MergeField(&r.CreatedBy, d, KeyCreatedBy, coerce.String)
	translate.MergeField(&r.UpdatedBy, d, KeyUpdatedBy, coerce.String)
	translate.MergeDictionary(&r.Extensions, d, KeyExtensions)
}

// Encode renders every field. An unset synced timestamp is encoded as nil.
func (r *Record) Encode() wire.Dictionary {
	var synced any
	if r.SyncedAt != nil {
		synced = wire.FormatTime(*r.SyncedAt)
	}
	return wire.Dictionary{
		KeyID:         r.ID.String(),
		KeyCreatedAt:  wire.FormatTime(r.CreatedAt),
		KeyUpdatedAt:  wire.FormatTime(r.UpdatedAt),
		KeySyncedAt:   synced,
		KeyStatus:     r.Status,
		KeyCreatedBy:  r.CreatedBy,
		KeyUpdatedBy:  r.UpdatedBy,
		KeyExtensions: r.Extensions.Clone(),
	}
}

// StrictDecode populates the record from c. id, created_at, updated_at and status are
// required. The record is left untouched when decoding fails.
func (r *Record) StrictDecode(c wire.KeyedContainer) error {
	var out Record
	var err error

	if out.ID, err = wire.RequiredUUID(c, KeyID); err != nil {
		return err
	}
	if out.CreatedAt, err = wire.RequiredTime(c, KeyCreatedAt); err != nil {
		return err
	}
	if out.UpdatedAt, err = wire.RequiredTime(c, KeyUpdatedAt); err != nil {
		return err
	}
	if out.SyncedAt, err = wire.OptionalTime(c, KeySyncedAt); err != nil {
		return err
	}
	if out.Status, err = wire.Required[string](c, KeyStatus); err != nil {
		return err
	}
	if out.CreatedBy, _, err = wire.Optional[string](c, KeyCreatedBy); err != nil {
		return err
	}
	if out.UpdatedBy, _, err = wire.Optional[string](c, KeyUpdatedBy); err != nil {
		return err
	}

	var extensions map[string]any
	if _, err = c.DecodeIfPresent(KeyExtensions, &extensions); err != nil {
		return err
	}
	out.Extensions = wire.Dictionary(extensions).Clone()

	*r = out
	return nil
}

// StrictEncode writes every field into e
func (r *Record) StrictEncode(e wire.KeyedEncoder) error {
	var synced any
	if r.SyncedAt != nil {
		synced = wire.FormatTime(*r.SyncedAt)
	}

	fields := []struct {
		key   string
		value any
	}{
		{KeyID, r.ID.String()},
		{KeyCreatedAt, wire.FormatTime(r.CreatedAt)},
		{KeyUpdatedAt, wire.FormatTime(r.UpdatedAt)},
		{KeySyncedAt, synced},
		{KeyStatus, r.Status},
		{KeyCreatedBy, r.CreatedBy},
		{KeyUpdatedBy, r.UpdatedBy},
		{KeyExtensions, map[string]any(r.Extensions.Clone())},
	}
	for _, f := range fields {
		if err := e.Encode(f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns an independent record with the same field values
func (r *Record) Copy() Record {
	out := *r
	if r.SyncedAt != nil {
		synced := *r.SyncedAt
		out.SyncedAt = &synced
	}
	out.Extensions = r.Extensions.Clone()
	return out
}

// Diff reports whether any field differs from other, stopping at the first difference
func (r *Record) Diff(other *Record) bool {
	switch {
	case r.ID != other.ID:
		return true
	case translate.DiffTimes(r.CreatedAt, other.CreatedAt):
		return true
	case translate.DiffTimes(r.UpdatedAt, other.UpdatedAt):
		return true
	case translate.DiffOptionalTimes(r.SyncedAt, other.SyncedAt):
		return true
	case r.Status != other.Status:
		return true
	case r.CreatedBy != other.CreatedBy:
		return true
	case r.UpdatedBy != other.UpdatedBy:
		return true
	}
	return translate.DiffDictionaries(r.Extensions, other.Extensions)
}

// Touch records an update made by actor at the given time
func (r *Record) Touch(actor string, at time.Time) {
	r.UpdatedAt = at.UTC()
	r.UpdatedBy = actor
}

// MarkSynced records that the owning entity was synchronized at the given time
func (r *Record) MarkSynced(at time.Time) {
	synced := at.UTC()
	r.SyncedAt = &synced
}
