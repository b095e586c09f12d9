package translate

import (
	"sort"

	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/conduit-lang/entitykit/pkg/wire"
)

// FieldChange represents a change to a single encoded field. Nested dictionary fields
// are reported by dotted path, e.g. "metadata.status".
type FieldChange struct {
	Field    string
	OldValue any
	NewValue any
}

// ChangeSet is the set of field changes between two encoded forms of an entity.
// Partial-merge decode does not report what it applied, so callers that need to know
// compare the encoded entity before and after.
type ChangeSet struct {
	changes map[string]*FieldChange
}

// Changes computes the field changes from before to after
func Changes(before, after wire.Dictionary) *ChangeSet {
	cs := &ChangeSet{changes: make(map[string]*FieldChange)}
	cs.compute("", before, after)
	return cs
}

// MergeReport applies a partial-merge decode of d to entity and reports which encoded
// fields actually changed
func MergeReport(entity Codec, d wire.Dictionary, cfg *registry.Config) *ChangeSet {
	before := entity.Encode()
	entity.Decode(d, cfg)
	return Changes(before, entity.Encode())
}

func (cs *ChangeSet) compute(prefix string, before, after wire.Dictionary) {
	for field, newValue := range after {
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}

		oldValue, hadOldValue := before[field]
		if !hadOldValue {
			cs.changes[path] = &FieldChange{Field: path, NewValue: newValue}
			continue
		}

		oldDict, oldIsDict := wire.AsDictionary(oldValue)
		newDict, newIsDict := wire.AsDictionary(newValue)
		if oldIsDict && newIsDict {
			cs.compute(path, oldDict, newDict)
			continue
		}

		if !wire.ValueEqual(oldValue, newValue) {
			cs.changes[path] = &FieldChange{Field: path, OldValue: oldValue, NewValue: newValue}
		}
	}

	// Fields present before but missing after
	for field, oldValue := range before {
		if _, exists := after[field]; exists {
			continue
		}
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}
		cs.changes[path] = &FieldChange{Field: path, OldValue: oldValue}
	}
}

// Changed returns true if the specified field has changed
func (cs *ChangeSet) Changed(field string) bool {
	_, ok := cs.changes[field]
	return ok
}

// ChangedFields returns the changed field paths in sorted order
func (cs *ChangeSet) ChangedFields() []string {
	fields := make([]string, 0, len(cs.changes))
	for field := range cs.changes {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Get returns the FieldChange for a specific field, or nil if unchanged
func (cs *ChangeSet) Get(field string) *FieldChange {
	return cs.changes[field]
}

// All returns the changes in field order
func (cs *ChangeSet) All() []FieldChange {
	out := make([]FieldChange, 0, len(cs.changes))
	for _, field := range cs.ChangedFields() {
		out = append(out, *cs.changes[field])
	}
	return out
}

// HasChanges returns true if any field has changed
func (cs *ChangeSet) HasChanges() bool {
	return len(cs.changes) > 0
}

// Len returns the number of changed fields
func (cs *ChangeSet) Len() int {
	return len(cs.changes)
}

// ChangedTo returns true if the field changed to the specified value
func (cs *ChangeSet) ChangedTo(field string, value any) bool {
	change, ok := cs.changes[field]
	return ok && wire.ValueEqual(change.NewValue, value)
}

// ChangedFrom returns true if the field changed from the specified value
func (cs *ChangeSet) ChangedFrom(field string, value any) bool {
	change, ok := cs.changes[field]
	return ok && wire.ValueEqual(change.OldValue, value)
}

// NewValues returns the changed fields mapped to their new values
func (cs *ChangeSet) NewValues() map[string]any {
	out := make(map[string]any, len(cs.changes))
	for field, change := range cs.changes {
		out[field] = change.NewValue
	}
	return out
}
