package metadata

import (
	"testing"
	"time"

	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func fixture() Record {
	return Record{
		ID:         uuid.MustParse("6f1b8c3e-2a4d-4e5f-9a1b-2c3d4e5f6a7b"),
		CreatedAt:  t0,
		UpdatedAt:  t0,
		Status:     StatusActive,
		CreatedBy:  "alice",
		Extensions: wire.Dictionary{"region": "eu"},
	}
}

func TestNew(t *testing.T) {
	r := New()

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, StatusActive, r.Status)
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
	assert.Equal(t, time.UTC, r.CreatedAt.Location())
	assert.Nil(t, r.SyncedAt)
	assert.NotNil(t, r.Extensions)
	assert.NotEqual(t, New().ID, r.ID)
}

func TestDecode_PartialMerge(t *testing.T) {
	r := fixture()
	r.Decode(wire.Dictionary{"status": "closed"})

	want := fixture()
	want.Status = "closed"
	assert.Equal(t, want, r)
}

func TestDecode_Fallbacks(t *testing.T) {
	tests := []struct {
		name  string
		input wire.Dictionary
		check func(t *testing.T, r Record)
	}{
		{
			name:  "invalid id keeps existing",
			input: wire.Dictionary{"id": "not-a-uuid"},
			check: func(t *testing.T, r Record) {
				assert.Equal(t, fixture().ID, r.ID)
			},
		},
		{
			name:  "nil uuid keeps existing",
			input: wire.Dictionary{"id": uuid.Nil.String()},
			check: func(t *testing.T, r Record) {
				assert.Equal(t, fixture().ID, r.ID)
			},
		},
		{
			name:  "malformed timestamp keeps existing",
			input: wire.Dictionary{"created_at": "yesterday", "updated_at": true},
			check: func(t *testing.T, r Record) {
				assert.Equal(t, t0, r.CreatedAt)
				assert.Equal(t, t0, r.UpdatedAt)
			},
		},
		{
			name:  "non-string status keeps existing",
			input: wire.Dictionary{"status": 7},
			check: func(t *testing.T, r Record) {
				assert.Equal(t, StatusActive, r.Status)
			},
		},
		{
			name:  "null synced_at keeps existing",
			input: wire.Dictionary{"synced_at": nil},
			check: func(t *testing.T, r Record) {
				assert.Nil(t, r.SyncedAt)
			},
		},
		{
			name:  "non-dictionary extensions ignored",
			input: wire.Dictionary{"extensions": []any{"x"}},
			check: func(t *testing.T, r Record) {
				assert.Equal(t, wire.Dictionary{"region": "eu"}, r.Extensions)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fixture()
			r.Decode(tt.input)
			tt.check(t, r)
		})
	}
}

func TestDecode_AppliesValidFields(t *testing.T) {
	id := uuid.New()
	r := fixture()
	r.Decode(wire.Dictionary{
		"id":         id.String(),
		"updated_at": "2024-03-02T10:00:00Z",
		"synced_at":  float64(t0.Unix()),
		"updated_by": "bob",
		"extensions": map[string]any{"tier": "gold"},
	})

	assert.Equal(t, id, r.ID)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), r.UpdatedAt)
	require.NotNil(t, r.SyncedAt)
	assert.True(t, t0.Equal(*r.SyncedAt))
	assert.Equal(t, "bob", r.UpdatedBy)
	assert.Equal(t, wire.Dictionary{"region": "eu", "tier": "gold"}, r.Extensions)
}

func TestDecode_Idempotent(t *testing.T) {
	input := wire.Dictionary{"status": "archived", "extensions": map[string]any{"k": 1}}

	once := fixture()
	once.Decode(input)
	twice := fixture()
	twice.Decode(input)
	twice.Decode(input)

	assert.Equal(t, once, twice)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := fixture()
	src.MarkSynced(t0.Add(time.Hour))

	encoded := src.Encode()
	assert.Equal(t, src.ID.String(), encoded[KeyID])
	assert.Equal(t, "2024-03-01T09:30:00Z", encoded[KeyCreatedAt])

	var dst Record
	dst.Decode(encoded)
	assert.False(t, src.Diff(&dst))
}

func TestEncode_UnsetSyncedAt(t *testing.T) {
	r := fixture()
	encoded := r.Encode()

	assert.True(t, encoded.Has(KeySyncedAt))
	assert.Nil(t, encoded[KeySyncedAt])
}

func TestStrict(t *testing.T) {
	for _, format := range []wire.Format{wire.FormatJSON, wire.FormatYAML} {
		t.Run(format.String(), func(t *testing.T) {
			src := fixture()
			src.MarkSynced(t0)

			enc, err := wire.NewEncoder(format)
			require.NoError(t, err)
			require.NoError(t, src.StrictEncode(enc))
			data, err := enc.Bytes()
			require.NoError(t, err)

			c, err := wire.NewContainer(format, data)
			require.NoError(t, err)

			var dst Record
			require.NoError(t, dst.StrictDecode(c))
			assert.False(t, src.Diff(&dst))
		})
	}
}

func TestStrictDecode_MissingRequired(t *testing.T) {
	c, err := wire.NewJSONContainer([]byte(`{"id":"6f1b8c3e-2a4d-4e5f-9a1b-2c3d4e5f6a7b","created_at":"2024-03-01T09:30:00Z","updated_at":"2024-03-01T09:30:00Z"}`))
	require.NoError(t, err)

	r := fixture()
	err = r.StrictDecode(c)
	require.Error(t, err)
	assert.True(t, wire.IsMissingValue(err))
	assert.Equal(t, "status", wire.FieldPath(err))
	assert.Equal(t, fixture(), r)
}

func TestStrictDecode_BadIdentifier(t *testing.T) {
	c, err := wire.NewJSONContainer([]byte(`{"id":"nope","created_at":"2024-03-01T09:30:00Z","updated_at":"2024-03-01T09:30:00Z","status":"active"}`))
	require.NoError(t, err)

	var r Record
	err = r.StrictDecode(c)
	require.Error(t, err)
	assert.True(t, wire.IsTypeMismatch(err))
	assert.Equal(t, "id", wire.FieldPath(err))
}

func TestCopy_Independent(t *testing.T) {
	src := fixture()
	src.MarkSynced(t0)
	src.Extensions["nested"] = map[string]any{"a": 1}

	cp := src.Copy()
	assert.False(t, src.Diff(&cp))

	cp.Status = "closed"
	*cp.SyncedAt = t0.Add(time.Minute)
	cp.Extensions["region"] = "us"
	cp.Extensions["nested"].(wire.Dictionary)["a"] = 2

	assert.Equal(t, StatusActive, src.Status)
	assert.True(t, t0.Equal(*src.SyncedAt))
	assert.Equal(t, "eu", src.Extensions["region"])
	assert.Equal(t, map[string]any{"a": 1}, src.Extensions["nested"])
}

func TestDiff(t *testing.T) {
	mutations := map[string]func(r *Record){
		"id":         func(r *Record) { r.ID = uuid.New() },
		"created_at": func(r *Record) { r.CreatedAt = t0.Add(time.Second) },
		"updated_at": func(r *Record) { r.UpdatedAt = t0.Add(time.Second) },
		"synced_at":  func(r *Record) { r.MarkSynced(t0) },
		"status":     func(r *Record) { r.Status = "closed" },
		"created_by": func(r *Record) { r.CreatedBy = "carol" },
		"updated_by": func(r *Record) { r.UpdatedBy = "carol" },
		"extensions": func(r *Record) { r.Extensions["region"] = "us" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			a := fixture()
			b := fixture()
			mutate(&b)

			assert.False(t, a.Diff(&a))
			assert.True(t, a.Diff(&b))
			assert.True(t, b.Diff(&a))
		})
	}
}

func TestDiff_TimeZonesCompareByInstant(t *testing.T) {
	a := fixture()
	b := fixture()
	b.CreatedAt = t0.In(time.FixedZone("CET", 3600))

	assert.False(t, a.Diff(&b))
}

func TestTouch(t *testing.T) {
	r := fixture()
	at := time.Date(2024, 4, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	r.Touch("dave", at)

	assert.Equal(t, "dave", r.UpdatedBy)
	assert.Equal(t, time.UTC, r.UpdatedAt.Location())
	assert.True(t, at.Equal(r.UpdatedAt))
	assert.Equal(t, t0, r.CreatedAt)
}
