package catalog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populated decodes a representative dictionary into a fresh entity of kind k
func populated(t *testing.T, k Kind, cfg *registry.Config) Item {
	t.Helper()
	e := k.New(cfg)
	e.Decode(wire.Dictionary{
		"id":          "fixture-" + k.Name,
		"metadata":    map[string]any{"status": "draft", "created_by": "tests", "extensions": map[string]any{"k": "v"}},
		"analytics":   []any{map[string]any{"id": "a1", "kind": "views", "data": map[string]any{"n": 1}}},
		"title":       "Title",
		"slug":        "title",
		"published":   "yes",
		"parent":      map[string]any{"code": "root", "tier": "gold"},
		"sections":    []any{map[string]any{"code": "a", "order": 2, "tier": "silver", "price": 1.5}},
		"code":        "code",
		"heading":     "Heading",
		"order":       3,
		"tier":        "gold",
		"price":       4.25,
		"sku":         "sku-1",
		"amount":      "19.99",
		"currency":    "eur",
		"probability": 0.4,
		"tags":        []any{"one", "two"},
	}, cfg)
	return e
}

func eachKind(t *testing.T, fn func(t *testing.T, k Kind, cfg *registry.Config)) {
	for _, k := range Kinds() {
		for _, premium := range []bool{false, true} {
			cfg := NewConfig(premium, nil)
			t.Run(fmt.Sprintf("%s/premium=%t", k.Name, premium), func(t *testing.T) {
				fn(t, k, cfg)
			})
		}
	}
}

func TestProperty_MergeFallback(t *testing.T) {
	malformed := wire.Dictionary{
		"id":          42,
		"metadata":    []any{},
		"analytics":   "none",
		"title":       false,
		"published":   "maybe",
		"parent":      7,
		"sections":    map[string]any{},
		"code":        1.5,
		"order":       "first",
		"price":       "free",
		"amount":      nil,
		"probability": "likely",
		"tags":        []any{1, 2},
	}

	eachKind(t, func(t *testing.T, k Kind, cfg *registry.Config) {
		for _, input := range []wire.Dictionary{{}, malformed} {
			e := populated(t, k, cfg)
			before := k.Copy(e)
			e.Decode(input, cfg)
			assert.False(t, k.Diff(before, e))
		}
	})
}

func TestProperty_Idempotence(t *testing.T) {
	input := wire.Dictionary{
		"title":     "Again",
		"code":      "again",
		"sku":       "again",
		"parent":    map[string]any{"code": "p1"},
		"sections":  []any{map[string]any{"code": "x"}, map[string]any{"id": "s2", "code": "y"}},
		"analytics": []any{map[string]any{"kind": "k"}, map[string]any{"id": "a2", "kind": "k"}},
		"metadata":  map[string]any{"extensions": map[string]any{"x": 1}},
	}

	eachKind(t, func(t *testing.T, k Kind, cfg *registry.Config) {
		for name, start := range map[string]func() Item{
			"populated": func() Item { return populated(t, k, cfg) },
			"new":       func() Item { return k.New(cfg) },
		} {
			once := start()
			once.Decode(input, cfg)
			twice := k.Copy(once)
			twice.Decode(input, cfg)

			assert.False(t, k.Diff(once, twice), name)
		}
	})
}

func TestPage_RepeatDecodeKeepsChildIdentity(t *testing.T) {
	cfg := NewConfig(true, nil)
	input := wire.Dictionary{"parent": map[string]any{"code": "p1"}, "sections": []any{map[string]any{"code": "s"}}}

	page := NewPage()
	page.Decode(input, cfg)
	parentID := page.Parent.EntityID()
	sectionID := page.Sections[0].EntityID()
	first := page.Parent

	page.Decode(input, cfg)
	assert.Equal(t, parentID, page.Parent.EntityID())
	assert.Equal(t, sectionID, page.Sections[0].EntityID())
	assert.NotSame(t, first, page.Parent, "the merged parent is a new instance")
	require.IsType(t, &PremiumSection{}, page.Parent)
}

func TestProperty_RoundTrip(t *testing.T) {
	eachKind(t, func(t *testing.T, k Kind, cfg *registry.Config) {
		original := populated(t, k, cfg)

		fresh := k.New(cfg)
		fresh.Decode(original.Encode(), cfg)
		assert.False(t, k.Diff(original, fresh))
	})
}

func TestProperty_StrictRoundTrip(t *testing.T) {
	eachKind(t, func(t *testing.T, k Kind, cfg *registry.Config) {
		original := populated(t, k, cfg)
		for _, format := range []wire.Format{wire.FormatJSON, wire.FormatYAML} {
			enc, err := wire.NewEncoder(format)
			require.NoError(t, err)
			require.NoError(t, original.StrictEncode(enc))
			data, err := enc.Bytes()
			require.NoError(t, err)

			c, err := wire.NewContainer(format, data)
			require.NoError(t, err)
			decoded := k.New(cfg)
			require.NoError(t, decoded.StrictDecode(c, cfg))
			assert.False(t, k.Diff(original, decoded), "format %s", format)
		}
	})
}

func TestProperty_DiffReflexiveAndSymmetric(t *testing.T) {
	eachKind(t, func(t *testing.T, k Kind, cfg *registry.Config) {
		a := populated(t, k, cfg)
		assert.False(t, k.Diff(a, k.Copy(a)))

		b := k.Copy(a)
		b.Decode(wire.Dictionary{"id": "different"}, cfg)
		assert.True(t, k.Diff(a, b))
		assert.Equal(t, k.Diff(a, b), k.Diff(b, a))
	})
}

func TestProperty_CopyIndependence(t *testing.T) {
	eachKind(t, func(t *testing.T, k Kind, cfg *registry.Config) {
		original := populated(t, k, cfg)
		snapshot := original.Encode()

		cp := k.Copy(original)
		cp.Decode(wire.Dictionary{
			"id":        "mutated",
			"metadata":  map[string]any{"status": "mutated", "extensions": map[string]any{"k": "mutated"}},
			"analytics": []any{},
			"title":     "mutated",
			"code":      "mutated",
			"sku":       "mutated",
			"tags":      []any{"mutated"},
		}, cfg)

		assert.True(t, wire.Equal(snapshot, original.Encode()))
	})
}

func TestProperty_EncodeReportsDecodedValues(t *testing.T) {
	cfg := NewConfig(false, nil)
	page := populated(t, mustKind(t, "page"), cfg)
	encoded := page.Encode()

	assert.Equal(t, "fixture-page", encoded["id"])
	assert.Equal(t, "Title", encoded["title"])
	assert.Equal(t, true, encoded["published"])
	metadata, ok := encoded["metadata"].(wire.Dictionary)
	require.True(t, ok)
	assert.Equal(t, "draft", metadata["status"])
	assert.Equal(t, "tests", metadata["created_by"])
}

func TestConcurrentDecodeSharedConfig(t *testing.T) {
	cfg := NewConfig(true, nil)
	input := wire.Dictionary{"parent": map[string]any{"code": "p1"}, "sections": []any{map[string]any{"code": "s"}}}

	var wg sync.WaitGroup
	results := make([]*Page, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := NewPage()
			p.Decode(input, cfg)
			results[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range results {
		require.IsType(t, &PremiumSection{}, p.Parent)
		assert.Equal(t, "p1", p.Parent.SectionCode())
		require.Len(t, p.Sections, 1)
	}
}

func mustKind(t *testing.T, name string) Kind {
	t.Helper()
	k, err := LookupKind(name)
	require.NoError(t, err)
	return k
}
