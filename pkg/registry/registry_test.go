package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Shape is a test category with two concrete implementations
type Shape interface {
	Decodable
	wire.Entity
	Kind() string
	Copy() Shape
}

type Circle struct {
	ID     string
	Radius float64
}

func (c *Circle) EntityID() string { return c.ID }
func (c *Circle) Kind() string     { return "circle" }

func (c *Circle) Copy() Shape {
	out := *c
	return &out
}

func (c *Circle) Decode(d wire.Dictionary, _ *Config) {
	if id, ok := d["id"].(string); ok {
		c.ID = id
	}
	if r, ok := d["radius"].(float64); ok {
		c.Radius = r
	}
}

func (c *Circle) StrictDecode(kc wire.KeyedContainer, _ *Config) error {
	id, err := wire.Required[string](kc, "id")
	if err != nil {
		return err
	}
	r, err := wire.Required[float64](kc, "radius")
	if err != nil {
		return err
	}
	c.ID, c.Radius = id, r
	return nil
}

type Square struct {
	Circle
}

func (s *Square) Kind() string { return "square" }

func (s *Square) Copy() Shape {
	out := *s
	return &out
}

// Label implements wire.Entity but not Shape
type Label struct{ ID string }

func (l *Label) EntityID() string { return l.ID }

func circles() Category[Shape] {
	return NewCategory[Shape]("shape", func() Shape { return &Circle{} })
}

func squares() Category[Shape] {
	return NewCategory[Shape]("shape", func() Shape { return &Square{} })
}

func TestBuilder(t *testing.T) {
	t.Run("register and lookup", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, Register(b, circles()))
		cfg := b.Build()

		category, ok := Lookup[Shape](cfg, "shape")
		require.True(t, ok)
		assert.Equal(t, "shape", category.Name())
		assert.Equal(t, []string{"shape"}, cfg.Names())
	})

	t.Run("duplicate registration", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, Register(b, circles()))
		err := Register(b, squares())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("invalid categories", func(t *testing.T) {
		b := NewBuilder()
		assert.Error(t, Register[Shape](b, nil))
		assert.Error(t, Register(b, NewCategory[Shape]("", func() Shape { return &Circle{} })))
	})

	t.Run("must register panics on duplicate", func(t *testing.T) {
		b := MustRegister(NewBuilder(), circles())
		assert.Panics(t, func() { MustRegister(b, squares()) })
	})

	t.Run("build is a snapshot", func(t *testing.T) {
		b := NewBuilder()
		cfg := b.Build()
		require.NoError(t, Register(b, circles()))

		_, ok := Lookup[Shape](cfg, "shape")
		assert.False(t, ok)
	})

	t.Run("lookup with wrong type", func(t *testing.T) {
		cfg := MustRegister(NewBuilder(), circles()).Build()
		_, ok := Lookup[*Label](cfg, "shape")
		assert.False(t, ok)
	})
}

func TestNilConfig(t *testing.T) {
	var cfg *Config

	_, ok := Lookup[Shape](cfg, "shape")
	assert.False(t, ok)
	assert.NotNil(t, cfg.Logger())
	assert.Nil(t, cfg.Names())

	fallback := circles()
	assert.Equal(t, fallback, LookupOr(cfg, "shape", fallback))
}

func TestOverride(t *testing.T) {
	base := MustRegister(NewBuilder(), circles()).Build()
	overridden := Override(base, squares())

	shape, ok := LookupOr(overridden, "shape", circles()).Resolve(wire.Dictionary{"id": "s1"}, overridden)
	require.True(t, ok)
	assert.Equal(t, "square", shape.Kind())

	original, ok := LookupOr(base, "shape", squares()).Resolve(wire.Dictionary{"id": "c1"}, base)
	require.True(t, ok)
	assert.Equal(t, "circle", original.Kind())

	fromNil := Override(nil, squares())
	_, ok = Lookup[Shape](fromNil, "shape")
	assert.True(t, ok)
}

func TestResolve(t *testing.T) {
	category := circles()

	t.Run("entity passthrough", func(t *testing.T) {
		existing := &Square{Circle{ID: "sq", Radius: 2}}
		got, ok := category.Resolve(existing, nil)
		require.True(t, ok)
		assert.Same(t, existing, got)
	})

	t.Run("dictionary builds a fresh instance", func(t *testing.T) {
		got, ok := category.Resolve(map[string]any{"id": "c1", "radius": 1.5}, nil)
		require.True(t, ok)
		circle, isCircle := got.(*Circle)
		require.True(t, isCircle)
		assert.Equal(t, "c1", circle.ID)
		assert.Equal(t, 1.5, circle.Radius)
	})

	t.Run("entity of another category", func(t *testing.T) {
		_, ok := category.Resolve(&Label{ID: "l1"}, nil)
		assert.False(t, ok)
	})

	t.Run("other shapes", func(t *testing.T) {
		for _, v := range []any{nil, "c1", 3, []any{}} {
			got, ok := category.Resolve(v, nil)
			assert.False(t, ok, "%v", v)
			assert.Nil(t, got)
		}
	})
}

func TestMergeOne(t *testing.T) {
	category := circles()

	got, ok := category.MergeOne(wire.Dictionary{"shape": wire.Dictionary{"id": "c1"}}, "shape", nil, nil)
	require.True(t, ok)
	assert.Equal(t, "c1", got.EntityID())

	_, ok = category.MergeOne(wire.Dictionary{}, "shape", nil, nil)
	assert.False(t, ok)

	_, ok = category.MergeOne(wire.Dictionary{"shape": "c1"}, "shape", nil, nil)
	assert.False(t, ok)
}

func TestMergeMany(t *testing.T) {
	category := circles()

	existing := &Circle{ID: "kept"}
	d := wire.Dictionary{"shapes": []any{
		map[string]any{"id": "c1"},
		"garbage",
		existing,
		&Label{ID: "l1"},
	}}

	got, ok := category.MergeMany(d, "shapes", nil, nil)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].EntityID())
	assert.Same(t, existing, got[1])

	typed, ok := category.MergeMany(wire.Dictionary{"shapes": []Shape{existing}}, "shapes", nil, nil)
	require.True(t, ok)
	assert.Len(t, typed, 1)

	empty, ok := category.MergeMany(wire.Dictionary{"shapes": []any{}}, "shapes", nil, nil)
	require.True(t, ok)
	assert.Empty(t, empty)

	_, ok = category.MergeMany(wire.Dictionary{}, "shapes", nil, nil)
	assert.False(t, ok)

	_, ok = category.MergeMany(wire.Dictionary{"shapes": "c1"}, "shapes", nil, nil)
	assert.False(t, ok)
}

func TestMergeOneIntoCurrent(t *testing.T) {
	category := circles()
	current := &Circle{ID: "c1", Radius: 2}
	d := wire.Dictionary{"shape": map[string]any{"radius": 3.0}}

	got, ok := category.MergeOne(d, "shape", current, nil)
	require.True(t, ok)
	assert.NotSame(t, current, got)
	assert.Equal(t, &Circle{ID: "c1", Radius: 3}, got)
	assert.Equal(t, 2.0, current.Radius, "current value is not mutated")

	again, ok := category.MergeOne(d, "shape", got, nil)
	require.True(t, ok)
	assert.Equal(t, got, again)

	t.Run("other concrete type builds a fresh instance", func(t *testing.T) {
		got, ok := category.MergeOne(d, "shape", &Square{Circle{ID: "sq"}}, nil)
		require.True(t, ok)
		assert.Equal(t, &Circle{Radius: 3}, got)
	})
}

func TestMergeManyMatchesCurrent(t *testing.T) {
	category := circles()
	current := []Shape{&Circle{ID: "a", Radius: 1}, &Circle{ID: "b", Radius: 2}}

	t.Run("by identifier", func(t *testing.T) {
		d := wire.Dictionary{"shapes": []any{
			map[string]any{"id": "b", "radius": 5.0},
			map[string]any{"id": "new"},
		}}
		got, ok := category.MergeMany(d, "shapes", current, nil)
		require.True(t, ok)
		assert.Equal(t, []Shape{&Circle{ID: "b", Radius: 5}, &Circle{ID: "new"}}, got)
	})

	t.Run("by position", func(t *testing.T) {
		d := wire.Dictionary{"shapes": []any{
			"garbage",
			map[string]any{"radius": 7.0},
			map[string]any{"radius": 8.0},
			map[string]any{"radius": 9.0},
		}}
		got, ok := category.MergeMany(d, "shapes", current, nil)
		require.True(t, ok)
		assert.Equal(t, []Shape{&Circle{ID: "a", Radius: 7}, &Circle{ID: "b", Radius: 8}, &Circle{Radius: 9}}, got)

		again, ok := category.MergeMany(d, "shapes", got, nil)
		require.True(t, ok)
		assert.Equal(t, got, again)
	})

	assert.Equal(t, 1.0, current[0].(*Circle).Radius, "current elements are not mutated")
}

func TestDecodeOne(t *testing.T) {
	category := circles()
	c, err := wire.NewJSONContainer([]byte(`{
		"good": {"id": "c1", "radius": 2},
		"incomplete": {"id": "c2"},
		"scalar": 5
	}`))
	require.NoError(t, err)

	got, ok := category.DecodeOne(c, "good", nil)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.(*Circle).Radius)

	for _, key := range []string{"incomplete", "scalar", "absent"} {
		got, ok := category.DecodeOne(c, key, nil)
		assert.False(t, ok, key)
		assert.Nil(t, got, key)
	}
}

func TestDecodeMany(t *testing.T) {
	category := circles()
	c, err := wire.NewJSONContainer([]byte(`{
		"good": [{"id": "c1", "radius": 1}, {"id": "c2", "radius": 2}],
		"partial": [{"id": "c1", "radius": 1}, {"id": "c2"}],
		"object": {"id": "c1", "radius": 1}
	}`))
	require.NoError(t, err)

	got := category.DecodeMany(c, "good", nil)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[1].EntityID())

	for _, key := range []string{"partial", "object", "absent"} {
		got := category.DecodeMany(c, key, nil)
		assert.NotNil(t, got, key)
		assert.Empty(t, got, key)
	}
}

func TestSwallowedFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := MustRegister(NewBuilder(WithLogger(zap.New(core))), circles()).Build()
	category, _ := Lookup[Shape](cfg, "shape")

	c, err := wire.NewJSONContainer([]byte(`{"shape": {"id": "c1"}}`))
	require.NoError(t, err)

	_, ok := category.DecodeOne(c, "shape", cfg)
	require.False(t, ok)

	entries := logs.FilterMessage("strict decode failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "shape", fields["category"])
	assert.Equal(t, "shape", fields["key"])
	assert.Contains(t, fields["error"], "radius")

	// Absence is not a failure
	_, ok = category.DecodeOne(c, "absent", cfg)
	require.False(t, ok)
	assert.Equal(t, 1, logs.Len())
}

func TestConfigConcurrentReads(t *testing.T) {
	cfg := MustRegister(NewBuilder(), circles()).Build()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			category, ok := Lookup[Shape](cfg, "shape")
			if !ok {
				errs <- fmt.Errorf("lookup %d failed", i)
				return
			}
			id := fmt.Sprintf("c%d", i)
			shape, ok := category.Resolve(wire.Dictionary{"id": id}, cfg)
			if !ok || shape.EntityID() != id {
				errs <- fmt.Errorf("resolve %d failed", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
