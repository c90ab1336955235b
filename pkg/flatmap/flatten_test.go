package flatmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() map[string]any {
	return map[string]any{
		"app": map[string]any{
			"name":  "dotcfg",
			"debug": false,
			"ports": []any{8080, 8443},
			"db": map[string]any{
				"host": "localhost",
				"port": 5432,
			},
		},
		"servers": []any{
			map[string]any{"name": "a", "tags": []any{map[string]any{"k": "v"}}},
			"plain",
		},
		"ratio": 0.5,
	}
}

func TestFlatten(t *testing.T) {
	flat := Flatten(sampleTree())

	assert.Len(t, flat, 7)
	assert.Equal(t, "dotcfg", flat[ParsePath("app.name")])
	assert.Equal(t, false, flat[ParsePath("app.debug")])
	assert.Equal(t, []any{8080, 8443}, flat[ParsePath("app.ports")], "lists are leaves")
	assert.Equal(t, 5432, flat[ParsePath("app.db.port")])
	assert.Equal(t, 0.5, flat[ParsePath("ratio")])
	assert.Contains(t, flat, ParsePath("servers"))
}

func TestFlatten_EmptySectionsVanish(t *testing.T) {
	flat := Flatten(map[string]any{
		"a": map[string]any{},
		"b": map[string]any{"c": map[string]any{}},
		"d": 1,
	})
	assert.Equal(t, FlatMap{ParsePath("d"): 1}, flat)
}

func TestFlatten_NonMappingRoot(t *testing.T) {
	assert.Empty(t, Flatten([]any{1, 2}))
	assert.Empty(t, Flatten("scalar"))
	assert.Empty(t, Flatten(nil))
}

func TestFlatten_IntKeys(t *testing.T) {
	tree := map[any]any{
		1: map[any]any{2: "deep"},
		"name": "x",
	}

	flat := Flatten(tree)
	assert.Equal(t, "deep", flat[NewCompoundKey(1, 2)])
	assert.Equal(t, "x", flat[NewCompoundKey("name")])

	restored, err := UnflattenAs(flat, AnyMap)
	require.NoError(t, err)
	assert.Equal(t, tree, restored)
}

func TestUnflatten_RoundTrip(t *testing.T) {
	t.Run("string map", func(t *testing.T) {
		tree := sampleTree()
		restored, err := Unflatten(Flatten(tree))
		require.NoError(t, err)
		assert.Equal(t, tree, restored)
	})

	t.Run("any map at every level", func(t *testing.T) {
		restored, err := UnflattenAs(Flatten(sampleTree()), AnyMap)
		require.NoError(t, err)

		want := map[any]any{
			"app": map[any]any{
				"name":  "dotcfg",
				"debug": false,
				"ports": []any{8080, 8443},
				"db": map[any]any{
					"host": "localhost",
					"port": 5432,
				},
			},
			"servers": []any{
				map[any]any{"name": "a", "tags": []any{map[any]any{"k": "v"}}},
				"plain",
			},
			"ratio": 0.5,
		}
		assert.Equal(t, want, restored)
	})
}

func TestUnflatten_RendersNonStringSegments(t *testing.T) {
	flat := FlatMap{NewCompoundKey("ports", 80): "http"}

	restored, err := Unflatten(flat)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ports": map[string]any{"80": "http"}}, restored)
}

func TestUnflatten_PathConflict(t *testing.T) {
	tests := []struct {
		name string
		flat FlatMap
	}{
		{
			name: "value above section",
			flat: FlatMap{ParsePath("a"): 1, ParsePath("a.b"): 2},
		},
		{
			name: "value above deep section",
			flat: FlatMap{ParsePath("a.b"): 1, ParsePath("a.b.c.d"): 2},
		},
		{
			name: "rendered names collide",
			flat: FlatMap{NewCompoundKey("x", 1): "int", NewCompoundKey("x", "1"): "string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unflatten(tt.flat)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPathConflict))
		})
	}

	t.Run("distinct segment types are fine for any map", func(t *testing.T) {
		flat := FlatMap{NewCompoundKey("x", 1): "int", NewCompoundKey("x", "1"): "string"}
		restored, err := UnflattenAs(flat, AnyMap)
		require.NoError(t, err)
		assert.Equal(t, map[any]any{"x": map[any]any{1: "int", "1": "string"}}, restored)
	})
}

func TestUnflatten_EmptyKey(t *testing.T) {
	_, err := Unflatten(FlatMap{"": 1})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestRestore(t *testing.T) {
	nested := map[string]any{"a": 1}
	out, err := Restore(nested, StringMap)
	require.NoError(t, err)
	assert.Equal(t, nested, out, "already nested input passes through")

	out, err = Restore(FlatMap{ParsePath("a.b"): 1}, StringMap)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, out)
}

func TestFlatMap_Overlay(t *testing.T) {
	base := FlatMap{
		ParsePath("a.b"):   1,
		ParsePath("a.c"):   2,
		ParsePath("x"):     "scalar",
		ParsePath("other"): true,
	}
	override := FlatMap{
		ParsePath("a"):   "replaced section",
		ParsePath("x.y"): "now a section",
		ParsePath("new"): 3,
	}

	out := base.Overlay(override)

	assert.Equal(t, FlatMap{
		ParsePath("a"):     "replaced section",
		ParsePath("x.y"):   "now a section",
		ParsePath("new"):   3,
		ParsePath("other"): true,
	}, out)
	assert.Len(t, base, 4, "receiver is not modified")

	_, err := Unflatten(out)
	assert.NoError(t, err)
}

func TestFlatMap_KeysSorted(t *testing.T) {
	flat := FlatMap{ParsePath("b"): 1, ParsePath("a"): 2, ParsePath("a.z"): 3}
	keys := flat.Keys()
	require.Len(t, keys, 3)
	for i := 1; i < len(keys); i++ {
		assert.Less(t, string(keys[i-1]), string(keys[i]))
	}
}

func TestFlatMap_Clone(t *testing.T) {
	flat := FlatMap{ParsePath("a"): 1}
	clone := flat.Clone()
	clone[ParsePath("b")] = 2

	assert.Len(t, flat, 1)
	assert.Len(t, clone, 2)
}
