package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nauticalab/dotcfg/pkg/flatmap"
)

func key(path string) flatmap.CompoundKey {
	return flatmap.ParsePath(path)
}

func TestResolveReferences(t *testing.T) {
	tests := []struct {
		name string
		in   flatmap.FlatMap
		want flatmap.FlatMap
	}{
		{
			name: "no references",
			in:   flatmap.FlatMap{key("a.b"): "foo", key("a"): "bar"},
			want: flatmap.FlatMap{key("a.b"): "foo", key("a"): "bar"},
		},
		{
			name: "root reference",
			in:   flatmap.FlatMap{key("a"): "${b}", key("b"): "foo"},
			want: flatmap.FlatMap{key("a"): "foo", key("b"): "foo"},
		},
		{
			name: "several references",
			in: flatmap.FlatMap{
				key("a"): "${b}", key("b"): "foo",
				key("c"): "bar", key("d"): "${c}",
			},
			want: flatmap.FlatMap{
				key("a"): "foo", key("b"): "foo",
				key("c"): "bar", key("d"): "bar",
			},
		},
		{
			name: "nested to root",
			in:   flatmap.FlatMap{key("a.b"): "${b}", key("b"): "foo"},
			want: flatmap.FlatMap{key("a.b"): "foo", key("b"): "foo"},
		},
		{
			name: "root to nested",
			in:   flatmap.FlatMap{key("x"): "${a.b}", key("a.b"): "foo"},
			want: flatmap.FlatMap{key("x"): "foo", key("a.b"): "foo"},
		},
		{
			name: "embedded references",
			in: flatmap.FlatMap{
				key("a"): "${b}-${b}", key("d"): "${b}-${c}",
				key("b"): "foo", key("c"): "bar",
			},
			want: flatmap.FlatMap{
				key("a"): "foo-foo", key("d"): "foo-bar",
				key("b"): "foo", key("c"): "bar",
			},
		},
		{
			name: "chain",
			in:   flatmap.FlatMap{key("a"): "${b}", key("b"): "${c}", key("c"): "bar"},
			want: flatmap.FlatMap{key("a"): "bar", key("b"): "bar", key("c"): "bar"},
		},
		{
			name: "missing reference",
			in:   flatmap.FlatMap{key("a"): "${b}", key("c"): "bar", key("d"): "${c}"},
			want: flatmap.FlatMap{key("a"): "", key("c"): "bar", key("d"): "bar"},
		},
		{
			name: "missing reference in text",
			in:   flatmap.FlatMap{key("a"): "x-${nope}-y"},
			want: flatmap.FlatMap{key("a"): "x--y"},
		},
		{
			name: "self reference",
			in:   flatmap.FlatMap{key("a"): "${a}"},
			want: flatmap.FlatMap{key("a"): "${a}"},
		},
		{
			name: "two key cycle",
			in:   flatmap.FlatMap{key("a"): "${b}", key("b"): "${a}", key("c"): "ok"},
			want: flatmap.FlatMap{key("a"): "${b}", key("b"): "${a}", key("c"): "ok"},
		},
		{
			name: "dependent of a cycle keeps its value",
			in:   flatmap.FlatMap{key("a"): "${a}", key("d"): "${a}!"},
			want: flatmap.FlatMap{key("a"): "${a}", key("d"): "${a}!"},
		},
		{
			name: "list elements",
			in:   flatmap.FlatMap{key("a"): "foo", key("b"): []any{"${a}", "${a}", "${a}"}},
			want: flatmap.FlatMap{key("a"): "foo", key("b"): []any{"foo", "foo", "foo"}},
		},
		{
			name: "list with missing element",
			in:   flatmap.FlatMap{key("a"): "foo", key("b"): []any{"${a}", "${a}", "${missing}"}},
			want: flatmap.FlatMap{key("a"): "foo", key("b"): []any{"foo", "foo", ""}},
		},
		{
			name: "list with nested reference and non strings",
			in:   flatmap.FlatMap{key("a.c"): "foo", key("b"): []any{"${a.c}", 1, true, nil}},
			want: flatmap.FlatMap{key("a.c"): "foo", key("b"): []any{"foo", 1, true, nil}},
		},
		{
			name: "computed key path",
			in: flatmap.FlatMap{
				key("general.nested.x"): "val",
				key("interpolation.key"): "x",
				key("lookup"):            "${general.nested.${interpolation.key}}",
			},
			want: flatmap.FlatMap{
				key("general.nested.x"): "val",
				key("interpolation.key"): "x",
				key("lookup"):            "val",
			},
		},
		{
			name: "computed key path through a chain",
			in: flatmap.FlatMap{
				key("servers.blue.host"): "10.0.0.1",
				key("active"):            "${default}",
				key("default"):           "blue",
				key("host"):              "http://${servers.${active}.host}:80",
			},
			want: flatmap.FlatMap{
				key("servers.blue.host"): "10.0.0.1",
				key("active"):            "blue",
				key("default"):           "blue",
				key("host"):              "http://10.0.0.1:80",
			},
		},
		{
			name: "native types kept for exact references",
			in: flatmap.FlatMap{
				key("port"): 8080, key("debug"): true, key("ratio"): 0.25,
				key("hosts"): []any{"a", "b"},
				key("p"):     "${port}", key("d"): "${debug}", key("r"): "${ratio}", key("h"): "${hosts}",
			},
			want: flatmap.FlatMap{
				key("port"): 8080, key("debug"): true, key("ratio"): 0.25,
				key("hosts"): []any{"a", "b"},
				key("p"):     8080, key("d"): true, key("r"): 0.25, key("h"): []any{"a", "b"},
			},
		},
		{
			name: "embedded values are stringified",
			in: flatmap.FlatMap{
				key("port"): 8080, key("debug"): false, key("ratio"): 0.25, key("none"): nil,
				key("hosts"): []any{"a", 1},
				key("s"):     "${port}|${debug}|${ratio}|${none}|${hosts}",
			},
			want: flatmap.FlatMap{
				key("port"): 8080, key("debug"): false, key("ratio"): 0.25, key("none"): nil,
				key("hosts"): []any{"a", 1},
				key("s"):     `8080|false|0.25||["a",1]`,
			},
		},
		{
			name: "unterminated placeholder is literal",
			in:   flatmap.FlatMap{key("a"): "${b", key("b"): "x", key("c"): "${b} and ${b"},
			want: flatmap.FlatMap{key("a"): "${b", key("b"): "x", key("c"): "x and ${b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveReferences(tt.in))
		})
	}
}

func TestResolveReferences_DoesNotModifyInput(t *testing.T) {
	in := flatmap.FlatMap{key("a.b"): "foo", key("a"): "${a.b}", key("l"): []any{"${a.b}"}}
	before := flatmap.FlatMap{key("a.b"): "foo", key("a"): "${a.b}", key("l"): []any{"${a.b}"}}

	out := ResolveReferences(in)

	assert.Equal(t, before, in)
	assert.NotEqual(t, in, out)
}

func TestResolveReferences_IntSegments(t *testing.T) {
	in := flatmap.FlatMap{
		flatmap.NewCompoundKey("ports", 80): "http",
		key("scheme"):                        "${ports.80}",
	}

	out := ResolveReferences(in)
	assert.Equal(t, "http", out[key("scheme")])
}

func TestResolveReferences_EmbeddedMappings(t *testing.T) {
	in := flatmap.FlatMap{
		key("any"):  []any{map[any]any{1: "a", "k": map[any]any{true: 2}}},
		key("str"):  []any{map[string]any{"x": 1}},
		key("text"): "any=${any} str=${str}",
	}

	out := ResolveReferences(in)
	assert.Equal(t, `any=[{"1":"a","k":{"true":2}}] str=[{"x":1}]`, out[key("text")])
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"int", 3, "3"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"list", []any{1, "a"}, `[1,"a"]`},
		{"string map", map[string]any{"a": 1}, `{"a":1}`},
		{"any map", map[any]any{1: "a"}, `{"1":"a"}`},
		{"nested any map", map[string]any{"m": map[any]any{2: []any{map[any]any{"x": 1}}}}, `{"m":{"2":[{"x":1}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringify(tt.in))
		})
	}
}

func TestResolver_LogsMissingAndCyclic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	out := NewResolver(flatmap.FlatMap{
		key("a"): "${missing}",
		key("b"): "${b}",
	}, logger).Resolve()

	require.Len(t, out, 2)
	assert.Contains(t, buf.String(), "unresolved reference")
	assert.Contains(t, buf.String(), `"reference":"missing"`)
	assert.Contains(t, buf.String(), "cyclic reference")
}

func TestResolver_ResolveTwice(t *testing.T) {
	r := NewResolver(flatmap.FlatMap{key("a"): "${b}", key("b"): 1}, zerolog.Nop())

	first := r.Resolve()
	second := r.Resolve()
	assert.Equal(t, first, second)
}

func TestSplitPlaceholders(t *testing.T) {
	tests := []struct {
		in   string
		want []part
	}{
		{"plain", []part{{text: "plain"}}},
		{"${a}", []part{{text: "a", placeholder: true}}},
		{"x${a}y", []part{{text: "x"}, {text: "a", placeholder: true}, {text: "y"}}},
		{"${a.${b}}", []part{{text: "a.${b}", placeholder: true}}},
		{"${a", []part{{text: "${a"}}},
		{"${}", []part{{text: "", placeholder: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitPlaceholders(tt.in))
		})
	}
}
