package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tomlDoc = `root = true

[nested]
foo = 1
ratio = 1.5
tags = ["a", "b"]

[[servers]]
name = "alpha"
`
	jsonDoc = `{"root": true, "nested": {"foo": 1, "ratio": 1.5, "tags": ["a", "b"]}, "servers": [{"name": "alpha"}]}`
	yamlDoc = `root: true
nested:
  foo: 1
  ratio: 1.5
  tags: [a, b]
servers:
  - name: alpha
`
)

func expectedDoc() map[string]any {
	return map[string]any{
		"root": true,
		"nested": map[string]any{
			"foo":   1,
			"ratio": 1.5,
			"tags":  []any{"a", "b"},
		},
		"servers": []any{map[string]any{"name": "alpha"}},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		format  Format
	}{
		{"toml auto", "config.toml", tomlDoc, FormatAuto},
		{"toml explicit", "config.toml", tomlDoc, FormatTOML},
		{"json auto", "config.json", jsonDoc, FormatAuto},
		{"json explicit", "config.json", jsonDoc, FormatJSON},
		{"yaml auto", "config.yaml", yamlDoc, FormatAuto},
		{"yml auto", "config.yml", yamlDoc, FormatAuto},
		{"yaml explicit", "config.yaml", yamlDoc, FormatYAML},
		{"explicit format ignores extension", "config.txt", jsonDoc, FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			raw, err := ReadFile(path, tt.format)
			require.NoError(t, err)
			assert.Equal(t, expectedDoc(), raw)
		})
	}
}

func TestReadFile_UnsupportedFileType(t *testing.T) {
	for _, name := range []string{"test", "test.invalid_extension"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), name, jsonDoc)

			_, err := ReadFile(path, FormatAuto)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedFileType)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.toml"), FormatAuto)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFile_ExpandsPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", jsonDoc)
	t.Setenv("DOTCFG_TEST_DIR", dir)

	raw, err := ReadFile("$DOTCFG_TEST_DIR/config.json", FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, true, raw["root"])
}

func TestDecodeBytes_UnsupportedConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"json list root", `[1, 2]`, FormatJSON},
		{"json scalar root", `"text"`, FormatJSON},
		{"json syntax error", `{"a": `, FormatJSON},
		{"yaml list root", "- a\n- b\n", FormatYAML},
		{"toml syntax error", "a = = 1", FormatTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedConfiguration)
		})
	}
}

func TestDecodeBytes_Numbers(t *testing.T) {
	raw, err := DecodeBytes([]byte(`{"i": 3, "f": 2.5, "big": 12345678901, "neg": -1}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 3, raw["i"])
	assert.Equal(t, 2.5, raw["f"])
	assert.Equal(t, 12345678901, raw["big"])
	assert.Equal(t, -1, raw["neg"])
}

func TestDecodeBytes_YAMLNonStringKeys(t *testing.T) {
	raw, err := DecodeBytes([]byte("ports:\n  80: http\n  443: https\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, map[any]any{80: "http", 443: "https"}, raw["ports"])

	cfg, err := Interpolate(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", mustGet(t, cfg, "ports.443"))
}

func TestDecodeBytes_EmptyYAML(t *testing.T) {
	raw, err := DecodeBytes([]byte(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatAuto, true},
		{"auto", FormatAuto, true},
		{"TOML", FormatTOML, true},
		{"json", FormatJSON, true},
		{"yml", FormatYAML, true},
		{"yaml", FormatYAML, true},
		{"ini", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnsupportedFileType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PROJECT_NAME", "DOTCFG")

	assert.Equal(t, home, ExpandPath("$HOME"))
	assert.Equal(t, home+"/DOTCFG", ExpandPath("$HOME/$PROJECT_NAME"))
	assert.Equal(t, home+"/DOTCFG", ExpandPath("${HOME}/${PROJECT_NAME}"))
	assert.Equal(t, filepath.Join(home, "config.toml"), ExpandPath("~/config.toml"))

	for _, plain := range []string{"TESTING", "$NOT_A_VARIABLE", "ENVIRONMENT", "bar"} {
		assert.Equal(t, plain, ExpandPath(plain))
	}
}
