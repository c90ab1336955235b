package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names a configuration file format.
type Format string

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto Format = "auto"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a user supplied format name, case-insensitively.
// "yml" is accepted as an alias for "yaml"; the empty string means auto.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrUnsupportedFileType, name)
	}
}

// DetectFormat picks a format from the extension of path.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: cannot detect format of %s", ErrUnsupportedFileType, path)
	}
}

// ReadFile reads and decodes the configuration file at path. The path may use
// $VAR, ${VAR} and a leading ~, see ExpandPath. With FormatAuto the format is
// detected from the extension.
func ReadFile(path string, format Format) (map[string]any, error) {
	location := ExpandPath(path)

	if format == FormatAuto || format == "" {
		detected, err := DetectFormat(location)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", location, err)
	}

	raw, err := DecodeBytes(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}
	return raw, nil
}

// DecodeBytes decodes one document. The root must be a mapping. Numbers are
// normalized so that integers are int and JSON numbers become int or float64.
func DecodeBytes(data []byte, format Format) (map[string]any, error) {
	var (
		decoded any
		err     error
	)

	switch format {
	case FormatTOML:
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		decoded = m
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		err = decoder.Decode(&decoded)
	case FormatYAML:
		err = yaml.Unmarshal(data, &decoded)
		if err == nil && decoded == nil {
			// An empty YAML document is an empty configuration.
			decoded = map[string]any{}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedConfiguration, format, err)
	}

	switch root := normalize(decoded).(type) {
	case map[string]any:
		return root, nil
	case map[any]any:
		out := make(map[string]any, len(root))
		for k, v := range root {
			out[fmt.Sprint(k)] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: document root must be a mapping, got %T", ErrUnsupportedConfiguration, decoded)
	}
}

// ExpandPath replaces $VAR and ${VAR} with environment values and a leading ~
// with the home directory. Unknown variables are kept as written.
func ExpandPath(path string) string {
	expanded := os.Expand(path, func(name string) string {
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return "$" + name
	})

	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
		}
	}
	return expanded
}

// number is satisfied by json.Number.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// normalize returns a copy of v with decoder specific types replaced by the
// ones the rest of the package works with.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = normalize(elem)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, elem := range t {
			out[normalizeKey(k)] = normalize(elem)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = normalize(elem)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = normalize(elem)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = elem
		}
		return out
	case int64:
		return int(t)
	case int32:
		return int(t)
	case int16:
		return int(t)
	case int8:
		return int(t)
	case uint:
		if t <= math.MaxInt {
			return int(t)
		}
		return t
	case uint64:
		if t <= math.MaxInt {
			return int(t)
		}
		return t
	case uint32:
		return int(t)
	case uint16:
		return int(t)
	case uint8:
		return int(t)
	case float32:
		return float64(t)
	case number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

func normalizeKey(k any) any {
	switch k.(type) {
	case int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return normalize(k)
	default:
		return k
	}
}
