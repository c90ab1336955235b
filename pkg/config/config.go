package config

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/nauticalab/dotcfg/pkg/flatmap"
)

// Config is a resolved configuration. It is immutable: every accessor that
// returns a mapping or a list returns a copy, so a Config can be shared
// between goroutines without locking.
type Config struct {
	tree map[string]any
}

func newConfig(tree map[string]any) *Config {
	return &Config{tree: tree}
}

// Get returns the value at a dotted path such as "database.host". A segment
// that addresses a list may be a decimal index, as in "servers.0.name". The
// empty path returns the whole configuration.
func (c *Config) Get(path string) (any, bool) {
	if path == "" {
		return c.Map(), true
	}
	return c.Lookup(strings.Split(path, ".")...)
}

// Lookup is Get with the path given as separate segments, for keys that
// contain dots.
func (c *Config) Lookup(segments ...string) (any, bool) {
	var current any = c.tree
	for _, seg := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return deepCopy(current), true
}

// Sub returns the section at path as its own Config.
func (c *Config) Sub(path string) (*Config, bool) {
	v, ok := c.Get(path)
	if !ok {
		return nil, false
	}
	section, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return newConfig(section), true
}

// Keys returns the top-level keys in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.tree))
	for k := range c.tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of top-level keys.
func (c *Config) Len() int {
	return len(c.tree)
}

// Map returns a deep copy of the configuration tree.
func (c *Config) Map() map[string]any {
	return deepCopy(c.tree).(map[string]any)
}

// Flatten returns the configuration as a flat map.
func (c *Config) Flatten() flatmap.FlatMap {
	return flatmap.Flatten(c.Map())
}

// Decode fills target, a pointer to a struct or map, from the configuration
// using its json tags.
func (c *Config) Decode(target any) error {
	data, err := json.Marshal(c.tree)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode configuration into %T: %w", target, err)
	}
	return nil
}

// With returns a new Config with overrides applied. Override keys are dotted
// paths; a mapping value sets every leaf below its key. The receiver is not
// changed.
func (c *Config) With(overrides map[string]any) (*Config, error) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flat := c.Flatten()
	for _, k := range keys {
		flat = overlayValue(flat, flatmap.ParsePath(k), normalize(overrides[k]))
	}

	tree, err := flatmap.Unflatten(flat)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to apply overrides: %w", ErrConfiguration, err)
	}
	if err := Validate(tree); err != nil {
		return nil, err
	}
	return newConfig(tree), nil
}

// MarshalJSON encodes the configuration tree as a JSON object.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.tree)
}

// Encode writes the configuration to w in the given format.
func (c *Config) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(c.tree); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil

	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(c.tree); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()

	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(c.tree); err != nil {
			return fmt.Errorf("failed to encode TOML: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: cannot encode as %q", ErrUnsupportedFileType, format)
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = deepCopy(elem)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, elem := range t {
			out[k] = deepCopy(elem)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = deepCopy(elem)
		}
		return out
	default:
		return v
	}
}
