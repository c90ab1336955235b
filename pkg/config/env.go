package config

import (
	"os"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/nauticalab/dotcfg/pkg/flatmap"
)

// envSeparator separates the prefix and the path segments of an override
// variable, as in DOTCFG__DATABASE__HOST.
const envSeparator = "__"

// Environ returns the process environment as a map.
func Environ() map[string]string {
	return env.ToMap(os.Environ())
}

// applyEnvOverrides overlays every PREFIX__seg__seg variable of environ onto
// flat. The prefix matches case-insensitively and segments are lowercased.
// Values are coerced with StringToType. Variables are applied in sorted name
// order, so when two variables name the same path the later one wins.
func applyEnvOverrides(flat flatmap.FlatMap, prefix string, environ map[string]string) flatmap.FlatMap {
	names := make([]string, 0, len(environ))
	for name := range environ {
		names = append(names, name)
	}
	sort.Strings(names)

	result := flat
	for _, name := range names {
		key, ok := envKey(name, prefix)
		if !ok {
			continue
		}
		result = overlayValue(result, key, StringToType(environ[name]))
	}
	return result
}

// overlayValue sets value at key in flat. A mapping value is flattened below
// key so that flat never holds a mapping as a leaf; its leaves are merged with
// whatever already lives under key.
func overlayValue(flat flatmap.FlatMap, key flatmap.CompoundKey, value any) flatmap.FlatMap {
	if !flatmap.IsMapping(value) {
		return flat.Overlay(flatmap.FlatMap{key: value})
	}

	patch := make(flatmap.FlatMap)
	for sub, leaf := range flatmap.Flatten(value) {
		patch[key.Join(sub)] = leaf
	}
	return flat.Overlay(patch)
}

// envKey maps an environment variable name to a config path.
func envKey(name, prefix string) (flatmap.CompoundKey, bool) {
	head := prefix + envSeparator
	if len(name) <= len(head) || !strings.EqualFold(name[:len(head)], head) {
		return "", false
	}

	parts := strings.Split(name[len(head):], envSeparator)
	segments := make([]any, len(parts))
	for i, p := range parts {
		if p == "" {
			return "", false
		}
		segments[i] = strings.ToLower(p)
	}
	return flatmap.NewCompoundKey(segments...), true
}
