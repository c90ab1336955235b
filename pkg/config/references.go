package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/nauticalab/dotcfg/pkg/flatmap"
)

const (
	placeholderOpen  = "${"
	placeholderClose = '}'
)

// ResolveReferences returns a copy of flat with every ${dotted.path}
// placeholder replaced by the value it points to. The input is not modified.
//
// A string that is exactly one placeholder takes the native value of its
// target; placeholders embedded in longer text are stringified. Placeholders
// may nest, in which case the inner ones compute the path of the outer one.
// String elements of lists are resolved the same way. Missing targets resolve
// to "". Keys taking part in a reference cycle, and keys depending on them,
// keep their original value.
func ResolveReferences(flat flatmap.FlatMap) flatmap.FlatMap {
	return NewResolver(flat, zerolog.Nop()).Resolve()
}

// Resolver resolves placeholders over one flat map. Missing and cyclic
// references are reported on the logger at debug level.
type Resolver struct {
	flat   flatmap.FlatMap
	keys   []flatmap.CompoundKey
	index  map[string]flatmap.CompoundKey
	logger zerolog.Logger

	memo     map[flatmap.CompoundKey]resolution
	visiting map[flatmap.CompoundKey]bool
}

type resolution struct {
	value  any
	cyclic bool
}

// NewResolver prepares a Resolver for flat.
func NewResolver(flat flatmap.FlatMap, logger zerolog.Logger) *Resolver {
	keys := flat.Keys()
	index := make(map[string]flatmap.CompoundKey, len(keys))
	for _, key := range keys {
		dotted := key.String()
		if _, taken := index[dotted]; !taken {
			index[dotted] = key
		}
	}

	return &Resolver{
		flat:   flat,
		keys:   keys,
		index:  index,
		logger: logger,
	}
}

// Resolve returns a new flat map holding the resolved value of every key.
func (r *Resolver) Resolve() flatmap.FlatMap {
	r.memo = make(map[flatmap.CompoundKey]resolution, len(r.keys))
	r.visiting = make(map[flatmap.CompoundKey]bool)

	out := make(flatmap.FlatMap, len(r.keys))
	for _, key := range r.keys {
		out[key] = r.resolveKey(key).value
	}
	return out
}

func (r *Resolver) resolveKey(key flatmap.CompoundKey) resolution {
	if res, ok := r.memo[key]; ok {
		return res
	}
	original := r.flat[key]
	if r.visiting[key] {
		return resolution{value: original, cyclic: true}
	}

	r.visiting[key] = true
	value, cyclic := r.resolveValue(original)
	delete(r.visiting, key)

	if cyclic {
		r.logger.Debug().Str("key", key.String()).Msg("cyclic reference left unresolved")
		value = original
	}

	res := resolution{value: value, cyclic: cyclic}
	r.memo[key] = res
	return res
}

func (r *Resolver) resolveValue(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return r.resolveString(t)
	case []any:
		out := make([]any, len(t))
		cyclic := false
		for i, elem := range t {
			s, ok := elem.(string)
			if !ok {
				out[i] = elem
				continue
			}
			resolved, cyc := r.resolveString(s)
			out[i] = resolved
			cyclic = cyclic || cyc
		}
		return out, cyclic
	case []string:
		out := make([]any, len(t))
		cyclic := false
		for i, s := range t {
			resolved, cyc := r.resolveString(s)
			out[i] = resolved
			cyclic = cyclic || cyc
		}
		return out, cyclic
	default:
		return v, false
	}
}

// resolveString applies the scalar rules to one string.
func (r *Resolver) resolveString(s string) (any, bool) {
	parts := splitPlaceholders(s)
	if len(parts) == 1 && parts[0].placeholder {
		return r.resolvePlaceholder(parts[0].text)
	}
	if !hasPlaceholder(parts) {
		return s, false
	}
	return r.render(parts)
}

// render substitutes every placeholder of parts with its stringified value.
func (r *Resolver) render(parts []part) (string, bool) {
	var b strings.Builder
	for _, p := range parts {
		if !p.placeholder {
			b.WriteString(p.text)
			continue
		}
		value, cyclic := r.resolvePlaceholder(p.text)
		if cyclic {
			return "", true
		}
		b.WriteString(stringify(value))
	}
	return b.String(), false
}

// resolvePlaceholder looks up the value of one placeholder expression,
// resolving nested placeholders in the expression first.
func (r *Resolver) resolvePlaceholder(expr string) (any, bool) {
	path, cyclic := r.render(splitPlaceholders(expr))
	if cyclic {
		return nil, true
	}

	key, ok := r.index[path]
	if !ok {
		r.logger.Debug().Str("reference", path).Msg("unresolved reference replaced with empty string")
		return "", false
	}

	res := r.resolveKey(key)
	return res.value, res.cyclic
}

// part is either literal text or the expression inside one ${...}.
type part struct {
	text        string
	placeholder bool
}

// splitPlaceholders cuts s into literal text and top-level placeholder
// expressions. Braces are matched by nesting depth so an expression may itself
// hold placeholders. An unterminated "${" is kept as literal text.
func splitPlaceholders(s string) []part {
	var parts []part
	for s != "" {
		start := strings.Index(s, placeholderOpen)
		if start < 0 {
			break
		}
		end := matchingClose(s, start+len(placeholderOpen))
		if end < 0 {
			break
		}
		if start > 0 {
			parts = append(parts, part{text: s[:start]})
		}
		parts = append(parts, part{text: s[start+len(placeholderOpen) : end], placeholder: true})
		s = s[end+1:]
	}
	if s != "" {
		parts = append(parts, part{text: s})
	}
	return parts
}

// matchingClose returns the index of the brace closing a placeholder whose
// expression starts at from, or -1.
func matchingClose(s string, from int) int {
	depth := 1
	for i := from; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], placeholderOpen):
			depth++
			i++
		case s[i] == placeholderClose:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func hasPlaceholder(parts []part) bool {
	for _, p := range parts {
		if p.placeholder {
			return true
		}
	}
	return false
}

// stringify renders a referenced value for substitution into text.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any, map[string]any, map[any]any:
		data, err := json.Marshal(stringKeys(t))
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

// stringKeys rewrites map[any]any levels of v as map[string]any so that v can
// be encoded as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[fmt.Sprint(k)] = stringKeys(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = stringKeys(elem)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = stringKeys(elem)
		}
		return out
	default:
		return v
	}
}
