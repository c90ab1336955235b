package config

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	intRe   = regexp.MustCompile(`^-?[0-9]+$`)
	floatRe = regexp.MustCompile(`^-?[0-9]+\.[0-9]+$`)
)

// StringToType interprets a raw string, as found in an environment variable,
// as the most specific value it can represent. In order it tries a
// case-insensitive boolean, an integer, a decimal float, and a list or mapping
// literal in flow syntax (single or double quoted strings, any boolean case).
// Anything that does not parse cleanly is returned unchanged.
func StringToType(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}

	if intRe.MatchString(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}

	if floatRe.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if v, ok := parseLiteral(s); ok {
		return v
	}

	return s
}

// parseLiteral decodes a "[...]" or "{...}" literal. Inside the literal only
// quoted strings, integers, decimal floats, the words true and false in any
// case, and nested lists and mappings are accepted; a bare word or any other
// YAML scalar makes the whole literal invalid.
func parseLiteral(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, false
	}

	var want yaml.Kind
	switch trimmed[0] {
	case '[':
		if !strings.HasSuffix(trimmed, "]") {
			return nil, false
		}
		want = yaml.SequenceNode
	case '{':
		if !strings.HasSuffix(trimmed, "}") {
			return nil, false
		}
		want = yaml.MappingNode
	default:
		return nil, false
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != want {
		return nil, false
	}
	return literalValue(doc.Content[0])
}

var literalFloatRe = regexp.MustCompile(`^[-+]?([0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)([eE][-+]?[0-9]+)?$`)

// literalValue converts one node of a literal, rejecting anything that is not
// a plain primitive, a quoted string or a nested list or mapping.
func literalValue(n *yaml.Node) (any, bool) {
	if n.Anchor != "" || n.Style&yaml.TaggedStyle != 0 {
		return nil, false
	}

	switch n.Kind {
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, elem := range n.Content {
			v, ok := literalValue(elem)
			if !ok {
				return nil, false
			}
			out[i] = v
		}
		return out, true

	case yaml.MappingNode:
		keys := make([]any, 0, len(n.Content)/2)
		values := make([]any, 0, len(n.Content)/2)
		allStrings := true
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Kind != yaml.ScalarNode {
				return nil, false
			}
			k, ok := literalValue(n.Content[i])
			if !ok {
				return nil, false
			}
			v, ok := literalValue(n.Content[i+1])
			if !ok {
				return nil, false
			}
			if _, isString := k.(string); !isString {
				allStrings = false
			}
			keys = append(keys, k)
			values = append(values, v)
		}
		if allStrings {
			out := make(map[string]any, len(keys))
			for i, k := range keys {
				out[k.(string)] = values[i]
			}
			return out, true
		}
		out := make(map[any]any, len(keys))
		for i, k := range keys {
			out[k] = values[i]
		}
		return out, true

	case yaml.ScalarNode:
		return literalScalar(n)

	default:
		return nil, false
	}
}

func literalScalar(n *yaml.Node) (any, bool) {
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		return n.Value, true
	}
	if n.Style != 0 {
		return nil, false
	}

	switch strings.ToLower(n.Value) {
	case "true":
		return true, true
	case "false":
		return false, true
	}

	switch n.ShortTag() {
	case "!!int":
		if !intRe.MatchString(strings.TrimPrefix(n.Value, "+")) {
			return nil, false
		}
		v, err := strconv.Atoi(n.Value)
		return v, err == nil
	case "!!float":
		if !literalFloatRe.MatchString(n.Value) {
			return nil, false
		}
		v, err := strconv.ParseFloat(n.Value, 64)
		return v, err == nil
	default:
		return nil, false
	}
}
