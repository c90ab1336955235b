package flatmap

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrPathConflict is returned when one flat key is a strict prefix of
	// another, so the same path would have to be both a value and a section.
	ErrPathConflict = errors.New("conflicting configuration paths")

	// ErrEmptyKey is returned when a flat map holds a value under the empty key.
	ErrEmptyKey = errors.New("empty compound key")
)

// Kind selects the mapping container used when rebuilding a nested structure.
type Kind int

const (
	// StringMap rebuilds every level as map[string]any. Non-string segments
	// are rendered with fmt.Sprint.
	StringMap Kind = iota
	// AnyMap rebuilds every level as map[any]any and keeps segments as-is.
	AnyMap
)

// FlatMap maps a compound key to a leaf value. Lists are leaves.
type FlatMap map[CompoundKey]any

// IsMapping reports whether v is one of the recognized nested mapping types.
func IsMapping(v any) bool {
	switch v.(type) {
	case map[string]any, map[any]any:
		return true
	default:
		return false
	}
}

// Flatten walks root depth-first and records every leaf under its full path.
// Empty nested mappings produce no entries. A root that is not a mapping
// yields an empty FlatMap.
func Flatten(root any) FlatMap {
	flat := make(FlatMap)
	flattenInto(flat, "", root)
	return flat
}

func flattenInto(flat FlatMap, prefix CompoundKey, value any) {
	visit := func(seg any, child any) {
		key := prefix.Append(seg)
		if IsMapping(child) {
			flattenInto(flat, key, child)
			return
		}
		flat[key] = child
	}

	switch m := value.(type) {
	case map[string]any:
		for k, v := range m {
			visit(k, v)
		}
	case map[any]any:
		for k, v := range m {
			visit(k, v)
		}
	}
}

// Keys returns the keys of f in a stable order.
func (f FlatMap) Keys() []CompoundKey {
	keys := make([]CompoundKey, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clone returns a shallow copy of f.
func (f FlatMap) Clone() FlatMap {
	out := make(FlatMap, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Overlay returns a new FlatMap holding every entry of f and every entry of
// other, with other winning. Entries of f that are ancestors or descendants of
// a key in other are dropped, so replacing a section with a value (or a value
// with a section) never leaves a prefix conflict behind.
func (f FlatMap) Overlay(other FlatMap) FlatMap {
	out := f.Clone()
	for key := range other {
		for existing := range out {
			if existing.HasPrefix(key) || key.HasPrefix(existing) {
				delete(out, existing)
			}
		}
	}
	for key, v := range other {
		out[key] = v
	}
	return out
}

// Unflatten rebuilds a nested map[string]any from flat.
func Unflatten(flat FlatMap) (map[string]any, error) {
	tree, err := UnflattenAs(flat, StringMap)
	if err != nil {
		return nil, err
	}
	return tree.(map[string]any), nil
}

// UnflattenAs rebuilds a nested structure from flat using the container kind
// at every level, including mappings found inside list values.
//
// A key that is a strict prefix of another key is rejected with
// ErrPathConflict.
func UnflattenAs(flat FlatMap, kind Kind) (any, error) {
	root, err := buildTree(flat)
	if err != nil {
		return nil, err
	}
	return root.materialize(kind)
}

// Restore unflattens v when it is a FlatMap and returns it unchanged
// otherwise, so already nested input can pass through the same call.
func Restore(v any, kind Kind) (any, error) {
	flat, ok := v.(FlatMap)
	if !ok {
		return v, nil
	}
	return UnflattenAs(flat, kind)
}

// node is the canonical tree built from a flat map before it is materialized
// into a concrete container kind.
type node struct {
	leaf     any
	isLeaf   bool
	children map[any]*node
}

func newBranch() *node {
	return &node{children: make(map[any]*node)}
}

func buildTree(flat FlatMap) (*node, error) {
	root := newBranch()

	for _, key := range flat.Keys() {
		segments := key.Segments()
		if len(segments) == 0 {
			return nil, ErrEmptyKey
		}

		current := root
		for i, seg := range segments[:len(segments)-1] {
			child, ok := current.children[seg]
			switch {
			case !ok:
				child = newBranch()
				current.children[seg] = child
			case child.isLeaf:
				return nil, fmt.Errorf("%w: %q is a value and %q is below it",
					ErrPathConflict, NewCompoundKey(segments[:i+1]...).String(), key.String())
			}
			current = child
		}

		last := segments[len(segments)-1]
		if _, exists := current.children[last]; exists {
			return nil, fmt.Errorf("%w: %q is a value and a section", ErrPathConflict, key.String())
		}
		current.children[last] = &node{leaf: flat[key], isLeaf: true}
	}

	return root, nil
}

func (n *node) materialize(kind Kind) (any, error) {
	if n.isLeaf {
		return convertValue(n.leaf, kind)
	}

	if kind == AnyMap {
		out := make(map[any]any, len(n.children))
		for seg, child := range n.children {
			v, err := child.materialize(kind)
			if err != nil {
				return nil, err
			}
			out[seg] = v
		}
		return out, nil
	}

	out := make(map[string]any, len(n.children))
	for seg, child := range n.children {
		name := fmt.Sprint(seg)
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("%w: more than one key renders as %q", ErrPathConflict, name)
		}
		v, err := child.materialize(kind)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// convertValue rewrites mappings, and mappings nested in lists, into the
// requested container kind. Other values are returned unchanged.
func convertValue(v any, kind Kind) (any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			converted, err := convertValue(elem, kind)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case map[string]any:
		return convertMapping(t, kind)
	case map[any]any:
		return convertMapping(t, kind)
	default:
		return v, nil
	}
}

func convertMapping[K comparable](m map[K]any, kind Kind) (any, error) {
	if kind == AnyMap {
		out := make(map[any]any, len(m))
		for k, elem := range m {
			converted, err := convertValue(elem, kind)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	}

	out := make(map[string]any, len(m))
	for k, elem := range m {
		name := fmt.Sprint(k)
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("%w: more than one key renders as %q", ErrPathConflict, name)
		}
		converted, err := convertValue(elem, kind)
		if err != nil {
			return nil, err
		}
		out[name] = converted
	}
	return out, nil
}
