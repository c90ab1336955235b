package flatmap

import "fmt"

// Merge returns a new map holding base with override applied on top of it.
//
// Keys missing from base are inserted. When both sides hold a mapping the two
// are merged recursively, except that an empty override mapping leaves the
// base value untouched. Any other override value replaces the base value,
// including zero values such as 0, false and "".
//
// Neither input is modified. Merge is not commutative: override wins.
func Merge[K comparable](base, override map[K]any) map[K]any {
	result := make(map[K]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}

	for k, ov := range override {
		bv, exists := result[k]
		if !exists {
			result[k] = ov
			continue
		}
		if IsMapping(bv) && IsMapping(ov) {
			if mappingLen(ov) == 0 {
				continue
			}
			result[k] = mergeMappings(bv, ov)
			continue
		}
		result[k] = ov
	}

	return result
}

// mergeMappings merges two recognized mappings, converting the override into
// the container type of the base first.
func mergeMappings(base, override any) any {
	switch b := base.(type) {
	case map[string]any:
		return Merge(b, asStringMap(override))
	case map[any]any:
		return Merge(b, asAnyMap(override))
	default:
		return override
	}
}

func mappingLen(v any) int {
	switch m := v.(type) {
	case map[string]any:
		return len(m)
	case map[any]any:
		return len(m)
	default:
		return 0
	}
}

func asStringMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	default:
		return nil
	}
}

func asAnyMap(v any) map[any]any {
	switch m := v.(type) {
	case map[any]any:
		return m
	case map[string]any:
		out := make(map[any]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	default:
		return nil
	}
}
