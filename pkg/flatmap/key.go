package flatmap

import (
	"fmt"
	"strconv"
	"strings"
)

// CompoundKey is an immutable, comparable path of segments. It is stored as a
// length-prefixed, type-tagged encoding so that it can be used directly as a
// Go map key while still distinguishing 1 from "1".
//
// Supported segment types are string, int, int64, uint64, bool and float64.
// Any other segment is stored as its fmt.Sprint rendering.
type CompoundKey string

const (
	tagString = 's'
	tagInt    = 'i'
	tagInt64  = 'l'
	tagUint64 = 'u'
	tagBool   = 'b'
	tagFloat  = 'f'
)

// NewCompoundKey builds a key from the given segments, in order.
func NewCompoundKey(segments ...any) CompoundKey {
	var b strings.Builder
	for _, seg := range segments {
		writeSegment(&b, seg)
	}
	return CompoundKey(b.String())
}

// ParsePath builds a key of string segments from a dotted path.
func ParsePath(path string) CompoundKey {
	if path == "" {
		return ""
	}
	parts := strings.Split(path, ".")
	segments := make([]any, len(parts))
	for i, p := range parts {
		segments[i] = p
	}
	return NewCompoundKey(segments...)
}

func writeSegment(b *strings.Builder, seg any) {
	var tag byte
	var text string

	switch v := seg.(type) {
	case string:
		tag, text = tagString, v
	case int:
		tag, text = tagInt, strconv.Itoa(v)
	case int64:
		tag, text = tagInt64, strconv.FormatInt(v, 10)
	case uint64:
		tag, text = tagUint64, strconv.FormatUint(v, 10)
	case bool:
		tag, text = tagBool, strconv.FormatBool(v)
	case float64:
		tag, text = tagFloat, strconv.FormatFloat(v, 'g', -1, 64)
	default:
		tag, text = tagString, fmt.Sprint(v)
	}

	b.WriteByte(tag)
	b.WriteString(strconv.Itoa(len(text)))
	b.WriteByte(':')
	b.WriteString(text)
}

// Segments decodes the key back into its segments.
func (k CompoundKey) Segments() []any {
	var segments []any
	rest := string(k)
	for rest != "" {
		seg, n, ok := readSegment(rest)
		if !ok {
			// Only reachable for keys not built by this package.
			return append(segments, rest)
		}
		segments = append(segments, seg)
		rest = rest[n:]
	}
	return segments
}

func readSegment(s string) (any, int, bool) {
	if len(s) < 3 {
		return nil, 0, false
	}
	tag := s[0]
	colon := strings.IndexByte(s, ':')
	if colon < 2 {
		return nil, 0, false
	}
	size, err := strconv.Atoi(s[1:colon])
	if err != nil || size < 0 || colon+1+size > len(s) {
		return nil, 0, false
	}
	text := s[colon+1 : colon+1+size]
	n := colon + 1 + size

	switch tag {
	case tagString:
		return text, n, true
	case tagInt:
		v, err := strconv.Atoi(text)
		return v, n, err == nil
	case tagInt64:
		v, err := strconv.ParseInt(text, 10, 64)
		return v, n, err == nil
	case tagUint64:
		v, err := strconv.ParseUint(text, 10, 64)
		return v, n, err == nil
	case tagBool:
		v, err := strconv.ParseBool(text)
		return v, n, err == nil
	case tagFloat:
		v, err := strconv.ParseFloat(text, 64)
		return v, n, err == nil
	default:
		return nil, 0, false
	}
}

// Len returns the number of segments.
func (k CompoundKey) Len() int {
	return len(k.Segments())
}

// Append returns a new key with seg added at the end.
func (k CompoundKey) Append(seg any) CompoundKey {
	var b strings.Builder
	b.WriteString(string(k))
	writeSegment(&b, seg)
	return CompoundKey(b.String())
}

// Join returns a new key made of k's segments followed by other's.
func (k CompoundKey) Join(other CompoundKey) CompoundKey {
	return k + other
}

// HasPrefix reports whether prefix's segments are a leading run of k's
// segments. Every key has the empty key as prefix.
func (k CompoundKey) HasPrefix(prefix CompoundKey) bool {
	// The encoding is self-delimiting, so a byte prefix that ends where
	// prefix ends is always a segment boundary of k.
	return strings.HasPrefix(string(k), string(prefix))
}

// String renders the key as a dotted path.
func (k CompoundKey) String() string {
	segments := k.Segments()
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = fmt.Sprint(seg)
	}
	return strings.Join(parts, ".")
}
