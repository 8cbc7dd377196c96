// Package extract pulls logical values out of loosely shaped source records.
package extract

import (
	"strconv"
	"strings"
)

// Record is one raw source record: a tree of maps, slices and scalars.
type Record = any

// Path is a dotted list of segments. Numeric segments index into arrays.
type Path []string

// ParsePath splits a dotted path such as "extractedData.llmData.vendor.value.vendorName".
func ParsePath(dotted string) Path {
	dotted = strings.TrimSpace(dotted)
	if dotted == "" {
		return nil
	}
	parts := strings.Split(dotted, ".")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		path = append(path, part)
	}
	return path
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Resolve walks record along p. Wrapper objects are looked through whenever the
// segment is not found on the wrapper itself, so "vendor.value.name" and "vendor.name"
// both reach {vendor: {value: {name: x}}}. The second result is false when the walk
// leaves the tree or ends on an absent value.
func (p Path) Resolve(record Record) (any, bool) {
	cur := record
	for _, seg := range p {
		next, ok := step(cur, seg)
		if !ok {
			if next, ok = step(Unwrap(cur), seg); !ok {
				return nil, false
			}
		}
		cur = next
	}
	cur = Unwrap(cur)
	if !Present(cur) {
		return nil, false
	}
	return cur, true
}

func step(node any, seg string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[seg]
		return v, ok
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(n) {
			return nil, false
		}
		return n[idx], true
	default:
		return nil, false
	}
}

// Present reports whether v carries a value: non-nil and not a blank string.
func Present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}
