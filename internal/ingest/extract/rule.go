package extract

import "time"

// Rule is an ordered list of candidate paths for one logical field.
type Rule []Path

// NewRule builds a Rule from dotted paths, most preferred first.
func NewRule(paths ...string) Rule {
	rule := make(Rule, 0, len(paths))
	for _, p := range paths {
		if path := ParsePath(p); len(path) > 0 {
			rule = append(rule, path)
		}
	}
	return rule
}

// Lookup returns the value of the first path that resolves to a present value.
func (r Rule) Lookup(record Record) (any, bool) {
	for _, path := range r {
		if v, ok := path.Resolve(record); ok {
			return v, true
		}
	}
	return nil, false
}

// String is Lookup followed by String coercion. Composite values are skipped so a
// later path can supply a scalar.
func (r Rule) String(record Record, fallback *string) *string {
	for _, path := range r {
		v, ok := path.Resolve(record)
		if !ok {
			continue
		}
		if s := String(v, nil); s != nil {
			return s
		}
	}
	return fallback
}

// StringOr is String with a non-nil fallback.
func (r Rule) StringOr(record Record, fallback string) string {
	if s := r.String(record, nil); s != nil {
		return *s
	}
	return fallback
}

// Number coerces the first present value. A value that is not numeric yields
// fallback; later paths are not consulted.
func (r Rule) Number(record Record, fallback float64) float64 {
	v, ok := r.Lookup(record)
	if !ok {
		return fallback
	}
	return Number(v, fallback)
}

// Date coerces the first present value, or returns nil.
func (r Rule) Date(record Record) *time.Time {
	v, ok := r.Lookup(record)
	if !ok {
		return nil
	}
	return Date(v)
}

// List returns the first path resolving to an array.
func (r Rule) List(record Record) []any {
	for _, path := range r {
		v, ok := path.Resolve(record)
		if !ok {
			continue
		}
		if list, ok := v.([]any); ok {
			return list
		}
	}
	return nil
}
