package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const maxUnwrapDepth = 8

// Shorter digit strings are years, compact dates or spreadsheet serials, not
// timestamps. 11 digits reach back to March 1973.
const minEpochMillisDigits = 11

// Unwrap strips wrapper objects such as {value: x}, {$date: iso} and the MongoDB
// extended-JSON scalars until a plain value remains.
func Unwrap(v any) any {
	for i := 0; i < maxUnwrapDepth; i++ {
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		if inner, ok := m["value"]; ok {
			v = inner
			continue
		}
		if inner, ok := m["$date"]; ok {
			v = inner
			continue
		}
		if inner, ok := unwrapNumber(m); ok {
			return inner
		}
		if inner, ok := m["$oid"]; ok {
			v = inner
			continue
		}
		return v
	}
	return v
}

func unwrapNumber(m map[string]any) (any, bool) {
	for _, key := range []string{"$numberLong", "$numberInt", "$numberDouble", "$numberDecimal"} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		if n, ok := toNumber(raw); ok {
			return n, true
		}
		return nil, true
	}
	return nil, false
}

// String coerces v to a string. Numbers use their shortest form. Absent and composite
// values yield fallback.
func String(v any, fallback *string) *string {
	v = Unwrap(v)
	var s string
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case uint64:
		s = strconv.FormatUint(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	case time.Time:
		s = t.UTC().Format(time.RFC3339)
	default:
		return fallback
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return &s
}

// Number coerces v to a finite float64, returning fallback when it cannot.
func Number(v any, fallback float64) float64 {
	if n, ok := toNumber(Unwrap(v)); ok {
		return n
	}
	return fallback
}

func toNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// Date coerces v to a UTC time. Numbers, and digit strings of at least
// minEpochMillisDigits digits, are epoch milliseconds. Unparseable values yield nil so
// the caller can apply its own default.
func Date(v any) *time.Time {
	v = Unwrap(v)
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		u := t.UTC()
		return &u
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				u := parsed.UTC()
				return &u
			}
		}
		if len(s) < minEpochMillisDigits {
			return nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromMillis(float64(ms))
		}
		return nil
	default:
		if n, ok := toNumber(t); ok {
			return fromMillis(n)
		}
		return nil
	}
}

func fromMillis(ms float64) *time.Time {
	if ms <= 0 {
		return nil
	}
	u := time.UnixMilli(int64(ms)).UTC()
	return &u
}
