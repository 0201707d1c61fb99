// Package normalize converts raw cell values into a canonical comparable
// form. Every raw value becomes a tagged Value: missing, unparseable, or one
// typed variant per declared field type. Normalization is pure and
// deterministic, which keeps reports reproducible across runs.
package normalize

import (
	"strconv"
	"time"
)

// Kind tags the variant a Value holds.
type Kind string

// Value kinds. Missing and unparseable are first-class results, not errors:
// they become outcome kinds downstream instead of aborting the run.
const (
	KindMissing     Kind = "missing"
	KindUnparseable Kind = "unparseable"
	KindInt         Kind = "int"
	KindFloat       Kind = "float"
	KindBool        Kind = "bool"
	KindDate        Kind = "date"
	KindString      Kind = "string"
)

// Value is one normalized cell value.
type Value struct {
	Kind Kind

	// Raw preserves the trimmed input for audit output.
	Raw string

	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
	Str   string

	// DateOnly marks a date value truncated to day granularity.
	DateOnly bool
}

// Missing returns the missing sentinel value.
func Missing(raw string) Value {
	return Value{Kind: KindMissing, Raw: raw}
}

// Unparseable returns the unparseable sentinel for a non-missing value that
// failed type coercion.
func Unparseable(raw string) Value {
	return Value{Kind: KindUnparseable, Raw: raw}
}

// IntValue returns a normalized integer value.
func IntValue(raw string, v int64) Value {
	return Value{Kind: KindInt, Raw: raw, Int: v}
}

// FloatValue returns a normalized float value, already rounded to the
// field's declared precision.
func FloatValue(raw string, v float64) Value {
	return Value{Kind: KindFloat, Raw: raw, Float: v}
}

// BoolValue returns a normalized boolean value.
func BoolValue(raw string, v bool) Value {
	return Value{Kind: KindBool, Raw: raw, Bool: v}
}

// DateValue returns a normalized date value. dateOnly marks day granularity.
func DateValue(raw string, t time.Time, dateOnly bool) Value {
	return Value{Kind: KindDate, Raw: raw, Time: t, DateOnly: dateOnly}
}

// StringValue returns a normalized string value.
func StringValue(raw, s string) Value {
	return Value{Kind: KindString, Raw: raw, Str: s}
}

// IsMissing reports whether the value is the missing sentinel.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// IsUnparseable reports whether the value failed type coercion.
func (v Value) IsUnparseable() bool {
	return v.Kind == KindUnparseable
}

// Display returns the canonical human-readable form used in reports.
// Missing values render empty; unparseable values render their raw input so
// the offending cell is visible in the mismatch pivot.
func (v Value) Display() string {
	switch v.Kind {
	case KindMissing:
		return ""
	case KindUnparseable:
		return v.Raw
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		if v.DateOnly {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return v.Str
	}
}
