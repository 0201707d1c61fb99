// Package fieldspec defines the field catalog: per-column metadata that
// drives normalization and comparison. The catalog is loaded once from a
// declarative YAML document and is immutable afterwards, so it can be shared
// across parallel workers without synchronization.
package fieldspec

import (
	"math"
	"sort"
	"time"
)

// Type is the declared type of a comparable field.
type Type string

// Declared field types.
const (
	TypeInt      Type = "int"
	TypeFloat    Type = "float"
	TypeBool     Type = "bool"
	TypeDate     Type = "date"
	TypeDateTime Type = "datetime"
	TypeString   Type = "string"
)

// Valid reports whether t is a known declared type.
func (t Type) Valid() bool {
	switch t {
	case TypeInt, TypeFloat, TypeBool, TypeDate, TypeDateTime, TypeString:
		return true
	}
	return false
}

// Spec describes how to normalize and compare one field.
type Spec struct {
	// Name is the field name as it appears in both datasets.
	Name string `yaml:"name"`

	// Type is the declared type the raw value is coerced to.
	Type Type `yaml:"type"`

	// Precision is the number of decimal places floats are rounded to
	// before comparison.
	Precision int `yaml:"precision"`

	// Epsilon is the numeric tolerance for float comparison. Zero means
	// the default derived from Precision.
	Epsilon float64 `yaml:"epsilon"`

	// Mapping translates raw codes to labels before type coercion.
	Mapping map[string]string `yaml:"mapping"`

	// Missing lists additional missing-value sentinels recognized for
	// this field, on top of the catalog-wide defaults.
	Missing []string `yaml:"missing"`

	// DateFormats lists accepted date layouts; the first successful parse
	// wins. Empty means the catalog defaults.
	DateFormats []string `yaml:"date_formats"`
}

// EffectiveEpsilon returns the tolerance used for numeric comparison of this
// field: the configured epsilon, or half a unit in the last declared decimal
// place for floats.
func (s Spec) EffectiveEpsilon() float64 {
	if s.Type != TypeFloat {
		return 0
	}
	if s.Epsilon > 0 {
		return s.Epsilon
	}
	return 0.5 * math.Pow(10, -float64(s.Precision))
}

// Window is the fixed set of calendar months monthly statistics are
// computed over.
type Window struct {
	// Year restricts the window to one study year. Zero accepts any year.
	Year int `yaml:"year"`

	// Months lists the months inside the window, in reporting order.
	Months []time.Month `yaml:"months"`
}

// Contains reports whether t falls inside the reporting window.
func (w Window) Contains(t time.Time) bool {
	if w.Year != 0 && t.Year() != w.Year {
		return false
	}
	for _, m := range w.Months {
		if t.Month() == m {
			return true
		}
	}
	return false
}

// DefaultWindow returns the default reporting window: April through December
// of the given study year.
func DefaultWindow(year int) Window {
	months := make([]time.Month, 0, 9)
	for m := time.April; m <= time.December; m++ {
		months = append(months, m)
	}
	return Window{Year: year, Months: months}
}

// DefaultMissing is the catalog-wide set of missing-value sentinels,
// recognized case-insensitively after trimming.
var DefaultMissing = []string{"", "na", "n/a", "nan", "none", "null", "-", "."}

// DefaultDateFormats are the date layouts tried when a spec declares none.
var DefaultDateFormats = []string{
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006 15:04",
}

// DefaultTopN is the default size of the problematic-variable ranking.
const DefaultTopN = 10

// Catalog is the immutable field specification table for one run.
type Catalog struct {
	specs       map[string]Spec
	fields      []string
	anchorField string
	window      Window
	topN        int
	missing     []string
}

// Spec returns the specification for the named field.
func (c *Catalog) Spec(name string) (Spec, bool) {
	s, ok := c.specs[name]
	return s, ok
}

// Has reports whether the catalog specifies the named field.
func (c *Catalog) Has(name string) bool {
	_, ok := c.specs[name]
	return ok
}

// Fields returns the specified field names in sorted order.
func (c *Catalog) Fields() []string {
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return out
}

// Len returns the number of specified fields.
func (c *Catalog) Len() int {
	return len(c.specs)
}

// AnchorField returns the name of the temporal anchor field used for
// monthly bucketing.
func (c *Catalog) AnchorField() string {
	return c.anchorField
}

// Window returns the reporting window.
func (c *Catalog) Window() Window {
	return c.window
}

// TopN returns the size of the problematic-variable ranking.
func (c *Catalog) TopN() int {
	return c.topN
}

// Missing returns the catalog-wide missing-value sentinels.
func (c *Catalog) Missing() []string {
	out := make([]string, len(c.missing))
	copy(out, c.missing)
	return out
}

// sortedFieldNames returns the sorted key set of a spec map.
func sortedFieldNames(specs map[string]Spec) []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
