package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"regrecon/pkg/fieldspec"
)

// Normalizer converts raw cell values into canonical Values according to the
// field catalog. It is pure and safe for concurrent use: the catalog and the
// precomputed sentinel sets are read-only after construction.
type Normalizer struct {
	catalog *fieldspec.Catalog
	missing map[string]map[string]bool
}

// New creates a Normalizer for the given catalog, precomputing the
// missing-value sentinel set per field.
func New(catalog *fieldspec.Catalog) *Normalizer {
	defaults := catalog.Missing()

	missing := make(map[string]map[string]bool, catalog.Len())
	for _, name := range catalog.Fields() {
		spec, _ := catalog.Spec(name)
		set := make(map[string]bool, len(defaults)+len(spec.Missing))
		for _, s := range defaults {
			set[fold(strings.TrimSpace(s))] = true
		}
		for _, s := range spec.Missing {
			set[fold(strings.TrimSpace(s))] = true
		}
		missing[name] = set
	}

	return &Normalizer{
		catalog: catalog,
		missing: missing,
	}
}

// Normalize converts one raw value for the named field. The rules apply in
// order: missing-sentinel check, code-to-label mapping, type coercion. A
// non-missing value that fails coercion returns the unparseable sentinel
// rather than an error.
func (n *Normalizer) Normalize(field, raw string) Value {
	spec, ok := n.catalog.Spec(field)
	if !ok {
		// Fields without a specification are excluded upstream; treat a
		// stray one as unparseable so it surfaces in the statistics.
		return Unparseable(strings.TrimSpace(raw))
	}

	s := strings.TrimSpace(raw)
	if n.missing[field][fold(s)] {
		return Missing(s)
	}

	// Mapping applies before coercion so coded values are always compared
	// post-mapping, never in raw form.
	if label, ok := spec.Mapping[s]; ok {
		s = label
	}

	switch spec.Type {
	case fieldspec.TypeInt:
		return normalizeInt(s)
	case fieldspec.TypeFloat:
		return normalizeFloat(s, spec.Precision)
	case fieldspec.TypeBool:
		return normalizeBool(s)
	case fieldspec.TypeDate, fieldspec.TypeDateTime:
		return normalizeDate(s, dateFormats(spec), spec.Type == fieldspec.TypeDate)
	default:
		return StringValue(s, normalizeString(s))
	}
}

// normalizeInt parses an integer. Exports frequently render integers in
// float form ("7.0"), so integral floats are accepted.
func normalizeInt(s string) Value {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(s, v)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
		return IntValue(s, int64(f))
	}
	return Unparseable(s)
}

// normalizeFloat parses a float and rounds it to the declared precision.
func normalizeFloat(s string, precision int) Value {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return Unparseable(s)
	}
	return FloatValue(s, roundTo(v, precision))
}

// roundTo rounds half away from zero to the given number of decimal places.
func roundTo(v float64, precision int) float64 {
	pow := math.Pow(10, float64(precision))
	return math.Round(v*pow) / pow
}

// Truthy and falsy literal encodings accepted for boolean fields, compared
// after case folding.
var (
	truthy = map[string]bool{"1": true, "t": true, "true": true, "y": true, "yes": true, "ja": true}
	falsy  = map[string]bool{"0": true, "f": true, "false": true, "n": true, "no": true, "nein": true}
)

// normalizeBool standardizes boolean literal encodings into the canonical
// two-valued form.
func normalizeBool(s string) Value {
	folded := fold(s)
	switch {
	case truthy[folded]:
		return BoolValue(s, true)
	case falsy[folded]:
		return BoolValue(s, false)
	default:
		return Unparseable(s)
	}
}

// normalizeDate tries each accepted layout in order; the first successful
// parse wins. Date-only fields are truncated to day granularity.
func normalizeDate(s string, formats []string, dateOnly bool) Value {
	for _, layout := range formats {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if dateOnly {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return DateValue(s, t, dateOnly)
	}
	return Unparseable(s)
}

// normalizeString trims, collapses inner whitespace, and case-folds.
func normalizeString(s string) string {
	return fold(strings.Join(strings.Fields(s), " "))
}

// dateFormats returns the accepted layouts for a spec.
func dateFormats(spec fieldspec.Spec) []string {
	if len(spec.DateFormats) > 0 {
		return spec.DateFormats
	}
	return fieldspec.DefaultDateFormats
}

// fold applies Unicode case folding for caseless comparison.
func fold(s string) string {
	return cases.Fold().String(s)
}
