package compare

import (
	"math"

	"regrecon/pkg/dataset"
	"regrecon/pkg/fieldspec"
	"regrecon/pkg/normalize"
)

// Comparator classifies one normalized value pair per field. It is pure:
// every failure mode is an outcome kind, never an error, so a single bad
// cell can never abort a run.
type Comparator struct {
	catalog *fieldspec.Catalog
}

// New creates a Comparator for the given catalog.
func New(catalog *fieldspec.Catalog) *Comparator {
	return &Comparator{catalog: catalog}
}

// Compare classifies the normalized source and destination values for the
// named field.
func (c *Comparator) Compare(field string, src, dst normalize.Value) Kind {
	switch {
	case src.IsMissing() && dst.IsMissing():
		return KindMissingInBoth
	case src.IsMissing():
		return KindMissingInSource
	case dst.IsMissing():
		return KindMissingInDestination
	case src.IsUnparseable() || dst.IsUnparseable():
		return KindTypeIncompatible
	}

	// Both sides normalize under the same field specification, so the
	// variants agree unless a value slipped past coercion.
	if src.Kind != dst.Kind {
		return KindTypeIncompatible
	}

	spec, ok := c.catalog.Spec(field)
	if !ok {
		return KindTypeIncompatible
	}

	if c.equal(spec, src, dst) {
		return KindMatch
	}
	return KindMismatch
}

// Outcome builds the full outcome record for one comparison.
func (c *Comparator) Outcome(key dataset.Key, field string, src, dst normalize.Value) Outcome {
	return Outcome{
		Key:         key,
		Field:       field,
		Kind:        c.Compare(field, src, dst),
		Source:      src,
		Destination: dst,
	}
}

// equal applies the type-specific equality rule.
func (c *Comparator) equal(spec fieldspec.Spec, src, dst normalize.Value) bool {
	switch spec.Type {
	case fieldspec.TypeInt:
		return src.Int == dst.Int
	case fieldspec.TypeFloat:
		return math.Abs(src.Float-dst.Float) <= spec.EffectiveEpsilon()
	case fieldspec.TypeBool:
		return src.Bool == dst.Bool
	case fieldspec.TypeDate, fieldspec.TypeDateTime:
		return src.Time.Equal(dst.Time)
	default:
		return src.Str == dst.Str
	}
}
