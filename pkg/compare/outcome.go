// Package compare classifies normalized value pairs into comparison
// outcomes. The outcome is the atomic unit of the engine: exactly one per
// (record key, field name) pair, immutable once produced.
package compare

import (
	"regrecon/pkg/dataset"
	"regrecon/pkg/normalize"
)

// Kind classifies the result of comparing one field between the two
// datasets for one record.
type Kind string

// Outcome kinds.
const (
	KindMatch                Kind = "match"
	KindMismatch             Kind = "mismatch"
	KindMissingInSource      Kind = "missing_in_source"
	KindMissingInDestination Kind = "missing_in_destination"
	KindMissingInBoth        Kind = "missing_in_both"
	KindTypeIncompatible     Kind = "type_incompatible"
)

// Kinds returns all outcome kinds in reporting order.
func Kinds() []Kind {
	return []Kind{
		KindMatch,
		KindMismatch,
		KindMissingInSource,
		KindMissingInDestination,
		KindMissingInBoth,
		KindTypeIncompatible,
	}
}

// IsProblem reports whether the kind carries actionable signal for the
// mismatch pivot. Matches and values missing on both sides do not.
func (k Kind) IsProblem() bool {
	return k != KindMatch && k != KindMissingInBoth
}

// Outcome records the classified comparison of one field of one record.
type Outcome struct {
	Key         dataset.Key
	Field       string
	Kind        Kind
	Source      normalize.Value
	Destination normalize.Value
}
