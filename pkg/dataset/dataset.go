// Package dataset defines the in-memory representation of one tabular
// extract: records keyed by the composite patient identifier shared between
// the clinical information system and the registry.
package dataset

import (
	"fmt"
	"sort"
)

// Key is the composite record identifier: the case number assigned by the
// hospital information system (FID) and the registry identification number
// (SSR). Both sides of a reconciliation resolve their records to this key
// before the engine runs.
type Key struct {
	FID int64
	SSR int64
}

// String returns the canonical display form of the key.
func (k Key) String() string {
	return fmt.Sprintf("FID=%d SSR=%d", k.FID, k.SSR)
}

// Less reports whether k orders before other, by FID then SSR.
func (k Key) Less(other Key) bool {
	if k.FID != other.FID {
		return k.FID < other.FID
	}
	return k.SSR < other.SSR
}

// Record is one row from either dataset: its key and a mapping from field
// name to raw cell value. Records are read-only inputs; the engine never
// mutates them.
type Record struct {
	Key    Key
	Values map[string]string
}

// Value returns the raw value for the named field and whether the field is
// present on this record.
func (r *Record) Value(field string) (string, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Dataset is one side of a reconciliation: a named sequence of records and
// the column set they were read with.
type Dataset struct {
	Name    string
	Fields  []string
	Records []Record
}

// New creates a dataset from the given records. Fields not listed but present
// on individual records are appended so the schema covers every record.
func New(name string, fields []string, records []Record) *Dataset {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f] = true
	}
	for _, r := range records {
		for f := range r.Values {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	sort.Strings(fields)

	return &Dataset{
		Name:    name,
		Fields:  fields,
		Records: records,
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// HasField reports whether the dataset schema contains the named field.
func (d *Dataset) HasField(name string) bool {
	i := sort.SearchStrings(d.Fields, name)
	return i < len(d.Fields) && d.Fields[i] == name
}

// Keys returns all record keys in record order. Duplicates are preserved;
// detecting them is the aligner's job.
func (d *Dataset) Keys() []Key {
	keys := make([]Key, len(d.Records))
	for i, r := range d.Records {
		keys[i] = r.Key
	}
	return keys
}

// DuplicateKeys returns the keys that appear more than once, sorted.
func (d *Dataset) DuplicateKeys() []Key {
	counts := make(map[Key]int, len(d.Records))
	for _, r := range d.Records {
		counts[r.Key]++
	}

	var dups []Key
	for k, n := range counts {
		if n > 1 {
			dups = append(dups, k)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].Less(dups[j]) })
	return dups
}
