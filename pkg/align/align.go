// Package align joins the source and destination datasets on the composite
// record key and computes the column set both sides share. Side-only keys
// are partitioned out so the engine can count their fields as vacuously
// unmatched without per-field comparison.
package align

import (
	"sort"

	"regrecon/pkg/dataset"
	"regrecon/pkg/errors"
	"regrecon/pkg/fieldspec"
)

// Pair is one record key present in both datasets.
type Pair struct {
	Key         dataset.Key
	Source      *dataset.Record
	Destination *dataset.Record
}

// Alignment is the result of joining the two datasets.
type Alignment struct {
	// CommonFields is the sorted intersection of both schemas, restricted
	// to fields the catalog specifies.
	CommonFields []string

	// Pairs are the matched records, sorted by key.
	Pairs []Pair

	// SourceOnly and DestinationOnly list keys present on one side only,
	// sorted.
	SourceOnly      []dataset.Key
	DestinationOnly []dataset.Key
}

// Align joins source and destination on the record key. It fails with a
// data-integrity error when either side contains duplicate keys, with a
// configuration error when a common field lacks a specification, and with
// ErrNoCommonFields when the schemas share no comparable column.
func Align(source, destination *dataset.Dataset, catalog *fieldspec.Catalog) (*Alignment, error) {
	if err := checkUnique(source); err != nil {
		return nil, err
	}
	if err := checkUnique(destination); err != nil {
		return nil, err
	}

	common, err := commonFields(source, destination, catalog)
	if err != nil {
		return nil, err
	}

	byKey := make(map[dataset.Key]*dataset.Record, destination.Len())
	for i := range destination.Records {
		r := &destination.Records[i]
		byKey[r.Key] = r
	}

	alignment := &Alignment{CommonFields: common}
	matched := make(map[dataset.Key]bool, source.Len())

	for i := range source.Records {
		src := &source.Records[i]
		if dst, ok := byKey[src.Key]; ok {
			alignment.Pairs = append(alignment.Pairs, Pair{
				Key:         src.Key,
				Source:      src,
				Destination: dst,
			})
			matched[src.Key] = true
		} else {
			alignment.SourceOnly = append(alignment.SourceOnly, src.Key)
		}
	}

	for i := range destination.Records {
		key := destination.Records[i].Key
		if !matched[key] {
			alignment.DestinationOnly = append(alignment.DestinationOnly, key)
		}
	}

	// Sort for deterministic output regardless of input order.
	sort.Slice(alignment.Pairs, func(i, j int) bool {
		return alignment.Pairs[i].Key.Less(alignment.Pairs[j].Key)
	})
	sortKeys(alignment.SourceOnly)
	sortKeys(alignment.DestinationOnly)

	return alignment, nil
}

// checkUnique reports duplicate keys within one dataset as a data-integrity
// error rather than silently merging them.
func checkUnique(d *dataset.Dataset) error {
	dups := d.DuplicateKeys()
	if len(dups) == 0 {
		return nil
	}

	keys := make([]string, len(dups))
	for i, k := range dups {
		keys[i] = k.String()
	}
	return errors.NewDuplicateKeyError(d.Name, keys)
}

// commonFields intersects both schemas and verifies every shared field has a
// specification. Fields present on only one side are excluded from
// comparison, never silently matched.
func commonFields(source, destination *dataset.Dataset, catalog *fieldspec.Catalog) ([]string, error) {
	var common, unspecified []string
	for _, f := range source.Fields {
		if !destination.HasField(f) {
			continue
		}
		if !catalog.Has(f) {
			unspecified = append(unspecified, f)
			continue
		}
		common = append(common, f)
	}

	if len(unspecified) > 0 {
		sort.Strings(unspecified)
		return nil, errors.NewSpecNotFoundError(unspecified)
	}
	if len(common) == 0 {
		return nil, errors.Wrap(errors.ErrNoCommonFields,
			"datasets "+source.Name+" and "+destination.Name)
	}

	sort.Strings(common)
	return common, nil
}

// sortKeys sorts keys in place.
func sortKeys(keys []dataset.Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
