// Package report reshapes comparison outcomes into the structures external
// writers render: the per-patient mismatch pivot and the combined summary.
// The builder performs no I/O; serialization is the concern of the output
// collaborators.
package report

import (
	"sort"

	"regrecon/pkg/compare"
	"regrecon/pkg/dataset"
	"regrecon/pkg/stats"
)

// Cell is one side-by-side value pair in the pivot.
type Cell struct {
	Kind        compare.Kind `json:"kind" yaml:"kind"`
	Source      string       `json:"source" yaml:"source"`
	Destination string       `json:"destination" yaml:"destination"`
}

// Row collects every problematic field of one record.
type Row struct {
	Key   dataset.Key     `json:"key" yaml:"key"`
	Cells map[string]Cell `json:"cells" yaml:"cells"`
}

// Pivot is the per-patient, side-by-side view of all non-matching field
// values, built only for human review.
type Pivot struct {
	// Fields lists, sorted, every field with at least one problem outcome.
	Fields []string `json:"fields" yaml:"fields"`

	// Rows hold one entry per affected record key, sorted by key.
	Rows []Row `json:"rows" yaml:"rows"`
}

// IsEmpty reports whether no record had a problematic outcome.
func (p *Pivot) IsEmpty() bool {
	return len(p.Rows) == 0
}

// BuildPivot projects the outcome set into the mismatch pivot. Outcomes of
// kind match and missing_in_both carry no actionable signal and are
// excluded.
func BuildPivot(outcomes []compare.Outcome) *Pivot {
	rows := make(map[dataset.Key]Row)
	fields := make(map[string]bool)

	for _, o := range outcomes {
		if !o.Kind.IsProblem() {
			continue
		}

		row, ok := rows[o.Key]
		if !ok {
			row = Row{Key: o.Key, Cells: make(map[string]Cell)}
		}
		row.Cells[o.Field] = Cell{
			Kind:        o.Kind,
			Source:      o.Source.Display(),
			Destination: o.Destination.Display(),
		}
		rows[o.Key] = row
		fields[o.Field] = true
	}

	pivot := &Pivot{}
	for f := range fields {
		pivot.Fields = append(pivot.Fields, f)
	}
	sort.Strings(pivot.Fields)

	for _, row := range rows {
		pivot.Rows = append(pivot.Rows, row)
	}
	sort.Slice(pivot.Rows, func(i, j int) bool {
		return pivot.Rows[i].Key.Less(pivot.Rows[j].Key)
	})

	return pivot
}

// Summary bundles everything an external report writer needs to render the
// statistical sections.
type Summary struct {
	SourceName      string   `json:"source" yaml:"source"`
	DestinationName string   `json:"destination" yaml:"destination"`
	CommonFields    []string `json:"common_fields" yaml:"common_fields"`

	MatchedPairs    int `json:"matched_pairs" yaml:"matched_pairs"`
	SourceOnly      int `json:"source_only" yaml:"source_only"`
	DestinationOnly int `json:"destination_only" yaml:"destination_only"`

	Stats stats.Statistics `json:"stats" yaml:"stats"`
}

// BuildSummary assembles the summary from the alignment figures and the
// finalized statistics.
func BuildSummary(sourceName, destinationName string, commonFields []string,
	matched, sourceOnly, destinationOnly int, statistics stats.Statistics) *Summary {
	return &Summary{
		SourceName:      sourceName,
		DestinationName: destinationName,
		CommonFields:    commonFields,
		MatchedPairs:    matched,
		SourceOnly:      sourceOnly,
		DestinationOnly: destinationOnly,
		Stats:           statistics,
	}
}
