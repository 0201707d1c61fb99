// Package stats folds the comparison outcome stream into the three
// aggregate views: overall totals, month-bucketed totals, and per-variable
// totals with a derived problem ranking. Counting is a commutative,
// associative fold, so partial aggregates from parallel workers merge
// without coordination.
package stats

import (
	"sort"
	"time"

	"regrecon/pkg/compare"
	"regrecon/pkg/fieldspec"
)

// Counts tallies outcomes per kind.
type Counts struct {
	Match                int `json:"match" yaml:"match"`
	Mismatch             int `json:"mismatch" yaml:"mismatch"`
	MissingInSource      int `json:"missing_in_source" yaml:"missing_in_source"`
	MissingInDestination int `json:"missing_in_destination" yaml:"missing_in_destination"`
	MissingInBoth        int `json:"missing_in_both" yaml:"missing_in_both"`
	TypeIncompatible     int `json:"type_incompatible" yaml:"type_incompatible"`
}

// Add tallies one outcome kind.
func (c *Counts) Add(kind compare.Kind) {
	switch kind {
	case compare.KindMatch:
		c.Match++
	case compare.KindMismatch:
		c.Mismatch++
	case compare.KindMissingInSource:
		c.MissingInSource++
	case compare.KindMissingInDestination:
		c.MissingInDestination++
	case compare.KindMissingInBoth:
		c.MissingInBoth++
	case compare.KindTypeIncompatible:
		c.TypeIncompatible++
	}
}

// Merge folds another tally into this one.
func (c *Counts) Merge(o Counts) {
	c.Match += o.Match
	c.Mismatch += o.Mismatch
	c.MissingInSource += o.MissingInSource
	c.MissingInDestination += o.MissingInDestination
	c.MissingInBoth += o.MissingInBoth
	c.TypeIncompatible += o.TypeIncompatible
}

// Total returns the number of outcomes tallied.
func (c Counts) Total() int {
	return c.Match + c.Mismatch + c.MissingInSource +
		c.MissingInDestination + c.MissingInBoth + c.TypeIncompatible
}

// Compared returns the number of comparisons where both values were present
// and parseable.
func (c Counts) Compared() int {
	return c.Match + c.Mismatch
}

// MismatchRate returns mismatches / (matches + mismatches), or zero when
// nothing was comparable.
func (c Counts) MismatchRate() float64 {
	compared := c.Compared()
	if compared == 0 {
		return 0
	}
	return float64(c.Mismatch) / float64(compared)
}

// Get returns the tally for one outcome kind.
func (c Counts) Get(kind compare.Kind) int {
	switch kind {
	case compare.KindMatch:
		return c.Match
	case compare.KindMismatch:
		return c.Mismatch
	case compare.KindMissingInSource:
		return c.MissingInSource
	case compare.KindMissingInDestination:
		return c.MissingInDestination
	case compare.KindMissingInBoth:
		return c.MissingInBoth
	case compare.KindTypeIncompatible:
		return c.TypeIncompatible
	}
	return 0
}

// MonthCounts is the tally for one reporting-window month.
type MonthCounts struct {
	Month  time.Month `json:"month" yaml:"month"`
	Counts Counts     `json:"counts" yaml:"counts"`
}

// VariableCounts is the tally for one field, with its derived mismatch rate.
type VariableCounts struct {
	Field        string  `json:"field" yaml:"field"`
	Counts       Counts  `json:"counts" yaml:"counts"`
	MismatchRate float64 `json:"mismatch_rate" yaml:"mismatch_rate"`
}

// Statistics bundles the three aggregate views plus the derived
// problematic-variable ranking.
type Statistics struct {
	Overall     Counts           `json:"overall" yaml:"overall"`
	Monthly     []MonthCounts    `json:"monthly" yaml:"monthly"`
	Variables   []VariableCounts `json:"variables" yaml:"variables"`
	TopProblems []VariableCounts `json:"top_problems" yaml:"top_problems"`
}

// Aggregator accumulates outcome tallies in one pass. It is not safe for
// concurrent use; run one per worker and Merge the partials.
type Aggregator struct {
	overall   Counts
	monthly   map[time.Month]Counts
	variables map[string]Counts
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		monthly:   make(map[time.Month]Counts),
		variables: make(map[string]Counts),
	}
}

// Observe tallies one outcome into the overall and per-variable views.
func (a *Aggregator) Observe(o compare.Outcome) {
	a.overall.Add(o.Kind)

	v := a.variables[o.Field]
	v.Add(o.Kind)
	a.variables[o.Field] = v
}

// ObserveMonthly additionally tallies an outcome into its anchor month.
// Callers invoke this only for records whose anchor resolved inside the
// reporting window; everything else stays out of the monthly view but is
// still counted in Observe.
func (a *Aggregator) ObserveMonthly(month time.Month, o compare.Outcome) {
	m := a.monthly[month]
	m.Add(o.Kind)
	a.monthly[month] = m
}

// Merge folds another aggregator's partial tallies into this one.
func (a *Aggregator) Merge(other *Aggregator) {
	a.overall.Merge(other.overall)
	for month, counts := range other.monthly {
		m := a.monthly[month]
		m.Merge(counts)
		a.monthly[month] = m
	}
	for field, counts := range other.variables {
		v := a.variables[field]
		v.Merge(counts)
		a.variables[field] = v
	}
}

// Finalize derives the three views. Monthly buckets follow the window's
// month order, including empty months so report tables stay rectangular.
// The ranking orders by mismatch rate, ties broken by comparison volume
// (higher first) then field name, and never includes a field that matched
// everywhere.
func (a *Aggregator) Finalize(window fieldspec.Window, topN int) Statistics {
	s := Statistics{Overall: a.overall}

	for _, month := range window.Months {
		s.Monthly = append(s.Monthly, MonthCounts{
			Month:  month,
			Counts: a.monthly[month],
		})
	}

	for field, counts := range a.variables {
		s.Variables = append(s.Variables, VariableCounts{
			Field:        field,
			Counts:       counts,
			MismatchRate: counts.MismatchRate(),
		})
	}
	sort.Slice(s.Variables, func(i, j int) bool {
		return s.Variables[i].Field < s.Variables[j].Field
	})

	s.TopProblems = rank(s.Variables, topN)
	return s
}

// rank returns the top-n problematic variables.
func rank(variables []VariableCounts, n int) []VariableCounts {
	ranked := make([]VariableCounts, 0, len(variables))
	for _, v := range variables {
		if v.MismatchRate > 0 {
			ranked = append(ranked, v)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MismatchRate != ranked[j].MismatchRate {
			return ranked[i].MismatchRate > ranked[j].MismatchRate
		}
		if ranked[i].Counts.Compared() != ranked[j].Counts.Compared() {
			return ranked[i].Counts.Compared() > ranked[j].Counts.Compared()
		}
		return ranked[i].Field < ranked[j].Field
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
