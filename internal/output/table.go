package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"regrecon/pkg/compare"
	"regrecon/pkg/reconcile"
	"regrecon/pkg/stats"
)

// kindLabels are the human headers for outcome kinds, in display order.
var kindLabels = map[compare.Kind]string{
	compare.KindMatch:                "Match",
	compare.KindMismatch:             "Mismatch",
	compare.KindMissingInSource:      "Missing in source",
	compare.KindMissingInDestination: "Missing in destination",
	compare.KindMissingInBoth:        "Missing in both",
	compare.KindTypeIncompatible:     "Type incompatible",
}

// TableFormatter renders the result as terminal tables for interactive
// review.
type TableFormatter struct{}

// Write implements Formatter.
func (f *TableFormatter) Write(w io.Writer, result *reconcile.Result) error {
	s := result.Summary

	fmt.Fprintf(w, "Reconciliation: %s vs %s\n", s.SourceName, s.DestinationName)
	fmt.Fprintf(w, "Matched pairs: %d   only in %s: %d   only in %s: %d   common fields: %d\n\n",
		s.MatchedPairs, s.SourceName, s.SourceOnly, s.DestinationName, s.DestinationOnly,
		len(s.CommonFields))

	if err := f.writeOverall(w, s.Stats.Overall); err != nil {
		return err
	}
	if err := f.writeMonthly(w, s.Stats.Monthly); err != nil {
		return err
	}
	return f.writeTopProblems(w, s.Stats.TopProblems)
}

func (f *TableFormatter) writeOverall(w io.Writer, overall stats.Counts) error {
	fmt.Fprintln(w, "Overall")
	table := tablewriter.NewTable(w)
	table.Header("Outcome", "Count")
	for _, kind := range compare.Kinds() {
		if err := table.Append(kindLabels[kind], fmt.Sprint(overall.Get(kind))); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Mismatch rate: %s (over %d compared)\n\n",
		percent(overall.MismatchRate()), overall.Compared())
	return nil
}

func (f *TableFormatter) writeMonthly(w io.Writer, monthly []stats.MonthCounts) error {
	if len(monthly) == 0 {
		return nil
	}
	fmt.Fprintln(w, "Monthly")
	table := tablewriter.NewTable(w)
	table.Header("Month", "Compared", "Match", "Mismatch", "Missing src", "Missing dst", "Rate")
	for _, m := range monthly {
		err := table.Append(
			m.Month.String(),
			fmt.Sprint(m.Counts.Compared()),
			fmt.Sprint(m.Counts.Match),
			fmt.Sprint(m.Counts.Mismatch),
			fmt.Sprint(m.Counts.MissingInSource),
			fmt.Sprint(m.Counts.MissingInDestination),
			percent(m.Counts.MismatchRate()),
		)
		if err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func (f *TableFormatter) writeTopProblems(w io.Writer, top []stats.VariableCounts) error {
	if len(top) == 0 {
		fmt.Fprintln(w, "No problematic variables.")
		return nil
	}
	fmt.Fprintln(w, "Most problematic variables")
	table := tablewriter.NewTable(w)
	table.Header("#", "Field", "Compared", "Mismatch", "Rate")
	for i, v := range top {
		err := table.Append(
			fmt.Sprint(i+1),
			v.Field,
			fmt.Sprint(v.Counts.Compared()),
			fmt.Sprint(v.Counts.Mismatch),
			percent(v.MismatchRate),
		)
		if err != nil {
			return err
		}
	}
	return table.Render()
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}
