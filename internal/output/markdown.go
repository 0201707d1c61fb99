package output

import (
	"fmt"
	"io"

	md "github.com/nao1215/markdown"

	"regrecon/pkg/compare"
	"regrecon/pkg/reconcile"
	"regrecon/pkg/report"
	"regrecon/pkg/stats"
)

// pivotRowLimit caps the mismatch detail section; the full pivot lives in
// the JSON/YAML dump.
const pivotRowLimit = 200

// MarkdownFormatter renders the archival report.
type MarkdownFormatter struct{}

// Write implements Formatter.
func (f *MarkdownFormatter) Write(w io.Writer, result *reconcile.Result) error {
	s := result.Summary
	m := result.Metadata

	doc := md.NewMarkdown(w).
		H1("Reconciliation Report").
		PlainTextf("Source `%s` (%d records) compared against destination `%s` (%d records) on %s.",
			s.SourceName, m.SourceRecords, s.DestinationName, m.DestinationRecords,
			m.EndTime.Format("2006-01-02 15:04")).
		LF().
		BulletList(
			fmt.Sprintf("Matched pairs: %d", s.MatchedPairs),
			fmt.Sprintf("Records only in %s: %d", s.SourceName, s.SourceOnly),
			fmt.Sprintf("Records only in %s: %d", s.DestinationName, s.DestinationOnly),
			fmt.Sprintf("Common fields compared: %d", len(s.CommonFields)),
		).
		LF()

	writeOverallSection(doc, s.Stats.Overall)
	writeMonthlySection(doc, s.Stats.Monthly)
	writeTopProblemsSection(doc, s.Stats.TopProblems)
	writePivotSection(doc, result.Pivot)

	return doc.Build()
}

func writeOverallSection(doc *md.Markdown, overall stats.Counts) {
	rows := make([][]string, 0, len(compare.Kinds()))
	for _, kind := range compare.Kinds() {
		rows = append(rows, []string{kindLabels[kind], fmt.Sprint(overall.Get(kind))})
	}

	doc.H2("Overall").
		Table(md.TableSet{
			Header: []string{"Outcome", "Count"},
			Rows:   rows,
		}).
		PlainTextf("Mismatch rate: **%s** over %d compared values.",
			percent(overall.MismatchRate()), overall.Compared()).
		LF()
}

func writeMonthlySection(doc *md.Markdown, monthly []stats.MonthCounts) {
	if len(monthly) == 0 {
		return
	}

	rows := make([][]string, 0, len(monthly))
	for _, m := range monthly {
		rows = append(rows, []string{
			m.Month.String(),
			fmt.Sprint(m.Counts.Compared()),
			fmt.Sprint(m.Counts.Match),
			fmt.Sprint(m.Counts.Mismatch),
			fmt.Sprint(m.Counts.MissingInSource),
			fmt.Sprint(m.Counts.MissingInDestination),
			percent(m.Counts.MismatchRate()),
		})
	}

	doc.H2("Monthly").
		Table(md.TableSet{
			Header: []string{"Month", "Compared", "Match", "Mismatch", "Missing src", "Missing dst", "Rate"},
			Rows:   rows,
		})
}

func writeTopProblemsSection(doc *md.Markdown, top []stats.VariableCounts) {
	doc.H2("Most problematic variables")
	if len(top) == 0 {
		doc.PlainText("Every compared variable matched.").LF()
		return
	}

	rows := make([][]string, 0, len(top))
	for i, v := range top {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			v.Field,
			fmt.Sprint(v.Counts.Compared()),
			fmt.Sprint(v.Counts.Mismatch),
			percent(v.MismatchRate),
		})
	}

	doc.Table(md.TableSet{
		Header: []string{"Rank", "Field", "Compared", "Mismatch", "Rate"},
		Rows:   rows,
	})
}

func writePivotSection(doc *md.Markdown, pivot *report.Pivot) {
	doc.H2("Mismatch detail")
	if pivot.IsEmpty() {
		doc.PlainText("No differences to review.").LF()
		return
	}

	header := append([]string{"Key"}, pivot.Fields...)
	rows := make([][]string, 0, len(pivot.Rows))
	for _, row := range pivot.Rows {
		if len(rows) == pivotRowLimit {
			break
		}
		cells := make([]string, 0, len(header))
		cells = append(cells, row.Key.String())
		for _, field := range pivot.Fields {
			cells = append(cells, pivotCell(row.Cells, field))
		}
		rows = append(rows, cells)
	}

	doc.Table(md.TableSet{Header: header, Rows: rows})
	if len(pivot.Rows) > pivotRowLimit {
		doc.PlainTextf("Showing %d of %d affected records; the full pivot is in the archival dump.",
			pivotRowLimit, len(pivot.Rows)).LF()
	}
}

// pivotCell renders one pivot cell: source and destination side by side for
// mismatches, the present side alone for missing values.
func pivotCell(cells map[string]report.Cell, field string) string {
	cell, ok := cells[field]
	if !ok {
		return ""
	}
	switch cell.Kind {
	case compare.KindMissingInSource:
		return fmt.Sprintf("src missing (dst: %s)", cell.Destination)
	case compare.KindMissingInDestination:
		return fmt.Sprintf("dst missing (src: %s)", cell.Source)
	default:
		return fmt.Sprintf("%s / %s", cell.Source, cell.Destination)
	}
}
