package reconcile

import (
	"time"

	"regrecon/pkg/compare"
	"regrecon/pkg/report"
	"regrecon/pkg/stats"
)

// Result is the complete output of one reconciliation pass.
type Result struct {
	// Outcomes is the full comparison outcome list, sorted by record key
	// then field name, kept for archival and audit.
	Outcomes []compare.Outcome

	// Stats holds the overall, monthly, and per-variable views.
	Stats stats.Statistics

	// Pivot is the per-patient mismatch view for human review.
	Pivot *report.Pivot

	// Summary bundles the statistics for external report writers.
	Summary *report.Summary

	// Metadata describes the pass itself.
	Metadata Metadata
}

// Metadata contains figures about the reconciliation pass.
type Metadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	SourceRecords      int
	DestinationRecords int
	MatchedPairs       int
	SourceOnly         int
	DestinationOnly    int
	CommonFields       int
	Workers            int
}

// HasProblems reports whether any outcome carries actionable signal.
func (r *Result) HasProblems() bool {
	return !r.Pivot.IsEmpty()
}
