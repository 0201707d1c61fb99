// Package epic assembles the clinical information system extract. An EPIC
// export is a directory of per-domain files (encounters, flowsheet, imaging,
// labs, medications, monitor) sharing one case identifier column; this
// package outer-joins them into a single record set with domain-prefixed
// column names and resolves each record to the composite FID/SSR key.
package epic

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"regrecon/internal/sources/csvfile"
	"regrecon/internal/sources/idlog"
	"regrecon/pkg/dataset"
	"regrecon/pkg/errors"
)

// mergeColumnCandidates are the case identifier headers seen across export
// generations, checked in order against the first file.
var mergeColumnCandidates = []string{"PAT_ENC_CSN_ID", "PatientID", "ID", "Patient_ID", "CSN_ID"}

// domainOrder fixes the join order: encounters form the base, the other
// domains attach to it. Files with no recognized domain keyword join last.
var domainOrder = []string{"enc", "flow", "imag", "img", "lab", "med", "mon"}

// Options configures how the export files are read.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// Latin1 decodes files from Windows-1252 before parsing.
	Latin1 bool
}

// LoadDir reads every CSV file in dir, joins them on the detected case
// identifier column, and resolves the merged records to composite keys via
// the identification log. Records that cannot be keyed are dropped with a
// logged count.
func LoadDir(dir string, ids *idlog.Mapping, logger *zerolog.Logger, opts Options) (*dataset.Dataset, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, errors.NewIOError("glob", dir, err)
	}
	if len(files) == 0 {
		return nil, errors.NewNotFoundError("epic export files", dir)
	}
	sortByDomain(files)

	tables := make([]*csvfile.Table, 0, len(files))
	for _, path := range files {
		table, err := csvfile.ReadFile(path, csvfile.Options{
			Comma:     opts.Comma,
			TrimSpace: true,
			Latin1:    opts.Latin1,
		})
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	mergeCol := findMergeColumn(tables[0].Fields)
	logger.Info().
		Str("dir", dir).
		Int("files", len(tables)).
		Str("merge_column", mergeCol).
		Msg("Merging clinical export files")

	rows, order := joinTables(tables, mergeCol, logger)
	records, dropped := keyRecords(rows, order, ids)

	if dropped > 0 {
		logger.Warn().
			Int("dropped", dropped).
			Msg("Merged records without a resolvable FID/SSR key removed")
	}
	logger.Info().
		Int("records", len(records)).
		Msg("Clinical export assembled")

	if len(records) == 0 {
		return nil, errors.NewValidationError("epic", dir,
			"no export record could be resolved to a composite key")
	}
	return dataset.New("epic", nil, records), nil
}

// Prefix returns the column prefix for an export file name, by domain
// keyword. Unrecognized files get no prefix.
func Prefix(filename string) string {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "enc"):
		return "enct."
	case strings.Contains(name, "flow"):
		return "flow."
	case strings.Contains(name, "imag"), strings.Contains(name, "img"):
		return "img."
	case strings.Contains(name, "lab"):
		return "lab."
	case strings.Contains(name, "med"):
		return "med."
	case strings.Contains(name, "mon"):
		return "mon."
	default:
		return ""
	}
}

// findMergeColumn picks the case identifier column: a known candidate first,
// then any column that looks like an identifier, then the conventional
// default.
func findMergeColumn(fields []string) string {
	for _, candidate := range mergeColumnCandidates {
		for _, f := range fields {
			if f == candidate {
				return candidate
			}
		}
	}
	for _, f := range fields {
		upper := strings.ToUpper(f)
		if strings.Contains(upper, "ID") || strings.Contains(upper, "CSN") || strings.Contains(upper, "PATIENT") {
			return f
		}
	}
	return mergeColumnCandidates[0]
}

// sortByDomain orders the files by domain priority, then name for a stable
// join order.
func sortByDomain(files []string) {
	priority := func(path string) int {
		name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		for i, keyword := range domainOrder {
			if strings.Contains(name, keyword) {
				return i
			}
		}
		return len(domainOrder)
	}
	sort.Slice(files, func(i, j int) bool {
		pi, pj := priority(files[i]), priority(files[j])
		if pi != pj {
			return pi < pj
		}
		return files[i] < files[j]
	})
}

// joinTables outer-joins the tables on the merge column, prefixing every
// other column by the file's domain. Returns case-id keyed rows and first-seen
// order.
func joinTables(tables []*csvfile.Table, mergeCol string, logger *zerolog.Logger) (map[string]map[string]string, []string) {
	rows := make(map[string]map[string]string)
	var order []string

	for _, table := range tables {
		if !table.HasColumn(mergeCol) {
			logger.Warn().
				Str("file", table.Name).
				Str("merge_column", mergeCol).
				Msg("Export file lacks the merge column, skipping")
			continue
		}
		prefix := Prefix(table.Name)

		for _, row := range table.Rows {
			caseID := row[mergeCol]
			if caseID == "" {
				continue
			}
			merged, ok := rows[caseID]
			if !ok {
				merged = make(map[string]string)
				rows[caseID] = merged
				order = append(order, caseID)
			}
			for col, v := range row {
				if col == mergeCol {
					continue
				}
				merged[prefix+col] = v
			}
		}
	}
	return rows, order
}

// keyRecords resolves merged rows to composite keys. The FID comes from the
// export itself (any column named FID, domain-prefixed or not); the SSR comes
// from the identification log.
func keyRecords(rows map[string]map[string]string, order []string, ids *idlog.Mapping) ([]dataset.Record, int) {
	var records []dataset.Record
	dropped := 0

	for _, caseID := range order {
		row := rows[caseID]
		fid, ok := extractFID(row)
		if !ok {
			dropped++
			continue
		}
		ssr, ok := ids.SSR(fid)
		if !ok {
			dropped++
			continue
		}
		records = append(records, dataset.Record{
			Key:    dataset.Key{FID: fid, SSR: ssr},
			Values: row,
		})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Key.Less(records[j].Key) })
	return records, dropped
}

// extractFID finds the case number on a merged row. The imaging domain
// carries it in recent exports; older ones have it unprefixed.
func extractFID(row map[string]string) (int64, bool) {
	for _, col := range []string{"img.FID", "FID", "enct.FID"} {
		if v, ok := row[col]; ok {
			if fid, ok := parseFID(v); ok {
				return fid, true
			}
		}
	}
	for col, v := range row {
		if strings.HasSuffix(col, ".FID") {
			if fid, ok := parseFID(v); ok {
				return fid, true
			}
		}
	}
	return 0, false
}

func parseFID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, false
		}
		n = int64(f)
	}
	return n, true
}
