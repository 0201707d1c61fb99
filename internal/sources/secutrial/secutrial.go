// Package secutrial reads the registry extract. A secuTrial export is a
// single table whose "Case ID" column embeds the registry identification
// number as trailing digits; the hospital case number comes from the
// identification log.
package secutrial

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"regrecon/internal/sources/csvfile"
	"regrecon/internal/sources/idlog"
	"regrecon/pkg/dataset"
	"regrecon/pkg/errors"
)

// caseIDColumn is the registry's record identifier column.
const caseIDColumn = "Case ID"

// trailingDigits extracts the SSR from a case ID like "SSR-ZH-00123".
var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Options configures how the extract is read.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// Latin1 decodes the file from Windows-1252 before parsing.
	Latin1 bool

	// HeaderMap renames registry headers to the shared field names used by
	// the field-spec catalog.
	HeaderMap map[string]string
}

// LoadFile reads the registry extract and resolves each row to the composite
// key. Rows whose case ID yields no registry number, or whose registry number
// is absent from the identification log, are dropped with a logged count.
func LoadFile(path string, ids *idlog.Mapping, logger *zerolog.Logger, opts Options) (*dataset.Dataset, error) {
	table, err := csvfile.ReadFile(path, csvfile.Options{
		Comma:     opts.Comma,
		TrimSpace: true,
		Latin1:    opts.Latin1,
		HeaderMap: opts.HeaderMap,
	})
	if err != nil {
		return nil, err
	}
	return Build(table, ids, logger)
}

// Build converts a parsed registry table into a keyed dataset.
func Build(table *csvfile.Table, ids *idlog.Mapping, logger *zerolog.Logger) (*dataset.Dataset, error) {
	if !table.HasColumn(caseIDColumn) {
		return nil, errors.NewValidationError("secutrial", table.Fields,
			"registry extract must contain a 'Case ID' column")
	}

	var records []dataset.Record
	dropped := 0
	for _, row := range table.Rows {
		ssr, ok := extractSSR(row[caseIDColumn])
		if !ok {
			dropped++
			continue
		}
		fid, ok := ids.FID(ssr)
		if !ok {
			dropped++
			continue
		}

		values := make(map[string]string, len(row))
		for col, v := range row {
			if col == caseIDColumn {
				continue
			}
			values[col] = v
		}
		records = append(records, dataset.Record{
			Key:    dataset.Key{FID: fid, SSR: ssr},
			Values: values,
		})
	}

	if dropped > 0 {
		logger.Warn().
			Str("file", table.Name).
			Int("dropped", dropped).
			Msg("Registry rows without a resolvable FID/SSR key removed")
	}
	logger.Info().
		Str("file", table.Name).
		Int("records", len(records)).
		Msg("Registry extract loaded")

	if len(records) == 0 {
		return nil, errors.NewValidationError("secutrial", table.Name,
			"no registry row could be resolved to a composite key")
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Key.Less(records[j].Key) })
	return dataset.New("secutrial", nil, records), nil
}

// extractSSR parses the trailing digits of a case ID.
func extractSSR(caseID string) (int64, bool) {
	m := trailingDigits.FindStringSubmatch(caseID)
	if m == nil {
		return 0, false
	}
	ssr, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ssr, true
}
