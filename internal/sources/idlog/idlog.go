// Package idlog reads the study's identification log, the file that pairs
// each hospital case number (FID) with the registry identification number
// (SSR). Both dataset loaders resolve their records to the composite key
// through this mapping.
package idlog

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"regrecon/internal/sources/csvfile"
	"regrecon/pkg/errors"
)

// Header fragments the export uses for the two identifier columns. The
// registry prepends form metadata to column names, so detection is by
// substring rather than exact match.
const (
	fidHeaderFragment = "Fall-Nr."
	ssrHeaderFragment = "SSR Identification"
)

// Mapping is the bidirectional FID↔SSR lookup built from the log.
type Mapping struct {
	ssrByFID map[int64]int64
	fidBySSR map[int64]int64
	dropped  int
}

// Load reads and parses the identification log file.
func Load(path string, logger *zerolog.Logger) (*Mapping, error) {
	table, err := csvfile.ReadFile(path, csvfile.Options{TrimSpace: true})
	if err != nil {
		return nil, err
	}
	return Parse(table, logger)
}

// Parse builds the mapping from a parsed log table. Rows missing either
// identifier are dropped; the count is logged.
func Parse(table *csvfile.Table, logger *zerolog.Logger) (*Mapping, error) {
	fidCol := findColumn(table.Fields, fidHeaderFragment)
	ssrCol := findColumn(table.Fields, ssrHeaderFragment)
	if fidCol == "" || ssrCol == "" {
		return nil, errors.NewValidationError("idlog", table.Fields,
			"identification log must contain 'Fall-Nr.' and 'SSR Identification' columns")
	}

	m := &Mapping{
		ssrByFID: make(map[int64]int64, len(table.Rows)),
		fidBySSR: make(map[int64]int64, len(table.Rows)),
	}

	for _, row := range table.Rows {
		fid, okFID := parseID(row[fidCol])
		ssr, okSSR := parseID(row[ssrCol])
		if !okFID || !okSSR {
			m.dropped++
			continue
		}
		m.ssrByFID[fid] = ssr
		m.fidBySSR[ssr] = fid
	}

	if m.dropped > 0 {
		logger.Warn().
			Str("file", table.Name).
			Int("dropped", m.dropped).
			Msg("Identification log rows without both identifiers removed")
	}
	logger.Info().
		Str("file", table.Name).
		Int("entries", len(m.ssrByFID)).
		Msg("Identification log loaded")

	if len(m.ssrByFID) == 0 {
		return nil, errors.NewValidationError("idlog", table.Name,
			"identification log contains no usable entries")
	}
	return m, nil
}

// SSR returns the registry number for a case number.
func (m *Mapping) SSR(fid int64) (int64, bool) {
	ssr, ok := m.ssrByFID[fid]
	return ssr, ok
}

// FID returns the case number for a registry number.
func (m *Mapping) FID(ssr int64) (int64, bool) {
	fid, ok := m.fidBySSR[ssr]
	return fid, ok
}

// Len returns the number of usable log entries.
func (m *Mapping) Len() int {
	return len(m.ssrByFID)
}

// Dropped returns the number of log rows discarded for missing identifiers.
func (m *Mapping) Dropped() int {
	return m.dropped
}

// findColumn returns the first column whose name contains the fragment.
func findColumn(fields []string, fragment string) string {
	for _, f := range fields {
		if strings.Contains(f, fragment) {
			return f
		}
	}
	return ""
}

// parseID coerces a cell to an integer identifier. Exports sometimes render
// identifiers as floats ("1234.0"); the integral part is accepted.
func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}
