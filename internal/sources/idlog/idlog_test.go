package idlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regrecon/internal/sources/csvfile"
	"regrecon/pkg/logging"
)

func logTable(rows []map[string]string) *csvfile.Table {
	return &csvfile.Table{
		Name:   "idlog.csv",
		Fields: []string{"Fall-Nr. (Admin)", "SSR Identification number", "Comment"},
		Rows:   rows,
	}
}

func TestParseBuildsBothDirections(t *testing.T) {
	table := logTable([]map[string]string{
		{"Fall-Nr. (Admin)": "100", "SSR Identification number": "7"},
		{"Fall-Nr. (Admin)": "200", "SSR Identification number": "8"},
	})

	m, err := Parse(table, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	ssr, ok := m.SSR(100)
	require.True(t, ok)
	assert.Equal(t, int64(7), ssr)

	fid, ok := m.FID(8)
	require.True(t, ok)
	assert.Equal(t, int64(200), fid)
}

func TestParseDropsIncompleteRows(t *testing.T) {
	table := logTable([]map[string]string{
		{"Fall-Nr. (Admin)": "100", "SSR Identification number": "7"},
		{"Fall-Nr. (Admin)": "", "SSR Identification number": "8"},
		{"Fall-Nr. (Admin)": "300", "SSR Identification number": "n/a"},
	})

	m, err := Parse(table, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, m.Dropped())
}

func TestParseAcceptsFloatRenderedIDs(t *testing.T) {
	table := logTable([]map[string]string{
		{"Fall-Nr. (Admin)": "100.0", "SSR Identification number": "7"},
	})

	m, err := Parse(table, logging.NewNopLogger())
	require.NoError(t, err)

	ssr, ok := m.SSR(100)
	require.True(t, ok)
	assert.Equal(t, int64(7), ssr)
}

func TestParseRequiresIdentifierColumns(t *testing.T) {
	table := &csvfile.Table{
		Name:   "idlog.csv",
		Fields: []string{"Case", "Number"},
		Rows:   []map[string]string{{"Case": "1", "Number": "2"}},
	}

	_, err := Parse(table, logging.NewNopLogger())
	require.Error(t, err)
}

func TestParseRejectsEmptyLog(t *testing.T) {
	table := logTable(nil)

	_, err := Parse(table, logging.NewNopLogger())
	require.Error(t, err)
}
