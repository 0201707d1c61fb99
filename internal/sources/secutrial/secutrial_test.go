package secutrial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regrecon/internal/sources/csvfile"
	"regrecon/internal/sources/idlog"
	"regrecon/pkg/dataset"
	"regrecon/pkg/logging"
)

func testIDs(t *testing.T) *idlog.Mapping {
	t.Helper()
	table := &csvfile.Table{
		Name:   "idlog.csv",
		Fields: []string{"Fall-Nr.", "SSR Identification"},
		Rows: []map[string]string{
			{"Fall-Nr.": "100", "SSR Identification": "7"},
			{"Fall-Nr.": "200", "SSR Identification": "8"},
		},
	}
	m, err := idlog.Parse(table, logging.NewNopLogger())
	require.NoError(t, err)
	return m
}

func registryTable(rows []map[string]string) *csvfile.Table {
	return &csvfile.Table{
		Name:   "registry.csv",
		Fields: []string{"Case ID", "enct.arrival_date", "enct.sex"},
		Rows:   rows,
	}
}

func TestBuildResolvesKeysFromCaseID(t *testing.T) {
	table := registryTable([]map[string]string{
		{"Case ID": "SSR-ZH-00007", "enct.arrival_date": "15.06.2024", "enct.sex": "Male"},
		{"Case ID": "SSR-ZH-00008", "enct.arrival_date": "01.07.2024", "enct.sex": "Female"},
	})

	ds, err := Build(table, testIDs(t), logging.NewNopLogger())
	require.NoError(t, err)

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, dataset.Key{FID: 100, SSR: 7}, ds.Records[0].Key)
	assert.Equal(t, dataset.Key{FID: 200, SSR: 8}, ds.Records[1].Key)

	v, ok := ds.Records[0].Value("enct.sex")
	require.True(t, ok)
	assert.Equal(t, "Male", v)

	// The identifier column does not leak into comparable values.
	_, ok = ds.Records[0].Value("Case ID")
	assert.False(t, ok)
}

func TestBuildDropsUnresolvableRows(t *testing.T) {
	table := registryTable([]map[string]string{
		{"Case ID": "SSR-ZH-00007", "enct.sex": "Male"},
		{"Case ID": "SSR-ZH-00099", "enct.sex": "Female"}, // not in the log
		{"Case ID": "no-digits", "enct.sex": "Male"},
	})

	ds, err := Build(table, testIDs(t), logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestBuildRequiresCaseIDColumn(t *testing.T) {
	table := &csvfile.Table{
		Name:   "registry.csv",
		Fields: []string{"ID", "name"},
		Rows:   []map[string]string{{"ID": "1", "name": "x"}},
	}

	_, err := Build(table, testIDs(t), logging.NewNopLogger())
	require.Error(t, err)
}

func TestBuildRejectsEmptyResolvedSet(t *testing.T) {
	table := registryTable([]map[string]string{
		{"Case ID": "no-digits", "enct.sex": "Male"},
	})

	_, err := Build(table, testIDs(t), logging.NewNopLogger())
	require.Error(t, err)
}

func TestExtractSSR(t *testing.T) {
	ssr, ok := extractSSR("SSR-ZH-00123")
	require.True(t, ok)
	assert.Equal(t, int64(123), ssr)

	_, ok = extractSSR("SSR-ZH-")
	assert.False(t, ok)
}
