package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regrecon/pkg/fieldspec"
)

func testCatalog(t *testing.T) *fieldspec.Catalog {
	t.Helper()
	catalog, err := fieldspec.New(fieldspec.Document{
		Fields: []fieldspec.Spec{
			{Name: "enct.sex", Type: fieldspec.TypeString, Mapping: map[string]string{"1": "Male", "2": "Female"}},
			{Name: "enct.non_swiss", Type: fieldspec.TypeBool},
			{Name: "enct.arrival_date", Type: fieldspec.TypeDate},
			{Name: "enct.arrival_time", Type: fieldspec.TypeDateTime},
			{Name: "lab.crp", Type: fieldspec.TypeFloat, Precision: 2},
			{Name: "lab.nihss", Type: fieldspec.TypeInt, Missing: []string{"99"}},
		},
	})
	require.NoError(t, err)
	return catalog
}

func TestNormalizeMissingSentinels(t *testing.T) {
	n := New(testCatalog(t))

	for _, raw := range []string{"", "  ", "NA", "n/a", "NaN", "None", "NULL", "-", "."} {
		v := n.Normalize("enct.sex", raw)
		assert.True(t, v.IsMissing(), "raw %q should be missing", raw)
	}

	// Per-field sentinel on top of the defaults.
	assert.True(t, n.Normalize("lab.nihss", "99").IsMissing())
	assert.False(t, n.Normalize("lab.nihss", "12").IsMissing())
}

func TestNormalizeAppliesMappingBeforeCoercion(t *testing.T) {
	n := New(testCatalog(t))

	v := n.Normalize("enct.sex", "1")
	require.Equal(t, KindString, v.Kind)
	assert.Equal(t, "male", v.Str)

	// Unmapped values pass through coercion untouched.
	v = n.Normalize("enct.sex", "Female")
	assert.Equal(t, "female", v.Str)
}

func TestNormalizeBoolLiterals(t *testing.T) {
	n := New(testCatalog(t))

	for _, raw := range []string{"Y", "yes", "1", "true", "T", "ja"} {
		v := n.Normalize("enct.non_swiss", raw)
		require.Equal(t, KindBool, v.Kind, "raw %q", raw)
		assert.True(t, v.Bool, "raw %q", raw)
	}
	for _, raw := range []string{"N", "no", "0", "false", "F", "nein"} {
		v := n.Normalize("enct.non_swiss", raw)
		require.Equal(t, KindBool, v.Kind, "raw %q", raw)
		assert.False(t, v.Bool, "raw %q", raw)
	}

	assert.True(t, n.Normalize("enct.non_swiss", "maybe").IsUnparseable())
}

func TestNormalizeFloatRoundsToPrecision(t *testing.T) {
	n := New(testCatalog(t))

	a := n.Normalize("lab.crp", "3.14159")
	b := n.Normalize("lab.crp", "3.14")

	require.Equal(t, KindFloat, a.Kind)
	assert.Equal(t, a.Float, b.Float)
	assert.InDelta(t, 3.14, a.Float, 1e-12)

	// Decimal comma variant seen in exports.
	c := n.Normalize("lab.crp", "3,14")
	assert.InDelta(t, 3.14, c.Float, 1e-12)
}

func TestNormalizeIntAcceptsIntegralFloats(t *testing.T) {
	n := New(testCatalog(t))

	v := n.Normalize("lab.nihss", "7.0")
	require.Equal(t, KindInt, v.Kind)
	assert.Equal(t, int64(7), v.Int)

	assert.True(t, n.Normalize("lab.nihss", "7.5").IsUnparseable())
	assert.True(t, n.Normalize("lab.nihss", "severe").IsUnparseable())
}

func TestNormalizeDateFirstFormatWins(t *testing.T) {
	n := New(testCatalog(t))

	want := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-06-15", "15.06.2024", "2024-06-15 08:30:00"} {
		v := n.Normalize("enct.arrival_date", raw)
		require.Equal(t, KindDate, v.Kind, "raw %q", raw)
		assert.True(t, v.DateOnly)
		assert.True(t, v.Time.Equal(want), "raw %q normalized to %v", raw, v.Time)
	}

	v := n.Normalize("enct.arrival_time", "2024-06-15 08:30:00")
	require.Equal(t, KindDate, v.Kind)
	assert.False(t, v.DateOnly)
	assert.Equal(t, 8, v.Time.Hour())

	assert.True(t, n.Normalize("enct.arrival_date", "June 15th").IsUnparseable())
}

func TestNormalizeStringFoldsAndCollapsesWhitespace(t *testing.T) {
	n := New(testCatalog(t))

	v := n.Normalize("enct.sex", "  MALE  ")
	assert.Equal(t, "male", v.Str)

	v = n.Normalize("enct.sex", "Other\t  acute   care")
	assert.Equal(t, "other acute care", v.Str)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := New(testCatalog(t))

	cases := map[string]string{
		"enct.sex":          "1",
		"enct.non_swiss":    "Y",
		"enct.arrival_date": "15.06.2024",
		"enct.arrival_time": "2024-06-15 08:30:00",
		"lab.crp":           "3.14159",
		"lab.nihss":         "7.0",
	}

	for field, raw := range cases {
		once := n.Normalize(field, raw)
		twice := n.Normalize(field, once.Display())
		assert.Equal(t, once.Kind, twice.Kind, "field %s", field)
		assert.Equal(t, once.Display(), twice.Display(), "field %s", field)
	}
}

func TestNormalizeUnknownFieldIsUnparseable(t *testing.T) {
	n := New(testCatalog(t))
	assert.True(t, n.Normalize("img.unknown", "x").IsUnparseable())
}

func TestValueDisplay(t *testing.T) {
	assert.Equal(t, "", Missing("NA").Display())
	assert.Equal(t, "abc", Unparseable("abc").Display())
	assert.Equal(t, "7", IntValue("7.0", 7).Display())
	assert.Equal(t, "3.14", FloatValue("3.14159", 3.14).Display())
	assert.Equal(t, "true", BoolValue("Y", true).Display())

	d := time.Date(2024, time.June, 15, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-15", DateValue("x", d, true).Display())
	assert.Equal(t, "2024-06-15 08:30:00", DateValue("x", d, false).Display())
}
