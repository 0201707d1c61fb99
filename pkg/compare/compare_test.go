package compare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regrecon/pkg/dataset"
	"regrecon/pkg/fieldspec"
	"regrecon/pkg/normalize"
)

func testCatalog(t *testing.T) *fieldspec.Catalog {
	t.Helper()
	catalog, err := fieldspec.New(fieldspec.Document{
		Fields: []fieldspec.Spec{
			{Name: "enct.sex", Type: fieldspec.TypeString},
			{Name: "enct.non_swiss", Type: fieldspec.TypeBool},
			{Name: "enct.arrival_date", Type: fieldspec.TypeDate},
			{Name: "lab.crp", Type: fieldspec.TypeFloat, Precision: 2},
			{Name: "lab.nihss", Type: fieldspec.TypeInt},
		},
	})
	require.NoError(t, err)
	return catalog
}

func TestCompareMissingAsymmetry(t *testing.T) {
	c := New(testCatalog(t))

	missing := normalize.Missing("")
	present := normalize.IntValue("42", 42)

	assert.Equal(t, KindMissingInBoth, c.Compare("lab.nihss", missing, missing))
	assert.Equal(t, KindMissingInSource, c.Compare("lab.nihss", missing, present))
	assert.Equal(t, KindMissingInDestination, c.Compare("lab.nihss", present, missing))
}

func TestCompareUnparseableIsTypeIncompatible(t *testing.T) {
	c := New(testCatalog(t))

	bad := normalize.Unparseable("severe")
	good := normalize.IntValue("7", 7)

	assert.Equal(t, KindTypeIncompatible, c.Compare("lab.nihss", bad, good))
	assert.Equal(t, KindTypeIncompatible, c.Compare("lab.nihss", good, bad))
	// Missing takes precedence over unparseable.
	assert.Equal(t, KindMissingInSource, c.Compare("lab.nihss", normalize.Missing(""), bad))
}

func TestCompareFloatTolerance(t *testing.T) {
	c := New(testCatalog(t))
	eps := 0.005 // precision 2 default

	v := 3.14
	within := normalize.FloatValue("", v+eps/2)
	beyond := normalize.FloatValue("", v+2*eps)
	base := normalize.FloatValue("", v)

	assert.Equal(t, KindMatch, c.Compare("lab.crp", base, within))
	assert.Equal(t, KindMismatch, c.Compare("lab.crp", base, beyond))
}

func TestCompareIntIsExact(t *testing.T) {
	c := New(testCatalog(t))

	assert.Equal(t, KindMatch, c.Compare("lab.nihss",
		normalize.IntValue("7", 7), normalize.IntValue("7.0", 7)))
	assert.Equal(t, KindMismatch, c.Compare("lab.nihss",
		normalize.IntValue("7", 7), normalize.IntValue("8", 8)))
}

func TestCompareBool(t *testing.T) {
	c := New(testCatalog(t))

	assert.Equal(t, KindMatch, c.Compare("enct.non_swiss",
		normalize.BoolValue("Y", true), normalize.BoolValue("true", true)))
	assert.Equal(t, KindMismatch, c.Compare("enct.non_swiss",
		normalize.BoolValue("Y", true), normalize.BoolValue("no", false)))
}

func TestCompareDates(t *testing.T) {
	c := New(testCatalog(t))

	day := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, KindMatch, c.Compare("enct.arrival_date",
		normalize.DateValue("2024-06-15", day, true),
		normalize.DateValue("15.06.2024", day, true)))

	other := day.AddDate(0, 0, 1)
	assert.Equal(t, KindMismatch, c.Compare("enct.arrival_date",
		normalize.DateValue("", day, true),
		normalize.DateValue("", other, true)))
}

func TestCompareStrings(t *testing.T) {
	c := New(testCatalog(t))

	assert.Equal(t, KindMatch, c.Compare("enct.sex",
		normalize.StringValue("MALE", "male"), normalize.StringValue("male", "male")))
	assert.Equal(t, KindMismatch, c.Compare("enct.sex",
		normalize.StringValue("", "male"), normalize.StringValue("", "female")))
}

func TestCompareMismatchedVariants(t *testing.T) {
	c := New(testCatalog(t))

	assert.Equal(t, KindTypeIncompatible, c.Compare("lab.nihss",
		normalize.IntValue("7", 7), normalize.StringValue("7", "7")))
}

func TestOutcomeCarriesValues(t *testing.T) {
	c := New(testCatalog(t))
	key := dataset.Key{FID: 7, SSR: 3}

	o := c.Outcome(key, "enct.sex",
		normalize.StringValue("Male", "male"), normalize.StringValue("Female", "female"))

	assert.Equal(t, key, o.Key)
	assert.Equal(t, "enct.sex", o.Field)
	assert.Equal(t, KindMismatch, o.Kind)
	assert.Equal(t, "male", o.Source.Str)
	assert.Equal(t, "female", o.Destination.Str)
}

func TestKindIsProblem(t *testing.T) {
	assert.False(t, KindMatch.IsProblem())
	assert.False(t, KindMissingInBoth.IsProblem())
	assert.True(t, KindMismatch.IsProblem())
	assert.True(t, KindMissingInSource.IsProblem())
	assert.True(t, KindMissingInDestination.IsProblem())
	assert.True(t, KindTypeIncompatible.IsProblem())
}
