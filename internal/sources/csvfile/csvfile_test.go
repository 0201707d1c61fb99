package csvfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regrecon/pkg/errors"
)

func TestReadBasic(t *testing.T) {
	in := "id,name\n1,alpha\n2,beta\n"

	table, err := Read(strings.NewReader(in), "basic.csv", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, table.Fields)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "alpha", table.Rows[0]["name"])
	assert.Equal(t, "2", table.Rows[1]["id"])
}

func TestReadStripsBOM(t *testing.T) {
	in := "\uFEFFid,name\n1,alpha\n"

	table, err := Read(strings.NewReader(in), "bom.csv", Options{})
	require.NoError(t, err)
	assert.Equal(t, "id", table.Fields[0])
}

func TestReadSemicolonDelimiter(t *testing.T) {
	in := "id;name\n1;alpha\n"

	table, err := Read(strings.NewReader(in), "semi.csv", Options{Comma: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, table.Fields)
	assert.Equal(t, "alpha", table.Rows[0]["name"])
}

func TestReadPadsShortRows(t *testing.T) {
	in := "id,name,city\n1,alpha\n2,beta,Bern,extra\n"

	table, err := Read(strings.NewReader(in), "ragged.csv", Options{})
	require.NoError(t, err)

	assert.Equal(t, "", table.Rows[0]["city"])
	assert.Equal(t, "Bern", table.Rows[1]["city"])
	assert.Len(t, table.Rows[1], 3)
}

func TestReadHeaderMap(t *testing.T) {
	in := "Fall-Nr.,Name\n42,alpha\n"

	table, err := Read(strings.NewReader(in), "mapped.csv", Options{
		HeaderMap: map[string]string{"Fall-Nr.": "FID"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"FID", "Name"}, table.Fields)
	assert.Equal(t, "42", table.Rows[0]["FID"])
}

func TestReadTrimSpace(t *testing.T) {
	in := "id,name\n 1 ,  alpha \n"

	table, err := Read(strings.NewReader(in), "padded.csv", Options{TrimSpace: true})
	require.NoError(t, err)
	assert.Equal(t, "1", table.Rows[0]["id"])
	assert.Equal(t, "alpha", table.Rows[0]["name"])
}

func TestReadLatin1(t *testing.T) {
	// "Zürich" encoded in Windows-1252: ü is 0xFC.
	in := "id,city\n1,Z\xfcrich\n"

	table, err := Read(strings.NewReader(in), "latin1.csv", Options{Latin1: true})
	require.NoError(t, err)
	assert.Equal(t, "Zürich", table.Rows[0]["city"])
}

func TestReadEmptyFile(t *testing.T) {
	_, err := Read(strings.NewReader(""), "empty.csv", Options{})
	require.Error(t, err)

	var perr *errors.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "empty.csv", perr.File)
}

func TestColumnLookup(t *testing.T) {
	table := &Table{Fields: []string{"FID", "SSR", "name"}}

	assert.Equal(t, 1, table.Column("SSR"))
	assert.Equal(t, -1, table.Column("missing"))
	assert.True(t, table.HasColumn("name"))
	assert.False(t, table.HasColumn("Name"))
}
