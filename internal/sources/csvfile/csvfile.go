// Package csvfile reads one tabular export file into memory. It handles the
// quirks of real-world clinical exports: UTF-8 byte order marks, semicolon
// delimiters, Windows-1252 encoding, ragged rows, and headers that need
// renaming before the engine sees them.
package csvfile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"regrecon/pkg/errors"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Options configures the reader. All fields are optional; sensible defaults
// apply when a field is zero.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each cell.
	TrimSpace bool

	// HeaderMap renames source headers to canonical column names.
	HeaderMap map[string]string

	// Latin1 decodes the input from Windows-1252 before parsing.
	Latin1 bool
}

// Table is one parsed export file: its column set and rows as column→value
// maps.
type Table struct {
	Name   string
	Fields []string
	Rows   []map[string]string
}

// ReadFile opens and parses one export file.
func ReadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError("open", path, err)
	}
	defer f.Close()

	table, err := Read(f, filepath.Base(path), opts)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return table, nil
}

// Read parses CSV input into a Table. The first row is the header. Rows
// shorter than the header are padded with empty cells; extra cells are
// dropped. Lenient quoting tolerates the hand-edited files that show up in
// export directories.
func Read(r io.Reader, name string, opts Options) (*Table, error) {
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.Comma = ','
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &errors.ParseError{Format: "csv", File: name, Message: "file is empty"}
	}
	if err != nil {
		return nil, &errors.ParseError{Format: "csv", File: name, Message: "reading header", Err: err}
	}
	header = stripHeaderBOM(header)

	fields := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if renamed, ok := opts.HeaderMap[h]; ok {
			h = renamed
		}
		fields[i] = h
	}

	table := &Table{Name: name, Fields: fields}
	for line := 2; ; line++ {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &errors.ParseError{Format: "csv", File: name, Line: line, Message: "reading row", Err: err}
		}

		row := make(map[string]string, len(fields))
		for i, field := range fields {
			var v string
			if i < len(cells) {
				v = cells[i]
			}
			if opts.TrimSpace {
				v = strings.TrimSpace(v)
			}
			row[field] = v
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// stripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func stripHeaderBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, f := range t.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) >= 0
}
