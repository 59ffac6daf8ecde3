package scoretable

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/carbocation/epitopes"
	"github.com/carbocation/pfx"
)

// sniffBytes is how much of a table is inspected to guess its delimiter.
const sniffBytes = 8192

// Raw is an untyped table as emitted by a predictor or read from disk: a
// header row and the data rows beneath it. Columns a caller does not ask for
// are carried along and ignored.
type Raw struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewRaw builds a Raw from a header and rows.
func NewRaw(header []string, rows [][]string) *Raw {
	out := &Raw{Header: header, Rows: rows}
	out.reindex()
	return out
}

func (raw *Raw) reindex() {
	raw.index = make(map[string]int, len(raw.Header))
	for i, col := range raw.Header {
		// First occurrence wins if a tool repeats a column name.
		if _, exists := raw.index[col]; !exists {
			raw.index[col] = i
		}
	}
}

// Col returns the index of the named column and whether it exists.
func (raw *Raw) Col(name string) (int, bool) {
	if raw.index == nil {
		raw.reindex()
	}
	i, ok := raw.index[name]
	return i, ok
}

// HasColumn reports whether the named column exists.
func (raw *Raw) HasColumn(name string) bool {
	_, ok := raw.Col(name)
	return ok
}

// Value returns the named cell of row i, or "" if the column is absent or the
// row is short.
func (raw *Raw) Value(i int, name string) string {
	c, ok := raw.Col(name)
	if !ok || c >= len(raw.Rows[i]) {
		return ""
	}
	return raw.Rows[i][c]
}

// Rename changes column names in place, as with the per-method column
// normalization that precedes ranking.
func (raw *Raw) Rename(mapping map[string]string) {
	for i, col := range raw.Header {
		if to, ok := mapping[col]; ok {
			raw.Header[i] = to
		}
	}
	raw.reindex()
}

// SetColumn fills the named column from value(i) for every row, adding the
// column if it does not exist yet.
func (raw *Raw) SetColumn(name string, value func(i int) string) {
	c, ok := raw.Col(name)
	if !ok {
		raw.Header = append(raw.Header, name)
		c = len(raw.Header) - 1
		raw.index[name] = c
	}

	for i, row := range raw.Rows {
		for len(row) <= c {
			row = append(row, "")
		}
		row[c] = value(i)
		raw.Rows[i] = row
	}
}

// ReadRaw parses a delimited table. If delimiter is 0 it is guessed from the
// start of the input.
func ReadRaw(r io.Reader, delimiter rune) (*Raw, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if delimiter == 0 {
		sample := body
		if len(sample) > sniffBytes {
			sample = sample[:sniffBytes]
		}
		delimiter = epitopes.DetermineDelimiter(sample)
	}

	cr := csv.NewReader(bytes.NewReader(body))
	cr.Comma = delimiter
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	entries, err := cr.ReadAll()
	if err != nil {
		return nil, pfx.Err(err)
	}

	if len(entries) == 0 {
		return NewRaw(nil, nil), nil
	}

	return NewRaw(entries[0], entries[1:]), nil
}
