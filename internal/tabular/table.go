package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var missingMarkers = map[string]struct{}{
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell encodes an absent value.
func IsMissing(value string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	_, ok := missingMarkers[value]
	return ok
}

// Table is an ordered header plus rows of text cells. Every row has exactly
// len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// New builds a table from a header and rows, padding short rows with empty
// cells and truncating long ones.
func New(header []string, rows [][]string) *Table {
	t := &Table{Header: dedupeHeader(header)}
	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		t.index[name] = i
	}
	t.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		t.Rows = append(t.Rows, fitRow(row, len(t.Header)))
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the index of a named column.
func (t *Table) Column(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	idx, ok := t.index[name]
	return idx, ok
}

// Has reports whether the table carries the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Value returns the cell at row/column and whether it is present (not missing).
func (t *Table) Value(row int, name string) (string, bool) {
	idx, ok := t.Column(name)
	if !ok || row < 0 || row >= t.Len() {
		return "", false
	}
	cell := t.Rows[row][idx]
	if IsMissing(cell) {
		return "", false
	}
	return cell, true
}

// ColumnValues returns every cell of a column along with presence flags.
func (t *Table) ColumnValues(name string) ([]string, []bool, bool) {
	idx, ok := t.Column(name)
	if !ok {
		return nil, nil, false
	}
	values := make([]string, t.Len())
	present := make([]bool, t.Len())
	for i, row := range t.Rows {
		values[i] = row[idx]
		present[i] = !IsMissing(row[idx])
	}
	return values, present, true
}

// Read parses CSV content whose first record is the header.
func Read(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv has no header")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(rows)+1, err)
		}
		rows = append(rows, record)
	}
	return New(header, rows), nil
}

// ReadFile opens and parses a CSV file.
func ReadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	table, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for n := 1; ; n++ {
			if _, dup := seen[candidate]; !dup {
				break
			}
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}

func fitRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
