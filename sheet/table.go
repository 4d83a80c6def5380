// Package sheet holds spreadsheet data in memory and provides the column
// resolution and row transforms the listing pipelines are built from.
//
// A Table is never modified after construction: every transform returns a new
// Table and copies only the rows it touches.
package sheet

import (
	"fmt"
	"strings"
)

// Row maps a column name to the raw cell text.
// A cell is missing when its key is absent or its trimmed text is empty.
type Row map[string]string

// Value returns the trimmed cell text and whether the cell is present.
func (r Row) Value(col string) (string, bool) {
	v, ok := r[col]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Float parses the cell as a number. Unparseable cells count as missing.
func (r Row) Float(col string) (float64, bool) {
	v, ok := r.Value(col)
	if !ok {
		return 0, false
	}
	return ParseNumber(v)
}

// Has reports whether the cell is present.
func (r Row) Has(col string) bool {
	_, ok := r.Value(col)
	return ok
}

func (r Row) clone(extra int) Row {
	out := make(Row, len(r)+extra)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of columns and rows read from one sheet.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    []Row
}

// New builds a Table. Duplicate column names keep their first position.
func New(name string, columns []string, rows []Row) *Table {
	t := &Table{name: name, index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, dup := t.index[c]; dup {
			continue
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	t.rows = make([]Row, len(rows))
	copy(t.rows, rows)
	return t
}

// FromRecords builds a Table from a header record followed by data records.
// Blank header cells are named "Unnamed: <i>", repeated headers get a ".<n>"
// suffix and fully blank data records are skipped.
func FromRecords(name string, records [][]string) *Table {
	if len(records) == 0 {
		return New(name, nil, nil)
	}

	header := make([]string, len(records[0]))
	seen := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		header[i] = h
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row[header[i]] = cell
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return New(name, header, rows)
}

// Name returns the sheet name the table was read from.
func (t *Table) Name() string { return t.name }

// Columns returns a copy of the column names in their original order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether the table has the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th row. Callers must not modify it.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Rows returns the rows in order. Callers must not modify them.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// MissingCount returns how many rows have no value in col.
func (t *Table) MissingCount(col string) int {
	n := 0
	for _, r := range t.rows {
		if !r.Has(col) {
			n++
		}
	}
	return n
}

// Head returns a table with at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return New(t.name, t.columns, t.rows[:n])
}

func (t *Table) withColumn(col string) []string {
	if t.Has(col) {
		return t.columns
	}
	cols := make([]string, len(t.columns), len(t.columns)+1)
	copy(cols, t.columns)
	return append(cols, col)
}
