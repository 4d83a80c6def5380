package sheet

import (
	"math"
	"strconv"
	"strings"
)

// CellFunc computes a cell for a row. Returning false leaves the cell missing.
type CellFunc func(Row) (string, bool)

// Mapping copies the Source column of a table into the Target column.
// An empty Source produces an all-missing Target.
type Mapping struct {
	Target string
	Source string
}

// JoinField pulls Source from the right table into Target on the left table.
type JoinField struct {
	Source string
	Target string
}

// JoinSpec parameterises LeftJoin.
type JoinSpec struct {
	LeftKey  string
	RightKey string
	Fields   []JoinField
}

// WithColumn returns a table where col is set to fn(row) for every row.
func (t *Table) WithColumn(col string, fn CellFunc) *Table {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out := r.clone(1)
		if v, ok := fn(r); ok {
			out[col] = v
		} else {
			delete(out, col)
		}
		rows[i] = out
	}
	return New(t.name, t.withColumn(col), rows)
}

// Constant returns a table where col holds value in every row.
func (t *Table) Constant(col, value string) *Table {
	return t.WithColumn(col, func(Row) (string, bool) { return value, true })
}

// Copy returns a table where dst holds the cells of src.
func (t *Table) Copy(dst, src string) *Table {
	return t.WithColumn(dst, func(r Row) (string, bool) { return r.Value(src) })
}

// FillMissing returns a table where only the missing cells of col are set to
// fn(row). Present cells are kept as-is.
func (t *Table) FillMissing(col string, fn CellFunc) *Table {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		if r.Has(col) {
			rows[i] = r
			continue
		}
		out := r.clone(1)
		if v, ok := fn(r); ok {
			out[col] = v
		}
		rows[i] = out
	}
	return New(t.name, t.withColumn(col), rows)
}

// Project returns a table holding only the mapped columns, in mapping order.
func (t *Table) Project(mappings []Mapping) *Table {
	cols := make([]string, len(mappings))
	for i, m := range mappings {
		cols[i] = m.Target
	}
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out := make(Row, len(mappings))
		for _, m := range mappings {
			if m.Source == "" {
				continue
			}
			if v, ok := r.Value(m.Source); ok {
				out[m.Target] = v
			}
		}
		rows[i] = out
	}
	return New(t.name, cols, rows)
}

// DropMissing returns the rows that have a value in every listed column,
// plus the number of rows dropped.
func (t *Table) DropMissing(cols ...string) (*Table, int) {
	rows := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		complete := true
		for _, c := range cols {
			if !r.Has(c) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, r)
		}
	}
	return New(t.name, t.columns, rows), len(t.rows) - len(rows)
}

// LeftJoin keeps every row of t and copies the requested fields from matching
// right rows. A row matching several right rows appears once per match; a
// row with no match has the target fields missing.
func (t *Table) LeftJoin(right *Table, spec JoinSpec) *Table {
	matches := make(map[string][]Row)
	for _, r := range right.rows {
		if k, ok := r.Value(spec.RightKey); ok {
			k = normaliseKey(k)
			matches[k] = append(matches[k], r)
		}
	}

	cols := t.columns
	for _, f := range spec.Fields {
		next := &Table{columns: cols, index: indexOf(cols)}
		cols = next.withColumn(f.Target)
	}

	rows := make([]Row, 0, len(t.rows))
	for _, l := range t.rows {
		var found []Row
		if k, ok := l.Value(spec.LeftKey); ok {
			found = matches[normaliseKey(k)]
		}
		if len(found) == 0 {
			out := l.clone(len(spec.Fields))
			for _, f := range spec.Fields {
				delete(out, f.Target)
			}
			rows = append(rows, out)
			continue
		}
		for _, m := range found {
			out := l.clone(len(spec.Fields))
			for _, f := range spec.Fields {
				if v, ok := m.Value(f.Source); ok {
					out[f.Target] = v
				} else {
					delete(out, f.Target)
				}
			}
			rows = append(rows, out)
		}
	}
	return New(t.name, cols, rows)
}

func indexOf(cols []string) map[string]int {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return idx
}

// normaliseKey makes "17", "17.0" and " 17 " join with each other.
func normaliseKey(k string) string {
	k = strings.TrimSpace(k)
	if f, err := strconv.ParseFloat(k, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return k
}
