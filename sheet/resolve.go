package sheet

import (
	"fmt"
	"strings"
)

// ColumnNotFoundError reports that none of the accepted names for a field
// exist in a table. Available lists the table's columns in original order.
type ColumnNotFoundError struct {
	Table      string
	Candidates []string
	Available  []string
}

func (e *ColumnNotFoundError) Error() string {
	where := ""
	if e.Table != "" {
		where = fmt.Sprintf(" in sheet %q", e.Table)
	}
	return fmt.Sprintf("could not find any of the columns %s%s (available: %s)",
		quoteAll(e.Candidates), where, quoteAll(e.Available))
}

// Resolve returns the first candidate present in the table's columns.
func Resolve(t *Table, candidates ...string) (string, error) {
	if col, ok := Lookup(t, candidates...); ok {
		return col, nil
	}
	return "", &ColumnNotFoundError{
		Table:      t.Name(),
		Candidates: append([]string(nil), candidates...),
		Available:  t.Columns(),
	}
}

// Lookup is Resolve for fields that may legitimately be absent.
func Lookup(t *Table, candidates ...string) (string, bool) {
	for _, c := range candidates {
		if t.Has(c) {
			return c, true
		}
	}
	return "", false
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
