package sheet

import (
	"errors"
	"fmt"
)

// ErrNoSheets is returned when a workbook has no sheets at all.
var ErrNoSheets = errors.New("workbook has no sheets")

// Book is an in-memory workbook: tables in sheet order.
type Book struct {
	name   string
	order  []string
	tables map[string]*Table
}

// NewBook builds a Book from tables, keeping their order.
func NewBook(name string, tables ...*Table) *Book {
	b := &Book{name: name, tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if _, dup := b.tables[t.Name()]; dup {
			continue
		}
		b.order = append(b.order, t.Name())
		b.tables[t.Name()] = t
	}
	return b
}

// Name returns the source name (usually the file name).
func (b *Book) Name() string { return b.name }

// SheetNames returns the sheet names in workbook order.
func (b *Book) SheetNames() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Sheet returns the named sheet.
func (b *Book) Sheet(name string) (*Table, error) {
	t, ok := b.tables[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found in %s", name, b.name)
	}
	return t, nil
}

// First returns the first sheet.
func (b *Book) First() (*Table, error) {
	if len(b.order) == 0 {
		return nil, ErrNoSheets
	}
	return b.tables[b.order[0]], nil
}

// FindSheet returns the first sheet whose name is in candidates.
func (b *Book) FindSheet(candidates ...string) (*Table, bool) {
	for _, c := range candidates {
		if t, ok := b.tables[c]; ok {
			return t, true
		}
	}
	return nil, false
}
