package storage

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"housing-dashboard/sheet"
)

// ReadWorkbook loads every sheet of the .xlsx file at path.
func ReadWorkbook(path string) (*sheet.Book, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", path, err)
	}
	defer f.Close()
	return readBook(f, filepath.Base(path))
}

// ReadWorkbookFrom loads a workbook from r, e.g. an uploaded file.
// name is used in messages and the report metadata.
func ReadWorkbookFrom(r io.Reader, name string) (*sheet.Book, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", name, err)
	}
	defer f.Close()
	return readBook(f, name)
}

func readBook(f *excelize.File, name string) (*sheet.Book, error) {
	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("xlsx: %s: %w", name, sheet.ErrNoSheets)
	}

	tables := make([]*sheet.Table, 0, len(names))
	for _, sn := range names {
		// Raw values keep Excel date serials and unformatted numbers.
		rows, err := f.GetRows(sn, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("xlsx: read sheet %q of %s: %w", sn, name, err)
		}
		tables = append(tables, sheet.FromRecords(sn, rows))
	}
	return sheet.NewBook(name, tables...), nil
}
