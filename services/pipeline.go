package services

import (
	"errors"
	"fmt"

	"housing-dashboard/models"
	"housing-dashboard/sheet"
	"housing-dashboard/utils"
)

// ErrNoListings is returned when cleaning leaves no rows to report on.
var ErrNoListings = errors.New("no listings left after cleaning")

// Source is a loaded workbook. *sheet.Book implements it.
type Source interface {
	Name() string
	SheetNames() []string
	Sheet(name string) (*sheet.Table, error)
	First() (*sheet.Table, error)
	FindSheet(candidates ...string) (*sheet.Table, bool)
}

// ChartRenderer turns a cleaned dataset into the three static chart images.
type ChartRenderer interface {
	Render(data models.ChartData) (models.Charts, error)
}

// Canonical column names used between standardisation and conversion.
const (
	colAddress    = "address"
	colCity       = "city"
	colLatitude   = "latitude"
	colLongitude  = "longitude"
	colArea       = "area_sqm"
	colRentSqm    = "rent_per_sqm"
	colYearlyRent = "yearly_rent"
	colMonthly    = "monthly_rent"
	colDays       = "days_listed"
	colRooms      = "room_count"
	colYear       = "construction_year"
	colType       = "property_type"

	colTradeName = "trade_name"
	colTradeDate = "trade_date"
	colPrice     = "price"
	colPriceSqm  = "price_per_sqm"
	colUsage     = "usage_type"

	// columns added to a raw sheet before projection
	rawMonthly   = "monthly_rent.source"
	rawRooms     = "room_count.merged"
	rawLatitude  = "latitude.merged"
	rawLongitude = "longitude.merged"
	rawUsage     = "usage_type.merged"
	rawYear      = "construction_year.merged"
)

// field pairs a canonical column with its accepted source names.
type field struct {
	target     string
	candidates []string
}

// resolveFields resolves every field or fails on the first one missing.
func resolveFields(t *sheet.Table, fields []field) ([]sheet.Mapping, error) {
	mappings := make([]sheet.Mapping, 0, len(fields))
	for _, f := range fields {
		src, err := sheet.Resolve(t, f.candidates...)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, sheet.Mapping{Target: f.target, Source: src})
	}
	return mappings, nil
}

// notices collects the non-fatal messages of one pipeline run and logs them.
type notices struct {
	prefix string
	logger *utils.Logger
	list   []string
}

func (n *notices) info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	n.logger.Info("%s %s", n.prefix, msg)
	n.list = append(n.list, msg)
}

func (n *notices) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	n.logger.Warn("%s %s", n.prefix, msg)
	n.list = append(n.list, msg)
}

// numeric rewrites cols as plain numbers read with parse: sheet.ParseAmount
// for prices, areas and counts, sheet.ParseNumber for coordinates. Cells
// that do not parse become missing so that cleaning drops them.
func numeric(t *sheet.Table, parse func(string) (float64, bool), cols ...string) *sheet.Table {
	for _, col := range cols {
		col := col
		t = t.WithColumn(col, func(r sheet.Row) (string, bool) {
			v, ok := r.Value(col)
			if !ok {
				return "", false
			}
			f, ok := parse(v)
			if !ok {
				return "", false
			}
			return sheet.FormatNumber(f), true
		})
	}
	return t
}

func truncated(r sheet.Row, col string) int {
	f, _ := r.Float(col)
	return int(f)
}

func optionalYear(r sheet.Row, col string) *int {
	f, ok := r.Float(col)
	if !ok {
		return nil
	}
	y := int(f)
	return &y
}

func textOr(r sheet.Row, col, fallback string) string {
	if v, ok := r.Value(col); ok {
		return v
	}
	return fallback
}

func render(renderer ChartRenderer, data models.ChartData) (models.Charts, error) {
	if renderer == nil {
		return models.Charts{}, nil
	}
	charts, err := renderer.Render(data)
	if err != nil {
		return models.Charts{}, fmt.Errorf("render %s charts: %w", data.Mode, err)
	}
	return charts, nil
}
