package services

import (
	"fmt"

	"housing-dashboard/config"
	"housing-dashboard/models"
	"housing-dashboard/sheet"
	"housing-dashboard/utils"
)

var rentalRequired = []string{
	colAddress, colCity, colLatitude, colLongitude, colArea,
	colRentSqm, colYearlyRent, colDays, colRooms,
}

// RentalPipeline turns a rental workbook into cleaned listings and stats.
type RentalPipeline struct {
	cols     config.RentalColumns
	renderer ChartRenderer
	logger   *utils.Logger
}

// NewRentalPipeline creates a RentalPipeline. A nil renderer skips charts.
func NewRentalPipeline(cols config.RentalColumns, renderer ChartRenderer, logger *utils.Logger) *RentalPipeline {
	return &RentalPipeline{cols: cols, renderer: renderer, logger: logger}
}

// Process runs the full rental pipeline over src.
func (p *RentalPipeline) Process(src Source) (*models.RentalResult, error) {
	n := &notices{prefix: "[rental]", logger: p.logger}

	raw, err := p.load(src)
	if err != nil {
		return nil, err
	}
	p.logger.Info("[rental] Read %d rows from sheet %q of %s", raw.Len(), raw.Name(), src.Name())

	standard, err := p.standardise(raw, n)
	if err != nil {
		return nil, err
	}

	cleaned, dropped := Clean(standard, rentalRequired...)
	if dropped > 0 {
		n.warn("Dropped %d rows with missing data", dropped)
	}
	if cleaned.Len() == 0 {
		return nil, fmt.Errorf("rental: %w", ErrNoListings)
	}

	listings, samples, points := convertRentals(cleaned)

	charts, err := render(p.renderer, models.ChartData{Mode: models.ModeRental, Points: points})
	if err != nil {
		return nil, fmt.Errorf("rental: %w", err)
	}

	p.logger.Info("[rental] Cleaned %d → %d listings (dropped %d)", standard.Len(), cleaned.Len(), dropped)
	return &models.RentalResult{
		Stats:    Aggregate(samples),
		Listings: listings,
		Charts:   charts,
		Notices:  n.list,
		Dropped:  dropped,
	}, nil
}

// load reads the configured working sheet, falling back to the first sheet.
func (p *RentalPipeline) load(src Source) (*sheet.Table, error) {
	if t, ok := src.FindSheet(p.cols.Sheets...); ok {
		return t, nil
	}
	t, err := src.First()
	if err != nil {
		return nil, fmt.Errorf("rental: load %s: %w", src.Name(), err)
	}
	return t, nil
}

// standardise resolves the source columns and projects them onto the
// canonical rental columns, deriving the monthly rent.
func (p *RentalPipeline) standardise(raw *sheet.Table, n *notices) (*sheet.Table, error) {
	mappings, err := resolveFields(raw, []field{
		{colAddress, p.cols.Address},
		{colCity, p.cols.City},
		{colLatitude, p.cols.Latitude},
		{colLongitude, p.cols.Longitude},
		{colArea, p.cols.Area},
		{colRentSqm, p.cols.RentPerSqm},
		{colYearlyRent, p.cols.YearlyRent},
		{colDays, p.cols.DaysListed},
		{colRooms, p.cols.Rooms},
	})
	if err != nil {
		return nil, fmt.Errorf("rental: %w", err)
	}

	yearCol, hasYear := sheet.Lookup(raw, p.cols.ConstructionYear...)
	if hasYear {
		n.info("Construction year taken from column %q", yearCol)
	} else {
		n.warn("Construction year not found in data")
	}
	typeCol, hasType := sheet.Lookup(raw, p.cols.PropertyType...)
	if hasType {
		n.info("Property type taken from column %q", typeCol)
	} else {
		n.warn("Property type not found, using %q", models.NotSpecified)
	}
	monthlyCol, _ := sheet.Lookup(raw, p.cols.MonthlyRent...)

	mappings = append(mappings,
		sheet.Mapping{Target: colYear, Source: yearCol},
		sheet.Mapping{Target: colType, Source: typeCol},
		sheet.Mapping{Target: rawMonthly, Source: monthlyCol},
	)

	t := numeric(raw.Project(mappings), sheet.ParseAmount,
		colArea, colRentSqm, colYearlyRent, colDays, colRooms)
	t = numeric(t, sheet.ParseNumber, colLatitude, colLongitude)
	t = t.WithColumn(colMonthly, monthlyRent).
		FillMissing(colType, func(sheet.Row) (string, bool) { return models.NotSpecified, true })
	return t, nil
}

// monthlyRent prefers an explicit monthly figure and otherwise divides the
// yearly rent by twelve. The two sources are not reconciled: a monthly column
// can disagree with yearly/12 on the same row.
func monthlyRent(r sheet.Row) (string, bool) {
	if v, ok := r.Value(rawMonthly); ok {
		if m, ok := sheet.ParseAmount(v); ok {
			return sheet.FormatNumber(m), true
		}
	}
	y, ok := r.Float(colYearlyRent)
	if !ok {
		return "", false
	}
	return sheet.FormatNumber(y / 12), true
}

func convertRentals(t *sheet.Table) ([]models.RentalListing, []Sample, []models.ChartPoint) {
	listings := make([]models.RentalListing, 0, t.Len())
	samples := make([]Sample, 0, t.Len())
	points := make([]models.ChartPoint, 0, t.Len())

	for _, r := range t.Rows() {
		lat, _ := r.Float(colLatitude)
		lng, _ := r.Float(colLongitude)
		area, _ := r.Float(colArea)
		rentSqm, _ := r.Float(colRentSqm)
		monthly, _ := r.Float(colMonthly)
		days, _ := r.Float(colDays)
		city, _ := r.Value(colCity)
		address, _ := r.Value(colAddress)
		rooms := truncated(r, colRooms)

		listings = append(listings, models.RentalListing{
			Address:          address,
			City:             city,
			Latitude:         lat,
			Longitude:        lng,
			AreaSqm:          int(area),
			RentPerSqm:       int(rentSqm),
			MonthlyRent:      int(monthly),
			DaysListed:       int(days),
			RoomCount:        rooms,
			ConstructionYear: optionalYear(r, colYear),
			PropertyType:     textOr(r, colType, models.NotSpecified),
		})
		samples = append(samples, Sample{
			PricePerSqm: rentSqm,
			Area:        area,
			TotalPrice:  monthly,
			Latitude:    lat,
			Longitude:   lng,
			Rooms:       rooms,
			City:        city,
		})
		points = append(points, models.ChartPoint{
			PricePerSqm: rentSqm,
			Area:        area,
			TotalPrice:  monthly,
			Rooms:       rooms,
			DaysListed:  days,
		})
	}
	return listings, samples, points
}

// Clean drops the rows missing any of the required columns and reports how
// many were dropped. Cleaning a cleaned table drops nothing.
func Clean(t *sheet.Table, required ...string) (*sheet.Table, int) {
	return t.DropMissing(required...)
}
