package services

import (
	"fmt"
	"time"

	"housing-dashboard/config"
	"housing-dashboard/models"
	"housing-dashboard/sheet"
	"housing-dashboard/utils"
)

var ownershipRequired = []string{
	colTradeName, colCity, colLatitude, colLongitude, colArea,
	colPrice, colPriceSqm, colRooms,
}

// OwnershipPipeline turns a sales workbook, with its optional Units and
// Properties sheets, into cleaned listings and stats.
type OwnershipPipeline struct {
	cols     config.OwnershipColumns
	renderer ChartRenderer
	logger   *utils.Logger
}

// NewOwnershipPipeline creates an OwnershipPipeline. A nil renderer skips charts.
func NewOwnershipPipeline(cols config.OwnershipColumns, renderer ChartRenderer, logger *utils.Logger) *OwnershipPipeline {
	return &OwnershipPipeline{cols: cols, renderer: renderer, logger: logger}
}

// unitsMerge records which fields the Units sheet contributed.
type unitsMerge struct {
	rooms, latitude, longitude, usage bool
}

// Process runs the full ownership pipeline over src.
func (p *OwnershipPipeline) Process(src Source) (*models.OwnershipResult, error) {
	n := &notices{prefix: "[ownership]", logger: p.logger}

	primary, err := src.First()
	if err != nil {
		return nil, fmt.Errorf("ownership: load %s: %w", src.Name(), err)
	}
	p.logger.Info("[ownership] Sheets in %s: %v", src.Name(), src.SheetNames())

	t, merged := p.mergeUnits(src, primary, n)

	required, err := resolveFields(t, []field{
		{colPrice, p.cols.Price},
		{colArea, p.cols.Area},
		{colPriceSqm, p.cols.PricePerSqm},
		{colTradeName, p.cols.TradeName},
		{colTradeDate, p.cols.TradeDate},
	})
	if err != nil {
		return nil, fmt.Errorf("ownership: %w", err)
	}

	t, hasYear := p.mergeProperties(src, t, n)

	standard := p.standardise(t, required, merged, hasYear, n)

	cleaned, dropped := Clean(standard, ownershipRequired...)
	if dropped > 0 {
		n.warn("Dropped %d rows with missing data", dropped)
	}
	if cleaned.Len() == 0 {
		return nil, fmt.Errorf("ownership: %w", ErrNoListings)
	}

	listings, samples, points := convertSales(cleaned)

	charts, err := render(p.renderer, models.ChartData{Mode: models.ModeOwnership, Points: points})
	if err != nil {
		return nil, fmt.Errorf("ownership: %w", err)
	}

	p.logger.Info("[ownership] Cleaned %d → %d listings (dropped %d)", standard.Len(), cleaned.Len(), dropped)
	return &models.OwnershipResult{
		Stats:    Aggregate(samples),
		Listings: listings,
		Charts:   charts,
		Notices:  n.list,
		Dropped:  dropped,
	}, nil
}

// mergeUnits left-joins room count, coordinates and usage from the Units
// sheet when both sheets carry the trade identifier.
func (p *OwnershipPipeline) mergeUnits(src Source, primary *sheet.Table, n *notices) (*sheet.Table, unitsMerge) {
	var merged unitsMerge

	units, ok := src.FindSheet(p.cols.UnitsSheets...)
	if !ok {
		return primary, merged
	}
	leftKey, okLeft := sheet.Lookup(primary, p.cols.TradeID...)
	rightKey, okRight := sheet.Lookup(units, p.cols.TradeID...)
	if !okLeft || !okRight {
		n.warn("Could not merge sheet %q: trade identifier missing", units.Name())
		return primary, merged
	}

	spec := sheet.JoinSpec{LeftKey: leftKey, RightKey: rightKey}
	pull := func(candidates []string, target string) bool {
		col, ok := sheet.Lookup(units, candidates...)
		if ok {
			spec.Fields = append(spec.Fields, sheet.JoinField{Source: col, Target: target})
		}
		return ok
	}
	merged.rooms = pull(p.cols.UnitsRooms, rawRooms)
	merged.latitude = pull(p.cols.UnitsLatitude, rawLatitude)
	merged.longitude = pull(p.cols.UnitsLongitude, rawLongitude)
	merged.usage = pull(p.cols.UnitsUsage, rawUsage)

	out := primary.LeftJoin(units, spec)
	n.info("Merged sheet %q on %q (%d → %d rows, %d fields)",
		units.Name(), leftKey, primary.Len(), out.Len(), len(spec.Fields))
	return out, merged
}

// mergeProperties left-joins the construction year from the Properties sheet.
func (p *OwnershipPipeline) mergeProperties(src Source, t *sheet.Table, n *notices) (*sheet.Table, bool) {
	props, ok := src.FindSheet(p.cols.PropertiesSheets...)
	if !ok {
		n.warn("Properties sheet not found, construction year not available")
		return t, false
	}
	leftKey, okLeft := sheet.Lookup(t, p.cols.TradeID...)
	rightKey, okRight := sheet.Lookup(props, p.cols.TradeID...)
	yearCol, okYear := sheet.Lookup(props, p.cols.ConstructionYear...)
	if !okLeft || !okRight || !okYear {
		n.warn("Construction year not found in sheet %q", props.Name())
		return t, false
	}

	out := t.LeftJoin(props, sheet.JoinSpec{
		LeftKey:  leftKey,
		RightKey: rightKey,
		Fields:   []sheet.JoinField{{Source: yearCol, Target: rawYear}},
	})
	n.info("Construction year taken from sheet %q", props.Name())
	return out, true
}

// standardise projects the merged sheet onto the canonical ownership columns
// and fills room count, coordinates, city, trade date and usage.
func (p *OwnershipPipeline) standardise(t *sheet.Table, required []sheet.Mapping, merged unitsMerge, hasYear bool, n *notices) *sheet.Table {
	mappings := append([]sheet.Mapping(nil), required...)

	roomsSrc, estimate := p.roomsSource(t, merged, n)
	latSrc := p.coordinateSource(t, merged.latitude, rawLatitude, p.cols.Latitude)
	lngSrc := p.coordinateSource(t, merged.longitude, rawLongitude, p.cols.Longitude)
	usageSrc := p.usageSource(t, merged, n)
	yearSrc := ""
	if hasYear {
		yearSrc = rawYear
	}

	mappings = append(mappings,
		sheet.Mapping{Target: colRooms, Source: roomsSrc},
		sheet.Mapping{Target: colLatitude, Source: latSrc},
		sheet.Mapping{Target: colLongitude, Source: lngSrc},
		sheet.Mapping{Target: colUsage, Source: usageSrc},
		sheet.Mapping{Target: colYear, Source: yearSrc},
	)

	out := numeric(t.Project(mappings), sheet.ParseAmount,
		colPrice, colArea, colPriceSqm, colRooms)
	out = numeric(out, sheet.ParseNumber, colLatitude, colLongitude)

	if estimate {
		out = out.WithColumn(colRooms, func(r sheet.Row) (string, bool) {
			area, ok := r.Float(colArea)
			if !ok {
				return "", false
			}
			return sheet.FormatInt(EstimateRooms(area)), true
		})
	}

	out = p.fillCoordinates(out, n)

	out = out.WithColumn(colCity, func(r sheet.Row) (string, bool) {
		name, _ := r.Value(colTradeName)
		return ExtractCity(name), true
	})

	bad := 0
	out = out.WithColumn(colTradeDate, func(r sheet.Row) (string, bool) {
		raw, ok := r.Value(colTradeDate)
		if !ok {
			return "", false
		}
		d, ok := sheet.ParseDate(raw)
		if !ok {
			bad++
			return "", false
		}
		return d.Format(time.DateOnly), true
	})
	if bad > 0 {
		n.warn("%d trade dates could not be parsed", bad)
	}

	return out.FillMissing(colUsage, func(sheet.Row) (string, bool) { return models.NotSpecified, true })
}

func (p *OwnershipPipeline) roomsSource(t *sheet.Table, merged unitsMerge, n *notices) (string, bool) {
	if merged.rooms {
		return rawRooms, false
	}
	if col, ok := sheet.Lookup(t, p.cols.Rooms...); ok {
		return col, false
	}
	n.warn("Room count column not found, estimating from area")
	return "", true
}

func (p *OwnershipPipeline) coordinateSource(t *sheet.Table, fromUnits bool, mergedCol string, candidates []string) string {
	if fromUnits {
		return mergedCol
	}
	col, _ := sheet.Lookup(t, candidates...)
	return col
}

func (p *OwnershipPipeline) usageSource(t *sheet.Table, merged unitsMerge, n *notices) string {
	if merged.usage {
		return rawUsage
	}
	if col, ok := sheet.Lookup(t, p.cols.UsageType...); ok {
		n.info("Usage type taken from column %q", col)
		return col
	}
	n.warn("Usage type not found, using %q", models.NotSpecified)
	return ""
}

// fillCoordinates geocodes the trade name of rows lacking coordinates.
// Coordinates already present are kept.
func (p *OwnershipPipeline) fillCoordinates(t *sheet.Table, n *notices) *sheet.Table {
	holes := t.MissingCount(colLatitude)
	if lng := t.MissingCount(colLongitude); lng > holes {
		holes = lng
	}
	if holes == 0 {
		n.info("Coordinates already present for all rows")
		return t
	}

	geocoded := func(pick func(lat, lng float64) float64) sheet.CellFunc {
		return func(r sheet.Row) (string, bool) {
			name, ok := r.Value(colTradeName)
			if !ok {
				return "", false
			}
			return sheet.FormatNumber(pick(Geocode(name))), true
		}
	}

	n.info("Geocoding %d of %d rows from the trade name", holes, t.Len())
	return t.
		FillMissing(colLatitude, geocoded(func(lat, _ float64) float64 { return lat })).
		FillMissing(colLongitude, geocoded(func(_, lng float64) float64 { return lng }))
}

func convertSales(t *sheet.Table) ([]models.OwnershipListing, []Sample, []models.ChartPoint) {
	listings := make([]models.OwnershipListing, 0, t.Len())
	samples := make([]Sample, 0, t.Len())
	points := make([]models.ChartPoint, 0, t.Len())

	for _, r := range t.Rows() {
		lat, _ := r.Float(colLatitude)
		lng, _ := r.Float(colLongitude)
		area, _ := r.Float(colArea)
		price, _ := r.Float(colPrice)
		priceSqm, _ := r.Float(colPriceSqm)
		name, _ := r.Value(colTradeName)
		city, _ := r.Value(colCity)
		date, _ := r.Value(colTradeDate)
		rooms := truncated(r, colRooms)

		listings = append(listings, models.OwnershipListing{
			TradeName:        name,
			City:             city,
			Latitude:         lat,
			Longitude:        lng,
			AreaSqm:          int(area),
			Price:            int(price),
			PricePerSqm:      int(priceSqm),
			RoomCount:        rooms,
			TradeDate:        date,
			UsageType:        textOr(r, colUsage, models.NotSpecified),
			ConstructionYear: optionalYear(r, colYear),
		})
		samples = append(samples, Sample{
			PricePerSqm: priceSqm,
			Area:        area,
			TotalPrice:  price,
			Latitude:    lat,
			Longitude:   lng,
			Rooms:       rooms,
			City:        city,
		})
		points = append(points, models.ChartPoint{
			PricePerSqm: priceSqm,
			Area:        area,
			TotalPrice:  price,
			Rooms:       rooms,
		})
	}
	return listings, samples, points
}
