package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-dashboard/config"
	"housing-dashboard/models"
	"housing-dashboard/sheet"
)

var salesHeader = []string{
	"Handels-ID", "Handelsnavn", "Handelsdato", "Pris", "Enhedsareal", "Pris pr. m2 (enhedsareal)",
}

func salesSheet(rows ...[]string) *sheet.Table {
	return sheet.FromRecords("Stamdata", append([][]string{salesHeader}, rows...))
}

func unitsSheet(name string, rows ...[]string) *sheet.Table {
	header := []string{"Handels-ID", "Antal værelser", "Latitude", "Longitude"}
	return sheet.FromRecords(name, append([][]string{header}, rows...))
}

func newOwnershipPipeline(r ChartRenderer) *OwnershipPipeline {
	return NewOwnershipPipeline(config.DefaultColumns().Ownership, r, newTestLogger())
}

func TestOwnershipMergesUnits(t *testing.T) {
	src := book(
		salesSheet(
			[]string{"1", "Griffenfeldsgade 4B, 2200 København N", "2024-01-15", "3500000", "70", "50000"},
			[]string{"2", "Venøgade 24, 2100 København Ø", "45306", "4250000.75", "85.5", "49707.6"},
		),
		unitsSheet("Units",
			[]string{"1", "3", "55.1", "12.1"},
			[]string{"2", "4", "55.2", "12.2"},
		),
	)

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	require.Len(t, res.Listings, 2)
	first, second := res.Listings[0], res.Listings[1]
	assert.Equal(t, 3, first.RoomCount)
	assert.Equal(t, 55.1, first.Latitude)
	assert.Equal(t, 12.1, first.Longitude)
	assert.Equal(t, "København N", first.City)
	assert.Equal(t, "2024-01-15", first.TradeDate)

	assert.Equal(t, 4, second.RoomCount)
	assert.Equal(t, 4250000, second.Price)
	assert.Equal(t, 85, second.AreaSqm)
	assert.Equal(t, 49707, second.PricePerSqm)
	assert.Equal(t, "2024-01-15", second.TradeDate)
	assert.Equal(t, "København Ø", second.City)
}

func TestOwnershipReadsDanishThousandsGroups(t *testing.T) {
	src := book(
		salesSheet(
			[]string{"1", "Venøgade 24, 2100 København Ø", "05-01-24", "4.250.000", "85", "49.707"},
		),
		unitsSheet("Units", []string{"1", "4", "55.689", "12.571"}),
	)

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	require.Len(t, res.Listings, 1)
	l := res.Listings[0]
	assert.Equal(t, 49707, l.PricePerSqm)
	assert.Equal(t, 4250000, l.Price)
	assert.Equal(t, 55.689, l.Latitude)
	assert.Equal(t, 12.571, l.Longitude)
	assert.Equal(t, "2024-01-05", l.TradeDate)
	assert.Equal(t, 49707, res.Stats.MeanPricePerSqm)
}

func TestOwnershipAcceptsDanishSheetNames(t *testing.T) {
	src := book(
		salesSheet([]string{"7", "Alhambravej 15, 1826 Frederiksberg C", "2023-06-01", "2000000", "50", "40000"}),
		unitsSheet("Enheder", []string{"7.0", "2", "55.3", "12.3"}),
	)

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Listings[0].RoomCount)
	assert.Equal(t, 55.3, res.Listings[0].Latitude)
}

func TestOwnershipUnmatchedUnitsRowGeocodedButDroppedWithoutRooms(t *testing.T) {
	src := book(
		salesSheet(
			[]string{"1", "Griffenfeldsgade 4B, 2200 København N", "2024-01-15", "3500000", "70", "50000"},
			[]string{"99", "Unknown Street 1, 2000 Frederiksberg", "2024-01-15", "3000000", "60", "50000"},
		),
		unitsSheet("Units", []string{"1", "3", "55.1", "12.1"}),
	)

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, res.Listings, 1)
	assert.Equal(t, "Griffenfeldsgade 4B, 2200 København N", res.Listings[0].TradeName)
}

func TestOwnershipUnitsFanOut(t *testing.T) {
	src := book(
		salesSheet([]string{"1", "Søllerødgade 17, 2200 København N", "2024-02-01", "5000000", "100", "50000"}),
		unitsSheet("Units",
			[]string{"1", "3", "55.1", "12.1"},
			[]string{"1", "4", "55.2", "12.2"},
		),
	)

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	require.Len(t, res.Listings, 2)
	assert.Equal(t, 3, res.Listings[0].RoomCount)
	assert.Equal(t, 4, res.Listings[1].RoomCount)
}

func TestOwnershipEstimatesRoomsFromArea(t *testing.T) {
	src := book(salesSheet(
		[]string{"1", "A 1, 2200 København N", "2024-01-15", "1000000", "49", "20408"},
		[]string{"2", "A 2, 2200 København N", "2024-01-15", "1000000", "50", "20000"},
		[]string{"3", "A 3, 2200 København N", "2024-01-15", "1000000", "125", "8000"},
	))

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Listings[0].RoomCount)
	assert.Equal(t, 3, res.Listings[1].RoomCount)
	assert.Equal(t, 6, res.Listings[2].RoomCount)
	assert.Contains(t, res.Notices, "Room count column not found, estimating from area")
}

func TestOwnershipRoomsFromPrimarySheet(t *testing.T) {
	src := book(sheet.FromRecords("Stamdata", [][]string{
		append(append([]string(nil), salesHeader...), "Antal rum"),
		{"1", "A 1, 2200 København N", "2024-01-15", "1000000", "49", "20408", "5"},
	}))

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 5, res.Listings[0].RoomCount)
}

func TestOwnershipGeocodesOnlyMissingCoordinates(t *testing.T) {
	src := book(sheet.FromRecords("Stamdata", [][]string{
		append(append([]string(nil), salesHeader...), "Lat", "Lng", "Værelser"),
		{"1", "Blegdamsvej 30A, 2200 København N", "2024-01-15", "1000000", "60", "16666", "55.5", "12.5", "2"},
		{"2", "Blegdamsvej 30A, 2200 København N", "2024-01-15", "1000000", "60", "16666", "", "", "2"},
		{"3", "Nowhere 5, 2200 København N", "2024-01-15", "1000000", "60", "16666", "", "", "2"},
	}))

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	require.Len(t, res.Listings, 3)
	assert.Equal(t, 55.5, res.Listings[0].Latitude)
	assert.Equal(t, 12.5, res.Listings[0].Longitude)
	assert.Equal(t, 55.69266957, res.Listings[1].Latitude)
	assert.Equal(t, 12.56496568, res.Listings[1].Longitude)
	assert.Equal(t, FallbackLatitude, res.Listings[2].Latitude)
	assert.Equal(t, FallbackLongitude, res.Listings[2].Longitude)
}

func TestOwnershipGeocodesWhenNoCoordinateColumns(t *testing.T) {
	src := book(salesSheet(
		[]string{"1", "Holger Danskes Vej 32, 2000 Frederiksberg", "2024-01-15", "1000000", "60", "16666"},
	))

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 55.68712091, res.Listings[0].Latitude)
	assert.Equal(t, 12.53648974, res.Listings[0].Longitude)
	assert.Equal(t, 55.68712091, res.Stats.CenterLatitude)
}

func TestOwnershipUnknownCityIsKept(t *testing.T) {
	src := book(salesSheet(
		[]string{"1", "NoCommaHere", "2024-01-15", "1000000", "60", "16666"},
	))

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, models.UnknownCity, res.Listings[0].City)
	assert.Equal(t, []models.CityCount{{City: models.UnknownCity, Count: 1}}, res.Stats.CityHistogram)
}

func TestOwnershipUnparseableDate(t *testing.T) {
	src := book(salesSheet(
		[]string{"1", "A 1, 2200 København N", "sometime", "1000000", "60", "16666"},
	))

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, "", res.Listings[0].TradeDate)
	assert.Contains(t, res.Notices, "1 trade dates could not be parsed")
}

func TestOwnershipUsageType(t *testing.T) {
	withUsage := book(sheet.FromRecords("Stamdata", [][]string{
		append(append([]string(nil), salesHeader...), "Ejendomstype"),
		{"1", "A 1, 2200 København N", "2024-01-15", "1000000", "60", "16666", "Ejerlejlighed"},
		{"2", "A 2, 2200 København N", "2024-01-15", "1000000", "60", "16666", ""},
	}))
	without := book(salesSheet(
		[]string{"1", "A 1, 2200 København N", "2024-01-15", "1000000", "60", "16666"},
	))

	res, err := newOwnershipPipeline(nil).Process(withUsage)
	require.NoError(t, err)
	assert.Equal(t, "Ejerlejlighed", res.Listings[0].UsageType)
	assert.Equal(t, models.NotSpecified, res.Listings[1].UsageType)

	res, err = newOwnershipPipeline(nil).Process(without)
	require.NoError(t, err)
	assert.Equal(t, models.NotSpecified, res.Listings[0].UsageType)
}

func TestOwnershipMergesPropertiesYear(t *testing.T) {
	props := sheet.FromRecords("Properties", [][]string{
		{"Handels-ID", "Opførelsesår"},
		{"1", "1899"},
	})
	src := book(
		salesSheet(
			[]string{"1", "A 1, 2200 København N", "2024-01-15", "1000000", "60", "16666"},
			[]string{"2", "A 2, 2200 København N", "2024-01-15", "1000000", "60", "16666"},
		),
		props,
	)

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	require.NotNil(t, res.Listings[0].ConstructionYear)
	assert.Equal(t, 1899, *res.Listings[0].ConstructionYear)
	assert.Nil(t, res.Listings[1].ConstructionYear)
}

func TestOwnershipWithoutPropertiesSheet(t *testing.T) {
	src := book(salesSheet(
		[]string{"1", "A 1, 2200 København N", "2024-01-15", "1000000", "60", "16666"},
	))

	res, err := newOwnershipPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Nil(t, res.Listings[0].ConstructionYear)
	assert.Contains(t, res.Notices, "Properties sheet not found, construction year not available")
}

func TestOwnershipMissingRequiredColumn(t *testing.T) {
	cols := []string{"Handels-ID", "Handelsnavn", "Handelsdato", "Enhedsareal", "Pris pr. m2"}
	src := book(sheet.FromRecords("Stamdata", [][]string{cols}))

	_, err := newOwnershipPipeline(nil).Process(src)

	var notFound *sheet.ColumnNotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, []string{"Pris", "Price", "Salgspris"}, notFound.Candidates)
	assert.Equal(t, cols, notFound.Available)
}

func TestOwnershipStatsUsePrice(t *testing.T) {
	r := &stubRenderer{}
	src := book(salesSheet(
		[]string{"1", "A 1, 2200 København N", "2024-01-15", "3000000", "60", "50000"},
		[]string{"2", "A 2, 2200 København N", "2024-01-15", "2000000", "40", "50000"},
		[]string{"3", "A 3, 2100 København Ø", "2024-01-15", "5000000", "100", "50000"},
	))

	res, err := newOwnershipPipeline(r).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 3333333, res.Stats.MeanTotalPrice)
	assert.Equal(t, 3000000, res.Stats.MedianTotalPrice)
	assert.Equal(t, 66, res.Stats.MeanArea)
	assert.Equal(t, 50000, res.Stats.MeanPricePerSqm)
	assert.Equal(t, []models.CityCount{
		{City: "København N", Count: 2},
		{City: "København Ø", Count: 1},
	}, res.Stats.CityHistogram)

	require.Len(t, r.calls, 1)
	assert.Equal(t, models.ModeOwnership, r.calls[0].Mode)
	assert.Len(t, r.calls[0].Points, 3)
}
