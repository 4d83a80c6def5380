package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-dashboard/config"
	"housing-dashboard/models"
	"housing-dashboard/sheet"
	"housing-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

// stubRenderer records what it is asked to draw.
type stubRenderer struct {
	calls []models.ChartData
	err   error
}

func (s *stubRenderer) Render(data models.ChartData) (models.Charts, error) {
	s.calls = append(s.calls, data)
	if s.err != nil {
		return models.Charts{}, s.err
	}
	return models.Charts{Scatter: []byte("scatter"), Heatmap: []byte("heatmap"), Table: []byte("table")}, nil
}

func book(tables ...*sheet.Table) *sheet.Book {
	return sheet.NewBook("test.xlsx", tables...)
}

var rentalHeader = []string{
	"Adresse", "By", "Lat", "Lng", "Areal", "Leje/m2", "Årsleje", "Liggedage", "Antal værelser",
}

func rentalSheet(rows ...[]string) *sheet.Table {
	return sheet.FromRecords("Worksheet", append([][]string{rentalHeader}, rows...))
}

func newRentalPipeline(r ChartRenderer) *RentalPipeline {
	return NewRentalPipeline(config.DefaultColumns().Rental, r, newTestLogger())
}

func TestRentalRoomCountHistogram(t *testing.T) {
	src := book(rentalSheet(
		[]string{"Griffenfeldsgade 4B", "København N", "55.68", "12.55", "65", "150", "117000", "12", "2"},
		[]string{"Rådmandsgade 34", "København N", "55.69", "12.55", "60", "160", "115200", "30", "2"},
		[]string{"Venøgade 24", "København Ø", "55.71", "12.56", "85", "170", "173400", "7", "3"},
	))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, []models.RoomCount{
		{RoomCount: 2, Count: 2},
		{RoomCount: 3, Count: 1},
	}, res.Stats.RoomCountHistogram)
	assert.Equal(t, 3, res.Stats.Count)
	assert.Len(t, res.Listings, 3)
}

func TestRentalMonthlyRentTruncates(t *testing.T) {
	src := book(rentalSheet(
		[]string{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3"},
		[]string{"B 2", "X", "55.6", "12.5", "70", "119", "100000", "10", "3"},
	))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 10000, res.Listings[0].MonthlyRent)
	assert.Equal(t, 8333, res.Listings[1].MonthlyRent)
	assert.Equal(t, 9166, res.Stats.MeanTotalPrice)   // (10000 + 8333.33) / 2
	assert.Equal(t, 9166, res.Stats.MedianTotalPrice) // same two values
}

func TestRentalPrefersExplicitMonthlyRent(t *testing.T) {
	header := append(append([]string(nil), rentalHeader...), "Leje/måned")
	src := book(sheet.FromRecords("Worksheet", [][]string{
		header,
		{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3", "9950"},
		{"B 2", "X", "55.6", "12.5", "70", "119", "120000", "10", "3", ""},
	}))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 9950, res.Listings[0].MonthlyRent)
	assert.Equal(t, 10000, res.Listings[1].MonthlyRent)
}

func TestRentalReadsDanishThousandsGroups(t *testing.T) {
	src := book(rentalSheet(
		[]string{"A 1", "X", "55.689", "12.553", "80", "125", "100.000", "10", "3"},
		[]string{"B 2", "X", "55.6", "12.5", "70", "119", "100000", "10", "3"},
	))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	require.Len(t, res.Listings, 2)
	assert.Equal(t, 8333, res.Listings[0].MonthlyRent)
	assert.Equal(t, 55.689, res.Listings[0].Latitude)
	assert.Equal(t, 12.553, res.Listings[0].Longitude)
	assert.Equal(t, 8333, res.Stats.MeanTotalPrice)
	assert.Equal(t, 8333, res.Stats.MedianTotalPrice)
}

func TestRentalExplicitMonthlyRentWithThousandsGroup(t *testing.T) {
	header := append(append([]string(nil), rentalHeader...), "Leje/måned")
	src := book(sheet.FromRecords("Worksheet", [][]string{
		header,
		{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3", "9.950"},
	}))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 9950, res.Listings[0].MonthlyRent)
}

func TestRentalResolvesSynonyms(t *testing.T) {
	src := book(sheet.FromRecords("Worksheet", [][]string{
		{"Address", "City", "Latitude", "Longitude", "Area", "Leje pr. m2", "Yearly rent", "Days on market", "Rooms"},
		{"Main Street 1", "Aarhus C", "56.15", "10.2", "72.5", "140.9", "121800", "5", "3"},
	}))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	require.Len(t, res.Listings, 1)
	l := res.Listings[0]
	assert.Equal(t, "Main Street 1", l.Address)
	assert.Equal(t, "Aarhus C", l.City)
	assert.Equal(t, 72, l.AreaSqm)
	assert.Equal(t, 140, l.RentPerSqm)
	assert.Equal(t, 10150, l.MonthlyRent)
	assert.Equal(t, 56.15, l.Latitude)
}

func TestRentalMissingRequiredColumn(t *testing.T) {
	cols := []string{"Adresse", "By", "Lat", "Lng", "Areal", "Årsleje", "Liggedage", "Antal værelser"}
	src := book(sheet.FromRecords("Worksheet", [][]string{cols}))

	_, err := newRentalPipeline(nil).Process(src)

	var notFound *sheet.ColumnNotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, []string{"Leje/m2", "Leje pr. m2"}, notFound.Candidates)
	assert.Equal(t, cols, notFound.Available)
}

func TestRentalDropsIncompleteRows(t *testing.T) {
	src := book(rentalSheet(
		[]string{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3"},
		[]string{"B 2", "X", "", "12.5", "70", "119", "100000", "10", "3"},
		[]string{"C 3", "X", "55.6", "12.5", "N/A", "119", "100000", "10", "3"},
		[]string{"D 4", "", "55.6", "12.5", "70", "119", "100000", "10", "2"},
	))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 3, res.Dropped)
	assert.Equal(t, 1, res.Stats.Count)
	assert.Equal(t, "A 1", res.Listings[0].Address)
	assert.Contains(t, res.Notices, "Dropped 3 rows with missing data")
}

func TestRentalAllRowsDropped(t *testing.T) {
	src := book(rentalSheet(
		[]string{"A 1", "X", "", "12.5", "80", "125", "120000", "10", "3"},
	))

	_, err := newRentalPipeline(nil).Process(src)

	assert.ErrorIs(t, err, ErrNoListings)
}

func TestRentalOptionalColumnsAbsent(t *testing.T) {
	src := book(rentalSheet(
		[]string{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3"},
	))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Nil(t, res.Listings[0].ConstructionYear)
	assert.Equal(t, models.NotSpecified, res.Listings[0].PropertyType)
	assert.Contains(t, res.Notices, "Construction year not found in data")
	assert.Contains(t, res.Notices, `Property type not found, using "Not specified"`)
}

func TestRentalOptionalColumnsPresent(t *testing.T) {
	header := append(append([]string(nil), rentalHeader...), "Byggeår", "Boligtype")
	src := book(sheet.FromRecords("Worksheet", [][]string{
		header,
		{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3", "1932", "Lejlighed"},
		{"B 2", "X", "55.6", "12.5", "80", "125", "120000", "10", "3", "", ""},
	}))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	require.NotNil(t, res.Listings[0].ConstructionYear)
	assert.Equal(t, 1932, *res.Listings[0].ConstructionYear)
	assert.Equal(t, "Lejlighed", res.Listings[0].PropertyType)
	assert.Nil(t, res.Listings[1].ConstructionYear)
	assert.Equal(t, models.NotSpecified, res.Listings[1].PropertyType)
}

func TestRentalFallsBackToFirstSheet(t *testing.T) {
	data := sheet.FromRecords("Data", [][]string{
		rentalHeader,
		{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3"},
	})
	other := sheet.FromRecords("Notes", [][]string{{"Note"}, {"hello"}})

	res, err := newRentalPipeline(nil).Process(book(data, other))

	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Count)
}

func TestRentalPrefersNamedSheet(t *testing.T) {
	cover := sheet.FromRecords("Cover", [][]string{{"Title"}, {"Rental export"}})
	src := book(cover, rentalSheet(
		[]string{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3"},
	))

	res, err := newRentalPipeline(nil).Process(src)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Count)
}

func TestRentalChartsUseCleanedRows(t *testing.T) {
	r := &stubRenderer{}
	src := book(rentalSheet(
		[]string{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3"},
		[]string{"B 2", "X", "", "12.5", "70", "119", "100000", "10", "3"},
	))

	res, err := newRentalPipeline(r).Process(src)

	require.NoError(t, err)
	require.Len(t, r.calls, 1)
	assert.Equal(t, models.ModeRental, r.calls[0].Mode)
	assert.Len(t, r.calls[0].Points, res.Stats.Count)
	assert.Equal(t, models.ChartPoint{PricePerSqm: 125, Area: 80, TotalPrice: 10000, Rooms: 3, DaysListed: 10}, r.calls[0].Points[0])
	assert.Equal(t, []byte("scatter"), res.Charts.Scatter)
}

func TestRentalRendererErrorIsFatal(t *testing.T) {
	r := &stubRenderer{err: errors.New("boom")}
	src := book(rentalSheet(
		[]string{"A 1", "X", "55.6", "12.5", "80", "125", "120000", "10", "3"},
	))

	_, err := newRentalPipeline(r).Process(src)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCleanIsIdempotent(t *testing.T) {
	table := sheet.FromRecords("t", [][]string{
		{"a", "b"},
		{"1", "2"},
		{"", "2"},
		{"1", ""},
		{"3", "4"},
	})

	once, dropped := Clean(table, "a", "b")
	twice, droppedAgain := Clean(once, "a", "b")

	assert.Equal(t, 2, dropped)
	assert.Equal(t, 0, droppedAgain)
	assert.Equal(t, once.Rows(), twice.Rows())
}
