package models

// NotSpecified is the placeholder for optional text fields the source lacks.
const NotSpecified = "Not specified"

// UnknownCity is returned when a city cannot be derived from a trade name.
const UnknownCity = "Unknown"

// RentalListing is one cleaned rental unit.
type RentalListing struct {
	Address          string  `json:"address"`
	City             string  `json:"city"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	AreaSqm          int     `json:"area_sqm"`
	RentPerSqm       int     `json:"rent_per_sqm"`
	MonthlyRent      int     `json:"monthly_rent"`
	DaysListed       int     `json:"days_listed"`
	RoomCount        int     `json:"room_count"`
	ConstructionYear *int    `json:"construction_year"`
	PropertyType     string  `json:"property_type"`
}

// OwnershipListing is one cleaned owner-occupied sale.
type OwnershipListing struct {
	TradeName        string  `json:"trade_name"`
	City             string  `json:"city"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	AreaSqm          int     `json:"area_sqm"`
	Price            int     `json:"price"`
	PricePerSqm      int     `json:"price_per_sqm"`
	RoomCount        int     `json:"room_count"`
	TradeDate        string  `json:"trade_date"`
	UsageType        string  `json:"usage_type"`
	ConstructionYear *int    `json:"construction_year"`
}

// RoomCount is one bucket of the room-count histogram.
type RoomCount struct {
	RoomCount int `json:"room_count"`
	Count     int `json:"count"`
}

// CityCount is one bucket of the city histogram.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// AggregateStats summarises a cleaned listing set. For rentals the total
// price is the monthly rent; for sales it is the sale price.
type AggregateStats struct {
	Count              int         `json:"count"`
	MeanPricePerSqm    int         `json:"mean_price_per_sqm"`
	MeanArea           int         `json:"mean_area"`
	MeanTotalPrice     int         `json:"mean_total_price"`
	MedianTotalPrice   int         `json:"median_total_price"`
	CenterLatitude     float64     `json:"center_latitude"`
	CenterLongitude    float64     `json:"center_longitude"`
	RoomCountHistogram []RoomCount `json:"room_count_histogram"`
	CityHistogram      []CityCount `json:"city_histogram"`
}

// Charts holds the three rendered PNG images for one dataset.
type Charts struct {
	Scatter []byte
	Heatmap []byte
	Table   []byte
}

// PipelineResult is everything one pipeline run produces.
type PipelineResult[L any] struct {
	Stats    AggregateStats
	Listings []L
	Charts   Charts
	// Notices are non-fatal messages such as dropped rows or defaulted columns.
	Notices []string
	Dropped int
}

type (
	RentalResult    = PipelineResult[RentalListing]
	OwnershipResult = PipelineResult[OwnershipListing]
)

// ChartMode selects labels and columns for the rendered charts.
type ChartMode string

const (
	ModeRental    ChartMode = "rental"
	ModeOwnership ChartMode = "ownership"
)

// ChartPoint is one cleaned listing as the chart renderer sees it.
// TotalPrice is the monthly rent for rentals and the sale price for sales.
// DaysListed is only set for rentals.
type ChartPoint struct {
	PricePerSqm float64
	Area        float64
	TotalPrice  float64
	Rooms       int
	DaysListed  float64
}

// ChartData is the input of one chart rendering pass.
type ChartData struct {
	Mode   ChartMode
	Points []ChartPoint
}
