package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Columns lists, per logical field, the accepted spreadsheet column names in
// priority order. Sheet names are configured the same way.
type Columns struct {
	Rental    RentalColumns    `mapstructure:"rental"`
	Ownership OwnershipColumns `mapstructure:"ownership"`
}

// RentalColumns configures the rental workbook.
type RentalColumns struct {
	Sheets []string `mapstructure:"sheets"`

	Address    []string `mapstructure:"address"`
	City       []string `mapstructure:"city"`
	Latitude   []string `mapstructure:"latitude"`
	Longitude  []string `mapstructure:"longitude"`
	Area       []string `mapstructure:"area"`
	RentPerSqm []string `mapstructure:"rent_per_sqm"`
	YearlyRent []string `mapstructure:"yearly_rent"`
	DaysListed []string `mapstructure:"days_listed"`
	Rooms      []string `mapstructure:"rooms"`

	MonthlyRent      []string `mapstructure:"monthly_rent"`
	ConstructionYear []string `mapstructure:"construction_year"`
	PropertyType     []string `mapstructure:"property_type"`
}

// OwnershipColumns configures the ownership workbook and its optional
// Units and Properties sheets.
type OwnershipColumns struct {
	UnitsSheets      []string `mapstructure:"units_sheets"`
	PropertiesSheets []string `mapstructure:"properties_sheets"`
	TradeID          []string `mapstructure:"trade_id"`

	UnitsRooms     []string `mapstructure:"units_rooms"`
	UnitsLatitude  []string `mapstructure:"units_latitude"`
	UnitsLongitude []string `mapstructure:"units_longitude"`
	UnitsUsage     []string `mapstructure:"units_usage"`

	Price       []string `mapstructure:"price"`
	Area        []string `mapstructure:"area"`
	PricePerSqm []string `mapstructure:"price_per_sqm"`
	TradeName   []string `mapstructure:"trade_name"`
	TradeDate   []string `mapstructure:"trade_date"`

	Rooms            []string `mapstructure:"rooms"`
	Latitude         []string `mapstructure:"latitude"`
	Longitude        []string `mapstructure:"longitude"`
	UsageType        []string `mapstructure:"usage_type"`
	ConstructionYear []string `mapstructure:"construction_year"`
}

// DefaultColumns returns the names used by the Danish housing exports this
// tool was built for, with English alternatives.
func DefaultColumns() Columns {
	return Columns{
		Rental: RentalColumns{
			Sheets: []string{"Worksheet"},

			Address:    []string{"Adresse", "Address"},
			City:       []string{"By", "City", "Postnr."},
			Latitude:   []string{"Lat", "Latitude"},
			Longitude:  []string{"Lng", "Lon", "Longitude"},
			Area:       []string{"Areal", "Area"},
			RentPerSqm: []string{"Leje/m2", "Leje pr. m2"},
			YearlyRent: []string{"Årsleje", "Arsleje", "Yearly rent"},
			DaysListed: []string{"Liggedage", "Days on market"},
			Rooms:      []string{"Antal værelser", "Antal Værelser", "Værelser", "Rooms"},

			MonthlyRent:      []string{"Leje/måned", "Monthly rent"},
			ConstructionYear: []string{"Opførelsesår", "Opfoerelsesaar", "Byggeår", "Year built"},
			PropertyType:     []string{"Boligtype", "Type", "Property type"},
		},
		Ownership: OwnershipColumns{
			UnitsSheets:      []string{"Units", "Enheder"},
			PropertiesSheets: []string{"Properties", "Ejendomme"},
			TradeID:          []string{"Handels-ID", "Trade ID"},

			UnitsRooms:     []string{"Antal værelser", "Antal Værelser", "Værelser", "Rooms"},
			UnitsLatitude:  []string{"Latitude", "Lat", "latitude"},
			UnitsLongitude: []string{"Longitude", "Lng", "Lon", "longitude"},
			UnitsUsage:     []string{"Enhedens anvendelse", "Anvendelse", "Usage"},

			Price:       []string{"Pris", "Price", "Salgspris"},
			Area:        []string{"Enhedsareal", "Areal", "Area"},
			PricePerSqm: []string{"Pris pr. m2 (enhedsareal)", "Pris pr. m2", "Pris/m2"},
			TradeName:   []string{"Handelsnavn", "Adresse", "Address"},
			TradeDate:   []string{"Handelsdato", "Dato", "Date"},

			Rooms:            []string{"Antal Værelser", "Antal værelser", "Værelser", "Rooms", "Antal rum"},
			Latitude:         []string{"lat", "Lat", "Latitude", "latitude"},
			Longitude:        []string{"lng", "Lng", "Lon", "Longitude", "longitude"},
			UsageType:        []string{"Anvendelse", "Ejendomstype", "Type", "Enhedens anvendelse"},
			ConstructionYear: []string{"Opførelsesår", "Opfoerelsesaar", "Byggeår", "Year built"},
		},
	}
}

// LoadColumns overlays the file at path (YAML, JSON or TOML) on the defaults.
// An empty path returns the defaults.
func LoadColumns(path string) (Columns, error) {
	cols := DefaultColumns()
	if path == "" {
		return cols, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Columns{}, fmt.Errorf("failed to read columns file: %w", err)
	}
	if err := v.Unmarshal(&cols); err != nil {
		return Columns{}, fmt.Errorf("failed to parse columns file: %w", err)
	}
	if err := cols.Validate(); err != nil {
		return Columns{}, fmt.Errorf("columns file %s: %w", path, err)
	}
	return cols, nil
}

// Validate checks that every required field has at least one accepted name.
func (c Columns) Validate() error {
	required := map[string][]string{
		"rental.address":          c.Rental.Address,
		"rental.city":             c.Rental.City,
		"rental.latitude":         c.Rental.Latitude,
		"rental.longitude":        c.Rental.Longitude,
		"rental.area":             c.Rental.Area,
		"rental.rent_per_sqm":     c.Rental.RentPerSqm,
		"rental.yearly_rent":      c.Rental.YearlyRent,
		"rental.days_listed":      c.Rental.DaysListed,
		"rental.rooms":            c.Rental.Rooms,
		"ownership.price":         c.Ownership.Price,
		"ownership.area":          c.Ownership.Area,
		"ownership.price_per_sqm": c.Ownership.PricePerSqm,
		"ownership.trade_name":    c.Ownership.TradeName,
		"ownership.trade_date":    c.Ownership.TradeDate,
	}
	for key, names := range required {
		if len(names) == 0 {
			return fmt.Errorf("%s must list at least one column name", key)
		}
	}
	return nil
}
