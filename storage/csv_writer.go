package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"housing-dashboard/models"
)

const (
	RentalCSV    = "rental_listings.csv"
	OwnershipCSV = "ownership_listings.csv"
)

var _ ListingExporter = (*CSVWriter)(nil)

// CSVWriter exports cleaned listings as CSV files inside one directory.
// It is safe for concurrent use.
type CSVWriter struct {
	mu  sync.Mutex
	dir string
}

// NewCSVWriter creates the output directory if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

// WriteRentals writes (or truncates) rental_listings.csv.
func (c *CSVWriter) WriteRentals(listings []models.RentalListing) error {
	header := []string{
		"address", "city", "latitude", "longitude", "area_sqm", "rent_per_sqm",
		"monthly_rent", "days_listed", "room_count", "construction_year", "property_type",
	}
	rows := make([][]string, len(listings))
	for i, l := range listings {
		rows[i] = []string{
			l.Address,
			l.City,
			formatFloat(l.Latitude),
			formatFloat(l.Longitude),
			strconv.Itoa(l.AreaSqm),
			strconv.Itoa(l.RentPerSqm),
			strconv.Itoa(l.MonthlyRent),
			strconv.Itoa(l.DaysListed),
			strconv.Itoa(l.RoomCount),
			formatYear(l.ConstructionYear),
			l.PropertyType,
		}
	}
	return c.write(RentalCSV, header, rows)
}

// WriteOwnership writes (or truncates) ownership_listings.csv.
func (c *CSVWriter) WriteOwnership(listings []models.OwnershipListing) error {
	header := []string{
		"trade_name", "city", "latitude", "longitude", "area_sqm", "price",
		"price_per_sqm", "room_count", "trade_date", "usage_type", "construction_year",
	}
	rows := make([][]string, len(listings))
	for i, l := range listings {
		rows[i] = []string{
			l.TradeName,
			l.City,
			formatFloat(l.Latitude),
			formatFloat(l.Longitude),
			strconv.Itoa(l.AreaSqm),
			strconv.Itoa(l.Price),
			strconv.Itoa(l.PricePerSqm),
			strconv.Itoa(l.RoomCount),
			l.TradeDate,
			l.UsageType,
			formatYear(l.ConstructionYear),
		}
	}
	return c.write(OwnershipCSV, header, rows)
}

func (c *CSVWriter) write(name string, header []string, rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("csv: write rows: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatYear(y *int) string {
	if y == nil {
		return ""
	}
	return strconv.Itoa(*y)
}
