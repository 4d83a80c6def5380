package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"housing-dashboard/models"
	"housing-dashboard/report"
)

func TestPrintSummary(t *testing.T) {
	doc := &report.Document{
		Meta: report.Meta{RunID: "abc", GeneratedAt: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)},
		Rental: &models.RentalResult{
			Stats: models.AggregateStats{
				Count:              12,
				MeanPricePerSqm:    1875,
				MeanTotalPrice:     14250,
				MedianTotalPrice:   13000,
				RoomCountHistogram: []models.RoomCount{{RoomCount: 2, Count: 7}, {RoomCount: 3, Count: 5}},
				CityHistogram:      []models.CityCount{{City: "København N", Count: 12}},
			},
			Dropped: 3,
			Notices: []string{"Dropped 3 rows with missing data"},
		},
		Ownership: &models.OwnershipResult{Stats: models.AggregateStats{Count: 4, MeanTotalPrice: 4250000}},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, doc)
	out := buf.String()

	assert.Contains(t, out, "Run       : abc")
	assert.Contains(t, out, "2026-05-06 07:08:09")
	assert.Contains(t, out, "12\033[0m (dropped 3)")
	assert.Contains(t, out, "1.875 kr.")
	assert.Contains(t, out, "median 13.000 kr.")
	assert.Contains(t, out, " 2×7 3×5")
	assert.Contains(t, out, "København N")
	assert.Contains(t, out, "• Dropped 3 rows with missing data")
	assert.Contains(t, out, "Ownership listings")
	assert.Contains(t, out, "4.250.000 kr.")
}

func TestPrintSummaryManyCities(t *testing.T) {
	var cities []models.CityCount
	for _, c := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		cities = append(cities, models.CityCount{City: c, Count: 1})
	}
	doc := &report.Document{Rental: &models.RentalResult{Stats: models.AggregateStats{CityHistogram: cities}}}

	var buf bytes.Buffer
	PrintSummary(&buf, doc)

	assert.Contains(t, buf.String(), "... 2 more cities")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Københ...", truncate("København Ø", 9))
}
