package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Griffenfeldsgade 4B, 2200 København N", "København N"},
		{"Bjelkes Allé 20, 1. th, 2200 København N", "København N"},
		{"Alhambravej 15, 1850 Frederiksberg C", "Frederiksberg C"},
		{"Venøgade 24,2100 Østerbro", "Østerbro"},
		{"", "Unknown"},
		{"SingleTokenOnly", "Unknown"},
		{"Somewhere 1, 2200", "Unknown"},
		{"Somewhere 1, ", "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractCity(tt.in), "ExtractCity(%q)", tt.in)
	}
}

func TestGeocodeKnownAddress(t *testing.T) {
	lat, lng := Geocode("Griffenfeldsgade 4B, 2200 København N")
	assert.Equal(t, 55.68953163, lat)
	assert.Equal(t, 12.55545457, lng)
}

func TestGeocodeIsCaseInsensitive(t *testing.T) {
	lat, lng := Geocode("BLEGDAMSVEJ 30a, 2200 københavn n")
	assert.Equal(t, 55.69266957, lat)
	assert.Equal(t, 12.56496568, lng)
}

func TestGeocodeFirstMatchWins(t *testing.T) {
	// "Rådmandsgade 34" is declared before "Rådmandsgade 36".
	lat, _ := Geocode("Rådmandsgade 34-36")
	assert.Equal(t, 55.69978992, lat)
}

func TestGeocodeFallback(t *testing.T) {
	lat, lng := Geocode("Unknown Street 99")
	assert.Equal(t, FallbackLatitude, lat)
	assert.Equal(t, FallbackLongitude, lng)
	assert.Equal(t, 55.6761, lat)
	assert.Equal(t, 12.5683, lng)
}

func TestEstimateRoomsBoundaries(t *testing.T) {
	tests := []struct {
		area float64
		want int
	}{
		{0, 2}, {49, 2}, {49.9, 2},
		{50, 3}, {74, 3},
		{75, 4}, {99, 4},
		{100, 5}, {124, 5},
		{125, 6}, {400, 6},
	}

	prev := 0
	for _, tt := range tests {
		got := EstimateRooms(tt.area)
		assert.Equal(t, tt.want, got, "EstimateRooms(%v)", tt.area)
		assert.GreaterOrEqual(t, got, prev, "EstimateRooms must not decrease")
		prev = got
	}
}
