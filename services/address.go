package services

import (
	"strings"

	"housing-dashboard/models"
)

// FallbackLatitude and FallbackLongitude point at Copenhagen city centre.
const (
	FallbackLatitude  = 55.6761
	FallbackLongitude = 12.5683
)

type knownAddress struct {
	street   string
	lat, lng float64
}

// knownAddresses is matched in order; the first substring hit wins.
var knownAddresses = []knownAddress{
	{"Griffenfeldsgade 4B", 55.68953163, 12.55545457},
	{"Rådmandsgade 34", 55.69978992, 12.55090717},
	{"Rådmandsgade 36", 55.69987455, 12.55113735},
	{"Venøgade 24", 55.71248034, 12.5644871},
	{"Søllerødgade 17", 55.69416374, 12.54659476},
	{"Søllerødgade 15", 55.69406004, 12.5467663},
	{"Holger Danskes Vej 32", 55.68712091, 12.53648974},
	{"Blegdamsvej 30A", 55.69266957, 12.56496568},
	{"Bjelkes Allé 20", 55.69307928, 12.54489447},
	{"Bjelkes Allé 16", 55.69284985, 12.54508262},
	{"Alhambravej 15", 55.67535625, 12.54444716},
	{"Alhambravej 13", 55.67517812, 12.54429515},
}

// ExtractCity returns the city part of "<address>, <postal code> <city>".
// It returns models.UnknownCity when the text has no comma or the last
// segment has no words after the postal code.
func ExtractCity(tradeText string) string {
	parts := strings.Split(tradeText, ",")
	if len(parts) < 2 {
		return models.UnknownCity
	}
	words := strings.Fields(parts[len(parts)-1])
	if len(words) <= 1 {
		return models.UnknownCity
	}
	return strings.Join(words[1:], " ")
}

// Geocode approximates coordinates from a small table of known addresses.
// Unknown addresses get the city-centre fallback.
func Geocode(address string) (lat, lng float64) {
	lower := strings.ToLower(address)
	for _, k := range knownAddresses {
		if strings.Contains(lower, strings.ToLower(k.street)) {
			return k.lat, k.lng
		}
	}
	return FallbackLatitude, FallbackLongitude
}

// EstimateRooms guesses a room count from the floor area in m².
func EstimateRooms(area float64) int {
	switch {
	case area < 50:
		return 2
	case area < 75:
		return 3
	case area < 100:
		return 4
	case area < 125:
		return 5
	default:
		return 6
	}
}
