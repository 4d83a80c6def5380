package services

import (
	"sort"

	"housing-dashboard/models"
)

// Sample is the numeric view of one cleaned listing used for aggregation.
// TotalPrice is the monthly rent for rentals and the sale price for sales.
type Sample struct {
	PricePerSqm float64
	Area        float64
	TotalPrice  float64
	Latitude    float64
	Longitude   float64
	Rooms       int
	City        string
}

// Aggregate computes the summary statistics of a cleaned listing set.
// The result depends only on the multiset of samples, not their order.
func Aggregate(samples []Sample) models.AggregateStats {
	stats := models.AggregateStats{
		Count:              len(samples),
		RoomCountHistogram: []models.RoomCount{},
		CityHistogram:      []models.CityCount{},
	}
	if len(samples) == 0 {
		return stats
	}

	pick := func(f func(Sample) float64) []float64 {
		out := make([]float64, len(samples))
		for i, s := range samples {
			out[i] = f(s)
		}
		return out
	}

	totals := pick(func(s Sample) float64 { return s.TotalPrice })

	stats.MeanPricePerSqm = int(mean(pick(func(s Sample) float64 { return s.PricePerSqm })))
	stats.MeanArea = int(mean(pick(func(s Sample) float64 { return s.Area })))
	stats.MeanTotalPrice = int(mean(totals))
	stats.MedianTotalPrice = int(median(totals))
	stats.CenterLatitude = mean(pick(func(s Sample) float64 { return s.Latitude }))
	stats.CenterLongitude = mean(pick(func(s Sample) float64 { return s.Longitude }))

	rooms := make(map[int]int)
	cities := make(map[string]int)
	for _, s := range samples {
		rooms[s.Rooms]++
		cities[s.City]++
	}

	for r, n := range rooms {
		stats.RoomCountHistogram = append(stats.RoomCountHistogram, models.RoomCount{RoomCount: r, Count: n})
	}
	sort.Slice(stats.RoomCountHistogram, func(i, j int) bool {
		return stats.RoomCountHistogram[i].RoomCount < stats.RoomCountHistogram[j].RoomCount
	})

	for c, n := range cities {
		stats.CityHistogram = append(stats.CityHistogram, models.CityCount{City: c, Count: n})
	}
	// Equal counts are ordered by name so the result is independent of row order.
	sort.Slice(stats.CityHistogram, func(i, j int) bool {
		a, b := stats.CityHistogram[i], stats.CityHistogram[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.City < b.City
	})

	return stats
}

// mean sums in ascending order so float rounding does not depend on input order.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	var total float64
	for _, v := range sorted {
		total += v
	}
	return total / float64(len(sorted))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
