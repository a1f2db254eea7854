// Package ranking orders itinerary lists for the results screen.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	models "github.com/chrisdamba/skybooker/internal"
)

// ParseMode maps a query value to a sort mode. An empty value selects quality.
func ParseMode(s string) (models.SortMode, error) {
	switch mode := models.SortMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return models.SortQuality, nil
	case models.SortQuality, models.SortPrice, models.SortDuration:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrInvalidSortMode, s)
	}
}

// Score is the quality key: the price penalised by the number of stops on both legs.
func Score(it models.FlightItinerary) float64 {
	return it.TotalPrice * float64(it.TotalStops()+1)
}

// Sort returns a new slice ordered by mode. Equal keys keep their input order.
//
// Duration compares the textual representation, so "10h 5m" sorts before "2h 30m".
func Sort(items []models.FlightItinerary, mode models.SortMode) []models.FlightItinerary {
	sorted := make([]models.FlightItinerary, len(items))
	copy(sorted, items)

	var less func(i, j int) bool
	switch mode {
	case models.SortPrice:
		less = func(i, j int) bool { return sorted[i].TotalPrice < sorted[j].TotalPrice }
	case models.SortDuration:
		less = func(i, j int) bool { return sorted[i].TotalDuration < sorted[j].TotalDuration }
	default:
		less = func(i, j int) bool { return Score(sorted[i]) < Score(sorted[j]) }
	}

	sort.SliceStable(sorted, less)
	return sorted
}
