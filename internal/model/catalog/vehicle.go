package catalog

import "strings"

// Category is the pricing tier derived from vehicle body type.
type Category string

const (
	// CategorySmall covers hatches, sedans, coupés and compacts.
	CategorySmall Category = "P"
	// CategoryLarge covers SUVs, pickups and utility vehicles.
	CategoryLarge Category = "G"
)

// Category G keyword lists. A model string matching any keyword from any
// list prices as large; everything else defaults to small.
var (
	suvKeywords     = []string{"suv", "hr-v", "compass", "t-cross", "tracker", "creta", "duster", "renegade", "tucson"}
	pickupKeywords  = []string{"hilux", "ranger", "s10", "saveiro", "strada", "toro"}
	utilityKeywords = []string{"amarok", "l200", "fiorino", "ducato"}
)

// ClassifyVehicle derives the pricing category from a free-text model
// string. The match is a case-insensitive substring test; absence of any
// keyword is the small-category default, never an error.
func ClassifyVehicle(model string) Category {
	normalized := strings.ToLower(model)

	for _, bucket := range [][]string{suvKeywords, pickupKeywords, utilityKeywords} {
		for _, keyword := range bucket {
			if strings.Contains(normalized, keyword) {
				return CategoryLarge
			}
		}
	}

	return CategorySmall
}
