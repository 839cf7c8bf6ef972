package domain

import "strings"

// Location is the free-text country/city/neighborhood triple carried by users and listings.
type Location struct {
	Country      string `json:"country"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
}

// HasCountry reports whether the location can be used to rank a feed.
func (l Location) HasCountry() bool {
	return strings.TrimSpace(l.Country) != ""
}

// Merge returns l with every blank component filled from fallback.
func (l Location) Merge(fallback Location) Location {
	if strings.TrimSpace(l.Country) == "" {
		l.Country = fallback.Country
	}
	if strings.TrimSpace(l.City) == "" {
		l.City = fallback.City
	}
	if strings.TrimSpace(l.Neighborhood) == "" {
		l.Neighborhood = fallback.Neighborhood
	}
	return l
}

// Proximity tiers, nearest first. TierNone means the viewer has no usable location.
const (
	TierNone         = 0
	TierNeighborhood = 1
	TierCity         = 2
	TierCountry      = 3
	TierElsewhere    = 4
)

// ProximityTier buckets a listing location relative to the viewer. Comparison is
// exact, and a condition that would need an empty viewer component never matches.
// The store's ORDER BY CASE expression mirrors this function.
func ProximityTier(viewer, listing Location) int {
	if !viewer.HasCountry() {
		return TierNone
	}
	country := listing.Country == viewer.Country
	city := country && viewer.City != "" && listing.City == viewer.City

	switch {
	case city && viewer.Neighborhood != "" && listing.Neighborhood == viewer.Neighborhood:
		return TierNeighborhood
	case city:
		return TierCity
	case country:
		return TierCountry
	default:
		return TierElsewhere
	}
}
