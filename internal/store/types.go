package store

import (
	"strings"

	"github.com/linkmarket/link-server/internal/domain"
)

// Result caps.
const (
	DefaultPageLimit  = 50
	MaxPageLimit      = 100
	SearchLimit       = 100
	AutocompleteLimit = 20
)

// Page is an offset window.
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies the default limit and clamps both fields to sane ranges.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// FeedQuery selects the listing feed. Filters are exact-equality and skipped when blank.
type FeedQuery struct {
	SellerID string
	Location domain.Location
	// ViewerID drives is_interested. Empty for anonymous viewers.
	ViewerID string
	// ViewerLocation drives proximity ordering. Zero disables it.
	ViewerLocation domain.Location
	Page           Page
}

// ListingSearch selects listings by keyword and location substrings.
type ListingSearch struct {
	Keyword  string
	Location domain.Location
	ViewerID string
}

// SellerSearch selects sellers by keyword (against products_sold) and location substrings.
type SellerSearch struct {
	Keyword  string
	Location domain.Location
}

// IsEmpty reports whether no criterion is set.
func (q SellerSearch) IsEmpty() bool {
	return isBlank(q.Keyword) && isBlank(q.Location.Country) &&
		isBlank(q.Location.City) && isBlank(q.Location.Neighborhood)
}

// LocationField names the location component being completed.
type LocationField string

const (
	FieldCountry      LocationField = "country"
	FieldCity         LocationField = "city"
	FieldNeighborhood LocationField = "neighborhood"
)

// Parent returns the field that scopes f, or "" for countries.
func (f LocationField) Parent() LocationField {
	switch f {
	case FieldCity:
		return FieldCountry
	case FieldNeighborhood:
		return FieldCity
	default:
		return ""
	}
}

// Valid reports whether f is a known field.
func (f LocationField) Valid() bool {
	return f == FieldCountry || f == FieldCity || f == FieldNeighborhood
}

// AutocompleteQuery asks for location values starting with Prefix.
type AutocompleteQuery struct {
	Field  LocationField
	Prefix string
	// Scope is the parent value (country for cities, city for neighborhoods). Blank disables scoping.
	Scope string
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
