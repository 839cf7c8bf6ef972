package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/service"
	"github.com/linkmarket/link-server/internal/store"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/listings",
		Summary:     "Search listings",
		Description: "Fuzzy keyword search over titles and descriptions with location filters",
		Tags:        []string{"Search"},
	}, s.handleSearchListings)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchSellers",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/sellers",
		Summary:     "Search sellers",
		Description: "Fuzzy keyword search over what sellers sell. A keyword or a location is required",
		Tags:        []string{"Search"},
	}, s.handleSearchSellers)

	huma.Register(s.api, huma.Operation{
		OperationID: "autocompleteLocation",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/autocomplete/{field}",
		Summary:     "Autocomplete a location",
		Description: "Suggests known countries, cities or neighborhoods starting with q",
		Tags:        []string{"Search"},
	}, s.handleAutocomplete)
}

// SearchInput holds the keyword and location filters.
type SearchInput struct {
	Keyword      string `query:"keyword" doc:"Words to match"`
	Country      string `query:"country" doc:"Country substring"`
	City         string `query:"city" doc:"City substring"`
	Neighborhood string `query:"neighborhood" doc:"Neighborhood substring"`
}

func (in *SearchInput) params() service.SearchParams {
	return service.SearchParams{
		Keyword:      in.Keyword,
		Country:      in.Country,
		City:         in.City,
		Neighborhood: in.Neighborhood,
	}
}

// SellersOutput wraps seller hits for Huma.
type SellersOutput struct {
	Body []domain.SellerSummary
}

// AutocompleteInput selects the field and prefix to complete.
type AutocompleteInput struct {
	Field   string `path:"field" enum:"countries,cities,neighborhoods" doc:"Location component"`
	Q       string `query:"q" doc:"Prefix to complete"`
	Country string `query:"country" doc:"Scope cities to this country"`
	City    string `query:"city" doc:"Scope neighborhoods to this city"`
}

// AutocompleteOutput wraps suggestions for Huma.
type AutocompleteOutput struct {
	Body []string
}

func (s *Server) handleSearchListings(ctx context.Context, input *SearchInput) (*ListingsOutput, error) {
	items, err := s.services.Search.Listings(ctx, input.params(), optionalUserID(ctx))
	if err != nil {
		return nil, err
	}
	return &ListingsOutput{Body: items}, nil
}

func (s *Server) handleSearchSellers(ctx context.Context, input *SearchInput) (*SellersOutput, error) {
	sellers, err := s.services.Search.Sellers(ctx, input.params())
	if err != nil {
		return nil, err
	}
	return &SellersOutput{Body: sellers}, nil
}

func (s *Server) handleAutocomplete(ctx context.Context, input *AutocompleteInput) (*AutocompleteOutput, error) {
	var (
		field store.LocationField
		scope string
	)
	switch input.Field {
	case "cities":
		field, scope = store.FieldCity, input.Country
	case "neighborhoods":
		field, scope = store.FieldNeighborhood, input.City
	default:
		field = store.FieldCountry
	}

	values, err := s.services.Search.Autocomplete(ctx, field, input.Q, scope)
	if err != nil {
		return nil, err
	}
	return &AutocompleteOutput{Body: values}, nil
}
