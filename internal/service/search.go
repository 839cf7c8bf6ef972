package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/dto"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/store"
)

// SearchService runs fuzzy listing and seller searches and location autocomplete.
type SearchService struct {
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{store: store, logger: logger}
}

// SearchParams are the shared search inputs.
type SearchParams struct {
	Keyword      string
	Country      string
	City         string
	Neighborhood string
}

func (p SearchParams) location() domain.Location {
	return domain.Location{
		Country:      strings.TrimSpace(p.Country),
		City:         strings.TrimSpace(p.City),
		Neighborhood: strings.TrimSpace(p.Neighborhood),
	}
}

// Listings matches the keyword against titles and descriptions.
// With no filters at all it returns the most recent listings.
func (s *SearchService) Listings(ctx context.Context, params SearchParams, viewerID string) ([]dto.Listing, error) {
	items, err := s.store.SearchListings(ctx, store.ListingSearch{
		Keyword:  strings.TrimSpace(params.Keyword),
		Location: params.location(),
		ViewerID: viewerID,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return dto.FromEnrichedList(items), nil
}

// Sellers matches the keyword against what sellers say they sell.
// At least one criterion is required.
func (s *SearchService) Sellers(ctx context.Context, params SearchParams) ([]domain.SellerSummary, error) {
	q := store.SellerSearch{Keyword: strings.TrimSpace(params.Keyword), Location: params.location()}
	if q.IsEmpty() {
		return nil, domainerrors.Validation("provide a keyword or a location")
	}

	sellers, err := s.store.SearchSellers(ctx, q)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if sellers == nil {
		sellers = []domain.SellerSummary{}
	}
	return sellers, nil
}

// Autocomplete suggests known values for a location field. scope narrows
// cities to a country and neighborhoods to a city.
func (s *SearchService) Autocomplete(ctx context.Context, field store.LocationField, prefix, scope string) ([]string, error) {
	if !field.Valid() {
		return nil, domainerrors.Validationf("unknown location field %q", field)
	}
	if field == store.FieldCountry {
		scope = ""
	}

	values, err := s.store.Autocomplete(ctx, store.AutocompleteQuery{
		Field:  field,
		Prefix: prefix,
		Scope:  strings.TrimSpace(scope),
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
