package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/dto"
	"github.com/linkmarket/link-server/internal/store"
)

// FeedService serves the location-prioritized listing feed.
type FeedService struct {
	store  store.Store
	logger *slog.Logger
}

// NewFeedService creates a new feed service.
func NewFeedService(store store.Store, logger *slog.Logger) *FeedService {
	return &FeedService{store: store, logger: logger}
}

// FeedParams are the feed filters. Blank filters are ignored.
type FeedParams struct {
	SellerID     string
	Country      string
	City         string
	Neighborhood string
	Limit        int
	Offset       int
}

// Feed returns listings ordered by proximity to the viewer, newest first within a tier.
// An anonymous or unknown viewer, or one without a country, gets plain recency order.
func (s *FeedService) Feed(ctx context.Context, params FeedParams, viewerID string) ([]dto.Listing, error) {
	q := store.FeedQuery{
		SellerID: strings.TrimSpace(params.SellerID),
		Location: domain.Location{
			Country:      strings.TrimSpace(params.Country),
			City:         strings.TrimSpace(params.City),
			Neighborhood: strings.TrimSpace(params.Neighborhood),
		},
		ViewerID: viewerID,
		Page:     store.Page{Limit: params.Limit, Offset: params.Offset}.Normalize(),
	}

	if viewerID != "" {
		viewer, err := s.store.GetUser(ctx, viewerID)
		switch {
		case err == nil:
			q.ViewerLocation = viewer.Location
		case errors.Is(err, store.ErrNotFound):
			// Tokens outlive deleted accounts; such a viewer is treated as anonymous.
			s.logger.Debug("feed viewer not found", "viewer_id", viewerID)
		default:
			return nil, mapStoreError(err)
		}
	}

	items, err := s.store.Feed(ctx, q)
	if err != nil {
		return nil, mapStoreError(err)
	}
	for _, item := range items {
		item.Tier = domain.ProximityTier(q.ViewerLocation, item.Location)
	}
	return dto.FromEnrichedList(items), nil
}
