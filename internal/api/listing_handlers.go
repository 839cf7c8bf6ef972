package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/dto"
	"github.com/linkmarket/link-server/internal/http/response"
	"github.com/linkmarket/link-server/internal/service"
)

func (s *Server) registerListingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings",
		Summary:     "Listing feed",
		Description: "Returns listings nearest to the caller first, newest first within a proximity tier",
		Tags:        []string{"Listings"},
	}, s.handleFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListing",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}",
		Summary:     "Get listing",
		Description: "Returns one listing and counts a view for the caller",
		Tags:        []string{"Listings"},
	}, s.handleGetListing)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteListing",
		Method:      http.MethodDelete,
		Path:        "/api/v1/listings/{id}",
		Summary:     "Delete listing",
		Tags:        []string{"Listings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteListing)
}

// FeedInput holds the feed filters.
type FeedInput struct {
	Seller       string `query:"seller" doc:"Only listings owned by this user"`
	Country      string `query:"country" doc:"Exact country"`
	City         string `query:"city" doc:"Exact city"`
	Neighborhood string `query:"neighborhood" doc:"Exact neighborhood"`
	Limit        int    `query:"limit" default:"50" doc:"Page size, at most 100"`
	Offset       int    `query:"offset" default:"0" doc:"Items to skip"`
}

// ListingsOutput wraps a listing page for Huma.
type ListingsOutput struct {
	Body []dto.Listing
}

// ListingOutput wraps one listing for Huma.
type ListingOutput struct {
	Body *dto.Listing
}

func (s *Server) handleFeed(ctx context.Context, input *FeedInput) (*ListingsOutput, error) {
	items, err := s.services.Feed.Feed(ctx, service.FeedParams{
		SellerID:     input.Seller,
		Country:      input.Country,
		City:         input.City,
		Neighborhood: input.Neighborhood,
		Limit:        input.Limit,
		Offset:       input.Offset,
	}, optionalUserID(ctx))
	if err != nil {
		return nil, err
	}
	return &ListingsOutput{Body: items}, nil
}

func (s *Server) handleGetListing(ctx context.Context, input *IDInput) (*ListingOutput, error) {
	listing, err := s.services.Listing.Get(ctx, input.ID, optionalUserID(ctx), viewerKey(ctx))
	if err != nil {
		return nil, err
	}
	return &ListingOutput{Body: listing}, nil
}

func (s *Server) handleDeleteListing(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Listing.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "listing deleted"}}, nil
}

// handleCreateListing publishes a listing from a multipart form.
// POST /api/v1/listings
func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.log(ctx)
	userID := optionalUserID(ctx)
	if userID == "" {
		response.Unauthorized(w, "Authentication required", log)
		return
	}
	// Reject buyers before reading a large body.
	if userTypeFrom(ctx) == domain.UserTypeBuyer {
		response.Forbidden(w, "only sellers can publish listings", log)
		return
	}

	form, err := s.parseListingForm(w, r)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}
	defer form.cleanup()

	req, err := form.createRequest()
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	out, err := s.services.Listing.Create(ctx, userID, req, form.files)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}
	response.Created(w, out, log)
}

// handleUpdateListing applies a partial update from a multipart form.
// PUT /api/v1/listings/{id}
func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.log(ctx)
	userID := optionalUserID(ctx)
	if userID == "" {
		response.Unauthorized(w, "Authentication required", log)
		return
	}
	listingID := chi.URLParam(r, "id")

	form, err := s.parseListingForm(w, r)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}
	defer form.cleanup()

	req, err := form.updateRequest()
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	out, err := s.services.Listing.Update(ctx, userID, listingID, req, form.files)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}
	response.Success(w, out, log)
}
