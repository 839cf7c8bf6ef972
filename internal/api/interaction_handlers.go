package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkmarket/link-server/internal/domain"
)

func (s *Server) registerInteractionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "registerView",
		Method:      http.MethodPost,
		Path:        "/api/v1/listings/{id}/view",
		Summary:     "Register a view",
		Description: "Counts one view per user, or per client address for anonymous callers",
		Tags:        []string{"Interactions"},
	}, s.handleRegisterView)

	huma.Register(s.api, huma.Operation{
		OperationID: "markInterest",
		Method:      http.MethodPost,
		Path:        "/api/v1/listings/{id}/interest",
		Summary:     "Mark interest",
		Description: "Records interest and returns the WhatsApp contact for the seller",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkInterest)

	huma.Register(s.api, huma.Operation{
		OperationID: "unmarkInterest",
		Method:      http.MethodDelete,
		Path:        "/api/v1/listings/{id}/interest",
		Summary:     "Remove interest",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnmarkInterest)

	huma.Register(s.api, huma.Operation{
		OperationID:   "repostListing",
		Method:        http.MethodPost,
		Path:          "/api/v1/listings/{id}/repost",
		Summary:       "Repost listing",
		Description:   "Republishes another seller's listing under the caller's name",
		Tags:          []string{"Interactions"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleRepost)
}

// ViewOutput wraps a view result for Huma.
type ViewOutput struct {
	Body domain.ViewResult
}

// InterestOutput wraps an interest result for Huma.
type InterestOutput struct {
	Body *domain.InterestResult
}

func (s *Server) handleRegisterView(ctx context.Context, input *IDInput) (*ViewOutput, error) {
	res, err := s.services.Interaction.RegisterView(ctx, input.ID, viewerKey(ctx))
	if err != nil {
		return nil, err
	}
	return &ViewOutput{Body: res}, nil
}

func (s *Server) handleMarkInterest(ctx context.Context, input *IDInput) (*InterestOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.services.Interaction.MarkInterest(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}
	return &InterestOutput{Body: res}, nil
}

func (s *Server) handleUnmarkInterest(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Interaction.UnmarkInterest(ctx, input.ID, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "interest removed"}}, nil
}

func (s *Server) handleRepost(ctx context.Context, input *IDInput) (*ListingOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	repost, err := s.services.Repost.Repost(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}
	return &ListingOutput{Body: repost}, nil
}

