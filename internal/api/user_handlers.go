package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkmarket/link-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me",
		Summary:     "Update current user",
		Description: "Partially updates the caller's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCurrentUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me",
		Summary:     "Delete current user",
		Description: "Deletes the account with its listings, comments and interactions",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get public profile",
		Tags:        []string{"Users"},
	}, s.handleGetUser)
}

// UpdateUserInput wraps the profile update for Huma.
type UpdateUserInput struct {
	Body service.UpdateUserRequest
}

// IDInput carries a path ID.
type IDInput struct {
	ID string `path:"id" doc:"Resource ID"`
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func (s *Server) handleUpdateMe(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.services.User.Update(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleDeleteMe(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.User.Delete(ctx, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "account deleted"}}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *IDInput) (*UserOutput, error) {
	user, err := s.services.User.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}
