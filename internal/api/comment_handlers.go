package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}/comments",
		Summary:     "List comments",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/listings/{id}/comments",
		Summary:       "Comment on a listing",
		Description:   "Posts a comment and notifies the listing owner",
		Tags:          []string{"Comments"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateComment",
		Method:      http.MethodPut,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Edit comment",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete comment",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listNotifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List notifications",
		Description: "Newest first, unread before read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "markNotificationRead",
		Method:      http.MethodPut,
		Path:        "/api/v1/notifications/{id}/read",
		Summary:     "Mark notification read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkNotificationRead)
}

// PageInput holds offset pagination parameters.
type PageInput struct {
	Limit  int `query:"limit" default:"50" doc:"Page size, at most 100"`
	Offset int `query:"offset" default:"0" doc:"Items to skip"`
}

func (p PageInput) page() store.Page {
	return store.Page{Limit: p.Limit, Offset: p.Offset}
}

// ListCommentsInput selects a page of a listing's comments.
type ListCommentsInput struct {
	ID string `path:"id" doc:"Listing ID"`
	PageInput
}

// CommentRequest is the body of a comment create or edit.
type CommentRequest struct {
	Content string `json:"content" doc:"Comment text, 1 to 1000 characters"`
}

// CommentInput wraps a comment body with its path ID.
type CommentInput struct {
	ID   string `path:"id"`
	Body CommentRequest
}

// CommentOutput wraps one comment for Huma.
type CommentOutput struct {
	Body *domain.Comment
}

// CommentsOutput wraps a comment page for Huma.
type CommentsOutput struct {
	Body []*domain.Comment
}

// NotificationsOutput wraps a notification page for Huma.
type NotificationsOutput struct {
	Body []*domain.Notification
}

func (s *Server) handleListComments(ctx context.Context, input *ListCommentsInput) (*CommentsOutput, error) {
	comments, err := s.services.Comment.List(ctx, input.ID, input.page())
	if err != nil {
		return nil, err
	}
	return &CommentsOutput{Body: comments}, nil
}

func (s *Server) handleCreateComment(ctx context.Context, input *CommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	comment, err := s.services.Comment.Create(ctx, input.ID, userID, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleUpdateComment(ctx context.Context, input *CommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	comment, err := s.services.Comment.Update(ctx, input.ID, userID, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Comment.Delete(ctx, input.ID, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "comment deleted"}}, nil
}

func (s *Server) handleListNotifications(ctx context.Context, input *PageInput) (*NotificationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.services.Comment.Notifications(ctx, userID, input.page())
	if err != nil {
		return nil, err
	}
	return &NotificationsOutput{Body: items}, nil
}

func (s *Server) handleMarkNotificationRead(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Comment.MarkRead(ctx, input.ID, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "notification marked read"}}, nil
}
