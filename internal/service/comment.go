package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/id"
	"github.com/linkmarket/link-server/internal/store"
)

// MaxCommentLength is the longest accepted comment, in characters.
const MaxCommentLength = 1000

// CommentService manages listing comments and the owner notifications they trigger.
type CommentService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(store store.Store, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, logger: logger}
}

// List returns a listing's comments, newest first.
func (s *CommentService) List(ctx context.Context, listingID string, page store.Page) ([]*domain.Comment, error) {
	if _, err := s.store.GetListing(ctx, listingID); err != nil {
		return nil, mapStoreError(err)
	}
	comments, err := s.store.ListComments(ctx, listingID, page.Normalize())
	if err != nil {
		return nil, mapStoreError(err)
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}

// Create posts a comment and notifies the listing owner.
func (s *CommentService) Create(ctx context.Context, listingID, authorID, content string) (*domain.Comment, error) {
	content, err := checkContent(content)
	if err != nil {
		return nil, err
	}

	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	author, err := s.store.GetUser(ctx, authorID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	comment := &domain.Comment{
		Record:     domain.Record{ID: id.MustGenerate(id.Comment)},
		ListingID:  listing.ID,
		AuthorID:   author.ID,
		AuthorName: author.DisplayName(),
		Content:    content,
	}
	comment.InitTimestamps()

	notification := &domain.Notification{
		ID:        id.MustGenerate(id.Notification),
		UserID:    listing.SellerID,
		Type:      domain.NotificationComment,
		Message:   fmt.Sprintf("%s a commenté votre produit", author.DisplayName()),
		RelatedID: listing.ID,
		CreatedAt: comment.CreatedAt,
	}

	if err := s.store.CreateComment(ctx, comment, notification); err != nil {
		return nil, mapStoreError(err)
	}
	return comment, nil
}

// Update rewrites a comment for its author.
func (s *CommentService) Update(ctx context.Context, commentID, userID, content string) (*domain.Comment, error) {
	content, err := checkContent(content)
	if err != nil {
		return nil, err
	}
	comment, err := s.authored(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	comment.Touch()
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, mapStoreError(err)
	}
	return comment, nil
}

// Delete removes a comment for its author.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	if _, err := s.authored(ctx, commentID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// Notifications returns the user's notifications, newest first.
func (s *CommentService) Notifications(ctx context.Context, userID string, page store.Page) ([]*domain.Notification, error) {
	items, err := s.store.ListNotifications(ctx, userID, page.Normalize())
	if err != nil {
		return nil, mapStoreError(err)
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return items, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *CommentService) MarkRead(ctx context.Context, notificationID, userID string) error {
	if err := s.store.MarkNotificationRead(ctx, notificationID, userID); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *CommentService) authored(ctx context.Context, commentID, userID string) (*domain.Comment, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if comment.AuthorID != userID {
		return nil, domainerrors.Forbidden("you can only change your own comments")
	}
	return comment, nil
}

func checkContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		return "", domainerrors.Validation("comment cannot be empty")
	case n > MaxCommentLength:
		return "", domainerrors.Validationf("comment cannot exceed %d characters", MaxCommentLength)
	}
	return content, nil
}
