package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linkmarket/link-server/internal/contact"
	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
)

// InteractionService records views and interest marks.
type InteractionService struct {
	store        store.Store
	shareBaseURL string
	logger       *slog.Logger
}

// NewInteractionService creates a new interaction service.
func NewInteractionService(store store.Store, shareBaseURL string, logger *slog.Logger) *InteractionService {
	return &InteractionService{store: store, shareBaseURL: shareBaseURL, logger: logger}
}

// RegisterView counts one view per viewer key.
func (s *InteractionService) RegisterView(ctx context.Context, listingID, viewerKey string) (domain.ViewResult, error) {
	res, err := s.store.RegisterView(ctx, listingID, viewerKey)
	if err != nil {
		return domain.ViewResult{}, mapStoreError(err)
	}
	return res, nil
}

// MarkInterest records the user's view and interest, then returns fresh
// counters and the WhatsApp contact for the right seller.
func (s *InteractionService) MarkInterest(ctx context.Context, listingID, userID string) (*domain.InterestResult, error) {
	if _, err := s.store.RegisterView(ctx, listingID, domain.ViewerKey(userID, "")); err != nil {
		return nil, mapStoreError(err)
	}

	added, err := s.store.AddInterest(ctx, listingID, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	counts, err := s.store.CountInteractions(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}

	target, err := s.store.ContactTarget(ctx, listingID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if added {
		s.logger.Debug("interest recorded", "listing_id", listingID, "via_original", target.ViaOriginal)
	}

	return &domain.InterestResult{
		AlreadyInterested: !added,
		ViewsCount:        counts.Views,
		InterestedCount:   counts.Interests,
		Contact:           contact.Build(target, listingID, s.shareBaseURL),
	}, nil
}

// UnmarkInterest removes the interest mark. Removing a missing mark succeeds.
func (s *InteractionService) UnmarkInterest(ctx context.Context, listingID, userID string) error {
	if err := s.store.RemoveInterest(ctx, listingID, userID); err != nil {
		return mapStoreError(err)
	}
	return nil
}
