package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/dto"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/id"
	"github.com/linkmarket/link-server/internal/store"
)

// RepostService lets a user republish another seller's listing under their own name.
type RepostService struct {
	store  store.Store
	logger *slog.Logger
}

// NewRepostService creates a new repost service.
func NewRepostService(store store.Store, logger *slog.Logger) *RepostService {
	return &RepostService{store: store, logger: logger}
}

// Repost copies the original behind listingID for userID. Reposting a repost
// copies its original. A user may repost a given original only once and never
// their own listing.
func (s *RepostService) Repost(ctx context.Context, listingID, userID string) (*dto.Listing, error) {
	target, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	original := target
	if target.IsRepost() {
		original, err = s.store.GetListing(ctx, target.OriginalID)
		if err != nil {
			return nil, mapStoreError(err)
		}
	}

	if target.SellerID == userID || original.SellerID == userID {
		return nil, domainerrors.Forbidden("you cannot repost your own listing")
	}

	already, err := s.store.HasReposted(ctx, original.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("check repost: %w", err)
	}
	if already {
		return nil, domainerrors.Conflict("listing already reposted")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	repostID, err := id.Generate(id.Listing)
	if err != nil {
		return nil, fmt.Errorf("generate listing ID: %w", err)
	}

	repost := &domain.Listing{
		Record:         domain.Record{ID: repostID},
		SellerID:       user.ID,
		Title:          original.Title,
		Description:    original.Description,
		Location:       user.Location.Merge(original.Location),
		WhatsAppNumber: user.WhatsAppNumber,
		Details:        original.Details,
		OriginalID:     original.ID,
		Media:          make([]domain.Media, 0, len(original.Media)),
	}
	repost.InitTimestamps()
	for _, m := range original.Media {
		repost.Media = append(repost.Media, domain.Media{
			ID:       id.MustGenerate(id.Media),
			URL:      m.URL,
			Order:    m.Order,
			Type:     m.Type,
			BlurHash: m.BlurHash,
		})
	}

	if err := s.store.CreateRepost(ctx, repost); err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.Info("listing reposted", "original_id", original.ID, "repost_id", repost.ID, "user_id", userID)

	e, err := s.store.EnrichListing(ctx, repost.ID, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	out := dto.FromEnriched(e)
	return &out, nil
}
