package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
)

func (s *Store) listingExists(ctx context.Context, id string) error {
	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM listings WHERE id = $1`, id).Scan(&one)
	return notFound(err, "listing")
}

// RegisterView records one view per (listing, viewer key).
func (s *Store) RegisterView(ctx context.Context, listingID, viewerKey string) (domain.ViewResult, error) {
	if err := s.listingExists(ctx, listingID); err != nil {
		return domain.ViewResult{}, err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO listing_views (listing_id, viewer_key, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (listing_id, viewer_key) DO NOTHING`,
		listingID, viewerKey, time.Now().UTC())
	if err != nil {
		return domain.ViewResult{}, fmt.Errorf("insert view: %w", err)
	}

	counts, err := s.CountInteractions(ctx, listingID)
	if err != nil {
		return domain.ViewResult{}, err
	}
	return domain.ViewResult{IsNewView: tag.RowsAffected() > 0, ViewsCount: counts.Views}, nil
}

// CountInteractions recomputes the counters of a listing.
func (s *Store) CountInteractions(ctx context.Context, listingID string) (domain.Counts, error) {
	var c domain.Counts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM listing_views WHERE listing_id = $1),
			(SELECT COUNT(*) FROM listing_interests WHERE listing_id = $1),
			(SELECT COUNT(*) FROM comments WHERE listing_id = $1)`,
		listingID).Scan(&c.Views, &c.Interests, &c.Comments)
	return c, err
}

// AddInterest marks interest once per (listing, user).
func (s *Store) AddInterest(ctx context.Context, listingID, userID string) (bool, error) {
	if err := s.listingExists(ctx, listingID); err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO listing_interests (listing_id, user_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (listing_id, user_id) DO NOTHING`,
		listingID, userID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert interest: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveInterest deletes an interest mark if present.
func (s *Store) RemoveInterest(ctx context.Context, listingID, userID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM listing_interests WHERE listing_id = $1 AND user_id = $2`, listingID, userID)
	return err
}

// ContactTarget resolves who receives interest messages for a listing.
func (s *Store) ContactTarget(ctx context.Context, listingID string) (domain.ContactTarget, error) {
	var (
		t        domain.ContactTarget
		kind     string
		original *string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT l.id, l.title, l.kind,
			COALESCE(NULLIF(l.whatsapp_number, ''), u.whatsapp_number),
			COALESCE(NULLIF(o.whatsapp_number, ''), ou.whatsapp_number)
		FROM listings l
		JOIN users u ON u.id = l.seller_id
		LEFT JOIN listings o ON o.id = l.original_listing_id
		LEFT JOIN users ou ON ou.id = o.seller_id
		WHERE l.id = $1`, listingID).
		Scan(&t.ListingID, &t.Title, &kind, &t.WhatsAppNumber, &original)
	if err != nil {
		return domain.ContactTarget{}, notFound(err, "listing")
	}
	t.Kind = domain.Kind(kind)
	if n := deref(original); n != "" {
		t.WhatsAppNumber = n
		t.ViaOriginal = true
	}
	return t, nil
}

// CreateRepost inserts the repost listing, its media and the repost record atomically.
func (s *Store) CreateRepost(ctx context.Context, repost *domain.Listing) error {
	if repost.OriginalID == "" {
		return store.ErrInvalidInput.WithMessage("repost needs an original listing")
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertListing(ctx, tx, repost); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO listing_reposts (original_listing_id, user_id, repost_listing_id, created_at)
			VALUES ($1, $2, $3, $4)`,
			repost.OriginalID, repost.SellerID, repost.ID, repost.CreatedAt)
		return err
	})
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("listing already reposted")
	}
	if err != nil {
		return fmt.Errorf("create repost: %w", err)
	}
	return nil
}

// HasReposted reports whether userID already reposted originalID.
func (s *Store) HasReposted(ctx context.Context, originalID, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM listing_reposts WHERE original_listing_id = $1 AND user_id = $2)`,
		originalID, userID).Scan(&exists)
	return exists, err
}
