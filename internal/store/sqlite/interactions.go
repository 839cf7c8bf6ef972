package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
)

func (s *Store) listingExists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM listings WHERE id = ?`, id).Scan(&one)
	return notFound(err, "listing")
}

// RegisterView records one view per (listing, viewer key). Repeat calls are
// no-ops that still report the current count.
func (s *Store) RegisterView(ctx context.Context, listingID, viewerKey string) (domain.ViewResult, error) {
	if err := s.listingExists(ctx, listingID); err != nil {
		return domain.ViewResult{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO listing_views (listing_id, viewer_key, created_at) VALUES (?, ?, ?)
		ON CONFLICT (listing_id, viewer_key) DO NOTHING`,
		listingID, viewerKey, formatTime(time.Now()))
	if err != nil {
		return domain.ViewResult{}, fmt.Errorf("insert view: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ViewResult{}, err
	}

	counts, err := s.CountInteractions(ctx, listingID)
	if err != nil {
		return domain.ViewResult{}, err
	}
	return domain.ViewResult{IsNewView: n > 0, ViewsCount: counts.Views}, nil
}

// CountInteractions recomputes the counters of a listing from the interaction tables.
func (s *Store) CountInteractions(ctx context.Context, listingID string) (domain.Counts, error) {
	var c domain.Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM listing_views WHERE listing_id = ?),
			(SELECT COUNT(*) FROM listing_interests WHERE listing_id = ?),
			(SELECT COUNT(*) FROM comments WHERE listing_id = ?)`,
		listingID, listingID, listingID).Scan(&c.Views, &c.Interests, &c.Comments)
	return c, err
}

// AddInterest marks interest once per (listing, user). It reports whether a row was added.
func (s *Store) AddInterest(ctx context.Context, listingID, userID string) (bool, error) {
	if err := s.listingExists(ctx, listingID); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO listing_interests (listing_id, user_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (listing_id, user_id) DO NOTHING`,
		listingID, userID, formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("insert interest: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RemoveInterest deletes an interest mark. Removing a missing mark is not an error.
func (s *Store) RemoveInterest(ctx context.Context, listingID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM listing_interests WHERE listing_id = ? AND user_id = ?`, listingID, userID)
	return err
}

// ContactTarget resolves who receives interest messages for a listing: the
// original's number for a repost whose original still exists, the listing's
// own number otherwise. Blank listing numbers fall back to the owner's.
func (s *Store) ContactTarget(ctx context.Context, listingID string) (domain.ContactTarget, error) {
	var (
		t        domain.ContactTarget
		kind     string
		original sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT l.id, l.title, l.kind,
			COALESCE(NULLIF(l.whatsapp_number, ''), u.whatsapp_number),
			COALESCE(NULLIF(o.whatsapp_number, ''), ou.whatsapp_number)
		FROM listings l
		JOIN users u ON u.id = l.seller_id
		LEFT JOIN listings o ON o.id = l.original_listing_id
		LEFT JOIN users ou ON ou.id = o.seller_id
		WHERE l.id = ?`, listingID).
		Scan(&t.ListingID, &t.Title, &kind, &t.WhatsAppNumber, &original)
	if err != nil {
		return domain.ContactTarget{}, notFound(err, "listing")
	}
	t.Kind = domain.Kind(kind)
	if original.Valid && original.String != "" {
		t.WhatsAppNumber = original.String
		t.ViaOriginal = true
	}
	return t, nil
}

// CreateRepost inserts the repost listing, its copied media and the repost
// record in one transaction. A second repost of the same original by the same
// user fails with store.ErrAlreadyExists.
func (s *Store) CreateRepost(ctx context.Context, repost *domain.Listing) error {
	if repost.OriginalID == "" {
		return store.ErrInvalidInput.WithMessage("repost needs an original listing")
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertListing(ctx, tx, repost); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO listing_reposts (original_listing_id, user_id, repost_listing_id, created_at)
			VALUES (?, ?, ?, ?)`,
			repost.OriginalID, repost.SellerID, repost.ID, formatTime(repost.CreatedAt))
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
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM listing_reposts WHERE original_listing_id = ? AND user_id = ?)`,
		originalID, userID).Scan(&exists)
	return exists, err
}
