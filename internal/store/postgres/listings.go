package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
)

const listingColumns = `l.id, l.created_at, l.updated_at, l.seller_id, l.title, l.description,
	l.country, l.city, l.neighborhood, l.whatsapp_number,
	l.kind, l.price, l.is_urgent, l.category, l.original_listing_id`

// listingDest returns scan destinations for listingColumns and a finish func
// that copies the intermediate values into l.
func listingDest(l *domain.Listing) ([]any, func()) {
	var (
		kind       string
		price      *float64
		urgent     bool
		category   string
		originalID *string
	)
	dest := []any{
		&l.ID, &l.CreatedAt, &l.UpdatedAt, &l.SellerID, &l.Title, &l.Description,
		&l.Location.Country, &l.Location.City, &l.Location.Neighborhood, &l.WhatsAppNumber,
		&kind, &price, &urgent, &category, &originalID,
	}
	finish := func() {
		l.Details = domain.DetailColumns{Kind: domain.Kind(kind), Price: price, Urgent: urgent, Category: category}.Details()
		l.OriginalID = deref(originalID)
		l.CreatedAt, l.UpdatedAt = l.CreatedAt.UTC(), l.UpdatedAt.UTC()
	}
	return dest, finish
}

func insertListing(ctx context.Context, ex execer, l *domain.Listing) error {
	cols := domain.Flatten(l.Details)
	_, err := ex.Exec(ctx, `
		INSERT INTO listings (
			id, created_at, updated_at, seller_id, title, description,
			country, city, neighborhood, whatsapp_number,
			kind, price, is_urgent, category, original_listing_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		l.ID, l.CreatedAt, l.UpdatedAt, l.SellerID, l.Title, l.Description,
		l.Location.Country, l.Location.City, l.Location.Neighborhood, l.WhatsAppNumber,
		string(cols.Kind), cols.Price, cols.Urgent, cols.Category, nullIfEmpty(l.OriginalID),
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return insertMedia(ctx, ex, l.ID, l.Media)
}

func insertMedia(ctx context.Context, ex execer, listingID string, media []domain.Media) error {
	for _, m := range media {
		_, err := ex.Exec(ctx, `
			INSERT INTO listing_media (id, listing_id, url, media_order, media_type, blurhash)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, listingID, m.URL, m.Order, string(m.Type), m.BlurHash)
		if err != nil {
			return fmt.Errorf("insert media: %w", err)
		}
	}
	return nil
}

// CreateListing inserts a listing together with any media already attached to it.
func (s *Store) CreateListing(ctx context.Context, l *domain.Listing) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return insertListing(ctx, tx, l)
	})
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("listing already exists")
	}
	return err
}

// GetListing returns a listing with its ordered media.
func (s *Store) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	dest, finish := listingDest(&l)
	err := s.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = $1`, id).Scan(dest...)
	if err != nil {
		return nil, notFound(err, "listing")
	}
	finish()

	media, err := s.mediaFor(ctx, []string{l.ID})
	if err != nil {
		return nil, err
	}
	l.Media = media[l.ID]
	return &l, nil
}

// UpdateListing rewrites the mutable columns of a listing.
func (s *Store) UpdateListing(ctx context.Context, l *domain.Listing) error {
	cols := domain.Flatten(l.Details)
	tag, err := s.pool.Exec(ctx, `
		UPDATE listings SET
			updated_at = $1, title = $2, description = $3,
			country = $4, city = $5, neighborhood = $6, whatsapp_number = $7,
			kind = $8, price = $9, is_urgent = $10, category = $11
		WHERE id = $12`,
		l.UpdatedAt, l.Title, l.Description,
		l.Location.Country, l.Location.City, l.Location.Neighborhood, l.WhatsAppNumber,
		string(cols.Kind), cols.Price, cols.Urgent, cols.Category,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	return requireAffected(tag, "listing")
}

// DeleteListing removes a listing. Reposts of it survive with their original reference cleared.
func (s *Store) DeleteListing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return requireAffected(tag, "listing")
}

// AppendMedia adds media after the listing's current last position.
func (s *Store) AppendMedia(ctx context.Context, listingID string, media []domain.Media) ([]domain.Media, error) {
	if len(media) == 0 {
		return nil, nil
	}
	out := make([]domain.Media, len(media))
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Serialize concurrent appends to the same listing.
		if _, err := tx.Exec(ctx, `SELECT 1 FROM listings WHERE id = $1 FOR UPDATE`, listingID); err != nil {
			return err
		}
		var next int
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(media_order) + 1, 0) FROM listing_media WHERE listing_id = $1`,
			listingID).Scan(&next)
		if err != nil {
			return err
		}
		for i, m := range media {
			m.ListingID = listingID
			m.Order = next + i
			out[i] = m
		}
		return insertMedia(ctx, tx, listingID, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveMedia deletes the given media of a listing and returns how many rows went.
func (s *Store) RemoveMedia(ctx context.Context, listingID string, mediaIDs []string) (int, error) {
	if len(mediaIDs) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM listing_media WHERE listing_id = $1 AND id = ANY($2)`, listingID, mediaIDs)
	if err != nil {
		return 0, fmt.Errorf("remove media: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) mediaFor(ctx context.Context, listingIDs []string) (map[string][]domain.Media, error) {
	out := make(map[string][]domain.Media, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, listing_id, url, media_order, media_type, blurhash
		FROM listing_media
		WHERE listing_id = ANY($1)
		ORDER BY listing_id, media_order, id`, listingIDs)
	if err != nil {
		return nil, fmt.Errorf("load media: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m  domain.Media
			mt string
		)
		if err := rows.Scan(&m.ID, &m.ListingID, &m.URL, &m.Order, &mt, &m.BlurHash); err != nil {
			return nil, err
		}
		m.Type = domain.MediaType(mt)
		out[m.ListingID] = append(out[m.ListingID], m)
	}
	return out, rows.Err()
}
