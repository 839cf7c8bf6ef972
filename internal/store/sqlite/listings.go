package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
)

// listingColumns is the ordered list of columns selected in listing queries.
// Must match the scan order in scanListingInto.
const listingColumns = `l.id, l.created_at, l.updated_at, l.seller_id, l.title, l.description,
	l.country, l.city, l.neighborhood, l.whatsapp_number,
	l.kind, l.price, l.is_urgent, l.category, l.original_listing_id`

// listingDest returns scan destinations for listingColumns and a finish func
// that copies the intermediate values into l.
func listingDest(l *domain.Listing) ([]any, func() error) {
	var (
		createdAt  string
		updatedAt  string
		kind       string
		price      sql.NullFloat64
		urgent     int
		category   string
		originalID sql.NullString
	)
	dest := []any{
		&l.ID, &createdAt, &updatedAt, &l.SellerID, &l.Title, &l.Description,
		&l.Location.Country, &l.Location.City, &l.Location.Neighborhood, &l.WhatsAppNumber,
		&kind, &price, &urgent, &category, &originalID,
	}
	finish := func() error {
		cols := domain.DetailColumns{Kind: domain.Kind(kind), Urgent: urgent != 0, Category: category}
		if price.Valid {
			p := price.Float64
			cols.Price = &p
		}
		l.Details = cols.Details()
		l.OriginalID = originalID.String

		var err error
		if l.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		l.UpdatedAt, err = parseTime(updatedAt)
		return err
	}
	return dest, finish
}

func scanListing(row scanner) (*domain.Listing, error) {
	var l domain.Listing
	dest, finish := listingDest(&l)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return &l, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertListing(ctx context.Context, ex execer, l *domain.Listing) error {
	cols := domain.Flatten(l.Details)
	var price sql.NullFloat64
	if cols.Price != nil {
		price = sql.NullFloat64{Float64: *cols.Price, Valid: true}
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO listings (
			id, created_at, updated_at, seller_id, title, description,
			country, city, neighborhood, whatsapp_number,
			kind, price, is_urgent, category, original_listing_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, formatTime(l.CreatedAt), formatTime(l.UpdatedAt), l.SellerID, l.Title, l.Description,
		l.Location.Country, l.Location.City, l.Location.Neighborhood, l.WhatsAppNumber,
		string(cols.Kind), price, boolToInt(cols.Urgent), cols.Category, nullString(l.OriginalID),
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return insertMedia(ctx, ex, l.ID, l.Media)
}

func insertMedia(ctx context.Context, ex execer, listingID string, media []domain.Media) error {
	for _, m := range media {
		_, err := ex.ExecContext(ctx, `
			INSERT INTO listing_media (id, listing_id, url, media_order, media_type, blurhash)
			VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, listingID, m.URL, m.Order, string(m.Type), m.BlurHash)
		if err != nil {
			return fmt.Errorf("insert media: %w", err)
		}
	}
	return nil
}

// CreateListing inserts a listing together with any media already attached to it.
func (s *Store) CreateListing(ctx context.Context, l *domain.Listing) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return insertListing(ctx, tx, l)
	})
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("listing already exists")
	}
	return err
}

// GetListing returns a listing with its ordered media.
func (s *Store) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = ?`, id)
	l, err := scanListing(row)
	if err != nil {
		return nil, notFound(err, "listing")
	}

	media, err := s.mediaFor(ctx, []string{l.ID})
	if err != nil {
		return nil, err
	}
	l.Media = media[l.ID]
	return l, nil
}

// UpdateListing rewrites the mutable columns of a listing. Media is managed
// separately through AppendMedia and RemoveMedia.
func (s *Store) UpdateListing(ctx context.Context, l *domain.Listing) error {
	cols := domain.Flatten(l.Details)
	var price sql.NullFloat64
	if cols.Price != nil {
		price = sql.NullFloat64{Float64: *cols.Price, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE listings SET
			updated_at = ?, title = ?, description = ?,
			country = ?, city = ?, neighborhood = ?, whatsapp_number = ?,
			kind = ?, price = ?, is_urgent = ?, category = ?
		WHERE id = ?`,
		formatTime(l.UpdatedAt), l.Title, l.Description,
		l.Location.Country, l.Location.City, l.Location.Neighborhood, l.WhatsAppNumber,
		string(cols.Kind), price, boolToInt(cols.Urgent), cols.Category,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	return requireAffected(res, "listing")
}

// DeleteListing removes a listing and, by cascade, its media and interactions.
// Reposts of it survive with their original reference cleared.
func (s *Store) DeleteListing(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return requireAffected(res, "listing")
}

// AppendMedia adds media after the listing's current last position and returns
// the rows as stored.
func (s *Store) AppendMedia(ctx context.Context, listingID string, media []domain.Media) ([]domain.Media, error) {
	if len(media) == 0 {
		return nil, nil
	}
	out := make([]domain.Media, len(media))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var next int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(media_order) + 1, 0) FROM listing_media WHERE listing_id = ?`,
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
// Ids that belong to another listing are ignored.
func (s *Store) RemoveMedia(ctx context.Context, listingID string, mediaIDs []string) (int, error) {
	if len(mediaIDs) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(mediaIDs)+1)
	args = append(args, listingID)
	for _, id := range mediaIDs {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM listing_media WHERE listing_id = ? AND id IN (`+placeholders(len(mediaIDs))+`)`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("remove media: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// mediaFor loads the ordered media of the given listings, keyed by listing id.
func (s *Store) mediaFor(ctx context.Context, listingIDs []string) (map[string][]domain.Media, error) {
	out := make(map[string][]domain.Media, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(listingIDs))
	for i, id := range listingIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, listing_id, url, media_order, media_type, blurhash
		FROM listing_media
		WHERE listing_id IN (`+placeholders(len(listingIDs))+`)
		ORDER BY listing_id, media_order, id`, args...)
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

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
