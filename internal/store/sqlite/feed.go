package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
	"github.com/linkmarket/link-server/internal/store/query"
)

// enrichedSelect returns the SELECT list and FROM clause shared by every hydrated
// listing query. It binds viewerID first, so it must be the first builder call.
func enrichedSelect(b *query.Builder, viewerID string) string {
	return `SELECT ` + listingColumns + `,
		trim(u.first_name || ' ' || u.last_name) AS seller_name, u.account_type,
		(SELECT COUNT(*) FROM listing_views v WHERE v.listing_id = l.id) AS views_count,
		(SELECT COUNT(*) FROM listing_interests i WHERE i.listing_id = l.id) AS interested_count,
		(SELECT COUNT(*) FROM comments c WHERE c.listing_id = l.id) AS comments_count,
		` + b.Bind(`EXISTS (SELECT 1 FROM listing_interests i WHERE i.listing_id = l.id AND i.user_id = ?)`, viewerID)
}

const enrichedFrom = `
		FROM listings l
		JOIN users u ON u.id = l.seller_id`

// queryEnriched runs a hydrated listing query whose select list ends with score,
// then attaches media in one extra round trip.
func (s *Store) queryEnriched(ctx context.Context, sqlText string, args []any) ([]*domain.EnrichedListing, error) {
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.EnrichedListing{}
	ids := []string{}
	for rows.Next() {
		var (
			e        domain.EnrichedListing
			acctType string
		)
		dest, finish := listingDest(&e.Listing)
		dest = append(dest, &e.SellerName, &acctType,
			&e.ViewsCount, &e.InterestedCount, &e.CommentsCount, &e.IsInterested, &e.Similarity)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if err := finish(); err != nil {
			return nil, err
		}
		e.SellerAccountType = domain.AccountType(acctType)
		items = append(items, &e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	media, err := s.mediaFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range items {
		e.Media = media[e.ID]
	}
	return items, nil
}

// EnrichListing returns one hydrated listing as seen by viewerID (may be empty).
func (s *Store) EnrichListing(ctx context.Context, id, viewerID string) (*domain.EnrichedListing, error) {
	b := query.New(dialect)
	sel := enrichedSelect(b, viewerID)
	b.Where("l.id = ?", id)

	items, err := s.queryEnriched(ctx, sel+", 0 AS score"+enrichedFrom+b.Clause(), b.Args())
	if err != nil {
		return nil, fmt.Errorf("enrich listing: %w", err)
	}
	if len(items) == 0 {
		return nil, store.ErrNotFound.WithMessage("listing not found")
	}
	return items[0], nil
}

// Feed returns listings filtered by exact seller and location values, ordered by
// viewer proximity tier when a viewer location is given, newest first within a tier.
func (s *Store) Feed(ctx context.Context, q store.FeedQuery) ([]*domain.EnrichedListing, error) {
	page := q.Page.Normalize()

	b := query.New(dialect)
	sel := enrichedSelect(b, q.ViewerID)
	b.Eq("l.seller_id", q.SellerID).
		Eq("l.country", q.Location.Country).
		Eq("l.city", q.Location.City).
		Eq("l.neighborhood", q.Location.Neighborhood)
	where := b.Clause()

	order := "l.created_at DESC"
	v := q.ViewerLocation
	if tier := b.Tier("l", v.Country, v.City, v.Neighborhood); tier != "" {
		order = tier + ", " + order
	}
	limit := b.Bind("LIMIT ? OFFSET ?", page.Limit, page.Offset)

	sqlText := sel + ", 0 AS score" + enrichedFrom + where + " ORDER BY " + order + ", l.id " + limit
	items, err := s.queryEnriched(ctx, sqlText, b.Args())
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return items, nil
}

// SearchListings matches listings by keyword over title and description and by
// location substrings. With a keyword, the best similarity wins; otherwise newest first.
func (s *Store) SearchListings(ctx context.Context, q store.ListingSearch) ([]*domain.EnrichedListing, error) {
	cols := []string{"l.title", "l.description"}

	b := query.New(dialect)
	sel := enrichedSelect(b, q.ViewerID)
	score := b.Score(cols, q.Keyword)
	b.Fuzzy(cols, q.Keyword).
		Contains("l.country", q.Location.Country).
		Contains("l.city", q.Location.City).
		Contains("l.neighborhood", q.Location.Neighborhood)

	sqlText := fmt.Sprintf("%s, %s AS score%s%s ORDER BY score DESC, l.created_at DESC, l.id LIMIT %d",
		sel, score, enrichedFrom, b.Clause(), store.SearchLimit)
	items, err := s.queryEnriched(ctx, sqlText, b.Args())
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	return items, nil
}

// Autocomplete returns up to 20 distinct location values from users and
// listings whose normalized form starts with the normalized prefix.
func (s *Store) Autocomplete(ctx context.Context, q store.AutocompleteQuery) ([]string, error) {
	if !q.Field.Valid() {
		return nil, store.ErrInvalidInput.WithMessage("unknown location field")
	}
	col := string(q.Field)
	parent := "''"
	if p := q.Field.Parent(); p != "" {
		parent = string(p)
	}

	b := query.New(dialect)
	b.Where("loc.value <> ''").
		Where(query.Normalized("loc.value")+` LIKE ? ESCAPE '\'`, query.PrefixPattern(q.Prefix))
	if q.Field.Parent() != "" && q.Scope != "" {
		b.Where(query.Normalized("loc.parent")+" = "+query.Normalized("?"), q.Scope)
	}

	sqlText := fmt.Sprintf(`
		SELECT DISTINCT loc.value FROM (
			SELECT %[1]s AS value, %[2]s AS parent FROM users
			UNION
			SELECT %[1]s AS value, %[2]s AS parent FROM listings
		) AS loc%[3]s
		ORDER BY loc.value
		LIMIT %[4]d`, col, parent, b.Clause(), store.AutocompleteLimit)

	rows, err := s.db.QueryContext(ctx, sqlText, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("autocomplete %s: %w", col, err)
	}
	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
