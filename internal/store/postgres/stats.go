package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/linkmarket/link-server/internal/domain"
)

// AdminStats aggregates the dashboard figures as of now.
func (s *Store) AdminStats(ctx context.Context, now time.Time) (*domain.AdminStats, error) {
	var st domain.AdminStats
	today, week, month := domain.StatsWindows(now)

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE user_type = 'seller'),
			COUNT(*) FILTER (WHERE user_type = 'buyer'),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= $3)
		FROM users`, today, week, month).
		Scan(&st.Users.Total, &st.Users.Sellers, &st.Users.Buyers,
			&st.NewUsers.Today, &st.NewUsers.Week, &st.NewUsers.Month)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE kind = 'product'),
			COUNT(*) FILTER (WHERE kind = 'announcement'),
			COUNT(*) FILTER (WHERE kind = 'need'),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= $3)
		FROM listings`, today, week, month).
		Scan(&st.Listings.Total, &st.Listings.Products, &st.Listings.Announcements, &st.Listings.Needs,
			&st.RecentListings.Today, &st.RecentListings.Week, &st.RecentListings.Month)
	if err != nil {
		return nil, fmt.Errorf("listing stats: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM listing_views), (SELECT COUNT(*) FROM listing_interests)`).
		Scan(&st.Totals.Views, &st.Totals.Interests)
	if err != nil {
		return nil, fmt.Errorf("interaction totals: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.title, l.kind, btrim(u.first_name || ' ' || u.last_name),
			(SELECT COUNT(*) FROM listing_views v WHERE v.listing_id = l.id) AS views
		FROM listings l
		JOIN users u ON u.id = l.seller_id
		ORDER BY views DESC, l.created_at DESC
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top listings: %w", err)
	}
	st.TopListings, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TopListing, error) {
		var (
			tl   domain.TopListing
			kind string
		)
		err := row.Scan(&tl.ID, &tl.Title, &kind, &tl.SellerName, &tl.Views)
		tl.Kind = domain.Kind(kind)
		return tl, err
	})
	if err != nil {
		return nil, fmt.Errorf("top listings: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT u.id, btrim(u.first_name || ' ' || u.last_name),
			(SELECT COUNT(*) FROM listings l WHERE l.seller_id = u.id) AS listings,
			(SELECT COUNT(*) FROM listing_views v JOIN listings l ON l.id = v.listing_id
				WHERE l.seller_id = u.id) AS views
		FROM users u
		WHERE EXISTS (SELECT 1 FROM listings l WHERE l.seller_id = u.id)
		ORDER BY listings DESC, views DESC, u.id
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	st.TopSellers, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TopSeller, error) {
		var ts domain.TopSeller
		err := row.Scan(&ts.ID, &ts.Name, &ts.Listings, &ts.Views)
		return ts, err
	})
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}

	since := domain.DailySeriesStart(now)
	users, err := s.dailyCounts(ctx, "users", since)
	if err != nil {
		return nil, err
	}
	listings, err := s.dailyCounts(ctx, "listings", since)
	if err != nil {
		return nil, err
	}
	st.DailyUsers = domain.FillDaily(now, users)
	st.DailyListings = domain.FillDaily(now, listings)

	return &st, nil
}

// dailyCounts groups rows of table created since the given time by UTC day.
func (s *Store) dailyCounts(ctx context.Context, table string, since time.Time) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM `+table+`
		WHERE created_at >= $1
		GROUP BY day`, since)
	if err != nil {
		return nil, fmt.Errorf("daily %s: %w", table, err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			day   string
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		out[day] = count
	}
	return out, rows.Err()
}
