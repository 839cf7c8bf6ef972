package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/linkmarket/link-server/internal/domain"
)

// AdminStats aggregates the dashboard figures as of now.
func (s *Store) AdminStats(ctx context.Context, now time.Time) (*domain.AdminStats, error) {
	var st domain.AdminStats
	today, week, month := domain.StatsWindows(now)
	t, w, m := formatTime(today), formatTime(week), formatTime(month)

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(user_type = 'seller'), 0),
			COALESCE(SUM(user_type = 'buyer'), 0),
			COALESCE(SUM(created_at >= ?), 0),
			COALESCE(SUM(created_at >= ?), 0),
			COALESCE(SUM(created_at >= ?), 0)
		FROM users`, t, w, m).
		Scan(&st.Users.Total, &st.Users.Sellers, &st.Users.Buyers,
			&st.NewUsers.Today, &st.NewUsers.Week, &st.NewUsers.Month)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(kind = 'product'), 0),
			COALESCE(SUM(kind = 'announcement'), 0),
			COALESCE(SUM(kind = 'need'), 0),
			COALESCE(SUM(created_at >= ?), 0),
			COALESCE(SUM(created_at >= ?), 0),
			COALESCE(SUM(created_at >= ?), 0)
		FROM listings`, t, w, m).
		Scan(&st.Listings.Total, &st.Listings.Products, &st.Listings.Announcements, &st.Listings.Needs,
			&st.RecentListings.Today, &st.RecentListings.Week, &st.RecentListings.Month)
	if err != nil {
		return nil, fmt.Errorf("listing stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM listing_views), (SELECT COUNT(*) FROM listing_interests)`).
		Scan(&st.Totals.Views, &st.Totals.Interests)
	if err != nil {
		return nil, fmt.Errorf("interaction totals: %w", err)
	}

	if st.TopListings, err = s.topListings(ctx); err != nil {
		return nil, err
	}
	if st.TopSellers, err = s.topSellers(ctx); err != nil {
		return nil, err
	}

	since := formatTime(domain.DailySeriesStart(now))
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

func (s *Store) topListings(ctx context.Context) ([]domain.TopListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.title, l.kind, trim(u.first_name || ' ' || u.last_name),
			(SELECT COUNT(*) FROM listing_views v WHERE v.listing_id = l.id) AS views
		FROM listings l
		JOIN users u ON u.id = l.seller_id
		ORDER BY views DESC, l.created_at DESC
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top listings: %w", err)
	}
	defer rows.Close()

	out := []domain.TopListing{}
	for rows.Next() {
		var (
			tl   domain.TopListing
			kind string
		)
		if err := rows.Scan(&tl.ID, &tl.Title, &kind, &tl.SellerName, &tl.Views); err != nil {
			return nil, err
		}
		tl.Kind = domain.Kind(kind)
		out = append(out, tl)
	}
	return out, rows.Err()
}

func (s *Store) topSellers(ctx context.Context) ([]domain.TopSeller, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, trim(u.first_name || ' ' || u.last_name),
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
	defer rows.Close()

	out := []domain.TopSeller{}
	for rows.Next() {
		var ts domain.TopSeller
		if err := rows.Scan(&ts.ID, &ts.Name, &ts.Listings, &ts.Views); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// dailyCounts groups rows of table created since the given timestamp by UTC day.
// table is one of the fixed names passed by AdminStats.
func (s *Store) dailyCounts(ctx context.Context, table, since string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, COUNT(*)
		FROM `+table+`
		WHERE created_at >= ?
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
