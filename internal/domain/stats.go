package domain

import "time"

// PeriodCounts counts entities created today, over the last 7 days and over the last 30 days.
type PeriodCounts struct {
	Today int `json:"today"`
	Week  int `json:"week"`
	Month int `json:"month"`
}

// DailyCount is the number of entities created on one UTC day (YYYY-MM-DD).
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TopListing ranks listings by views.
type TopListing struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Kind       Kind   `json:"kind"`
	SellerName string `json:"seller_name"`
	Views      int    `json:"views"`
}

// TopSeller ranks sellers by published listings.
type TopSeller struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Listings int    `json:"listings"`
	Views    int    `json:"views"`
}

// AdminStats is the marketplace dashboard.
type AdminStats struct {
	Users struct {
		Total   int `json:"total"`
		Sellers int `json:"sellers"`
		Buyers  int `json:"buyers"`
	} `json:"users"`
	Listings struct {
		Total         int `json:"total"`
		Products      int `json:"products"`
		Announcements int `json:"announcements"`
		Needs         int `json:"needs"`
	} `json:"listings"`
	Totals struct {
		Views     int `json:"views"`
		Interests int `json:"interests"`
	} `json:"totals"`
	RecentListings PeriodCounts `json:"recent_listings"`
	NewUsers       PeriodCounts `json:"new_users"`
	TopListings    []TopListing `json:"top_listings"`
	TopSellers     []TopSeller  `json:"top_sellers"`
	DailyUsers     []DailyCount `json:"daily_users"`
	DailyListings  []DailyCount `json:"daily_listings"`
}

// StatsWindowDays is the span of the daily series.
const StatsWindowDays = 14

// StatsWindows returns the starts of the today, week and month windows for now, in UTC.
func StatsWindows(now time.Time) (today, week, month time.Time) {
	now = now.UTC()
	today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today, now.AddDate(0, 0, -7), now.AddDate(0, 0, -30)
}

// DailySeriesStart is the first day of the daily series ending today.
func DailySeriesStart(now time.Time) time.Time {
	today, _, _ := StatsWindows(now)
	return today.AddDate(0, 0, -(StatsWindowDays - 1))
}

// FillDaily turns sparse per-day counts into a contiguous series of
// StatsWindowDays days ending today, oldest first.
func FillDaily(now time.Time, counts map[string]int) []DailyCount {
	start := DailySeriesStart(now)
	out := make([]DailyCount, StatsWindowDays)
	for i := range out {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		out[i] = DailyCount{Date: day, Count: counts[day]}
	}
	return out
}
