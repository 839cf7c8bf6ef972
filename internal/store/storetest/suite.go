// Package storetest is the behavioral suite every store.Store backend must pass.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/id"
	"github.com/linkmarket/link-server/internal/store"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Users", testUsers},
		{"DeleteUserCascades", testDeleteUserCascades},
		{"ListingRoundTrip", testListingRoundTrip},
		{"Media", testMedia},
		{"FeedTierOrder", testFeedTierOrder},
		{"FeedFilters", testFeedFilters},
		{"Views", testViews},
		{"Interests", testInterests},
		{"Reposts", testReposts},
		{"SearchListings", testSearchListings},
		{"SearchSellers", testSearchSellers},
		{"Autocomplete", testAutocomplete},
		{"ResultCaps", testResultCaps},
		{"Comments", testComments},
		{"AdminStats", testAdminStats},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

var base = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// at returns base shifted by the given number of minutes.
func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func mustUser(t *testing.T, s store.Store, phone string, typ domain.UserType, loc domain.Location, mutate ...func(*domain.User)) *domain.User {
	t.Helper()
	u := &domain.User{
		Record:         domain.Record{ID: id.MustGenerate(id.User), CreatedAt: base, UpdatedAt: base},
		FirstName:      "Awa",
		LastName:       "Mbarga",
		WhatsAppNumber: phone,
		PasswordHash:   "hash",
		UserType:       typ,
		AccountType:    domain.AccountTypeIndividual,
		Location:       loc,
	}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mustListing(t *testing.T, s store.Store, seller *domain.User, title string, loc domain.Location, created time.Time, mutate ...func(*domain.Listing)) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		Record:         domain.Record{ID: id.MustGenerate(id.Listing), CreatedAt: created, UpdatedAt: created},
		SellerID:       seller.ID,
		Title:          title,
		Location:       loc,
		WhatsAppNumber: seller.WhatsAppNumber,
		Details:        domain.ProductDetails{},
	}
	for _, m := range mutate {
		m(l)
	}
	require.NoError(t, s.CreateListing(context.Background(), l))
	return l
}

func listingIDs(items []*domain.EnrichedListing) []string {
	ids := make([]string, len(items))
	for i, e := range items {
		ids[i] = e.ID
	}
	return ids
}

var (
	bastos  = domain.Location{Country: "Cameroun", City: "Yaoundé", Neighborhood: "Bastos"}
	mvog    = domain.Location{Country: "Cameroun", City: "Yaoundé", Neighborhood: "Mvog-Ada"}
	akwa    = domain.Location{Country: "Cameroun", City: "Douala", Neighborhood: "Akwa"}
	marais  = domain.Location{Country: "France", City: "Paris", Neighborhood: "Marais"}
	nowhere = domain.Location{}
)

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "+237 699 00 00 01", domain.UserTypeSeller, bastos, func(u *domain.User) {
		u.Email = "awa@example.com"
		u.ProductsSold = "riz, huile"
	})

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.WhatsAppNumber, got.WhatsAppNumber)
	assert.Equal(t, bastos, got.Location)
	assert.Equal(t, "awa@example.com", got.Email)
	assert.True(t, got.CreatedAt.Equal(base))

	byPhone, err := s.GetUserByWhatsApp(ctx, "00237699000001")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byPhone.ID)

	dup := &domain.User{
		Record:         domain.Record{ID: id.MustGenerate(id.User), CreatedAt: base, UpdatedAt: base},
		FirstName:      "X",
		WhatsAppNumber: "237699000001",
		PasswordHash:   "hash",
		UserType:       domain.UserTypeBuyer,
		AccountType:    domain.AccountTypeIndividual,
	}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrAlreadyExists)

	got.City = "Douala"
	got.UpdatedAt = at(5)
	require.NoError(t, s.UpdateUser(ctx, got))
	again, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Douala", again.City)

	_, err = s.GetUser(ctx, "usr-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, "usr-missing"), store.ErrNotFound)
}

func testDeleteUserCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "1001", domain.UserTypeSeller, bastos)
	buyer := mustUser(t, s, "1002", domain.UserTypeBuyer, bastos)
	l := mustListing(t, s, seller, "Chaise", bastos, at(0))

	_, err := s.AddInterest(ctx, l.ID, buyer.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, seller.ID))

	_, err = s.GetListing(ctx, l.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testListingRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "2001", domain.UserTypeSeller, bastos)
	price := 25000.0

	l := mustListing(t, s, seller, "Téléphone Samsung", bastos, at(0), func(l *domain.Listing) {
		l.Description = "Très bon état"
		l.Details = domain.ProductDetails{Price: &price}
		l.Media = []domain.Media{
			{ID: id.MustGenerate(id.Media), URL: "https://cdn.example/a.jpg", Order: 0, Type: domain.MediaTypeImage, BlurHash: "LKO2"},
			{ID: id.MustGenerate(id.Media), URL: "https://cdn.example/b.mp4", Order: 1, Type: domain.MediaTypeVideo},
		}
	})
	need := mustListing(t, s, seller, "Cherche plombier", bastos, at(1), func(l *domain.Listing) {
		l.Details = domain.NeedDetails{Urgent: true, Category: "plomberie"}
	})

	got, err := s.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Téléphone Samsung", got.Title)
	assert.Equal(t, domain.ProductDetails{Price: &price}, got.Details)
	require.Len(t, got.Media, 2)
	assert.Equal(t, domain.MediaTypeImage, got.Media[0].Type)
	assert.Equal(t, "LKO2", got.Media[0].BlurHash)
	assert.Equal(t, domain.MediaTypeVideo, got.Media[1].Type)

	gotNeed, err := s.GetListing(ctx, need.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NeedDetails{Urgent: true, Category: "plomberie"}, gotNeed.Details)

	got.Title = "Téléphone Samsung A52"
	got.Details = domain.AnnouncementDetails{}
	got.UpdatedAt = at(10)
	require.NoError(t, s.UpdateListing(ctx, got))

	enriched, err := s.EnrichListing(ctx, l.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Téléphone Samsung A52", enriched.Title)
	assert.Equal(t, domain.KindAnnouncement, enriched.Kind())
	assert.Equal(t, "Awa Mbarga", enriched.SellerName)
	assert.Equal(t, domain.AccountTypeIndividual, enriched.SellerAccountType)
	assert.Len(t, enriched.Media, 2)

	require.NoError(t, s.DeleteListing(ctx, l.ID))
	_, err = s.EnrichListing(ctx, l.ID, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteListing(ctx, l.ID), store.ErrNotFound)
}

func testMedia(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "3001", domain.UserTypeSeller, bastos)
	first := domain.Media{ID: id.MustGenerate(id.Media), URL: "u0", Order: 0, Type: domain.MediaTypeImage}
	l := mustListing(t, s, seller, "Table", bastos, at(0), func(l *domain.Listing) {
		l.Media = []domain.Media{first}
	})

	added, err := s.AppendMedia(ctx, l.ID, []domain.Media{
		{ID: id.MustGenerate(id.Media), URL: "u1", Type: domain.MediaTypeImage},
		{ID: id.MustGenerate(id.Media), URL: "u2", Type: domain.MediaTypeVideo},
	})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, 1, added[0].Order)
	assert.Equal(t, 2, added[1].Order)

	n, err := s.RemoveMedia(ctx, l.ID, []string{first.ID, "med-unknown"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetListing(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, got.Media, 2)
	assert.Equal(t, "u1", got.Media[0].URL)
	assert.Equal(t, "u2", got.Media[1].URL)
}

func testFeedTierOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "4001", domain.UserTypeSeller, akwa)

	// Older listings are created nearer to the viewer so recency alone would invert the order.
	exactOld := mustListing(t, s, seller, "exact old", bastos, at(0))
	exactNew := mustListing(t, s, seller, "exact new", bastos, at(1))
	city := mustListing(t, s, seller, "city", mvog, at(2))
	country := mustListing(t, s, seller, "country", akwa, at(3))
	elsewhere := mustListing(t, s, seller, "elsewhere", marais, at(4))

	items, err := s.Feed(ctx, store.FeedQuery{ViewerLocation: bastos})
	require.NoError(t, err)
	assert.Equal(t, []string{exactNew.ID, exactOld.ID, city.ID, country.ID, elsewhere.ID}, listingIDs(items))

	anon, err := s.Feed(ctx, store.FeedQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{elsewhere.ID, country.ID, city.ID, exactNew.ID, exactOld.ID}, listingIDs(anon))

	paged, err := s.Feed(ctx, store.FeedQuery{ViewerLocation: bastos, Page: store.Page{Limit: 2, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{exactOld.ID, city.ID}, listingIDs(paged))
}

func testFeedFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "5001", domain.UserTypeSeller, bastos)
	bob := mustUser(t, s, "5002", domain.UserTypeSeller, akwa)
	buyer := mustUser(t, s, "5003", domain.UserTypeBuyer, bastos)

	a1 := mustListing(t, s, alice, "a1", bastos, at(0))
	b1 := mustListing(t, s, bob, "b1", akwa, at(1))
	repost := &domain.Listing{
		Record:     domain.Record{ID: id.MustGenerate(id.Listing), CreatedAt: at(2), UpdatedAt: at(2)},
		SellerID:   bob.ID,
		Title:      a1.Title,
		Location:   akwa,
		Details:    domain.ProductDetails{},
		OriginalID: a1.ID,
	}
	require.NoError(t, s.CreateRepost(ctx, repost))

	bySeller, err := s.Feed(ctx, store.FeedQuery{SellerID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{repost.ID, b1.ID}, listingIDs(bySeller))

	byCity, err := s.Feed(ctx, store.FeedQuery{Location: domain.Location{City: "Yaoundé"}})
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID}, listingIDs(byCity))

	// Feed filters are exact, unlike search.
	lower, err := s.Feed(ctx, store.FeedQuery{Location: domain.Location{City: "yaoundé"}})
	require.NoError(t, err)
	assert.Empty(t, lower)

	_, err = s.AddInterest(ctx, a1.ID, buyer.ID)
	require.NoError(t, err)
	asBuyer, err := s.Feed(ctx, store.FeedQuery{ViewerID: buyer.ID, SellerID: alice.ID})
	require.NoError(t, err)
	require.Len(t, asBuyer, 1)
	assert.True(t, asBuyer[0].IsInterested)
	assert.Equal(t, 1, asBuyer[0].InterestedCount)

	anon, err := s.Feed(ctx, store.FeedQuery{SellerID: alice.ID})
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.False(t, anon[0].IsInterested)
}

func testViews(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "6001", domain.UserTypeSeller, bastos)
	l := mustListing(t, s, seller, "Vélo", bastos, at(0))

	first, err := s.RegisterView(ctx, l.ID, domain.ViewerKey("", "10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, domain.ViewResult{IsNewView: true, ViewsCount: 1}, first)

	second, err := s.RegisterView(ctx, l.ID, domain.ViewerKey("", "10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, domain.ViewResult{IsNewView: false, ViewsCount: 1}, second)

	other, err := s.RegisterView(ctx, l.ID, domain.ViewerKey("usr-x", "10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, 2, other.ViewsCount)

	_, err = s.RegisterView(ctx, "lst-missing", "ip:1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testInterests(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "7001", domain.UserTypeSeller, bastos)
	buyer := mustUser(t, s, "7002", domain.UserTypeBuyer, bastos)
	l := mustListing(t, s, seller, "Frigo", bastos, at(0))

	added, err := s.AddInterest(ctx, l.ID, buyer.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddInterest(ctx, l.ID, buyer.ID)
	require.NoError(t, err)
	assert.False(t, added)

	counts, err := s.CountInteractions(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Interests)

	require.NoError(t, s.RemoveInterest(ctx, l.ID, buyer.ID))
	require.NoError(t, s.RemoveInterest(ctx, l.ID, buyer.ID))
	counts, err = s.CountInteractions(ctx, l.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Interests)

	added, err = s.AddInterest(ctx, l.ID, buyer.ID)
	require.NoError(t, err)
	assert.True(t, added)
	counts, err = s.CountInteractions(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Interests)
}

func testReposts(t *testing.T, s store.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "8001", domain.UserTypeSeller, bastos)
	reposter := mustUser(t, s, "8002", domain.UserTypeSeller, akwa)
	original := mustListing(t, s, author, "Canapé", bastos, at(0), func(l *domain.Listing) {
		l.WhatsAppNumber = "+237 600 000 001"
		l.Media = []domain.Media{{ID: id.MustGenerate(id.Media), URL: "https://cdn.example/c.jpg", Type: domain.MediaTypeImage}}
	})

	newRepost := func() *domain.Listing {
		return &domain.Listing{
			Record:         domain.Record{ID: id.MustGenerate(id.Listing), CreatedAt: at(1), UpdatedAt: at(1)},
			SellerID:       reposter.ID,
			Title:          original.Title,
			Location:       akwa,
			WhatsAppNumber: reposter.WhatsAppNumber,
			Details:        original.Details,
			OriginalID:     original.ID,
			Media: []domain.Media{{
				ID: id.MustGenerate(id.Media), URL: original.Media[0].URL, Type: domain.MediaTypeImage,
			}},
		}
	}

	has, err := s.HasReposted(ctx, original.ID, reposter.ID)
	require.NoError(t, err)
	assert.False(t, has)

	repost := newRepost()
	require.NoError(t, s.CreateRepost(ctx, repost))
	assert.ErrorIs(t, s.CreateRepost(ctx, newRepost()), store.ErrAlreadyExists)

	has, err = s.HasReposted(ctx, original.ID, reposter.ID)
	require.NoError(t, err)
	assert.True(t, has)

	target, err := s.ContactTarget(ctx, repost.ID)
	require.NoError(t, err)
	assert.Equal(t, "+237 600 000 001", target.WhatsAppNumber)
	assert.True(t, target.ViaOriginal)

	own, err := s.ContactTarget(ctx, original.ID)
	require.NoError(t, err)
	assert.False(t, own.ViaOriginal)

	got, err := s.GetListing(ctx, repost.ID)
	require.NoError(t, err)
	assert.Equal(t, original.ID, got.OriginalID)
	require.Len(t, got.Media, 1)

	require.NoError(t, s.DeleteListing(ctx, original.ID))
	survivor, err := s.GetListing(ctx, repost.ID)
	require.NoError(t, err)
	assert.Empty(t, survivor.OriginalID)

	target, err = s.ContactTarget(ctx, repost.ID)
	require.NoError(t, err)
	assert.Equal(t, reposter.WhatsAppNumber, target.WhatsAppNumber)
	assert.False(t, target.ViaOriginal)
}

func testSearchListings(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "9001", domain.UserTypeSeller, bastos)
	phone := mustListing(t, s, seller, "Téléphone portable", bastos, at(0))
	shoes := mustListing(t, s, seller, "Chaussures", akwa, at(1), func(l *domain.Listing) {
		l.Description = "Baskets de sport, pointure 42"
	})

	typo, err := s.SearchListings(ctx, store.ListingSearch{Keyword: "telfon"})
	require.NoError(t, err)
	assert.Equal(t, []string{phone.ID}, listingIDs(typo))
	assert.Greater(t, typo[0].Similarity, 0.2)

	desc, err := s.SearchListings(ctx, store.ListingSearch{Keyword: "BASKETS"})
	require.NoError(t, err)
	assert.Equal(t, []string{shoes.ID}, listingIDs(desc))

	none, err := s.SearchListings(ctx, store.ListingSearch{Keyword: "xyz123"})
	require.NoError(t, err)
	assert.Empty(t, none)

	byCity, err := s.SearchListings(ctx, store.ListingSearch{Location: domain.Location{City: "yaounde"}})
	require.NoError(t, err)
	assert.Equal(t, []string{phone.ID}, listingIDs(byCity))

	all, err := s.SearchListings(ctx, store.ListingSearch{})
	require.NoError(t, err)
	assert.Equal(t, []string{shoes.ID, phone.ID}, listingIDs(all))

	wildcard, err := s.SearchListings(ctx, store.ListingSearch{Location: domain.Location{Country: "%"}})
	require.NoError(t, err)
	assert.Empty(t, wildcard)
}

func testSearchSellers(t *testing.T, s store.Store) {
	ctx := context.Background()
	rice := mustUser(t, s, "10001", domain.UserTypeSeller, bastos, func(u *domain.User) {
		u.ProductsSold = "Riz, huile, farine"
	})
	mustUser(t, s, "10002", domain.UserTypeSeller, akwa, func(u *domain.User) {
		u.ProductsSold = "Téléphones et accessoires"
	})
	mustUser(t, s, "10003", domain.UserTypeBuyer, bastos, func(u *domain.User) {
		u.ProductsSold = "riz"
	})
	mustListing(t, s, rice, "Sac de riz", bastos, at(0))

	hits, err := s.SearchSellers(ctx, store.SellerSearch{Keyword: "riz"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, rice.ID, hits[0].ID)
	assert.Equal(t, 1, hits[0].ListingCount)

	phones, err := s.SearchSellers(ctx, store.SellerSearch{Keyword: "telephone"})
	require.NoError(t, err)
	require.Len(t, phones, 1)

	byCity, err := s.SearchSellers(ctx, store.SellerSearch{Location: domain.Location{City: "douala"}})
	require.NoError(t, err)
	require.Len(t, byCity, 1)
	assert.Equal(t, "Douala", byCity[0].City)
}

func testAutocomplete(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "11001", domain.UserTypeSeller, bastos)
	mustUser(t, s, "11002", domain.UserTypeBuyer, akwa)
	mustListing(t, s, seller, "x", domain.Location{Country: "France", City: "Yvetot", Neighborhood: "Centre"}, at(0))
	mustListing(t, s, seller, "y", mvog, at(1))

	cities, err := s.Autocomplete(ctx, store.AutocompleteQuery{Field: store.FieldCity, Prefix: "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Yaoundé", "Yvetot"}, cities)

	scoped, err := s.Autocomplete(ctx, store.AutocompleteQuery{Field: store.FieldCity, Prefix: "y", Scope: "france"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Yvetot"}, scoped)

	countries, err := s.Autocomplete(ctx, store.AutocompleteQuery{Field: store.FieldCountry, Prefix: ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cameroun", "France"}, countries)

	hoods, err := s.Autocomplete(ctx, store.AutocompleteQuery{Field: store.FieldNeighborhood, Prefix: "", Scope: "Yaounde"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bastos", "Mvog-Ada"}, hoods)

	// Prefix match only: "aound" is inside "Yaoundé" but does not start it.
	inner, err := s.Autocomplete(ctx, store.AutocompleteQuery{Field: store.FieldCity, Prefix: "aound"})
	require.NoError(t, err)
	assert.Empty(t, inner)

	_, err = s.Autocomplete(ctx, store.AutocompleteQuery{Field: "street"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func testResultCaps(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "11501", domain.UserTypeSeller, bastos)

	var newest *domain.Listing
	for i := range store.SearchLimit + 1 {
		newest = mustListing(t, s, seller, fmt.Sprintf("Robe wax %d", i), bastos, at(i))
	}
	for i := range store.AutocompleteLimit + 1 {
		loc := domain.Location{Country: "Cameroun", City: fmt.Sprintf("Ville %02d", i), Neighborhood: "Centre"}
		mustListing(t, s, seller, "Sac", loc, at(-i-1))
	}

	hits, err := s.SearchListings(ctx, store.ListingSearch{Keyword: "robe"})
	require.NoError(t, err)
	require.Len(t, hits, store.SearchLimit)
	assert.Equal(t, newest.ID, hits[0].ID)

	recent, err := s.SearchListings(ctx, store.ListingSearch{})
	require.NoError(t, err)
	assert.Len(t, recent, store.SearchLimit)

	cities, err := s.Autocomplete(ctx, store.AutocompleteQuery{Field: store.FieldCity, Prefix: "ville"})
	require.NoError(t, err)
	require.Len(t, cities, store.AutocompleteLimit)
	assert.Equal(t, "Ville 00", cities[0])
	assert.Equal(t, "Ville 19", cities[len(cities)-1])
}

func testComments(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := mustUser(t, s, "12001", domain.UserTypeSeller, bastos)
	buyer := mustUser(t, s, "12002", domain.UserTypeBuyer, bastos, func(u *domain.User) {
		u.FirstName, u.LastName = "Jean", "Kamga"
	})
	l := mustListing(t, s, seller, "Moto", bastos, at(0))

	for i := range 3 {
		c := &domain.Comment{
			Record:    domain.Record{ID: id.MustGenerate(id.Comment), CreatedAt: at(i), UpdatedAt: at(i)},
			ListingID: l.ID,
			AuthorID:  buyer.ID,
			Content:   fmt.Sprintf("comment %d", i),
		}
		n := &domain.Notification{
			ID:        id.MustGenerate(id.Notification),
			UserID:    seller.ID,
			Type:      domain.NotificationComment,
			Message:   "Jean Kamga a commenté votre produit",
			RelatedID: l.ID,
			CreatedAt: at(i),
		}
		require.NoError(t, s.CreateComment(ctx, c, n))
	}

	comments, err := s.ListComments(ctx, l.ID, store.Page{})
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "comment 2", comments[0].Content)
	assert.Equal(t, "Jean Kamga", comments[0].AuthorName)

	c := comments[0]
	c.Content = "edited"
	c.UpdatedAt = at(10)
	require.NoError(t, s.UpdateComment(ctx, c))
	got, err := s.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	counts, err := s.CountInteractions(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Comments)

	require.NoError(t, s.DeleteComment(ctx, c.ID))
	_, err = s.GetComment(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	notes, err := s.ListNotifications(ctx, seller.ID, store.Page{Limit: 2})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.True(t, notes[0].CreatedAt.After(notes[1].CreatedAt))
	assert.Equal(t, l.ID, notes[0].RelatedID)
	assert.False(t, notes[0].IsRead)

	assert.ErrorIs(t, s.MarkNotificationRead(ctx, notes[0].ID, buyer.ID), store.ErrNotFound)
	require.NoError(t, s.MarkNotificationRead(ctx, notes[0].ID, seller.ID))
	notes, err = s.ListNotifications(ctx, seller.ID, store.Page{})
	require.NoError(t, err)
	assert.True(t, notes[0].IsRead)
}

func testAdminStats(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := base.Add(2 * time.Hour)
	seller := mustUser(t, s, "13001", domain.UserTypeSeller, bastos)
	buyer := mustUser(t, s, "13002", domain.UserTypeBuyer, bastos, func(u *domain.User) {
		u.CreatedAt = base.AddDate(0, 0, -20)
		u.UpdatedAt = u.CreatedAt
	})
	popular := mustListing(t, s, seller, "popular", bastos, at(0))
	mustListing(t, s, seller, "need", bastos, at(1), func(l *domain.Listing) {
		l.Details = domain.NeedDetails{}
	})
	_, err := s.RegisterView(ctx, popular.ID, "ip:1")
	require.NoError(t, err)
	_, err = s.AddInterest(ctx, popular.ID, buyer.ID)
	require.NoError(t, err)

	st, err := s.AdminStats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Users.Total)
	assert.Equal(t, 1, st.Users.Sellers)
	assert.Equal(t, 1, st.Users.Buyers)
	assert.Equal(t, 2, st.Listings.Total)
	assert.Equal(t, 1, st.Listings.Products)
	assert.Equal(t, 1, st.Listings.Needs)
	assert.Equal(t, 1, st.Totals.Views)
	assert.Equal(t, 1, st.Totals.Interests)
	assert.Equal(t, domain.PeriodCounts{Today: 1, Week: 1, Month: 2}, st.NewUsers)
	assert.Equal(t, domain.PeriodCounts{Today: 2, Week: 2, Month: 2}, st.RecentListings)
	require.NotEmpty(t, st.TopListings)
	assert.Equal(t, popular.ID, st.TopListings[0].ID)
	require.Len(t, st.TopSellers, 1)
	assert.Equal(t, 2, st.TopSellers[0].Listings)
	require.Len(t, st.DailyListings, domain.StatsWindowDays)
	assert.Equal(t, 2, st.DailyListings[domain.StatsWindowDays-1].Count)
	assert.Equal(t, 1, st.DailyUsers[domain.StatsWindowDays-1].Count)
}
