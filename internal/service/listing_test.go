package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/media"
)

func TestListingCreate_Product(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)

	price := 15000.0
	out, err := f.listings.Create(ctx, s.ID, CreateListingRequest{
		Title:        " Chaussures ",
		Country:      "Cameroun",
		City:         "Douala",
		Neighborhood: "Akwa",
		Price:        &price,
	}, []Upload{
		{Filename: "a.jpg", Data: []byte("a")},
		{Filename: "bad.exe", Data: []byte("b")},
		{Filename: "c.jpg", Data: []byte("c")},
		{Filename: "down.jpg", Data: []byte("d")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Chaussures", out.Listing.Title)
	assert.Equal(t, domain.KindProduct, out.Listing.Kind)
	require.NotNil(t, out.Listing.Price)
	assert.Equal(t, 15000.0, *out.Listing.Price)
	assert.Equal(t, s.WhatsAppNumber, out.Listing.WhatsAppNumber)
	assert.Equal(t, "Awa Test", out.Listing.SellerName)

	require.Len(t, out.Listing.Media, 2)
	assert.Equal(t, 0, out.Listing.Media[0].Order)
	assert.Equal(t, 1, out.Listing.Media[1].Order)

	require.Len(t, out.FailedMedia, 2)
	assert.Equal(t, 1, out.FailedMedia[0].Index)
	assert.Equal(t, "bad.exe", out.FailedMedia[0].Filename)
	assert.Equal(t, "VALIDATION", out.FailedMedia[0].Code)
	assert.Equal(t, "unsupported file type", out.FailedMedia[0].Reason)
	assert.Equal(t, 3, out.FailedMedia[1].Index)
	assert.Equal(t, "UPSTREAM", out.FailedMedia[1].Code)
	assert.Equal(t, "upload failed", out.FailedMedia[1].Reason)

	select {
	case post := <-f.announce.posts:
		assert.Equal(t, "Chaussures", post.Title)
		assert.Equal(t, testShareBase+"/share/listings/"+out.Listing.ID, post.ShareURL)
	case <-time.After(2 * time.Second):
		t.Fatal("listing was not announced")
	}
}

func TestListingCreate_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)
	b := f.buyer(t, "Binta", douala)

	base := CreateListingRequest{Title: "x", Country: "Cameroun", City: "Douala", Neighborhood: "Akwa"}
	photo := []Upload{{Filename: "a.jpg", Data: []byte("a")}}

	_, err := f.listings.Create(ctx, b.ID, base, photo)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden, "buyers cannot publish")

	_, err = f.listings.Create(ctx, s.ID, base, nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation, "products need media")

	need := base
	need.Kind = "need"
	_, err = f.listings.Create(ctx, s.ID, need, photo)
	assert.ErrorIs(t, err, domainerrors.ErrValidation, "needs reject media")

	tooMany := make([]Upload, media.MaxFiles+1)
	for i := range tooMany {
		tooMany[i] = Upload{Filename: "a.jpg", Data: []byte("a")}
	}
	_, err = f.listings.Create(ctx, s.ID, base, tooMany)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	bad := base
	bad.Kind = "service"
	_, err = f.listings.Create(ctx, s.ID, bad, photo)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	missing := base
	missing.City = ""
	_, err = f.listings.Create(ctx, s.ID, missing, photo)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestListingCreate_NeedAndAnnouncement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)

	need, err := f.listings.Create(ctx, s.ID, CreateListingRequest{
		Title: "Cherche plombier", Country: "Cameroun", City: "Douala", Neighborhood: "Akwa",
		Kind: "need", IsUrgent: true, Category: "services",
	}, nil)
	require.NoError(t, err)
	assert.True(t, need.Listing.IsUrgent)
	assert.Equal(t, "services", need.Listing.Category)
	assert.Nil(t, need.Listing.Price)

	ann, err := f.listings.Create(ctx, s.ID, CreateListingRequest{
		Title: "Fermeture", Country: "Cameroun", City: "Douala", Neighborhood: "Akwa",
		Kind: "announcement",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.KindAnnouncement, ann.Listing.Kind)
	assert.Empty(t, ann.Listing.Media)
}

func TestListingUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)
	other := f.seller(t, "Binta", douala)
	listingID := f.product(t, s, "Chaussures", douala)

	title := "Chaussures neuves"
	price := 9000.0
	_, err := f.listings.Update(ctx, other.ID, listingID, UpdateListingRequest{Title: &title}, nil)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	before, err := f.listings.Get(ctx, listingID, s.ID, domain.ViewerKey(s.ID, ""))
	require.NoError(t, err)
	require.Len(t, before.Media, 1)

	out, err := f.listings.Update(ctx, s.ID, listingID, UpdateListingRequest{
		Title:        &title,
		Price:        &price,
		RemovedMedia: []string{before.Media[0].ID},
	}, []Upload{{Filename: "new.jpg", Data: []byte("n")}})
	require.NoError(t, err)

	assert.Equal(t, title, out.Listing.Title)
	assert.Equal(t, 9000.0, *out.Listing.Price)
	require.Len(t, out.Listing.Media, 1)
	assert.NotEqual(t, before.Media[0].ID, out.Listing.Media[0].ID)
	assert.Equal(t, "Akwa", out.Listing.Neighborhood)
}

func TestListingUpdate_NeedRejectsMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)
	need, err := f.listings.Create(ctx, s.ID, CreateListingRequest{
		Title: "Cherche", Country: "Cameroun", City: "Douala", Neighborhood: "Akwa", Kind: "need",
	}, nil)
	require.NoError(t, err)

	_, err = f.listings.Update(ctx, s.ID, need.Listing.ID, UpdateListingRequest{},
		[]Upload{{Filename: "a.jpg", Data: []byte("a")}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	urgent := true
	out, err := f.listings.Update(ctx, s.ID, need.Listing.ID, UpdateListingRequest{IsUrgent: &urgent}, nil)
	require.NoError(t, err)
	assert.True(t, out.Listing.IsUrgent)
}

func TestListingGet_CountsViewOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)
	b := f.buyer(t, "Binta", douala)
	listingID := f.product(t, s, "Chaussures", douala)

	for range 3 {
		_, err := f.listings.Get(ctx, listingID, b.ID, domain.ViewerKey(b.ID, "10.0.0.1"))
		require.NoError(t, err)
	}
	out, err := f.listings.Get(ctx, listingID, "", domain.ViewerKey("", "10.0.0.2"))
	require.NoError(t, err)
	assert.Equal(t, 2, out.ViewsCount)

	_, err = f.listings.Get(ctx, "lst-missing", "", domain.ViewerKey("", "10.0.0.2"))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListingDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)
	other := f.seller(t, "Binta", douala)
	listingID := f.product(t, s, "Chaussures", douala)

	assert.ErrorIs(t, f.listings.Delete(ctx, other.ID, listingID), domainerrors.ErrForbidden)
	require.NoError(t, f.listings.Delete(ctx, s.ID, listingID))
	assert.ErrorIs(t, f.listings.Delete(ctx, s.ID, listingID), domainerrors.ErrNotFound)
}
