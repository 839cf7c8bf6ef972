package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
)

func TestMarkInterest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)
	b := f.buyer(t, "Binta", douala)
	listingID := f.product(t, s, "Chaussures", douala)

	res, err := f.interact.MarkInterest(ctx, listingID, b.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyInterested)
	assert.Equal(t, 1, res.ViewsCount)
	assert.Equal(t, 1, res.InterestedCount)
	assert.Equal(t, s.WhatsAppNumber, res.Contact.WhatsAppNumber)
	assert.Contains(t, res.Contact.Message, `"Chaussures"`)
	assert.Contains(t, res.Contact.Message, testShareBase+"/share/listings/"+listingID)
	assert.True(t, strings.HasPrefix(res.Contact.DeepLink, "https://wa.me/"))

	again, err := f.interact.MarkInterest(ctx, listingID, b.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyInterested)
	assert.Equal(t, 1, again.InterestedCount)
	assert.Equal(t, 1, again.ViewsCount)

	listing, err := f.listings.Get(ctx, listingID, b.ID, domain.ViewerKey(b.ID, ""))
	require.NoError(t, err)
	assert.True(t, listing.IsInterested)

	require.NoError(t, f.interact.UnmarkInterest(ctx, listingID, b.ID))
	require.NoError(t, f.interact.UnmarkInterest(ctx, listingID, b.ID))

	listing, err = f.listings.Get(ctx, listingID, b.ID, domain.ViewerKey(b.ID, ""))
	require.NoError(t, err)
	assert.False(t, listing.IsInterested)
	assert.Equal(t, 0, listing.InterestedCount)
}

func TestMarkInterest_RepostRoutesToOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.seller(t, "Awa", douala)
	reposter := f.seller(t, "Binta", yaound)
	b := f.buyer(t, "Chantal", douala)
	originalID := f.product(t, owner, "Chaussures", douala)

	repost, err := f.reposts.Repost(ctx, originalID, reposter.ID)
	require.NoError(t, err)

	res, err := f.interact.MarkInterest(ctx, repost.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.WhatsAppNumber, res.Contact.WhatsAppNumber)
	assert.Contains(t, res.Contact.Message, "/share/listings/"+repost.ID)
}

func TestRegisterView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)
	listingID := f.product(t, s, "Chaussures", douala)

	first, err := f.interact.RegisterView(ctx, listingID, domain.ViewerKey("", "10.0.0.1"))
	require.NoError(t, err)
	assert.True(t, first.IsNewView)
	assert.Equal(t, 1, first.ViewsCount)

	second, err := f.interact.RegisterView(ctx, listingID, domain.ViewerKey("", "10.0.0.1"))
	require.NoError(t, err)
	assert.False(t, second.IsNewView)
	assert.Equal(t, 1, second.ViewsCount)

	_, err = f.interact.RegisterView(ctx, "lst-missing", domain.ViewerKey("", "10.0.0.1"))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
