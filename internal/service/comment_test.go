package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/store"
)

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)
	b := f.buyer(t, "Binta", douala)
	listingID := f.product(t, s, "Chaussures", douala)

	c, err := f.comments.Create(ctx, listingID, b.ID, "  Toujours disponible ?  ")
	require.NoError(t, err)
	assert.Equal(t, "Toujours disponible ?", c.Content)
	assert.Equal(t, "Binta Test", c.AuthorName)

	notes, err := f.comments.Notifications(ctx, s.ID, store.Page{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Binta Test a commenté votre produit", notes[0].Message)
	assert.Equal(t, listingID, notes[0].RelatedID)
	assert.Equal(t, domain.NotificationComment, notes[0].Type)
	assert.False(t, notes[0].IsRead)

	require.NoError(t, f.comments.MarkRead(ctx, notes[0].ID, s.ID))
	assert.ErrorIs(t, f.comments.MarkRead(ctx, notes[0].ID, b.ID), domainerrors.ErrNotFound)

	notes, err = f.comments.Notifications(ctx, s.ID, store.Page{})
	require.NoError(t, err)
	assert.True(t, notes[0].IsRead)

	_, err = f.comments.Update(ctx, c.ID, s.ID, "hijack")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	edited, err := f.comments.Update(ctx, c.ID, b.ID, "Encore disponible ?")
	require.NoError(t, err)
	assert.Equal(t, "Encore disponible ?", edited.Content)

	list, err := f.comments.List(ctx, listingID, store.Page{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Encore disponible ?", list[0].Content)

	listing, err := f.listings.Get(ctx, listingID, "", domain.ViewerKey("", "10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, 1, listing.CommentsCount)

	assert.ErrorIs(t, f.comments.Delete(ctx, c.ID, s.ID), domainerrors.ErrForbidden)
	require.NoError(t, f.comments.Delete(ctx, c.ID, b.ID))

	list, err = f.comments.List(ctx, listingID, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestComments_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seller(t, "Awa", douala)
	listingID := f.product(t, s, "Chaussures", douala)

	_, err := f.comments.Create(ctx, listingID, s.ID, "   ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.comments.Create(ctx, listingID, s.ID, strings.Repeat("é", MaxCommentLength+1))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.comments.Create(ctx, listingID, s.ID, strings.Repeat("é", MaxCommentLength))
	assert.NoError(t, err)

	_, err = f.comments.Create(ctx, "lst-missing", s.ID, "hello")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = f.comments.List(ctx, "lst-missing", store.Page{})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
