package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindProduct, k)

	k, err = ParseKind(" Need ")
	require.NoError(t, err)
	assert.Equal(t, KindNeed, k)

	_, err = ParseKind("auction")
	assert.Error(t, err)
}

func TestDetailColumns_RoundTrip(t *testing.T) {
	price := 15000.0
	variants := []Details{
		ProductDetails{Price: &price},
		ProductDetails{},
		AnnouncementDetails{},
		NeedDetails{Urgent: true, Category: "plomberie"},
	}

	for _, d := range variants {
		t.Run(string(d.Kind()), func(t *testing.T) {
			assert.Equal(t, d, Flatten(d).Details())
		})
	}
}

func TestDetailColumns_IgnoresForeignColumns(t *testing.T) {
	price := 10.0
	cols := DetailColumns{Kind: KindNeed, Price: &price, Category: "transport"}

	assert.Equal(t, NeedDetails{Category: "transport"}, cols.Details())
}

func TestMediaRules(t *testing.T) {
	assert.True(t, RequiresMedia(ProductDetails{}))
	assert.False(t, RequiresMedia(AnnouncementDetails{}))
	assert.True(t, AcceptsMedia(AnnouncementDetails{}))
	assert.False(t, AcceptsMedia(NeedDetails{}))
}

func TestListing_RootID(t *testing.T) {
	l := Listing{Record: Record{ID: "lst-a"}}
	assert.Equal(t, "lst-a", l.RootID())
	assert.False(t, l.IsRepost())

	l.OriginalID = "lst-o"
	assert.Equal(t, "lst-o", l.RootID())
	assert.True(t, l.IsRepost())
}

func TestMediaTypeFromMIME(t *testing.T) {
	mt, ok := MediaTypeFromMIME("image/webp")
	assert.True(t, ok)
	assert.Equal(t, MediaTypeImage, mt)

	mt, ok = MediaTypeFromMIME("video/mp4")
	assert.True(t, ok)
	assert.Equal(t, MediaTypeVideo, mt)

	_, ok = MediaTypeFromMIME("application/pdf")
	assert.False(t, ok)
}
