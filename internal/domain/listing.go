package domain

import (
	"fmt"
	"strings"
)

// Kind tags the variant of a listing.
type Kind string

const (
	// KindProduct is an item for sale. It must carry at least one media item.
	KindProduct Kind = "product"
	// KindAnnouncement is a general notice. Media is optional.
	KindAnnouncement Kind = "announcement"
	// KindNeed is a buyer-style request. It never carries media.
	KindNeed Kind = "need"
)

// ParseKind maps a wire value to a Kind. Blank defaults to product.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindProduct, nil
	case KindProduct, KindAnnouncement, KindNeed:
		return k, nil
	default:
		return "", fmt.Errorf("unknown listing kind %q", s)
	}
}

// Label is the French noun phrase used in outbound messages.
func (k Kind) Label() string {
	switch k {
	case KindAnnouncement:
		return "une annonce"
	case KindNeed:
		return "un besoin"
	default:
		return "un produit"
	}
}

// Details holds the kind-specific attributes of a listing.
type Details interface {
	Kind() Kind
}

// ProductDetails are the attributes of a product listing.
type ProductDetails struct {
	Price *float64
}

// Kind implements Details.
func (ProductDetails) Kind() Kind { return KindProduct }

// AnnouncementDetails are the attributes of an announcement. It has none.
type AnnouncementDetails struct{}

// Kind implements Details.
func (AnnouncementDetails) Kind() Kind { return KindAnnouncement }

// NeedDetails are the attributes of a need.
type NeedDetails struct {
	Urgent   bool
	Category string
}

// Kind implements Details.
func (NeedDetails) Kind() Kind { return KindNeed }

// AcceptsMedia reports whether media may be attached to a listing of this kind.
func AcceptsMedia(d Details) bool {
	return d.Kind() != KindNeed
}

// RequiresMedia reports whether a listing of this kind needs at least one media item.
func RequiresMedia(d Details) bool {
	return d.Kind() == KindProduct
}

// DetailColumns is the flat row form of Details used by the stores.
type DetailColumns struct {
	Kind     Kind
	Price    *float64
	Urgent   bool
	Category string
}

// Flatten converts Details to columns. Columns that do not apply to the variant stay zero.
func Flatten(d Details) DetailColumns {
	switch v := d.(type) {
	case ProductDetails:
		return DetailColumns{Kind: KindProduct, Price: v.Price}
	case NeedDetails:
		return DetailColumns{Kind: KindNeed, Urgent: v.Urgent, Category: v.Category}
	case AnnouncementDetails:
		return DetailColumns{Kind: KindAnnouncement}
	default:
		return DetailColumns{Kind: KindProduct}
	}
}

// Details rebuilds the variant from columns, ignoring columns foreign to the kind.
func (c DetailColumns) Details() Details {
	switch c.Kind {
	case KindNeed:
		return NeedDetails{Urgent: c.Urgent, Category: c.Category}
	case KindAnnouncement:
		return AnnouncementDetails{}
	default:
		return ProductDetails{Price: c.Price}
	}
}

// Listing is a seller-authored post.
type Listing struct {
	Record
	SellerID       string
	Title          string
	Description    string
	Location       Location
	WhatsAppNumber string
	Details        Details
	// OriginalID is set when the listing is a repost.
	OriginalID string
	Media      []Media
}

// Kind returns the listing's variant tag.
func (l *Listing) Kind() Kind {
	if l.Details == nil {
		return KindProduct
	}
	return l.Details.Kind()
}

// IsRepost reports whether the listing republishes another listing.
func (l *Listing) IsRepost() bool {
	return l.OriginalID != ""
}

// RootID returns the id reposts of this listing point back to.
func (l *Listing) RootID() string {
	if l.OriginalID != "" {
		return l.OriginalID
	}
	return l.ID
}

// EnrichedListing is a listing hydrated for display.
type EnrichedListing struct {
	Listing
	SellerName        string
	SellerAccountType AccountType
	ViewsCount        int
	InterestedCount   int
	CommentsCount     int
	IsInterested      bool
	// Similarity is the keyword score of a search hit.
	Similarity float64
	// Tier is the viewer proximity tier, TierNone outside a ranked feed.
	Tier int
}
