// Package dto holds the client-facing shapes of domain models.
//
// Listings are flattened: the kind-specific details become optional top-level
// fields and the seller's display fields are denormalized next to seller_id.
package dto

import (
	"time"

	"github.com/linkmarket/link-server/internal/domain"
)

// Listing is the client-facing representation of a listing.
type Listing struct {
	ID                string             `json:"id"`
	SellerID          string             `json:"seller_id"`
	SellerName        string             `json:"seller_name,omitempty"`
	SellerAccountType domain.AccountType `json:"seller_account_type,omitempty"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Country           string             `json:"country"`
	City              string             `json:"city"`
	Neighborhood      string             `json:"neighborhood"`
	WhatsAppNumber    string             `json:"whatsapp_number"`
	Kind              domain.Kind        `json:"kind"`
	Price             *float64           `json:"price,omitempty"`
	IsUrgent          bool               `json:"is_urgent"`
	Category          string             `json:"category,omitempty"`
	OriginalListingID string             `json:"original_listing_id,omitempty"`
	IsRepost          bool               `json:"is_repost"`
	Media             []domain.Media     `json:"media"`
	ViewsCount        int                `json:"views_count"`
	InterestedCount   int                `json:"interested_count"`
	CommentsCount     int                `json:"comments_count"`
	IsInterested      bool               `json:"is_interested"`
	Similarity        float64            `json:"similarity,omitempty"`
	Tier              int                `json:"tier,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// FromListing converts a bare listing. Counters and seller fields stay zero.
func FromListing(l *domain.Listing) Listing {
	cols := domain.Flatten(l.Details)
	media := l.Media
	if media == nil {
		media = []domain.Media{}
	}
	return Listing{
		ID:                l.ID,
		SellerID:          l.SellerID,
		Title:             l.Title,
		Description:       l.Description,
		Country:           l.Location.Country,
		City:              l.Location.City,
		Neighborhood:      l.Location.Neighborhood,
		WhatsAppNumber:    l.WhatsAppNumber,
		Kind:              cols.Kind,
		Price:             cols.Price,
		IsUrgent:          cols.Urgent,
		Category:          cols.Category,
		OriginalListingID: l.OriginalID,
		IsRepost:          l.IsRepost(),
		Media:             media,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// FromEnriched converts a hydrated listing.
func FromEnriched(e *domain.EnrichedListing) Listing {
	out := FromListing(&e.Listing)
	out.SellerName = e.SellerName
	out.SellerAccountType = e.SellerAccountType
	out.ViewsCount = e.ViewsCount
	out.InterestedCount = e.InterestedCount
	out.CommentsCount = e.CommentsCount
	out.IsInterested = e.IsInterested
	out.Similarity = e.Similarity
	out.Tier = e.Tier
	return out
}

// FromEnrichedList converts a result set, never returning nil.
func FromEnrichedList(items []*domain.EnrichedListing) []Listing {
	out := make([]Listing, 0, len(items))
	for _, e := range items {
		out = append(out, FromEnriched(e))
	}
	return out
}

// FailedMedia reports an upload that did not make it into the listing.
type FailedMedia struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Reason   string `json:"reason"`
}

// ListingWrite is the result of a create or update.
type ListingWrite struct {
	Listing     Listing       `json:"listing"`
	FailedMedia []FailedMedia `json:"failed_media,omitempty"`
}
