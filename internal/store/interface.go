// Package store defines the persistence interface for the marketplace.
package store

import (
	"context"
	"time"

	"github.com/linkmarket/link-server/internal/domain"
)

// Store defines the interface for all persistence operations.
// Implementations live in the sqlite and postgres subpackages.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByWhatsApp(ctx context.Context, number string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error
	SearchSellers(ctx context.Context, q SellerSearch) ([]domain.SellerSummary, error)

	// Listings
	CreateListing(ctx context.Context, listing *domain.Listing) error
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	UpdateListing(ctx context.Context, listing *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
	AppendMedia(ctx context.Context, listingID string, media []domain.Media) ([]domain.Media, error)
	RemoveMedia(ctx context.Context, listingID string, mediaIDs []string) (int, error)
	EnrichListing(ctx context.Context, id, viewerID string) (*domain.EnrichedListing, error)
	Feed(ctx context.Context, q FeedQuery) ([]*domain.EnrichedListing, error)
	SearchListings(ctx context.Context, q ListingSearch) ([]*domain.EnrichedListing, error)
	Autocomplete(ctx context.Context, q AutocompleteQuery) ([]string, error)

	// Interactions
	RegisterView(ctx context.Context, listingID, viewerKey string) (domain.ViewResult, error)
	CountInteractions(ctx context.Context, listingID string) (domain.Counts, error)
	AddInterest(ctx context.Context, listingID, userID string) (bool, error)
	RemoveInterest(ctx context.Context, listingID, userID string) error
	ContactTarget(ctx context.Context, listingID string) (domain.ContactTarget, error)
	CreateRepost(ctx context.Context, repost *domain.Listing) error
	HasReposted(ctx context.Context, originalID, userID string) (bool, error)

	// Comments and notifications
	CreateComment(ctx context.Context, comment *domain.Comment, notification *domain.Notification) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, listingID string, page Page) ([]*domain.Comment, error)
	ListNotifications(ctx context.Context, userID string, page Page) ([]*domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error

	// Admin
	AdminStats(ctx context.Context, now time.Time) (*domain.AdminStats, error)
}
