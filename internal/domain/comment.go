package domain

import "time"

// Comment is a message posted on a listing.
type Comment struct {
	Record
	ListingID  string `json:"listing_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

// NotificationType classifies notifications.
type NotificationType string

// NotificationComment is sent to a listing owner when someone comments.
const NotificationComment NotificationType = "comment"

// Notification is an inbox entry for a user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	RelatedID string           `json:"related_id"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
