package domain

import "strings"

// MediaType distinguishes pictures from videos.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaTypeFromMIME maps a sniffed content type to a MediaType.
// ok is false for anything that is neither an image nor a video.
func MediaTypeFromMIME(mime string) (MediaType, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return MediaTypeImage, true
	case strings.HasPrefix(mime, "video/"):
		return MediaTypeVideo, true
	default:
		return "", false
	}
}

// Media is one ordered attachment of a listing.
type Media struct {
	ID        string    `json:"id"`
	ListingID string    `json:"-"`
	URL       string    `json:"url"`
	Order     int       `json:"order"`
	Type      MediaType `json:"type"`
	BlurHash  string    `json:"blurhash,omitempty"`
}
