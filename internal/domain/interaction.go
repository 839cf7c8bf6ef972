package domain

// ViewerKey identifies a viewer for view deduplication. Authenticated viewers are
// keyed by user id, anonymous ones by client address.
func ViewerKey(userID, clientIP string) string {
	if userID != "" {
		return "user:" + userID
	}
	return "ip:" + clientIP
}

// ViewResult is the outcome of registering a view.
type ViewResult struct {
	IsNewView  bool `json:"is_new_view"`
	ViewsCount int  `json:"views_count"`
}

// Counts are the recomputed interaction counters of a listing.
type Counts struct {
	Views     int
	Interests int
	Comments  int
}

// ContactTarget is who an interest message is routed to.
type ContactTarget struct {
	ListingID      string
	Title          string
	Kind           Kind
	WhatsAppNumber string
	// ViaOriginal is true when the number was taken from the original of a repost.
	ViaOriginal bool
}

// Contact is the outbound message payload returned by an interest mark.
type Contact struct {
	WhatsAppNumber string `json:"whatsapp_number"`
	Message        string `json:"message"`
	DeepLink       string `json:"deep_link"`
}

// InterestResult is the outcome of marking interest.
type InterestResult struct {
	AlreadyInterested bool    `json:"already_interested"`
	ViewsCount        int     `json:"views_count"`
	InterestedCount   int     `json:"interested_count"`
	Contact           Contact `json:"contact"`
}
