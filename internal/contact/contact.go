// Package contact builds the WhatsApp message and deep link handed to interested buyers.
package contact

import (
	"net/url"
	"strings"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/normalize"
)

const deepLinkBase = "https://wa.me/"

// ShareURL is the public preview page of a listing.
func ShareURL(shareBase, listingID string) string {
	return strings.TrimSuffix(shareBase, "/") + "/share/listings/" + listingID
}

// Message returns the greeting sent for a listing of the given kind.
func Message(kind domain.Kind, title string) string {
	switch kind {
	case domain.KindNeed:
		return `Bonjour, je peux vous aider pour votre besoin : "` + title + `" publie sur Link`
	case domain.KindAnnouncement:
		return `Bonjour, je suis interesse par votre annonce "` + title + `" et aimerais en savoir davantage.`
	default:
		return `Bonjour, je suis interesse par votre produit "` + title + `" publie sur Link.`
	}
}

// Build returns the contact payload for target. actedOnID is the listing the
// buyer interacted with, which for a repost differs from the one messaged about.
func Build(target domain.ContactTarget, actedOnID, shareBase string) domain.Contact {
	text := Message(target.Kind, target.Title) + "\nLien du produit : " + ShareURL(shareBase, actedOnID)
	return domain.Contact{
		WhatsAppNumber: target.WhatsAppNumber,
		Message:        text,
		DeepLink:       DeepLink(target.WhatsAppNumber, text),
	}
}

// DeepLink returns a wa.me link that opens a chat with number prefilled with text.
func DeepLink(number, text string) string {
	return deepLinkBase + normalize.Digits(number) + "?text=" + escapeComponent(text)
}

// escapeComponent percent-encodes s with spaces as %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
