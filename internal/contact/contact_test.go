package contact

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/domain"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		kind domain.Kind
		want string
	}{
		{domain.KindNeed, `Bonjour, je peux vous aider pour votre besoin : "Plombier" publie sur Link`},
		{domain.KindAnnouncement, `Bonjour, je suis interesse par votre annonce "Plombier" et aimerais en savoir davantage.`},
		{domain.KindProduct, `Bonjour, je suis interesse par votre produit "Plombier" publie sur Link.`},
		{"", `Bonjour, je suis interesse par votre produit "Plombier" publie sur Link.`},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.kind, "Plombier"))
		})
	}
}

func TestBuild(t *testing.T) {
	target := domain.ContactTarget{
		ListingID:      "lst-orig",
		Title:          "Vélo & casque",
		Kind:           domain.KindProduct,
		WhatsAppNumber: "+237 6 99 00 11 22",
		ViaOriginal:    true,
	}

	c := Build(target, "lst-repost", "https://api.link.example/")

	assert.Equal(t, "+237 6 99 00 11 22", c.WhatsAppNumber)
	assert.Equal(t,
		"Bonjour, je suis interesse par votre produit \"Vélo & casque\" publie sur Link.\n"+
			"Lien du produit : https://api.link.example/share/listings/lst-repost",
		c.Message)

	require.True(t, strings.HasPrefix(c.DeepLink, "https://wa.me/237699001122?text="))
	assert.NotContains(t, c.DeepLink, "+")
	assert.NotContains(t, c.DeepLink, " ")

	u, err := url.Parse(c.DeepLink)
	require.NoError(t, err)
	assert.Equal(t, c.Message, u.Query().Get("text"))
}

func TestShareURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/share/listings/lst-1", ShareURL("http://localhost:8080", "lst-1"))
	assert.Equal(t, "http://localhost:8080/share/listings/lst-1", ShareURL("http://localhost:8080/", "lst-1"))
}
