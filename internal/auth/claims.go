package auth

import (
	"time"

	"github.com/linkmarket/link-server/internal/domain"
)

// AccessClaims are the claims sealed inside a v4.local access token.
type AccessClaims struct {
	UserID   string          `json:"user_id"`
	UserType domain.UserType `json:"user_type"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
