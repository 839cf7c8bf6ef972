package domain

import "strings"

// UserType is the marketplace role chosen at registration.
type UserType string

const (
	// UserTypeSeller can publish listings.
	UserTypeSeller UserType = "seller"
	// UserTypeBuyer browses, comments and marks interest.
	UserTypeBuyer UserType = "buyer"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeSeller || t == UserTypeBuyer
}

// AccountType distinguishes private sellers from businesses.
type AccountType string

const (
	// AccountTypeIndividual is the default account subtype.
	AccountTypeIndividual AccountType = "individual"
	// AccountTypeBusiness marks a registered business.
	AccountTypeBusiness AccountType = "business"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == AccountTypeIndividual || t == AccountTypeBusiness
}

// User is a registered marketplace account.
type User struct {
	Record
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Email          string      `json:"email,omitempty"`
	WhatsAppNumber string      `json:"whatsapp_number"`
	PasswordHash   string      `json:"-"`
	UserType       UserType    `json:"user_type"`
	AccountType    AccountType `json:"account_type"`
	Location
	Gender       string `json:"gender,omitempty"`
	Age          int    `json:"age,omitempty"`
	ProductsSold string `json:"products_sold,omitempty"`
}

// DisplayName returns "First Last", skipping whichever half is empty.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsSeller reports whether the user may publish listings.
func (u *User) IsSeller() bool {
	return u.UserType == UserTypeSeller
}

// SellerSummary is a seller search hit.
type SellerSummary struct {
	ID             string      `json:"id"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	AccountType    AccountType `json:"account_type"`
	WhatsAppNumber string      `json:"whatsapp_number"`
	Location
	ProductsSold string  `json:"products_sold,omitempty"`
	ListingCount int     `json:"listing_count"`
	Similarity   float64 `json:"similarity,omitempty"`
}
