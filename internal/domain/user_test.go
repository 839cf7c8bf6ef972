package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		first, last string
		expected    string
	}{
		{"Awa", "Mbarga", "Awa Mbarga"},
		{"Awa", "", "Awa"},
		{"", "Mbarga", "Mbarga"},
	}

	for _, tt := range tests {
		u := &User{FirstName: tt.first, LastName: tt.last}
		assert.Equal(t, tt.expected, u.DisplayName())
	}
}

func TestUserType_Valid(t *testing.T) {
	assert.True(t, UserTypeSeller.Valid())
	assert.True(t, UserTypeBuyer.Valid())
	assert.False(t, UserType("admin").Valid())
	assert.True(t, AccountTypeBusiness.Valid())
	assert.False(t, AccountType("").Valid())
}

func TestViewerKey(t *testing.T) {
	assert.Equal(t, "user:usr-1", ViewerKey("usr-1", "10.0.0.1"))
	assert.Equal(t, "ip:10.0.0.1", ViewerKey("", "10.0.0.1"))
}
