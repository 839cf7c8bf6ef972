package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/validation"
)

type registerRequest struct {
	WhatsAppNumber string `json:"whatsapp_number" validate:"required,whatsapp"`
	Password       string `json:"password" validate:"required,min=6,max=1024"`
	FirstName      string `json:"first_name" validate:"required"`
	UserType       string `json:"user_type" validate:"required,user_type"`
	AccountType    string `json:"account_type,omitempty" validate:"omitempty,account_type"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
}

type listingForm struct {
	Kind string `form:"kind" validate:"listing_kind"`
}

func valid() registerRequest {
	return registerRequest{
		WhatsAppNumber: "+237 699 00 11 22",
		Password:       "secret1",
		FirstName:      "Awa",
		UserType:       "seller",
	}
}

func TestValidator_Valid(t *testing.T) {
	assert.NoError(t, validation.New().Validate(valid()))
}

func TestValidator_FieldErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name   string
		mutate func(*registerRequest)
		field  string
		msg    string
	}{
		{"missing name", func(r *registerRequest) { r.FirstName = "" }, "first_name", "is required"},
		{"short password", func(r *registerRequest) { r.Password = "abc" }, "password", "must be at least 6 characters"},
		{"bad phone", func(r *registerRequest) { r.WhatsAppNumber = "12-34" }, "whatsapp_number", "must be a phone number with 8 to 15 digits"},
		{"bad user type", func(r *registerRequest) { r.UserType = "admin" }, "user_type", "must be seller or buyer"},
		{"bad account type", func(r *registerRequest) { r.AccountType = "corp" }, "account_type", "must be individual or business"},
		{"bad email", func(r *registerRequest) { r.Email = "nope" }, "email", "must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			err := v.Validate(req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.msg, details[tt.field])
		})
	}
}

func TestValidator_FormTagNames(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(listingForm{Kind: ""}))
	assert.NoError(t, v.Validate(listingForm{Kind: "need"}))

	err := v.Validate(listingForm{Kind: "service"})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Details, "kind")
}
