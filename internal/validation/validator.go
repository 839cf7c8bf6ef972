// Package validation checks request structs with go-playground/validator and
// reports failures as domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/normalize"
)

// Minimum and maximum digit counts accepted for a WhatsApp number.
const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the marketplace tags registered:
// whatsapp, user_type, account_type and listing_kind.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			if name, _, _ := strings.Cut(fld.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	mustRegister(v, "whatsapp", func(fl validator.FieldLevel) bool {
		n := len(normalize.Phone(fl.Field().String()))
		return n >= minPhoneDigits && n <= maxPhoneDigits
	})
	mustRegister(v, "user_type", func(fl validator.FieldLevel) bool {
		return domain.UserType(fl.Field().String()).Valid()
	})
	mustRegister(v, "account_type", func(fl validator.FieldLevel) bool {
		return domain.AccountType(fl.Field().String()).Valid()
	})
	mustRegister(v, "listing_kind", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseKind(fl.Field().String())
		return err == nil
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "whatsapp":
		return fmt.Sprintf("must be a phone number with %d to %d digits", minPhoneDigits, maxPhoneDigits)
	case "user_type":
		return "must be seller or buyer"
	case "account_type":
		return "must be individual or business"
	case "listing_kind":
		return "must be product, announcement or need"
	default:
		return "is invalid"
	}
}
