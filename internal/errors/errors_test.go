package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeTooLarge, http.StatusRequestEntityTooLarge},
		{CodeUpstream, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesCode(t *testing.T) {
	err := Forbidden("you cannot repost your own listing")
	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("repost: %w", err)
	assert.True(t, Is(wrapped, ErrForbidden))
}

func TestError_Cause(t *testing.T) {
	err := Upstream("media upload failed", io.ErrUnexpectedEOF)
	assert.Equal(t, "media upload failed: unexpected EOF", err.Error())
	assert.True(t, Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
}

func TestError_WithDetails(t *testing.T) {
	base := Validation("invalid input")
	detailed := base.WithDetails(map[string]string{"title": "required"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"title": "required"}, detailed.Details)
	assert.True(t, Is(detailed, ErrValidation))
}
