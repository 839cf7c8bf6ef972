package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/linkmarket/link-server/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{
		Code:    http.StatusNotFound,
		Message: "not found",
	}

	assert.Equal(t, "not found", err.Error())
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := store.ErrNotFound.WithCause(cause)

	assert.Contains(t, err.Error(), "resource not found")
	assert.Contains(t, err.Error(), "underlying error")
	assert.ErrorIs(t, err, cause)
}

func TestError_IsMatchesDerivedErrors(t *testing.T) {
	err := fmt.Errorf("get listing: %w", store.ErrNotFound.WithMessage("listing not found"))

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NotErrorIs(t, err, store.ErrAlreadyExists)
	assert.Equal(t, http.StatusNotFound, store.ErrNotFound.HTTPCode())
}
