package service

import (
	"errors"
	"net/http"

	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/store"
	"github.com/linkmarket/link-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// mapStoreError converts persistence errors into domain errors so handlers
// only ever see one error family. Other errors pass through unchanged.
func mapStoreError(err error) error {
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		return err
	}
	switch storeErr.Code {
	case http.StatusNotFound:
		return domainerrors.NotFound(storeErr.Message)
	case http.StatusConflict:
		return domainerrors.Conflict(storeErr.Message)
	case http.StatusBadRequest:
		return domainerrors.Validation(storeErr.Message)
	default:
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "storage error")
	}
}
