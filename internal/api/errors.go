package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/linkmarket/link-server/internal/errors"
	"github.com/linkmarket/link-server/internal/http/response"
	"github.com/linkmarket/link-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// FieldError is one failed input check reported by huma.
type FieldError struct {
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		var fields []FieldError
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return &APIError{
					status:  storeErr.HTTPCode(),
					Code:    response.CodeForStatus(storeErr.HTTPCode()),
					Message: storeErr.Message,
				}
			}

			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				fields = append(fields, FieldError{Location: detail.Location, Message: detail.Message})
			}
		}

		// Schema violations are reported like any other validation failure.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		apiErr := &APIError{
			status:  status,
			Code:    response.CodeForStatus(status),
			Message: message,
		}
		if len(fields) > 0 {
			apiErr.Details = fields
		}
		if apiErr.Code == "" {
			apiErr.Code = string(domainerrors.CodeInternal)
		}
		return apiErr
	}
}
