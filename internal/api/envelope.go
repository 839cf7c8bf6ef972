package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/linkmarket/link-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the versioned envelope.
// Errors produced by RegisterErrorHandler become failure envelopes.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope, *response.Envelope:
		return v, nil
	case *APIError:
		return response.Envelope{
			Version: response.EnvelopeVersion,
			Success: false,
			Error:   body.Message,
			Code:    body.Code,
			Details: body.Details,
		}, nil
	}
	return response.Envelope{
		Version: response.EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
