package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/http/response"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	data := map[string]string{"id": "lst-123"}

	out, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	env, ok := out.(response.Envelope)
	require.True(t, ok)
	assert.Equal(t, 1, env.Version)
	assert.True(t, env.Success)
	assert.Equal(t, data, env.Data)
}

func TestEnvelopeTransformer_Error(t *testing.T) {
	apiErr := &APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "listing not found"}

	out, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)

	env, ok := out.(response.Envelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "listing not found", env.Error)
	assert.Nil(t, env.Data)
}

func TestEnvelopeTransformer_PassesEnvelopes(t *testing.T) {
	in := response.Envelope{Version: 1, Success: true, Data: "x"}

	out, err := EnvelopeTransformer(nil, "200", in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
