package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalEnvelope(t *testing.T, status string, v any) map[string]any {
	t.Helper()

	result, err := EnvelopeTransformer(nil, status, v)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelope_Success(t *testing.T) {
	out := marshalEnvelope(t, "200", map[string]string{"id": "tree-123"})

	// The version field is named exactly "v"; clients key on it.
	assert.Equal(t, float64(1), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Contains(t, out, "data")
	assert.NotContains(t, out, "error")
	assert.NotContains(t, out, "code")
}

func TestEnvelope_SuccessNilData(t *testing.T) {
	out := marshalEnvelope(t, "204", nil)

	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
}

func TestEnvelope_Error(t *testing.T) {
	out := marshalEnvelope(t, "404", &APIError{
		status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "page not found",
	})

	assert.Equal(t, float64(1), out["v"])
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "page not found", out["error"])
	assert.Equal(t, "NOT_FOUND", out["code"])
	assert.Equal(t, "page not found", out["message"])
	assert.NotContains(t, out, "data")
}

func TestEnvelope_ErrorDetails(t *testing.T) {
	details := map[string]string{"bio": "must be at most 200 characters"}
	out := marshalEnvelope(t, "400", &APIError{
		status:  http.StatusBadRequest,
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: details,
	})

	assert.Equal(t, false, out["success"])
	assert.Contains(t, out, "details")
}

func TestEnvelope_NonSuccessStatusWithoutAPIError(t *testing.T) {
	out := marshalEnvelope(t, "500", map[string]string{"oops": "true"})

	assert.Equal(t, false, out["success"])
}
