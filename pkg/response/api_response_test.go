package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendStats(t *testing.T) {
	rec := httptest.NewRecorder()
	SendStats(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]int{"total": 3})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"total": float64(3)}, body["stats"])
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "data")
}

func TestSendServiceUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	SendServiceUnavailable(rec, httptest.NewRequest(http.MethodGet, "/health", nil), "datastore unreachable")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "datastore unreachable", body["error"])
	assert.Equal(t, "SERVICE_UNAVAILABLE", body["code"])
}
