package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnping/internal/memory"
	"turnping/internal/storage"
	"turnping/internal/storage/storagetest"
)

func TestHealth(t *testing.T) {
	durable := storagetest.NewFlaky(memory.NewStore())
	hybrid := storage.NewHybrid(durable, memory.NewStore(), nil)
	router := NewRouter(hybrid)

	health := func() map[string]string {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		return body
	}

	assert.Equal(t, map[string]string{"status": "ok", "storage": "durable"}, health())

	durable.SetDown(true)
	_, err := hybrid.GetGameSessionByCode(t.Context(), "ABC123")
	require.NoError(t, err)

	assert.Equal(t, "volatile", health()["storage"])
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	router := NewRouter(storage.NewHybrid(nil, memory.NewStore(), nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
