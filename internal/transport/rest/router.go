package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"turnping/internal/storage"
)

// ModeReporter exposes which storage backend is serving calls
type ModeReporter interface {
	Mode() storage.Mode
}

// NewRouter creates the operational router. Game routes are served by
// the web front end, not here.
func NewRouter(store ModeReporter) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"storage": store.Mode().String(),
		})
	}).Methods("GET")

	return r
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
