package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/repositories"
)

// MaxBlobSize bounds a single stored document.
const MaxBlobSize = 1 << 20

// HandleGetState serves the last written blob for a key. A key that was
// never written is a 404, which clients treat as "no state yet".
func HandleGetState(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)["key"]
		value, err := repository.LoadBlob(r.Context(), key)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to load blob %s: %v", key, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(value); err != nil {
			log.Error("Failed to write response for %s: %v", key, err)
		}
	}
}

// HandlePutState stores a JSON blob under a key, last write wins.
func HandlePutState(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)["key"]
		value, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBlobSize))
		if err != nil {
			http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
			return
		}
		if !json.Valid(value) {
			http.Error(w, "Body must be valid JSON", http.StatusBadRequest)
			return
		}

		if err := repository.SaveBlob(r.Context(), key, value); err != nil {
			log.Error("Failed to save blob %s: %v", key, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
