package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"guardian/internal/apperr"
)

// JSONResponse sends a JSON response
func JSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("⚠️  Failed to encode JSON response: %v", err)
	}
}

// JSONError sends a JSON error envelope with the given status code
func JSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": message})
}

// JSONAppError translates a typed application error into the wire envelope.
func JSONAppError(w http.ResponseWriter, err error) {
	JSONError(w, err.Error(), apperr.StatusOf(err))
}
