package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"questlogAPI/internal/apperr"
)

const handlerTimeout = 5 // seconds

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("respondWithJSON: failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithServiceError maps sentinel errors to HTTP statuses. Anything
// unrecognized is a 500 with a generic body so internals never leak.
func respondWithServiceError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("%s: %v", operation, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
