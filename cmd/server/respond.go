package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"example.com/socialnet/internal/engage"
	"example.com/socialnet/internal/imagehost"
	"example.com/socialnet/internal/store"
)

// All responses share the {success, message?, ...payload} envelope.

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter, status int, message string, payload map[string]any) {
	body := map[string]any{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func respondFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

// respondErr maps the error taxonomy onto HTTP statuses. Unrecognized
// errors are internal and must not leak details.
func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engage.ErrValidation), errors.Is(err, engage.ErrInvalidOperation):
		respondFail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engage.ErrForbidden):
		respondFail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		respondFail(w, http.StatusConflict, err.Error())
	case errors.Is(err, imagehost.ErrUpload):
		respondFail(w, http.StatusInternalServerError, err.Error())
	default:
		respondFail(w, http.StatusInternalServerError, "internal error")
	}
}
