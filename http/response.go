package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/photozip"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the error response for failures that happen before
// any archive bytes are sent.
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	// Listing failures wrap ErrNotFound when the directory vanished after
	// startup; that is still a server-side fault, so check it first.
	if errors.Is(err, photozip.ErrDirectoryList) {
		WriteError(w, http.StatusInternalServerError, "directory_unavailable", "Archive directory could not be read")
		return
	}

	if errors.Is(err, photozip.ErrProcessSpawn) {
		WriteError(w, http.StatusInternalServerError, "archiver_unavailable", "Archiver could not be started")
		return
	}

	if errors.Is(err, photozip.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "Archive not found")
		return
	}

	if errors.Is(err, photozip.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
		return
	}

	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}
