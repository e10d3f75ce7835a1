package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stash-sh/stash"
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

// HandleError maps the error taxonomy onto HTTP statuses. Each
// per-request error maps deterministically to one status; nothing here
// is retried or treated as a crash.
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, stash.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Item not found")

	case errors.Is(err, stash.ErrAdmissionDenied):
		WriteError(w, http.StatusForbidden, "access_denied", "Access denied")

	case errors.Is(err, stash.ErrAuthScheme):
		WriteError(w, http.StatusForbidden, "bad_scheme", "Unsupported authorization scheme")

	case errors.Is(err, stash.ErrInvalidToken):
		WriteError(w, http.StatusBadRequest, "invalid_token", "Invalid bearer token")

	case errors.Is(err, stash.ErrNegotiation):
		WriteError(w, http.StatusBadRequest, "unsupported_type", "Unsupported content type")

	case errors.Is(err, stash.ErrMalformedPayload):
		WriteError(w, http.StatusBadRequest, "malformed_payload", "Request body cannot be decoded")

	case errors.Is(err, stash.ErrPayloadTooLarge):
		WriteError(w, http.StatusForbidden, "too_large", "Request is too large")

	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
