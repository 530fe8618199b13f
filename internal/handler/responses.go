package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the error payload shape for all endpoints
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ClaimResponse is the payload for territory claim attempts
type ClaimResponse struct {
	Status string `json:"status"`
}

// Client-facing error messages. Internal error details never reach the
// response body; they go to the log with the request ID.
const (
	ErrMsgInvalidRequest    = "Invalid request body"
	ErrMsgInvalidAction     = "invalid action string"
	ErrMsgInvalidTransition = "Friend request state does not allow that action"
	ErrMsgServerError       = "Server error occurred. Please try again."
	ErrMsgUnavailable       = "Server is temporarily unavailable. Please try again later."
	ErrMsgUnauthenticated   = "Authentication required"
)

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already written, nothing to do but log.
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
