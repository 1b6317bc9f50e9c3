// Package common provides shared HTTP helpers for the API handlers.
package common

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body of every non-2xx answer. Errors carries the
// per-field messages of a failed validation.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// WriteJSON encodes body before touching the response so an encoding failure
// still yields a clean 500.
func WriteJSON(w http.ResponseWriter, body any, status int) {
	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{Error: "Internal server error"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// WriteError answers with an ErrorResponse carrying message.
func WriteError(w http.ResponseWriter, message string, status int) {
	WriteJSON(w, ErrorResponse{Error: message}, status)
}

// WriteFieldErrors answers 422 with the per-field validation messages.
func WriteFieldErrors(w http.ResponseWriter, message string, fields map[string][]string) {
	WriteJSON(w, ErrorResponse{Error: message, Errors: fields}, http.StatusUnprocessableEntity)
}
