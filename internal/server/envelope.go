// Package server implements the HTTP API for the hrdesk chat service.
package server

import (
	"encoding/json"
	"net/http"
)

// apiResponse is the envelope every JSON endpoint responds with.
type apiResponse struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Error      string              `json:"error,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	StatusCode int                 `json:"statusCode"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ok writes a 200 envelope wrapping data.
func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, apiResponse{
		Success:    true,
		Data:       data,
		StatusCode: http.StatusOK,
	})
}

// fail writes an error envelope with the given status.
func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{
		Success:    false,
		Error:      message,
		StatusCode: status,
	})
}

// validationError writes a 400 envelope carrying field-level errors.
func validationError(w http.ResponseWriter, errors map[string][]string) {
	writeJSON(w, http.StatusBadRequest, apiResponse{
		Success:    false,
		Error:      "Validation failed",
		Errors:     errors,
		StatusCode: http.StatusBadRequest,
	})
}
