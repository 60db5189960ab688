// Package response writes JSON bodies for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"

	"backoffice/pkg/apperror"
	"backoffice/pkg/logger"
)

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

// Error writes {"error": message} with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// FromError maps err to a status code and writes it. Server errors are logged.
func FromError(w http.ResponseWriter, err error) {
	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Sugar.Errorf("Request failed: %v", err)
	}
	Error(w, status, apperror.Message(err))
}
