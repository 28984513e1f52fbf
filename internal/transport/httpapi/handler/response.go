package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/annuksk07-cloud/xpenseflow/internal/shared/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondCommandError maps an engine command failure onto an HTTP status
func respondCommandError(w http.ResponseWriter, err error) {
	if apperrors.IsValidation(err) {
		respondError(w, apperrors.ToUserMessage(err), http.StatusBadRequest)
		return
	}
	respondError(w, apperrors.ToUserMessage(err), http.StatusInternalServerError)
}
