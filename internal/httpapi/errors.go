package httpapi

import (
	"encoding/json"
	"net/http"

	"wawachat/internal/hub"
	"wawachat/internal/loader"
	"wawachat/internal/session"
	"wawachat/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusFor maps well-known session and loader errors to HTTP status codes.
func statusFor(err error) int {
	if _, _, ok := session.IsValidation(err); ok {
		return http.StatusBadRequest
	}
	if session.IsBusy(err) || loader.IsLoadPending(err) {
		return http.StatusConflict
	}
	if session.IsNotReady(err) {
		return http.StatusServiceUnavailable
	}
	if session.IsGeneration(err) {
		return http.StatusBadGateway
	}
	if _, ok := loader.IsLoadError(err); ok {
		return http.StatusBadGateway
	}
	if hub.IsArtifactNotFound(err) {
		return http.StatusNotFound
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
