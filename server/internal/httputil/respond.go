// Package httputil holds the JSON response helpers shared by handlers and
// middleware.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugscape/storefront/internal/auth"
	"github.com/hugscape/storefront/internal/domain/repositories"
	"github.com/hugscape/storefront/internal/domain/services"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// WriteJSON writes data as JSON with the given status code
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteUnauthorized writes the single 401 body used for every credential failure
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="hugscape"`)
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: "Invalid or missing credentials",
	})
}

// WriteBadRequest writes a 400 with message
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: message})
}

// WriteError maps a service error onto a status code. Internal errors are
// logged and replaced with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredential),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingBearer),
		errors.Is(err, auth.ErrMalformedBearer):
		WriteUnauthorized(w)

	case errors.Is(err, services.ErrValidation):
		WriteBadRequest(w, err.Error())

	case errors.Is(err, repositories.ErrUserNotFound):
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "User not found"})

	case errors.Is(err, repositories.ErrProductNotFound):
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Product not found"})

	case errors.Is(err, repositories.ErrConflict):
		w.Header().Set("Retry-After", "1")
		WriteJSON(w, http.StatusConflict, ErrorResponse{
			Error:     "conflict",
			Message:   "Concurrent update, please retry",
			Retryable: true,
		})

	default:
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal",
			Message: "Internal server error",
		})
	}
}
