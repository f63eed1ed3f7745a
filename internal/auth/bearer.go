package auth

import (
	"errors"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

var (
	// ErrMissingBearer is returned when the Authorization header is absent
	ErrMissingBearer = errors.New("missing authorization header")

	// ErrMalformedBearer is returned when the header lacks the "Bearer " prefix
	// or carries an empty token
	ErrMalformedBearer = errors.New("invalid authorization format, expected 'Bearer <token>'")
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The prefix is matched exactly, as sent by the frontend.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingBearer
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMalformedBearer
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrMalformedBearer
	}
	return token, nil
}

// BearerFromRequest reads the bearer token from r's Authorization header
func BearerFromRequest(r *http.Request) (string, error) {
	return BearerToken(r.Header.Get("Authorization"))
}
