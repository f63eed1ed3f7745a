package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/services"
	"github.com/hugscape/storefront/server/internal/handlers"
	"github.com/hugscape/storefront/server/internal/middleware"
)

type rejectAll struct{}

func (rejectAll) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	return nil, services.ErrInvalidCredential
}

func newTestRouter() http.Handler {
	h := handlers.New(nil, nil, nil, nil, nil, nil, handlers.Config{FrontendCallbackURL: "http://localhost:3000/cb"})
	return createRouter(h, middleware.NewAuthMiddleware(rejectAll{}), []string{"http://localhost:3000"})
}

func TestRouter_WritesRequireAuth(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method, path string
	}{
		{http.MethodPost, "/products"},
		{http.MethodPut, "/products/1"},
		{http.MethodDelete, "/products/1"},
		{http.MethodPatch, "/products/1/stock?quantity=3"},
		{http.MethodGet, "/auth/profile"},
		{http.MethodPut, "/auth/profile"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			req.Header.Set("Authorization", "Bearer nope")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health", "/metrics", "/auth/test"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionKeys(t *testing.T) {
	hash, enc, err := sessionKeys("")
	require.NoError(t, err)
	assert.Len(t, hash, 32)
	assert.Len(t, enc, 32)

	key32 := base64.StdEncoding.EncodeToString(make([]byte, 32))
	hash, enc, err = sessionKeys(key32)
	require.NoError(t, err)
	assert.Len(t, hash, 32)
	assert.Nil(t, enc)

	_, _, err = sessionKeys(base64.StdEncoding.EncodeToString(make([]byte, 10)))
	assert.Error(t, err)

	_, _, err = sessionKeys("not base64!!")
	assert.Error(t, err)
}
