package main

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hugscape/storefront/server/internal/handlers"
	"github.com/hugscape/storefront/server/internal/middleware"
)

func createRouter(h *handlers.Handler, authMw *middleware.AuthMiddleware, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.LogRequest)

	router.HandleFunc("/health", h.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Auth routes
	router.HandleFunc("/auth/google/login", h.GoogleLogin).Methods("GET")
	router.HandleFunc("/auth/google/callback", h.GoogleCallback).Methods("GET")
	router.HandleFunc("/auth/login", h.ProfileLogin).Methods("POST")
	router.HandleFunc("/auth/refresh", h.Refresh).Methods("POST")
	router.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	router.HandleFunc("/auth/test", h.AuthTest).Methods("GET")
	router.Handle("/auth/profile", authMw.RequireAuth(http.HandlerFunc(h.GetProfile))).Methods("GET")
	router.Handle("/auth/profile", authMw.RequireAuth(http.HandlerFunc(h.UpdateProfile))).Methods("PUT")

	// Catalog reads are public, writes need a signed-in caller
	products := router.PathPrefix("/products").Subrouter()
	products.HandleFunc("", h.ListProducts).Methods("GET")
	products.HandleFunc("/{id}", h.GetProduct).Methods("GET")
	products.Handle("", authMw.RequireAuth(http.HandlerFunc(h.CreateProduct))).Methods("POST")
	products.Handle("/{id}", authMw.RequireAuth(http.HandlerFunc(h.UpdateProduct))).Methods("PUT")
	products.Handle("/{id}", authMw.RequireAuth(http.HandlerFunc(h.DeleteProduct))).Methods("DELETE")
	products.Handle("/{id}/stock", authMw.RequireAuth(http.HandlerFunc(h.UpdateStock))).Methods("PATCH")

	var handler http.Handler = router
	handler = cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})(handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RealIP(handler)
	handler = chimw.RequestID(handler)

	return handler
}
