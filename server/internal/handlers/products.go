package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hugscape/storefront/internal/domain/services"
	"github.com/hugscape/storefront/server/internal/httputil"
)

// ListProducts returns every active product
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, products)
}

// GetProduct returns one product by id
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// CreateProduct adds a product to the catalog
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	product, err := h.products.Create(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, product)
}

// UpdateProduct replaces a product's attributes
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	product, err := h.products.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// DeleteProduct soft-deletes a product
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock sets the stock level from the quantity query parameter
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		httputil.WriteBadRequest(w, "quantity must be an integer")
		return
	}

	if err := h.products.UpdateStock(r.Context(), mux.Vars(r)["id"], quantity); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
