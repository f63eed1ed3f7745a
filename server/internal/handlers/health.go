package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hugscape/storefront/server/internal/httputil"
)

// Health reports liveness and database reachability
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code, db := "ok", http.StatusOK, "ok"
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			status, code, db = "degraded", http.StatusServiceUnavailable, "unreachable"
		}
	}

	httputil.WriteJSON(w, code, map[string]string{
		"status":   status,
		"database": db,
	})
}
