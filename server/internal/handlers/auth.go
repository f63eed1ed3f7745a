package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hugscape/storefront/internal/auth"
	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/services"
	"github.com/hugscape/storefront/internal/pkg/urlutil"
	"github.com/hugscape/storefront/server/internal/httputil"
)

// sessionResponse is returned by every endpoint that issues a token
type sessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      *entities.User `json:"user"`
	Message   string         `json:"message,omitempty"`
}

func newSessionResponse(s *services.Session, message string) sessionResponse {
	return sessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: s.User, Message: message}
}

// GoogleLogin redirects the browser to Google's consent screen
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{
			Error:   "not_found",
			Message: "Google login is not configured",
		})
		return
	}

	state, verifier, err := h.state.Begin(w, r)
	if err != nil {
		h.log.Error("failed to start oauth flow", slog.String("error", err.Error()))
		httputil.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, h.google.AuthCodeURL(state, verifier), http.StatusFound)
}

// GoogleCallback completes the OAuth flow and hands the token to the
// frontend through a redirect
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		h.log.Warn("oauth error received",
			slog.String("error", errParam),
			slog.String("error_description", q.Get("error_description")))
		h.redirectFailure(w, r, "access_denied")
		return
	}

	verifier, err := h.state.Consume(w, r, q.Get("state"))
	if err != nil {
		h.log.Warn("invalid oauth state", slog.String("error", err.Error()))
		h.redirectFailure(w, r, "invalid_state")
		return
	}

	code := q.Get("code")
	if code == "" {
		h.redirectFailure(w, r, "missing_code")
		return
	}

	profile, err := h.google.Exchange(r.Context(), code, verifier)
	if err != nil {
		h.log.Error("failed to exchange authorization code", slog.String("error", err.Error()))
		h.redirectFailure(w, r, "exchange_failed")
		return
	}

	sess, err := h.sessions.Login(r.Context(), *profile)
	if err != nil {
		reason := "login_failed"
		switch {
		case services.IsConflict(err):
			reason = "retry"
		case errors.Is(err, services.ErrInvalidCredential):
			reason = "account_disabled"
		}
		h.log.Warn("google login failed", slog.String("reason", reason), slog.String("error", err.Error()))
		h.redirectFailure(w, r, reason)
		return
	}

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		h.redirectFailure(w, r, "login_failed")
		return
	}

	h.redirectFrontend(w, r, url.Values{
		"token": {sess.Token},
		"user":  {string(userJSON)},
	})
}

func (h *Handler) redirectFailure(w http.ResponseWriter, r *http.Request, reason string) {
	h.redirectFrontend(w, r, url.Values{"error": {reason}})
}

func (h *Handler) redirectFrontend(w http.ResponseWriter, r *http.Request, params url.Values) {
	target, err := urlutil.BuildCallbackURL(h.cfg.FrontendCallbackURL, params)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ProfileLogin accepts a profile from a trusted upstream that already
// completed the Google handshake. Disabled unless configured.
func (h *Handler) ProfileLogin(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.AllowProfileLogin {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "not_found"})
		return
	}

	var profile entities.Profile
	if err := decodeJSON(r, &profile); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	sess, err := h.sessions.Login(r.Context(), profile)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newSessionResponse(sess, "Authentication successful"))
}

// GetProfile returns the authenticated caller
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// UpdateProfile changes the caller's display fields
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w)
		return
	}

	var update services.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	updated, err := h.profiles.UpdateProfile(r.Context(), user.ID, update)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user":    updated,
		"message": "Profile updated successfully",
	})
}

// Refresh exchanges a valid token for one with a full lifetime
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := auth.BearerFromRequest(r)
	if err != nil {
		httputil.WriteUnauthorized(w)
		return
	}

	sess, err := h.sessions.Refresh(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newSessionResponse(sess, "Token refreshed successfully"))
}

// Logout acknowledges a client-side logout. Tokens are not revoked.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// AuthTest reports that the auth surface is reachable
func (h *Handler) AuthTest(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":        "OAuth2 test endpoint working",
		"status":         "success",
		"timestamp":      time.Now().UnixMilli(),
		"googleEnabled":  h.google != nil,
		"profileLoginOn": h.cfg.AllowProfileLogin,
	})
}
