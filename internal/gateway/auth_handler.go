package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/dukahub/storefront/internal/session"
)

type AuthHandler struct {
	registry *Registry
}

func NewAuthHandler(registry *Registry) *AuthHandler {
	return &AuthHandler{registry: registry}
}

type loginRequestDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IsAdmin      bool   `json:"is_admin"`
}

// Login stores the credential set issued by the backend's auth flow.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req loginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.AccessToken == "" {
		respondError(w, http.StatusBadRequest, "invalid_token", "access_token is required")
		return
	}

	err := s.Store.SetCredentials(r.Context(), session.Credentials{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		IsAdmin:      req.IsAdmin,
	})
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoginForm is the redirect target for unauthenticated admin requests.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"detail": "authentication required",
		"next":   r.URL.Query().Get("next"),
	})
}

// Logout clears the whole session-scoped credential set atomically and
// drops the in-memory store bundle; the next request starts clean.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	if err := s.Store.Clear(r.Context()); err != nil {
		handleStoreError(w, err)
		return
	}
	h.registry.Drop(s.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
