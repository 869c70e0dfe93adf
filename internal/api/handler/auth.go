package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Rrens/smart-assistant/internal/api/response"
	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/service"
)

// BackendLogout notifies the backend about a logout
type BackendLogout interface {
	Logout(ctx context.Context)
}

// AuthHandler exposes the auth manager
type AuthHandler struct {
	auth    *service.AuthManager
	backend BackendLogout
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthManager, backend BackendLogout) *AuthHandler {
	return &AuthHandler{auth: auth, backend: backend}
}

// State returns the current auth state
func (h *AuthHandler) State(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.auth.State())
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if !h.auth.Login(r.Context(), input) {
		response.Unauthorized(w, h.auth.State().Error)
		return
	}

	response.OK(w, h.auth.State())
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if !h.auth.Register(r.Context(), input) {
		response.BadRequest(w, h.auth.State().Error)
		return
	}

	response.Created(w, h.auth.State())
}

// Logout tells the backend (best effort) and clears the local session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.backend != nil {
		h.backend.Logout(r.Context())
	}
	h.auth.Logout()

	response.OK(w, h.auth.State())
}

// Check re-validates the stored session against the backend
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.auth.CheckAuth(r.Context())
	response.OK(w, h.auth.State())
}

// ClearError clears the last auth error
func (h *AuthHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearError()
	response.NoContent(w)
}
