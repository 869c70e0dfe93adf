package middleware

import (
	"net/http"

	"github.com/Rrens/smart-assistant/internal/api/response"
)

// AuthChecker reports whether a user is currently signed in
type AuthChecker interface {
	IsAuthenticated() bool
}

// AuthMiddleware guards routes that need a signed-in user
type AuthMiddleware struct {
	checker AuthChecker
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(checker AuthChecker) *AuthMiddleware {
	return &AuthMiddleware{checker: checker}
}

// RequireAuthenticated rejects requests while no user is signed in
func (m *AuthMiddleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.checker.IsAuthenticated() {
			response.Unauthorized(w, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
