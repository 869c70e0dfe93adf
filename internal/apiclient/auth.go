package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/events"
	"github.com/Rrens/smart-assistant/internal/notify"
	"github.com/Rrens/smart-assistant/internal/security"
	"github.com/Rrens/smart-assistant/internal/storage"
	"github.com/rs/zerolog/log"
)

// Register creates an account and stores the returned credentials
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, false, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		c.persist(&resp)
		c.notifier.Notify(notify.Success("Registration successful", fmt.Sprintf("Welcome %s!", resp.User.Name)))
		user := resp.User
		c.emit(events.Event{Type: events.Login, User: &user})
	}
	return &resp, nil
}

// Login authenticates and stores the returned credentials
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, false, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		c.persist(&resp)
		c.notifier.Notify(notify.Success("Login successful", fmt.Sprintf("Welcome back, %s!", resp.User.Name)))
		user := resp.User
		c.emit(events.Event{Type: events.Login, User: &user})
	}
	return &resp, nil
}

// Logout tells the backend about the logout when a live token exists, then
// clears local credentials regardless of the outcome.
func (c *Client) Logout(ctx context.Context) {
	if c.IsAuthenticated() {
		if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, true, nil); err != nil {
			log.Warn().Err(err).Msg("Backend logout failed, clearing local session")
		}
	}

	c.store.Remove(storage.KeyAuthToken, storage.KeyAuthUser)
	c.notifier.Notify(notify.Info("Logged out", "You have been logged out successfully"))
	c.emit(events.Event{Type: events.Logout})
}

// CurrentUser fetches the user behind the stored token
func (c *Client) CurrentUser(ctx context.Context) (*domain.AuthUser, error) {
	var user domain.AuthUser
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshToken exchanges the stored token for a fresh one
func (c *Client) RefreshToken(ctx context.Context) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, true, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken != "" {
		c.persist(&resp)
	}
	return &resp, nil
}

// IsAuthenticated reports whether an unexpired token is stored
func (c *Client) IsAuthenticated() bool {
	token, ok := c.store.Get(storage.KeyAuthToken)
	if !ok || token == "" {
		return false
	}
	return !security.IsTokenExpired(token, c.now())
}

// StoredUser returns the persisted user, or nil
func (c *Client) StoredUser() *domain.AuthUser {
	var user domain.AuthUser
	if !c.store.GetJSON(storage.KeyAuthUser, &user) {
		return nil
	}
	return &user
}

// ClearAuthState forces a logout without contacting the backend
func (c *Client) ClearAuthState() {
	c.expireSession()
}
