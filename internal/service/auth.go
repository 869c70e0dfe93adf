package service

import (
	"context"
	"sync"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/events"
	"github.com/Rrens/smart-assistant/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	defaultLoginError    = "Login failed, please try again"
	defaultRegisterError = "Registration failed, please try again"
)

// AuthAPI is the part of the API client used for authentication
type AuthAPI interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
	CurrentUser(ctx context.Context) (*domain.AuthUser, error)
}

// CredentialStore mirrors the token and user across restarts
type CredentialStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(keys ...string)
	GetJSON(key string, v any) bool
	SetJSON(key string, v any)
}

// EventHub carries login and logout signals
type EventHub interface {
	Subscribe(fn events.Handler) (unsubscribe func())
}

// AuthState is a snapshot of the authentication state
type AuthState struct {
	User            *domain.AuthUser `json:"user"`
	IsAuthenticated bool             `json:"isAuthenticated"`
	IsLoading       bool             `json:"isLoading"`
	Error           string           `json:"error,omitempty"`
}

// AuthManager owns the current identity. It is the single writer of
// AuthState and mirrors credentials into the store.
type AuthManager struct {
	mu          sync.RWMutex
	api         AuthAPI
	store       CredentialStore
	hub         EventHub
	state       AuthState
	unsubscribe func()
}

// NewAuthManager creates an auth manager seeded from the store
func NewAuthManager(api AuthAPI, store CredentialStore, hub EventHub) *AuthManager {
	m := &AuthManager{
		api:   api,
		store: store,
		hub:   hub,
	}
	m.InitializeAuth()

	if hub != nil {
		m.unsubscribe = hub.Subscribe(m.handleEvent)
	}
	return m
}

// InitializeAuth seeds user and authenticated flag from the store without
// contacting the backend. Token expiry is not checked here.
func (m *AuthManager) InitializeAuth() {
	token, hasToken := m.store.Get(storage.KeyAuthToken)

	var user domain.AuthUser
	hasUser := m.store.GetJSON(storage.KeyAuthUser, &user)

	m.mu.Lock()
	defer m.mu.Unlock()
	if hasToken && token != "" && hasUser {
		m.state.User = &user
		m.state.IsAuthenticated = true
		return
	}
	m.state.User = nil
	m.state.IsAuthenticated = false
}

func (m *AuthManager) handleEvent(e events.Event) {
	switch e.Type {
	case events.Logout:
		m.mu.Lock()
		m.state.User = nil
		m.state.IsAuthenticated = false
		m.mu.Unlock()
	case events.Login:
		if e.User == nil {
			return
		}
		user := *e.User
		m.mu.Lock()
		m.state.User = &user
		m.state.IsAuthenticated = true
		m.mu.Unlock()
	}
}

// Login authenticates with the backend. It reports success; on failure the
// reason is kept in State().Error.
func (m *AuthManager) Login(ctx context.Context, req domain.LoginRequest) bool {
	if err := validate.Struct(req); err != nil {
		m.reject(validationMessage(err))
		return false
	}

	m.begin()
	resp, err := m.api.Login(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		m.fail(errorMessage(err, defaultLoginError))
		return false
	}

	m.succeed(resp)
	return true
}

// Register creates an account and signs in
func (m *AuthManager) Register(ctx context.Context, req domain.RegisterRequest) bool {
	if err := validate.Struct(req); err != nil {
		m.reject(validationMessage(err))
		return false
	}

	m.begin()
	resp, err := m.api.Register(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		m.fail(errorMessage(err, defaultRegisterError))
		return false
	}

	m.succeed(resp)
	return true
}

func (m *AuthManager) begin() {
	m.mu.Lock()
	m.state.IsLoading = true
	m.state.Error = ""
	m.mu.Unlock()
}

func (m *AuthManager) succeed(resp *domain.AuthResponse) {
	m.store.Set(storage.KeyAuthToken, resp.AccessToken)
	m.store.SetJSON(storage.KeyAuthUser, resp.User)

	user := resp.User
	m.mu.Lock()
	m.state = AuthState{User: &user, IsAuthenticated: true}
	m.mu.Unlock()
}

// reject records an input error without touching the identity
func (m *AuthManager) reject(msg string) {
	m.mu.Lock()
	m.state.Error = msg
	m.mu.Unlock()
}

func (m *AuthManager) fail(msg string) {
	m.mu.Lock()
	m.state = AuthState{Error: msg}
	m.mu.Unlock()
}

// Logout clears stored credentials and the in-memory identity
func (m *AuthManager) Logout() {
	m.store.Remove(storage.KeyAuthToken, storage.KeyAuthUser)

	m.mu.Lock()
	m.state = AuthState{}
	m.mu.Unlock()
}

// CheckAuth re-validates stored credentials against the backend. Failures
// reset to anonymous and are logged, never reported through Error.
func (m *AuthManager) CheckAuth(ctx context.Context) {
	token, hasToken := m.store.Get(storage.KeyAuthToken)
	_, hasUser := m.store.Get(storage.KeyAuthUser)
	if !hasToken || token == "" || !hasUser {
		m.mu.Lock()
		m.state.User = nil
		m.state.IsAuthenticated = false
		m.state.IsLoading = false
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	m.state.IsLoading = true
	m.mu.Unlock()

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Stored session is no longer valid")
		m.store.Remove(storage.KeyAuthToken, storage.KeyAuthUser)
		m.mu.Lock()
		m.state.User = nil
		m.state.IsAuthenticated = false
		m.state.IsLoading = false
		m.mu.Unlock()
		return
	}

	m.store.SetJSON(storage.KeyAuthUser, user)
	m.mu.Lock()
	m.state.User = user
	m.state.IsAuthenticated = true
	m.state.IsLoading = false
	m.state.Error = ""
	m.mu.Unlock()
}

// CheckAuthStatus is an alias of CheckAuth
func (m *AuthManager) CheckAuthStatus(ctx context.Context) {
	m.CheckAuth(ctx)
}

// ClearError clears the last error only
func (m *AuthManager) ClearError() {
	m.mu.Lock()
	m.state.Error = ""
	m.mu.Unlock()
}

// Reset clears stored credentials and returns to the initial anonymous state
func (m *AuthManager) Reset() {
	m.store.Remove(storage.KeyAuthToken, storage.KeyAuthUser)

	m.mu.Lock()
	m.state = AuthState{}
	m.mu.Unlock()
}

// State returns a snapshot of the current state
func (m *AuthManager) State() AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.state
	if s.User != nil {
		user := *s.User
		s.User = &user
	}
	return s
}

// IsAuthenticated reports whether a user is signed in
func (m *AuthManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsAuthenticated
}

// Subscribe registers fn for login and logout signals
func (m *AuthManager) Subscribe(fn events.Handler) (unsubscribe func()) {
	if m.hub == nil {
		return func() {}
	}
	return m.hub.Subscribe(fn)
}

// Close detaches the manager from the event hub
func (m *AuthManager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}
