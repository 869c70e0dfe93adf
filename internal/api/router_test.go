package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/smart-assistant/internal/apiclient"
	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/events"
	"github.com/Rrens/smart-assistant/internal/llm"
	"github.com/Rrens/smart-assistant/internal/notify"
	"github.com/Rrens/smart-assistant/internal/service"
	"github.com/Rrens/smart-assistant/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.HealthCheckResponse{Status: "healthy", Timestamp: "now"})
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret-pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "Invalid email or password"}})
			return
		}
		_ = json.NewEncoder(w).Encode(domain.AuthResponse{
			AccessToken: token,
			TokenType:   "bearer",
			User:        domain.AuthUser{ID: 1, Email: req.Email, Name: "Ann"},
		})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/knowledge-base", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req domain.KnowledgeBaseCreate
			_ = json.NewDecoder(r.Body).Decode(&req)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(domain.KnowledgeBase{ID: "kb-1", Name: req.Name, Path: req.Path, Status: domain.KnowledgeBasePending})
		default:
			_ = json.NewEncoder(w).Encode([]domain.KnowledgeBase{{ID: "kb-1", Name: "KB1", Status: domain.KnowledgeBaseReady}})
		}
	})
	mux.HandleFunc("/api/knowledge-base/kb-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	backend := fakeBackend(t)
	cfg := &config.Config{
		API: config.APIConfig{BaseURL: backend.URL + "/api"},
	}

	store := storage.New(storage.NewMemoryBackend())
	hub := events.NewHub()
	buffer := notify.NewBuffer(20)
	client := apiclient.New(cfg.API, store, hub, buffer)

	responders := llm.NewRouter("simulated")
	responders.Register(llm.NewSimulatedResponder(0))
	responder, err := responders.Get("")
	require.NoError(t, err)

	auth := service.NewAuthManager(client, store, hub)
	kbs := service.NewKnowledgeBaseManager(client, service.WithPollInterval(time.Hour))
	t.Cleanup(kbs.Close)

	return NewRouter(cfg, Dependencies{
		Client:         client,
		Auth:           auth,
		Chat:           service.NewChatManager(responder),
		KnowledgeBases: kbs,
		Responders:     responders,
		Notifications:  buffer,
	})
}

func call(t *testing.T, h http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)

	code, env := call(t, h, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = call(t, h, http.MethodGet, "/api/v1/health/backend", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "healthy")
}

func TestRouter_ProtectedRoutesNeedLogin(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/api/v1/chat/sessions", "/api/v1/knowledge-bases"} {
		code, env := call(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.False(t, env.Success)
	}
}

func TestRouter_LoginFailure(t *testing.T) {
	h := newTestRouter(t)

	code, env := call(t, h, http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{Email: "a@b.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apiclient.ErrUnauthorized.Error(), env.Error)

	code, _ = call(t, h, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_SessionFlow(t *testing.T) {
	h := newTestRouter(t)

	code, env := call(t, h, http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{Email: "a@b.com", Password: "secret-pw"})
	require.Equal(t, http.StatusOK, code)
	var authState service.AuthState
	require.NoError(t, json.Unmarshal(env.Data, &authState))
	assert.True(t, authState.IsAuthenticated)
	assert.Equal(t, "Ann", authState.User.Name)

	// chat
	code, _ = call(t, h, http.MethodPost, "/api/v1/chat/messages", map[string]string{"content": "hello"})
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, h, http.MethodGet, "/api/v1/chat/active", nil)
	require.Equal(t, http.StatusOK, code)
	var active struct {
		Session  domain.ChatSession `json:"session"`
		Messages []domain.Message   `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &active))
	assert.Equal(t, "hello", active.Session.Title)
	require.Len(t, active.Messages, 2)
	assert.Equal(t, domain.RoleAssistant, active.Messages[1].Sender)

	code, _ = call(t, h, http.MethodPatch, "/api/v1/chat/sessions/"+active.Session.ID, map[string]string{"title": "Greeting"})
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, h, http.MethodPut, "/api/v1/chat/sessions/missing/active", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = call(t, h, http.MethodPost, "/api/v1/chat/sessions/missing/messages", domain.MessageInput{Sender: domain.RoleUser, Content: "x"})
	assert.Equal(t, http.StatusNotFound, code)

	// knowledge bases
	code, env = call(t, h, http.MethodPost, "/api/v1/knowledge-bases", domain.KnowledgeBaseCreate{Name: "KB1", Path: "/p"})
	require.Equal(t, http.StatusCreated, code)
	var kbState service.KnowledgeBaseState
	require.NoError(t, json.Unmarshal(env.Data, &kbState))
	require.NotNil(t, kbState.CurrentImport)
	assert.Equal(t, "kb-1", kbState.CurrentImport.ID)

	code, _ = call(t, h, http.MethodGet, "/api/v1/knowledge-bases/kb-1", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, h, http.MethodPost, "/api/v1/knowledge-bases", domain.KnowledgeBaseCreate{Name: "", Path: "/p"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, h, http.MethodDelete, "/api/v1/knowledge-bases/kb-1", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = call(t, h, http.MethodGet, "/api/v1/knowledge-bases/kb-1", nil)
	assert.Equal(t, http.StatusNotFound, code)

	// notifications
	code, env = call(t, h, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Login successful")
	assert.Contains(t, string(env.Data), "Knowledge base created")

	// logout
	code, env = call(t, h, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &authState))
	assert.False(t, authState.IsAuthenticated)

	code, _ = call(t, h, http.MethodGet, "/api/v1/chat/active", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
