package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Rrens/smart-assistant/internal/api/response"
	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/service"
	"github.com/go-chi/chi/v5"
)

// ChatHandler exposes the chat manager
type ChatHandler struct {
	chat *service.ChatManager
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatManager) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type activeView struct {
	Session  *domain.ChatSession `json:"session"`
	Messages []domain.Message    `json:"messages"`
}

func (h *ChatHandler) active() activeView {
	return activeView{
		Session:  h.chat.GetActiveSession(),
		Messages: h.chat.GetActiveMessages(),
	}
}

// List returns the whole chat state
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.chat.State())
}

// Create creates a new session
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
	}

	h.chat.CreateSession(strings.TrimSpace(req.Title))
	response.Created(w, h.chat.GetActiveSession())
}

// Clear removes every session
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.chat.ClearAllSessions()
	response.NoContent(w)
}

// Active returns the active session and its messages
func (h *ChatHandler) Active(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.active())
}

// Send sends a message to the active session and waits for the reply
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		response.BadRequest(w, "content is required")
		return
	}

	h.chat.SendMessage(r.Context(), req.Content)
	response.OK(w, h.active())
}

// Select makes a session active
func (h *ChatHandler) Select(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	h.chat.SelectSession(id)

	if h.chat.ActiveSessionID() != id {
		response.NotFound(w, "session not found")
		return
	}
	response.OK(w, h.active())
}

// Rename changes a session title
func (h *ChatHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		response.BadRequest(w, "title is required")
		return
	}

	id := chi.URLParam(r, "sessionID")
	h.chat.UpdateSessionTitle(id, title)

	for _, s := range h.chat.Sessions() {
		if s.ID == id {
			response.OK(w, s)
			return
		}
	}
	response.NotFound(w, "session not found")
}

// Delete removes a session
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.chat.DeleteSession(chi.URLParam(r, "sessionID"))
	response.NoContent(w)
}

// AddMessage appends a message to a session without asking for a reply
func (h *ChatHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var input domain.MessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	msg, err := h.chat.AddMessage(chi.URLParam(r, "sessionID"), input)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	response.Created(w, msg)
}
