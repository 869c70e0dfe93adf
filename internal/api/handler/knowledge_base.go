package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/smart-assistant/internal/api/response"
	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/service"
	"github.com/go-chi/chi/v5"
)

// KnowledgeBaseHandler exposes the knowledge base manager
type KnowledgeBaseHandler struct {
	kbs *service.KnowledgeBaseManager
}

// NewKnowledgeBaseHandler creates a new knowledge base handler
func NewKnowledgeBaseHandler(kbs *service.KnowledgeBaseManager) *KnowledgeBaseHandler {
	return &KnowledgeBaseHandler{kbs: kbs}
}

// List loads the list from the backend
func (h *KnowledgeBaseHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.kbs.GetKnowledgeBases(r.Context()) {
		response.BadGateway(w, h.kbs.State().Error)
		return
	}
	response.OK(w, h.kbs.State())
}

// Refresh is List under its own route
func (h *KnowledgeBaseHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.kbs.RefreshKnowledgeBases(r.Context()) {
		response.BadGateway(w, h.kbs.State().Error)
		return
	}
	response.OK(w, h.kbs.State())
}

// Create starts a new import
func (h *KnowledgeBaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.KnowledgeBaseCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if !h.kbs.CreateKnowledgeBase(r.Context(), input) {
		response.BadRequest(w, h.kbs.State().Error)
		return
	}

	response.Created(w, h.kbs.State())
}

// Get returns a single knowledge base from the cached list
func (h *KnowledgeBaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	kb := h.kbs.GetKnowledgeBaseByID(chi.URLParam(r, "kbID"))
	if kb == nil {
		response.NotFound(w, "knowledge base not found")
		return
	}
	response.OK(w, kb)
}

// Status fetches the latest status of a knowledge base
func (h *KnowledgeBaseHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "kbID")
	h.kbs.GetKnowledgeBaseStatus(r.Context(), id)

	kb := h.kbs.GetKnowledgeBaseByID(id)
	if kb == nil {
		response.NotFound(w, "knowledge base not found")
		return
	}
	response.OK(w, kb)
}

// Delete removes a knowledge base
func (h *KnowledgeBaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.kbs.DeleteKnowledgeBase(r.Context(), chi.URLParam(r, "kbID")) {
		response.BadGateway(w, h.kbs.State().Error)
		return
	}
	response.NoContent(w)
}

// ClearError clears the last knowledge base error
func (h *KnowledgeBaseHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.kbs.ClearError()
	response.NoContent(w)
}
