package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/smart-assistant/internal/api/response"
	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/llm"
)

// BackendProbe reaches the unauthenticated backend endpoints
type BackendProbe interface {
	CheckHealth(ctx context.Context) (*domain.HealthCheckResponse, error)
	BasicInfo(ctx context.Context) (*domain.RootInfo, error)
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// BackendHealth proxies the backend health endpoint
func BackendHealth(probe BackendProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health, err := probe.CheckHealth(r.Context())
		if err != nil {
			response.BadGateway(w, err.Error())
			return
		}
		response.OK(w, health)
	}
}

// BackendInfo proxies the backend root endpoint
func BackendInfo(probe BackendProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := probe.BasicInfo(r.Context())
		if err != nil {
			response.BadGateway(w, err.Error())
			return
		}
		response.OK(w, info)
	}
}

// ListResponders returns the chat responders known to the router
func ListResponders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"responders":        router.List(),
			"default_responder": router.DefaultResponder(),
		})
	}
}
