package api

import (
	"net/http"

	"github.com/Rrens/smart-assistant/internal/api/handler"
	customMiddleware "github.com/Rrens/smart-assistant/internal/api/middleware"
	"github.com/Rrens/smart-assistant/internal/apiclient"
	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/Rrens/smart-assistant/internal/llm"
	"github.com/Rrens/smart-assistant/internal/notify"
	"github.com/Rrens/smart-assistant/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Dependencies are the long-lived components served by the router
type Dependencies struct {
	Client         *apiclient.Client
	Auth           *service.AuthManager
	Chat           *service.ChatManager
	KnowledgeBases *service.KnowledgeBaseManager
	Responders     *llm.Router
	Notifications  *notify.Buffer
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	rateLimit := customMiddleware.NewRateLimitMiddleware(
		cfg.Security.RateLimit.RequestsPerSecond,
		cfg.Security.RateLimit.Burst,
	)
	r.Use(rateLimit.Limit)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Client)
	chatHandler := handler.NewChatHandler(deps.Chat)
	kbHandler := handler.NewKnowledgeBaseHandler(deps.KnowledgeBases)

	authMiddleware := customMiddleware.NewAuthMiddleware(deps.Auth)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/health/backend", handler.BackendHealth(deps.Client))
		r.Get("/info", handler.BackendInfo(deps.Client))
		r.Get("/responders", handler.ListResponders(deps.Responders))
		r.Get("/notifications", handler.Notifications(deps.Notifications))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Get("/state", authHandler.State)
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Post("/check", authHandler.Check)
			r.Delete("/error", authHandler.ClearError)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuthenticated)

			r.Route("/chat", func(r chi.Router) {
				r.Get("/sessions", chatHandler.List)
				r.Post("/sessions", chatHandler.Create)
				r.Delete("/sessions", chatHandler.Clear)
				r.Get("/active", chatHandler.Active)
				r.Post("/messages", chatHandler.Send)

				r.Route("/sessions/{sessionID}", func(r chi.Router) {
					r.Put("/active", chatHandler.Select)
					r.Patch("/", chatHandler.Rename)
					r.Delete("/", chatHandler.Delete)
					r.Post("/messages", chatHandler.AddMessage)
				})
			})

			r.Route("/knowledge-bases", func(r chi.Router) {
				r.Get("/", kbHandler.List)
				r.Post("/", kbHandler.Create)
				r.Post("/refresh", kbHandler.Refresh)
				r.Delete("/error", kbHandler.ClearError)

				r.Route("/{kbID}", func(r chi.Router) {
					r.Get("/", kbHandler.Get)
					r.Post("/status", kbHandler.Status)
					r.Delete("/", kbHandler.Delete)
				})
			})
		})
	})

	return r
}
