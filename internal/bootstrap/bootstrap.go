// Package bootstrap wires the storage, API client and state managers shared
// by the server and the terminal client.
package bootstrap

import (
	"fmt"
	"strconv"

	"github.com/Rrens/smart-assistant/internal/apiclient"
	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/Rrens/smart-assistant/internal/events"
	"github.com/Rrens/smart-assistant/internal/llm"
	"github.com/Rrens/smart-assistant/internal/llm/ollama"
	"github.com/Rrens/smart-assistant/internal/notify"
	"github.com/Rrens/smart-assistant/internal/service"
	"github.com/Rrens/smart-assistant/internal/storage"
	"github.com/rs/zerolog/log"
)

// Components holds everything built from a Config
type Components struct {
	Store          *storage.Store
	Hub            *events.Hub
	Client         *apiclient.Client
	Responders     *llm.Router
	Auth           *service.AuthManager
	Chat           *service.ChatManager
	KnowledgeBases *service.KnowledgeBaseManager

	unsubscribe func()
}

// New builds the components. Notifications are delivered to notifier.
func New(cfg *config.Config, notifier notify.Notifier) (*Components, error) {
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return NewWithStore(cfg, store, notifier)
}

// NewWithStore builds the components on top of an already opened store
func NewWithStore(cfg *config.Config, store *storage.Store, notifier notify.Notifier) (*Components, error) {
	hub := events.NewHub()
	client := apiclient.New(cfg.API, store, hub, notifier)

	responders := NewResponders(cfg)
	responder, err := responders.Get(cfg.Chat.Responder)
	if err != nil {
		log.Warn().Err(err).Str("responder", cfg.Chat.Responder).Msg("Falling back to the default responder")
		if responder, err = responders.Get(""); err != nil {
			return nil, err
		}
	}

	c := &Components{
		Store:      store,
		Hub:        hub,
		Client:     client,
		Responders: responders,
		Auth:       service.NewAuthManager(client, store, hub),
	}
	c.Chat = service.NewChatManager(responder, service.WithSessionOwner(c.sessionOwner))
	c.KnowledgeBases = service.NewKnowledgeBaseManager(client, service.WithPollInterval(cfg.KnowledgeBase.PollInterval))

	// imports of a signed out user are not polled
	c.unsubscribe = c.Auth.Subscribe(func(e events.Event) {
		if e.Type == events.Logout {
			c.KnowledgeBases.StopPolling()
		}
	})

	log.Info().
		Str("api", client.BaseURL()).
		Str("storage", cfg.Storage.Driver).
		Str("responder", responder.Name()).
		Msg("Components initialized")

	return c, nil
}

// NewResponders registers the simulated responder and a lazily built Ollama one
func NewResponders(cfg *config.Config) *llm.Router {
	router := llm.NewRouter("simulated")
	router.Register(llm.NewSimulatedResponder(cfg.Chat.ReplyDelay))
	router.RegisterFactory("ollama", func() llm.Responder {
		return ollama.NewResponder(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel, cfg.LLM.Ollama.Timeout)
	})
	return router
}

func (c *Components) sessionOwner() string {
	user := c.Auth.State().User
	if user == nil {
		return service.DefaultSessionOwner
	}
	return strconv.FormatInt(user.ID, 10)
}

// Close stops background work and closes the store
func (c *Components) Close() error {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.KnowledgeBases.Close()
	c.Auth.Close()
	return c.Store.Close()
}
