package events

import (
	"sync"

	"github.com/Rrens/smart-assistant/internal/domain"
)

// Type identifies an authentication signal
type Type string

const (
	Login  Type = "auth:login"
	Logout Type = "auth:logout"
)

// Event is delivered to subscribers. User is set for Login only.
type Event struct {
	Type Type
	User *domain.AuthUser
}

// Handler receives events synchronously on the emitting goroutine
type Handler func(Event)

// Emitter publishes events
type Emitter interface {
	Emit(Event)
}

// Hub fans events out to subscribers
type Hub struct {
	mu       sync.RWMutex
	nextID   int
	handlers []subscription
}

type subscription struct {
	id int
	fn Handler
}

// NewHub creates a hub without subscribers
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn and returns a function that removes it
func (h *Hub) Subscribe(fn Handler) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.handlers = append(h.handlers, subscription{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, sub := range h.handlers {
				if sub.id == id {
					h.handlers = append(h.handlers[:i:i], h.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit calls every subscriber in registration order. Handlers run without
// the hub lock held, so they may subscribe or unsubscribe.
func (h *Hub) Emit(e Event) {
	h.mu.RLock()
	subs := make([]subscription, len(h.handlers))
	copy(subs, h.handlers)
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(e)
	}
}

// Subscribers reports how many handlers are registered
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}
