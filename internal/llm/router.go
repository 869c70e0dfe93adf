package llm

import (
	"fmt"
	"sort"
	"sync"
)

// Router manages chat responders and selects one by name
type Router struct {
	responders       map[string]Responder
	factories        map[string]ResponderFactory
	defaultResponder string
	mu               sync.RWMutex
}

// NewRouter creates a new responder router
func NewRouter(defaultResponder string) *Router {
	return &Router{
		responders:       make(map[string]Responder),
		factories:        make(map[string]ResponderFactory),
		defaultResponder: defaultResponder,
	}
}

// Register registers a responder instance
func (r *Router) Register(responder Responder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responders[responder.Name()] = responder
}

// RegisterFactory registers a lazily built responder
func (r *Router) RegisterFactory(name string, factory ResponderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a configured responder by name, building it from its factory
// on first use. An empty name selects the default.
func (r *Router) Get(name string) (Responder, error) {
	if name == "" {
		name = r.defaultResponder
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	responder, ok := r.responders[name]
	if !ok {
		factory, hasFactory := r.factories[name]
		if !hasFactory {
			return nil, fmt.Errorf("responder not found: %s", name)
		}
		responder = factory()
		r.responders[name] = responder
	}

	if !responder.IsConfigured() {
		return nil, fmt.Errorf("responder not configured: %s", name)
	}

	return responder, nil
}

// List returns the names of all known responders, sorted
func (r *Router) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for name := range r.responders {
		seen[name] = struct{}{}
	}
	for name := range r.factories {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultResponder returns the default responder name
func (r *Router) DefaultResponder() string {
	return r.defaultResponder
}
