package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Rrens/smart-assistant/internal/api/response"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies a token bucket per client address
type RateLimitMiddleware struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientLimiter
	now     func() time.Time
}

// NewRateLimitMiddleware creates a new rate limit middleware.
// A non-positive rate disables limiting.
func NewRateLimitMiddleware(requestsPerSecond float64, burst int) *RateLimitMiddleware {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitMiddleware{
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Limit rejects requests over the per-client budget with 429
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		limiter := m.limiterFor(clientKey(r))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.burst))
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) limiterFor(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, c := range m.clients {
		if now.Sub(c.lastSeen) > limiterIdleTTL {
			delete(m.clients, k)
		}
	}

	c, ok := m.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
