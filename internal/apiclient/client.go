package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/events"
	"github.com/Rrens/smart-assistant/internal/notify"
	"github.com/Rrens/smart-assistant/internal/security"
	"github.com/Rrens/smart-assistant/internal/storage"
	"github.com/rs/zerolog/log"
)

// Store is the credential mirror used by the client
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(keys ...string)
	GetJSON(key string, v any) bool
	SetJSON(key string, v any)
}

// Client is the single chokepoint for backend HTTP calls
type Client struct {
	baseURL  string
	origin   string
	http     *http.Client
	store    Store
	emitter  events.Emitter
	notifier notify.Notifier
	online   func() bool
	now      func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithOnlineCheck sets the connectivity probe consulted on failure
func WithOnlineCheck(fn func() bool) Option {
	return func(c *Client) { c.online = fn }
}

// WithClock sets the time source used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a new API client. The base URL is resolved once here.
func New(cfg config.APIConfig, store Store, emitter events.Emitter, notifier notify.Notifier, opts ...Option) *Client {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	c := &Client{
		baseURL:  cfg.ResolvedBaseURL(),
		origin:   cfg.ResolvedOrigin(),
		http:     &http.Client{Timeout: cfg.Timeout},
		store:    store,
		emitter:  emitter,
		notifier: notifier,
		online:   func() bool { return true },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + endpoint
}

// do issues a request and decodes a 2xx body into out (when non-nil).
// Failures are classified exactly once before being returned.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, requiresAuth bool, out any) error {
	var token string
	if requiresAuth {
		stored, ok := c.store.Get(storage.KeyAuthToken)
		if !ok || stored == "" {
			return c.classify(endpoint, &Error{Status: http.StatusUnauthorized, Message: "no valid authentication token"})
		}
		if security.IsTokenExpired(stored, c.now()) {
			return c.classify(endpoint, &Error{Status: http.StatusUnauthorized, Message: "token expired"})
		}
		token = stored
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request to %s aborted: %w", endpoint, ctx.Err())
		}
		return c.classify(endpoint, &Error{Kind: ErrNetwork, Message: err.Error()})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.classify(endpoint, &Error{Kind: ErrNetwork, Status: resp.StatusCode, Message: err.Error()})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.classify(endpoint, parseError(resp.StatusCode, respBody))
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return c.classify(endpoint, &Error{Status: resp.StatusCode, Message: fmt.Sprintf("failed to decode response: %v", err)})
	}
	return nil
}

func parseError(status int, body []byte) *Error {
	apiErr := &Error{Status: status, Message: fmt.Sprintf("HTTP error! status: %d", status)}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != nil {
		if eb.Error.Message != "" {
			apiErr.Message = eb.Error.Message
		}
		apiErr.Code = eb.Error.Code
		apiErr.Details = eb.Error.Details
		apiErr.RequestID = eb.Error.RequestID
	}
	return apiErr
}

// classify applies the failure side effects and returns the error the caller sees
func (c *Client) classify(endpoint string, apiErr *Error) error {
	apiErr.Endpoint = endpoint
	log.Error().
		Str("endpoint", endpoint).
		Int("status", apiErr.Status).
		Str("message", apiErr.Message).
		Msg("API request failed")

	switch {
	case !c.online() || errors.Is(apiErr.Kind, ErrNetwork):
		c.notifier.Notify(notify.Failure("Network connection error", "Please check your network connection"))
		apiErr.Kind = ErrNetwork
		apiErr.Message = ErrNetwork.Error()

	case apiErr.Status == http.StatusUnauthorized:
		c.expireSession()
		c.notifier.Notify(notify.Failure("Authentication failed", "Please log in again"))
		apiErr.Kind = ErrUnauthorized
		apiErr.Message = ErrUnauthorized.Error()

	case apiErr.Status >= http.StatusInternalServerError:
		c.notifier.Notify(notify.Failure("Server error", "The server could not process the request, please try again later"))
		apiErr.Kind = ErrServer
		apiErr.Message = ErrServer.Error()

	default:
		message := apiErr.Message
		if message == "" {
			message = "Unknown error"
		}
		c.notifier.Notify(notify.Failure("Request failed", message))
		apiErr.Kind = ErrRequest
	}

	return apiErr
}

// expireSession drops stored credentials and signals logout
func (c *Client) expireSession() {
	c.store.Remove(storage.KeyAuthToken, storage.KeyAuthUser)
	c.emit(events.Event{Type: events.Logout})
}

func (c *Client) emit(e events.Event) {
	if c.emitter != nil {
		c.emitter.Emit(e)
	}
}

func (c *Client) persist(resp *domain.AuthResponse) {
	c.store.Set(storage.KeyAuthToken, resp.AccessToken)
	c.store.SetJSON(storage.KeyAuthUser, resp.User)
}
