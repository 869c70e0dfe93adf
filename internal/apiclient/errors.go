package apiclient

import (
	"errors"
	"fmt"
)

// Failure classes. Every *Error returned by the client unwraps to one of them.
var (
	ErrNetwork      = errors.New("network connection failed")
	ErrUnauthorized = errors.New("authentication failed, please log in again")
	ErrServer       = errors.New("server error")
	ErrRequest      = errors.New("request failed")
)

// Error is a classified backend failure
type Error struct {
	Kind      error
	Status    int
	Code      string
	Message   string
	Details   map[string]any
	RequestID string
	Endpoint  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// errorBody mirrors the backend error envelope
type errorBody struct {
	Error *struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details,omitempty"`
		Timestamp string         `json:"timestamp"`
		RequestID string         `json:"requestId"`
	} `json:"error"`
}
