package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticChecker bool

func (s staticChecker) IsAuthenticated() bool { return bool(s) }

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireAuthenticated(t *testing.T) {
	tests := []struct {
		name     string
		checker  staticChecker
		expected int
	}{
		{name: "anonymous", checker: false, expected: http.StatusUnauthorized},
		{name: "signed in", checker: true, expected: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewAuthMiddleware(tt.checker).RequireAuthenticated(okHandler).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	limited := NewRateLimitMiddleware(0.001, 2).Limit(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		limited.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	limited.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per client")
}

func TestRateLimit_Disabled(t *testing.T) {
	limited := NewRateLimitMiddleware(0, 0).Limit(okHandler)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	Logger(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
