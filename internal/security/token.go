package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoExpiry is returned for tokens without an exp claim
	ErrNoExpiry = errors.New("token has no expiry claim")
	// ErrMalformedToken is returned when a token is not three dot-separated segments
	ErrMalformedToken = errors.New("token is malformed")
)

// parser only decodes segments; the header and signature are the backend's job
var parser = jwt.NewParser()

// TokenExpiry decodes the middle segment of a bearer token and returns its
// expiry instant.
func TokenExpiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, ErrMalformedToken
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode token payload: %w", err)
	}

	var claims jwt.RegisteredClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token claims: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// IsTokenExpired reports whether token is expired at now. A token that
// cannot be decoded is always expired.
func IsTokenExpired(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
