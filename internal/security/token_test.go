package security_test

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/Rrens/smart-assistant/internal/security"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key-with-32-chars!!"))
	require.NoError(t, err)
	return token
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, exp)

	got, err := security.TokenExpiry(token)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got), "expiry mismatch: got %v, want %v", got, exp)
}

func TestIsTokenExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, security.IsTokenExpired(signToken(t, now.Add(time.Hour)), now), "token valid for an hour")
	assert.True(t, security.IsTokenExpired(signToken(t, now.Add(-time.Hour)), now), "token expired an hour ago")

	exact := now.Truncate(time.Second)
	assert.True(t, security.IsTokenExpired(signToken(t, exact), exact), "expired at the exact instant")
}

func TestIsTokenExpired_Malformed(t *testing.T) {
	now := time.Now()

	for _, token := range []string{"", "invalid-token", "a.b.c", "header.bm90LWpzb24.sig"} {
		assert.True(t, security.IsTokenExpired(token, now), "token %q", token)
	}
}

func TestTokenExpiry_NoExpClaim(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).
		SignedString([]byte("test-secret-key-with-32-chars!!"))
	require.NoError(t, err)

	_, err = security.TokenExpiry(token)
	assert.ErrorIs(t, err, security.ErrNoExpiry)
	assert.True(t, security.IsTokenExpired(token, time.Now()))
}

func rawToken(header string, exp time.Time) string {
	enc := base64.RawURLEncoding
	payload := fmt.Sprintf(`{"sub":"1","exp":%d}`, exp.Unix())
	return enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestIsTokenExpired_IgnoresHeader(t *testing.T) {
	now := time.Now()

	for _, header := range []string{`{}`, `{"alg":"ES256K","typ":"JWT"}`, `{"alg":"HS256"}`, `not json`} {
		assert.False(t, security.IsTokenExpired(rawToken(header, now.Add(time.Hour)), now), "header %s", header)
		assert.True(t, security.IsTokenExpired(rawToken(header, now.Add(-time.Hour)), now), "header %s", header)
	}
}

func TestTokenExpiry_SegmentCount(t *testing.T) {
	valid := rawToken(`{}`, time.Now().Add(time.Hour))

	_, err := security.TokenExpiry(valid + ".extra")
	assert.ErrorIs(t, err, security.ErrMalformedToken)

	_, err = security.TokenExpiry("onlyone")
	assert.ErrorIs(t, err, security.ErrMalformedToken)
}
