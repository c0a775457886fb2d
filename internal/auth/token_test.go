package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtSecret = []byte("test-secret-key-for-signing-only")

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(jwtSecret, "")

	token, err := svc.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService(jwtSecret, "")

	token, err := svc.Issue("alice@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_Malformed(t *testing.T) {
	svc := NewJWTService(jwtSecret, "")

	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestJWTService_WrongKey(t *testing.T) {
	token, err := NewJWTService(jwtSecret, "").Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService([]byte("a completely different secret"), "").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Audience(t *testing.T) {
	issuer := NewJWTService(jwtSecret, "todo-api")

	token, err := issuer.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	// Matching audience verifies
	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)

	// Different expected audience is rejected
	_, err = NewJWTService(jwtSecret, "other-api").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token without an aud claim fails a verifier that requires one
	bare, err := NewJWTService(jwtSecret, "").Issue("alice@example.com", time.Hour)
	require.NoError(t, err)
	_, err = NewJWTService(jwtSecret, "todo-api").Verify(bare)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoService_RoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	svc, err := NewPasetoService(key, "")
	require.NoError(t, err)

	token, err := svc.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
}

func TestPasetoService_Expired(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	svc, err := NewPasetoService(key, "")
	require.NoError(t, err)

	token, err := svc.Issue("alice@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoService_WrongKey(t *testing.T) {
	svc, err := NewPasetoService([]byte("0123456789abcdef0123456789abcdef"), "")
	require.NoError(t, err)

	token, err := svc.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	other, err := NewPasetoService([]byte("fedcba9876543210fedcba9876543210"), "")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoService_Audience(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	issuer, err := NewPasetoService(key, "todo-api")
	require.NoError(t, err)

	token, err := issuer.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	// Matching audience verifies
	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)

	// An audience mismatch is an invalid token, not an expired one
	other, err := NewPasetoService(key, "other-api")
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// An expired token with the right audience still reads as expired
	stale, err := issuer.Issue("alice@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = issuer.Verify(stale)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoService_KeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("too short"), "")
	assert.Error(t, err)
}
