package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-todo-api/internal/database"
	"github.com/redmonkez12/go-todo-api/internal/httputil"
)

type stubUserFinder struct {
	users map[string]*database.User
}

func (s *stubUserFinder) GetByEmail(_ context.Context, email string) (*database.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, context.Canceled // any error means "not found" to the gate
}

func newTestGate(t *testing.T) (*Middleware, *JWTService) {
	t.Helper()

	tokens := NewJWTService([]byte("middleware-test-secret"), "")
	finder := &stubUserFinder{users: map[string]*database.User{
		"alice@example.com": {ID: 7, Email: "alice@example.com"},
	}}
	return NewMiddleware(tokens, finder), tokens
}

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		currentUser, ok := GetUserFromContext(r.Context())
		require.True(t, ok)
		httputil.RespondJSON(w, currentUser, http.StatusOK)
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	gate, tokens := newTestGate(t)

	token, err := tokens.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	gate.RequireAuth(protectedEcho(t)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got database.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestRequireAuth_Failures(t *testing.T) {
	gate, tokens := newTestGate(t)

	expired, err := tokens.Issue("alice@example.com", -time.Minute)
	require.NoError(t, err)

	unknown, err := tokens.Issue("nobody@example.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "garbage token", header: "Bearer garbage"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "unknown subject", header: "Bearer " + unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			gate.RequireAuth(protectedEcho(t)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		})
	}
}
