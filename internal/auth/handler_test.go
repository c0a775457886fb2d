package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-todo-api/internal/database"
)

type stubLimiter struct {
	allowed bool
}

func (s *stubLimiter) Allow(context.Context, string, string) (bool, error) {
	return s.allowed, nil
}

func newTokenHandler(t *testing.T, allowed bool) (*Handler, *JWTService) {
	t.Helper()

	tokens := NewJWTService([]byte("handler-test-secret"), "")

	digest, err := HashPassword("secret")
	require.NoError(t, err)

	finder := &stubUserFinder{users: map[string]*database.User{
		"alice@example.com": {ID: 7, Email: "alice@example.com", HashedPassword: digest},
	}}

	return NewHandler(finder, tokens, &stubLimiter{allowed: allowed}, 15*time.Minute), tokens
}

func postToken(h *Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Token(rec, req)
	return rec
}

func TestToken_Success(t *testing.T) {
	h, tokens := newTokenHandler(t, true)

	rec := postToken(h, url.Values{
		"username": {"alice@example.com"},
		"password": {"secret"},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
}

func TestToken_BadCredentials(t *testing.T) {
	h, _ := newTokenHandler(t, true)

	tests := []struct {
		name string
		form url.Values
	}{
		{name: "wrong password", form: url.Values{"username": {"alice@example.com"}, "password": {"nope"}}},
		{name: "unknown user", form: url.Values{"username": {"bob@example.com"}, "password": {"secret"}}},
		{name: "empty form", form: url.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postToken(h, tt.form)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestToken_RateLimited(t *testing.T) {
	h, _ := newTokenHandler(t, false)

	rec := postToken(h, url.Values{
		"username": {"alice@example.com"},
		"password": {"secret"},
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMe(t *testing.T) {
	h, _ := newTokenHandler(t, true)

	currentUser := &database.User{ID: 7, Email: "alice@example.com", HashedPassword: "digest"}
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserContextKey, currentUser))
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// Password hash must never appear in output
	assert.NotContains(t, rec.Body.String(), "digest")
	assert.Contains(t, rec.Body.String(), "alice@example.com")
}

func TestMe_NoContext(t *testing.T) {
	h, _ := newTokenHandler(t, true)

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
