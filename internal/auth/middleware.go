package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/redmonkez12/go-todo-api/internal/database"
	"github.com/redmonkez12/go-todo-api/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey ContextKey = "current_user"
)

// UserFinder resolves a token subject to a user record
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*database.User, error)
}

// Middleware handles authentication for bearer-protected routes
type Middleware struct {
	tokenService TokenService
	users        UserFinder
}

func NewMiddleware(tokenService TokenService, users UserFinder) *Middleware {
	return &Middleware{tokenService: tokenService, users: users}
}

// RequireAuth validates the Authorization header, resolves the token
// subject to a user and stores the user in the request context. Every
// failure is a hard 401 carrying a Bearer challenge; browser routes use the
// session flow instead and never hit this middleware.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "missing authentication", httputil.CodeMissingAuth)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader)
			return
		}

		claims, err := m.tokenService.Verify(parts[1])
		if err != nil {
			if err == ErrExpiredToken {
				unauthorized(w, "token has expired", httputil.CodeTokenExpired)
				return
			}
			unauthorized(w, "invalid token", httputil.CodeInvalidToken)
			return
		}

		currentUser, err := m.users.GetByEmail(r.Context(), claims.Subject)
		if err != nil {
			// Unknown subject and store failure both authenticate no one
			unauthorized(w, "invalid token", httputil.CodeInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, currentUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// unauthorized writes a 401 with the Bearer challenge required by the
// OAuth2 spec for bearer-token endpoints
func unauthorized(w http.ResponseWriter, message, code string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httputil.RespondErrorWithCode(w, message, code, http.StatusUnauthorized)
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(ctx context.Context) (*database.User, bool) {
	currentUser, ok := ctx.Value(UserContextKey).(*database.User)
	return currentUser, ok
}
