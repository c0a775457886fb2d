package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/redmonkez12/go-todo-api/internal/httputil"
	"github.com/redmonkez12/go-todo-api/internal/logging"
)

// RateLimiter guards credential endpoints against brute forcing
type RateLimiter interface {
	Allow(ctx context.Context, ip, purpose string) (bool, error)
}

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	users       UserFinder
	tokens      TokenService
	rateLimiter RateLimiter
	tokenTTL    time.Duration
}

func NewHandler(users UserFinder, tokens TokenService, rateLimiter RateLimiter, tokenTTL time.Duration) *Handler {
	return &Handler{
		users:       users,
		tokens:      tokens,
		rateLimiter: rateLimiter,
		tokenTTL:    tokenTTL,
	}
}

// TokenResponse represents the OAuth2 password-flow response body
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token handles POST /auth/token. OAuth2 password flow: form fields
// username (the email) and password in exchange for a bearer access token.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := httputil.ClientIP(r)
	allowed, err := h.rateLimiter.Allow(r.Context(), ip, "token")
	if err != nil {
		// Fail open: a limiter outage must not lock everyone out
		logger.Error("failed to check rate limit", "error", err.Error())
	} else if !allowed {
		logger.Warn("rate limit exceeded for token endpoint", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	if err := r.ParseForm(); err != nil {
		logger.Warn("invalid token request form", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid form body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.rejectCredentials(w, logger, email)
		return
	}

	currentUser, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		h.rejectCredentials(w, logger, email)
		return
	}
	if !CheckPassword(password, currentUser.HashedPassword) {
		h.rejectCredentials(w, logger, email)
		return
	}

	accessToken, err := h.tokens.Issue(currentUser.Email, h.tokenTTL)
	if err != nil {
		logger.Error("failed to issue access token", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to issue token", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("access token issued", "email", email)

	httputil.RespondJSON(w, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, http.StatusOK)
}

func (h *Handler) rejectCredentials(w http.ResponseWriter, logger *logging.Logger, email string) {
	logger.Warn("token request failed: invalid credentials", "email", email)
	w.Header().Set("WWW-Authenticate", "Bearer")
	httputil.RespondErrorWithCode(w, "incorrect email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
}

// Me handles GET /auth/me. Requires the bearer middleware; responds with
// the authenticated user, password hash excluded by the model's JSON tags.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := GetUserFromContext(r.Context())
	if !ok {
		unauthorized(w, "missing authentication", httputil.CodeMissingAuth)
		return
	}

	httputil.RespondJSON(w, currentUser, http.StatusOK)
}
