package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/go-todo-api/internal/database"
	"github.com/redmonkez12/go-todo-api/internal/httputil"
	"github.com/redmonkez12/go-todo-api/internal/logging"
)

const minPasswordLength = 8

// RateLimiter guards signup against abuse
type RateLimiter interface {
	Allow(ctx context.Context, ip, purpose string) (bool, error)
}

// Store is the persistence surface the handlers need, satisfied by *Repository
type Store interface {
	Create(ctx context.Context, email, hashedPassword, fname, lname string) (*database.User, error)
	GetByIDWithTodos(ctx context.Context, id int64) (*database.User, error)
	List(ctx context.Context, offset, limit int) ([]*database.User, error)
}

// Handler contains HTTP handlers for user endpoints
type Handler struct {
	repo        Store
	rateLimiter RateLimiter
	// hashPassword is injected so this package stays free of crypto concerns
	hashPassword func(string) (string, error)
	pageSize     int
}

func NewHandler(repo Store, rateLimiter RateLimiter, hashPassword func(string) (string, error), pageSize int) *Handler {
	return &Handler{
		repo:         repo,
		rateLimiter:  rateLimiter,
		hashPassword: hashPassword,
		pageSize:     pageSize,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Email    string `json:"email"`
	FName    string `json:"fname"`
	LName    string `json:"lname"`
	Password string `json:"password"`
}

// Signup handles POST /users/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := httputil.ClientIP(r)
	allowed, err := h.rateLimiter.Allow(r.Context(), ip, "signup")
	if err != nil {
		logger.Error("failed to check rate limit", "error", err.Error())
	} else if !allowed {
		logger.Warn("rate limit exceeded for signup", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if req.Email == "" {
		httputil.RespondErrorWithCode(w, "email is required", httputil.CodeEmailRequired, http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		logger.Warn("signup failed: invalid email format")
		httputil.RespondErrorWithCode(w, "invalid email format", httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		httputil.RespondErrorWithCode(w, "password is required", httputil.CodePasswordRequired, http.StatusBadRequest)
		return
	}
	if len(req.Password) < minPasswordLength {
		httputil.RespondErrorWithCode(w, "password must be at least 8 characters", httputil.CodePasswordTooShort, http.StatusBadRequest)
		return
	}

	hashed, err := h.hashPassword(req.Password)
	if err != nil {
		logger.Error("signup failed: hashing error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	newUser, err := h.repo.Create(r.Context(), req.Email, hashed, req.FName, req.LName)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			logger.Warn("signup failed: email already registered")
			httputil.RespondErrorWithCode(w, "email already registered", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		logger.Error("signup failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user signed up", "user_id", newUser.ID)

	httputil.RespondJSON(w, newUser, http.StatusCreated)
}

// List handles GET /users with offset/limit pagination
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	offset, limit := httputil.Pagination(r, h.pageSize)

	users, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list users", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, users, http.StatusOK)
}

// Get handles GET /users/{id}; the response nests the user's todos
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid user id", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	found, err := h.repo.GetByIDWithTodos(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, found, http.StatusOK)
}
