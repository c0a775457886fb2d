package todo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/go-todo-api/internal/auth"
	"github.com/redmonkez12/go-todo-api/internal/database"
	"github.com/redmonkez12/go-todo-api/internal/httputil"
	"github.com/redmonkez12/go-todo-api/internal/logging"
)

// Store is the persistence surface the handlers need, satisfied by *Repository
type Store interface {
	Create(ctx context.Context, ownerID int64, text string, completed bool) (*database.Todo, error)
	GetByID(ctx context.Context, id int64) (*database.Todo, error)
	List(ctx context.Context, offset, limit int) ([]*database.Todo, error)
	ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*database.Todo, error)
	Update(ctx context.Context, id int64, text string, completed bool) (*database.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// Handler contains HTTP handlers for todo endpoints
type Handler struct {
	repo     Store
	pageSize int
}

func NewHandler(repo Store, pageSize int) *Handler {
	return &Handler{repo: repo, pageSize: pageSize}
}

// TodoRequest represents the create/update request body
type TodoRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// List handles GET /todos with optional user_id filter and pagination
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	offset, limit := httputil.Pagination(r, h.pageSize)

	var err error
	var todos any

	if v := r.URL.Query().Get("user_id"); v != "" {
		ownerID, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			httputil.RespondErrorWithCode(w, "invalid user_id", httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
		todos, err = h.repo.ListByOwner(r.Context(), ownerID, offset, limit)
	} else {
		todos, err = h.repo.List(r.Context(), offset, limit)
	}

	if err != nil {
		logger.Error("failed to list todos", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list todos", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, todos, http.StatusOK)
}

// Get handles GET /todos/{id}; the response nests the owner
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := todoID(w, r)
	if !ok {
		return
	}

	found, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "todo not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get todo", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get todo", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, found, http.StatusOK)
}

// Create handles POST /todos. Requires the bearer middleware; the new todo
// is owned by the authenticated caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req TodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		httputil.RespondErrorWithCode(w, "text is required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(r.Context(), owner.ID, req.Text, req.Completed)
	if err != nil {
		logger.Error("failed to create todo", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create todo", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("todo created", "todo_id", created.ID, "owner_id", owner.ID)

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Update handles PUT /todos/{id}. Requires the bearer middleware.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := todoID(w, r)
	if !ok {
		return
	}

	var req TodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		httputil.RespondErrorWithCode(w, "text is required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	updated, err := h.repo.Update(r.Context(), id, req.Text, req.Completed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "todo not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update todo", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update todo", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete handles DELETE /todos/{id}. Requires the bearer middleware.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := todoID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "todo not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete todo", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete todo", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid todo id", httputil.CodeValidationFailed, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
