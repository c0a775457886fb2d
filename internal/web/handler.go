// Package web serves the browser-facing pages. Authentication here rides on
// sessions, and failures degrade to a redirect to /login rather than an
// error response; the JSON API under /api is the hard-401 surface.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/redmonkez12/go-todo-api/internal/auth"
	"github.com/redmonkez12/go-todo-api/internal/database"
	"github.com/redmonkez12/go-todo-api/internal/logging"
	"github.com/redmonkez12/go-todo-api/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// UserDirectory resolves session credentials to user records
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*database.User, error)
	GetByIDWithTodos(ctx context.Context, id int64) (*database.User, error)
}

// Handler contains the browser endpoints
type Handler struct {
	sessions session.Manager
	users    UserDirectory
}

func NewHandler(sessions session.Manager, users UserDirectory) *Handler {
	return &Handler{sessions: sessions, users: users}
}

type loginPageData struct {
	Flashes []string
}

type homePageData struct {
	User    *database.User
	Flashes []string
}

// LoginPage handles GET /login
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Already signed in: straight to home
	if claims, err := h.sessions.Current(r); err == nil && claims.UserID != 0 {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}

	flashes, err := h.sessions.PopFlashes(w, r)
	if err != nil {
		logger.Warn("failed to pop flash messages", "error", err.Error())
	}

	h.render(w, r, "login.html", loginPageData{Flashes: flashes})
}

// LoginSubmit handles POST /login
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.flashAndBack(w, r, "Invalid form submission.")
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	currentUser, err := h.users.GetByEmail(r.Context(), email)
	if err != nil || !auth.CheckPassword(password, currentUser.HashedPassword) {
		logger.Warn("browser login failed", "email", email)
		h.flashAndBack(w, r, "Incorrect email or password.")
		return
	}

	if err := h.sessions.Login(w, r, currentUser.ID); err != nil {
		logger.Error("failed to create session", "error", err.Error())
		h.flashAndBack(w, r, "Login failed, please try again.")
		return
	}

	logger.Info("browser login succeeded", "user_id", currentUser.ID)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// Logout handles GET /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := h.sessions.Logout(w, r); err != nil {
		logger.Warn("failed to destroy session", "error", err.Error())
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Home handles GET /home. Session-gated: anonymous visitors are redirected
// to the login page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	claims, err := h.sessions.Current(r)
	if err != nil || claims.UserID == 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	currentUser, err := h.users.GetByIDWithTodos(r.Context(), claims.UserID)
	if err != nil {
		// Session points at a user that no longer exists
		logger.Warn("session user not found", "user_id", claims.UserID)
		_ = h.sessions.Logout(w, r)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	flashes, err := h.sessions.PopFlashes(w, r)
	if err != nil {
		logger.Warn("failed to pop flash messages", "error", err.Error())
	}

	h.render(w, r, "home.html", homePageData{User: currentUser, Flashes: flashes})
}

func (h *Handler) flashAndBack(w http.ResponseWriter, r *http.Request, message string) {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := h.sessions.Flash(w, r, message); err != nil {
		logger.Warn("failed to queue flash message", "error", err.Error())
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		logger := logging.GetLoggerFromContext(r.Context())
		logger.Error("failed to render template", "template", name, "error", err.Error())
	}
}
