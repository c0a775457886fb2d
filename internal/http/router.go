package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/redmonkez12/go-todo-api/internal/auth"
	"github.com/redmonkez12/go-todo-api/internal/config"
	"github.com/redmonkez12/go-todo-api/internal/httputil"
	"github.com/redmonkez12/go-todo-api/internal/logging"
	"github.com/redmonkez12/go-todo-api/internal/todo"
	"github.com/redmonkez12/go-todo-api/internal/user"
	"github.com/redmonkez12/go-todo-api/internal/web"
)

const (
	ServiceName    = "go-todo-api"
	ServiceVersion = "0.3.0"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	logger *logging.Logger,
	authHandler *auth.Handler,
	authMiddleware *auth.Middleware,
	userHandler *user.Handler,
	todoHandler *todo.Handler,
	webHandler *web.Handler,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Service metadata
	r.Get("/", handleRoot)
	r.Get("/health", handleHealth)

	// JSON API
	r.Route(cfg.API.Prefix, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/token", authHandler.Token)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/signup", userHandler.Signup)
			r.Get("/{id}", userHandler.Get)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", todoHandler.List)
			r.Get("/{id}", todoHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Post("/", todoHandler.Create)
				r.Put("/{id}", todoHandler.Update)
				r.Delete("/{id}", todoHandler.Delete)
			})
		})
	})

	// Browser pages (session auth, soft failures)
	r.Get("/login", webHandler.LoginPage)
	r.Post("/login", webHandler.LoginSubmit)
	r.Get("/logout", webHandler.Logout)
	r.Get("/home", webHandler.Home)

	return r
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"msg": "Todo App"}, http.StatusOK)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{
		"name":    ServiceName,
		"version": ServiceVersion,
	}, http.StatusOK)
}
