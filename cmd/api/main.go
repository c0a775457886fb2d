package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-todo-api/internal/auth"
	"github.com/redmonkez12/go-todo-api/internal/config"
	"github.com/redmonkez12/go-todo-api/internal/database"
	httpServer "github.com/redmonkez12/go-todo-api/internal/http"
	"github.com/redmonkez12/go-todo-api/internal/logging"
	"github.com/redmonkez12/go-todo-api/internal/ratelimit"
	"github.com/redmonkez12/go-todo-api/internal/session"
	"github.com/redmonkez12/go-todo-api/internal/todo"
	"github.com/redmonkez12/go-todo-api/internal/user"
	"github.com/redmonkez12/go-todo-api/internal/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLoggerWithLevel(cfg.Server.IsDevelopment(), cfg.Server.LogLevel)
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Schema bootstrap, gated by env flags: destructive reset or additive update
	if cfg.Database.ResetSchema {
		logger.Info("resetting database schema and loading seed data")
		if err := database.ResetTables(context.Background(), db); err != nil {
			return fmt.Errorf("failed to reset schema: %w", err)
		}
	} else if cfg.Database.UpdateSchema {
		logger.Info("creating missing database tables")
		if err := database.UpdateTables(context.Background(), db); err != nil {
			return fmt.Errorf("failed to update schema: %w", err)
		}
	}

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	todoRepo := todo.NewRepository(db)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize token service
	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize session manager
	sessionManager := newSessionManager(cfg, redisClient)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(userRepo, tokenService, rateLimiter, cfg.Auth.AccessTokenDuration)
	authMiddleware := auth.NewMiddleware(tokenService, userRepo)
	userHandler := user.NewHandler(userRepo, rateLimiter, auth.HashPassword, cfg.API.PageSize)
	todoHandler := todo.NewHandler(todoRepo, cfg.API.PageSize)
	webHandler := web.NewHandler(sessionManager, userRepo)

	// Initialize router
	router := httpServer.NewRouter(cfg, logger, authHandler, authMiddleware, userHandler, todoHandler, webHandler)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// newTokenService selects the access-token backend
func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenBackend {
	case "paseto":
		return auth.NewPasetoService(cfg.SecretKey, "")
	default:
		return auth.NewJWTService(cfg.SecretKey, ""), nil
	}
}

// newSessionManager selects the browser session backend
func newSessionManager(cfg *config.Config, redisClient *redis.Client) session.Manager {
	secure := !cfg.Server.IsDevelopment()

	switch cfg.Session.Backend {
	case "memory":
		return session.NewStoreManager(session.NewMemoryStore(cfg.Session.Duration), cfg.Session.Duration, secure)
	case "redis":
		return session.NewStoreManager(session.NewRedisStore(redisClient, cfg.Session.Duration), cfg.Session.Duration, secure)
	default:
		return session.NewCookieManager(cfg.Auth.SecretKey, cfg.Session.Duration, secure)
	}
}
