package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Session  SessionConfig
	API      APIConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	LogLevel        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// ResetSchema drops and recreates all tables and loads seed data.
	// UpdateSchema creates missing tables only. Neither set leaves the
	// schema untouched.
	ResetSchema  bool
	UpdateSchema bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// SecretKey signs both access tokens and session cookies.
	// The paseto backend requires exactly 32 bytes (v4.local).
	SecretKey           []byte
	TokenBackend        string // jwt or paseto
	AccessTokenDuration time.Duration
}

type SessionConfig struct {
	Backend  string // cookie, memory or redis
	Duration time.Duration
}

type APIConfig struct {
	Prefix   string
	PageSize int
}

// Load reads configuration from environment variables.
// A .env file is honored when present.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			DBName:       getEnv("DB_NAME", "todoapp"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			ResetSchema:  getBoolEnv("RESET_DB", false),
			UpdateSchema: getBoolEnv("UPDATE_DB", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			SecretKey:           []byte(getEnv("SECRET_KEY", "")),
			TokenBackend:        getEnv("TOKEN_BACKEND", "jwt"),
			AccessTokenDuration: getDurationEnv("ACCESS_TOKEN_DURATION", 15*time.Minute),
		},
		Session: SessionConfig{
			Backend:  getEnv("SESSION_BACKEND", "cookie"),
			Duration: getDurationEnv("SESSION_DURATION", 14*24*time.Hour),
		},
		API: APIConfig{
			Prefix:   getEnv("API_PREFIX", "/api/v1"),
			PageSize: getIntEnv("PAGE_SIZE", 5),
		},
	}

	if len(cfg.Auth.SecretKey) == 0 {
		return nil, fmt.Errorf("SECRET_KEY must be set")
	}

	switch cfg.Auth.TokenBackend {
	case "jwt":
	case "paseto":
		if len(cfg.Auth.SecretKey) != 32 {
			return nil, fmt.Errorf("SECRET_KEY must be exactly 32 bytes for the paseto backend, got %d", len(cfg.Auth.SecretKey))
		}
	default:
		return nil, fmt.Errorf("TOKEN_BACKEND must be jwt or paseto, got %q", cfg.Auth.TokenBackend)
	}

	switch cfg.Session.Backend {
	case "cookie", "memory", "redis":
	default:
		return nil, fmt.Errorf("SESSION_BACKEND must be cookie, memory or redis, got %q", cfg.Session.Backend)
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
