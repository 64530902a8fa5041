package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven configuration for the CLI and the dev server
type Config struct {
	// Local storage configuration (CLI)
	Storage StorageConfig

	// Development API server configuration
	Server ServerConfig

	// Database Configuration (dev server)
	Database DatabaseConfig

	// PostgreSQL server prepared by cmd/createdb
	Postgres PostgresConfig

	// Logging Configuration
	Logging LoggingConfig
}

// StorageConfig selects where session state is persisted
type StorageConfig struct {
	Backend string // file, sqlite, memory
	Dir     string // empty = ~/.config/homebuddy/storage
	Keyring bool   // keep auth_token in the OS keychain
}

// ServerConfig holds dev API server settings
type ServerConfig struct {
	Port           string
	JWTSecret      string
	AdminEmail     string
	AdminPassword  string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// PostgresConfig names the server and database a deployment uses
type PostgresConfig struct {
	AdminURL string // connection to an existing database, usually "postgres"
	Database string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	keyring, err := strconv.ParseBool(getenv("HOMEBUDDY_KEYRING", "false"))
	if err != nil {
		keyring = false
	}

	return &Config{
		Storage: StorageConfig{
			Backend: strings.ToLower(getenv("HOMEBUDDY_STORAGE", "file")),
			Dir:     os.Getenv("HOMEBUDDY_STORAGE_DIR"),
			Keyring: keyring,
		},
		Server: ServerConfig{
			Port:           getenv("PORT", "8001"),
			JWTSecret:      getenv("JWT_SECRET", "dev-secret-change-me"),
			AdminEmail:     getenv("HOMEBUDDY_ADMIN_EMAIL", "admin@homebuddy.com"),
			AdminPassword:  getenv("HOMEBUDDY_ADMIN_PASSWORD", "admin123"),
			AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:5500")),
		},
		Database: DatabaseConfig{
			URL: getenv("DATABASE_URL", "homebuddy.sqlite"),
		},
		Postgres: PostgresConfig{
			AdminURL: getenv("POSTGRES_ADMIN_URL", "postgres://postgres@localhost:5432/postgres?sslmode=disable"),
			Database: getenv("POSTGRES_DB", "homebuddy"),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "console"),
		},
	}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
