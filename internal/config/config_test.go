package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"HOMEBUDDY_STORAGE", "HOMEBUDDY_STORAGE_DIR", "HOMEBUDDY_KEYRING", "PORT",
		"JWT_SECRET", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT", "ALLOWED_ORIGINS",
		"POSTGRES_ADMIN_URL", "POSTGRES_DB",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.False(t, cfg.Storage.Keyring)
	assert.Equal(t, "8001", cfg.Server.Port)
	assert.Equal(t, "homebuddy.sqlite", cfg.Database.URL)
	assert.Equal(t, "homebuddy", cfg.Postgres.Database)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:5500"}, cfg.Server.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEBUDDY_STORAGE", "SQLite")
	t.Setenv("HOMEBUDDY_KEYRING", "true")
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Keyring)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_BadKeyringValueFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEBUDDY_KEYRING", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Storage.Keyring)
}
