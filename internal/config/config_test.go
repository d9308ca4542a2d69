package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BLUEPRINT_DB_HOST", "db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://shop.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, []string{"http://localhost:5173", "https://shop.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:postgres@db:5432/bakery?sslmode=disable&search_path=public", cfg.DB.URL())
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := Load()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}
