package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type DB struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
}

func (d DB) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.Schema,
	)
}

type Config struct {
	HTTPAddr       string
	DB             DB
	Storage        string
	JWTSecret      string
	AllowedOrigins []string
	LogLevel       string
}

// Load reads configuration from the environment, after applying a .env file
// if one exists in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		HTTPAddr: env("HTTP_ADDR", ":8080"),
		DB: DB{
			Host:     env("BLUEPRINT_DB_HOST", "localhost"),
			Port:     env("BLUEPRINT_DB_PORT", "5432"),
			Database: env("BLUEPRINT_DB_DATABASE", "bakery"),
			Username: env("BLUEPRINT_DB_USERNAME", "postgres"),
			Password: env("BLUEPRINT_DB_PASSWORD", "postgres"),
			Schema:   env("BLUEPRINT_DB_SCHEMA", "public"),
		},
		Storage:        strings.ToLower(env("STORAGE_DRIVER", StoragePostgres)),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitList(env("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:       env("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}
	return cfg, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
