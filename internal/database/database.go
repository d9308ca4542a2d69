package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"bakery-storefront/internal/config"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health(ctx context.Context) map[string]string

	// DB exposes the pool for repositories.
	DB() *sql.DB

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
}

const (
	maxOpenConns    = 25
	maxIdleConns    = 10
	connMaxLifetime = 30 * time.Minute
)

type service struct {
	log  *slog.Logger
	name string
	db   *sql.DB
}

func New(ctx context.Context, log *slog.Logger, cfg config.DB) (Service, error) {
	s, err := Open(ctx, log, cfg.URL())
	if err != nil {
		return nil, err
	}
	s.(*service).name = cfg.Database
	return s, nil
}

// Open connects with a full connection URL and verifies the connection.
func Open(ctx context.Context, log *slog.Logger, url string) (Service, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &service{log: log, db: db}, nil
}

func (s *service) DB() *sql.DB {
	return s.db
}

// Health pings the database and reports pool usage. Status is "down" when
// the ping fails and "busy" when checkouts are queueing for a connection.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.log.Error("db down", "err", err)
		return map[string]string{
			"status": "down",
			"error":  fmt.Sprintf("db down: %v", err),
		}
	}

	st := s.db.Stats()
	stats := map[string]string{
		"status":           "up",
		"open_connections": strconv.Itoa(st.OpenConnections),
		"max_open":         strconv.Itoa(maxOpenConns),
		"in_use":           strconv.Itoa(st.InUse),
		"idle":             strconv.Itoa(st.Idle),
		"wait_count":       strconv.FormatInt(st.WaitCount, 10),
		"wait_duration":    st.WaitDuration.String(),
	}
	// every connection is held by a transaction and callers are waiting
	if st.InUse >= maxOpenConns && st.WaitCount > 0 {
		stats["status"] = "busy"
		s.log.Warn("db pool exhausted", "in_use", st.InUse, "wait_count", st.WaitCount)
	}
	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	s.log.Info("disconnected from database", "database", s.name)
	return s.db.Close()
}
