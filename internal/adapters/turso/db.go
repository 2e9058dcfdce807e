package turso

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/go-libsql"
)

// DriverName is the database/sql driver registered by go-libsql.
const DriverName = "libsql"

func init() {
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// Options configures the database connection.
type Options struct {
	Ping bool
}

// NewDB opens a libsql database. Local "file:" URLs ignore authToken; remote
// URLs carry it as a query parameter.
func NewDB(databaseURL, authToken string, opts Options) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	connStr := databaseURL
	remote := !strings.HasPrefix(databaseURL, "file:")
	if remote && authToken != "" {
		connStr = databaseURL + "?authToken=" + authToken
	}

	db, err := sql.Open(DriverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if remote {
		// Turso closes idle streams aggressively, so never keep idle connections.
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(0)
	}

	if opts.Ping {
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}

	return db, nil
}

// IsStreamError checks if an error is a Turso "stream not found" error.
func IsStreamError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stream not found")
}

// WithRetry retries fn up to maxRetries times on Turso stream errors.
func WithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}

		if !IsStreamError(err) || attempt == maxRetries {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	return result, err
}
