// Package requestlog persists an audit trail of summarize and chat
// requests: who asked, what was asked, whether the caches answered, and
// how many model tokens the request consumed. SQLite is the default
// backend; Postgres is available for shared deployments.
package requestlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Entry is one audited request.
type Entry struct {
	TraceID          string
	Endpoint         string // "summarize" or "chat"
	ClientID         string
	QueryKey         string // derived cache key, not the raw query
	CacheHit         bool
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
	Status           int
	ErrorMessage     string
	CreatedAt        time.Time
}

// Writer persists audit entries.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

// NoopWriter ignores all writes. Used when auditing is disabled.
type NoopWriter struct{}

func (NoopWriter) Write(_ context.Context, _ Entry) error { return nil }

// SQLWriter persists entries to SQLite or Postgres.
type SQLWriter struct {
	db      *sql.DB
	dialect string
}

// NewSQLiteWriter opens (or creates) a SQLite-backed audit log at dsn.
func NewSQLiteWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "wikisum-requests.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite audit log: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "sqlite"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// NewPostgresWriter opens a Postgres-backed audit log.
func NewPostgresWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres audit log: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "postgres"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLWriter) init() error {
	if err := w.db.Ping(); err != nil {
		return fmt.Errorf("ping %s audit log: %w", w.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS request_audit (
	id INTEGER PRIMARY KEY,
	trace_id TEXT,
	endpoint TEXT NOT NULL,
	client_id TEXT,
	query_key TEXT,
	cache_hit INTEGER NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	cost_usd REAL NOT NULL DEFAULT 0,
	status INTEGER NOT NULL,
	error_message TEXT,
	created_at TIMESTAMP NOT NULL
);`

	if w.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS request_audit (
	id BIGSERIAL PRIMARY KEY,
	trace_id TEXT,
	endpoint TEXT NOT NULL,
	client_id TEXT,
	query_key TEXT,
	cache_hit BOOLEAN NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	cost_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
	status INTEGER NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize audit log schema: %w", err)
	}
	return nil
}

// Write appends one entry. A zero CreatedAt is stamped with the current
// UTC time.
func (w *SQLWriter) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO request_audit(trace_id, endpoint, client_id, query_key, cache_hit, prompt_tokens, completion_tokens, cost_usd, status, error_message, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if w.dialect == "postgres" {
		query = `INSERT INTO request_audit(trace_id, endpoint, client_id, query_key, cache_hit, prompt_tokens, completion_tokens, cost_usd, status, error_message, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	}

	_, err := w.db.ExecContext(ctx, query,
		entry.TraceID,
		entry.Endpoint,
		entry.ClientID,
		entry.QueryKey,
		entry.CacheHit,
		entry.PromptTokens,
		entry.CompletionTokens,
		entry.CostUSD,
		entry.Status,
		entry.ErrorMessage,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (w *SQLWriter) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}
