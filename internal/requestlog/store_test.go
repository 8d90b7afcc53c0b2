package requestlog

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
)

func TestNoopWriter(t *testing.T) {
	var w Writer = NoopWriter{}
	if err := w.Write(context.Background(), Entry{Endpoint: "summarize"}); err != nil {
		t.Errorf("NoopWriter.Write: %v", err)
	}
}

func TestSQLiteWriter_WriteAndReadBack(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "audit.db")
	w, err := NewSQLiteWriter(dsn)
	if err != nil {
		t.Fatalf("NewSQLiteWriter: %v", err)
	}
	defer w.Close()

	entry := Entry{
		TraceID:          "trace-1",
		Endpoint:         "summarize",
		ClientID:         "10.0.0.1",
		QueryKey:         "abc123",
		CacheHit:         true,
		PromptTokens:     1200,
		CompletionTokens: 250,
		CostUSD:          0.00033,
		Status:           http.StatusOK,
	}
	if err := w.Write(context.Background(), entry); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(context.Background(), Entry{
		Endpoint:     "chat",
		Status:       http.StatusNotFound,
		ErrorMessage: "could not find Wikipedia article for query: zxqwv",
	}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var count int
	if err := w.db.QueryRow(`SELECT COUNT(*) FROM request_audit`).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 2 {
		t.Errorf("row count = %d, want 2", count)
	}

	var endpoint, queryKey string
	var promptTokens int
	var cacheHit bool
	var cost float64
	err = w.db.QueryRow(
		`SELECT endpoint, query_key, prompt_tokens, cache_hit, cost_usd FROM request_audit WHERE trace_id = ?`,
		"trace-1",
	).Scan(&endpoint, &queryKey, &promptTokens, &cacheHit, &cost)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if endpoint != "summarize" || queryKey != "abc123" || promptTokens != 1200 || !cacheHit {
		t.Errorf("read back endpoint=%s key=%s tokens=%d hit=%t", endpoint, queryKey, promptTokens, cacheHit)
	}
	if cost != 0.00033 {
		t.Errorf("cost_usd = %g, want 0.00033", cost)
	}
}

func TestSQLiteWriter_StampsCreatedAt(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "audit.db")
	w, err := NewSQLiteWriter(dsn)
	if err != nil {
		t.Fatalf("NewSQLiteWriter: %v", err)
	}
	defer w.Close()

	if err := w.Write(context.Background(), Entry{Endpoint: "summarize", Status: 200}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var createdAt string
	if err := w.db.QueryRow(`SELECT created_at FROM request_audit`).Scan(&createdAt); err != nil {
		t.Fatalf("read created_at: %v", err)
	}
	if createdAt == "" {
		t.Error("created_at not stamped")
	}
}

func TestNewPostgresWriter_RequiresDSN(t *testing.T) {
	if _, err := NewPostgresWriter("  "); err == nil {
		t.Error("expected error for empty postgres dsn")
	}
}
