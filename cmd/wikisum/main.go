package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	wikisummary "github.com/baam28/wiki-summary"
	"github.com/baam28/wiki-summary/internal/requestlog"
	"github.com/baam28/wiki-summary/internal/version"
	"github.com/baam28/wiki-summary/internal/wiki"
	"github.com/baam28/wiki-summary/llm"
)

func main() {
	// Load and validate config if WIKISUM_CONFIG is set; environment
	// variables override the file either way.
	cfg := wikisummary.DefaultConfig()
	if cfgPath := os.Getenv("WIKISUM_CONFIG"); cfgPath != "" {
		loaded, err := wikisummary.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
		log.Printf("Config loaded: provider=%s, model=%s", cfg.Provider, cfg.Model)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Invalid environment override: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create %s client: %v", cfg.Provider, err)
	}
	if cfg.Provider == wikisummary.ProviderOpenAI && cfg.OpenAIAPIKey == "" {
		log.Println("WARNING: OpenAI API key is not set!")
		log.Println("Set OPENAI_API_KEY; summarization and chat will not work without it.")
	}

	fetcher := wiki.NewFetcher(os.Getenv("WIKIPEDIA_BASE_URL"))
	svc := wikisummary.New(cfg, fetcher, client)

	audit, err := newAuditWriter(cfg.AuditLog)
	if err != nil {
		log.Fatalf("Failed to open audit log: %v", err)
	}
	if closer, ok := audit.(io.Closer); ok {
		defer closer.Close()
	}

	r := newRouter(svc, audit, cfg.CORSOrigins)

	addr := ":8000"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down gracefully…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("wikisum %s listening on %s (provider=%s, model=%s)", version.Short(), addr, cfg.Provider, cfg.Model)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		log.Fatalf("Server error: %v", err) //nolint:gocritic
	}
	log.Println("Server stopped.")
}

func newLLMClient(cfg wikisummary.Config) (llm.Client, error) {
	if cfg.Provider == wikisummary.ProviderBedrock {
		return llm.NewBedrock(context.Background(), cfg.Model, cfg.BedrockRegion)
	}
	return llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, ""), nil
}

func newAuditWriter(cfg wikisummary.AuditLogConfig) (requestlog.Writer, error) {
	switch cfg.Driver {
	case "sqlite":
		return requestlog.NewSQLiteWriter(cfg.DSN)
	case "postgres":
		return requestlog.NewPostgresWriter(cfg.DSN)
	default:
		return requestlog.NoopWriter{}, nil
	}
}
