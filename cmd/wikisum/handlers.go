package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	wikisummary "github.com/baam28/wiki-summary"
	"github.com/baam28/wiki-summary/internal/cache"
	"github.com/baam28/wiki-summary/internal/logging"
	"github.com/baam28/wiki-summary/internal/metrics"
	"github.com/baam28/wiki-summary/internal/pricing"
	"github.com/baam28/wiki-summary/internal/requestlog"
	"github.com/baam28/wiki-summary/internal/version"
	"github.com/baam28/wiki-summary/web"
)

const (
	maxQueryLen    = 200
	maxQuestionLen = 500
)

type server struct {
	svc   *wikisummary.Service
	audit requestlog.Writer
}

type summarizeRequest struct {
	Query string `json:"query"`
}

type summarizeResponse struct {
	Query     string `json:"query"`
	Summary   string `json:"summary"`
	SourceURL string `json:"source_url"`
}

type chatRequest struct {
	Query    string `json:"query"`
	Question string `json:"question"`
}

type chatResponse struct {
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	ArticleQuery string `json:"article_query"`
}

// newRouter builds the HTTP router.
func newRouter(svc *wikisummary.Service, audit requestlog.Writer, corsOrigins []string) http.Handler {
	s := &server{svc: svc, audit: audit}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(corsMiddleware(corsOrigins...))

	r.Get("/", s.handleIndex)
	r.Post("/summarize", s.handleSummarize)
	r.Post("/chat", s.handleChat)
	r.Get("/cache/stats", s.handleCacheStats)
	r.Delete("/cache/clear", s.handleCacheClear)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (s *server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RequestsTotal.WithLabelValues("summarize", "invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" || len(query) > maxQueryLen {
		metrics.RequestsTotal.WithLabelValues("summarize", "invalid").Inc()
		writeError(w, http.StatusBadRequest, "query must be between 1 and 200 characters")
		return
	}

	client := clientID(r)
	result, err := s.svc.Summarize(r.Context(), client, query)
	if err != nil {
		status := s.writeServiceError(w, "summarize", err)
		s.writeAudit(r, "summarize", client, query, false, 0, 0, status, err)
		return
	}

	metrics.RequestsTotal.WithLabelValues("summarize", "success").Inc()
	metrics.RequestDuration.WithLabelValues("summarize").Observe(time.Since(start).Seconds())
	s.writeAudit(r, "summarize", client, query, result.CacheHit, result.InputTokens, result.OutputTokens, http.StatusOK, nil)

	writeJSON(w, http.StatusOK, summarizeResponse{
		Query:     result.Query,
		Summary:   result.Summary,
		SourceURL: result.SourceURL,
	})
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RequestsTotal.WithLabelValues("chat", "invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query := strings.TrimSpace(req.Query)
	question := strings.TrimSpace(req.Question)
	if query == "" || len(query) > maxQueryLen {
		metrics.RequestsTotal.WithLabelValues("chat", "invalid").Inc()
		writeError(w, http.StatusBadRequest, "query must be between 1 and 200 characters")
		return
	}
	if question == "" || len(question) > maxQuestionLen {
		metrics.RequestsTotal.WithLabelValues("chat", "invalid").Inc()
		writeError(w, http.StatusBadRequest, "question must be between 1 and 500 characters")
		return
	}

	client := clientID(r)
	result, err := s.svc.AnswerQuestion(r.Context(), client, query, question)
	if err != nil {
		status := s.writeServiceError(w, "chat", err)
		s.writeAudit(r, "chat", client, query, false, 0, 0, status, err)
		return
	}

	metrics.RequestsTotal.WithLabelValues("chat", "success").Inc()
	metrics.RequestDuration.WithLabelValues("chat").Observe(time.Since(start).Seconds())
	s.writeAudit(r, "chat", client, query, result.ArticleCacheHit, result.InputTokens, result.OutputTokens, http.StatusOK, nil)

	writeJSON(w, http.StatusOK, chatResponse{
		Question:     result.Question,
		Answer:       result.Answer,
		ArticleQuery: result.ArticleQuery,
	})
}

func (s *server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := web.Assets.ReadFile("index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CacheStats())
}

func (s *server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	s.svc.ClearCache()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared successfully"})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.svc.CacheStats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "ok",
		"version":            version.Short(),
		"cache_enabled":      stats.Enabled,
		"cache_size":         stats.Size,
		"api_key_configured": s.svc.APIKeyConfigured(),
		"model_backend":      s.svc.BreakerState(),
	})
}

// writeServiceError maps orchestrator errors to HTTP status codes and
// writes the error body. Returns the status for auditing.
func (s *server) writeServiceError(w http.ResponseWriter, endpoint string, err error) int {
	var rateErr *wikisummary.RateLimitError
	if errors.As(err, &rateErr) {
		metrics.RequestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
		w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfter))
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		return http.StatusTooManyRequests
	}

	var notFound *wikisummary.NotFoundError
	if errors.As(err, &notFound) {
		metrics.RequestsTotal.WithLabelValues(endpoint, "not_found").Inc()
		writeError(w, http.StatusNotFound, notFound.Error())
		return http.StatusNotFound
	}

	metrics.RequestsTotal.WithLabelValues(endpoint, "generation_failed").Inc()
	writeError(w, http.StatusInternalServerError, err.Error())
	return http.StatusInternalServerError
}

// writeAudit records the request outcome. Audit failures are logged, never
// surfaced to the caller; the write uses a fresh context so a cancelled
// request still gets audited.
func (s *server) writeAudit(r *http.Request, endpoint, client, query string, cacheHit bool, inTokens, outTokens, status int, reqErr error) {
	cost, _ := pricing.Estimate(s.svc.Config().Model, inTokens, outTokens)
	entry := requestlog.Entry{
		TraceID:          logging.TraceIDFromContext(r.Context()),
		Endpoint:         endpoint,
		ClientID:         client,
		QueryKey:         cache.DeriveKey(query),
		CacheHit:         cacheHit,
		PromptTokens:     inTokens,
		CompletionTokens: outTokens,
		CostUSD:          cost,
		Status:           status,
	}
	if reqErr != nil {
		entry.ErrorMessage = reqErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.audit.Write(ctx, entry); err != nil {
		logging.FromContext(r.Context()).Error("audit write failed", "error", err.Error())
	}
}

// clientID identifies the caller for rate limiting. RealIP middleware has
// already rewritten RemoteAddr from X-Forwarded-For / X-Real-IP when
// present; strip the port if one remains.
func clientID(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes the error body shape shared by all failure responses.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]interface{}{
		"detail":      detail,
		"status_code": status,
	})
}
