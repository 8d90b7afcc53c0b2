// Package wikisummary answers natural-language queries against Wikipedia
// content: fetch an article, produce a model-generated summary, and answer
// follow-up questions grounded only in that article's text.
//
// The Service type is the main entry point: create one with New, then call
// Summarize and AnswerQuestion. It composes the two TTL caches (article
// text and summaries), the per-client sliding-window rate limiter, and the
// token-budget truncation that keeps prompts inside the model's context
// window. Article retrieval and text generation are delegated to the
// ArticleFetcher and llm.Client collaborators, injected at construction so
// tests can substitute fakes.
package wikisummary

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/baam28/wiki-summary/internal/cache"
	"github.com/baam28/wiki-summary/internal/circuitbreaker"
	"github.com/baam28/wiki-summary/internal/logging"
	"github.com/baam28/wiki-summary/internal/metrics"
	"github.com/baam28/wiki-summary/internal/pricing"
	"github.com/baam28/wiki-summary/internal/ratelimit"
	"github.com/baam28/wiki-summary/internal/tokens"
	"github.com/baam28/wiki-summary/llm"
)

// ArticleFetcher resolves a search query to an article's plain text and
// canonical URL. No match is signalled by empty strings; an error covers
// transport failures only. The orchestrator folds both into NotFoundError.
type ArticleFetcher interface {
	Fetch(ctx context.Context, query string) (text, sourceURL string, err error)
}

// Service orchestrates the summarize and chat workflows.
type Service struct {
	cfg       Config
	fetcher   ArticleFetcher
	client    llm.Client
	articles  *cache.TTL[string]
	summaries *cache.TTL[string]
	limiter   *ratelimit.SlidingWindow
	breaker   *circuitbreaker.Breaker
	flight    singleflight.Group
}

// New constructs a Service. cfg should already be validated.
func New(cfg Config, fetcher ArticleFetcher, client llm.Client) *Service {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return &Service{
		cfg:       cfg,
		fetcher:   fetcher,
		client:    client,
		articles:  cache.New[string](ttl),
		summaries: cache.New[string](ttl),
		limiter:   ratelimit.New(cfg.RateLimitPerMinute, cfg.RateLimitEnabled),
		breaker:   circuitbreaker.New(5, 30*time.Second),
	}
}

// generate runs one model call under the circuit breaker and records the
// provider-reported token usage and cost.
func (s *Service) generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	var resp *llm.Response
	err := s.breaker.Do(func() error {
		var err error
		resp, err = s.client.Generate(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TokensInput.WithLabelValues(s.client.Name()).Add(float64(resp.InputTokens))
	metrics.TokensOutput.WithLabelValues(s.client.Name()).Add(float64(resp.OutputTokens))
	if usd, ok := pricing.Estimate(s.cfg.Model, resp.InputTokens, resp.OutputTokens); ok {
		metrics.CostUSD.WithLabelValues(s.client.Name()).Add(usd)
	}
	return resp, nil
}

// SummarizeResult is the outcome of a successful Summarize call.
type SummarizeResult struct {
	Query     string
	Summary   string
	SourceURL string

	// CacheHit reports whether the summary came from the cache. Token
	// counts are zero on a hit (no model call was made).
	CacheHit     bool
	InputTokens  int
	OutputTokens int
}

// AnswerResult is the outcome of a successful AnswerQuestion call.
type AnswerResult struct {
	Question     string
	Answer       string
	ArticleQuery string

	// ArticleCacheHit reports whether the article text came from cache.
	// Answers themselves are never cached.
	ArticleCacheHit bool
	InputTokens     int
	OutputTokens    int
}

type summarizeOutcome struct {
	summary   string
	sourceURL string
	in, out   int
}

// Summarize returns a model-generated summary of the Wikipedia article
// best matching query, with its source URL. Summaries are cached under the
// normalized query; a cache hit still resolves a fresh source URL (the URL
// is not stored with the summary) and backfills the article cache if it
// went cold in the meantime.
func (s *Service) Summarize(ctx context.Context, clientID, query string) (*SummarizeResult, error) {
	if allowed, retryAfter := s.limiter.Admit(clientID); !allowed {
		metrics.RateLimitRejections.Inc()
		logging.FromContext(ctx).Warn("rate limit exceeded", "client_id", clientID)
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}

	query = strings.TrimSpace(query)
	key := cache.DeriveKey(query)
	log := logging.FromContext(ctx)
	log.Info("summarize request", "query", query)

	if s.cfg.CacheEnabled {
		if summary, ok := s.summaries.Get(key); ok {
			metrics.CacheHits.WithLabelValues("summary").Inc()
			// The URL is not stored alongside the summary, so resolve it
			// with a fetch; the fetch result also re-warms a cold article
			// cache. If the fetch yields nothing, fall through to the miss
			// path, which reports NotFound.
			text, sourceURL, err := s.fetcher.Fetch(ctx, query)
			if err == nil && sourceURL != "" {
				if _, cached := s.articles.Get(key); !cached && text != "" {
					s.articles.Set(key, text)
				}
				return &SummarizeResult{
					Query:     query,
					Summary:   summary,
					SourceURL: sourceURL,
					CacheHit:  true,
				}, nil
			}
		} else {
			metrics.CacheMisses.WithLabelValues("summary").Inc()
		}
	}

	// Miss path. Concurrent identical-query misses share one upstream
	// fetch+generate via singleflight instead of duplicating the work.
	v, err, _ := s.flight.Do("summarize:"+key, func() (interface{}, error) {
		text, sourceURL, err := s.fetcher.Fetch(ctx, query)
		if err != nil || text == "" || sourceURL == "" {
			if err != nil {
				log.Error("article fetch failed", "query", query, "error", err.Error())
			}
			return nil, &NotFoundError{Query: query}
		}
		if s.cfg.CacheEnabled {
			s.articles.Set(key, text)
		}

		system, user := summaryPrompt(tokens.Truncate(text, s.cfg.MaxInputTokens), s.cfg.MaxSummaryWords)
		resp, err := s.generate(ctx, llm.Request{
			System:      system,
			User:        user,
			MaxTokens:   s.cfg.MaxOutputTokens,
			Temperature: s.cfg.Temperature,
		})
		if err != nil || resp.Text == "" {
			if err != nil {
				log.Error("summary generation failed", "query", query, "error", err.Error())
			}
			return nil, &GenerationError{Op: OpSummarize, Err: err}
		}

		if s.cfg.CacheEnabled {
			s.summaries.Set(key, resp.Text)
		}
		return summarizeOutcome{
			summary:   resp.Text,
			sourceURL: sourceURL,
			in:        resp.InputTokens,
			out:       resp.OutputTokens,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	outcome := v.(summarizeOutcome)
	return &SummarizeResult{
		Query:        query,
		Summary:      outcome.summary,
		SourceURL:    outcome.sourceURL,
		InputTokens:  outcome.in,
		OutputTokens: outcome.out,
	}, nil
}

// AnswerQuestion answers a question using only the text of the article
// matching query. The article is served from cache when possible and
// fetched (and cached) otherwise. Answers are never cached: they are
// per-question.
func (s *Service) AnswerQuestion(ctx context.Context, clientID, query, question string) (*AnswerResult, error) {
	if allowed, retryAfter := s.limiter.Admit(clientID); !allowed {
		metrics.RateLimitRejections.Inc()
		logging.FromContext(ctx).Warn("rate limit exceeded", "client_id", clientID)
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}

	query = strings.TrimSpace(query)
	question = strings.TrimSpace(question)
	key := cache.DeriveKey(query)
	log := logging.FromContext(ctx)
	log.Info("chat request", "query", query)

	var article string
	articleHit := false
	if s.cfg.CacheEnabled {
		if text, ok := s.articles.Get(key); ok {
			article = text
			articleHit = true
			metrics.CacheHits.WithLabelValues("article").Inc()
		} else {
			metrics.CacheMisses.WithLabelValues("article").Inc()
		}
	}

	if !articleHit {
		v, err, _ := s.flight.Do("article:"+key, func() (interface{}, error) {
			text, _, err := s.fetcher.Fetch(ctx, query)
			if err != nil || text == "" {
				if err != nil {
					log.Error("article fetch failed", "query", query, "error", err.Error())
				}
				return nil, &NotFoundError{Query: query}
			}
			if s.cfg.CacheEnabled {
				s.articles.Set(key, text)
			}
			return text, nil
		})
		if err != nil {
			return nil, err
		}
		article = v.(string)
	}

	// Reserve headroom below the input budget so the question and the
	// grounding instructions fit alongside the article.
	budget := s.cfg.MaxInputTokens - s.cfg.AnswerReserveTokens
	truncated := tokens.Truncate(article, budget)
	log.Debug("answering question", "query", query, "input_tokens", tokens.Count(truncated))

	system, user := answerPrompt(truncated, question, query)
	resp, err := s.generate(ctx, llm.Request{
		System:      system,
		User:        user,
		MaxTokens:   s.cfg.MaxOutputTokens,
		Temperature: answerTemperature,
	})
	if err != nil || resp.Text == "" {
		if err != nil {
			log.Error("answer generation failed", "query", query, "error", err.Error())
		}
		return nil, &GenerationError{Op: OpAnswer, Err: err}
	}

	return &AnswerResult{
		Question:        question,
		Answer:          resp.Text,
		ArticleQuery:    query,
		ArticleCacheHit: articleHit,
		InputTokens:     resp.InputTokens,
		OutputTokens:    resp.OutputTokens,
	}, nil
}

// CacheStats describes the summary cache for the stats endpoint. Size is
// the raw entry count: entries past their TTL that have not been read
// since expiring are still included (they are swept lazily on access).
type CacheStats struct {
	Enabled    bool `json:"enabled"`
	Size       int  `json:"size"`
	TTLSeconds int  `json:"ttl_seconds"`
}

// CacheStats reports the state of the summary cache.
func (s *Service) CacheStats() CacheStats {
	return CacheStats{
		Enabled:    s.cfg.CacheEnabled,
		Size:       s.summaries.Size(),
		TTLSeconds: s.summaries.TTLSeconds(),
	}
}

// ClearCache removes all cached articles and summaries.
func (s *Service) ClearCache() {
	s.summaries.Clear()
	s.articles.Clear()
	logging.Logger.Info("cache cleared")
}

// ResetRateLimit clears the rate-limit window for a client. Administrative
// and test hook.
func (s *Service) ResetRateLimit(clientID string) {
	s.limiter.Reset(clientID)
}

// BreakerState reports the model-backend circuit state: "closed", "open",
// or "half_open".
func (s *Service) BreakerState() string {
	return s.breaker.State()
}

// APIKeyConfigured reports whether the model backend has credentials
// configured. Bedrock authenticates through the AWS credential chain, so
// it always reports true.
func (s *Service) APIKeyConfigured() bool {
	if s.cfg.Provider == ProviderBedrock {
		return true
	}
	return s.cfg.OpenAIAPIKey != ""
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}
