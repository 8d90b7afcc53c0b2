package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// gatherCounter returns the current value of a counter metric family for
// the given label pair, or -1 when the family or series is absent.
func gatherCounter(t *testing.T, family, labelName, labelValue string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelName == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == labelName && lp.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}

func TestRequestsTotal_Registered(t *testing.T) {
	RequestsTotal.WithLabelValues("summarize", "success").Inc()
	got := gatherCounter(t, "wikisummary_requests_total", "endpoint", "summarize")
	if got < 1 {
		t.Errorf("wikisummary_requests_total{endpoint=summarize} = %g, want >= 1", got)
	}
}

func TestCacheCounters_Registered(t *testing.T) {
	CacheHits.WithLabelValues("summary").Inc()
	CacheMisses.WithLabelValues("article").Add(2)

	if got := gatherCounter(t, "wikisummary_cache_hits_total", "cache", "summary"); got < 1 {
		t.Errorf("cache hits = %g, want >= 1", got)
	}
	if got := gatherCounter(t, "wikisummary_cache_misses_total", "cache", "article"); got < 2 {
		t.Errorf("cache misses = %g, want >= 2", got)
	}
}

func TestRateLimitRejections_Registered(t *testing.T) {
	before := gatherCounter(t, "wikisummary_rate_limit_rejections_total", "", "")
	RateLimitRejections.Inc()
	after := gatherCounter(t, "wikisummary_rate_limit_rejections_total", "", "")
	if after != before+1 {
		t.Errorf("rejections went %g -> %g, want +1", before, after)
	}
}

func TestTokenCounters_Registered(t *testing.T) {
	TokensInput.WithLabelValues("openai").Add(100)
	TokensOutput.WithLabelValues("openai").Add(42)

	if got := gatherCounter(t, "wikisummary_tokens_input_total", "provider", "openai"); got < 100 {
		t.Errorf("input tokens = %g, want >= 100", got)
	}
	if got := gatherCounter(t, "wikisummary_tokens_output_total", "provider", "openai"); got < 42 {
		t.Errorf("output tokens = %g, want >= 42", got)
	}
}

func TestRequestDuration_Observes(t *testing.T) {
	RequestDuration.WithLabelValues("chat").Observe(0.25)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var hist *dto.Histogram
	for _, mf := range families {
		if mf.GetName() != "wikisummary_request_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "endpoint" && lp.GetValue() == "chat" {
					hist = m.GetHistogram()
				}
			}
		}
	}
	if hist == nil {
		t.Fatal("histogram series not found")
	}
	if hist.GetSampleCount() < 1 {
		t.Errorf("sample count = %d, want >= 1", hist.GetSampleCount())
	}
}
