package wikisummary

import "fmt"

// Operation names carried by GenerationError.
const (
	OpSummarize = "summarize"
	OpAnswer    = "answer"
)

// NotFoundError reports that no Wikipedia article matched the query.
// The boundary layer maps it to HTTP 404.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find Wikipedia article for query: %s", e.Query)
}

// GenerationError reports that the model call failed or returned an empty
// result. Op is OpSummarize or OpAnswer. Maps to HTTP 500.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to generate %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to generate %s: model returned an empty result", e.Op)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// RateLimitError reports that a client exceeded its admission quota.
// RetryAfter is the whole-second hint for the Retry-After header. Maps to
// HTTP 429.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %d seconds", e.RetryAfter)
}
